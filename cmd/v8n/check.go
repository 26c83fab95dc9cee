package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/deppfellow/v8n/internal/handler"
	"github.com/deppfellow/v8n/internal/lib/utils"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate a request described in a JSON file",
		Long: `Validates a request without sending it. The request file holds
{"method", "path", "query", "headers", "body"}; use - to read stdin.

The verdict is printed as JSON. The exit status is 2 when the request has
violations and 1 on any other error.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			routes, err := loadRoutes(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			path, _ := cmd.Flags().GetString("request")
			req, err := readCheckRequest(cmd.InOrStdin(), path)
			if err != nil {
				return err
			}

			res, err := handler.CheckAgainst(cmd.Context(), routes, req)
			if err != nil {
				return err
			}

			if err := utils.PrintJSON(cmd.OutOrStdout(), res); err != nil {
				return err
			}
			if !res.Valid {
				return errInvalid
			}
			return nil
		},
	}

	cmd.Flags().String("request", "", "request file (JSON), - for stdin")
	_ = cmd.MarkFlagRequired("request")
	return cmd
}

func readCheckRequest(stdin io.Reader, path string) (handler.CheckRequest, error) {
	var req handler.CheckRequest

	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return req, fmt.Errorf("open request file: %w", err)
		}
		defer f.Close()
		r = f
	}

	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return req, fmt.Errorf("decode request file: %w", err)
	}
	if req.Method == "" || req.Path == "" {
		return req, fmt.Errorf("request file needs a method and a path")
	}
	return req, nil
}
