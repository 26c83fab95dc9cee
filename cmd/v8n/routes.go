package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/deppfellow/v8n/internal/handler"
	"github.com/deppfellow/v8n/internal/lib/utils"
)

func newRoutesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List the routes and the regions they validate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			routes, err := loadRoutes(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			table := handler.RouteTable(routes)

			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return utils.PrintJSON(cmd.OutOrStdout(), table)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tMETHOD\tPATH\tREGIONS")
			for _, r := range table {
				regions := strings.Join(r.Regions, ",")
				if regions == "" {
					regions = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Name, r.Method, r.Path, regions)
			}
			return w.Flush()
		},
	}

	cmd.Flags().Bool("json", false, "print the table as JSON")
	return cmd
}
