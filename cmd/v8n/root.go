package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deppfellow/v8n/internal/config"
	"github.com/deppfellow/v8n/internal/routespec"
	"github.com/deppfellow/v8n/internal/server"
)

// errInvalid reports a check whose request had violations. The report has
// already been printed.
var errInvalid = errors.New("request is invalid")

func exitCode(err error) int {
	if errors.Is(err, errInvalid) {
		return 2
	}
	return 1
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "v8n",
		Short:         "Per-route request validation",
		Long:          `v8n validates the body, query, path parameters and headers of HTTP requests against per-route schemas and reports every violation at once.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("routes", "", "YAML route file")
	root.PersistentFlags().String("openapi", "", "OpenAPI 3 document; takes precedence over --routes")
	root.PersistentFlags().String("allow-unknown", "", "override the unknown-field policy of every route (true|false)")

	root.AddCommand(newServeCmd(), newCheckCmd(), newRoutesCmd())
	return root
}

// flagOverrides turns the flags that were set into config overrides.
func flagOverrides(cmd *cobra.Command) ([]config.Override, error) {
	keys := map[string]string{
		"port":          "server.port",
		"routes":        "validation.routes_file",
		"openapi":       "validation.openapi_file",
		"allow-unknown": "validation.allow_unknown",
	}

	var out []config.Override
	for flag, key := range keys {
		f := cmd.Flags().Lookup(flag)
		if f == nil || !f.Changed {
			continue
		}
		out = append(out, config.Override{Key: key, Value: f.Value.String()})
	}

	if allow, _ := cmd.Flags().GetString("allow-unknown"); allow != "" && allow != "true" && allow != "false" {
		return nil, fmt.Errorf("--allow-unknown must be true or false, got %q", allow)
	}

	// --routes alone replaces an OpenAPI document named by the environment.
	if cmd.Flags().Changed("routes") && !cmd.Flags().Changed("openapi") {
		out = append(out, config.Override{Key: "validation.openapi_file", Value: ""})
	}
	return out, nil
}

// loadConfig reads the V8N_ environment with the flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	overrides, err := flagOverrides(cmd)
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadConfig(overrides...)
	if errors.Is(err, config.ErrNoRouteSource) {
		return nil, errors.New("one of --routes or --openapi is required (or V8N_VALIDATION__ROUTES_FILE / V8N_VALIDATION__OPENAPI_FILE)")
	}
	return cfg, err
}

// loadRoutes loads the route set named by the flags and the environment.
func loadRoutes(ctx context.Context, cmd *cobra.Command) (*routespec.Set, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return server.LoadRoutes(ctx, cfg.Validation)
}
