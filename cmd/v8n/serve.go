package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/deppfellow/v8n/internal/config"
	"github.com/deppfellow/v8n/internal/handler"
	"github.com/deppfellow/v8n/internal/logger"
	"github.com/deppfellow/v8n/internal/router"
	"github.com/deppfellow/v8n/internal/server"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the validating HTTP server",
		Long: `Starts the HTTP server. Configuration comes from V8N_* environment
variables (and a .env file); the flags override them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}

	cmd.Flags().StringP("port", "p", "", "port to listen on")
	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	loggerService, err := logger.NewLoggerService(cfg.Observability)
	if err != nil {
		return err
	}
	defer loggerService.Shutdown()

	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	routes, err := server.LoadRoutes(ctx, cfg.Validation)
	if err != nil {
		return err
	}

	srv, err := server.New(cfg, &log, loggerService, routes)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	srv.SetupHTTPServer(router.NewRouter(srv, handler.NewHandlers(srv)))

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.Start()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	log.Info().Msg("server stopped")
	return nil
}
