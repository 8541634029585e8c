package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aanand-mishra/campus-api/internal/http/router"
	"github.com/aanand-mishra/campus-api/internal/storage/sqlite"
)

// newServeCmd runs the server.
//
// STARTUP SEQUENCE:
//  1. Load configuration and initialise the logger
//  2. Open the SQLite database and apply pending migrations
//  3. Build the router on top of the store
//  4. Start the HTTP server in a separate goroutine
//  5. Block until an OS signal (Ctrl+C / kill) arrives
//  6. Gracefully shut down: finish in-flight requests, then exit
func newServeCmd(load loadFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := load()
			if err != nil {
				return err
			}
			log.Info("starting campus-api", slog.String("env", cfg.Env))

			// signal.NotifyContext cancels ctx on Ctrl+C (SIGINT) or
			// SIGTERM, the signal container orchestrators send.
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store, err := sqlite.New(ctx, cfg, log)
			if err != nil {
				return wrap("initialise storage", err)
			}
			defer store.Close()
			log.Info("storage initialised", slog.String("path", cfg.StoragePath))

			server := &http.Server{
				Addr:    cfg.Addr,
				Handler: router.New(store, log),

				// Timeouts protect against slow clients holding connections.
				ReadTimeout:  cfg.ReadTimeout,
				WriteTimeout: cfg.WriteTimeout,
				IdleTimeout:  cfg.IdleTimeout,
			}

			serveErr := make(chan error, 1)
			go func() {
				log.Info("server started", slog.String("address", cfg.Addr))

				// ListenAndServe returns http.ErrServerClosed after Shutdown;
				// that is the normal way out, not an error.
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serveErr <- err
				}
				close(serveErr)
			}()

			select {
			case err := <-serveErr:
				if err != nil {
					return wrap("server", err)
				}
				return nil
			case <-ctx.Done():
			}

			log.Info("shutdown signal received, stopping server...")

			// Fresh context: ctx is already cancelled.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return wrap("graceful shutdown", err)
			}

			log.Info("server stopped gracefully")
			return nil
		},
	}
}
