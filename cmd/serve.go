package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/desertthunder/crate/internal/server"
	"github.com/desertthunder/crate/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve starts the HTTP search service and blocks until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if r.catalog == nil {
		return fmt.Errorf("%w: set SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET or fill in config.toml", shared.ErrMissingCredentials)
	}

	serverConfig := r.config.Server
	if host := cmd.String("host"); host != "" {
		serverConfig.Host = host
	}
	if port := cmd.Int("port"); port != 0 {
		serverConfig.Port = int(port)
	}

	history, db, err := r.openHistory()
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	} else {
		r.logger.Info("database not found, search history disabled")
	}

	router := server.New(server.AppConfig{
		Orchestrator: r.orchestrator,
		Genres:       r.cache,
		History:      history,
		Logger:       r.logger,
		Production:   serverConfig.Production(),
	})

	httpServer := &http.Server{
		Addr:              serverConfig.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		r.logger.Info("starting server", "addr", serverConfig.Addr(), "env", serverConfig.Env)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	r.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	return nil
}
