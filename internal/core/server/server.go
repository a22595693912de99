package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tonari-app/tonari/internal/core/config"
	"github.com/tonari-app/tonari/internal/core/health"
	middleware "github.com/tonari-app/tonari/internal/core/middleware"
	"github.com/tonari-app/tonari/internal/core/router"
)

// Options carries the optional pieces of the HTTP surface.
type Options struct {
	// Metrics serves /metrics; the default registry is used when nil.
	Metrics http.Handler
	Checks  []health.Check
}

// Handler builds the gateway's route tree.
func Handler(logger *slog.Logger, api *router.API, opts Options) http.Handler {
	metrics := opts.Metrics
	if metrics == nil {
		metrics = promhttp.Handler()
	}

	r := chi.NewRouter()
	r.Use(middleware.Recover(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS())
	r.Use(middleware.Metrics())

	r.Get("/healthz", health.Liveness())
	r.Get("/readyz", health.Readiness(2*time.Second, opts.Checks...))
	r.Method(http.MethodGet, "/metrics", metrics)
	r.Route("/api", api.Routes)
	return r
}

// sets up http and starts serving
func Run(ctx context.Context, cfg config.Config, logger *slog.Logger, api *router.API, opts Options) error {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           Handler(logger, api, opts),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listen", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
