// Package server wires the chi router and runs the HTTP listener.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mklincoln/factorymap/internal/core/config"
	"github.com/mklincoln/factorymap/internal/core/health"
	"github.com/mklincoln/factorymap/internal/core/middleware"
	"github.com/mklincoln/factorymap/internal/core/router"
)

// Run sets up routes and serves until the context is cancelled.
func Run(ctx context.Context, cfg config.Config, logger *slog.Logger, svc router.SearchService, pinger health.Pinger) error {
	r := chi.NewRouter()
	r.Use(middleware.Recover())
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS())

	r.Get("/healthz", health.Liveness())
	r.Get("/readyz", health.Readiness(pinger))
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Get("/search", router.HandleSearch(logger, svc))
	r.Get("/map", router.HandleMap(logger, svc))
	// route-default variants: the path segment becomes a baked-in predicate
	r.Get("/certified/{cert}/search", router.HandleSearch(logger, svc))
	r.Get("/certified/{cert}/map", router.HandleMap(logger, svc))
	r.Get("/states/{state}/search", router.HandleSearch(logger, svc))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
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
