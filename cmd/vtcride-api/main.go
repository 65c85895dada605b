// README: Entry point; loads config, wires services, starts the HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"vtcride/internal/config"
	httptransport "vtcride/internal/http"
	"vtcride/internal/http/handlers"
	"vtcride/internal/infra"
	"vtcride/internal/logger"
	"vtcride/internal/maps"
	"vtcride/internal/modules/geocoding"
	"vtcride/internal/modules/pricing"
	"vtcride/internal/modules/routing"
	"vtcride/internal/modules/trip"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New("vtcride-api", cfg.Env, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pricingSvc, err := pricing.NewService(cfg.Tariff, cfg.VehicleClasses)
	if err != nil {
		return err
	}

	deps := httptransport.ServerDeps{
		Maps: handlers.MapsStatus{
			Configured:    cfg.Maps.Configured(),
			Provider:      cfg.Maps.Provider,
			CredentialEnv: cfg.Maps.CredentialEnv(),
		},
		Pricing: pricingSvc,
		Search: geocoding.SessionConfig{
			Debounce:    cfg.Search.Debounce,
			MinQueryLen: cfg.Search.MinQueryLen,
		},
		Logger: log,
	}

	provider, err := infra.NewMapsProvider(cfg)
	switch {
	case err == nil:
		opts := geocoding.Options{
			Provider:    provider.Name(),
			Region:      infra.Region(cfg),
			MinQueryLen: cfg.Search.MinQueryLen,
			Logger:      log.With(logger.String("component", "geocoding")),
		}
		if cfg.Redis.Addr != "" {
			rdb, err := infra.NewRedis(ctx, cfg.Redis.Addr)
			if err != nil {
				log.Warn("geocoding cache disabled", logger.Error(err))
			} else {
				defer rdb.Close()
				opts.Cache = geocoding.NewRedisCache(rdb, cfg.Search.CacheTTL)
			}
		}
		resolver := routing.NewResolver(provider, log.With(logger.String("component", "routing")))
		deps.Places = geocoding.NewService(provider, opts)
		deps.Routes = resolver
		deps.Trips = trip.NewService(resolver, pricingSvc)
		log.Info("maps provider ready", logger.String("provider", provider.Name()))
	case errors.Is(err, maps.ErrNotConfigured):
		log.Warn("maps credential missing; address search and routing disabled",
			logger.String("env", cfg.Maps.CredentialEnv()))
	default:
		return err
	}

	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           httptransport.NewServer(deps).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", logger.String("addr", cfg.HTTP.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
