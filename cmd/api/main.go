package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/couchcryptid/soil-data-ingest-service/internal/adapter/httpapi"
	"github.com/couchcryptid/soil-data-ingest-service/internal/adapter/nominatim"
	"github.com/couchcryptid/soil-data-ingest-service/internal/adapter/sqlite"
	"github.com/couchcryptid/soil-data-ingest-service/internal/config"
	"github.com/couchcryptid/soil-data-ingest-service/internal/domain"
	"github.com/couchcryptid/soil-data-ingest-service/internal/ingest"
	"github.com/couchcryptid/soil-data-ingest-service/internal/observability"
)

func main() {
	// Optional .env for local development; real deployments set env directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	store, err := sqlite.Open(cfg.DBDSN)
	if err != nil {
		logger.Error("failed to open store", "error", err, "dsn", cfg.DBDSN)
		os.Exit(1)
	}

	// Geocoder is feature-flagged via GEOCODE_ENABLED.
	var geocoder domain.Geocoder
	if cfg.GeocodeEnabled {
		client := nominatim.NewClient(cfg.NominatimBaseURL, cfg.NominatimUserAgent, cfg.GeocodeTimeout, metrics, logger)
		geocoder = nominatim.NewCachedGeocoder(client, cfg.GeocodeCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("geocoding enabled", "base_url", cfg.NominatimBaseURL, "timeout", cfg.GeocodeTimeout, "cache_size", cfg.GeocodeCacheSize)
	} else {
		logger.Info("geocoding disabled")
	}

	svc := ingest.New(store, geocoder, logger, metrics)

	srv := httpapi.NewServer(cfg.HTTPAddr, svc, store, httpapi.Options{
		DashboardLimit: cfg.DashboardLimit,
		CORSOrigins:    cfg.CORSOrigins,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := store.Close(); err != nil {
		logger.Error("store close error", "error", err)
	}

	logger.Info("shutdown complete")
}
