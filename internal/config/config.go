package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Storage configuration. Driver is "sqlite"; DSN is the database file
	// path (or ":memory:" for tests).
	DBDriver string
	DBDSN    string

	// Reverse-geocoding configuration.
	GeocodeEnabled     bool
	NominatimBaseURL   string
	NominatimUserAgent string
	GeocodeTimeout     time.Duration
	GeocodeCacheSize   int

	// DashboardLimit caps the rows shown on the HTML dashboard.
	DashboardLimit int

	CORSOrigins []string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	geocodeTimeout, err := parseDuration("GEOCODE_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	geocodeEnabled := true
	if v := os.Getenv("GEOCODE_ENABLED"); v != "" {
		geocodeEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		DBDriver: envOrDefault("DB_DRIVER", "sqlite"),
		DBDSN:    envOrDefault("DB_DSN", "data/measurements.db"),

		GeocodeEnabled:     geocodeEnabled,
		NominatimBaseURL:   envOrDefault("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org"),
		NominatimUserAgent: envOrDefault("NOMINATIM_USER_AGENT", "soil-data-ingest/1.0"),
		GeocodeTimeout:     geocodeTimeout,
		GeocodeCacheSize:   parsePositiveInt("GEOCODE_CACHE_SIZE", 1000),

		DashboardLimit: parsePositiveInt("DASHBOARD_LIMIT", 100),

		CORSOrigins: parseOrigins(envOrDefault("CORS_ORIGINS", "*")),
	}

	if cfg.DBDriver != "sqlite" {
		return nil, errors.New("unsupported DB_DRIVER: only sqlite is supported")
	}
	if cfg.DBDSN == "" {
		return nil, errors.New("DB_DSN is required")
	}
	if cfg.GeocodeEnabled && cfg.NominatimBaseURL == "" {
		return nil, errors.New("GEOCODE_ENABLED is true but NOMINATIM_BASE_URL is not set")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDuration(key, def string) (time.Duration, error) {
	raw := envOrDefault(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func parseOrigins(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
