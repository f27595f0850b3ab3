package domain

import (
	"context"
	"log/slog"
	"math"
)

// EnrichWithPlaceName attempts to attach a reverse-geocoded place name to a
// measurement. If geocoder is nil, coordinates are absent or non-finite, or
// the lookup fails, the measurement is returned unchanged (graceful
// degradation). A lookup failure is logged and never surfaced to the caller.
func EnrichWithPlaceName(ctx context.Context, m Measurement, geocoder Geocoder, logger *slog.Logger) Measurement {
	if geocoder == nil || m.LocationName != "" {
		return m
	}
	if !m.Location.HasCoordinates() {
		return m
	}

	lat, lon := *m.Location.Latitude, *m.Location.Longitude
	if !isFinite(lat) || !isFinite(lon) {
		return m
	}

	result, err := geocoder.ReverseGeocode(ctx, lat, lon)
	if err != nil {
		logger.Warn("reverse geocoding failed",
			"user", m.User,
			"lat", lat,
			"lon", lon,
			"error", err,
		)
		return m
	}

	m.LocationName = result.DisplayName
	return m
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
