package domain

import "context"

// PlaceResult contains place data returned by a reverse-geocoding provider.
type PlaceResult struct {
	// DisplayName is the full human-readable place string,
	// e.g. "Menteng, Jakarta Pusat, Jakarta, Indonesia".
	DisplayName string

	// Name is the most specific place component, when the provider
	// distinguishes one. May be empty.
	Name string
}

// Geocoder resolves coordinates to place details.
type Geocoder interface {
	// ReverseGeocode converts a WGS-84 coordinate pair to place details.
	// An empty result with a nil error means the provider had no match.
	ReverseGeocode(ctx context.Context, lat, lon float64) (PlaceResult, error)
}
