package domain

import (
	"errors"
	"time"
)

// Sentinel errors produced by normalization and the storage gateway.
// HTTP handlers map these to status codes at the boundary.
var (
	ErrEmptyPayload   = errors.New("empty payload")
	ErrInvalidPayload = errors.New("invalid payload: expected object or list of objects")
	ErrNoValidRecords = errors.New("no valid records in payload")
	ErrNotFound       = errors.New("measurement not found")
)

// Location is an optional WGS-84 coordinate pair. Pointers distinguish
// "not reported" from a literal zero coordinate.
type Location struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// HasCoordinates reports whether both latitude and longitude are present.
func (l Location) HasCoordinates() bool {
	return l.Latitude != nil && l.Longitude != nil
}

// Measurement is the canonical record shape after normalization. It is what
// the storage gateway persists and what the query endpoints render.
type Measurement struct {
	// ID is the store-assigned identifier, coerced to a string for display.
	// Empty until the record has been persisted.
	ID string `json:"id,omitempty"`

	// User is the canonical reporting-source identity.
	User string `json:"user,omitempty"`

	// TS is the device timestamp in milliseconds since the Unix epoch.
	TS int64 `json:"ts"`

	N    *float64 `json:"n,omitempty"`
	P    *float64 `json:"p,omitempty"`
	K    *float64 `json:"k,omitempty"`
	Ph   *float64 `json:"ph,omitempty"`
	Ec   *float64 `json:"ec,omitempty"`
	Temp *float64 `json:"temp,omitempty"`
	Hum  *float64 `json:"hum,omitempty"`

	Location Location `json:"location"`

	// LocationName is attached by geocoding enrichment, never by the client.
	LocationName string `json:"location_name,omitempty"`

	Note *string `json:"note,omitempty"`

	// ProjectName groups readings belonging to one field study.
	ProjectName *string `json:"project_name,omitempty"`

	// ReceivedAt is stamped during normalization from the package clock.
	ReceivedAt time.Time `json:"received_at,omitzero"`
}

// Time returns the device timestamp as a time.Time.
func (m Measurement) Time() time.Time {
	return time.UnixMilli(m.TS).UTC()
}
