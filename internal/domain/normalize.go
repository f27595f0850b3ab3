package domain

import (
	"bytes"
	"encoding/json"
	"strings"
)

// wireMeasurement is the duck-typed shape accepted on the wire. It tolerates
// both identity spellings and both timestamp spellings; NormalizeBatch folds
// it into the canonical Measurement.
type wireMeasurement struct {
	User        string   `json:"user"`
	Username    string   `json:"username"`
	TS          *int64   `json:"ts"`
	Timestamp   *int64   `json:"timestamp"`
	N           *float64 `json:"n"`
	P           *float64 `json:"p"`
	K           *float64 `json:"k"`
	Ph          *float64 `json:"ph"`
	Ec          *float64 `json:"ec"`
	Temp        *float64 `json:"temp"`
	Hum         *float64 `json:"hum"`
	Location    Location `json:"location"`
	Note        *string  `json:"note"`
	ProjectName *string  `json:"project_name"`

	// LocationName is parsed so a client-supplied value is recognized and
	// dropped. Only geocoding enrichment may produce it.
	LocationName string `json:"location_name"`
}

// NormalizeBatch coerces a raw JSON request body into an ordered batch of
// canonical measurements.
//
// The body must be a single JSON object or a JSON array of objects. Array
// elements that are not objects (or do not decode as records) are dropped
// without error. Identity is reconciled to the canonical "user" field, with
// "user" preferred over "username" when both are present.
//
// Errors: ErrEmptyPayload for an empty body, ErrInvalidPayload when the body
// is neither an object nor an array, ErrNoValidRecords when every element
// was dropped.
func NormalizeBatch(body []byte) ([]Measurement, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, ErrEmptyPayload
	}

	var elements []json.RawMessage
	switch trimmed[0] {
	case '{':
		// A lone object that fails to decode is a malformed payload, not an
		// empty batch.
		m, ok := normalizeOne(trimmed)
		if !ok {
			return nil, ErrInvalidPayload
		}
		return []Measurement{m}, nil
	case '[':
		if err := json.Unmarshal(trimmed, &elements); err != nil {
			return nil, ErrInvalidPayload
		}
	default:
		return nil, ErrInvalidPayload
	}

	batch := make([]Measurement, 0, len(elements))
	for _, raw := range elements {
		m, ok := normalizeOne(raw)
		if !ok {
			continue
		}
		batch = append(batch, m)
	}

	if len(batch) == 0 {
		return nil, ErrNoValidRecords
	}
	return batch, nil
}

// normalizeOne decodes a single element and folds alternate field spellings
// into the canonical record. Returns false for non-object garbage.
func normalizeOne(raw json.RawMessage) (Measurement, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Measurement{}, false
	}

	var w wireMeasurement
	if err := json.Unmarshal(trimmed, &w); err != nil {
		return Measurement{}, false
	}

	m := Measurement{
		User:        canonicalUser(w.User, w.Username),
		TS:          canonicalTS(w.TS, w.Timestamp),
		N:           w.N,
		P:           w.P,
		K:           w.K,
		Ph:          w.Ph,
		Ec:          w.Ec,
		Temp:        w.Temp,
		Hum:         w.Hum,
		Location:    w.Location,
		Note:        trimString(w.Note),
		ProjectName: trimString(w.ProjectName),
		ReceivedAt:  clock.Now().UTC(),
	}
	return m, true
}

// canonicalUser resolves the identity field: first non-empty match wins,
// "user" preferred over "username".
func canonicalUser(user, username string) string {
	if u := strings.TrimSpace(user); u != "" {
		return u
	}
	return strings.TrimSpace(username)
}

// canonicalTS resolves the timestamp alias, preferring "ts".
func canonicalTS(ts, timestamp *int64) int64 {
	if ts != nil {
		return *ts
	}
	if timestamp != nil {
		return *timestamp
	}
	return 0
}

// trimString trims an optional free-text field, folding blank to absent.
func trimString(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
