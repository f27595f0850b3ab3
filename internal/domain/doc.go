// Package domain models soil nutrient measurement records submitted by
// field devices.
//
// # Data Source
//
// Measurements originate from handheld NPK soil probes paired with a mobile
// app. The app uploads readings over HTTP as JSON, either a single record or
// a batch collected while the device was offline. Field names in the wild
// are not uniform: older app builds report identity under "username" while
// newer ones use "user", and the epoch-millisecond timestamp appears as
// either "ts" or "timestamp". Every inbound record therefore passes through
// [NormalizeBatch] before anything else sees it.
//
// # Record Conventions
//
// Identity:
//
//	"user" is the canonical identity field. "username" is accepted on input
//	and on legacy stored rows, but normalization always resolves to "user"
//	("user" wins when both are present).
//
// Time:
//
//	"ts" is milliseconds since the Unix epoch, e.g. 1710000000000.
//	"timestamp" is accepted as an alias. Records are displayed newest first,
//	ordered by this field.
//
// Readings:
//
//	n, p, k    -> nitrogen, phosphorus, potassium (mg/kg)
//	ph         -> soil pH
//	ec         -> electrical conductivity (uS/cm)
//	temp, hum  -> soil temperature (C) and humidity (%)
//
//	All readings are optional; the service stores whatever the probe
//	reported and does not validate ranges.
//
// Location:
//
//	An optional {"latitude","longitude"} pair in WGS-84 decimal degrees.
//	When both coordinates are present, ingestion attempts a reverse-geocode
//	lookup and attaches the resulting place name as "location_name".
//	Enrichment is best-effort: a failed lookup leaves the field absent and
//	never fails the upload. "location_name" is derived only; a value
//	supplied by the client is discarded during normalization.
package domain
