package domain

import "time"

// StationRecord is the immutable reference entry for one monitoring station.
// ID is the 0-based identifier used by the feature schema; backends that
// number stations from 1 convert on read.
type StationRecord struct {
	ID        int
	Latitude  float64
	Longitude float64
	Elevation float64
}

// Row is one station-date observation. Values is keyed by canonical column
// name (see Canonicalize) and is treated as read-only once a backend hands
// the row to the pipeline.
type Row struct {
	Date   time.Time
	Values map[string]float64
}

// Value returns the named canonical column, reporting whether it is present.
func (r Row) Value(name string) (float64, bool) {
	v, ok := r.Values[name]
	return v, ok
}

// ValueOrZero returns the named column or 0 when absent. Callers that need
// to distinguish a missing column from a legitimate zero use Value.
func (r Row) ValueOrZero(name string) float64 {
	return r.Values[name]
}

// Latitude and Longitude expose the row's coordinates for station matching.
func (r Row) Latitude() float64  { return r.Values[ColLatitude] }
func (r Row) Longitude() float64 { return r.Values[ColLongitude] }
