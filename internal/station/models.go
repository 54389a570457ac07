package station

import "time"

// ReservedKey is the document key of the per-station configuration record
// that lives alongside readings in a station collection. It is never a
// reading and must be excluded from every reading sequence.
const ReservedKey = "metadados"

// IsReservedKey reports whether key identifies the reserved metadata record.
func IsReservedKey(key string) bool {
	return key == ReservedKey
}

// Reading is one sensor sample. Immutable once fetched.
type Reading struct {
	Temperature      float64 `json:"temperature"`
	Humidity         float64 `json:"humidity"`
	ParticulateCount float64 `json:"particulateCount"`
	Timestamp        int64   `json:"timestamp"` // unix seconds
}

// Time returns the sample time in UTC.
func (r Reading) Time() time.Time {
	return time.Unix(r.Timestamp, 0).UTC()
}

// readingDoc is the wire shape of a reading document in the remote store.
// Field names follow the station firmware's schema.
type readingDoc struct {
	Temperatura float64 `json:"temperatura"`
	Humidade    float64 `json:"humidade"`
	Particulas  float64 `json:"particulas"`
	Timestamp   int64   `json:"timestamp"`
}

func (d readingDoc) toReading() Reading {
	return Reading{
		Temperature:      d.Temperatura,
		Humidity:         d.Humidade,
		ParticulateCount: d.Particulas,
		Timestamp:        d.Timestamp,
	}
}

// indexDoc is one entry of the well-known station index record.
type indexDoc struct {
	Nome   string `json:"nome"`
	Morada string `json:"morada"`
}

// Info describes one station in the catalog.
type Info struct {
	ID      string       `json:"id"`
	Name    string       `json:"name,omitempty"`
	Address string       `json:"address,omitempty"`
	Coords  *Coordinates `json:"coordinates,omitempty"`
}

// MetricStats summarizes one metric over a sequence of readings.
type MetricStats struct {
	Average float64 `json:"average"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
}

// StatSummary holds per-metric statistics over a sequence of readings.
// Recomputed on every fetch, never persisted.
type StatSummary struct {
	Temperature  MetricStats `json:"temperature"`
	Humidity     MetricStats `json:"humidity"`
	Particulates MetricStats `json:"particulates"`
}
