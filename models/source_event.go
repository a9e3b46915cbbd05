package models

import "time"

// Mode selects between live external feeds and fixed mock scenarios.
// It is carried as an explicit configuration value; a runtime mode change
// means constructing a new configuration snapshot, never mutating this one.
type Mode string

const (
	ModeLive Mode = "LIVE"
	ModeMock Mode = "MOCK"
)

// SourceEvent is a single normalized event produced by a source adapter.
// Instances are immutable once an adapter returns them.
type SourceEvent struct {
	// Source is the adapter name (e.g., "gdacs", "eonet", "nws", "mock")
	Source string `json:"source"`

	// DisasterType is the free-text category reported by the feed
	DisasterType string `json:"disaster_type"`

	// Description is the human-readable summary from the feed
	Description string `json:"description"`

	// Lat and Lon locate the event (WGS-84)
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`

	// Severity is an optional free-text severity marker (alert level, headline)
	Severity string `json:"severity,omitempty"`

	// Raw carries the opaque source payload for downstream judges
	Raw map[string]interface{} `json:"raw,omitempty"`
}

// IngestionResult aggregates one full ingestion cycle across all adapters.
type IngestionResult struct {
	Mode   Mode          `json:"mode"`
	Events []SourceEvent `json:"events"`
	Logs   []string      `json:"logs"`
}

// SourceHealth is the coarse status of one data source.
type SourceHealth string

const (
	SourceHealthUnknown SourceHealth = "unknown"
	SourceHealthOK      SourceHealth = "ok"
	SourceHealthError   SourceHealth = "error"
)

// SourceStatus is the per-adapter status snapshot maintained by the poller.
type SourceStatus struct {
	Status      SourceHealth `json:"status"`
	LastCheck   *time.Time   `json:"last_check,omitempty"`
	LastMessage string       `json:"message,omitempty"`
	EventCount  int          `json:"events"`
}
