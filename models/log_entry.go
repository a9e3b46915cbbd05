package models

import (
	"time"

	"github.com/google/uuid"
)

// LogSeverity tags an audit log line for the reporting layer.
type LogSeverity string

const (
	LogOK   LogSeverity = "ok"
	LogWarn LogSeverity = "warn"
	LogFail LogSeverity = "fail"
)

// LogEntry is one line of the ordered audit log stream. Entries are
// append-only; the persistence layer never updates them.
type LogEntry struct {
	ID        uuid.UUID   `json:"id" db:"id"`
	Timestamp time.Time   `json:"timestamp" db:"timestamp"`
	Text      string      `json:"text" db:"text"`
	Status    LogSeverity `json:"status" db:"status"`
	Source    string      `json:"source,omitempty" db:"source"`
}

// NewLogEntry creates a timestamped audit log entry.
func NewLogEntry(text string, status LogSeverity) *LogEntry {
	return &LogEntry{
		ID:        uuid.New(),
		Timestamp: time.Now().UTC(),
		Text:      text,
		Status:    status,
	}
}

// WithSource tags the entry with the originating source adapter.
func (e *LogEntry) WithSource(source string) *LogEntry {
	e.Source = source
	return e
}
