package ingest

import (
	"strings"
	"sync"
	"time"

	"github.com/kushwahaamar-dev/sentinel/models"
)

// StatusCache tracks the last known health of each source for the
// status board. Thread-safe.
type StatusCache struct {
	mu       sync.RWMutex
	statuses map[string]models.SourceStatus
}

// NewStatusCache creates a new StatusCache
func NewStatusCache() *StatusCache {
	return &StatusCache{
		statuses: make(map[string]models.SourceStatus),
	}
}

// Record updates the status entry for a source after a fetch.
func (c *StatusCache) Record(source string, health models.SourceHealth, message string, eventCount int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now().UTC()
	c.statuses[source] = models.SourceStatus{
		Status:      health,
		LastCheck:   &now,
		LastMessage: message,
		EventCount:  eventCount,
	}
}

// Get returns the status of a single source.
func (c *StatusCache) Get(source string) (models.SourceStatus, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	status, ok := c.statuses[source]
	return status, ok
}

// All returns a copy of every source status.
func (c *StatusCache) All() map[string]models.SourceStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]models.SourceStatus, len(c.statuses))
	for name, status := range c.statuses {
		out[name] = status
	}
	return out
}

var failureLabels = []string{
	"signal lost",
	"timeout",
	"rate limited",
	"unauthorized",
	"not acceptable",
	"parse error",
	"http ",
	"missing api key",
}

// StatusLineSeverity classifies a feed status line for the operator log.
func StatusLineSeverity(line string) models.LogSeverity {
	lower := strings.ToLower(line)
	for _, label := range failureLabels {
		if strings.Contains(lower, label) {
			return models.LogFail
		}
	}
	return models.LogOK
}
