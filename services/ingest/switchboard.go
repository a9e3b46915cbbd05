package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/kushwahaamar-dev/sentinel/models"
	"github.com/kushwahaamar-dev/sentinel/services/sources"
)

// Switchboard routes one ingestion cycle to either the live source
// adapters or the fixed mock scenario file, depending on the requested
// mode. Live adapters are fetched concurrently; a failing adapter
// degrades to a status line, it never fails the cycle.
type Switchboard struct {
	sources       []sources.Source
	scenariosPath string
	statuses      *StatusCache
	logger        *zap.Logger
}

// NewSwitchboard creates a new ingestion switchboard
func NewSwitchboard(srcs []sources.Source, scenariosPath string, statuses *StatusCache, logger *zap.Logger) *Switchboard {
	return &Switchboard{
		sources:       srcs,
		scenariosPath: scenariosPath,
		statuses:      statuses,
		logger:        logger,
	}
}

// Ingest runs one full ingestion cycle in the given mode.
func (s *Switchboard) Ingest(ctx context.Context, mode models.Mode) *models.IngestionResult {
	if mode == models.ModeMock {
		events, status := s.loadMockScenarios()
		return &models.IngestionResult{
			Mode:   models.ModeMock,
			Events: events,
			Logs:   []string{status, "Awaiting simulation trigger"},
		}
	}

	type fetchResult struct {
		events []models.SourceEvent
		status string
		err    error
	}

	results := make([]fetchResult, len(s.sources))
	var wg sync.WaitGroup
	for i, src := range s.sources {
		wg.Add(1)
		go func(i int, src sources.Source) {
			defer wg.Done()
			events, status, err := src.Fetch(ctx)
			results[i] = fetchResult{events: events, status: status, err: err}
		}(i, src)
	}
	wg.Wait()

	result := &models.IngestionResult{Mode: models.ModeLive}
	for i, src := range s.sources {
		r := results[i]
		result.Events = append(result.Events, r.events...)
		result.Logs = append(result.Logs, r.status)

		health := models.SourceHealthOK
		if r.err != nil {
			health = models.SourceHealthError
			s.logger.Warn("source fetch failed",
				zap.String("source", src.Name()),
				zap.String("status", r.status),
				zap.Error(r.err))
		} else {
			s.logger.Debug("source fetch complete",
				zap.String("source", src.Name()),
				zap.Int("events", len(r.events)))
		}
		if s.statuses != nil {
			s.statuses.Record(src.Name(), health, r.status, len(r.events))
		}
	}

	return result
}

// mockScenario mirrors one entry of the scenarios file.
type mockScenario struct {
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Severity    string  `json:"severity"`
}

// loadMockScenarios reads the scenario file and converts each entry to
// a source event with source "mock".
func (s *Switchboard) loadMockScenarios() ([]models.SourceEvent, string) {
	data, err := os.ReadFile(s.scenariosPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "Mock: scenarios file missing"
		}
		s.logger.Error("mock scenarios read failed", zap.Error(err))
		return nil, "Mock: scenarios file missing"
	}

	var scenarios []mockScenario
	if err := json.Unmarshal(data, &scenarios); err != nil {
		s.logger.Error("mock scenarios parse error", zap.Error(err))
		return nil, "Mock: Parse Error"
	}

	events := make([]models.SourceEvent, 0, len(scenarios))
	for _, sc := range scenarios {
		disasterType := sc.Type
		if disasterType == "" {
			disasterType = "unknown"
		}
		events = append(events, models.SourceEvent{
			Source:       "mock",
			DisasterType: disasterType,
			Description:  sc.Description,
			Lat:          sc.Lat,
			Lon:          sc.Lon,
			Severity:     sc.Severity,
			Raw: map[string]interface{}{
				"type":        sc.Type,
				"description": sc.Description,
				"lat":         sc.Lat,
				"lon":         sc.Lon,
				"severity":    sc.Severity,
			},
		})
	}

	return events, fmt.Sprintf("Mock: %d scenarios loaded", len(events))
}
