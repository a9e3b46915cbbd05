package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kushwahaamar-dev/sentinel/models"
	"github.com/kushwahaamar-dev/sentinel/services/sources"
)

type fakeSource struct {
	name   string
	events []models.SourceEvent
	status string
	err    error
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Fetch(ctx context.Context) ([]models.SourceEvent, string, error) {
	return f.events, f.status, f.err
}

func writeScenarios(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenarios.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestIngestMockMode(t *testing.T) {
	path := writeScenarios(t, `[
		{"type": "earthquake", "description": "M8.2 Earthquake near Tokyo", "lat": 35.6762, "lon": 139.6503, "severity": "extreme"},
		{"type": "wildfire", "description": "Wildfire in California", "lat": 38.5, "lon": -121.5, "severity": "severe"}
	]`)

	sb := NewSwitchboard(nil, path, nil, zap.NewNop())
	result := sb.Ingest(context.Background(), models.ModeMock)

	assert.Equal(t, models.ModeMock, result.Mode)
	require.Len(t, result.Events, 2)
	assert.Equal(t, "mock", result.Events[0].Source)
	assert.Equal(t, "earthquake", result.Events[0].DisasterType)
	assert.Equal(t, []string{"Mock: 2 scenarios loaded", "Awaiting simulation trigger"}, result.Logs)
}

func TestIngestMockModeMissingFile(t *testing.T) {
	sb := NewSwitchboard(nil, filepath.Join(t.TempDir(), "nope.json"), nil, zap.NewNop())
	result := sb.Ingest(context.Background(), models.ModeMock)

	assert.Empty(t, result.Events)
	assert.Equal(t, "Mock: scenarios file missing", result.Logs[0])
}

func TestIngestMockModeParseError(t *testing.T) {
	path := writeScenarios(t, `{"not": "a list"`)

	sb := NewSwitchboard(nil, path, nil, zap.NewNop())
	result := sb.Ingest(context.Background(), models.ModeMock)

	assert.Empty(t, result.Events)
	assert.Equal(t, "Mock: Parse Error", result.Logs[0])
}

func TestIngestLiveModeSurvivesPartialFailure(t *testing.T) {
	ok := &fakeSource{
		name: "gdacs",
		events: []models.SourceEvent{
			{Source: "gdacs", DisasterType: "eq", Description: "quake", Lat: 1, Lon: 2},
		},
		status: "GDACS: 1 significant alerts",
	}
	down := &fakeSource{
		name:   "nws",
		status: "NWS: Timeout",
		err:    errors.New("request timed out"),
	}

	statuses := NewStatusCache()
	sb := NewSwitchboard([]sources.Source{ok, down}, "", statuses, zap.NewNop())
	result := sb.Ingest(context.Background(), models.ModeLive)

	assert.Equal(t, models.ModeLive, result.Mode)
	require.Len(t, result.Events, 1)
	assert.Equal(t, []string{"GDACS: 1 significant alerts", "NWS: Timeout"}, result.Logs)

	gdacsStatus, found := statuses.Get("gdacs")
	require.True(t, found)
	assert.Equal(t, models.SourceHealthOK, gdacsStatus.Status)
	assert.Equal(t, 1, gdacsStatus.EventCount)

	nwsStatus, found := statuses.Get("nws")
	require.True(t, found)
	assert.Equal(t, models.SourceHealthError, nwsStatus.Status)
	assert.Equal(t, "NWS: Timeout", nwsStatus.LastMessage)
}
