package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kushwahaamar-dev/sentinel/models"
)

func seedPayout(t *testing.T, records *fakeRecordRepo, amount string) {
	t.Helper()
	event := models.SourceEvent{
		Source:       "mock",
		DisasterType: "earthquake",
		Description:  "M8.2 Earthquake near Tokyo " + amount,
		Lat:          35.67,
		Lon:          139.65,
		Severity:     "extreme",
	}
	record := models.NewPipelineRecord(event, "fp-"+amount, "quake").
		WithPayout("0xdead", amount).
		Finish(models.OutcomeCompleted)
	require.NoError(t, records.Insert(context.Background(), record))
}

func TestStatusHandler(t *testing.T) {
	deps, records, logRepo := testDeps(t, models.ModeMock)

	require.NoError(t, logRepo.Insert(context.Background(),
		models.NewLogEntry("ANALYZING: M8.2 Earthquake near Tokyo...", models.LogWarn)))
	require.NoError(t, logRepo.Insert(context.Background(),
		models.NewLogEntry("PAYOUT COMPLETE: 8200 USDC", models.LogOK)))
	seedPayout(t, records, "8200")

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	w := httptest.NewRecorder()
	StatusHandler(deps).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Mode         string              `json:"mode"`
		Logs         []map[string]string `json:"logs"`
		VaultBalance float64             `json:"vault_balance"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))

	assert.Equal(t, "MOCK", response.Mode)
	assert.InDelta(t, 1800.0, response.VaultBalance, 0.001)

	// Oldest first for the dashboard.
	require.Len(t, response.Logs, 2)
	assert.Equal(t, "ANALYZING: M8.2 Earthquake near Tokyo...", response.Logs[0]["text"])
	assert.Equal(t, "warn", response.Logs[0]["status"])
	assert.Equal(t, "PAYOUT COMPLETE: 8200 USDC", response.Logs[1]["text"])
}

func TestStatusHandlerVaultFloor(t *testing.T) {
	deps, records, _ := testDeps(t, models.ModeMock)

	// Spend past the seed; the reported balance floors at zero.
	seedPayout(t, records, "8200")
	seedPayout(t, records, "5600")

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	w := httptest.NewRecorder()
	StatusHandler(deps).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		VaultBalance float64 `json:"vault_balance"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Zero(t, response.VaultBalance)
}

func TestHistoryHandler(t *testing.T) {
	t.Run("returns recent records", func(t *testing.T) {
		deps, records, _ := testDeps(t, models.ModeMock)
		seedPayout(t, records, "8200")

		req := httptest.NewRequest(http.MethodGet, "/history", nil)
		w := httptest.NewRecorder()
		HistoryHandler(deps).ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var response struct {
			Events []json.RawMessage `json:"events"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Len(t, response.Events, 1)
	})

	t.Run("rejects a non-numeric limit", func(t *testing.T) {
		deps, _, _ := testDeps(t, models.ModeMock)

		req := httptest.NewRequest(http.MethodGet, "/history?limit=abc", nil)
		w := httptest.NewRecorder()
		HistoryHandler(deps).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects a non-positive limit", func(t *testing.T) {
		deps, _, _ := testDeps(t, models.ModeMock)

		req := httptest.NewRequest(http.MethodGet, "/history?limit=0", nil)
		w := httptest.NewRecorder()
		HistoryHandler(deps).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestStatisticsHandler(t *testing.T) {
	deps, records, _ := testDeps(t, models.ModeMock)
	seedPayout(t, records, "8200")
	seedPayout(t, records, "5600")

	req := httptest.NewRequest(http.MethodGet, "/statistics", nil)
	w := httptest.NewRecorder()
	StatisticsHandler(deps).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		TotalEventsProcessed int            `json:"total_events_processed"`
		TotalPayouts         int            `json:"total_payouts"`
		TotalPayoutAmount    float64        `json:"total_payout_amount"`
		VaultBalance         float64        `json:"vault_balance"`
		EventsByType         map[string]int `json:"events_by_type"`
		UptimeSeconds        float64        `json:"uptime_seconds"`
		Mode                 string         `json:"mode"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))

	assert.Equal(t, 2, response.TotalEventsProcessed)
	assert.Equal(t, 2, response.TotalPayouts)
	assert.InDelta(t, 13800.0, response.TotalPayoutAmount, 0.001)
	assert.Zero(t, response.VaultBalance)
	assert.Equal(t, map[string]int{"quake": 2}, response.EventsByType)
	assert.Greater(t, response.UptimeSeconds, 0.0)
	assert.Equal(t, "MOCK", response.Mode)
}

func TestPolicyHandler(t *testing.T) {
	deps, _, _ := testDeps(t, models.ModeMock)

	req := httptest.NewRequest(http.MethodGet, "/policy", nil)
	w := httptest.NewRecorder()
	PolicyHandler(deps).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))

	assert.EqualValues(t, 10000, response["max_payout_usdc"])
	assert.EqualValues(t, 10000, response["vault_balance_usdc"])
	assert.Equal(t, "gemini-1.5-flash", response["ai_model"])
	assert.Contains(t, response, "triggers")
	assert.Contains(t, response, "high_risk_zones")
}

func TestModeHandler(t *testing.T) {
	deps, _, _ := testDeps(t, models.ModeLive)

	req := httptest.NewRequest(http.MethodGet, "/mode", nil)
	w := httptest.NewRecorder()
	ModeHandler(deps).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"mode":"LIVE"}`, w.Body.String())
}

func TestSourceStatusHandler(t *testing.T) {
	deps, _, _ := testDeps(t, models.ModeLive)
	deps.Statuses.Record("GDACS", models.SourceHealthOK, "GDACS: 2 significant alerts", 2)
	deps.Statuses.Record("NWS", models.SourceHealthError, "NWS: Signal Lost", 0)

	req := httptest.NewRequest(http.MethodGet, "/sources/status", nil)
	w := httptest.NewRecorder()
	SourceStatusHandler(deps).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Sources map[string]models.SourceStatus `json:"sources"`
		Mode    string                         `json:"mode"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))

	assert.Equal(t, "LIVE", response.Mode)
	require.Len(t, response.Sources, 2)
	assert.Equal(t, models.SourceHealthOK, response.Sources["GDACS"].Status)
	assert.Equal(t, models.SourceHealthError, response.Sources["NWS"].Status)
}
