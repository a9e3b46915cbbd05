package owm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kushwahaamar-dev/sentinel/services/sources"
)

func testClient() *sources.Client {
	return sources.NewClient(sources.ClientConfig{
		Timeout:    2 * time.Second,
		RetryDelay: time.Millisecond,
	})
}

func TestFetchWithoutKeyReportsMissing(t *testing.T) {
	adapter := New("http://unused.invalid", "", testClient())

	events, status, err := adapter.Fetch(context.Background())

	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Equal(t, "OWM: Missing API key", status)
}

func TestFetchKeepsWarningsOnly(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("appid"))
		w.Write([]byte(`{
			"alerts": [
				{"sender_name": "JMA", "event": "Typhoon Warning", "description": "Typhoon approaching", "start": 1, "end": 2},
				{"sender_name": "JMA", "event": "Heat Advisory", "description": "Stay hydrated", "start": 1, "end": 2}
			]
		}`))
	}))
	defer server.Close()

	adapter := New(server.URL, "test-key", testClient())
	events, status, err := adapter.Fetch(context.Background())

	require.NoError(t, err)
	// One qualifying alert per probed zone.
	assert.Equal(t, "OWM: 3 alerts", status)
	require.Len(t, events, 3)
	assert.Equal(t, "owm", events[0].Source)
	assert.Equal(t, "storm", events[0].DisasterType)
	assert.Equal(t, "Typhoon Warning", events[0].Severity)
}

func TestFetchFailsOnlyWhenAllZonesFail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	adapter := New(server.URL, "bad-key", testClient())
	events, status, err := adapter.Fetch(context.Background())

	require.Error(t, err)
	assert.Empty(t, events)
	assert.Equal(t, "OWM: Unauthorized (check API key / plan)", status)
}
