package eonet

import (
	"context"
	"fmt"
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

func TestFetchFiltersByRecency(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	fresh := now.Add(-6 * time.Hour).Format(time.RFC3339)
	older := now.Add(-3 * 24 * time.Hour).Format(time.RFC3339)
	stale := now.Add(-10 * 24 * time.Hour).Format(time.RFC3339)

	payload := fmt.Sprintf(`{
		"events": [
			{
				"id": "EONET_1",
				"title": "Ridge Fire, California",
				"categories": [{"id": "wildfires", "title": "Wildfires"}],
				"geometry": [
					{"date": %q, "type": "Point", "coordinates": [-120.5, 38.2]},
					{"date": %q, "type": "Point", "coordinates": [-120.6, 38.1]}
				]
			},
			{
				"id": "EONET_2",
				"title": "Kilauea Volcano",
				"categories": [{"id": "volcanoes", "title": "Volcanoes"}],
				"geometry": [{"date": %q, "type": "Point", "coordinates": [-155.28, 19.42]}]
			},
			{
				"id": "EONET_3",
				"title": "Old burn scar",
				"categories": [{"id": "wildfires", "title": "Wildfires"}],
				"geometry": [{"date": %q, "type": "Point", "coordinates": [-118.0, 34.0]}]
			},
			{
				"id": "EONET_4",
				"title": "No geometry",
				"categories": [{"id": "wildfires", "title": "Wildfires"}],
				"geometry": []
			}
		]
	}`, fresh, stale, older, stale)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "open", r.URL.Query().Get("status"))
		assert.Equal(t, "wildfires,volcanoes", r.URL.Query().Get("category"))
		w.Write([]byte(payload))
	}))
	defer server.Close()

	adapter := New(server.URL, testClient())
	adapter.now = func() time.Time { return now }

	events, status, err := adapter.Fetch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "EONET: 2 events", status)
	require.Len(t, events, 2)

	fire := events[0]
	assert.Equal(t, "eonet", fire.Source)
	assert.Equal(t, "wildfires", fire.DisasterType)
	assert.Equal(t, "active", fire.Severity)
	assert.InDelta(t, 38.2, fire.Lat, 0.0001)
	assert.InDelta(t, -120.5, fire.Lon, 0.0001)

	volcano := events[1]
	assert.Equal(t, "volcanoes", volcano.DisasterType)
	assert.Equal(t, "recent", volcano.Severity)
}

func TestFetchQuietFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"events": []}`))
	}))
	defer server.Close()

	adapter := New(server.URL, testClient())
	events, status, err := adapter.Fetch(context.Background())

	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Equal(t, "EONET: Quiet", status)
}

func TestFetchReportsTimeoutLabel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := sources.NewClient(sources.ClientConfig{
		Timeout:    50 * time.Millisecond,
		MaxRetries: 1,
		RetryDelay: time.Millisecond,
	})
	adapter := New(server.URL, client)

	_, status, err := adapter.Fetch(context.Background())

	require.Error(t, err)
	assert.Equal(t, "EONET: Timeout", status)
}
