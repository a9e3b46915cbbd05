package gdacs

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

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:gdacs="http://www.gdacs.org" xmlns:georss="http://www.georss.org/georss">
  <channel>
    <item>
      <title>Red earthquake alert (Japan)</title>
      <description>M8.2 earthquake off the coast of Honshu</description>
      <link>https://www.gdacs.org/report.aspx?eventid=1</link>
      <gdacs:alertlevel>Red</gdacs:alertlevel>
      <gdacs:eventtype>EQ</gdacs:eventtype>
      <georss:point>38.3220 142.3690</georss:point>
    </item>
    <item>
      <title>Green earthquake alert (Chile)</title>
      <description>M4.8 earthquake in northern Chile</description>
      <gdacs:alertlevel>Green</gdacs:alertlevel>
      <gdacs:eventtype>EQ</gdacs:eventtype>
      <georss:point>-23.6500 -70.4000</georss:point>
    </item>
    <item>
      <title>Orange tropical cyclone alert (Philippines)</title>
      <description>Tropical cyclone approaching Luzon</description>
      <gdacs:alertlevel>Orange</gdacs:alertlevel>
      <gdacs:eventtype>TC</gdacs:eventtype>
      <georss:point>16.0000 122.0000</georss:point>
    </item>
    <item>
      <title>Red flood alert, unparseable point</title>
      <description>Flooding</description>
      <gdacs:alertlevel>Red</gdacs:alertlevel>
      <gdacs:eventtype>FL</gdacs:eventtype>
      <georss:point>not-a-point</georss:point>
    </item>
  </channel>
</rss>`

func testClient() *sources.Client {
	return sources.NewClient(sources.ClientConfig{
		Timeout:    2 * time.Second,
		RetryDelay: time.Millisecond,
	})
}

func TestFetchKeepsOnlyRedAndOrangeAlerts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(sampleFeed))
	}))
	defer server.Close()

	adapter := New(server.URL, testClient())
	events, status, err := adapter.Fetch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "GDACS: 2 significant alerts", status)
	require.Len(t, events, 2)

	quake := events[0]
	assert.Equal(t, "gdacs", quake.Source)
	assert.Equal(t, "eq", quake.DisasterType)
	assert.Equal(t, "M8.2 earthquake off the coast of Honshu", quake.Description)
	assert.InDelta(t, 38.3220, quake.Lat, 0.0001)
	assert.InDelta(t, 142.3690, quake.Lon, 0.0001)
	assert.Equal(t, "Red", quake.Severity)

	cyclone := events[1]
	assert.Equal(t, "tc", cyclone.DisasterType)
	assert.Equal(t, "Orange", cyclone.Severity)
}

func TestFetchQuietFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<rss><channel></channel></rss>`))
	}))
	defer server.Close()

	adapter := New(server.URL, testClient())
	events, status, err := adapter.Fetch(context.Background())

	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Equal(t, "GDACS: No Red/Orange alerts", status)
}

func TestFetchReportsRateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	adapter := New(server.URL, testClient())
	events, status, err := adapter.Fetch(context.Background())

	require.Error(t, err)
	assert.Empty(t, events)
	assert.Equal(t, "GDACS: Rate Limited", status)
}

func TestFetchReportsParseError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<rss><channel>`))
	}))
	defer server.Close()

	adapter := New(server.URL, testClient())
	_, status, err := adapter.Fetch(context.Background())

	require.Error(t, err)
	assert.Equal(t, "GDACS: Parse Error", status)
}
