package eonet

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kushwahaamar-dev/sentinel/models"
	"github.com/kushwahaamar-dev/sentinel/services/sources"
)

const defaultFeedURL = "https://eonet.gsfc.nasa.gov/api/v3/events"

// Adapter normalizes NASA EONET open events for the wildfire and
// volcano categories. Events whose latest geometry update is older
// than seven days are dropped; wildfires and volcanoes can persist,
// so the window is wider than for weather alerts.
type Adapter struct {
	url    string
	client *sources.Client
	now    func() time.Time
}

// New creates a new EONET adapter
func New(feedURL string, client *sources.Client) *Adapter {
	if feedURL == "" {
		feedURL = defaultFeedURL
	}
	return &Adapter{url: feedURL, client: client, now: time.Now}
}

// Name returns the source name
func (a *Adapter) Name() string {
	return "eonet"
}

// Fetch retrieves open wildfire and volcano events.
func (a *Adapter) Fetch(ctx context.Context) ([]models.SourceEvent, string, error) {
	reqURL := a.url + "?" + url.Values{
		"status":   {"open"},
		"category": {"wildfires,volcanoes"},
	}.Encode()

	var payload eonetResponse
	if err := a.client.GetJSON(ctx, "EONET", reqURL, &payload); err != nil {
		return nil, sources.StatusLine("EONET", err), err
	}

	now := a.now().UTC()
	weekAgo := now.Add(-7 * 24 * time.Hour)
	dayAgo := now.Add(-24 * time.Hour)

	var events []models.SourceEvent
	for _, ev := range payload.Events {
		geom, ts, ok := latestGeometry(ev.Geometry)
		if !ok || ts.Before(weekAgo) {
			continue
		}
		if len(geom.Coordinates) < 2 {
			continue
		}
		lon, lat := geom.Coordinates[0], geom.Coordinates[1]

		severity := "recent"
		if !ts.Before(dayAgo) {
			severity = "active"
		}

		disasterType := "wildfire"
		if len(ev.Categories) > 0 && ev.Categories[0].ID != "" {
			disasterType = strings.ToLower(ev.Categories[0].ID)
		}

		events = append(events, models.SourceEvent{
			Source:       a.Name(),
			DisasterType: disasterType,
			Description:  ev.Title,
			Lat:          lat,
			Lon:          lon,
			Severity:     severity,
			Raw: map[string]interface{}{
				"id":          ev.ID,
				"link":        ev.Link,
				"latest_date": geom.Date,
			},
		})
	}

	if len(events) == 0 {
		return events, "EONET: Quiet", nil
	}
	return events, fmt.Sprintf("EONET: %d events", len(events)), nil
}

// latestGeometry returns the geometry entry with the most recent parseable date.
func latestGeometry(geoms []eonetGeometry) (eonetGeometry, time.Time, bool) {
	var best eonetGeometry
	var bestTS time.Time
	found := false
	for _, g := range geoms {
		ts, err := parseISO8601(g.Date)
		if err != nil {
			continue
		}
		if !found || ts.After(bestTS) {
			best, bestTS, found = g, ts, true
		}
	}
	return best, bestTS, found
}

func parseISO8601(value string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339, value)
	if err == nil {
		return ts.UTC(), nil
	}
	// EONET occasionally omits the zone designator.
	ts, err = time.Parse("2006-01-02T15:04:05", value)
	if err != nil {
		return time.Time{}, err
	}
	return ts.UTC(), nil
}

// EONET response types

type eonetResponse struct {
	Events []eonetEvent `json:"events"`
}

type eonetEvent struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	Link       string          `json:"link"`
	Categories []eonetCategory `json:"categories"`
	Geometry   []eonetGeometry `json:"geometry"`
}

type eonetCategory struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type eonetGeometry struct {
	Date        string    `json:"date"`
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}
