package nws

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kushwahaamar-dev/sentinel/models"
	"github.com/kushwahaamar-dev/sentinel/services/sources"
)

const defaultFeedURL = "https://api.weather.gov/alerts/active"

// maxAlerts caps how many alerts one fetch can emit; the national feed
// routinely carries hundreds of advisories at once.
const maxAlerts = 20

// Keywords that mark an alert significant enough to ingest. Advisories
// without one of these are filtered unless the CAP severity already
// says extreme or severe.
var significantKeywords = []string{
	"warning", "watch", "evac", "evacu",
	"hurricane", "tornado", "tropical storm", "storm surge",
	"severe thunderstorm", "flash flood",
}

// Fallback coordinates when an alert carries no geometry (zone-coded
// alerts often don't): Miami, the first US high-risk zone.
const (
	fallbackLat = 25.7617
	fallbackLon = -80.1918
)

// Adapter normalizes active NOAA/NWS alerts (US only).
type Adapter struct {
	url    string
	client *sources.Client
}

// New creates a new NWS adapter
func New(url string, client *sources.Client) *Adapter {
	if url == "" {
		url = defaultFeedURL
	}
	return &Adapter{url: url, client: client}
}

// Name returns the source name
func (a *Adapter) Name() string {
	return "nws"
}

// Fetch retrieves all active alerts and keeps the significant ones.
func (a *Adapter) Fetch(ctx context.Context) ([]models.SourceEvent, string, error) {
	var payload alertCollection
	if err := a.client.GetJSON(ctx, "NWS", a.url, &payload); err != nil {
		return nil, sources.StatusLine("NWS", err), err
	}

	var events []models.SourceEvent
	for _, feat := range payload.Features {
		if len(events) >= maxAlerts {
			break
		}

		props := feat.Properties
		headline := strings.TrimSpace(props.Headline)
		if headline == "" {
			headline = strings.TrimSpace(props.Event)
		}
		description := strings.TrimSpace(props.Description)
		instruction := strings.TrimSpace(props.Instruction)
		severity := strings.ToLower(strings.TrimSpace(props.Severity))

		if !significant(headline, description, instruction, severity) {
			continue
		}

		lat, lon, ok := feat.Geometry.centroid()
		if !ok {
			lat, lon = fallbackLat, fallbackLon
		}

		eventSeverity := severity
		if eventSeverity == "" {
			eventSeverity = headline
		}
		eventDescription := headline
		if eventDescription == "" {
			eventDescription = description
		}
		if eventDescription == "" {
			eventDescription = "NWS Alert"
		}

		sender := strings.TrimSpace(props.SenderName)
		if sender == "" {
			sender = "NWS"
		}

		events = append(events, models.SourceEvent{
			Source:       a.Name(),
			DisasterType: "storm",
			Description:  eventDescription,
			Lat:          lat,
			Lon:          lon,
			Severity:     eventSeverity,
			Raw: map[string]interface{}{
				"sender_name": sender,
				"headline":    headline,
				"severity":    severity,
				"description": description,
				"instruction": instruction,
				"areaDesc":    props.AreaDesc,
				"id":          props.ID,
				"web":         props.Web,
			},
		})
	}

	if len(events) == 0 {
		return events, "NWS: No warnings", nil
	}
	return events, fmt.Sprintf("NWS: %d significant alerts", len(events)), nil
}

func significant(headline, description, instruction, severity string) bool {
	if severity == "extreme" || severity == "severe" {
		return true
	}
	hay := strings.ToLower(headline + " " + description + " " + instruction)
	for _, kw := range significantKeywords {
		if strings.Contains(hay, kw) {
			return true
		}
	}
	return false
}

// GeoJSON alert types

type alertCollection struct {
	Features []alertFeature `json:"features"`
}

type alertFeature struct {
	Geometry   alertGeometry   `json:"geometry"`
	Properties alertProperties `json:"properties"`
}

type alertProperties struct {
	ID          string `json:"id"`
	Event       string `json:"event"`
	Headline    string `json:"headline"`
	Description string `json:"description"`
	Instruction string `json:"instruction"`
	Severity    string `json:"severity"`
	SenderName  string `json:"senderName"`
	AreaDesc    string `json:"areaDesc"`
	Web         string `json:"web"`
}

type alertGeometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// centroid returns a representative lat/lon for the geometry: the point
// itself, or the mean of the outer ring for polygons.
func (g alertGeometry) centroid() (float64, float64, bool) {
	switch g.Type {
	case "Point":
		var coords []float64
		if err := json.Unmarshal(g.Coordinates, &coords); err != nil || len(coords) < 2 {
			return 0, 0, false
		}
		return coords[1], coords[0], true
	case "Polygon":
		var rings [][][]float64
		if err := json.Unmarshal(g.Coordinates, &rings); err != nil || len(rings) == 0 || len(rings[0]) == 0 {
			return 0, 0, false
		}
		var sumLat, sumLon float64
		for _, c := range rings[0] {
			if len(c) < 2 {
				return 0, 0, false
			}
			sumLon += c[0]
			sumLat += c[1]
		}
		n := float64(len(rings[0]))
		return sumLat / n, sumLon / n, true
	}
	return 0, 0, false
}
