package gdacs

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/kushwahaamar-dev/sentinel/models"
	"github.com/kushwahaamar-dev/sentinel/services/sources"
)

const defaultFeedURL = "https://www.gdacs.org/xml/rss.xml"

// Adapter normalizes the GDACS RSS feed. Only Red and Orange alerts are
// emitted; Green alerts are routine monitoring noise.
type Adapter struct {
	url    string
	client *sources.Client
}

// New creates a new GDACS adapter
func New(url string, client *sources.Client) *Adapter {
	if url == "" {
		url = defaultFeedURL
	}
	return &Adapter{url: url, client: client}
}

// Name returns the source name
func (a *Adapter) Name() string {
	return "gdacs"
}

// Fetch retrieves the RSS feed and returns the significant alerts.
func (a *Adapter) Fetch(ctx context.Context) ([]models.SourceEvent, string, error) {
	var feed rssFeed
	if err := a.client.GetXML(ctx, "GDACS", a.url, &feed); err != nil {
		return nil, sources.StatusLine("GDACS", err), err
	}

	var events []models.SourceEvent
	for _, item := range feed.Channel.Items {
		alertLevel := strings.TrimSpace(item.AlertLevel)
		if alertLevel != "Red" && alertLevel != "Orange" {
			continue
		}

		lat, lon, ok := parsePoint(item.Point)
		if !ok {
			continue
		}

		eventType := strings.ToLower(strings.TrimSpace(item.EventType))
		if eventType == "" {
			eventType = "unknown"
		}

		events = append(events, models.SourceEvent{
			Source:       a.Name(),
			DisasterType: eventType,
			Description:  strings.TrimSpace(item.Description),
			Lat:          lat,
			Lon:          lon,
			Severity:     alertLevel,
			Raw: map[string]interface{}{
				"alert_level": alertLevel,
				"title":       item.Title,
				"link":        item.Link,
			},
		})
	}

	if len(events) == 0 {
		return events, "GDACS: No Red/Orange alerts", nil
	}
	return events, fmt.Sprintf("GDACS: %d significant alerts", len(events)), nil
}

// parsePoint parses a georss point, "lat lon" separated by whitespace.
func parsePoint(s string) (float64, float64, bool) {
	parts := strings.Fields(s)
	if len(parts) != 2 {
		return 0, 0, false
	}
	lat, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, 0, false
	}
	lon, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, 0, false
	}
	return lat, lon, true
}

// RSS feed types

type rssFeed struct {
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Items []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Description string `xml:"description"`
	Link        string `xml:"link"`
	AlertLevel  string `xml:"alertlevel"`
	EventType   string `xml:"eventtype"`
	Point       string `xml:"point"`
}
