package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/kushwahaamar-dev/sentinel/app"
	"github.com/kushwahaamar-dev/sentinel/models"
	"github.com/kushwahaamar-dev/sentinel/services/ingest"
	"github.com/kushwahaamar-dev/sentinel/services/normalize"
	"github.com/kushwahaamar-dev/sentinel/services/payout"
	"github.com/kushwahaamar-dev/sentinel/utils"
)

// SimulationRequest optionally narrows a scan to one scenario type.
type SimulationRequest struct {
	ScenarioType string `json:"scenario_type,omitempty"`
}

// eventOut is the wire shape of an ingested event. The id is the
// fingerprint so the analyze endpoint can reference cached events.
type eventOut struct {
	ID           string                 `json:"id"`
	Source       string                 `json:"source"`
	DisasterType string                 `json:"disaster_type"`
	Description  string                 `json:"description"`
	Lat          float64                `json:"lat"`
	Lon          float64                `json:"lon"`
	Severity     string                 `json:"severity,omitempty"`
	Raw          map[string]interface{} `json:"raw,omitempty"`
	Bucket       string                 `json:"bucket"`
}

func eventToWire(event models.SourceEvent, fingerprint string) eventOut {
	return eventOut{
		ID:           fingerprint,
		Source:       event.Source,
		DisasterType: event.DisasterType,
		Description:  event.Description,
		Lat:          event.Lat,
		Lon:          event.Lon,
		Severity:     event.Severity,
		Raw:          event.Raw,
		Bucket:       string(normalize.BucketOf(event.DisasterType)),
	}
}

// SimulateHandler runs one full scan-and-process cycle. In MOCK mode
// this is the way the pipeline is exercised; in LIVE mode it forces a
// scan outside the poller schedule.
func SimulateHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req SimulationRequest
		if r.Body != nil && r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				_ = utils.WriteBadRequest(w, "invalid request body", nil)
				return
			}
		}

		deps.Audit.EmitOK("SYSTEM: STARTING SCAN SEQUENCE...")

		result := deps.Switchboard.Ingest(ctx, deps.Config.Mode)
		for _, line := range result.Logs {
			deps.Audit.Emit(line, ingest.StatusLineSeverity(line), "")
		}

		events := filterByScenarioType(result.Events, req.ScenarioType)
		if len(events) == 0 {
			deps.Audit.EmitWarn("SCAN COMPLETE: NO ACTIONABLE EVENTS")
			_ = utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
				"message": "No events found",
				"events":  []eventOut{},
			})
			return
		}

		results := make([]*payout.Result, 0, len(events))
		for _, event := range events {
			res, err := deps.Pipeline.Process(ctx, deps.Config.Mode, event)
			if err != nil {
				deps.Logger.Error("pipeline run failed",
					zap.String("description", event.Description),
					zap.Error(err))
				continue
			}
			results = append(results, res)
		}

		_ = utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"message": "Scan complete",
			"results": results,
		})
	}
}

// filterByScenarioType keeps events whose bucket or raw type matches.
// An empty filter keeps everything.
func filterByScenarioType(events []models.SourceEvent, scenarioType string) []models.SourceEvent {
	if scenarioType == "" {
		return events
	}
	want := normalize.Norm(scenarioType)
	filtered := make([]models.SourceEvent, 0, len(events))
	for _, event := range events {
		if string(normalize.BucketOf(event.DisasterType)) == want ||
			normalize.Norm(event.DisasterType) == want {
			filtered = append(filtered, event)
		}
	}
	return filtered
}

// LiveIngestHandler returns current source statuses and actionable
// events for the live map. Events are cached by fingerprint so the
// analyze endpoint can pick them up by id.
func LiveIngestHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !deps.Config.IsLive() {
			_ = utils.WriteBadRequest(w, "Not in LIVE mode", nil)
			return
		}

		ctx := r.Context()
		result := deps.Switchboard.Ingest(ctx, models.ModeLive)

		for _, line := range result.Logs {
			deps.Audit.Emit(line, ingest.StatusLineSeverity(line), "")
		}

		events := make([]eventOut, 0, len(result.Events))
		for _, event := range result.Events {
			fingerprint := normalize.Fingerprint(event)
			deps.Events.Put(fingerprint, event)
			events = append(events, eventToWire(event, fingerprint))
		}

		_ = utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"mode":   string(result.Mode),
			"logs":   result.Logs,
			"events": events,
		})
	}
}

// AnalyzeRequest selects a live event for analysis. Either the id of a
// cached event or a full event body is accepted; a provided body wins.
type AnalyzeRequest struct {
	ID           string                 `json:"id"`
	Source       string                 `json:"source"`
	DisasterType string                 `json:"disaster_type"`
	Description  string                 `json:"description"`
	Lat          float64                `json:"lat"`
	Lon          float64                `json:"lon"`
	Severity     string                 `json:"severity,omitempty"`
	Raw          map[string]interface{} `json:"raw,omitempty"`
}

// AnalyzeHandler runs one selected event through the pipeline.
func AnalyzeHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AnalyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			_ = utils.WriteBadRequest(w, "invalid request body", nil)
			return
		}

		var event models.SourceEvent
		switch {
		case req.DisasterType != "" && req.Description != "":
			event = models.SourceEvent{
				Source:       req.Source,
				DisasterType: req.DisasterType,
				Description:  req.Description,
				Lat:          req.Lat,
				Lon:          req.Lon,
				Severity:     req.Severity,
				Raw:          req.Raw,
			}
		case req.ID != "":
			cached, ok := deps.Events.Get(req.ID)
			if !ok {
				_ = utils.WriteNotFound(w, "event not found in live cache")
				return
			}
			event = cached
		default:
			_ = utils.WriteBadRequest(w, "provide an event body or a cached event id", nil)
			return
		}

		result, err := deps.Pipeline.Process(r.Context(), deps.Config.Mode, event)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		_ = utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"result": result,
		})
	}
}
