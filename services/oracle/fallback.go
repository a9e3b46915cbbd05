package oracle

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kushwahaamar-dev/sentinel/models"
	"github.com/kushwahaamar-dev/sentinel/services/normalize"
)

// ruleFallback is the deterministic decision engine used when the live
// judge is unavailable or over budget. Rules key off the event bucket
// and the severity markers the source adapters attach.
func ruleFallback(event models.SourceEvent, bucket normalize.Bucket) *models.Decision {
	severity := strings.ToLower(strings.TrimSpace(event.Severity))
	if severity == "" {
		if v, ok := event.Raw["alert_level"].(string); ok {
			severity = strings.ToLower(strings.TrimSpace(v))
		}
	}

	isRedAlert := severity == "red" || severity == "severe" || severity == "extreme" || severity == "warning"
	location := fmt.Sprintf("%.4f, %.4f", event.Lat, event.Lon)

	switch bucket {
	case normalize.BucketQuake:
		magnitude := rawMagnitude(event.Raw)
		if magnitude >= 7.0 || isRedAlert {
			amount := "6500"
			if magnitude > 0 {
				capped := int(magnitude * 1000)
				if capped > 10000 {
					capped = 10000
				}
				amount = strconv.Itoa(capped)
			}
			return &models.Decision{
				Authorization:    models.AuthorizationYes,
				Verdict:          models.VerdictPayout,
				Confidence:       85,
				Reasoning:        fmt.Sprintf("Significant seismic event detected at %s. Severity: %s. Population centers potentially affected.", location, severity),
				PayoutAmountUSDC: amount,
			}
		}
	case normalize.BucketFire:
		if isRedAlert || rawContains(event, "active") {
			return &models.Decision{
				Authorization:    models.AuthorizationYes,
				Verdict:          models.VerdictPayout,
				Confidence:       82,
				Reasoning:        fmt.Sprintf("Thermal anomaly/fire event confirmed at %s. Alert level: %s. Immediate risk to infrastructure.", location, severity),
				PayoutAmountUSDC: "5500",
			}
		}
	case normalize.BucketStorm:
		if isRedAlert || rawContains(event, "evacuation") || rawContains(event, "warning") {
			return &models.Decision{
				Authorization:    models.AuthorizationYes,
				Verdict:          models.VerdictPayout,
				Confidence:       88,
				Reasoning:        fmt.Sprintf("Severe weather event at %s. Official warnings issued. Population at significant risk.", location),
				PayoutAmountUSDC: "7200",
			}
		}
	}

	if severity == "" {
		severity = "unknown"
	}
	return &models.Decision{
		Authorization:    models.AuthorizationNo,
		Verdict:          models.VerdictDeny,
		Confidence:       45,
		Reasoning:        fmt.Sprintf("Event at %s does not meet catastrophic thresholds. Severity level: %s. Monitoring continues.", location, severity),
		PayoutAmountUSDC: "0",
	}
}

// rawMagnitude extracts a numeric magnitude from the raw payload.
func rawMagnitude(raw map[string]interface{}) float64 {
	v, ok := raw["magnitude"]
	if !ok {
		return 0
	}
	switch m := v.(type) {
	case float64:
		return m
	case int:
		return float64(m)
	case string:
		f, err := strconv.ParseFloat(m, 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}

// rawContains reports whether the needle appears anywhere in the event
// severity, description or raw payload, case-insensitively.
func rawContains(event models.SourceEvent, needle string) bool {
	hay := strings.ToLower(event.Severity + " " + event.Description + " " + fmt.Sprintf("%v", event.Raw))
	return strings.Contains(hay, needle)
}
