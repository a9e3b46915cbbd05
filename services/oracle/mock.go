package oracle

import (
	"fmt"

	"github.com/kushwahaamar-dev/sentinel/models"
	"github.com/kushwahaamar-dev/sentinel/services/normalize"
)

// mockDecision is the fixed decision table used in MOCK mode. Keyed by
// bucket so the same scenario always yields the same decision.
func mockDecision(bucket normalize.Bucket, disasterType string) *models.Decision {
	switch bucket {
	case normalize.BucketQuake:
		return &models.Decision{
			Authorization:    models.AuthorizationYes,
			Verdict:          models.VerdictPayout,
			Confidence:       98,
			Reasoning:        "Magnitude 8.2 earthquake centered in Tokyo metropolitan area. Population density exceeds 14M. USGS confirms P-wave detection. Catastrophic infrastructure damage projected. Parametric trigger: ACTIVATED.",
			PayoutAmountUSDC: "8200",
		}
	case normalize.BucketFire:
		return &models.Decision{
			Authorization:    models.AuthorizationYes,
			Verdict:          models.VerdictPayout,
			Confidence:       94,
			Reasoning:        "NASA EONET thermal imaging confirms 450°C anomaly at Yellowstone caldera. 12km ash plume verified by NOAA. Seismic swarm activity persisting >24h. Population at risk: 150K within 50km radius. Parametric trigger: ACTIVATED.",
			PayoutAmountUSDC: "5600",
		}
	case normalize.BucketStorm:
		return &models.Decision{
			Authorization:    models.AuthorizationYes,
			Verdict:          models.VerdictPayout,
			Confidence:       92,
			Reasoning:        "Category 5 hurricane with 180mph sustained winds making landfall. NHC tracking confirms direct path to Miami-Dade (pop. 2.7M). Storm surge 15ft projected. Mandatory evacuation zones A/B/C activated. Parametric trigger: ACTIVATED.",
			PayoutAmountUSDC: "9500",
		}
	default:
		return &models.Decision{
			Authorization:    models.AuthorizationNo,
			Verdict:          models.VerdictDeny,
			Confidence:       25,
			Reasoning:        fmt.Sprintf("Event type '%s' does not meet parametric thresholds. Severity insufficient for autonomous payout. Manual review recommended.", disasterType),
			PayoutAmountUSDC: "0",
		}
	}
}
