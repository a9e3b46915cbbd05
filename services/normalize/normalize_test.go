package normalize

import (
	"testing"

	"github.com/kushwahaamar-dev/sentinel/models"
	"github.com/stretchr/testify/assert"
)

func TestNorm(t *testing.T) {
	assert.Equal(t, "m8.2 earthquake", Norm("  M8.2   Earthquake "))
	assert.Equal(t, "", Norm("   "))
	assert.Equal(t, "a b c", Norm("a\t b\n\nc"))
}

func TestBucketOf(t *testing.T) {
	tests := []struct {
		name         string
		disasterType string
		want         Bucket
	}{
		{"earthquake", "Earthquake", BucketQuake},
		{"magnitude headline", "M8.2 Earthquake", BucketQuake},
		{"eq shortcode", "EQ", BucketQuake},
		{"seismic", "Seismic Swarm", BucketQuake},
		{"wildfire", "wildfires", BucketFire},
		{"volcano", "Volcanoes", BucketFire},
		{"thermal", "thermal anomaly", BucketFire},
		{"hurricane", "Hurricane", BucketStorm},
		{"typhoon", "Typhoon Warning", BucketStorm},
		{"flood", "Flash Flood", BucketStorm},
		{"tsunami", "tsunami", BucketStorm},
		{"tornado", "tornado outbreak", BucketStorm},
		{"unmatched", "minor tremor", BucketOther},
		{"empty", "", BucketOther},
		{"whitespace variants", "  EARTHQUAKE\t", BucketQuake},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BucketOf(tt.disasterType))
		})
	}
}

func TestBucketOf_Precedence(t *testing.T) {
	// Quake keywords win over fire and storm keywords when both match.
	assert.Equal(t, BucketQuake, BucketOf("earthquake and fire"))
	assert.Equal(t, BucketFire, BucketOf("wildfire after storm"))
}

func TestFingerprint_Deterministic(t *testing.T) {
	event := models.SourceEvent{
		Source:       "gdacs",
		DisasterType: "Earthquake",
		Description:  "M8.2 quake near Tokyo",
		Lat:          35.6764,
		Lon:          139.65,
	}

	first := Fingerprint(event)
	second := Fingerprint(event)
	assert.Equal(t, first, second)
	assert.Len(t, first, 16)
}

func TestFingerprint_NormalizesCosmeticVariation(t *testing.T) {
	base := models.SourceEvent{
		Source:       "gdacs",
		DisasterType: "Earthquake",
		Description:  "M8.2 quake near Tokyo",
		Lat:          35.6764,
		Lon:          139.65,
	}
	variant := models.SourceEvent{
		Source:       "  GDACS ",
		DisasterType: "EARTHQUAKE",
		Description:  "M8.2   quake  near\tTokyo",
		Lat:          35.67641, // rounds to the same 4 decimal places
		Lon:          139.65,
	}

	assert.Equal(t, Fingerprint(base), Fingerprint(variant))
}

func TestFingerprint_DistinguishesDifferentEvents(t *testing.T) {
	a := models.SourceEvent{Source: "gdacs", DisasterType: "quake", Description: "a", Lat: 1, Lon: 2}
	b := models.SourceEvent{Source: "gdacs", DisasterType: "quake", Description: "b", Lat: 1, Lon: 2}
	c := models.SourceEvent{Source: "gdacs", DisasterType: "quake", Description: "a", Lat: 1.001, Lon: 2}

	assert.NotEqual(t, Fingerprint(a), Fingerprint(b))
	assert.NotEqual(t, Fingerprint(a), Fingerprint(c))
}
