// Package normalize canonicalizes free-text disaster categories into stable
// buckets and computes deterministic event fingerprints for deduplication.
package normalize

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/kushwahaamar-dev/sentinel/models"
)

// Bucket is the canonical disaster category derived from a free-text type.
// It is never persisted independently; always recomputed from the raw type.
type Bucket string

const (
	BucketQuake Bucket = "quake"
	BucketFire  Bucket = "fire"
	BucketStorm Bucket = "storm"
	BucketOther Bucket = "other"
)

var spaceRE = regexp.MustCompile(`\s+`)

// Norm trims, lowercases, and collapses internal whitespace.
func Norm(s string) string {
	return spaceRE.ReplaceAllString(strings.TrimSpace(strings.ToLower(s)), " ")
}

var (
	quakeKeywords = []string{"earthquake", "quake", "eq", "seismic"}
	fireKeywords  = []string{"wildfire", "wildfires", "fire", "volcano", "volcanoes", "thermal"}
	stormKeywords = []string{"hurricane", "cyclone", "typhoon", "storm", "tornado", "flood", "fl", "tsunami", "ts"}
)

// BucketOf maps a heterogeneous source type to a stable trigger bucket.
// Matching is case-insensitive substring matching in keyword-precedence
// order: quake keywords first, then fire, then storm. Every input maps to
// exactly one bucket; unmatched types map to BucketOther.
func BucketOf(disasterType string) Bucket {
	t := Norm(disasterType)
	for _, k := range quakeKeywords {
		if strings.Contains(t, k) {
			return BucketQuake
		}
	}
	for _, k := range fireKeywords {
		if strings.Contains(t, k) {
			return BucketFire
		}
	}
	for _, k := range stormKeywords {
		if strings.Contains(t, k) {
			return BucketStorm
		}
	}
	return BucketOther
}

// Fingerprint computes the stable deduplication identity of an event.
// Text fields are normalized and coordinates rounded to 4 decimal places
// before hashing, so cosmetically different renderings of the same upstream
// record collapse to one identity. The function is pure: no randomness and
// no time component.
func Fingerprint(event models.SourceEvent) string {
	h := sha1.New()
	h.Write([]byte(Norm(event.Source)))
	h.Write([]byte(Norm(event.DisasterType)))
	h.Write([]byte(Norm(event.Description)))
	fmt.Fprintf(h, "%.4f,%.4f", event.Lat, event.Lon)
	return hex.EncodeToString(h.Sum(nil))[:16]
}
