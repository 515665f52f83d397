package scoring

import (
	"math"
	"sort"
	"strings"

	"emergency-response-backend/internal/geo"
	"emergency-response-backend/internal/models"
)

// Weights control the composite score. They are expected to sum to 1 but are
// not normalized here; config validation owns that.
type Weights struct {
	Distance       float64
	Load           float64
	Specialization float64
}

// DefaultWeights returns the standard weighting: distance 0.4, bed load 0.3,
// specialization 0.3.
func DefaultWeights() Weights {
	return Weights{Distance: 0.4, Load: 0.3, Specialization: 0.3}
}

const (
	// DefaultMaxResults caps a ranking result set
	DefaultMaxResults = 50

	// defaultTotalBeds is assumed when a hospital never reported capacity
	defaultTotalBeds = 50
)

// Facilities whose name suggests they cannot take emergency cases. A hospital
// listing "emergency" or "trauma" as a specialization overrides the match.
var nonEmergencyKeywords = []string{
	"dental", "eye", "skin", "cosmetic", "physio",
	"homeopathy", "ayurveda", "wellness", "hair",
}

// Ranked is one scored candidate in a ranking result.
type Ranked struct {
	Hospital   *models.Hospital `json:"hospital"`
	DistanceKm float64          `json:"distance_km"`
	Score      int              `json:"composite_score"`
}

// EmergencyCapable reports whether the hospital passes the category filter.
func EmergencyCapable(h *models.Hospital) bool {
	if h.HasSpecialization("emergency") || h.HasSpecialization("trauma") {
		return true
	}
	name := strings.ToLower(h.Name)
	for _, kw := range nonEmergencyKeywords {
		if strings.Contains(name, kw) {
			return false
		}
	}
	return true
}

// DistanceScore maps distance in km onto 0..100, hitting zero at 50 km.
// Unknown distances score zero so hospitals without coordinates sink.
func DistanceScore(km float64) float64 {
	if !geo.Known(km) {
		return 0
	}
	return math.Max(0, 100-km*2)
}

// LoadScore maps bed occupancy onto 0..100: empty hospital scores 100, a
// full (or overfull) one scores 0. Unreported capacity assumes
// defaultTotalBeds.
func LoadScore(h *models.Hospital) float64 {
	total := h.TotalBeds
	if total <= 0 {
		total = defaultTotalBeds
	}
	ratio := math.Min(1, float64(h.OccupiedBeds)/float64(total))
	return (1 - ratio) * 100
}

// SpecializationScore is 100 when the hospital lists at least one
// specialization, 50 otherwise.
func SpecializationScore(h *models.Hospital) float64 {
	if len(h.SpecializationList()) > 0 {
		return 100
	}
	return 50
}

// Composite computes the rounded weighted sum of the three sub-scores.
func Composite(w Weights, distanceKm float64, h *models.Hospital) int {
	sum := w.Distance*DistanceScore(distanceKm) +
		w.Load*LoadScore(h) +
		w.Specialization*SpecializationScore(h)
	return int(math.Round(sum))
}

// Rank filters out non-emergency-capable candidates, scores the rest against
// the patient location and returns up to max results ordered by descending
// composite score. Ties keep the candidates' input order (the bounding-box
// query order), so re-ranking identical input is idempotent.
func Rank(patient geo.Point, hospitals []models.Hospital, w Weights, max int) []Ranked {
	if max <= 0 {
		max = DefaultMaxResults
	}

	ranked := make([]Ranked, 0, len(hospitals))
	for i := range hospitals {
		h := &hospitals[i]
		if !EmergencyCapable(h) {
			continue
		}
		km := geo.Distance(patient, geo.Point{Lat: h.Latitude, Lng: h.Longitude})
		ranked = append(ranked, Ranked{
			Hospital:   h,
			DistanceKm: km,
			Score:      Composite(w, km, h),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if len(ranked) > max {
		ranked = ranked[:max]
	}
	return ranked
}
