package expansion

import (
	"sort"

	"github.com/gresik-digital/expansion-cli/internal/model"
)

// Severity classifies how much of the selected catchment a conflict consumes.
type Severity string

// Severity levels, also reused as the general risk classifier scale.
const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Overlap-fraction thresholds for severity classification.
const (
	severityHighPct   = 0.35
	severityMediumPct = 0.15
)

// Conflict describes the catchment overlap between the selected location and
// one existing distributor. Computed fresh per call, never persisted.
type Conflict struct {
	OtherID        int64    `json:"other_distributor_id"`
	OtherName      string   `json:"other_distributor_name"`
	DistanceKm     float64  `json:"distance_km"`
	OverlapAreaKm2 float64  `json:"overlap_area_km2"`
	OverlapPct     float64  `json:"overlap_pct"`
	Severity       Severity `json:"severity"`
}

// SeverityFromOverlapPct maps an overlap fraction (0-1) to a severity level.
func SeverityFromOverlapPct(pct float64) Severity {
	switch {
	case pct >= severityHighPct:
		return SeverityHigh
	case pct >= severityMediumPct:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// ComputeConflicts returns the catchment overlaps between the selected
// location and every other distributor. Distributors with zero geometric
// overlap are excluded. The result is sorted descending by overlap fraction;
// ties keep the source order of the distributor slice.
func ComputeConflicts(selectedID int64, center model.GeoPoint, radiusKm float64, distributors []model.Distributor) []Conflict {
	selectedArea := CatchmentAreaKm2(radiusKm)

	var conflicts []Conflict
	for _, d := range distributors {
		if d.ID == selectedID {
			continue
		}
		other := model.NormalizeDistributor(d)

		dist := HaversineKm(center, other.Location)
		area := CircleIntersectionAreaKm2(radiusKm, other.ServiceRadiusKm, dist)
		if area <= 0 {
			continue
		}

		pct := 0.0
		if selectedArea > 0 {
			pct = area / selectedArea
		}

		conflicts = append(conflicts, Conflict{
			OtherID:        other.ID,
			OtherName:      other.Name,
			DistanceKm:     dist,
			OverlapAreaKm2: area,
			OverlapPct:     pct,
			Severity:       SeverityFromOverlapPct(pct),
		})
	}

	sort.SliceStable(conflicts, func(i, j int) bool {
		return conflicts[i].OverlapPct > conflicts[j].OverlapPct
	})
	return conflicts
}

// CannibalizationPct sums the overlap fractions of all conflicts and returns
// the total as a percentage clamped to [0, 100].
//
// Overlaps may double count when three or more catchments stack over the same
// region; the sum is a deliberate simplification, not a true union.
func CannibalizationPct(conflicts []Conflict) float64 {
	total := 0.0
	for _, c := range conflicts {
		total += c.OverlapPct
	}
	return clamp(total, 0, 1) * 100
}
