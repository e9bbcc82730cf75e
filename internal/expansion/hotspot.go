package expansion

import (
	"fmt"
	"sort"

	"github.com/gresik-digital/expansion-cli/internal/model"
)

// maxHotspots caps the number of ranked whitespace cells returned.
const maxHotspots = 5

// NoQuadrant marks a hotspot ranked without a reference point.
const NoQuadrant = "—"

// Hotspot is a top-ranked whitespace cell, optionally tagged with the compass
// quadrant it occupies relative to a reference point.
type Hotspot struct {
	Center   model.GeoPoint `json:"center"`
	Score    float64        `json:"score"`
	Quadrant string         `json:"quadrant"`
}

// quadrantOrder fixes the tie-break order for DirectionSummary.
var quadrantOrder = []string{"NE", "NW", "SE", "SW"}

var quadrantDirections = map[string]string{
	"NE": "northeast",
	"NW": "northwest",
	"SE": "southeast",
	"SW": "southwest",
}

// ComputeHotspots ranks whitespace cells descending by score and returns at
// most five, with scores clamped to [0, 100]. When ref is non-nil each
// hotspot is tagged with its quadrant relative to the reference point;
// otherwise the quadrant is NoQuadrant.
func ComputeHotspots(cells []model.DemandCell, ref *model.GeoPoint) []Hotspot {
	ranked := append([]model.DemandCell(nil), cells...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if len(ranked) > maxHotspots {
		ranked = ranked[:maxHotspots]
	}

	hotspots := make([]Hotspot, 0, len(ranked))
	for _, c := range ranked {
		q := NoQuadrant
		if ref != nil {
			q = quadrantOf(c.Center, *ref)
		}
		hotspots = append(hotspots, Hotspot{
			Center:   c.Center,
			Score:    clamp(c.Score, 0, 100),
			Quadrant: q,
		})
	}
	return hotspots
}

// quadrantOf classifies p relative to ref. Points on the axes resolve north
// and east first: dLat >= 0 and dLng >= 0 is NE.
func quadrantOf(p, ref model.GeoPoint) string {
	dLat := p.Lat - ref.Lat
	dLng := p.Lng - ref.Lng
	switch {
	case dLat >= 0 && dLng >= 0:
		return "NE"
	case dLat >= 0:
		return "NW"
	case dLng >= 0:
		return "SE"
	default:
		return "SW"
	}
}

// DirectionSummary returns a one-sentence reading of where the hotspots
// cluster. Hotspots without a quadrant are ignored; when none carry one the
// summary reports no clear signal. Count ties resolve in NE, NW, SE, SW order.
func DirectionSummary(hotspots []Hotspot) string {
	counts := make(map[string]int, len(quadrantOrder))
	for _, h := range hotspots {
		if h.Quadrant == NoQuadrant || h.Quadrant == "" {
			continue
		}
		counts[h.Quadrant]++
	}

	best := ""
	bestCount := 0
	for _, q := range quadrantOrder {
		if counts[q] > bestCount {
			best = q
			bestCount = counts[q]
		}
	}

	if best == "" {
		return "No clear directional signal from the current hotspots."
	}
	return fmt.Sprintf("Strongest expansion opportunity lies to the %s of the reference point.", quadrantDirections[best])
}
