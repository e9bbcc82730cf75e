// Package expansion implements the scoring engine behind the expansion
// analysis tooling: geometric primitives, catchment conflict detection,
// demand density, composite opportunity scoring, and hotspot ranking.
//
// Every function here is a deterministic, side-effect-free computation over
// its inputs. The engine performs no I/O and retains no state between calls;
// callers supply snapshots of distributors, warehouses, and demand cells on
// each invocation.
package expansion

import (
	"math"

	"github.com/gresik-digital/expansion-cli/internal/model"
)

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance in kilometers between two
// points. Returns ~0 when a == b.
func HaversineKm(a, b model.GeoPoint) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLng*sinLng

	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// CatchmentAreaKm2 returns the area of a circular catchment of the given
// radius. Non-positive radii yield 0.
func CatchmentAreaKm2(radiusKm float64) float64 {
	if radiusKm <= 0 {
		return 0
	}
	return math.Pi * radiusKm * radiusKm
}

// CircleIntersectionAreaKm2 returns the area of intersection of two circles
// of radii r1 and r2 whose centers are d km apart.
//
// The containment branch is evaluated before the segment formula, so d = 0
// with unequal radii resolves to the smaller circle's area instead of hitting
// the division by d in the acos argument.
func CircleIntersectionAreaKm2(r1, r2, d float64) float64 {
	if r1 <= 0 || r2 <= 0 {
		return 0
	}
	if d >= r1+r2 {
		return 0
	}
	if d <= math.Abs(r1-r2) {
		small := math.Min(r1, r2)
		return math.Pi * small * small
	}

	// Sum of the two circular segments forming the lens.
	a1 := 2 * math.Acos(clampUnit((d*d+r1*r1-r2*r2)/(2*d*r1)))
	a2 := 2 * math.Acos(clampUnit((d*d+r2*r2-r1*r1)/(2*d*r2)))

	seg1 := 0.5 * r1 * r1 * (a1 - math.Sin(a1))
	seg2 := 0.5 * r2 * r2 * (a2 - math.Sin(a2))
	return seg1 + seg2
}

// clampUnit keeps an acos argument inside [-1, 1] against floating point
// drift near tangency.
func clampUnit(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
