package expansion

import "github.com/gresik-digital/expansion-cli/internal/model"

// DemandIndexWithinRadius returns the arithmetic mean of the scores of every
// demand cell whose center lies within radiusKm of the given point. There is
// no distance weighting. Returns 0 when no cells qualify, the cell list is
// empty, or the radius is non-positive.
func DemandIndexWithinRadius(center model.GeoPoint, radiusKm float64, cells []model.DemandCell) float64 {
	if radiusKm <= 0 || len(cells) == 0 {
		return 0
	}

	sum := 0.0
	count := 0
	for _, c := range cells {
		if HaversineKm(center, c.Center) <= radiusKm {
			sum += c.Score
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}
