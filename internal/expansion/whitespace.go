package expansion

import "github.com/gresik-digital/expansion-cli/internal/model"

// Whitespace returns the demand cells whose centers fall outside every
// distributor catchment: regions with demand but no coverage. The input
// slices are not modified.
func Whitespace(cells []model.DemandCell, distributors []model.Distributor) []model.DemandCell {
	if len(distributors) == 0 {
		return append([]model.DemandCell(nil), cells...)
	}

	normalized := make([]model.Distributor, len(distributors))
	for i, d := range distributors {
		normalized[i] = model.NormalizeDistributor(d)
	}

	var uncovered []model.DemandCell
	for _, c := range cells {
		covered := false
		for _, d := range normalized {
			if HaversineKm(c.Center, d.Location) <= d.ServiceRadiusKm {
				covered = true
				break
			}
		}
		if !covered {
			uncovered = append(uncovered, c)
		}
	}
	return uncovered
}
