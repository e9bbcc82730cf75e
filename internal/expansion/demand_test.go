package expansion

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gresik-digital/expansion-cli/internal/model"
)

func TestDemandIndexWithinRadius(t *testing.T) {
	center := model.GeoPoint{Lat: 0, Lng: 0}

	tests := []struct {
		name     string
		radiusKm float64
		cells    []model.DemandCell
		want     float64
	}{
		{
			name:     "mean of in-radius cells",
			radiusKm: 10,
			cells: []model.DemandCell{
				{Center: model.GeoPoint{Lat: latDegreesForKm(2)}, Score: 80},
				{Center: model.GeoPoint{Lat: latDegreesForKm(4)}, Score: 60},
			},
			want: 70,
		},
		{
			name:     "excludes out-of-radius cells",
			radiusKm: 5,
			cells: []model.DemandCell{
				{Center: model.GeoPoint{Lat: latDegreesForKm(2)}, Score: 90},
				{Center: model.GeoPoint{Lat: latDegreesForKm(50)}, Score: 10},
			},
			want: 90,
		},
		{
			name:     "empty cell list",
			radiusKm: 10,
			cells:    nil,
			want:     0,
		},
		{
			name:     "no cells in radius",
			radiusKm: 1,
			cells: []model.DemandCell{
				{Center: model.GeoPoint{Lat: latDegreesForKm(30)}, Score: 75},
			},
			want: 0,
		},
		{
			name:     "zero radius",
			radiusKm: 0,
			cells: []model.DemandCell{
				{Center: center, Score: 75},
			},
			want: 0,
		},
		{
			name:     "negative radius",
			radiusKm: -5,
			cells: []model.DemandCell{
				{Center: center, Score: 75},
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DemandIndexWithinRadius(center, tt.radiusKm, tt.cells)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestDemandIndexWithinRadius_BoundaryInclusive(t *testing.T) {
	center := model.GeoPoint{Lat: 0, Lng: 0}
	cells := []model.DemandCell{
		{Center: model.GeoPoint{Lat: latDegreesForKm(10)}, Score: 50},
	}
	// Cell sitting exactly on the radius counts.
	assert.InDelta(t, 50, DemandIndexWithinRadius(center, 10.0000001, cells), 1e-9)
}
