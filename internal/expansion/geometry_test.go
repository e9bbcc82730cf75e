package expansion

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gresik-digital/expansion-cli/internal/model"
)

func TestHaversineKm_ZeroForSamePoint(t *testing.T) {
	points := []model.GeoPoint{
		{Lat: 0, Lng: 0},
		{Lat: -6.2088, Lng: 106.8456}, // Jakarta
		{Lat: 89.9, Lng: -179.9},
	}
	for _, p := range points {
		assert.InDelta(t, 0, HaversineKm(p, p), 1e-9)
	}
}

func TestHaversineKm_Symmetry(t *testing.T) {
	a := model.GeoPoint{Lat: -6.2088, Lng: 106.8456} // Jakarta
	b := model.GeoPoint{Lat: -7.2575, Lng: 112.7521} // Surabaya
	c := model.GeoPoint{Lat: 3.5952, Lng: 98.6722}   // Medan
	d := model.GeoPoint{Lat: -8.6500, Lng: 115.2167} // Denpasar

	pairs := [][2]model.GeoPoint{{a, b}, {a, c}, {b, d}, {c, d}}
	for _, pair := range pairs {
		assert.InDelta(t, HaversineKm(pair[0], pair[1]), HaversineKm(pair[1], pair[0]), 1e-9)
	}
}

func TestHaversineKm_KnownDistance(t *testing.T) {
	// Jakarta to Surabaya is roughly 660 km great-circle.
	jakarta := model.GeoPoint{Lat: -6.2088, Lng: 106.8456}
	surabaya := model.GeoPoint{Lat: -7.2575, Lng: 112.7521}

	got := HaversineKm(jakarta, surabaya)
	assert.InDelta(t, 660, got, 15)
}

func TestHaversineKm_OneDegreeLatitude(t *testing.T) {
	// One degree of latitude is ~111.19 km on a 6371 km sphere.
	a := model.GeoPoint{Lat: 0, Lng: 0}
	b := model.GeoPoint{Lat: 1, Lng: 0}
	assert.InDelta(t, 111.1949, HaversineKm(a, b), 0.001)
}

func TestCircleIntersectionAreaKm2(t *testing.T) {
	tests := []struct {
		name      string
		r1, r2, d float64
		want      float64
	}{
		{"equal circles fully overlapping", 10, 10, 0, math.Pi * 100},
		{"disjoint at exactly sum of radii", 5, 5, 10, 0},
		{"disjoint beyond sum of radii", 5, 5, 10.0001, 0},
		{"zero radius", 0, 5, 1, 0},
		{"negative radius", -1, 5, 1, 0},
		{"containment", 10, 4, 5, math.Pi * 16},
		{"containment at boundary", 10, 6, 4, math.Pi * 36},
		{"concentric unequal radii", 10, 4, 0, math.Pi * 16},
		{"partial overlap", 10, 10, 5, 215.2109226},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CircleIntersectionAreaKm2(tt.r1, tt.r2, tt.d)
			assert.InDelta(t, tt.want, got, 0.001)
		})
	}
}

func TestCircleIntersectionAreaKm2_LensSmallerThanEitherCircle(t *testing.T) {
	got := CircleIntersectionAreaKm2(10, 10, 5)
	assert.Greater(t, got, 0.0)
	assert.Less(t, got, math.Pi*100)
}

func TestCircleIntersectionAreaKm2_NeverNaN(t *testing.T) {
	// d = 0 with unequal radii hits the division by d in the naive segment
	// formula; the containment branch must absorb it.
	cases := [][3]float64{
		{10, 4, 0},
		{4, 10, 0},
		{15, 15.0000001, 0},
		{1, 2, 0.5},
	}
	for _, c := range cases {
		got := CircleIntersectionAreaKm2(c[0], c[1], c[2])
		assert.False(t, math.IsNaN(got), "r1=%v r2=%v d=%v", c[0], c[1], c[2])
	}
}

func TestCatchmentAreaKm2(t *testing.T) {
	assert.InDelta(t, math.Pi*225, CatchmentAreaKm2(15), 1e-9)
	assert.Equal(t, 0.0, CatchmentAreaKm2(0))
	assert.Equal(t, 0.0, CatchmentAreaKm2(-3))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, clamp(-5, 0, 100))
	assert.Equal(t, 100.0, clamp(150, 0, 100))
	assert.Equal(t, 42.0, clamp(42, 0, 100))
}
