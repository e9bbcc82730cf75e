package expansion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gresik-digital/expansion-cli/internal/model"
)

func TestComputeOpportunityScore_AllInputsAbsent(t *testing.T) {
	got := ComputeOpportunityScore(ScoreInput{
		Center:   model.GeoPoint{Lat: 0, Lng: 0},
		RadiusKm: 15,
	})

	// 0.4*0 + 0.2*45 + 0.2*55 + 0.2*100 = 40.
	assert.InDelta(t, 40, got.Score, 1e-9)
	assert.Equal(t, RiskHigh, got.Risk)
	assert.Equal(t, ConfidenceHigh, got.Confidence)

	assert.Equal(t, 0.0, got.Breakdown.DemandDensity)
	assert.Equal(t, 45.0, got.Breakdown.RoadAccessibility)
	assert.Equal(t, 55.0, got.Breakdown.WarehouseProximity)
	assert.Equal(t, 100.0, got.Breakdown.OverlapPenalty)

	assert.Nil(t, got.Notes.WarehouseDistanceKm)
	assert.Nil(t, got.Notes.RoadWidthM)
	assert.Zero(t, got.Notes.ConflictCount)
}

func TestComputeOpportunityScore_ScoreAlwaysInRange(t *testing.T) {
	center := model.GeoPoint{Lat: 0, Lng: 0}

	inputs := []ScoreInput{
		{Center: center, RadiusKm: 15},
		{Center: center, RadiusKm: 0},
		{Center: center, RadiusKm: -10},
		{
			Center:   center,
			RadiusKm: 10,
			Cells: []model.DemandCell{
				{Center: center, Score: 100},
				{Center: center, Score: 100},
			},
			Warehouses: []model.Warehouse{{Name: "W1", Location: center}},
			RoadWidthM: fptr(9),
		},
		{
			Center:   center,
			RadiusKm: 10,
			Distributors: []model.Distributor{
				{ID: 2, Location: center, ServiceRadiusKm: 50},
				{ID: 3, Location: center, ServiceRadiusKm: 50},
				{ID: 4, Location: center, ServiceRadiusKm: 50},
			},
			RoadWidthM: fptr(0),
		},
	}

	for _, in := range inputs {
		got := ComputeOpportunityScore(in)
		assert.GreaterOrEqual(t, got.Score, 0.0)
		assert.LessOrEqual(t, got.Score, 100.0)
	}
}

func TestComputeOpportunityScore_ChecklistMirrorsGuardrails(t *testing.T) {
	center := model.GeoPoint{Lat: 0, Lng: 0}

	inputs := []ScoreInput{
		{Center: center, RadiusKm: 15},
		{
			Center:     center,
			RadiusKm:   10,
			Warehouses: []model.Warehouse{{Name: "Remote", Location: model.GeoPoint{Lat: 1}}},
			RoadWidthM: fptr(7.5),
			Cells:      []model.DemandCell{{Center: center, Score: 90}},
		},
		{
			Center:   center,
			RadiusKm: 10,
			Distributors: []model.Distributor{
				{ID: 2, Location: center, ServiceRadiusKm: 20},
			},
		},
	}

	for _, in := range inputs {
		got := ComputeOpportunityScore(in)
		assert.Equal(t, !got.Guardrails.TooFarFromWarehouse, got.Checklist.SupplyReachable)
		assert.Equal(t, !got.Guardrails.HighConflict, got.Checklist.ConflictManageable)
		assert.Equal(t, !got.Guardrails.LowRoadAccess, got.Checklist.RoadAccessAdequate)
		assert.Equal(t, !got.Guardrails.LowDemand, got.Checklist.DemandSufficient)
	}
}

func TestComputeOpportunityScore_Guardrails(t *testing.T) {
	center := model.GeoPoint{Lat: 0, Lng: 0}

	t.Run("far warehouse flagged", func(t *testing.T) {
		got := ComputeOpportunityScore(ScoreInput{
			Center:     center,
			RadiusKm:   10,
			Warehouses: []model.Warehouse{{Name: "Remote", Location: model.GeoPoint{Lat: latDegreesForKm(60)}}},
		})
		assert.True(t, got.Guardrails.TooFarFromWarehouse)
		assert.False(t, got.Checklist.SupplyReachable)
	})

	t.Run("near warehouse passes", func(t *testing.T) {
		got := ComputeOpportunityScore(ScoreInput{
			Center:     center,
			RadiusKm:   10,
			Warehouses: []model.Warehouse{{Name: "Close", Location: model.GeoPoint{Lat: latDegreesForKm(8)}}},
		})
		assert.False(t, got.Guardrails.TooFarFromWarehouse)
		require.NotNil(t, got.Notes.WarehouseDistanceKm)
		assert.InDelta(t, 8, *got.Notes.WarehouseDistanceKm, 0.01)
	})

	t.Run("stacked catchments flag high conflict", func(t *testing.T) {
		got := ComputeOpportunityScore(ScoreInput{
			Center:   center,
			RadiusKm: 10,
			Distributors: []model.Distributor{
				{ID: 2, Location: center, ServiceRadiusKm: 10},
			},
		})
		// Full overlap: 100% cannibalization.
		assert.InDelta(t, 100, got.Notes.CannibalizationPct, 1e-6)
		assert.True(t, got.Guardrails.HighConflict)
		assert.Equal(t, 0.0, got.Breakdown.OverlapPenalty)
	})

	t.Run("good road passes", func(t *testing.T) {
		got := ComputeOpportunityScore(ScoreInput{Center: center, RadiusKm: 10, RoadWidthM: fptr(7)})
		assert.False(t, got.Guardrails.LowRoadAccess)
	})

	t.Run("strong demand passes", func(t *testing.T) {
		got := ComputeOpportunityScore(ScoreInput{
			Center:   center,
			RadiusKm: 10,
			Cells:    []model.DemandCell{{Center: center, Score: 80}},
		})
		assert.False(t, got.Guardrails.LowDemand)
	})
}

func TestComputeOpportunityScore_Confidence(t *testing.T) {
	center := model.GeoPoint{Lat: 0, Lng: 0}
	cells := []model.DemandCell{{Center: center, Score: 70}}
	warehouses := []model.Warehouse{{Name: "W", Location: center}}
	distributors := []model.Distributor{{ID: 2, Location: model.GeoPoint{Lat: 2}}}

	tests := []struct {
		name string
		in   ScoreInput
		want ConfidenceLevel
	}{
		{
			name: "all four inputs present",
			in:   ScoreInput{Center: center, RadiusKm: 10, Cells: cells, Warehouses: warehouses, Distributors: distributors, RoadWidthM: fptr(6)},
			want: ConfidenceLow,
		},
		{
			name: "three inputs present",
			in:   ScoreInput{Center: center, RadiusKm: 10, Cells: cells, Warehouses: warehouses, Distributors: distributors},
			want: ConfidenceMedium,
		},
		{
			name: "two inputs present",
			in:   ScoreInput{Center: center, RadiusKm: 10, Cells: cells, Warehouses: warehouses},
			want: ConfidenceHigh,
		},
		{
			name: "no inputs present",
			in:   ScoreInput{Center: center, RadiusKm: 10},
			want: ConfidenceHigh,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeOpportunityScore(tt.in).Confidence)
		})
	}
}

func TestComputeOpportunityScore_RiskBands(t *testing.T) {
	center := model.GeoPoint{Lat: 0, Lng: 0}

	// Everything favorable: strong demand, wide road, close warehouse, no
	// competitors. 0.4*100 + 0.2*90 + 0.2*92 + 0.2*100 = 96.4.
	best := ComputeOpportunityScore(ScoreInput{
		Center:     center,
		RadiusKm:   10,
		Cells:      []model.DemandCell{{Center: center, Score: 100}},
		Warehouses: []model.Warehouse{{Name: "W", Location: center}},
		RoadWidthM: fptr(8),
	})
	assert.InDelta(t, 96.4, best.Score, 1e-9)
	assert.Equal(t, RiskLow, best.Risk)

	// Moderate case: mid demand only. 0.4*60 + 0.2*45 + 0.2*55 + 0.2*100 = 64.
	mid := ComputeOpportunityScore(ScoreInput{
		Center:   center,
		RadiusKm: 10,
		Cells:    []model.DemandCell{{Center: center, Score: 60}},
	})
	assert.InDelta(t, 64, mid.Score, 1e-9)
	assert.Equal(t, RiskMedium, mid.Risk)
}

func TestComputeOpportunityScore_Deterministic(t *testing.T) {
	center := model.GeoPoint{Lat: -6.9, Lng: 107.6}
	in := ScoreInput{
		Center:   center,
		RadiusKm: 12,
		Cells: []model.DemandCell{
			{Center: model.GeoPoint{Lat: -6.91, Lng: 107.61}, Score: 77},
			{Center: model.GeoPoint{Lat: -6.89, Lng: 107.59}, Score: 81},
		},
		Warehouses: []model.Warehouse{{Name: "Hub", Location: model.GeoPoint{Lat: -6.95, Lng: 107.65}}},
		Distributors: []model.Distributor{
			{ID: 4, Name: "Existing", Location: model.GeoPoint{Lat: -6.92, Lng: 107.62}, ServiceRadiusKm: 8},
		},
		RoadWidthM: fptr(6.2),
	}

	first := ComputeOpportunityScore(in)
	second := ComputeOpportunityScore(in)
	assert.Equal(t, first, second)
}
