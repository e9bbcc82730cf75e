package expansion

import "github.com/gresik-digital/expansion-cli/internal/model"

// RiskLevel classifies the composite score.
type RiskLevel string

// Risk levels.
const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// ConfidenceLevel expresses uncertainty about a score. The labels are
// inverted relative to intuition: "low" means low uncertainty (all inputs
// present), "high" means the score rests on mostly-missing inputs. The
// dashboards render these labels as-is, so the mapping must stay.
type ConfidenceLevel string

// Confidence levels.
const (
	ConfidenceLow    ConfidenceLevel = "low"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceHigh   ConfidenceLevel = "high"
)

// ScoreInput carries the snapshots the engine scores against. All slices are
// read-only to the engine; missing optional inputs (no warehouses, nil road
// width, empty cells) degrade to neutral defaults rather than erroring.
type ScoreInput struct {
	Center       model.GeoPoint
	RadiusKm     float64
	SelectedID   int64
	Distributors []model.Distributor
	Warehouses   []model.Warehouse
	Cells        []model.DemandCell
	RoadWidthM   *float64
}

// Breakdown holds the four weighted sub-scores, each on a 0-100 scale.
type Breakdown struct {
	DemandDensity      float64 `json:"demand_density"`
	RoadAccessibility  float64 `json:"road_accessibility"`
	WarehouseProximity float64 `json:"warehouse_proximity"`
	OverlapPenalty     float64 `json:"overlap_penalty"`
}

// Guardrails are boolean risk flags derived from sub-scores crossing fixed
// thresholds.
type Guardrails struct {
	TooFarFromWarehouse bool `json:"too_far_from_warehouse"`
	HighConflict        bool `json:"high_conflict"`
	LowRoadAccess       bool `json:"low_road_access"`
	LowDemand           bool `json:"low_demand"`
}

// Checklist is the pass/fail view of the guardrails; each item is the
// negation of the corresponding flag.
type Checklist struct {
	SupplyReachable    bool `json:"supply_reachable"`
	ConflictManageable bool `json:"conflict_manageable"`
	RoadAccessAdequate bool `json:"road_access_adequate"`
	DemandSufficient   bool `json:"demand_sufficient"`
}

// Notes carries the raw intermediate values behind a score for display and
// debugging.
type Notes struct {
	DemandIndex         float64  `json:"demand_index"`
	WarehouseDistanceKm *float64 `json:"warehouse_distance_km,omitempty"`
	RoadWidthM          *float64 `json:"road_width_m,omitempty"`
	CannibalizationPct  float64  `json:"cannibalization_pct"`
	ConflictCount       int      `json:"conflict_count"`
}

// OpportunityScore is the full result of scoring one candidate location.
type OpportunityScore struct {
	Score      float64         `json:"score"`
	Risk       RiskLevel       `json:"risk_level"`
	Confidence ConfidenceLevel `json:"confidence"`
	Breakdown  Breakdown       `json:"breakdown"`
	Checklist  Checklist       `json:"checklist"`
	Guardrails Guardrails      `json:"guardrails"`
	Conflicts  []Conflict      `json:"conflicts,omitempty"`
	Notes      Notes           `json:"notes"`
}

// ComputeOpportunityScore blends demand density, road accessibility,
// warehouse proximity, and catchment-overlap penalty into a single 0-100
// opportunity score with risk, confidence, guardrail, and checklist outputs.
// It never fails: absent inputs fall back to documented neutral scores.
func ComputeOpportunityScore(in ScoreInput) OpportunityScore {
	demandScore := clamp(DemandIndexWithinRadius(in.Center, in.RadiusKm, in.Cells), 0, 100)

	warehouseKm := nearestWarehouseKm(in.Center, in.Warehouses)
	warehouseScore := ScoreFromWarehouseDistanceKm(warehouseKm)

	roadScore := ScoreFromRoadWidthM(in.RoadWidthM)

	conflicts := ComputeConflicts(in.SelectedID, in.Center, in.RadiusKm, in.Distributors)
	cannibalization := CannibalizationPct(conflicts)
	overlapPenaltyScore := clamp(100-cannibalization, 0, 100)

	score := clamp(
		weightDemand*demandScore+
			weightRoad*roadScore+
			weightWarehouse*warehouseScore+
			weightOverlapPenalty*overlapPenaltyScore,
		0, 100,
	)

	guardrails := Guardrails{
		TooFarFromWarehouse: warehouseKm != nil && *warehouseKm > guardrailWarehouseKm,
		HighConflict:        cannibalization >= guardrailCannibalizePct,
		LowRoadAccess:       roadScore < guardrailRoadScoreFloor,
		LowDemand:           demandScore < guardrailDemandScoreFloor,
	}

	return OpportunityScore{
		Score:      score,
		Risk:       riskFromScore(score),
		Confidence: confidenceFromInputs(in),
		Breakdown: Breakdown{
			DemandDensity:      demandScore,
			RoadAccessibility:  roadScore,
			WarehouseProximity: warehouseScore,
			OverlapPenalty:     overlapPenaltyScore,
		},
		Checklist: Checklist{
			SupplyReachable:    !guardrails.TooFarFromWarehouse,
			ConflictManageable: !guardrails.HighConflict,
			RoadAccessAdequate: !guardrails.LowRoadAccess,
			DemandSufficient:   !guardrails.LowDemand,
		},
		Guardrails: guardrails,
		Conflicts:  conflicts,
		Notes: Notes{
			DemandIndex:         DemandIndexWithinRadius(in.Center, in.RadiusKm, in.Cells),
			WarehouseDistanceKm: warehouseKm,
			RoadWidthM:          in.RoadWidthM,
			CannibalizationPct:  cannibalization,
			ConflictCount:       len(conflicts),
		},
	}
}

// nearestWarehouseKm returns the haversine distance to the closest warehouse,
// or nil when none are supplied.
func nearestWarehouseKm(center model.GeoPoint, warehouses []model.Warehouse) *float64 {
	if len(warehouses) == 0 {
		return nil
	}
	best := HaversineKm(center, warehouses[0].Location)
	for _, w := range warehouses[1:] {
		if d := HaversineKm(center, w.Location); d < best {
			best = d
		}
	}
	return &best
}

func riskFromScore(score float64) RiskLevel {
	switch {
	case score >= riskLowMinScore:
		return RiskLow
	case score >= riskMediumMinScore:
		return RiskMedium
	default:
		return RiskHigh
	}
}

// confidenceFromInputs counts how many of the four optional input groups are
// present. All four present means low uncertainty.
func confidenceFromInputs(in ScoreInput) ConfidenceLevel {
	present := 0
	if len(in.Cells) > 0 {
		present++
	}
	if len(in.Warehouses) > 0 {
		present++
	}
	if in.RoadWidthM != nil {
		present++
	}
	if len(in.Distributors) > 0 {
		present++
	}

	switch {
	case present == 4:
		return ConfidenceLow
	case present == 3:
		return ConfidenceMedium
	default:
		return ConfidenceHigh
	}
}
