package expansion

import "github.com/gresik-digital/expansion-cli/internal/model"

// The sub-score mappings below are policy lookup tables, not model-derived
// curves. Breakpoint values are load-bearing: dashboards and historical
// analyses assume these exact scores, so they must not drift.

// roadBreakpoint maps a minimum road width (inclusive) to an accessibility score.
type roadBreakpoint struct {
	MinWidthM float64 `yaml:"min_width_m"`
	Score     float64 `yaml:"score"`
}

// warehouseBreakpoint maps a maximum supply distance (inclusive) to a proximity score.
type warehouseBreakpoint struct {
	MaxKm float64 `yaml:"max_km"`
	Score float64 `yaml:"score"`
}

var roadWidthPolicy = []roadBreakpoint{
	{MinWidthM: 7, Score: 90},
	{MinWidthM: 6, Score: 78},
	{MinWidthM: 5, Score: 62},
}

var warehouseDistancePolicy = []warehouseBreakpoint{
	{MaxKm: 10, Score: 92},
	{MaxKm: 20, Score: 80},
	{MaxKm: 35, Score: 65},
	{MaxKm: 50, Score: 52},
}

// Fallback scores outside the breakpoint tables.
const (
	roadScoreUnknown = 45 // no survey data for the point
	roadScoreNarrow  = 42 // positive width below the smallest breakpoint
	roadScoreNone    = 35 // zero or negative width

	warehouseScoreUnknown = 55 // no warehouses in the snapshot
	warehouseScoreFar     = 40 // beyond the largest breakpoint
)

// Composite score weights. They sum to 1.0.
const (
	weightDemand         = 0.4
	weightRoad           = 0.2
	weightWarehouse      = 0.2
	weightOverlapPenalty = 0.2
)

// Composite-score risk thresholds.
const (
	riskLowMinScore    = 75
	riskMediumMinScore = 55
)

// Guardrail thresholds.
const (
	guardrailWarehouseKm      = 40 // supply runs beyond this are flagged
	guardrailCannibalizePct   = 35
	guardrailRoadScoreFloor   = 50
	guardrailDemandScoreFloor = 55
)

// ScoreFromRoadWidthM maps a surveyed road width in meters to a 0-100
// accessibility score. A nil width means the site profile had no road data.
func ScoreFromRoadWidthM(widthM *float64) float64 {
	if widthM == nil {
		return roadScoreUnknown
	}
	w := *widthM
	for _, bp := range roadWidthPolicy {
		if w >= bp.MinWidthM {
			return bp.Score
		}
	}
	if w > 0 {
		return roadScoreNarrow
	}
	return roadScoreNone
}

// ScoreFromWarehouseDistanceKm maps the nearest-warehouse distance to a 0-100
// proximity score. A nil distance means no warehouses were supplied.
func ScoreFromWarehouseDistanceKm(distanceKm *float64) float64 {
	if distanceKm == nil {
		return warehouseScoreUnknown
	}
	for _, bp := range warehouseDistancePolicy {
		if *distanceKm <= bp.MaxKm {
			return bp.Score
		}
	}
	return warehouseScoreFar
}

// Policy is a serializable snapshot of every constant driving the engine,
// emitted by the `policy` command so operations can audit the active tables.
type Policy struct {
	Weights struct {
		DemandDensity      float64 `yaml:"demand_density"`
		RoadAccessibility  float64 `yaml:"road_accessibility"`
		WarehouseProximity float64 `yaml:"warehouse_proximity"`
		OverlapPenalty     float64 `yaml:"overlap_penalty"`
	} `yaml:"weights"`
	RoadWidth struct {
		Breakpoints  []roadBreakpoint `yaml:"breakpoints"`
		NarrowScore  float64          `yaml:"narrow_score"`
		NoneScore    float64          `yaml:"none_score"`
		UnknownScore float64          `yaml:"unknown_score"`
	} `yaml:"road_width"`
	WarehouseDistance struct {
		Breakpoints  []warehouseBreakpoint `yaml:"breakpoints"`
		FarScore     float64               `yaml:"far_score"`
		UnknownScore float64               `yaml:"unknown_score"`
	} `yaml:"warehouse_distance"`
	Severity struct {
		HighOverlapPct   float64 `yaml:"high_overlap_pct"`
		MediumOverlapPct float64 `yaml:"medium_overlap_pct"`
	} `yaml:"severity"`
	Risk struct {
		LowMinScore    float64 `yaml:"low_min_score"`
		MediumMinScore float64 `yaml:"medium_min_score"`
	} `yaml:"risk"`
	Guardrails struct {
		MaxWarehouseKm        float64 `yaml:"max_warehouse_km"`
		MaxCannibalizationPct float64 `yaml:"max_cannibalization_pct"`
		MinRoadScore          float64 `yaml:"min_road_score"`
		MinDemandScore        float64 `yaml:"min_demand_score"`
	} `yaml:"guardrails"`
	DefaultServiceRadiusKm float64 `yaml:"default_service_radius_km"`
}

// CurrentPolicy returns the active policy constants.
func CurrentPolicy() Policy {
	var p Policy
	p.Weights.DemandDensity = weightDemand
	p.Weights.RoadAccessibility = weightRoad
	p.Weights.WarehouseProximity = weightWarehouse
	p.Weights.OverlapPenalty = weightOverlapPenalty

	p.RoadWidth.Breakpoints = append([]roadBreakpoint(nil), roadWidthPolicy...)
	p.RoadWidth.NarrowScore = roadScoreNarrow
	p.RoadWidth.NoneScore = roadScoreNone
	p.RoadWidth.UnknownScore = roadScoreUnknown

	p.WarehouseDistance.Breakpoints = append([]warehouseBreakpoint(nil), warehouseDistancePolicy...)
	p.WarehouseDistance.FarScore = warehouseScoreFar
	p.WarehouseDistance.UnknownScore = warehouseScoreUnknown

	p.Severity.HighOverlapPct = severityHighPct
	p.Severity.MediumOverlapPct = severityMediumPct

	p.Risk.LowMinScore = riskLowMinScore
	p.Risk.MediumMinScore = riskMediumMinScore

	p.Guardrails.MaxWarehouseKm = guardrailWarehouseKm
	p.Guardrails.MaxCannibalizationPct = guardrailCannibalizePct
	p.Guardrails.MinRoadScore = guardrailRoadScoreFloor
	p.Guardrails.MinDemandScore = guardrailDemandScoreFloor

	p.DefaultServiceRadiusKm = model.DefaultServiceRadiusKm

	return p
}
