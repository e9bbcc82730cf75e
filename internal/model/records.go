package model

// DefaultServiceRadiusKm is the catchment radius assumed for distributors
// that do not declare one. The default is resolved once at the ingestion
// boundary via NormalizeDistributor rather than scattered through scoring code.
const DefaultServiceRadiusKm = 15.0

// Distributor is an existing or candidate distribution point with a circular
// service catchment.
type Distributor struct {
	ID              int64    `json:"id"`
	Name            string   `json:"name"`
	Location        GeoPoint `json:"location"`
	ServiceRadiusKm float64  `json:"service_radius_km,omitempty"`
}

// NormalizeDistributor returns a copy of d with the service radius defaulted
// when absent or non-positive.
func NormalizeDistributor(d Distributor) Distributor {
	if d.ServiceRadiusKm <= 0 {
		d.ServiceRadiusKm = DefaultServiceRadiusKm
	}
	return d
}

// Warehouse is a supply source. Only name and location are read by the engine.
type Warehouse struct {
	Name     string   `json:"name"`
	Location GeoPoint `json:"location"`
}

// DemandCell is one cell of a demand heat-grid. The engine treats the grid as
// an unordered set of samples; Score is on a 0-100 scale.
type DemandCell struct {
	Center GeoPoint `json:"center"`
	Score  float64  `json:"score"`
}
