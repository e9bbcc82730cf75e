// Package store persists master-data snapshots (distributors, warehouses,
// demand cells) and analysis runs behind a driver-agnostic interface.
package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gresik-digital/expansion-cli/internal/model"
)

// AnalysisRun is one persisted engine invocation: what was scored, where,
// and the full JSON result for later display.
type AnalysisRun struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"` // score | conflicts | hotspots
	Region    string          `json:"region"`
	Center    model.GeoPoint  `json:"center"`
	RadiusKm  float64         `json:"radius_km"`
	Result    json.RawMessage `json:"result"`
	CreatedAt time.Time       `json:"created_at"`
}

// Store defines the persistence interface for the expansion analysis tooling.
type Store interface {
	// Master data
	UpsertDistributors(ctx context.Context, distributors []model.Distributor) (int64, error)
	ListDistributors(ctx context.Context) ([]model.Distributor, error)
	UpsertWarehouses(ctx context.Context, warehouses []model.Warehouse) (int64, error)
	ListWarehouses(ctx context.Context) ([]model.Warehouse, error)

	// Demand grid
	ReplaceDemandCells(ctx context.Context, region string, cells []model.DemandCell) (int64, error)
	ListDemandCells(ctx context.Context, region string) ([]model.DemandCell, error)

	// Region boundaries, stored as EWKB
	SaveBoundary(ctx context.Context, region string, geom []byte) error
	GetBoundary(ctx context.Context, region string) ([]byte, error)

	// Analysis runs
	SaveAnalysis(ctx context.Context, run *AnalysisRun) error
	GetAnalysis(ctx context.Context, id string) (*AnalysisRun, error)
	ListAnalyses(ctx context.Context, limit int) ([]AnalysisRun, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
