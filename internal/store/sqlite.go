package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/gresik-digital/expansion-cli/internal/model"
)

// sqliteSchema mirrors the postgres migrations with SQLite types. Applied as
// a whole on Migrate; every statement is idempotent.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS distributors (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    lat REAL NOT NULL,
    lng REAL NOT NULL,
    service_radius_km REAL NOT NULL DEFAULT 0,
    updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS warehouses (
    name TEXT PRIMARY KEY,
    lat REAL NOT NULL,
    lng REAL NOT NULL,
    updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS demand_cells (
    region TEXT NOT NULL,
    lat REAL NOT NULL,
    lng REAL NOT NULL,
    score REAL NOT NULL DEFAULT 0,
    PRIMARY KEY (region, lat, lng)
);

CREATE TABLE IF NOT EXISTS boundaries (
    region TEXT PRIMARY KEY,
    geom BLOB NOT NULL,
    updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS analysis_runs (
    id TEXT PRIMARY KEY,
    kind TEXT NOT NULL,
    region TEXT NOT NULL DEFAULT '',
    center_lat REAL NOT NULL,
    center_lng REAL NOT NULL,
    radius_km REAL NOT NULL DEFAULT 0,
    result TEXT NOT NULL,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_analysis_runs_kind_created
    ON analysis_runs (kind, created_at DESC);
`

// SQLiteStore implements Store on a local SQLite file. It covers the
// single-analyst workflow where running postgres is overkill.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) a SQLite database at path.
func NewSQLite(path string) (*SQLiteStore, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: open %s", path)
	}
	// modernc sqlite serializes writes; a single connection avoids
	// SQLITE_BUSY under concurrent use.
	sqlDB.SetMaxOpenConns(1)
	return &SQLiteStore{db: sqlDB}, nil
}

// Migrate creates the schema.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return eris.Wrap(err, "sqlite: apply schema")
	}
	return nil
}

// UpsertDistributors inserts or updates distributor records keyed by id.
func (s *SQLiteStore) UpsertDistributors(ctx context.Context, distributors []model.Distributor) (int64, error) {
	if len(distributors) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin upsert distributors")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO distributors (id, name, lat, lng, service_radius_km, updated_at)
		VALUES (?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			lat = excluded.lat,
			lng = excluded.lng,
			service_radius_km = excluded.service_radius_km,
			updated_at = excluded.updated_at`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare upsert distributors")
	}
	defer stmt.Close()

	var n int64
	for _, d := range distributors {
		if _, err := stmt.ExecContext(ctx, d.ID, d.Name, d.Location.Lat, d.Location.Lng, d.ServiceRadiusKm); err != nil {
			return 0, eris.Wrapf(err, "sqlite: upsert distributor %d", d.ID)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit upsert distributors")
	}
	return n, nil
}

// ListDistributors returns all distributors ordered by id.
func (s *SQLiteStore) ListDistributors(ctx context.Context) ([]model.Distributor, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, lat, lng, service_radius_km FROM distributors ORDER BY id")
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list distributors")
	}
	defer rows.Close()

	var out []model.Distributor
	for rows.Next() {
		var d model.Distributor
		if err := rows.Scan(&d.ID, &d.Name, &d.Location.Lat, &d.Location.Lng, &d.ServiceRadiusKm); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan distributor")
		}
		out = append(out, d)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate distributors")
}

// UpsertWarehouses inserts or updates warehouse records keyed by name.
func (s *SQLiteStore) UpsertWarehouses(ctx context.Context, warehouses []model.Warehouse) (int64, error) {
	if len(warehouses) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin upsert warehouses")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO warehouses (name, lat, lng, updated_at)
		VALUES (?, ?, ?, datetime('now'))
		ON CONFLICT (name) DO UPDATE SET
			lat = excluded.lat,
			lng = excluded.lng,
			updated_at = excluded.updated_at`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare upsert warehouses")
	}
	defer stmt.Close()

	var n int64
	for _, w := range warehouses {
		if _, err := stmt.ExecContext(ctx, w.Name, w.Location.Lat, w.Location.Lng); err != nil {
			return 0, eris.Wrapf(err, "sqlite: upsert warehouse %s", w.Name)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit upsert warehouses")
	}
	return n, nil
}

// ListWarehouses returns all warehouses ordered by name.
func (s *SQLiteStore) ListWarehouses(ctx context.Context) ([]model.Warehouse, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name, lat, lng FROM warehouses ORDER BY name")
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list warehouses")
	}
	defer rows.Close()

	var out []model.Warehouse
	for rows.Next() {
		var w model.Warehouse
		if err := rows.Scan(&w.Name, &w.Location.Lat, &w.Location.Lng); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan warehouse")
		}
		out = append(out, w)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate warehouses")
}

// ReplaceDemandCells swaps the demand grid for a region in one transaction.
func (s *SQLiteStore) ReplaceDemandCells(ctx context.Context, region string, cells []model.DemandCell) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin replace demand cells")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM demand_cells WHERE region = ?", region); err != nil {
		return 0, eris.Wrapf(err, "sqlite: clear demand cells for %s", region)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO demand_cells (region, lat, lng, score) VALUES (?, ?, ?, ?)")
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare insert demand cells")
	}
	defer stmt.Close()

	var n int64
	for _, c := range cells {
		if _, err := stmt.ExecContext(ctx, region, c.Center.Lat, c.Center.Lng, c.Score); err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert demand cell for %s", region)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit replace demand cells")
	}
	return n, nil
}

// ListDemandCells returns the demand grid for a region.
func (s *SQLiteStore) ListDemandCells(ctx context.Context, region string) ([]model.DemandCell, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT lat, lng, score FROM demand_cells WHERE region = ? ORDER BY lat, lng", region)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list demand cells")
	}
	defer rows.Close()

	var out []model.DemandCell
	for rows.Next() {
		var c model.DemandCell
		if err := rows.Scan(&c.Center.Lat, &c.Center.Lng, &c.Score); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan demand cell")
		}
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate demand cells")
}

// SaveBoundary stores a region's boundary polygon as EWKB.
func (s *SQLiteStore) SaveBoundary(ctx context.Context, region string, geom []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO boundaries (region, geom, updated_at)
		VALUES (?, ?, datetime('now'))
		ON CONFLICT (region) DO UPDATE SET geom = excluded.geom, updated_at = excluded.updated_at`,
		region, geom,
	)
	return eris.Wrapf(err, "sqlite: save boundary for %s", region)
}

// GetBoundary returns a region's boundary EWKB, or nil when absent.
func (s *SQLiteStore) GetBoundary(ctx context.Context, region string) ([]byte, error) {
	var geom []byte
	err := s.db.QueryRowContext(ctx, "SELECT geom FROM boundaries WHERE region = ?", region).Scan(&geom)
	if err != nil {
		if eris.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "sqlite: get boundary for %s", region)
	}
	return geom, nil
}

// SaveAnalysis persists one analysis run.
func (s *SQLiteStore) SaveAnalysis(ctx context.Context, run *AnalysisRun) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO analysis_runs (id, kind, region, center_lat, center_lng, radius_km, result, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Kind, run.Region, run.Center.Lat, run.Center.Lng, run.RadiusKm,
		string(run.Result), run.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	return eris.Wrap(err, "sqlite: save analysis run")
}

// GetAnalysis returns one analysis run by id, or nil when absent.
func (s *SQLiteStore) GetAnalysis(ctx context.Context, id string) (*AnalysisRun, error) {
	var (
		run       AnalysisRun
		result    string
		createdAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, kind, region, center_lat, center_lng, radius_km, result, created_at
		FROM analysis_runs WHERE id = ?`, id,
	).Scan(&run.ID, &run.Kind, &run.Region, &run.Center.Lat, &run.Center.Lng, &run.RadiusKm, &result, &createdAt)
	if err != nil {
		if eris.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "sqlite: get analysis run")
	}
	run.Result = []byte(result)
	run.CreatedAt = parseSQLiteTime(createdAt)
	return &run, nil
}

// ListAnalyses returns the most recent analysis runs.
func (s *SQLiteStore) ListAnalyses(ctx context.Context, limit int) ([]AnalysisRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, region, center_lat, center_lng, radius_km, result, created_at
		FROM analysis_runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list analysis runs")
	}
	defer rows.Close()

	var out []AnalysisRun
	for rows.Next() {
		var (
			run       AnalysisRun
			result    string
			createdAt string
		)
		if err := rows.Scan(&run.ID, &run.Kind, &run.Region, &run.Center.Lat, &run.Center.Lng,
			&run.RadiusKm, &result, &createdAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan analysis run")
		}
		run.Result = []byte(result)
		run.CreatedAt = parseSQLiteTime(createdAt)
		out = append(out, run)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate analysis runs")
}

func parseSQLiteTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Close closes the underlying database handle.
func (s *SQLiteStore) Close() error {
	return eris.Wrap(s.db.Close(), "sqlite: close")
}
