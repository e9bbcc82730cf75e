package store

import (
	"context"
	"embed"
	"io/fs"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/gresik-digital/expansion-cli/internal/db"
	"github.com/gresik-digital/expansion-cli/internal/model"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// migrationLockID is the advisory lock key preventing concurrent migration
// runs against the same database.
const migrationLockID = 7214003

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool db.Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}

	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool. Used by tests with pgxmock.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate applies all pending SQL migrations in lexicographic order under an
// advisory lock.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	log := zap.L().With(zap.String("component", "store.migrate"))

	if _, err := s.pool.Exec(ctx, "SELECT pg_advisory_lock($1)", migrationLockID); err != nil {
		return eris.Wrap(err, "postgres: acquire migration advisory lock")
	}
	defer func() {
		if _, err := s.pool.Exec(ctx, "SELECT pg_advisory_unlock($1)", migrationLockID); err != nil {
			log.Warn("postgres: failed to release migration advisory lock", zap.Error(err))
		}
	}()

	if _, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			filename TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`); err != nil {
		return eris.Wrap(err, "postgres: create schema_migrations")
	}

	entries, err := fs.ReadDir(migrationFS, "migrations")
	if err != nil {
		return eris.Wrap(err, "postgres: read migration dir")
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, e := range entries {
		name := e.Name()

		var exists bool
		err := s.pool.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE filename = $1)", name,
		).Scan(&exists)
		if err != nil {
			return eris.Wrapf(err, "postgres: check migration %s", name)
		}
		if exists {
			continue
		}

		sql, err := fs.ReadFile(migrationFS, "migrations/"+name)
		if err != nil {
			return eris.Wrapf(err, "postgres: read migration %s", name)
		}
		if _, err := s.pool.Exec(ctx, string(sql)); err != nil {
			return eris.Wrapf(err, "postgres: apply migration %s", name)
		}
		if _, err := s.pool.Exec(ctx,
			"INSERT INTO schema_migrations (filename) VALUES ($1)", name,
		); err != nil {
			return eris.Wrapf(err, "postgres: record migration %s", name)
		}

		log.Info("applied migration", zap.String("filename", name))
	}

	return nil
}

// UpsertDistributors bulk-upserts distributor records keyed by id.
func (s *PostgresStore) UpsertDistributors(ctx context.Context, distributors []model.Distributor) (int64, error) {
	rows := make([][]any, 0, len(distributors))
	for _, d := range distributors {
		rows = append(rows, []any{d.ID, d.Name, d.Location.Lat, d.Location.Lng, d.ServiceRadiusKm})
	}

	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "distributors",
		Columns:      []string{"id", "name", "lat", "lng", "service_radius_km"},
		ConflictKeys: []string{"id"},
	}, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: upsert distributors")
	}
	return n, nil
}

// ListDistributors returns all distributors ordered by id.
func (s *PostgresStore) ListDistributors(ctx context.Context) ([]model.Distributor, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT id, name, lat, lng, service_radius_km FROM distributors ORDER BY id")
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list distributors")
	}
	defer rows.Close()

	var out []model.Distributor
	for rows.Next() {
		var d model.Distributor
		if err := rows.Scan(&d.ID, &d.Name, &d.Location.Lat, &d.Location.Lng, &d.ServiceRadiusKm); err != nil {
			return nil, eris.Wrap(err, "postgres: scan distributor")
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate distributors")
	}
	return out, nil
}

// UpsertWarehouses bulk-upserts warehouse records keyed by name.
func (s *PostgresStore) UpsertWarehouses(ctx context.Context, warehouses []model.Warehouse) (int64, error) {
	rows := make([][]any, 0, len(warehouses))
	for _, w := range warehouses {
		rows = append(rows, []any{w.Name, w.Location.Lat, w.Location.Lng})
	}

	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "warehouses",
		Columns:      []string{"name", "lat", "lng"},
		ConflictKeys: []string{"name"},
	}, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: upsert warehouses")
	}
	return n, nil
}

// ListWarehouses returns all warehouses ordered by name.
func (s *PostgresStore) ListWarehouses(ctx context.Context) ([]model.Warehouse, error) {
	rows, err := s.pool.Query(ctx, "SELECT name, lat, lng FROM warehouses ORDER BY name")
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list warehouses")
	}
	defer rows.Close()

	var out []model.Warehouse
	for rows.Next() {
		var w model.Warehouse
		if err := rows.Scan(&w.Name, &w.Location.Lat, &w.Location.Lng); err != nil {
			return nil, eris.Wrap(err, "postgres: scan warehouse")
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate warehouses")
	}
	return out, nil
}

// ReplaceDemandCells swaps the demand grid for a region in one transaction:
// the old cells are deleted, the new snapshot is COPY-loaded.
func (s *PostgresStore) ReplaceDemandCells(ctx context.Context, region string, cells []model.DemandCell) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: begin replace demand cells")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, "DELETE FROM demand_cells WHERE region = $1", region); err != nil {
		return 0, eris.Wrapf(err, "postgres: clear demand cells for %s", region)
	}

	rows := make([][]any, 0, len(cells))
	for _, c := range cells {
		rows = append(rows, []any{region, c.Center.Lat, c.Center.Lng, c.Score})
	}

	n, err := db.CopyFrom(ctx, tx, "demand_cells",
		[]string{"region", "lat", "lng", "score"}, rows)
	if err != nil {
		return 0, eris.Wrapf(err, "postgres: COPY demand cells for %s", region)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "postgres: commit replace demand cells")
	}
	return n, nil
}

// ListDemandCells returns the demand grid for a region.
func (s *PostgresStore) ListDemandCells(ctx context.Context, region string) ([]model.DemandCell, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT lat, lng, score FROM demand_cells WHERE region = $1 ORDER BY lat, lng", region)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list demand cells")
	}
	defer rows.Close()

	var out []model.DemandCell
	for rows.Next() {
		var c model.DemandCell
		if err := rows.Scan(&c.Center.Lat, &c.Center.Lng, &c.Score); err != nil {
			return nil, eris.Wrap(err, "postgres: scan demand cell")
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate demand cells")
	}
	return out, nil
}

// SaveBoundary stores a region's boundary polygon as EWKB.
func (s *PostgresStore) SaveBoundary(ctx context.Context, region string, geom []byte) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO boundaries (region, geom, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (region) DO UPDATE SET geom = excluded.geom, updated_at = excluded.updated_at`,
		region, geom,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: save boundary for %s", region)
	}
	return nil
}

// GetBoundary returns a region's boundary EWKB, or nil when absent.
func (s *PostgresStore) GetBoundary(ctx context.Context, region string) ([]byte, error) {
	var geom []byte
	err := s.pool.QueryRow(ctx, "SELECT geom FROM boundaries WHERE region = $1", region).Scan(&geom)
	if err != nil {
		if eris.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get boundary for %s", region)
	}
	return geom, nil
}

// SaveAnalysis persists one analysis run.
func (s *PostgresStore) SaveAnalysis(ctx context.Context, run *AnalysisRun) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO analysis_runs (id, kind, region, center_lat, center_lng, radius_km, result, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		run.ID, run.Kind, run.Region, run.Center.Lat, run.Center.Lng, run.RadiusKm, run.Result, run.CreatedAt,
	)
	if err != nil {
		return eris.Wrap(err, "postgres: save analysis run")
	}
	return nil
}

// GetAnalysis returns one analysis run by id, or nil when absent.
func (s *PostgresStore) GetAnalysis(ctx context.Context, id string) (*AnalysisRun, error) {
	var run AnalysisRun
	err := s.pool.QueryRow(ctx, `
		SELECT id, kind, region, center_lat, center_lng, radius_km, result, created_at
		FROM analysis_runs WHERE id = $1`, id,
	).Scan(&run.ID, &run.Kind, &run.Region, &run.Center.Lat, &run.Center.Lng, &run.RadiusKm, &run.Result, &run.CreatedAt)
	if err != nil {
		if eris.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "postgres: get analysis run")
	}
	return &run, nil
}

// ListAnalyses returns the most recent analysis runs.
func (s *PostgresStore) ListAnalyses(ctx context.Context, limit int) ([]AnalysisRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, kind, region, center_lat, center_lng, radius_km, result, created_at
		FROM analysis_runs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list analysis runs")
	}
	defer rows.Close()

	var out []AnalysisRun
	for rows.Next() {
		var run AnalysisRun
		if err := rows.Scan(&run.ID, &run.Kind, &run.Region, &run.Center.Lat, &run.Center.Lng,
			&run.RadiusKm, &run.Result, &run.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan analysis run")
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate analysis runs")
	}
	return out, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
