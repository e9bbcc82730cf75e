package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gresik-digital/expansion-cli/internal/model"
)

func newMockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresWithPool(mock), mock
}

func TestPostgresListDistributors(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT id, name, lat, lng, service_radius_km FROM distributors`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "lat", "lng", "service_radius_km"}).
			AddRow(int64(1), "Depot Bandung", -6.9175, 107.6191, 12.0).
			AddRow(int64(2), "Depot Cimahi", -6.8723, 107.5425, 15.0))

	got, err := s.ListDistributors(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Depot Bandung", got[0].Name)
	assert.InDelta(t, 107.5425, got[1].Location.Lng, 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresReplaceDemandCells(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM demand_cells WHERE region`).
		WithArgs("bandung").
		WillReturnResult(pgxmock.NewResult("DELETE", 3))
	mock.ExpectCopyFrom(pgx.Identifier{"demand_cells"}, []string{"region", "lat", "lng", "score"}).
		WillReturnResult(2)
	mock.ExpectCommit()

	cells := []model.DemandCell{
		{Center: model.GeoPoint{Lat: -6.9, Lng: 107.6}, Score: 71},
		{Center: model.GeoPoint{Lat: -6.91, Lng: 107.61}, Score: 64},
	}
	n, err := s.ReplaceDemandCells(context.Background(), "bandung", cells)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresReplaceDemandCells_EmptyStillClears(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM demand_cells WHERE region`).
		WithArgs("bandung").
		WillReturnResult(pgxmock.NewResult("DELETE", 5))
	mock.ExpectCommit()

	n, err := s.ReplaceDemandCells(context.Background(), "bandung", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSaveAndGetAnalysis(t *testing.T) {
	s, mock := newMockStore(t)

	now := time.Date(2026, 8, 14, 9, 30, 0, 0, time.UTC)
	run := &AnalysisRun{
		ID:        "5f1c6be2-8c5f-4a69-9f43-0a4ab2d50a11",
		Kind:      "score",
		Region:    "bandung",
		Center:    model.GeoPoint{Lat: -6.9, Lng: 107.6},
		RadiusKm:  15,
		Result:    json.RawMessage(`{"score":72.5}`),
		CreatedAt: now,
	}

	mock.ExpectExec(`INSERT INTO analysis_runs`).
		WithArgs(run.ID, run.Kind, run.Region, run.Center.Lat, run.Center.Lng, run.RadiusKm, run.Result, run.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, s.SaveAnalysis(context.Background(), run))

	mock.ExpectQuery(`FROM analysis_runs WHERE id`).
		WithArgs(run.ID).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "kind", "region", "center_lat", "center_lng", "radius_km", "result", "created_at",
		}).AddRow(run.ID, run.Kind, run.Region, run.Center.Lat, run.Center.Lng, run.RadiusKm, run.Result, now))

	got, err := s.GetAnalysis(context.Background(), run.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "score", got.Kind)
	assert.JSONEq(t, `{"score":72.5}`, string(got.Result))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresBoundary(t *testing.T) {
	s, mock := newMockStore(t)

	geom := []byte{0x01, 0x06, 0x00, 0x00}
	mock.ExpectExec(`INSERT INTO boundaries`).
		WithArgs("bandung", geom).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, s.SaveBoundary(context.Background(), "bandung", geom))

	mock.ExpectQuery(`SELECT geom FROM boundaries`).
		WithArgs("bandung").
		WillReturnRows(pgxmock.NewRows([]string{"geom"}).AddRow(geom))
	got, err := s.GetBoundary(context.Background(), "bandung")
	require.NoError(t, err)
	assert.Equal(t, geom, got)

	mock.ExpectQuery(`SELECT geom FROM boundaries`).
		WithArgs("cimahi").
		WillReturnError(pgx.ErrNoRows)
	missing, err := s.GetBoundary(context.Background(), "cimahi")
	require.NoError(t, err)
	assert.Nil(t, missing)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetAnalysis_NotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`FROM analysis_runs WHERE id`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	got, err := s.GetAnalysis(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}
