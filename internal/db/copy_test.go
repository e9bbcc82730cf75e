package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFrom_EmptyRows(t *testing.T) {
	n, err := CopyFrom(context.TODO(), nil, "demand_cells", []string{"a", "b"}, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestCopyFrom_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"demand_cells"}, []string{"lat", "lng", "score"}).WillReturnResult(3)

	rows := [][]any{{-6.9, 107.6, 70.0}, {-6.91, 107.61, 55.0}, {-6.92, 107.62, 40.0}}
	n, err := CopyFrom(context.Background(), mock, "demand_cells", []string{"lat", "lng", "score"}, rows)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFrom_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"demand_cells"}, []string{"lat"}).WillReturnError(fmt.Errorf("copy failed"))

	_, err = CopyFrom(context.Background(), mock, "demand_cells", []string{"lat"}, [][]any{{1.0}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COPY INTO demand_cells")
	assert.NoError(t, mock.ExpectationsWereMet())
}
