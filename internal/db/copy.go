package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// Copier is anything that speaks the COPY protocol; both Pool and pgx.Tx
// satisfy it.
type Copier interface {
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// CopyFrom bulk-inserts rows into a table using PostgreSQL COPY protocol.
// This is the fastest way to insert large volumes of data.
func CopyFrom(ctx context.Context, dst Copier, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	copySource := pgx.CopyFromRows(rows)
	n, err := dst.CopyFrom(ctx, pgx.Identifier{table}, columns, copySource)
	if err != nil {
		return 0, eris.Wrapf(err, "db: COPY INTO %s", table)
	}

	return n, nil
}
