package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// UpsertConfig defines the parameters for a bulk upsert operation.
type UpsertConfig struct {
	Table        string   // target table (e.g., "demand_cells")
	Columns      []string // all columns being inserted
	ConflictKeys []string // columns forming the unique constraint
	UpdateCols   []string // columns to update on conflict; nil = all non-conflict columns
}

// BulkUpsert performs a bulk upsert via a temp table and INSERT ... ON CONFLICT.
// 1. Creates a temp table with the same columns
// 2. COPY rows into the temp table
// 3. INSERT INTO target SELECT ... FROM temp ON CONFLICT (keys) DO UPDATE SET ...
// 4. Drops the temp table
func BulkUpsert(ctx context.Context, pool Pool, cfg UpsertConfig, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	if len(cfg.Columns) == 0 {
		return 0, eris.New("db: upsert: no columns specified")
	}
	if len(cfg.ConflictKeys) == 0 {
		return 0, eris.New("db: upsert: no conflict keys specified")
	}

	updateCols := cfg.UpdateCols
	if updateCols == nil {
		conflictSet := make(map[string]bool, len(cfg.ConflictKeys))
		for _, k := range cfg.ConflictKeys {
			conflictSet[k] = true
		}
		for _, c := range cfg.Columns {
			if !conflictSet[c] {
				updateCols = append(updateCols, c)
			}
		}
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "db: upsert: begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	tempTable := fmt.Sprintf("_tmp_upsert_%s", strings.ReplaceAll(cfg.Table, ".", "_"))

	// Create temp table with same structure as target
	createSQL := fmt.Sprintf(
		`CREATE TEMP TABLE %s (LIKE %s INCLUDING DEFAULTS) ON COMMIT DROP`,
		tempTable, cfg.Table,
	)
	if _, err := tx.Exec(ctx, createSQL); err != nil {
		return 0, eris.Wrapf(err, "db: upsert: create temp table for %s", cfg.Table)
	}

	// COPY into the temp table
	if _, err := CopyFrom(ctx, tx, tempTable, cfg.Columns, rows); err != nil {
		return 0, eris.Wrapf(err, "db: upsert: COPY INTO %s", tempTable)
	}

	// Merge into the target
	setClauses := make([]string, 0, len(updateCols))
	for _, c := range updateCols {
		setClauses = append(setClauses, fmt.Sprintf("%s = EXCLUDED.%s", c, c))
	}

	mergeSQL := fmt.Sprintf(
		`INSERT INTO %s (%s) SELECT %s FROM %s ON CONFLICT (%s) DO UPDATE SET %s`,
		cfg.Table,
		strings.Join(cfg.Columns, ", "),
		strings.Join(cfg.Columns, ", "),
		tempTable,
		strings.Join(cfg.ConflictKeys, ", "),
		strings.Join(setClauses, ", "),
	)
	tag, err := tx.Exec(ctx, mergeSQL)
	if err != nil {
		return 0, eris.Wrapf(err, "db: upsert: merge into %s", cfg.Table)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "db: upsert: commit")
	}

	return tag.RowsAffected(), nil
}
