// Package drivers provides the four engine-specific implementations of
// dbqueue.Driver: Postgres, MySQL, SQLite, and a DB2 stub.
package drivers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/hydrogen-daemon/hydrogen/internal/dbqueue"
)

// returnsRows reports whether query's leading keyword is expected to
// produce a result set, so callers can choose QueryxContext vs
// ExecContext without relying on driver-specific error inspection.
func returnsRows(query string) bool {
	trimmed := strings.TrimSpace(query)
	upper := strings.ToUpper(trimmed)
	switch {
	case strings.HasPrefix(upper, "SELECT"),
		strings.HasPrefix(upper, "WITH"),
		strings.HasPrefix(upper, "SHOW"),
		strings.HasPrefix(upper, "EXPLAIN"),
		strings.HasPrefix(upper, "PRAGMA"):
		return true
	case strings.Contains(upper, "RETURNING"):
		return true
	default:
		return false
	}
}

// runQuery dispatches query against db and renders the result into
// dbqueue.QueryResult's shape: a syntactically valid JSON array of row
// objects, never null.
func runQuery(ctx context.Context, db *sqlx.DB, query string, args []any) (dbqueue.QueryResult, error) {
	if !returnsRows(query) {
		return runExec(ctx, db, query, args)
	}

	rows, err := db.QueryxContext(ctx, query, args...)
	if err != nil {
		return dbqueue.QueryResult{}, err
	}
	defer rows.Close()
	return scanRows(rows)
}

// scanRows drains rows into dbqueue.QueryResult's JSON shape using
// sqlx's MapScan, which handles column-to-map assembly itself.
func scanRows(rows *sqlx.Rows) (dbqueue.QueryResult, error) {
	cols, err := rows.Columns()
	if err != nil {
		return dbqueue.QueryResult{}, err
	}
	for i, col := range cols {
		if col == "" {
			cols[i] = fmt.Sprintf("col_%d", i)
		}
	}

	records := make([]map[string]any, 0)
	for rows.Next() {
		raw := make(map[string]any)
		if err := rows.MapScan(raw); err != nil {
			return dbqueue.QueryResult{}, err
		}
		record := make(map[string]any, len(raw))
		for col, v := range raw {
			record[col] = normalize(v)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return dbqueue.QueryResult{}, err
	}

	payload, err := json.Marshal(records)
	if err != nil {
		return dbqueue.QueryResult{}, err
	}

	return dbqueue.QueryResult{
		Success:     true,
		ColumnCount: len(cols),
		RowCount:    len(records),
		ColumnNames: cols,
		DataJSON:    string(payload),
	}, nil
}

// paramValues flattens an ordered ParameterList into positional driver
// arguments.
func paramValues(params dbqueue.ParameterList) []any {
	out := make([]any, len(params))
	for i, p := range params {
		out[i] = p.Value
	}
	return out
}

func runExec(ctx context.Context, db *sqlx.DB, query string, args []any) (dbqueue.QueryResult, error) {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return dbqueue.QueryResult{}, err
	}
	affected, _ := res.RowsAffected()
	return dbqueue.QueryResult{
		Success:      true,
		ColumnNames:  []string{},
		DataJSON:     "[]",
		AffectedRows: affected,
	}, nil
}

func normalize(v any) any {
	switch t := v.(type) {
	case []byte:
		return string(t)
	default:
		return t
	}
}

func formatDSNError(engine string, err error) error {
	return fmt.Errorf("%s: %w", engine, err)
}
