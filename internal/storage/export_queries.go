package storage

import (
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ExportRun records one batch export over the document store.
type ExportRun struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Output     string
	Documents  int // documents processed successfully
	Failed     int // documents skipped after an error
	Attempts   int // xG rows written
}

// NewExportRun returns a run with a fresh id, started now.
func NewExportRun(output string) ExportRun {
	return ExportRun{ID: uuid.NewString(), StartedAt: time.Now().UTC(), Output: output}
}

// InsertExportRun stores a finished run.
func (db *DB) InsertExportRun(r ExportRun) error {
	_, err := db.conn.Exec(`
		INSERT OR REPLACE INTO export_runs(id, started_at, finished_at, output, documents, failed, attempts)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.StartedAt.Format(time.RFC3339), r.FinishedAt.Format(time.RFC3339),
		r.Output, r.Documents, r.Failed, r.Attempts,
	)
	return err
}

// ListExportRuns returns stored runs, newest first.
func (db *DB) ListExportRuns() ([]ExportRun, error) {
	rows, err := db.conn.Query(`
		SELECT id, started_at, finished_at, output, documents, failed, attempts
		FROM export_runs ORDER BY started_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ExportRun
	for rows.Next() {
		var r ExportRun
		var started, finished string
		if err := rows.Scan(&r.ID, &started, &finished, &r.Output, &r.Documents, &r.Failed, &r.Attempts); err != nil {
			return nil, err
		}
		if r.StartedAt, err = time.Parse(time.RFC3339, started); err != nil {
			return nil, fmt.Errorf("started_at %q: %w", started, err)
		}
		if r.FinishedAt, err = time.Parse(time.RFC3339, finished); err != nil {
			return nil, fmt.Errorf("finished_at %q: %w", finished, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// QueryRaw runs an arbitrary query and returns column names and every row
// rendered as strings. NULL becomes "NULL".
func (db *DB) QueryRaw(query string) ([]string, [][]string, error) {
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var out [][]string
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			switch x := v.(type) {
			case nil:
				row[i] = "NULL"
			case []byte:
				row[i] = string(x)
			default:
				row[i] = fmt.Sprint(x)
			}
		}
		out = append(out, row)
	}
	return cols, out, rows.Err()
}

// placeholders returns a comma-separated string of n "?" for SQL IN clauses,
// e.g. placeholders(3) → "?,?,?".
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}

func nullFloat(v float64) sql.NullFloat64 {
	if math.IsNaN(v) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func floatOrNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
