package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"enrich/internal/store"
)

// Repo implements store.Repository for SQLite.
//
// SQLite has no native timestamp type worth relying on; timestamps are stored
// as RFC3339Nano strings for reliable round-trip behavior and easy debugging.
type Repo struct {
	db *sql.DB
}

func init() {
	store.Register("sqlite", New)
}

func New(ctx context.Context, cfg store.Config) (store.Repository, error) {
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Repo{db: db}, nil
}

func (r *Repo) Close() { _ = r.db.Close() }

func (r *Repo) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS enrich_runs (
  id TEXT PRIMARY KEY,
  job TEXT NOT NULL,
  country TEXT NOT NULL,
  started_at TEXT NOT NULL,
  finished_at TEXT NOT NULL,
  templates INTEGER NOT NULL,
  columns_resolved INTEGER NOT NULL,
  columns_unresolved INTEGER NOT NULL
);`,
		`CREATE TABLE IF NOT EXISTS enrich_assignments (
  run_id TEXT NOT NULL REFERENCES enrich_runs(id),
  column_name TEXT NOT NULL,
  picklist_values TEXT NOT NULL,
  UNIQUE (run_id, column_name)
);`,
	}
	for _, s := range stmts {
		if _, err := r.db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (r *Repo) SaveRun(ctx context.Context, rec store.RunRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO enrich_runs
  (id, job, country, started_at, finished_at, templates, columns_resolved, columns_unresolved)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Job, rec.Country,
		formatTime(rec.StartedAt), formatTime(rec.FinishedAt),
		rec.Templates, rec.ColumnsResolved, rec.ColumnsUnresolved,
	)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	return nil
}

func (r *Repo) SaveAssignments(ctx context.Context, runID string, assignments map[string]string) error {
	if len(assignments) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString(`INSERT OR IGNORE INTO enrich_assignments (run_id, column_name, picklist_values) VALUES `)

	args := make([]any, 0, len(assignments)*3)
	first := true
	for col, vals := range assignments {
		if !first {
			b.WriteString(", ")
		}
		first = false
		b.WriteString("(?, ?, ?)")
		args = append(args, runID, col, vals)
	}

	if _, err := r.db.ExecContext(ctx, b.String(), args...); err != nil {
		return fmt.Errorf("save assignments: %w", err)
	}
	return nil
}

func (r *Repo) LoadAssignments(ctx context.Context, runID string) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT column_name, picklist_values FROM enrich_assignments WHERE run_id = ?`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var col, vals string
		if err := rows.Scan(&col, &vals); err != nil {
			return nil, err
		}
		out[col] = vals
	}
	return out, rows.Err()
}

func (r *Repo) ListRuns(ctx context.Context, limit int) ([]store.RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, job, country, started_at, finished_at, templates, columns_resolved, columns_unresolved
FROM enrich_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.RunRecord
	for rows.Next() {
		var rec store.RunRecord
		var started, finished string
		if err := rows.Scan(&rec.ID, &rec.Job, &rec.Country, &started, &finished,
			&rec.Templates, &rec.ColumnsResolved, &rec.ColumnsUnresolved); err != nil {
			return nil, err
		}
		if rec.StartedAt, err = parseTime(started); err != nil {
			return nil, fmt.Errorf("run %s started_at: %w", rec.ID, err)
		}
		if rec.FinishedAt, err = parseTime(finished); err != nil {
			return nil, fmt.Errorf("run %s finished_at: %w", rec.ID, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
