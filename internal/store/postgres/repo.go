package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"enrich/internal/store"
)

// Repo implements store.Repository for Postgres using a pgx pool.
type Repo struct {
	pool *pgxpool.Pool
}

func init() {
	store.Register("postgres", New)
}

func New(ctx context.Context, cfg store.Config) (store.Repository, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, err
	}
	return &Repo{pool: pool}, nil
}

func (r *Repo) Close() { r.pool.Close() }

func (r *Repo) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS enrich_runs (
  id TEXT PRIMARY KEY,
  job TEXT NOT NULL,
  country TEXT NOT NULL,
  started_at TIMESTAMPTZ NOT NULL,
  finished_at TIMESTAMPTZ NOT NULL,
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
		if _, err := r.pool.Exec(ctx, s); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (r *Repo) SaveRun(ctx context.Context, rec store.RunRecord) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO enrich_runs
  (id, job, country, started_at, finished_at, templates, columns_resolved, columns_unresolved)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID, rec.Job, rec.Country, rec.StartedAt, rec.FinishedAt,
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
	for col, vals := range assignments {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO enrich_assignments (run_id, column_name, picklist_values)
VALUES ($1, $2, $3)
ON CONFLICT (run_id, column_name) DO NOTHING`,
			runID, col, vals,
		)
		if err != nil {
			return fmt.Errorf("save assignment %s: %w", col, err)
		}
	}
	return nil
}

func (r *Repo) LoadAssignments(ctx context.Context, runID string) (map[string]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT column_name, picklist_values FROM enrich_assignments WHERE run_id = $1`, runID)
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
	rows, err := r.pool.Query(ctx,
		`SELECT id, job, country, started_at, finished_at, templates, columns_resolved, columns_unresolved
FROM enrich_runs ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.RunRecord
	for rows.Next() {
		var rec store.RunRecord
		if err := rows.Scan(&rec.ID, &rec.Job, &rec.Country, &rec.StartedAt, &rec.FinishedAt,
			&rec.Templates, &rec.ColumnsResolved, &rec.ColumnsUnresolved); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
