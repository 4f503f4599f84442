package mssql

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/microsoft/go-mssqldb"

	"enrich/internal/store"
)

// Repo implements store.Repository for Microsoft SQL Server.
type Repo struct {
	db *sql.DB
}

func init() {
	store.Register("mssql", New)
}

func New(ctx context.Context, cfg store.Config) (store.Repository, error) {
	db, err := sql.Open("sqlserver", cfg.DSN)
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
		`IF OBJECT_ID('enrich_runs', 'U') IS NULL
CREATE TABLE enrich_runs (
  id NVARCHAR(64) PRIMARY KEY,
  job NVARCHAR(255) NOT NULL,
  country NVARCHAR(8) NOT NULL,
  started_at DATETIMEOFFSET NOT NULL,
  finished_at DATETIMEOFFSET NOT NULL,
  templates INT NOT NULL,
  columns_resolved INT NOT NULL,
  columns_unresolved INT NOT NULL
);`,
		`IF OBJECT_ID('enrich_assignments', 'U') IS NULL
CREATE TABLE enrich_assignments (
  run_id NVARCHAR(64) NOT NULL REFERENCES enrich_runs(id),
  column_name NVARCHAR(255) NOT NULL,
  picklist_values NVARCHAR(MAX) NOT NULL,
  CONSTRAINT uq_enrich_assignments UNIQUE (run_id, column_name)
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
VALUES (@p1, @p2, @p3, @p4, @p5, @p6, @p7, @p8)`,
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
		// NOT EXISTS keeps reprocessing idempotent; SQL Server has no
		// ON CONFLICT clause.
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO enrich_assignments (run_id, column_name, picklist_values)
SELECT @p1, @p2, @p3
WHERE NOT EXISTS (
  SELECT 1 FROM enrich_assignments WHERE run_id = @p1 AND column_name = @p2
)`,
			runID, col, vals,
		)
		if err != nil {
			return fmt.Errorf("save assignment %s: %w", col, err)
		}
	}
	return nil
}

func (r *Repo) LoadAssignments(ctx context.Context, runID string) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT column_name, picklist_values FROM enrich_assignments WHERE run_id = @p1`, runID)
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
		`SELECT TOP (@p1) id, job, country, started_at, finished_at, templates, columns_resolved, columns_unresolved
FROM enrich_runs ORDER BY started_at DESC`, limit)
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
