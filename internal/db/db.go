// Package db provides PostgreSQL persistence for build runs and their
// artifacts. Persistence is optional: the CLI runs without a database and
// callers treat a nil *DB as "don't record".
package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// CreateRun creates a new build run record and returns its ID
func (db *DB) CreateRun(ctx context.Context, projectName, title, strategy, kind string) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO build_runs (project_name, title, strategy, kind, status)
		 VALUES ($1, $2, $3, $4, 'running')
		 RETURNING id`,
		projectName, title, strategy, kind,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create run: %w", err)
	}
	return id, nil
}

// CompleteRun marks a build run as finished with the given status
// ("succeeded", "degraded" or "failed") and records how many fix
// iterations it took.
func (db *DB) CompleteRun(ctx context.Context, runID uuid.UUID, status string, fixAttempts int) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE build_runs SET status = $1, fix_attempts = $2, completed_at = NOW() WHERE id = $3`,
		status, fixAttempts, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

// GetRun retrieves a build run by ID
func (db *DB) GetRun(ctx context.Context, runID uuid.UUID) (*Run, error) {
	var run Run
	err := db.pool.QueryRow(ctx,
		`SELECT id, project_name, title, strategy, kind, status, fix_attempts, created_at, completed_at
		 FROM build_runs WHERE id = $1`,
		runID,
	).Scan(&run.ID, &run.ProjectName, &run.Title, &run.Strategy, &run.Kind,
		&run.Status, &run.FixAttempts, &run.CreatedAt, &run.CompletedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

// RunFilters holds optional filters for listing runs
type RunFilters struct {
	ProjectName string
	Status      string
	Limit       int
}

// ListRuns retrieves recent build runs, newest first, with optional filters
func (db *DB) ListRuns(ctx context.Context, filters RunFilters) ([]Run, error) {
	if filters.Limit == 0 {
		filters.Limit = 50
	}

	query := `SELECT id, project_name, title, strategy, kind, status, fix_attempts, created_at, completed_at
		FROM build_runs WHERE 1=1`
	args := []any{}
	argNum := 1

	if filters.ProjectName != "" {
		query += fmt.Sprintf(" AND project_name ILIKE $%d", argNum)
		args = append(args, "%"+filters.ProjectName+"%")
		argNum++
	}
	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, filters.Status)
		argNum++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", argNum)
	args = append(args, filters.Limit)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.ProjectName, &run.Title, &run.Strategy, &run.Kind,
			&run.Status, &run.FixAttempts, &run.CreatedAt, &run.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// DeleteRun deletes a build run and all its artifacts (via cascade)
func (db *DB) DeleteRun(ctx context.Context, runID uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM build_runs WHERE id = $1`, runID)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("run not found: %s", runID)
	}
	return nil
}

// nullIfEmpty converts empty strings to nil so text columns stay NULL
// instead of holding empty strings.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
