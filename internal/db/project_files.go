package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// SaveProjectFiles snapshots the generated files of a run. Existing rows
// for the run are replaced so re-saving after a repair pass is safe.
func (db *DB) SaveProjectFiles(ctx context.Context, runID uuid.UUID, files []ProjectFileInput) ([]ProjectFile, error) {
	_, err := db.pool.Exec(ctx, "DELETE FROM project_files WHERE run_id = $1", runID)
	if err != nil {
		return nil, fmt.Errorf("failed to clear existing project files: %w", err)
	}

	var result []ProjectFile
	for _, input := range files {
		var pf ProjectFile
		err := db.pool.QueryRow(ctx,
			`INSERT INTO project_files (run_id, path, content, origin, size_bytes)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING id, run_id, path, content, origin, size_bytes, created_at`,
			runID, input.Path, input.Content, nullIfEmpty(input.Origin), len(input.Content),
		).Scan(&pf.ID, &pf.RunID, &pf.Path, &pf.Content, &pf.Origin, &pf.SizeBytes, &pf.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to save project file %s: %w", input.Path, err)
		}
		result = append(result, pf)
	}

	return result, nil
}

// GetProjectFiles retrieves the file snapshot for a run, ordered by path
func (db *DB) GetProjectFiles(ctx context.Context, runID uuid.UUID) ([]ProjectFile, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, run_id, path, content, COALESCE(origin, ''), size_bytes, created_at
		 FROM project_files
		 WHERE run_id = $1
		 ORDER BY path`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get project files: %w", err)
	}
	defer rows.Close()

	var files []ProjectFile
	for rows.Next() {
		var pf ProjectFile
		if err := rows.Scan(&pf.ID, &pf.RunID, &pf.Path, &pf.Content, &pf.Origin,
			&pf.SizeBytes, &pf.CreatedAt); err != nil {
			return nil, err
		}
		files = append(files, pf)
	}
	return files, nil
}
