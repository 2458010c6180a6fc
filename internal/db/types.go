package db

import (
	"time"

	"github.com/google/uuid"
)

// Run kinds recorded for build_runs.kind.
const (
	// KindBuild is a from-scratch site generation.
	KindBuild = "build"
	// KindUpdate is an incremental change to an existing site.
	KindUpdate = "update"
)

// Run statuses recorded for build_runs.status.
const (
	// StatusRunning marks an in-flight run.
	StatusRunning = "running"
	// StatusSucceeded marks a run whose final verification passed.
	StatusSucceeded = "succeeded"
	// StatusDegraded marks a run that finished with fallback components.
	StatusDegraded = "degraded"
	// StatusFailed marks a run that errored before producing a site.
	StatusFailed = "failed"
)

// Run represents one build or update run
type Run struct {
	ID          uuid.UUID  `json:"id"`
	ProjectName string     `json:"project_name"`
	Title       string     `json:"title"`
	Strategy    string     `json:"strategy"`
	Kind        string     `json:"kind"`
	Status      string     `json:"status"`
	FixAttempts int        `json:"fix_attempts"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Artifact represents an artifact record
type Artifact struct {
	ID          uuid.UUID `json:"id"`
	RunID       uuid.UUID `json:"run_id"`
	Step        string    `json:"step"`
	Category    string    `json:"category"`
	Content     any       `json:"content,omitempty"`
	TextContent string    `json:"text_content,omitempty"`
}

// ProjectFile is a snapshot of one generated file at run completion
type ProjectFile struct {
	ID        uuid.UUID `json:"id"`
	RunID     uuid.UUID `json:"run_id"`
	Path      string    `json:"path"`
	Content   string    `json:"content"`
	Origin    string    `json:"origin"`
	SizeBytes int       `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

// ProjectFileInput is the insert shape for a file snapshot
type ProjectFileInput struct {
	Path    string
	Content string
	Origin  string
}
