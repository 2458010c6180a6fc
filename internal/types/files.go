// Package types provides type definitions for structured data used throughout the spa-builder system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// File origins tracked in the project file table.
const (
	// OriginGenerated marks content produced by a model call.
	OriginGenerated = "generated"
	// OriginFallback marks a guaranteed-valid placeholder written on escalation.
	OriginFallback = "fallback"
	// OriginHandAuthored marks scaffold files written by the builder itself.
	OriginHandAuthored = "hand-authored"
)

// GeneratedFile is one entry in a project's in-memory file table. Identity is
// the project-relative path; content is the current on-disk text.
type GeneratedFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
	Origin  string `json:"origin"`
	Size    int    `json:"size"`
}

// ErrorReport carries everything one repair iteration knows about what went
// wrong: verifier failure strings plus raw toolchain output. Ephemeral.
type ErrorReport struct {
	Failures        []string `json:"failures"`
	ToolchainOutput string   `json:"toolchain_output,omitempty"`
	ServerStderr    string   `json:"server_stderr,omitempty"`
}

// Empty reports whether the iteration observed no failure signal at all.
func (r ErrorReport) Empty() bool {
	return len(r.Failures) == 0 && r.ToolchainOutput == "" && r.ServerStderr == ""
}

// Combined joins every failure source into one text blob for fault location.
func (r ErrorReport) Combined() string {
	out := ""
	for _, f := range r.Failures {
		out += f + "\n"
	}
	if r.ToolchainOutput != "" {
		out += r.ToolchainOutput + "\n"
	}
	if r.ServerStderr != "" {
		out += r.ServerStderr + "\n"
	}
	return out
}

// RepairState holds the per-file counters behind the convergence guard:
// the content size observed before the last fix attempt and how many
// attempts have been spent. Cleared when the file stabilizes or a
// fallback is written.
type RepairState struct {
	LastSize int `json:"last_size"`
	Attempts int `json:"attempts"`
}

// Update intents for the incremental change pipeline.
const (
	// IntentPatch is a small surgical fix to existing components.
	IntentPatch = "patch"
	// IntentModify is a larger rework that still preserves existing content.
	IntentModify = "modify"
	// IntentFeature adds a brand-new component to the app.
	IntentFeature = "feature"
)
