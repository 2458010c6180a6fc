// Package pipeline provides the high-level orchestration for site generation:
// scaffold, parallel install + generation, then the verify/repair cycle that
// keeps fixing the site until the browser renders it or attempts run out.
package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/jonathan/spa-builder/internal/config"
	"github.com/jonathan/spa-builder/internal/db"
	"github.com/jonathan/spa-builder/internal/llm"
	"github.com/jonathan/spa-builder/internal/observability"
	"github.com/jonathan/spa-builder/internal/project"
	"github.com/jonathan/spa-builder/internal/repair"
	"github.com/jonathan/spa-builder/internal/toolchain"
	"github.com/jonathan/spa-builder/internal/types"
	"github.com/jonathan/spa-builder/internal/verify"
)

// genTemperature is used for fresh component generation; repair passes run
// much colder (see the repair package).
const genTemperature = 0.7

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Message  string `json:"message"`
	RunID    string `json:"run_id,omitempty"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// Options holds the shared dependencies for build and update runs.
type Options struct {
	Cfg      config.Config
	Client   llm.Client
	Database *db.DB // optional; nil disables persistence

	// Server reuses an already-running dev server supervisor (server mode).
	// Nil makes the run manage its own server and stop it on completion.
	Server *toolchain.Supervisor

	Verbose    bool
	OnProgress ProgressCallback
	// OnToken receives streamed model output for live display.
	OnToken llm.Observer
}

// Run statuses reported in Result.Status.
const (
	// StatusSucceeded means the final verification passed with no fallbacks forced.
	StatusSucceeded = "succeeded"
	// StatusDegraded means the page renders but some components were
	// replaced by safe fallbacks.
	StatusDegraded = "degraded"
	// StatusFailed means verification still failed after every escalation.
	StatusFailed = "failed"
)

// Result summarizes a finished run.
type Result struct {
	RunID       uuid.UUID `json:"run_id,omitempty"`
	ProjectName string    `json:"project_name"`
	ProjectDir  string    `json:"project_dir"`
	URL         string    `json:"url,omitempty"`
	Status      string    `json:"status"`
	Attempts    int       `json:"attempts"`
	Failures    []string  `json:"failures,omitempty"`
}

func (o *Options) logf(format string, args ...interface{}) {
	if o.Verbose {
		fmt.Printf("[VERBOSE] "+format+"\n", args...)
	}
}

// emitProgress calls the progress callback if configured
func emitProgress(opts *Options, runID uuid.UUID, step, category, message string, content any) {
	if opts.OnProgress != nil {
		event := ProgressEvent{Step: step, Category: category, Message: message, Content: content}
		if runID != uuid.Nil {
			event.RunID = runID.String()
		}
		opts.OnProgress(event)
	}
}

// createRun records the run start when persistence is configured.
func createRun(ctx context.Context, opts *Options, spec *types.BuildSpec, kind string) uuid.UUID {
	if opts.Database == nil {
		return uuid.Nil
	}
	runID, err := opts.Database.CreateRun(ctx, spec.ProjectName, spec.Title, spec.Strategy, kind)
	if err != nil {
		fmt.Printf("Warning: Failed to create database run: %v\n", err)
		return uuid.Nil
	}
	opts.logf("created database run: %s", runID)
	return runID
}

// finishRun records completion state and the final file snapshot.
func finishRun(ctx context.Context, opts *Options, runID uuid.UUID, proj *project.Project, result *Result) {
	if opts.Database == nil || runID == uuid.Nil {
		return
	}
	_ = opts.Database.SaveArtifact(ctx, runID, db.StepVerification, db.CategoryVerification, result)

	var files []db.ProjectFileInput
	for _, f := range proj.Files() {
		files = append(files, db.ProjectFileInput{Path: f.Path, Content: f.Content})
	}
	if _, err := opts.Database.SaveProjectFiles(ctx, runID, files); err != nil {
		fmt.Printf("Warning: Failed to snapshot project files: %v\n", err)
	}

	status := db.StatusSucceeded
	switch result.Status {
	case StatusDegraded:
		status = db.StatusDegraded
	case StatusFailed:
		status = db.StatusFailed
	}
	_ = opts.Database.CompleteRun(ctx, runID, status, result.Attempts)
}

// verifyCycle is the bounded verify → repair → restart loop, kept free of
// toolchain wiring. The dev server restarts after every repair pass: vite's
// HMR can wedge on a parse error and keep serving the stale overlay, and
// re-verifying against that session burns attempts on already-fixed files.
type verifyCycle struct {
	maxAttempts int

	verify     func(ctx context.Context, attempt int) []string
	repair     func(ctx context.Context, attempt int, failures []string)
	restart    func(ctx context.Context) error
	onVerified func(attempt int, failures []string)
}

// run returns the failures from the last verification (nil once a pass comes
// back clean) and the number of attempts spent. The final attempt only
// verifies; escalation after exhaustion is the caller's call.
func (c *verifyCycle) run(ctx context.Context) ([]string, int, error) {
	var failures []string
	attempt := 0
	for attempt = 1; attempt <= c.maxAttempts; attempt++ {
		failures = c.verify(ctx, attempt)
		if c.onVerified != nil {
			c.onVerified(attempt, failures)
		}
		if len(failures) == 0 {
			return nil, attempt, nil
		}
		if attempt == c.maxAttempts {
			break
		}
		c.repair(ctx, attempt, failures)
		if err := c.restart(ctx); err != nil {
			return failures, attempt, err
		}
	}
	return failures, attempt, nil
}

// verifyAndRepair runs the outer verification loop: serve, check in a real
// browser, feed everything broken to the repair orchestrator, restart the
// server, repeat. When attempts run out it escalates to safe fallbacks so
// the final page renders regardless.
func verifyAndRepair(ctx context.Context, opts *Options, proj *project.Project, runID uuid.UUID, restart bool) (*Result, error) {
	printer := observability.NewPrinter(os.Stdout)
	cfg := opts.Cfg

	runner := toolchain.NewRunner(proj.Dir)
	runner.InstallTimeout = cfg.InstallTimeout()
	runner.BuildTimeout = cfg.BuildTimeout()
	runner.Logf = toolchain.Logf(opts.logf)

	sup := opts.Server
	owned := sup == nil
	if owned {
		sup = &toolchain.Supervisor{Logf: toolchain.Logf(opts.logf)}
		defer sup.Stop()
	}

	server := sup.Current()
	if server == nil || restart {
		var err error
		server, err = sup.Restart(ctx, runner, cfg.DevPort)
		if err != nil {
			return nil, fmt.Errorf("starting dev server failed: %w", err)
		}
	}

	orch := repair.New(proj, opts.Client, repair.Options{
		StuckToleranceBytes: cfg.StuckToleranceBytes,
		ThinWrapperChars:    cfg.ThinWrapperChars,
		Stream:              opts.OnToken,
		Logf:                repair.Logf(opts.logf),
	})

	result := &Result{
		ProjectName: proj.Name,
		ProjectDir:  proj.Dir,
		URL:         server.URL(),
		RunID:       runID,
	}

	// The error report is assembled once per failing attempt (BuildErrors
	// runs a full vite build) and shared between the artifact save and the
	// repair pass.
	var report types.ErrorReport

	cycle := &verifyCycle{
		maxAttempts: cfg.MaxFixAttempts,
		verify: func(ctx context.Context, attempt int) []string {
			result.Attempts = attempt
			fmt.Printf("Verification attempt %d/%d...\n", attempt, cfg.MaxFixAttempts)
			return runVerifier(ctx, opts, proj, server.URL())
		},
		onVerified: func(attempt int, failures []string) {
			if opts.Verbose {
				printer.PrintVerification(attempt, failures)
			}
			if len(failures) == 0 {
				return
			}

			report = types.ErrorReport{Failures: failures}
			if buildErrs := runner.BuildErrors(ctx); buildErrs != "" {
				report.ToolchainOutput = buildErrs
			}
			report.ServerStderr = server.ErrorOutput()

			if opts.Database != nil && runID != uuid.Nil {
				step := fmt.Sprintf("%s_attempt_%d", db.StepErrorLog, attempt)
				_ = opts.Database.SaveTextArtifact(ctx, runID, step, db.CategoryVerification, report.Combined())
			}
			emitProgress(opts, runID, db.StepVerification, db.CategoryVerification,
				fmt.Sprintf("Attempt %d found %d issue(s)", attempt, len(failures)), failures)
		},
		repair: func(ctx context.Context, _ int, _ []string) {
			fixes := orch.FixWithErrors(ctx, report)
			if opts.Verbose {
				printer.PrintRepairSummary(fixes)
			}
			emitProgress(opts, runID, db.StepErrorLog, db.CategoryRepair,
				fmt.Sprintf("Repaired %d file(s)", len(fixes)), nil)
		},
		restart: func(ctx context.Context) error {
			fresh, err := sup.Restart(ctx, runner, cfg.DevPort)
			if err != nil {
				return fmt.Errorf("restarting dev server failed: %w", err)
			}
			server = fresh
			result.URL = server.URL()
			return nil
		},
	}

	failures, _, err := cycle.run(ctx)
	if err != nil {
		return nil, err
	}
	if len(failures) == 0 {
		result.Status = StatusSucceeded
		emitProgress(opts, runID, db.StepVerification, db.CategoryVerification, "All browser checks passed", nil)
		finishRun(ctx, opts, runID, proj, result)
		return result, nil
	}

	// Attempts exhausted. Sweep thin components first; if the page still
	// fails, force every component to the safe fallback. Any sweep that
	// rewrote files gets a fresh server before the retest.
	fmt.Printf("⚠️ Attempts exhausted, escalating to safe fallbacks...\n")
	if len(orch.EscalateThin(cfg.MinComponentBytes, false)) > 0 {
		if err := cycle.restart(ctx); err != nil {
			return nil, err
		}
	}
	failures = runVerifier(ctx, opts, proj, server.URL())
	if len(failures) > 0 {
		if len(orch.EscalateThin(0, true)) > 0 {
			if err := cycle.restart(ctx); err != nil {
				return nil, err
			}
		}
		failures = runVerifier(ctx, opts, proj, server.URL())
	}

	result.Failures = failures
	if len(failures) == 0 {
		result.Status = StatusDegraded
	} else {
		result.Status = StatusFailed
	}
	finishRun(ctx, opts, runID, proj, result)
	return result, nil
}

func runVerifier(ctx context.Context, opts *Options, proj *project.Project, url string) []string {
	v := verify.NewVerifier(url)
	v.ProjectDir = proj.Dir
	v.ReadyTimeout = opts.Cfg.VerifyTimeout()
	v.Logf = verify.Logf(opts.logf)
	return v.Run(ctx)
}
