// Package repair regenerates broken component files using the collected
// error context. Each pass locates the implicated files, asks the model
// for a corrected version with the full codebase in context, and escalates
// to a guaranteed-valid fallback when the model stops making progress —
// the loop converges on a rendering page no matter how the model behaves.
package repair

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/jonathan/spa-builder/internal/extract"
	"github.com/jonathan/spa-builder/internal/llm"
	"github.com/jonathan/spa-builder/internal/locate"
	"github.com/jonathan/spa-builder/internal/project"
	"github.com/jonathan/spa-builder/internal/types"
)

// fixTemperature keeps repair generations nearly deterministic.
const fixTemperature = 0.05

// DefaultStuckTolerance is the byte delta under which two consecutive
// versions of a file count as identical.
const DefaultStuckTolerance = 30

// Outcome describes how one file was handled during a repair pass.
type Outcome string

const (
	// OutcomeRegenerated means the model produced a fixed version.
	OutcomeRegenerated Outcome = "regenerated"
	// OutcomeRescued means the file was rebuilt from cached raw output
	// without a model call.
	OutcomeRescued Outcome = "rescued"
	// OutcomeFallback means the safe placeholder was written.
	OutcomeFallback Outcome = "fallback"
)

// Fix is the result of repairing one file.
type Fix struct {
	Path    string
	Outcome Outcome
}

// Logf receives repair progress lines. Nil disables logging.
type Logf func(format string, args ...interface{})

// Options tunes the orchestrator.
type Options struct {
	// StuckToleranceBytes overrides DefaultStuckTolerance when > 0.
	StuckToleranceBytes int
	// ThinWrapperChars passes through to extraction.
	ThinWrapperChars int
	// Stream receives model output chunks during fix generations.
	Stream llm.Observer
	Logf   Logf
}

// Orchestrator runs repair passes against one project. Not safe for
// concurrent use; the verification loop calls it sequentially.
type Orchestrator struct {
	proj   *project.Project
	client llm.Client
	opts   Options

	// states tracks per-file sizes across passes for the convergence
	// guard. An entry is cleared when the file stabilizes or a fallback
	// is written.
	states map[string]*types.RepairState
}

// New returns an Orchestrator for the project.
func New(proj *project.Project, client llm.Client, opts Options) *Orchestrator {
	return &Orchestrator{
		proj:   proj,
		client: client,
		opts:   opts,
		states: make(map[string]*types.RepairState),
	}
}

func (o *Orchestrator) logf(format string, args ...interface{}) {
	if o.opts.Logf != nil {
		o.opts.Logf(format, args...)
	}
}

func (o *Orchestrator) stuckTolerance() int {
	if o.opts.StuckToleranceBytes > 0 {
		return o.opts.StuckToleranceBytes
	}
	return DefaultStuckTolerance
}

var notDefinedRe = regexp.MustCompile(`(\w+) is not defined`)

// FixWithErrors runs one repair pass over every file the error report
// implicates. When no file can be pinned down, every component is
// regenerated.
func (o *Orchestrator) FixWithErrors(ctx context.Context, report types.ErrorReport) []Fix {
	allErrors := report.Combined()
	o.logf("repair pass with %d chars of errors", len(allErrors))

	broken := locate.Files(allErrors, o.proj.Owns)
	if len(broken) == 0 {
		broken = o.proj.Components()
		o.logf("no specific file identified, regenerating all %d components", len(broken))
	} else {
		o.logf("targeting %s", strings.Join(broken, ", "))
	}

	codebase := o.proj.CodebaseContext()

	var fixes []Fix
	for _, fpath := range broken {
		fixes = append(fixes, o.fixFile(ctx, fpath, allErrors, codebase))
	}
	return fixes
}

func (o *Orchestrator) fixFile(ctx context.Context, fpath, allErrors, codebase string) Fix {
	name := strings.TrimSuffix(path.Base(fpath), ".jsx")
	current := o.proj.Content(fpath)
	currSize := len(strings.TrimSpace(current))

	// Convergence guard: when a fix pass leaves the file essentially
	// unchanged, the model is regenerating the same broken code. Escalate
	// to the fallback instead of burning another generation.
	if st := o.states[fpath]; st != nil {
		delta := currSize - st.LastSize
		if delta < 0 {
			delta = -delta
		}
		if delta < o.stuckTolerance() {
			o.logf("%s unchanged after fix (%dB ≈ %dB), writing safe fallback", name, currSize, st.LastSize)
			if _, err := o.proj.WriteFallback(fpath); err != nil {
				o.logf("fallback write failed for %s: %v", fpath, err)
			}
			delete(o.states, fpath)
			o.proj.ClearRawOutput(name)
			return Fix{Path: fpath, Outcome: OutcomeFallback}
		}
		st.LastSize = currSize
		st.Attempts++
	} else {
		o.states[fpath] = &types.RepairState{LastSize: currSize, Attempts: 1}
	}

	// "X is not defined" often means extraction kept only a thin wrapper
	// and dropped the real component. Re-extract from the cached raw
	// output before spending a model call.
	if notDefinedRe.MatchString(allErrors) {
		if raw := o.proj.RawOutput(name); raw != "" {
			rescued := extract.Component(raw, name, extract.Options{
				ThinWrapperChars: o.opts.ThinWrapperChars,
				Logf:             extract.Logf(o.opts.Logf),
			})
			if extract.Rescued(strings.TrimSpace(rescued), currSize) {
				o.logf("rescued %s from raw output (%dB vs %dB thin)", name, len(rescued), currSize)
				if _, err := o.proj.WriteComponent(fpath, rescued, o.opts.ThinWrapperChars); err != nil {
					o.logf("rescue write failed for %s: %v", fpath, err)
				}
				delete(o.states, fpath)
				o.proj.ClearRawOutput(name)
				return Fix{Path: fpath, Outcome: OutcomeRescued}
			}
			o.logf("raw re-extraction did not help for %s, using model fix", name)
		}
	}

	prompt := o.buildFixPrompt(name, fpath, current, allErrors, codebase)
	system, err := fixSystem(name)
	if err != nil {
		o.logf("prompt load failed: %v", err)
		return o.writeFallback(fpath, name)
	}

	o.logf("regenerating %s", fpath)
	result, err := o.client.Generate(ctx, llm.Request{
		System:      system,
		Prompt:      prompt,
		Temperature: fixTemperature,
	}, o.opts.Stream)
	if err != nil {
		o.logf("model fix failed for %s: %v", name, err)
		return o.writeFallback(fpath, name)
	}

	fixed := extract.Fenced(result)
	if !strings.Contains(fixed, "export default") {
		o.logf("model fix for %s lacked a default export, using safe fallback", name)
		return o.writeFallback(fpath, name)
	}

	if _, err := o.proj.WriteComponent(fpath, fixed, o.opts.ThinWrapperChars); err != nil {
		o.logf("write failed for %s: %v", fpath, err)
	}
	o.logf("saved %s (%dB)", fpath, len(fixed))
	return Fix{Path: fpath, Outcome: OutcomeRegenerated}
}

func (o *Orchestrator) writeFallback(fpath, name string) Fix {
	if _, err := o.proj.WriteFallback(fpath); err != nil {
		o.logf("fallback write failed for %s: %v", fpath, err)
	}
	delete(o.states, fpath)
	o.proj.ClearRawOutput(name)
	return Fix{Path: fpath, Outcome: OutcomeFallback}
}

// EscalateThin replaces every component smaller than minBytes with the
// safe fallback, or all of them when force is set. The verification loop
// calls this after the final failed attempt so the user sees a rendering
// page instead of a blank one.
func (o *Orchestrator) EscalateThin(minBytes int, force bool) []Fix {
	var fixes []Fix
	for _, fpath := range o.proj.Components() {
		content := strings.TrimSpace(o.proj.Content(fpath))
		if !force && len(content) >= minBytes {
			continue
		}
		name := strings.TrimSuffix(path.Base(fpath), ".jsx")
		o.logf("safe fallback written for %s", fpath)
		fixes = append(fixes, o.writeFallback(fpath, name))
	}
	return fixes
}

// numberLines renders content with 1-based line numbers the way compile
// errors reference them.
func numberLines(content string) string {
	lines := strings.Split(content, "\n")
	var b strings.Builder
	for i, l := range lines {
		fmt.Fprintf(&b, "%3d | %s\n", i+1, l)
	}
	return strings.TrimSuffix(b.String(), "\n")
}
