package pipeline

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/spa-builder/internal/db"
	"github.com/jonathan/spa-builder/internal/llm"
	"github.com/jonathan/spa-builder/internal/observability"
	"github.com/jonathan/spa-builder/internal/project"
	"github.com/jonathan/spa-builder/internal/prompts"
	"github.com/jonathan/spa-builder/internal/toolchain"
	"github.com/jonathan/spa-builder/internal/types"
)

const generationFile = "generation.json"

// RunBuild generates a complete site from the build spec: scaffold, npm
// install and component generation in parallel, then the verify/repair
// cycle. The returned Result always describes a servable project; Status
// records how clean the outcome was.
func RunBuild(ctx context.Context, spec *types.BuildSpec, opts Options) (*Result, error) {
	printer := observability.NewPrinter(os.Stdout)
	if opts.Verbose {
		printer.PrintBuildSpec(spec)
	}

	fmt.Printf("Step 1/4: Scaffolding project %s...\n", spec.ProjectName)
	proj := project.New(opts.Cfg.WorkspaceDir, spec.ProjectName)
	proj.Logf = project.Logf(opts.logf)
	if err := proj.Scaffold(spec); err != nil {
		return nil, fmt.Errorf("scaffolding failed: %w", err)
	}

	runID := createRun(ctx, &opts, spec, db.KindBuild)
	if opts.Database != nil && runID != uuid.Nil {
		_ = opts.Database.SaveArtifact(ctx, runID, db.StepBuildSpec, db.CategoryGeneration, spec)
	}
	emitProgress(&opts, runID, db.StepBuildSpec, db.CategoryGeneration,
		fmt.Sprintf("Building %s (%s)", spec.Title, spec.Strategy), spec)

	runner := toolchain.NewRunner(proj.Dir)
	runner.InstallTimeout = opts.Cfg.InstallTimeout()
	runner.Logf = toolchain.Logf(opts.logf)

	// npm install and component generation have no data dependency, so
	// they run concurrently; the dev server needs both.
	fmt.Printf("Step 2/4: Installing dependencies and generating components in parallel...\n")
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := runner.EnsureDeps(gCtx); err != nil {
			return fmt.Errorf("dependency install failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		generateAll(gCtx, &opts, proj, spec, runID)
		return nil
	})

	if err := g.Wait(); err != nil {
		if opts.Database != nil && runID != uuid.Nil {
			_ = opts.Database.CompleteRun(ctx, runID, db.StatusFailed, 0)
		}
		return nil, err
	}

	if err := proj.WriteReadme(spec); err != nil {
		opts.logf("readme write failed: %v", err)
	}

	fmt.Printf("Step 3/4: Starting dev server and verifying in browser...\n")
	result, err := verifyAndRepair(ctx, &opts, proj, runID, true)
	if err != nil {
		if opts.Database != nil && runID != uuid.Nil {
			_ = opts.Database.CompleteRun(ctx, runID, db.StatusFailed, 0)
		}
		return nil, err
	}

	fmt.Printf("Step 4/4: Done! %s is %s at %s\n", spec.Title, result.Status, result.URL)
	return result, nil
}

// generateAll produces every component the spec names. Generation failures
// never abort the build; a failed component gets a working fallback and the
// repair cycle takes it from there.
func generateAll(ctx context.Context, opts *Options, proj *project.Project, spec *types.BuildSpec, runID uuid.UUID) {
	names := spec.ComponentNames()
	for i, name := range names {
		fmt.Printf("  Generating %s (%d/%d)...\n", name, i+1, len(names))
		generateComponent(ctx, opts, proj, spec, name)
	}

	// Compose the app shell after the components exist. The shell is
	// hand-authored: a generated one failing would take the whole page
	// down with it.
	var shell string
	if spec.Strategy == types.StrategyApp {
		shell = project.SingleAppShell()
	} else {
		shell = project.AppShell(spec.Title, spec.Sections)
	}
	if err := proj.WriteFile("src/App.jsx", shell); err != nil {
		opts.logf("app shell write failed: %v", err)
	}

	emitProgress(opts, runID, db.StepBuildSpec, db.CategoryGeneration,
		fmt.Sprintf("Generated %d component(s)", len(names)), nil)
}

// generateComponent generates one component and writes it through
// extraction and sanitization. On model failure the component degrades to
// a hand-written fallback instead of propagating the error.
func generateComponent(ctx context.Context, opts *Options, proj *project.Project, spec *types.BuildSpec, name string) {
	system := prompts.MustGet(generationFile, "system")
	prompt := buildGenerationPrompt(spec, name)
	rel := "src/components/" + name + ".jsx"

	raw, err := opts.Client.Generate(ctx, llm.Request{
		System:      system,
		Prompt:      prompt,
		Temperature: genTemperature,
	}, opts.OnToken)
	if err != nil || strings.TrimSpace(raw) == "" {
		opts.logf("generation failed for %s: %v", name, err)
		writeGenerationFallback(opts, proj, spec, name, rel)
		return
	}

	// Keep the raw output around: if extraction drops too much, the
	// repair cycle re-mines it instead of regenerating.
	proj.CacheRawOutput(name, raw)

	if _, err := proj.WriteComponent(rel, raw, opts.Cfg.ThinWrapperChars); err != nil {
		opts.logf("write failed for %s: %v", name, err)
		writeGenerationFallback(opts, proj, spec, name, rel)
	}
}

func writeGenerationFallback(opts *Options, proj *project.Project, spec *types.BuildSpec, name, rel string) {
	if name == "Navbar" {
		if err := proj.WriteFile(rel, project.FallbackNavbar(spec.Title, spec.Sections)); err != nil {
			opts.logf("navbar fallback write failed: %v", err)
		}
		return
	}
	if _, err := proj.WriteFallback(rel); err != nil {
		opts.logf("fallback write failed for %s: %v", name, err)
	}
}

func buildGenerationPrompt(spec *types.BuildSpec, name string) string {
	switch {
	case name == "Navbar":
		return prompts.MustFormat(generationFile, "navbar", map[string]string{
			"Title":       spec.Title,
			"ColorScheme": spec.ColorScheme,
			"Style":       spec.Style,
			"Anchors":     strings.Join(anchorIDs(spec.Sections), ", "),
		})
	case spec.Strategy == types.StrategyApp:
		return prompts.MustFormat(generationFile, "app", map[string]string{
			"Title":        spec.Title,
			"Description":  spec.Description,
			"ColorScheme":  spec.ColorScheme,
			"Style":        spec.Style,
			"Features":     strings.Join(spec.KeyFeatures, ", "),
			"Instructions": spec.Instructions,
		})
	default:
		return prompts.MustFormat(generationFile, "section", map[string]string{
			"Name":         name,
			"Title":        spec.Title,
			"Description":  spec.Description,
			"ColorScheme":  spec.ColorScheme,
			"Style":        spec.Style,
			"SiteType":     spec.SiteType,
			"Features":     strings.Join(spec.KeyFeatures, ", "),
			"Instructions": spec.Instructions,
			"AnchorID":     strings.ToLower(name),
		})
	}
}

// anchorIDs lists the section anchors the navbar should link to.
func anchorIDs(sections []string) []string {
	var out []string
	for _, s := range sections {
		if s != "Navbar" {
			out = append(out, strings.ToLower(s))
		}
	}
	return out
}
