package pipeline

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/jonathan/spa-builder/internal/db"
	"github.com/jonathan/spa-builder/internal/llm"
	"github.com/jonathan/spa-builder/internal/project"
	"github.com/jonathan/spa-builder/internal/prompts"
	"github.com/jonathan/spa-builder/internal/types"
)

const updateFile = "update.json"

// patchKeywords mark small surgical fixes; featureKeywords mark requests
// for brand-new components. Everything else is a modify.
var (
	patchKeywords = []string{
		"fix", "broken", "bug", "error", "typo", "wrong",
		"doesn't work", "does not work", "not working", "crash",
	}
	featureKeywords = []string{
		"add a", "add an", "add new", "create a", "create an",
		"new section", "new page", "new component", "build a",
	}
)

// semanticTargets maps request vocabulary to the component it usually
// means, for when the model's target decision is unusable.
var semanticTargets = []struct {
	keywords []string
	name     string
}{
	{[]string{"hero", "banner", "headline", "landing"}, "Hero"},
	{[]string{"nav", "menu bar", "header link"}, "Navbar"},
	{[]string{"feature"}, "Features"},
	{[]string{"about", "story", "team"}, "About"},
	{[]string{"price", "pricing", "plan", "tier"}, "Pricing"},
	{[]string{"contact", "email form", "reach out"}, "Contact"},
	{[]string{"footer", "bottom"}, "Footer"},
	{[]string{"testimonial", "review", "quote"}, "Testimonials"},
	{[]string{"gallery", "photo", "image grid"}, "Gallery"},
	{[]string{"faq", "question"}, "FAQ"},
}

// ClassifyIntent buckets a change request into patch, modify or feature.
func ClassifyIntent(request string) string {
	lower := strings.ToLower(request)
	for _, kw := range patchKeywords {
		if strings.Contains(lower, kw) {
			return types.IntentPatch
		}
	}
	for _, kw := range featureKeywords {
		if strings.Contains(lower, kw) {
			return types.IntentFeature
		}
	}
	return types.IntentModify
}

// RunUpdate applies a natural-language change request to an existing
// project and re-verifies the result.
func RunUpdate(ctx context.Context, projectName, request string, opts Options) (*Result, error) {
	proj, err := project.Open(opts.Cfg.WorkspaceDir, projectName)
	if err != nil {
		return nil, err
	}
	proj.Logf = project.Logf(opts.logf)

	intent := ClassifyIntent(request)
	fmt.Printf("Step 1/3: Change classified as %q\n", intent)

	var runID uuid.UUID
	if opts.Database != nil {
		runID, err = opts.Database.CreateRun(ctx, projectName, projectName, intent, db.KindUpdate)
		if err != nil {
			fmt.Printf("Warning: Failed to create database run: %v\n", err)
			runID = uuid.Nil
		} else {
			_ = opts.Database.SaveTextArtifact(ctx, runID, db.StepUpdateRequest, db.CategoryGeneration, request)
		}
	}

	existing := proj.ComponentNames()
	targets := decideTargets(ctx, &opts, request, intent, existing)
	fmt.Printf("Step 2/3: Updating %s...\n", strings.Join(targets, ", "))
	emitProgress(&opts, runID, db.StepUpdateRequest, db.CategoryGeneration,
		fmt.Sprintf("Applying %s to %s", intent, strings.Join(targets, ", ")), nil)

	for _, name := range targets {
		applyChange(ctx, &opts, proj, request, intent, name)
	}

	// Patches ride Vite's hot reload; bigger changes restart the server so
	// stale module state can't mask the result.
	restart := intent != types.IntentPatch
	fmt.Printf("Step 3/3: Verifying in browser...\n")
	return verifyAndRepair(ctx, &opts, proj, runID, restart)
}

// decideTargets asks the model which components the request touches and
// falls back to keyword matching when the answer is unusable. Non-feature
// intents may only touch components that already exist.
func decideTargets(ctx context.Context, opts *Options, request, intent string, existing []string) []string {
	prompt := prompts.MustFormat(updateFile, "decide_targets", map[string]string{
		"Request":    request,
		"Intent":     intent,
		"Components": strings.Join(existing, "\n"),
	})

	resp, err := opts.Client.GenerateJSON(ctx, prompt)
	if err == nil {
		if names, perr := llm.ParseNameArray(resp); perr == nil {
			if intent != types.IntentFeature {
				names = intersect(names, existing)
			}
			if len(names) > 0 {
				return names
			}
		}
	}
	opts.logf("target decision unusable, falling back to keyword match")
	return fallbackTargets(request, intent, existing)
}

// fallbackTargets resolves targets without a model: semantic keyword match
// against the known section vocabulary, then a best-effort component name
// for new features.
func fallbackTargets(request, intent string, existing []string) []string {
	lower := strings.ToLower(request)

	var matched []string
	for _, st := range semanticTargets {
		for _, kw := range st.keywords {
			if strings.Contains(lower, kw) {
				matched = append(matched, st.name)
				break
			}
		}
	}
	if intent != types.IntentFeature {
		matched = intersect(matched, existing)
	}
	if len(matched) > 0 {
		return matched
	}

	if intent == types.IntentFeature {
		return []string{featureName(request)}
	}
	if len(existing) > 0 {
		// Nothing matched: touch everything rather than silently no-op.
		return existing
	}
	return nil
}

// featureName invents a component name for a new-feature request: the
// first capitalized word of useful length, else a generic name.
func featureName(request string) string {
	for _, word := range strings.Fields(request) {
		word = strings.TrimFunc(word, func(r rune) bool { return !unicode.IsLetter(r) })
		if len(word) > 3 && unicode.IsUpper(rune(word[0])) {
			return word
		}
	}
	return "NewSection"
}

// applyChange regenerates one component per the request. Failures leave
// the existing file untouched; the verify cycle judges the outcome.
func applyChange(ctx context.Context, opts *Options, proj *project.Project, request, intent, name string) {
	rel := "src/components/" + name + ".jsx"
	isNew := !proj.Owns(rel)

	var prompt string
	switch {
	case isNew:
		prompt = prompts.MustFormat(updateFile, "feature", map[string]string{
			"Request":     request,
			"Title":       proj.Name,
			"ColorScheme": "existing palette",
			"Style":       "existing style",
			"Name":        name,
			"AnchorID":    strings.ToLower(name),
			"Codebase":    proj.CodebaseContext(),
		})
	case intent == types.IntentPatch:
		prompt = prompts.MustFormat(updateFile, "patch", map[string]string{
			"Request": request,
			"Name":    name,
			"Content": proj.Content(rel),
		})
	default:
		prompt = prompts.MustFormat(updateFile, "modify", map[string]string{
			"Request":     request,
			"Title":       proj.Name,
			"ColorScheme": "existing palette",
			"Style":       "existing style",
			"Name":        name,
			"Content":     proj.Content(rel),
		})
	}

	raw, err := opts.Client.Generate(ctx, llm.Request{
		System:      prompts.MustGet(generationFile, "system"),
		Prompt:      prompt,
		Temperature: genTemperature,
	}, opts.OnToken)
	if err != nil || strings.TrimSpace(raw) == "" {
		opts.logf("update generation failed for %s: %v", name, err)
		if isNew {
			if _, ferr := proj.WriteFallback(rel); ferr != nil {
				opts.logf("fallback write failed for %s: %v", name, ferr)
			}
		}
		return
	}

	proj.CacheRawOutput(name, raw)
	if _, err := proj.WriteComponent(rel, raw, opts.Cfg.ThinWrapperChars); err != nil {
		opts.logf("write failed for %s: %v", name, err)
		return
	}

	if isNew {
		if err := proj.InjectIntoAppShell(name); err != nil {
			opts.logf("app shell injection failed for %s: %v", name, err)
		}
	}
}

func intersect(names, allowed []string) []string {
	set := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		set[a] = true
	}
	var out []string
	for _, n := range names {
		if set[n] {
			out = append(out, n)
		}
	}
	return out
}
