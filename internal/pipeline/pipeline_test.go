package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/spa-builder/internal/config"
	"github.com/jonathan/spa-builder/internal/llm"
	"github.com/jonathan/spa-builder/internal/project"
	"github.com/jonathan/spa-builder/internal/types"
)

type stubClient struct {
	calls   int
	out     string
	jsonOut string
	err     error
	prompts []string
}

func (s *stubClient) Generate(_ context.Context, req llm.Request, _ llm.Observer) (string, error) {
	s.calls++
	s.prompts = append(s.prompts, req.Prompt)
	if s.err != nil {
		return "", s.err
	}
	return s.out, nil
}

func (s *stubClient) GenerateJSON(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	return s.jsonOut, nil
}

func (s *stubClient) Close() error { return nil }

func testOptions(t *testing.T, client llm.Client) Options {
	t.Helper()
	cfg := config.Defaults()
	cfg.WorkspaceDir = t.TempDir()
	return Options{Cfg: cfg, Client: client}
}

const generatedHero = `import { motion } from 'framer-motion'

export default function Hero() {
  return (
    <section id="hero" className="py-20 bg-gray-900">
      <h2 className="text-4xl text-white">Fresh from the model</h2>
    </section>
  )
}
`

func TestVerifyCycle_RestartsServerAfterEachRepair(t *testing.T) {
	var order []string
	verifies := 0
	c := &verifyCycle{
		maxAttempts: 4,
		verify: func(context.Context, int) []string {
			verifies++
			order = append(order, "verify")
			if verifies == 3 {
				return nil
			}
			return []string{"App never rendered — likely a compile/runtime error"}
		},
		repair:  func(context.Context, int, []string) { order = append(order, "repair") },
		restart: func(context.Context) error { order = append(order, "restart"); return nil },
	}

	failures, attempts, err := c.run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, failures)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, []string{
		"verify", "repair", "restart",
		"verify", "repair", "restart",
		"verify",
	}, order, "every repair pass gets a fresh server before re-verifying")
}

func TestVerifyCycle_LastAttemptOnlyVerifies(t *testing.T) {
	repairs, restarts := 0, 0
	c := &verifyCycle{
		maxAttempts: 3,
		verify:      func(context.Context, int) []string { return []string{"Vite compile error: x"} },
		repair:      func(context.Context, int, []string) { repairs++ },
		restart:     func(context.Context) error { restarts++; return nil },
	}

	failures, attempts, err := c.run(context.Background())
	require.NoError(t, err)
	assert.Len(t, failures, 1)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 2, repairs)
	assert.Equal(t, 2, restarts)
}

func TestVerifyCycle_RestartFailureAborts(t *testing.T) {
	c := &verifyCycle{
		maxAttempts: 3,
		verify:      func(context.Context, int) []string { return []string{"Page appears completely blank"} },
		repair:      func(context.Context, int, []string) {},
		restart:     func(context.Context) error { return errors.New("port busy") },
	}

	failures, attempts, err := c.run(context.Background())
	require.Error(t, err)
	assert.Len(t, failures, 1)
	assert.Equal(t, 1, attempts)
}

func TestClassifyIntent(t *testing.T) {
	cases := []struct {
		request string
		want    string
	}{
		{"fix the broken navbar link", types.IntentPatch},
		{"there's a typo in the hero", types.IntentPatch},
		{"the contact form doesn't work", types.IntentPatch},
		{"add a testimonials section", types.IntentFeature},
		{"create an FAQ page", types.IntentFeature},
		{"make the hero more dramatic", types.IntentModify},
		{"change the color scheme to blue", types.IntentModify},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ClassifyIntent(c.request), c.request)
	}
}

func TestFallbackTargets_SemanticMatch(t *testing.T) {
	existing := []string{"Hero", "Pricing", "Contact"}

	got := fallbackTargets("make the hero headline bigger", types.IntentModify, existing)
	assert.Equal(t, []string{"Hero"}, got)

	got = fallbackTargets("update pricing plans and the contact form", types.IntentModify, existing)
	assert.ElementsMatch(t, []string{"Pricing", "Contact"}, got)
}

func TestFallbackTargets_NonFeatureRestrictedToExisting(t *testing.T) {
	// The request mentions a footer but the project has none.
	got := fallbackTargets("make the footer darker", types.IntentModify, []string{"Hero"})
	assert.Equal(t, []string{"Hero"}, got, "falls back to touching what exists")
}

func TestFallbackTargets_FeatureInventsName(t *testing.T) {
	got := fallbackTargets("add a Newsletter signup", types.IntentFeature, []string{"Hero"})
	assert.Equal(t, []string{"Newsletter"}, got)
}

func TestFeatureName(t *testing.T) {
	assert.Equal(t, "Newsletter", featureName("add a Newsletter signup box"))
	assert.Equal(t, "NewSection", featureName("add a thing"))
	assert.Equal(t, "Timeline", featureName("please include a Timeline, with dates"))
}

func TestDecideTargets_UsesModelAnswer(t *testing.T) {
	client := &stubClient{jsonOut: `["Hero", "Pricing"]`}
	opts := testOptions(t, client)

	got := decideTargets(context.Background(), &opts, "redo hero and pricing",
		types.IntentModify, []string{"Hero", "Pricing", "Contact"})
	assert.Equal(t, []string{"Hero", "Pricing"}, got)
}

func TestDecideTargets_ModelInventsComponentForModify(t *testing.T) {
	// Non-feature intents may not touch files that don't exist.
	client := &stubClient{jsonOut: `["Imaginary"]`}
	opts := testOptions(t, client)

	got := decideTargets(context.Background(), &opts, "make the hero pop",
		types.IntentModify, []string{"Hero"})
	assert.Equal(t, []string{"Hero"}, got, "semantic fallback takes over")
}

func TestDecideTargets_ModelErrorFallsBack(t *testing.T) {
	client := &stubClient{err: errors.New("quota exceeded")}
	opts := testOptions(t, client)

	got := decideTargets(context.Background(), &opts, "fix the pricing table",
		types.IntentPatch, []string{"Pricing", "Hero"})
	assert.Equal(t, []string{"Pricing"}, got)
}

func TestGenerateComponent_WritesThroughExtraction(t *testing.T) {
	client := &stubClient{out: "```jsx\n" + generatedHero + "```"}
	opts := testOptions(t, client)

	spec := &types.BuildSpec{Title: "Demo"}
	spec.ApplyDefaults()
	proj := project.New(opts.Cfg.WorkspaceDir, spec.ProjectName)

	generateComponent(context.Background(), &opts, proj, spec, "Hero")

	content := proj.Content("src/components/Hero.jsx")
	assert.Contains(t, content, "Fresh from the model")
	assert.NotContains(t, content, "```", "fences stripped")
	assert.NotEmpty(t, proj.RawOutput("Hero"), "raw output cached for rescue")
}

func TestGenerateComponent_FailureWritesFallback(t *testing.T) {
	client := &stubClient{err: errors.New("stream reset")}
	opts := testOptions(t, client)

	spec := &types.BuildSpec{Title: "Demo"}
	spec.ApplyDefaults()
	proj := project.New(opts.Cfg.WorkspaceDir, spec.ProjectName)

	generateComponent(context.Background(), &opts, proj, spec, "About")
	assert.Contains(t, proj.Content("src/components/About.jsx"), "export default function About")

	generateComponent(context.Background(), &opts, proj, spec, "Navbar")
	navbar := proj.Content("src/components/Navbar.jsx")
	assert.Contains(t, navbar, "export default function Navbar")
	assert.Contains(t, navbar, "smoothScroll", "full fallback navbar, not a placeholder")
}

func TestGenerateAll_WritesAppShell(t *testing.T) {
	client := &stubClient{out: generatedHero}
	opts := testOptions(t, client)

	spec := &types.BuildSpec{Title: "Demo", Sections: []string{"Hero", "About"}}
	spec.ApplyDefaults()
	proj := project.New(opts.Cfg.WorkspaceDir, spec.ProjectName)

	generateAll(context.Background(), &opts, proj, spec, uuid.Nil)

	app := proj.Content("src/App.jsx")
	assert.Contains(t, app, "import Navbar from './components/Navbar'")
	assert.Contains(t, app, "<Hero />")
	assert.Contains(t, app, "<About />")
	assert.Equal(t, 3, client.calls, "navbar + two sections")
}

func TestGenerateAll_AppStrategyUsesSingleShell(t *testing.T) {
	client := &stubClient{out: strings.ReplaceAll(generatedHero, "Hero", "App")}
	opts := testOptions(t, client)

	spec := &types.BuildSpec{Title: "Game", Strategy: types.StrategyApp}
	spec.ApplyDefaults()
	proj := project.New(opts.Cfg.WorkspaceDir, spec.ProjectName)

	generateAll(context.Background(), &opts, proj, spec, uuid.Nil)

	assert.Contains(t, proj.Content("src/App.jsx"), "import AppComponent from './components/App'")
	assert.Equal(t, 1, client.calls)
}

func TestBuildGenerationPrompt_SectionAnchors(t *testing.T) {
	spec := &types.BuildSpec{Title: "Demo", Sections: []string{"Hero", "Pricing"}}
	spec.ApplyDefaults()

	navbar := buildGenerationPrompt(spec, "Navbar")
	assert.Contains(t, navbar, "hero, pricing")

	section := buildGenerationPrompt(spec, "Pricing")
	assert.Contains(t, section, `<section id="pricing">`)
	assert.Contains(t, section, "src/components/Pricing.jsx")
}

func TestAnchorIDs_SkipsNavbar(t *testing.T) {
	assert.Equal(t, []string{"hero", "faq"}, anchorIDs([]string{"Navbar", "Hero", "FAQ"}))
}

func TestApplyChange_PatchKeepsPromptSurgical(t *testing.T) {
	client := &stubClient{out: generatedHero}
	opts := testOptions(t, client)

	proj := project.New(opts.Cfg.WorkspaceDir, "demo")
	require.NoError(t, proj.WriteFile("src/components/Hero.jsx", generatedHero))

	applyChange(context.Background(), &opts, proj, "fix the headline typo", types.IntentPatch, "Hero")

	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "small surgical fix")
	assert.Contains(t, client.prompts[0], "Fresh from the model", "current content included")
}

func TestApplyChange_NewComponentInjectedIntoShell(t *testing.T) {
	client := &stubClient{out: strings.ReplaceAll(generatedHero, "Hero", "Newsletter")}
	opts := testOptions(t, client)

	spec := &types.BuildSpec{Title: "Demo", Sections: []string{"Hero"}}
	spec.ApplyDefaults()
	proj := project.New(opts.Cfg.WorkspaceDir, spec.ProjectName)
	require.NoError(t, proj.WriteFile("src/App.jsx", project.AppShell(spec.Title, spec.Sections)))

	applyChange(context.Background(), &opts, proj, "add a Newsletter signup", types.IntentFeature, "Newsletter")

	assert.Contains(t, proj.Content("src/components/Newsletter.jsx"), "export default function Newsletter")
	app := proj.Content("src/App.jsx")
	assert.Contains(t, app, "import Newsletter from './components/Newsletter'")
	assert.Contains(t, app, "<Newsletter />")
}

func TestApplyChange_FailureLeavesExistingFileAlone(t *testing.T) {
	client := &stubClient{err: errors.New("stream reset")}
	opts := testOptions(t, client)

	proj := project.New(opts.Cfg.WorkspaceDir, "demo")
	require.NoError(t, proj.WriteFile("src/components/Hero.jsx", generatedHero))

	applyChange(context.Background(), &opts, proj, "make it pop", types.IntentModify, "Hero")
	assert.Contains(t, proj.Content("src/components/Hero.jsx"), "Fresh from the model")
}
