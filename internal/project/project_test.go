package project

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/spa-builder/internal/types"
)

func testSpec() *types.BuildSpec {
	spec := &types.BuildSpec{
		Title:       "Nova Fitness",
		Description: "A landing page for a fitness studio",
		ColorScheme: "dark with red accents",
		Sections:    []string{"Hero", "Features", "Contact"},
	}
	spec.ApplyDefaults()
	return spec
}

func TestScaffold(t *testing.T) {
	p := New(t.TempDir(), "nova-fitness")
	require.NoError(t, p.Scaffold(testSpec()))

	for _, rel := range []string{
		"package.json", "vite.config.js", "tailwind.config.js",
		"postcss.config.js", "index.html", "src/main.jsx", "src/index.css",
	} {
		assert.True(t, p.Owns(rel), "missing %s", rel)
	}

	assert.Contains(t, p.Content("package.json"), `"nova-fitness"`)
	assert.Contains(t, p.Content("index.html"), "<title>Nova Fitness</title>")
	// Red color scheme selects the red gradient pair.
	assert.Contains(t, p.Content("src/index.css"), "#ff4444")
	// Blank-page safety net.
	assert.Contains(t, p.Content("src/index.css"), "background-color: #0a0a0f")
}

func TestWriteComponent_ExtractsAndSanitizes(t *testing.T) {
	p := New(t.TempDir(), "site")
	raw := "```jsx\n" +
		"import { FiOval } from 'react-icons/all'\n" +
		"export default function Hero() {\n" +
		"  return (<div><FiOval /> welcome to the hero section</div>)\n" +
		"}\n```"

	written, err := p.WriteComponent("src/components/Hero.jsx", raw, 0)
	require.NoError(t, err)

	assert.NotContains(t, written, "```")
	assert.NotContains(t, written, "react-icons/all")
	assert.NotContains(t, written, "FiOval")
	assert.Contains(t, written, "FiCircle")

	onDisk, err := os.ReadFile(filepath.Join(p.Dir, "src", "components", "Hero.jsx"))
	require.NoError(t, err)
	assert.Equal(t, written, string(onDisk))
}

func TestWriteComponent_GarbageBecomesFallback(t *testing.T) {
	p := New(t.TempDir(), "site")
	written, err := p.WriteComponent("src/components/Pricing.jsx", "import x\nI refuse to answer.", 0)
	require.NoError(t, err)
	assert.Contains(t, written, "export default function Pricing()")
	assert.Contains(t, written, "Section content goes here.")
}

func TestWriteComponent_NonComponentWrittenVerbatim(t *testing.T) {
	p := New(t.TempDir(), "site")
	css := "@tailwind base; /* import nothing */\n"
	written, err := p.WriteComponent("src/index.css", css, 0)
	require.NoError(t, err)
	assert.Equal(t, css, written)
}

func TestWriteFallback(t *testing.T) {
	p := New(t.TempDir(), "site")
	written, err := p.WriteFallback("src/components/Gallery.jsx")
	require.NoError(t, err)
	assert.Contains(t, written, "export default function Gallery()")
	assert.True(t, p.Owns("src/components/Gallery.jsx"))
}

func TestOwns(t *testing.T) {
	p := New(t.TempDir(), "site")
	require.NoError(t, p.WriteFile("src/App.jsx", "export default function App() {}\n"))

	assert.True(t, p.Owns("src/App.jsx"))
	assert.False(t, p.Owns("src/components/Invented.jsx"))
	assert.False(t, p.Owns("../outside.txt"))
}

func TestComponents(t *testing.T) {
	p := New(t.TempDir(), "site")
	for _, name := range []string{"Hero", "Contact", "About"} {
		_, err := p.WriteFallback("src/components/" + name + ".jsx")
		require.NoError(t, err)
	}

	assert.Equal(t, []string{
		"src/components/About.jsx",
		"src/components/Contact.jsx",
		"src/components/Hero.jsx",
	}, p.Components())
	assert.Equal(t, []string{"About", "Contact", "Hero"}, p.ComponentNames())
}

func TestComponents_SeesFilesOnDiskOnly(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "site", "src", "components")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Hero.jsx"), []byte("x"), 0o644))

	p := New(root, "site")
	assert.Equal(t, []string{"src/components/Hero.jsx"}, p.Components())
}

func TestRawOutputCache(t *testing.T) {
	p := New(t.TempDir(), "site")
	assert.Empty(t, p.RawOutput("Hero"))

	p.CacheRawOutput("Hero", "raw model text")
	assert.Equal(t, "raw model text", p.RawOutput("Hero"))

	p.ClearRawOutput("Hero")
	assert.Empty(t, p.RawOutput("Hero"))
}

func TestCodebaseContext(t *testing.T) {
	p := New(t.TempDir(), "site")
	require.NoError(t, p.WriteFile("src/App.jsx", "app shell content"))
	require.NoError(t, p.WriteFile("src/components/Hero.jsx", strings.Repeat("h", 900)))
	require.NoError(t, p.WriteFile("vite.config.js", strings.Repeat("v", 500)))

	ctx := p.CodebaseContext()

	// App shell leads regardless of sort order.
	assert.Less(t, strings.Index(ctx, "── src/App.jsx ──"), strings.Index(ctx, "── src/components/Hero.jsx ──"))
	// Components truncate at 800, other files at 400.
	assert.Contains(t, ctx, strings.Repeat("h", 800)+" ...[truncated]")
	assert.Contains(t, ctx, strings.Repeat("v", 400)+" ...[truncated]")
	assert.NotContains(t, ctx, strings.Repeat("v", 401))
}

func TestInjectIntoAppShell(t *testing.T) {
	p := New(t.TempDir(), "site")
	require.NoError(t, p.WriteFile("src/App.jsx", AppShell("Nova", []string{"Hero"})))

	require.NoError(t, p.InjectIntoAppShell("Testimonials"))
	app := p.Content("src/App.jsx")

	assert.Contains(t, app, "import Testimonials from './components/Testimonials'")
	assert.Contains(t, app, "<Testimonials />")
	// Render lands before the shell's final closing div.
	assert.Less(t, strings.Index(app, "<Testimonials />"), strings.LastIndex(app, "</div>"))

	// Second injection is a no-op.
	require.NoError(t, p.InjectIntoAppShell("Testimonials"))
	assert.Equal(t, 1, strings.Count(p.Content("src/App.jsx"), "import Testimonials"))
}

func TestAppShell(t *testing.T) {
	shell := AppShell("Nova Fitness", []string{"Navbar", "Hero", "Contact"})

	assert.Contains(t, shell, "import Navbar from './components/Navbar'")
	assert.Contains(t, shell, "import Hero from './components/Hero'")
	// Navbar renders once at the top, not as a section wrapper.
	assert.Equal(t, 1, strings.Count(shell, "<Navbar />"))
	assert.Contains(t, shell, "id='hero'")
	assert.Contains(t, shell, "id='contact'")
	assert.Contains(t, shell, "© 2024 Nova Fitness")
}

func TestSingleAppShell(t *testing.T) {
	shell := SingleAppShell()
	assert.Contains(t, shell, "import AppComponent from './components/App'")
	assert.Contains(t, shell, "<AppComponent />")
}

func TestFallbackNavbar(t *testing.T) {
	nav := FallbackNavbar("Nova", []string{"Navbar", "Hero", "Pricing"})

	assert.Contains(t, nav, "export default function Navbar()")
	assert.Contains(t, nav, `href="#hero"`)
	assert.Contains(t, nav, `href="#pricing"`)
	assert.NotContains(t, nav, `href="#navbar"`)
	assert.Contains(t, nav, "smoothScroll")
}

func TestAccentsFor(t *testing.T) {
	tests := []struct {
		scheme string
		accent string
	}{
		{"red and black like mario", "#ff4444"},
		{"forest green", "#10b981"},
		{"golden yellow", "#fbbf24"},
		{"royal purple", "#a855f7"},
		{"anything else", "#6366f1"},
	}
	for _, tt := range tests {
		acc, _ := accentsFor(tt.scheme)
		assert.Equal(t, tt.accent, acc, tt.scheme)
	}
}

func TestOpen_NotFound(t *testing.T) {
	_, err := Open(t.TempDir(), "missing")
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "missing", notFound.Name)
}

func TestListProjects(t *testing.T) {
	root := t.TempDir()

	older := New(root, "older")
	require.NoError(t, older.Scaffold(testSpec()))
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(older.Dir, past, past))

	newer := New(root, "newer")
	require.NoError(t, newer.Scaffold(testSpec()))

	infos, err := ListProjects(root)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "newer", infos[0].Name)
	assert.Equal(t, "older", infos[1].Name)
	// Title comes from package.json.
	assert.Equal(t, "nova-fitness", infos[0].Title)
	assert.Greater(t, infos[0].FileCount, 0)
}

func TestListProjects_MissingRoot(t *testing.T) {
	infos, err := ListProjects(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, infos)
}

func TestFiles_ImportantOrderFirst(t *testing.T) {
	p := New(t.TempDir(), "site")
	require.NoError(t, p.Scaffold(testSpec()))
	require.NoError(t, p.WriteFile("src/App.jsx", AppShell("Nova", []string{"Hero"})))
	_, err := p.WriteFallback("src/components/Hero.jsx")
	require.NoError(t, err)

	files := p.Files()
	require.NotEmpty(t, files)
	assert.Equal(t, "src/App.jsx", files[0].Path)
	assert.Equal(t, "src/components/Hero.jsx", files[len(files)-1].Path)
}
