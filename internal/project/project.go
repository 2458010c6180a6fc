// Package project manages a generated site on disk: the file table, the
// write-through pipeline that extracts and sanitizes component files, the
// raw-output cache used for repair rescues, and the codebase context handed
// to the model when fixing.
package project

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/jonathan/spa-builder/internal/extract"
	"github.com/jonathan/spa-builder/internal/sanitize"
	"github.com/jonathan/spa-builder/internal/types"
)

// Logf receives per-file write and sanitize diagnostics. Nil disables it.
type Logf func(format string, args ...interface{})

// Project is one generated site rooted at Dir. Safe for concurrent use:
// the build pipeline writes components from parallel goroutines.
type Project struct {
	Name string
	Dir  string
	Logf Logf

	mu    sync.RWMutex
	files map[string]*types.GeneratedFile
	raw   map[string]string
}

// New creates a handle for the project name under root. Nothing is written
// until Scaffold or a Write call.
func New(root, name string) *Project {
	return &Project{
		Name:  name,
		Dir:   filepath.Join(root, name),
		files: make(map[string]*types.GeneratedFile),
		raw:   make(map[string]string),
	}
}

// Open returns a handle for an existing project directory.
func Open(root, name string) (*Project, error) {
	p := New(root, name)
	info, err := os.Stat(p.Dir)
	if err != nil {
		return nil, &NotFoundError{Name: name, Cause: err}
	}
	if !info.IsDir() {
		return nil, &NotFoundError{Name: name}
	}
	return p, nil
}

// NotFoundError indicates the named project does not exist under the
// workspace root.
type NotFoundError struct {
	Name  string
	Cause error
}

func (e *NotFoundError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("project %q not found: %v", e.Name, e.Cause)
	}
	return fmt.Sprintf("project %q not found", e.Name)
}

func (e *NotFoundError) Unwrap() error {
	return e.Cause
}

func (p *Project) logf(format string, args ...interface{}) {
	if p.Logf != nil {
		p.Logf(format, args...)
	}
}

// WriteFile writes content verbatim and records it in the file table.
func (p *Project) WriteFile(rel, content string) error {
	return p.write(rel, content, types.OriginHandAuthored)
}

func (p *Project) write(rel, content string, origin string) error {
	abs := filepath.Join(p.Dir, rel)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", rel, err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", rel, err)
	}
	p.mu.Lock()
	p.files[rel] = &types.GeneratedFile{Path: rel, Content: content, Origin: origin, Size: len(content)}
	p.mu.Unlock()
	p.logf("wrote %s (%s)", rel, sizeLabel(len(content)))
	return nil
}

func sizeLabel(n int) string {
	if n >= 1024 {
		return fmt.Sprintf("%.1fKB", float64(n)/1024)
	}
	return fmt.Sprintf("%dB", n)
}

// isComponentFile reports whether the path goes through extraction and
// sanitization on write.
func isComponentFile(rel, content string) bool {
	if !strings.HasPrefix(rel, "src/components/") {
		return false
	}
	if !strings.HasSuffix(rel, ".jsx") && !strings.HasSuffix(rel, ".tsx") {
		return false
	}
	return strings.Contains(content, "import")
}

// WriteComponent runs raw model output through extraction and sanitization
// before writing. Non-component paths are written verbatim. The final
// content written to disk is returned so callers can track sizes.
func (p *Project) WriteComponent(rel, content string, thinWrapperChars int) (string, error) {
	origin := types.OriginGenerated
	if isComponentFile(rel, content) {
		name := componentName(rel)
		content = extract.Component(content, name, extract.Options{
			ThinWrapperChars: thinWrapperChars,
			Logf:             extract.Logf(p.Logf),
		})
		content = sanitize.Run(content, rel, sanitize.Logf(p.Logf))
		if extractedPlaceholder(content, name) {
			origin = types.OriginFallback
		}
	}
	if err := p.write(rel, content, origin); err != nil {
		return "", err
	}
	return content, nil
}

// WriteFallback writes the safe placeholder for a component.
func (p *Project) WriteFallback(rel string) (string, error) {
	content := extract.Placeholder(componentName(rel))
	if err := p.write(rel, content, types.OriginFallback); err != nil {
		return "", err
	}
	return content, nil
}

func extractedPlaceholder(content, name string) bool {
	return strings.Contains(content, "Section content goes here.") &&
		strings.Contains(content, "export default function "+name+"()")
}

func componentName(rel string) string {
	base := filepath.Base(rel)
	base = strings.TrimSuffix(base, ".jsx")
	return strings.TrimSuffix(base, ".tsx")
}

// Content returns the current content of a file, preferring the in-memory
// table and falling back to disk.
func (p *Project) Content(rel string) string {
	p.mu.RLock()
	f, ok := p.files[rel]
	p.mu.RUnlock()
	if ok {
		return f.Content
	}
	data, err := os.ReadFile(filepath.Join(p.Dir, rel))
	if err != nil {
		return ""
	}
	return string(data)
}

// Owns reports whether the relative path was generated by this project or
// exists inside its directory. Paths escaping the project root are never
// owned.
func (p *Project) Owns(rel string) bool {
	if strings.Contains(rel, "..") {
		return false
	}
	p.mu.RLock()
	_, ok := p.files[rel]
	p.mu.RUnlock()
	if ok {
		return true
	}
	_, err := os.Stat(filepath.Join(p.Dir, rel))
	return err == nil
}

// Components lists every component file currently in the project, sorted.
func (p *Project) Components() []string {
	seen := make(map[string]bool)
	p.mu.RLock()
	for rel := range p.files {
		if strings.HasPrefix(rel, "src/components/") && strings.HasSuffix(rel, ".jsx") {
			seen[rel] = true
		}
	}
	p.mu.RUnlock()
	matches, _ := filepath.Glob(filepath.Join(p.Dir, "src", "components", "*.jsx"))
	for _, m := range matches {
		seen[filepath.ToSlash(filepath.Join("src", "components", filepath.Base(m)))] = true
	}
	out := make([]string, 0, len(seen))
	for rel := range seen {
		out = append(out, rel)
	}
	sort.Strings(out)
	return out
}

// ComponentNames returns the bare names of every component, sorted.
func (p *Project) ComponentNames() []string {
	comps := p.Components()
	names := make([]string, len(comps))
	for i, c := range comps {
		names[i] = componentName(c)
	}
	return names
}

// CacheRawOutput stores the raw model output for a component so the repair
// loop can re-extract from it later.
func (p *Project) CacheRawOutput(name, raw string) {
	p.mu.Lock()
	p.raw[name] = raw
	p.mu.Unlock()
}

// RawOutput returns the cached raw model output for a component, or "".
func (p *Project) RawOutput(name string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.raw[name]
}

// ClearRawOutput drops the cached raw output once a component stabilizes
// or gets replaced by a fallback.
func (p *Project) ClearRawOutput(name string) {
	p.mu.Lock()
	delete(p.raw, name)
	p.mu.Unlock()
}

// contextPriority files lead the codebase context so the model always sees
// the app shell and global styles first.
var contextPriority = []string{"src/App.jsx", "src/main.jsx", "src/index.css"}

// CodebaseContext summarizes every generated file for repair prompts.
// Component files get 800 characters, everything else 400.
func (p *Project) CodebaseContext() string {
	p.mu.RLock()
	names := make([]string, 0, len(p.files))
	for rel := range p.files {
		names = append(names, rel)
	}
	p.mu.RUnlock()
	sort.Strings(names)

	ordered := make([]string, 0, len(names))
	ordered = append(ordered, contextPriority...)
	for _, n := range names {
		if n != contextPriority[0] && n != contextPriority[1] && n != contextPriority[2] {
			ordered = append(ordered, n)
		}
	}

	var parts []string
	for _, rel := range ordered {
		content := p.Content(rel)
		if content == "" {
			continue
		}
		limit := 400
		if strings.HasPrefix(rel, "src/components/") {
			limit = 800
		}
		snippet := content
		if len(content) > limit {
			snippet = content[:limit] + " ...[truncated]"
		}
		parts = append(parts, fmt.Sprintf("── %s ──\n%s", rel, snippet))
	}
	return strings.Join(parts, "\n\n")
}

// InjectIntoAppShell wires a newly created component into src/App.jsx:
// import after the last import line, render before the last closing div.
func (p *Project) InjectIntoAppShell(name string) error {
	app := p.Content("src/App.jsx")
	if app == "" {
		return fmt.Errorf("src/App.jsx not found in project %s", p.Name)
	}
	if strings.Contains(app, fmt.Sprintf("<%s ", name)) || strings.Contains(app, fmt.Sprintf("<%s/", name)) {
		return nil
	}

	lines := strings.Split(app, "\n")
	lastImport := -1
	for i, l := range lines {
		if strings.HasPrefix(strings.TrimSpace(l), "import ") {
			lastImport = i
		}
	}
	if lastImport < 0 {
		return fmt.Errorf("no import block in src/App.jsx")
	}
	importLine := fmt.Sprintf("import %s from './components/%s'", name, name)
	lines = append(lines[:lastImport+1], append([]string{importLine}, lines[lastImport+1:]...)...)
	app = strings.Join(lines, "\n")

	closeIdx := strings.LastIndex(app, "</div>")
	if closeIdx < 0 {
		return fmt.Errorf("no closing div in src/App.jsx")
	}
	render := fmt.Sprintf("      <%s />\n    ", name)
	app = app[:closeIdx] + render + app[closeIdx:]
	return p.WriteFile("src/App.jsx", app)
}
