// Package extract recovers a usable React component from raw model output.
// Model responses arrive wrapped in markdown fences, split across helper
// functions, or missing the export entirely; extraction rebuilds a single
// well-formed component file or falls back to a safe placeholder. It never
// fails: the caller always gets writable JSX back.
package extract

import (
	"regexp"
	"strings"
)

// DefaultThinWrapperChars is the export-body size below which the component
// counts as a thin wrapper around its helpers.
const DefaultThinWrapperChars = 350

// Logf receives extraction diagnostics. Nil disables logging.
type Logf func(format string, args ...interface{})

// Options tunes component extraction.
type Options struct {
	// ThinWrapperChars overrides DefaultThinWrapperChars when > 0.
	ThinWrapperChars int
	Logf             Logf
}

func (o Options) thinWrapper() int {
	if o.ThinWrapperChars > 0 {
		return o.ThinWrapperChars
	}
	return DefaultThinWrapperChars
}

func (o Options) logf(format string, args ...interface{}) {
	if o.Logf != nil {
		o.Logf(format, args...)
	}
}

var fenceLangs = []string{"jsx", "tsx", "javascript", "js", "typescript", "ts", ""}

// Fenced strips markdown code fences from raw model output. When no fenced
// block exists, the text is returned as-is if it plausibly contains code,
// otherwise "".
func Fenced(text string) string {
	if text == "" {
		return ""
	}
	for _, lang := range fenceLangs {
		re := regexp.MustCompile(`(?is)` + "```" + lang + `\s*\n(.*?)` + "```")
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	t := strings.TrimSpace(text)
	for _, marker := range []string{"import ", "export default", "function ", "const ", "return ("} {
		if strings.Contains(t, marker) {
			return t
		}
	}
	return ""
}

// Placeholder returns a minimal animated section that always compiles and
// always renders on a non-transparent background.
func Placeholder(name string) string {
	return strings.NewReplacer("{name}", name, "{id}", strings.ToLower(name)).Replace(placeholderTemplate)
}

const placeholderTemplate = `import { motion } from 'framer-motion'
export default function {name}() {
  return (
    <section id='{id}' className='py-20 px-6 bg-gray-900'>
      <motion.div className='max-w-4xl mx-auto text-center'
        initial={{opacity:0,y:30}} whileInView={{opacity:1,y:0}}
        transition={{duration:0.6}} viewport={{once:true}}>
        <h2 className='text-5xl font-black mb-4' style={{
          background:'linear-gradient(135deg,#6366f1,#22d3ee)',
          WebkitBackgroundClip:'text', WebkitTextFillColor:'transparent'
        }}>{name}</h2>
        <p className='text-gray-400 text-lg'>Section content goes here.</p>
      </motion.div>
    </section>
  )
}
`

var (
	fenceMarkRe   = regexp.MustCompile("```[a-z]*")
	importLineRe  = regexp.MustCompile(`^import\s`)
	anyExportRe   = regexp.MustCompile(`(?m)^\s*export\s+default\s+function\s+\w+\s*\(`)
	funcHelperRe  = regexp.MustCompile(`^\s*function\s+([A-Z]\w*)\s*\(`)
	constHelperRe = regexp.MustCompile(`^\s*const\s+([A-Z]\w*)\s*=\s*(?:\([^)]*\)\s*=>|function)\s*\{`)
)

type helper struct {
	name  string
	block string
}

// Component extracts a valid React component named name from messy model
// output: collects import lines from anywhere, keeps helper components the
// export actually references, adopts the largest helper when the export is
// a thin wrapper, and falls back to Placeholder when nothing salvageable
// remains.
func Component(raw, name string, opts Options) string {
	code := strings.TrimSpace(strings.ReplaceAll(fenceMarkRe.ReplaceAllString(raw, ""), "```", ""))

	// Dedupe import lines from anywhere in the output.
	var imports []string
	seenImports := make(map[string]bool)
	for _, line := range strings.Split(code, "\n") {
		s := strings.TrimSpace(line)
		if importLineRe.MatchString(s) && !seenImports[s] {
			imports = append(imports, s)
			seenImports[s] = true
		}
	}

	exportRe := regexp.MustCompile(`(?m)^\s*export\s+default\s+function\s+` + regexp.QuoteMeta(name) + `\s*\(`)
	loc := exportRe.FindStringIndex(code)
	if loc == nil {
		loc = anyExportRe.FindStringIndex(code)
	}
	if loc == nil {
		opts.logf("extract: no export default function in %s, using safe fallback", name)
		return Placeholder(name)
	}
	exportStart := loc[0]

	helpers := findHelpers(code, name, exportStart)

	funcBody, _ := braceExtract(code, exportStart)
	if funcBody == "" {
		opts.logf("extract: no opening brace in %s, using safe fallback", name)
		return Placeholder(name)
	}
	funcBody = stripLeadingIndent(funcBody)

	// Keep only helpers the export body references.
	var used []helper
	for _, h := range helpers {
		if strings.Contains(funcBody, "<"+h.name) || strings.Contains(funcBody, "<"+h.name+"/") ||
			strings.Contains(funcBody, "{"+h.name) {
			used = append(used, h)
		}
	}
	if len(used) > 0 {
		names := make([]string, len(used))
		for i, h := range used {
			names[i] = h.name
		}
		opts.logf("extract: including helper(s) %s in %s", strings.Join(names, ", "), name)
	}

	// Thin-wrapper rescue: the model split the real component into a big
	// helper plus a tiny export that renders it. First re-check loosely,
	// then adopt the largest helper as the main component.
	if len(used) == 0 && len(funcBody) < opts.thinWrapper() && len(helpers) > 0 {
		for _, h := range helpers {
			if strings.Contains(funcBody, h.name) {
				used = append(used, h)
				opts.logf("extract: loose-match helper %s included in %s", h.name, name)
				break
			}
		}
	}
	if len(used) == 0 && len(funcBody) < opts.thinWrapper() && len(helpers) > 0 {
		largest := helpers[0]
		for _, h := range helpers[1:] {
			if len(h.block) > len(largest.block) {
				largest = h
			}
		}
		opts.logf("extract: thin wrapper (%dB), adopting %s as %s", len(funcBody), largest.name, name)
		funcBody = adoptHelper(largest, name)
	}

	if len(imports) == 0 {
		imports = []string{"import { motion } from 'framer-motion'"}
	}

	parts := []string{strings.Join(imports, "\n"), ""}
	for _, h := range used {
		parts = append(parts, h.block, "")
	}
	parts = append(parts, funcBody)
	result := strings.Join(parts, "\n") + "\n"

	if diff := strings.Count(result, "{") - strings.Count(result, "}"); diff > 4 || diff < -4 {
		opts.logf("extract: unbalanced braces in %s, using safe fallback", name)
		return Placeholder(name)
	}

	opts.logf("extract: ok %s (%d imports, %dB)", name, len(imports), len(result))
	return result
}

// findHelpers collects PascalCase function declarations other than the
// export itself. Lines beginning with "export" never start a helper.
func findHelpers(code, component string, exportStart int) []helper {
	var helpers []helper
	seen := make(map[string]bool)
	offset := 0
	for _, line := range strings.SplitAfter(code, "\n") {
		lineStart := offset
		offset += len(line)
		if strings.HasPrefix(line, "export") || lineStart == exportStart {
			continue
		}
		rest := code[lineStart:]
		m := funcHelperRe.FindStringSubmatch(rest)
		if m == nil {
			m = constHelperRe.FindStringSubmatch(rest)
		}
		if m == nil {
			continue
		}
		name := m[1]
		if name == component || seen[name] {
			continue
		}
		block, _ := braceExtract(code, lineStart)
		if len(block) > 30 {
			helpers = append(helpers, helper{name: name, block: block})
			seen[name] = true
		}
	}
	return helpers
}

// braceExtract returns the block from startPos through the brace that
// closes the first opening brace at or after it.
func braceExtract(src string, startPos int) (string, int) {
	bp := strings.Index(src[startPos:], "{")
	if bp < 0 {
		return "", -1
	}
	pos := startPos + bp
	depth := 0
	for pos < len(src) {
		switch src[pos] {
		case '{':
			depth++
		case '}':
			depth--
		}
		if depth == 0 {
			break
		}
		pos++
	}
	if pos >= len(src) {
		return strings.TrimSpace(src[startPos:]), len(src) - 1
	}
	return strings.TrimSpace(src[startPos : pos+1]), pos
}

// stripLeadingIndent removes the declaration line's indent from every line
// of the block.
func stripLeadingIndent(block string) string {
	lines := strings.Split(block, "\n")
	if len(lines) == 0 {
		return block
	}
	indent := len(lines[0]) - len(strings.TrimLeft(lines[0], " "))
	if indent == 0 {
		return block
	}
	prefix := strings.Repeat(" ", indent)
	for i, l := range lines {
		if strings.HasPrefix(l, prefix) {
			lines[i] = l[indent:]
		}
	}
	return strings.Join(lines, "\n")
}

// adoptHelper renames a helper block to the component name and promotes it
// to the default export.
func adoptHelper(h helper, component string) string {
	quoted := regexp.QuoteMeta(h.name)
	adopted := h.block
	if m := regexp.MustCompile(`\bfunction\s+` + quoted + `\b`).FindStringIndex(adopted); m != nil {
		adopted = adopted[:m[0]] + "function " + component + adopted[m[1]:]
	}
	if m := regexp.MustCompile(`\bconst\s+` + quoted + `\b`).FindStringIndex(adopted); m != nil {
		adopted = adopted[:m[0]] + "const " + component + adopted[m[1]:]
	}
	if strings.HasPrefix(strings.TrimLeft(adopted, " \t\n"), "function ") {
		adopted = "export default " + strings.TrimLeft(adopted, " \t\n")
	}
	return adopted
}

// QuickCheck reports why extracted code is unusable, or "" when it looks
// fine. It runs after extraction as a last gate before writing to disk.
func QuickCheck(code, name string) string {
	if len(strings.TrimSpace(code)) < 30 {
		return "empty"
	}
	if !strings.Contains(code, "export default") {
		return "missing export default"
	}
	selfRef := regexp.MustCompile(`return\s*\(\s*<` + regexp.QuoteMeta(name) + `\s*/?>`)
	if selfRef.MatchString(code) {
		return "self-referential render"
	}
	return ""
}

// Rescued reports whether re-extracting from the full raw output produced
// a materially larger component than the current file content. The repair
// loop uses this when a "X is not defined" error suggests the extractor
// dropped the real component body.
func Rescued(rescued string, currentSize int) bool {
	return len(rescued) > currentSize+200
}
