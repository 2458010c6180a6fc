// Package sanitize - hoist.go lifts constructs out of JSX that the bundler
// cannot parse in place. Babel throws "Unterminated regular expression" on a
// /regex/ literal inside a JSX curly expression, and misreads prop={a/b} as
// the start of a regex. Both get hoisted to consts above the return.
package sanitize

import (
	"fmt"
	"regexp"
	"strings"
)

// regexMetachars: a real JS regex literal must contain at least one of
// these between the slashes. Without this rule, </li> <li>text</li> would
// match as a regex and corrupt closing tags.
const regexMetachars = `\^[].*+?$|{}`

var (
	importLineRe    = regexp.MustCompile(`^import\s`)
	hoistedRegexRe  = regexp.MustCompile(`^\s*const _re\d+ = /`)
	returnAnchorRe  = regexp.MustCompile(`\n\s*return\s*[\(\n]`)
	divisionAttrRe  = regexp.MustCompile(`(=\{)\s*(\d[\d.]*\s*/\s*\d[\d.]*|\w+\s*/\s*\d[\d.]*)\s*(\})`)
	regexFlagsBytes = "gimsuy"
)

// splitImportBlock separates the leading import block from the rest of the
// file so hoisting never touches import paths. Comments and blank lines may
// sit around the imports; the block ends at the last import line before the
// first line of real code, so the component body is never mis-protected.
func splitImportBlock(code string) (string, string) {
	lines := strings.SplitAfter(code, "\n")
	end := 0
scan:
	for i, l := range lines {
		trimmed := strings.TrimSpace(l)
		switch {
		case importLineRe.MatchString(trimmed):
			end = i + 1
		case trimmed == "" || strings.HasPrefix(trimmed, "//"):
		default:
			break scan
		}
	}
	if end == 0 {
		return "", code
	}
	return strings.Join(lines[:end], ""), strings.Join(lines[end:], "")
}

// injectBeforeReturn inserts const declarations just above the first return
// statement. Reports false when no return anchor exists.
func injectBeforeReturn(code string, decls []string) (string, bool) {
	loc := returnAnchorRe.FindStringIndex(code)
	if loc == nil {
		return code, false
	}
	inject := "\n" + strings.Join(decls, "\n") + "\n"
	return code[:loc[0]] + inject + code[loc[0]:], true
}

// hoistRegexLiterals replaces inline /regex/ literals with _reN identifiers
// and declares them as consts above the return. Lines that already hold a
// hoisted const are skipped, keeping the pass idempotent.
func hoistRegexLiterals(code, _ string) (string, []string) {
	impBlock, rest := splitImportBlock(code)
	var decls []string
	lines := strings.SplitAfter(rest, "\n")
	for idx, line := range lines {
		if hoistedRegexRe.MatchString(line) {
			continue
		}
		lines[idx] = hoistRegexLine(line, &decls)
	}
	if len(decls) == 0 {
		return code, nil
	}
	out, ok := injectBeforeReturn(strings.Join(lines, ""), decls)
	if !ok {
		return code, nil
	}
	return impBlock + out, changef("hoisted %d regex(es) before return", len(decls))
}

func hoistRegexLine(line string, decls *[]string) string {
	var b strings.Builder
	b.Grow(len(line))
	i := 0
	for i < len(line) {
		if line[i] == '/' && regexCanStartAt(line, i) {
			if lit, end, ok := scanRegexLiteral(line, i); ok {
				name := fmt.Sprintf("_re%d", len(*decls))
				*decls = append(*decls, fmt.Sprintf("  const %s = %s;", name, lit))
				b.WriteString(name)
				i = end
				continue
			}
		}
		b.WriteByte(line[i])
		i++
	}
	return b.String()
}

// regexCanStartAt rejects positions preceded by <, / or a word character:
// JSX closing tags, comments, URLs and division all fail here.
func regexCanStartAt(line string, i int) bool {
	if i == 0 {
		return true
	}
	p := line[i-1]
	if p == '<' || p == '/' {
		return false
	}
	return !(p == '_' || p >= 'a' && p <= 'z' || p >= 'A' && p <= 'Z' || p >= '0' && p <= '9')
}

// scanRegexLiteral reads /body/flags starting at the opening slash. The
// body may not contain /, < or a newline except behind a backslash, and
// must contain a regex metacharacter. Bodies opening with whitespace are
// rejected: `width={100 / 3} />` would otherwise read as a regex spanning
// from the division to the self-closing slash.
func scanRegexLiteral(line string, start int) (string, int, bool) {
	j := start + 1
	if j < len(line) && (line[j] == ' ' || line[j] == '\t' || line[j] == '*') {
		return "", 0, false
	}
	for j < len(line) {
		c := line[j]
		if c == '\\' && j+1 < len(line) {
			j += 2
			continue
		}
		if c == '/' {
			break
		}
		if c == '<' {
			return "", 0, false
		}
		j++
	}
	if j >= len(line) || line[j] != '/' {
		return "", 0, false
	}
	body := line[start+1 : j]
	if body == "" || !strings.ContainsAny(body, regexMetachars) {
		return "", 0, false
	}
	j++
	for j < len(line) && strings.IndexByte(regexFlagsBytes, line[j]) >= 0 {
		j++
	}
	return line[start:j], j, true
}

// hoistJSXDivisions rewrites prop={a/b} attribute expressions as hoisted
// _dvN consts. Intentionally narrow: only bare divisions directly inside an
// attribute brace, never math inside function calls.
func hoistJSXDivisions(code, _ string) (string, []string) {
	impBlock, rest := splitImportBlock(code)
	var decls, renames []string
	out := divisionAttrRe.ReplaceAllStringFunc(rest, func(m string) string {
		sub := divisionAttrRe.FindStringSubmatch(m)
		expr := strings.TrimSpace(sub[2])
		name := fmt.Sprintf("_dv%d", len(decls))
		decls = append(decls, fmt.Sprintf("  const %s = %s;", name, expr))
		renames = append(renames, fmt.Sprintf("%s → %s", expr, name))
		return sub[1] + name + sub[3]
	})
	if len(decls) == 0 {
		return code, nil
	}
	out, ok := injectBeforeReturn(out, decls)
	if !ok {
		return code, nil
	}
	if len(renames) > 3 {
		renames = renames[:3]
	}
	return impBlock + out, changef("hoisted %d JSX division(s): %s", len(decls), strings.Join(renames, ", "))
}
