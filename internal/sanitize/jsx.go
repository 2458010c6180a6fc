// Package sanitize - jsx.go fixes structural JSX mistakes: unclosed void
// tags, string event handlers, unwrapped template classNames, duplicate
// component declarations and self-referential renders.
package sanitize

import (
	"fmt"
	"regexp"
	"strings"
)

var voidTags = map[string]bool{
	"br": true, "hr": true, "img": true, "input": true, "meta": true,
	"link": true, "area": true, "base": true, "col": true, "embed": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

var voidTagOpenRe = regexp.MustCompile(`^<([a-zA-Z0-9]+)`)

// closeVoidElements rewrites <br> as <br /> for every HTML void element.
// The scanner is quote- and brace-aware so attribute expressions containing
// => or > never end the tag early.
func closeVoidElements(code, _ string) (string, []string) {
	var b strings.Builder
	b.Grow(len(code))
	closed := 0
	i, n := 0, len(code)
	for i < n {
		if code[i] == '<' && i+1 < n && isAlpha(code[i+1]) {
			m := voidTagOpenRe.FindStringSubmatch(code[i:])
			if m != nil && voidTags[strings.ToLower(m[1])] {
				start := i
				i += len(m[0])
				var quote byte
				braces := 0
				done := false
				for i < n {
					c := code[i]
					if quote != 0 {
						if c == quote {
							quote = 0
						}
					} else if c == '"' || c == '\'' {
						quote = c
					} else if c == '{' {
						braces++
					} else if c == '}' {
						if braces > 0 {
							braces--
						}
					} else if c == '>' && braces == 0 {
						if code[i-1] != '/' {
							b.WriteString(code[start:i])
							b.WriteString(" /")
							closed++
						} else {
							b.WriteString(code[start:i])
						}
						b.WriteByte('>')
						i++
						done = true
						break
					}
					i++
				}
				if !done {
					b.WriteString(code[start:])
				}
				continue
			}
		}
		b.WriteByte(code[i])
		i++
	}
	if closed == 0 {
		return code, nil
	}
	return b.String(), changef("closed %d void element(s)", closed)
}

func isAlpha(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

var stringHandlerRe = regexp.MustCompile(`onClick="(window\.[^"]+)"`)

// fixStringEventHandlers converts onClick="window.scrollTo(...)" into a
// proper arrow-function handler.
func fixStringEventHandlers(code, _ string) (string, []string) {
	if !stringHandlerRe.MatchString(code) {
		return code, nil
	}
	code = stringHandlerRe.ReplaceAllString(code, `onClick={() => $1}`)
	return code, changef("wrapped string onClick handlers in arrow functions")
}

var templateClassRe = regexp.MustCompile("className=(`[^`]+`)")

// wrapTemplateClassNames wraps bare template-literal className values in
// braces. className={`...`} does not rematch, so the pass is idempotent.
func wrapTemplateClassNames(code, _ string) (string, []string) {
	if !templateClassRe.MatchString(code) {
		return code, nil
	}
	code = templateClassRe.ReplaceAllString(code, `className={$1}`)
	return code, changef("braced template-literal className values")
}

// removeDuplicateDeclaration handles the model emitting both
// `const Hero = () => {...}` and `export default function Hero() {...}`,
// which throws "Identifier has already been declared". The const arrow
// block is removed by walking brace depth; the named function stays.
func removeDuplicateDeclaration(code, component string) (string, []string) {
	if component == "" {
		return code, nil
	}
	quoted := regexp.QuoteMeta(component)
	hasConst := regexp.MustCompile(`\bconst\s+` + quoted + `\s*=`).MatchString(code)
	hasFunc := regexp.MustCompile(`\bfunction\s+` + quoted + `\s*\(`).MatchString(code)
	if !hasConst || !hasFunc {
		return code, nil
	}
	arrowRe := regexp.MustCompile(`(?s)\bconst\s+` + quoted + `\s*=\s*(?:\([^)]*\)|)\s*=>\s*`)
	loc := arrowRe.FindStringIndex(code)
	if loc == nil {
		return code, nil
	}
	start, pos := loc[0], loc[1]
	var open, closeCh byte
	if pos < len(code) && code[pos] == '{' {
		open, closeCh = '{', '}'
	} else if pos < len(code) && code[pos] == '(' {
		open, closeCh = '(', ')'
	} else {
		return code, nil // can't parse, leave alone
	}
	depth := 1
	pos++
	for pos < len(code) && depth > 0 {
		switch code[pos] {
		case open:
			depth++
		case closeCh:
			depth--
		}
		pos++
	}
	for pos < len(code) && strings.IndexByte("; \n\r", code[pos]) >= 0 {
		pos++
	}
	code = code[:start] + code[pos:]
	return code, changef("removed duplicate const %s declaration", component)
}

// fixSelfReferentialRender replaces `return (<Hero />)` inside
// `export default function Hero` with a static fallback section; rendering
// a component from its own body recurses until React bails out.
func fixSelfReferentialRender(code, component string) (string, []string) {
	if component == "" {
		return code, nil
	}
	quoted := regexp.QuoteMeta(component)
	if !regexp.MustCompile(`\bexport default function\s+` + quoted + `\b`).MatchString(code) {
		return code, nil
	}
	selfRefRe := regexp.MustCompile(`return\s*\(\s*<` + quoted + `\s*/?>\s*\)`)
	match := selfRefRe.FindString(code)
	if match == "" {
		return code, nil
	}
	safe := fmt.Sprintf(
		`return (<section id="%s" className="py-20 px-6 text-center">`+
			`<h2 className="text-4xl font-bold text-white mb-4">%s</h2>`+
			`<p className="text-gray-400">Content loading...</p></section>)`,
		strings.ToLower(component), component)
	code = strings.ReplaceAll(code, match, safe)
	return code, changef("fixed self-referential render in %s", component)
}
