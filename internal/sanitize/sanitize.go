// Package sanitize applies deterministic repair passes to generated JSX
// before it is trusted. The passes fix the recurring mistakes the model
// makes that crash Vite: hallucinated imports, unclosed void tags, regex
// literals inside JSX, duplicate declarations. No model calls, no I/O —
// every pass is a pure text transformation, and a pass that cannot safely
// parse a construct leaves it untouched.
package sanitize

import (
	"fmt"
	"path"
	"strings"
)

// Logf receives one summary line when passes changed the file. Nil disables
// logging.
type Logf func(format string, args ...interface{})

// pass is one ordered repair step. The order matters: later passes assume
// earlier ones already ran (e.g. the leaflet placeholder pass expects the
// banned-import pass to have removed the import line).
type pass func(code, component string) (string, []string)

func passes() []pass {
	return []pass{
		fixIconFamilyImports,
		replaceHallucinatedIcons,
		stripAnnotatedBadExport,
		removeBannedImports,
		replaceLeafletWidgets,
		replaceScrollLinks,
		remapLucideIcons,
		remapHeroicons,
		ensureAnimatePresenceImport,
		closeVoidElements,
		fixStringEventHandlers,
		wrapTemplateClassNames,
		removeDuplicateDeclaration,
		hoistRegexLiterals,
		hoistJSXDivisions,
		fixSelfReferentialRender,
	}
}

// Sanitize runs every repair pass in order over the file content. It is
// idempotent: running it on its own output changes nothing.
func Sanitize(code, filename string) string {
	return Run(code, filename, nil)
}

// Run is Sanitize with change logging.
func Run(code, filename string, logf Logf) string {
	component := componentName(filename)
	var changes []string
	for _, p := range passes() {
		var ch []string
		code, ch = p(code, component)
		changes = append(changes, ch...)
	}
	if len(changes) > 0 && logf != nil {
		logf("sanitize(%s): %s", path.Base(filename), strings.Join(changes, ", "))
	}
	return code
}

// componentName derives the component identity from a file path, e.g.
// "src/components/Hero.jsx" -> "Hero".
func componentName(filename string) string {
	base := path.Base(filename)
	base = strings.TrimSuffix(base, ".jsx")
	base = strings.TrimSuffix(base, ".tsx")
	return base
}

func changef(format string, args ...interface{}) []string {
	return []string{fmt.Sprintf(format, args...)}
}
