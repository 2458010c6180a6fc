// Package locate parses toolchain and browser error text to find exactly
// which component files are broken. A compile error that names a file
// outranks every other signal; stack traces are ignored entirely, because
// they list the import chain and would send the repair loop after innocent
// files like Navbar.
package locate

import (
	"regexp"
	"strings"
)

var (
	// "[plugin:vite:react-babel] /abs/path/src/components/Newsletter.jsx: ..."
	viteCompileRe = regexp.MustCompile(`(?i)\[plugin:vite[^\]]*\][^\n]*/src/components/(\w{1,50})\.(?:jsx?|tsx?)`)
	// "The above error occurred in the <Newsletter> component:"
	reactRuntimeRe = regexp.MustCompile(`(?i)The above error occurred in the <(\w{1,50})> component`)
	// Lines that explicitly name a component file.
	componentPathRe = regexp.MustCompile(`(?i)[/\\]src[/\\]components[/\\](\w{1,50})\.(?:jsx?|tsx?)`)
	// "Cannot find module" style references without a full path.
	looseComponentRe = regexp.MustCompile(`components?[/\\](\w{1,50})['".:]`)
	// Browser stack frames reference call sites, not broken files.
	stackFrameRe = regexp.MustCompile(`at \w+ \(http`)
)

// Owned reports whether a relative path belongs to the project: either
// recorded as generated or present on disk. It keeps the locator from
// chasing files invented by the model inside error messages.
type Owned func(relPath string) bool

// Files returns the component paths the error text implicates, most
// confident first. An explicit Vite compile error or React runtime error
// pins the result to that single file.
func Files(errorText string, owned Owned) []string {
	if m := viteCompileRe.FindStringSubmatch(errorText); m != nil {
		return filterOwned([]string{componentPath(m[1])}, owned)
	}
	if m := reactRuntimeRe.FindStringSubmatch(errorText); m != nil {
		return filterOwned([]string{componentPath(m[1])}, owned)
	}

	var found []string
	seen := make(map[string]bool)
	for _, line := range strings.Split(errorText, "\n") {
		if len(line) > 300 || stackFrameRe.MatchString(line) {
			continue
		}
		for _, m := range componentPathRe.FindAllStringSubmatch(line, -1) {
			if p := componentPath(m[1]); !seen[p] {
				found = append(found, p)
				seen[p] = true
			}
		}
	}
	if len(found) == 0 {
		for _, line := range strings.Split(errorText, "\n") {
			if stackFrameRe.MatchString(line) {
				continue
			}
			for _, m := range looseComponentRe.FindAllStringSubmatch(line, -1) {
				if p := componentPath(m[1]); !seen[p] {
					found = append(found, p)
					seen[p] = true
				}
			}
		}
	}
	return filterOwned(found, owned)
}

func componentPath(name string) string {
	return "src/components/" + name + ".jsx"
}

func filterOwned(paths []string, owned Owned) []string {
	result := make([]string, 0, len(paths))
	for _, p := range paths {
		if len(p) > 120 {
			continue
		}
		if owned == nil || owned(p) {
			result = append(result, p)
		}
	}
	return result
}
