package repair

import (
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/jonathan/spa-builder/internal/prompts"
)

const promptFile = "repair.json"

// Prompt section budgets. The fix prompt carries five competing context
// sources; these caps keep it inside the model's effective window while
// preserving the parts that actually steer the fix.
const (
	maxErrorChars    = 400
	maxCodebaseChars = 1800
	maxContentChars  = 2500
	maxRawChars      = 2000
	maxConsoleLine   = 200
	errorWindowSpan  = 5
)

func fixSystem(name string) (string, error) {
	tpl, err := prompts.Get(promptFile, "fix_system")
	if err != nil {
		return "", err
	}
	return prompts.Format(tpl, map[string]string{"Name": name}), nil
}

// buildFixPrompt assembles the full repair prompt for one component:
// console errors first (they are the ground truth), then targeted fix
// instructions, the filtered error text, codebase context, the numbered
// broken file, the error line window and optionally the raw model output
// the file was extracted from.
func (o *Orchestrator) buildFixPrompt(name, fpath, current, allErrors, codebase string) string {
	fileErrors := filterErrorsForFile(allErrors, name, fpath)

	consoleSection := consoleSection(allErrors)
	fixesSection := specificFixes(allErrors, name)
	window := errorWindow(current, allErrors, name)

	rawSection := ""
	if strings.Contains(allErrors, "is not defined") {
		if raw := o.proj.RawOutput(name); raw != "" {
			rawSection = prompts.MustFormat(promptFile, "raw_section",
				map[string]string{"Raw": clip(raw, maxRawChars)})
		}
	}

	return prompts.MustFormat(promptFile, "fix_component", map[string]string{
		"ConsoleSection": consoleSection,
		"FixesSection":   fixesSection,
		"Errors":         clip(fileErrors, maxErrorChars),
		"Codebase":       clip(codebase, maxCodebaseChars),
		"Name":           name,
		"Content":        numberLines(clip(current, maxContentChars)),
		"ErrorWindow":    window,
		"RawSection":     rawSection,
	})
}

// filterErrorsForFile keeps only the error lines that mention the file.
// When nothing mentions it (the error was global), the head of the full
// error text is used instead.
func filterErrorsForFile(allErrors, name, fpath string) string {
	base := path.Base(fpath)
	var kept []string
	for _, line := range strings.Split(allErrors, "\n") {
		if strings.Contains(line, name) || strings.Contains(line, fpath) || strings.Contains(line, base) {
			kept = append(kept, line)
		}
	}
	if len(kept) == 0 {
		return clip(allErrors, 600)
	}
	return strings.Join(kept, "\n")
}

// consoleSection pulls the browser-observed errors out of the combined
// error text. They get their own prompt section because they name the
// actual runtime failure, unlike vite's often-misleading compile hints.
func consoleSection(allErrors string) string {
	var lines []string
	for _, line := range strings.Split(allErrors, "\n") {
		if strings.Contains(line, "Console error") ||
			strings.Contains(line, "PageError") ||
			strings.Contains(line, "does not provide") {
			lines = append(lines, clip(line, maxConsoleLine))
			if len(lines) == 5 {
				break
			}
		}
	}
	if len(lines) == 0 {
		return ""
	}
	return prompts.MustFormat(promptFile, "console_section",
		map[string]string{"ConsoleErrors": strings.Join(lines, "\n")})
}

var (
	badExportRe    = regexp.MustCompile(`does not provide an export named '(\w+)'`)
	brokenImportRe = regexp.MustCompile(`(?m)^.*(?:Cannot find module|Failed to resolve)[^\n]*`)
)

// specificFixes turns recognizable error shapes into imperative one-line
// instructions. Models fix these reliably when told exactly what to do
// and reliably not when left to interpret the raw error.
func specificFixes(allErrors, name string) string {
	var fixes []string
	seen := make(map[string]bool)

	for _, m := range badExportRe.FindAllStringSubmatch(allErrors, -1) {
		if seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		fixes = append(fixes, prompts.MustFormat(promptFile, "fix_bad_export",
			map[string]string{"Icon": m[1]}))
	}

	if m := brokenImportRe.FindString(allErrors); m != "" {
		fixes = append(fixes, prompts.MustFormat(promptFile, "fix_broken_import",
			map[string]string{"Error": clip(strings.TrimSpace(m), 100)}))
	}

	if m := notDefinedRe.FindStringSubmatch(allErrors); m != nil {
		fixes = append(fixes, prompts.MustFormat(promptFile, "fix_not_defined",
			map[string]string{"Symbol": m[1], "Name": name}))
	}

	if strings.Contains(allErrors, "completely blank") || strings.Contains(allErrors, "nothing rendered") {
		fixes = append(fixes, prompts.MustGet(promptFile, "fix_blank_page"))
	}

	if len(fixes) == 0 {
		return ""
	}
	return prompts.MustFormat(promptFile, "fixes_section",
		map[string]string{"Fixes": strings.Join(fixes, "\n")})
}

// errorWindow finds a "Name.jsx:LINE:COL" reference in the error text and
// renders the surrounding lines of the file with the broken line marked.
func errorWindow(content, allErrors, name string) string {
	re := regexp.MustCompile(regexp.QuoteMeta(name) + `\.jsx(?:[^)]*\(|:)(\d+):(\d+)`)
	m := re.FindStringSubmatch(allErrors)
	if m == nil {
		return ""
	}
	lineNo, err := strconv.Atoi(m[1])
	if err != nil {
		return ""
	}

	lines := strings.Split(content, "\n")
	if lineNo < 1 || lineNo > len(lines) {
		return ""
	}
	start := lineNo - 1 - errorWindowSpan
	if start < 0 {
		start = 0
	}
	end := lineNo + errorWindowSpan
	if end > len(lines) {
		end = len(lines)
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		marker := "  "
		if i == lineNo-1 {
			marker = "→ "
		}
		fmt.Fprintf(&b, "%s%3d | %s\n", marker, i+1, lines[i])
	}

	return prompts.MustFormat(promptFile, "error_window", map[string]string{
		"Line":   m[1],
		"Window": strings.TrimSuffix(b.String(), "\n"),
	})
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
