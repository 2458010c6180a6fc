// Package sanitize - icons.go repairs icon imports: the non-existent
// react-icons/all module, invented icon names, and icons the toolchain has
// reported as missing exports.
package sanitize

import (
	"fmt"
	"regexp"
	"strings"
)

// iconAllImportRe matches import { ... } from 'react-icons/all', which does
// not exist in react-icons v5.
var iconAllImportRe = regexp.MustCompile(`import\s*\{([^}]+)\}\s*from\s*['"]react-icons/all['"]`)

var iconPrefixRe = regexp.MustCompile(`^[A-Z][a-z]+`)

// iconFamilies maps an icon-name prefix to its react-icons subpackage.
// Unknown prefixes fall back to feather icons (fi).
var iconFamilies = map[string]string{
	"Fa": "fa", "Hi": "hi", "Md": "md", "Io": "io",
	"Bs": "bs", "Ri": "ri", "Si": "si", "Ti": "ti",
	"Ai": "ai", "Bi": "bi", "Ci": "ci", "Di": "di",
	"Fc": "fc", "Gi": "gi", "Go": "go", "Gr": "gr",
	"Im": "im", "Lu": "lu", "Pi": "pi", "Rx": "rx",
	"Sl": "sl", "Tb": "tb", "Tfi": "tfi", "Vsc": "vsc",
	"Wi": "wi", "Cg": "cg", "Fi": "fi", "Fl": "fa",
}

func familyFor(icon string) string {
	if fam, ok := iconFamilies[iconPrefixRe.FindString(icon)]; ok {
		return fam
	}
	return "fi"
}

// fixIconFamilyImports rewrites react-icons/all imports into one import per
// real icon family, grouping symbols by their name prefix.
func fixIconFamilyImports(code, _ string) (string, []string) {
	count := 0
	out := iconAllImportRe.ReplaceAllStringFunc(code, func(m string) string {
		sub := iconAllImportRe.FindStringSubmatch(m)
		var order []string
		groups := make(map[string][]string)
		for _, raw := range strings.Split(sub[1], ",") {
			icon := strings.TrimSpace(raw)
			if icon == "" {
				continue
			}
			fam := familyFor(icon)
			if _, seen := groups[fam]; !seen {
				order = append(order, fam)
			}
			groups[fam] = append(groups[fam], icon)
		}
		lines := make([]string, 0, len(order))
		for _, fam := range order {
			lines = append(lines, fmt.Sprintf("import { %s } from 'react-icons/%s'", strings.Join(groups[fam], ", "), fam))
		}
		count++
		return strings.Join(lines, "\n")
	})
	if count == 0 {
		return code, nil
	}
	return out, changef("fixed %d react-icons/all import(s)", count)
}

// iconReplacement is an invented icon name and the real icon it becomes.
type iconReplacement struct {
	bad, good string
}

// iconReplacements maps icon names the model invents to icons that exist.
// Whole-token replacement only.
var iconReplacements = []iconReplacement{
	{"FiOval", "FiCircle"}, {"FiO", "FiCircle"}, {"FiRing", "FiCircle"},
	{"FiEllipse", "FiCircle"}, {"FiDisc2", "FiDisc"}, {"FiCircleFill", "FiCircle"},
	{"FiCross", "FiX"}, {"FiXMark", "FiX"}, {"FiTimes", "FiX"},
	{"FiPlus2", "FiPlus"}, {"FiStar2", "FiStar"}, {"FiHome2", "FiHome"},
	{"FiMenu2", "FiMenu"}, {"FiArrow", "FiArrowRight"}, {"FiButton", "FiSquare"},
	{"FiCode2", "FiCode"}, {"FiPhone2", "FiPhone"}, {"FiMail2", "FiMail"},
	{"FiGamepad", "FiGrid"}, {"FiBoard", "FiGrid"}, {"FiGrid2", "FiGrid"},
	{"FiRefresh", "FiRefreshCw"}, {"FiReset", "FiRefreshCw"},
	{"FiMultiply", "FiX"}, {"FiDivide", "FiSlash"},
	{"FiAdd", "FiPlus"}, {"FiSubtract", "FiMinus"}, {"FiCalculator", "FiHash"},
	{"FiDelete", "FiTrash2"}, {"FiClose", "FiX"}, {"FiCancel", "FiX"},
	{"FiDots", "FiMoreHorizontal"}, {"FiEllipsis", "FiMoreHorizontal"},
	{"FaOval", "FaCircle"}, {"FaCross", "FaTimes"}, {"FaXMark", "FaTimes"},
	{"FaGamepad2", "FaGamepad"}, {"FaBoard", "FaTh"},
	{"HiOval", "HiOutlineCircle"}, {"HiXMark", "HiX"},
}

var knownBadIcons = func() map[string]bool {
	m := make(map[string]bool, len(iconReplacements))
	for _, r := range iconReplacements {
		m[r.bad] = true
	}
	return m
}()

// replaceHallucinatedIcons swaps invented icon identifiers for real ones,
// everywhere they appear (import and usage).
func replaceHallucinatedIcons(code, _ string) (string, []string) {
	var changes []string
	for _, r := range iconReplacements {
		if !strings.Contains(code, r.bad) {
			continue
		}
		re := regexp.MustCompile(`\b` + r.bad + `\b`)
		if re.MatchString(code) {
			code = re.ReplaceAllString(code, r.good)
			changes = append(changes, fmt.Sprintf("icon %s→%s", r.bad, r.good))
		}
	}
	return code, changes
}

var (
	consoleErrRe     = regexp.MustCompile(`//\s*CONSOLE_ERROR:.*?does not provide an export named '(\w+)'`)
	consoleErrLineRe = regexp.MustCompile(`//\s*CONSOLE_ERROR:[^\n]*\n?`)
	trailingCommaRe  = regexp.MustCompile(`,\s*}`)
)

// stripAnnotatedBadExport handles the CONSOLE_ERROR annotation the repair
// loop can prepend when the browser reports exactly which export is
// missing. The named symbol is stripped from the import list (safer than
// guessing a replacement) and the annotation removed.
func stripAnnotatedBadExport(code, _ string) (string, []string) {
	m := consoleErrRe.FindStringSubmatch(code)
	if m == nil {
		return code, nil
	}
	var changes []string
	badName := m[1]
	if !knownBadIcons[badName] {
		symRe := regexp.MustCompile(`\b` + regexp.QuoteMeta(badName) + `\s*,?\s*`)
		code = symRe.ReplaceAllString(code, "")
		code = trailingCommaRe.ReplaceAllString(code, " }")
		changes = changef("removed unknown icon %s from import", badName)
	}
	code = consoleErrLineRe.ReplaceAllString(code, "")
	return code, changes
}
