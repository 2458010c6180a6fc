// Package sanitize - packages.go removes or remaps imports of packages that
// are not installed in the generated project. Only react, react-dom,
// framer-motion and react-icons exist in package.json; everything else
// crashes Vite with "Failed to resolve import".
package sanitize

import (
	"fmt"
	"regexp"
	"strings"
)

// bannedPackages are module names the model imports but the project never
// installs. Exact package-name match.
var bannedPackages = []string{
	"react-leaflet", "leaflet",
	"react-router-dom", "react-router",
	"axios", "lodash", "lodash-es",
	"chart.js", "react-chartjs-2",
	"d3", "d3-scale", "d3-shape",
	"three", "@react-three/fiber", "@react-three/drei",
	"@mui/material", "@mui/icons-material",
	"@chakra-ui/react", "@chakra-ui/icons",
	"react-query", "@tanstack/react-query",
	"zustand", "jotai", "recoil",
	"styled-components", "@emotion/react", "@emotion/styled",
	"classnames", "clsx",
	"react-spring", "@react-spring/web",
	"react-use",
	"react-helmet", "react-helmet-async",
	"react-hot-toast", "sonner",
	"react-toastify",
	"react-dnd", "react-beautiful-dnd",
	"react-virtualized", "react-window",
	"react-table", "@tanstack/react-table",
	"react-hook-form", "formik", "yup",
	"date-fns", "dayjs", "moment",
	"uuid", "nanoid",
	"numeral", "accounting",
}

var bannedImportRes = func() map[string]*regexp.Regexp {
	m := make(map[string]*regexp.Regexp, len(bannedPackages))
	for _, pkg := range bannedPackages {
		m[pkg] = regexp.MustCompile(`(?m)^import\b[^\n]*from\s+['"]` + regexp.QuoteMeta(pkg) + `['"][^\n]*\n?`)
	}
	return m
}()

// removeBannedImports deletes import statements naming uninstalled packages.
func removeBannedImports(code, _ string) (string, []string) {
	var changes []string
	for _, pkg := range bannedPackages {
		before := len(code)
		code = bannedImportRes[pkg].ReplaceAllString(code, "")
		if len(code) != before {
			changes = append(changes, fmt.Sprintf("removed banned package import: %s", pkg))
		}
	}
	return code, changes
}

var leafletTags = []string{
	"MapContainer", "TileLayer", "Marker", "Popup", "MapView",
	"LeafletMap", "OpenStreetMap",
}

var mapCommentRe = regexp.MustCompile(`(?i)\{/\*\s*map\s*\*/\}`)

const mapPlaceholder = `<div className="w-full h-64 bg-gray-800 rounded-xl flex items-center ` +
	`justify-center text-gray-500 border border-white/10"><span>📍 Map view</span></div>`

// replaceLeafletWidgets strips residual leaflet tags left after the import
// removal and substitutes a neutral placeholder block.
func replaceLeafletWidgets(code, _ string) (string, []string) {
	if !strings.Contains(code, "MapContainer") && !strings.Contains(code, "TileLayer") &&
		!strings.Contains(code, "react-leaflet") {
		return code, nil
	}
	for _, tag := range leafletTags {
		code = regexp.MustCompile(`<`+tag+`[^>]*/?>`).ReplaceAllString(code, "")
		code = regexp.MustCompile(`(?s)<`+tag+`[^>]*>.*?</`+tag+`>`).ReplaceAllString(code, "")
	}
	code = mapCommentRe.ReplaceAllString(code, mapPlaceholder)
	return code, changef("replaced react-leaflet map with styled placeholder")
}

var (
	scrollImportRe     = regexp.MustCompile(`import\s+.*?from\s+['"]react-scroll['"];?\n?`)
	scrollLinkActiveRe = regexp.MustCompile(`<Link\s+to=["']([^"']+)["'][^>]*activeClass=[^>]*>`)
	scrollLinkRe       = regexp.MustCompile(`<Link\s+to=["']([^"']+)["'][^>]*>`)
)

// replaceScrollLinks rewrites react-scroll's Link construct as a plain
// anchor tag and drops the import.
func replaceScrollLinks(code, _ string) (string, []string) {
	if !strings.Contains(code, "react-scroll") {
		return code, nil
	}
	code = scrollImportRe.ReplaceAllString(code, "")
	code = scrollLinkActiveRe.ReplaceAllString(code, `<a href="#$1">`)
	code = scrollLinkRe.ReplaceAllString(code, `<a href="#$1">`)
	code = strings.ReplaceAll(code, "</Link>", "</a>")
	return code, changef("removed react-scroll, replaced with anchor links")
}

var (
	lucideSourceRe = regexp.MustCompile(`from\s+['"]lucide-react['"]`)
	lucideImportRe = regexp.MustCompile(`import\s*\{([^}]+)\}\s*from\s*['"]react-icons/lu['"]`)
)

// remapLucideIcons rewrites lucide-react imports to react-icons/lu, where
// lucide icons live with a Lu prefix; each symbol is renamed with an alias
// so usages stay valid.
func remapLucideIcons(code, _ string) (string, []string) {
	if !strings.Contains(code, "lucide-react") {
		return code, nil
	}
	code = lucideSourceRe.ReplaceAllString(code, "from 'react-icons/lu'")
	code = lucideImportRe.ReplaceAllStringFunc(code, func(m string) string {
		sub := lucideImportRe.FindStringSubmatch(m)
		var prefixed []string
		for _, raw := range strings.Split(sub[1], ",") {
			icon := strings.TrimSpace(raw)
			if icon == "" {
				continue
			}
			if strings.HasPrefix(icon, "Lu") {
				prefixed = append(prefixed, icon)
			} else {
				prefixed = append(prefixed, fmt.Sprintf("Lu%s as %s", icon, icon))
			}
		}
		return fmt.Sprintf("import { %s } from 'react-icons/lu'", strings.Join(prefixed, ", "))
	})
	return code, changef("remapped lucide-react → react-icons/lu")
}

var heroiconsRe = regexp.MustCompile(`from\s+['"]@heroicons/react/[^'"]+['"]`)

// remapHeroicons points @heroicons/react imports at react-icons/hi.
func remapHeroicons(code, _ string) (string, []string) {
	if !heroiconsRe.MatchString(code) {
		return code, nil
	}
	code = heroiconsRe.ReplaceAllString(code, "from 'react-icons/hi'")
	return code, changef("remapped @heroicons/react → react-icons/hi")
}

var framerImportRe = regexp.MustCompile(`import\s*\{([^}]+)\}\s*from\s*['"]framer-motion['"]`)

// ensureAnimatePresenceImport adds AnimatePresence to an existing
// framer-motion import when the component uses it without importing it.
func ensureAnimatePresenceImport(code, _ string) (string, []string) {
	if !strings.Contains(code, "AnimatePresence") || !strings.Contains(code, "framer-motion") {
		return code, nil
	}
	m := framerImportRe.FindStringSubmatch(code)
	if m == nil || strings.Contains(m[1], "AnimatePresence") {
		return code, nil
	}
	code = strings.Replace(code, m[0], strings.Replace(m[0], "{", "{ AnimatePresence, ", 1), 1)
	return code, changef("added AnimatePresence to framer-motion import")
}
