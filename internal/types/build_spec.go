// Package types provides type definitions for structured data used throughout the spa-builder system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "strings"

// Generation strategies supported by the builder.
const (
	// StrategySections generates a navbar plus one component per section,
	// composed by a generated App shell.
	StrategySections = "react-sections"
	// StrategyApp generates a single self-contained App component.
	StrategyApp = "react-app"
)

// BuildSpec is the structured build specification produced by the external
// idea classifier. It is validated once at ingestion and immutable for the
// duration of a build.
type BuildSpec struct {
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	ColorScheme  string   `json:"color_scheme,omitempty"`
	Style        string   `json:"style,omitempty"`
	SiteType     string   `json:"site_type,omitempty"`
	Strategy     string   `json:"strategy,omitempty"`
	Sections     []string `json:"sections,omitempty"`
	KeyFeatures  []string `json:"key_features,omitempty"`
	Instructions string   `json:"special_instructions,omitempty"`
	ProjectName  string   `json:"project_name,omitempty"`
}

// ApplyDefaults fills unset optional fields with their documented defaults.
// Called exactly once, after schema validation.
func (s *BuildSpec) ApplyDefaults() {
	if s.Title == "" {
		s.Title = "My App"
	}
	if s.ColorScheme == "" {
		s.ColorScheme = "dark with indigo and cyan accents"
	}
	if s.Style == "" {
		s.Style = "modern"
	}
	if s.SiteType == "" {
		s.SiteType = "general"
	}
	if s.Strategy == "" {
		s.Strategy = StrategySections
	}
	if s.Strategy == StrategySections && len(s.Sections) == 0 {
		s.Sections = []string{"Hero", "Features", "About", "Contact"}
	}
	if s.Instructions == "" {
		s.Instructions = s.Description
	}
	if s.ProjectName == "" {
		s.ProjectName = slugify(s.Title)
	}
}

// ComponentNames returns the ordered list of component names this spec will
// generate, navbar first for the sections strategy.
func (s *BuildSpec) ComponentNames() []string {
	if s.Strategy == StrategyApp {
		return []string{"App"}
	}
	names := []string{"Navbar"}
	for _, sec := range s.Sections {
		if sec != "Navbar" {
			names = append(names, sec)
		}
	}
	return names
}

// slugify reduces a title to a filesystem- and npm-safe project name.
func slugify(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteByte('-')
		}
	}
	slug := strings.Trim(b.String(), "-")
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	if len(slug) > 28 {
		slug = strings.Trim(slug[:28], "-")
	}
	if slug == "" {
		return "app"
	}
	return slug
}
