// Package types provides type definitions for structured data used throughout the spa-builder system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSpec_JSONUnmarshaling(t *testing.T) {
	raw := `{
		"title": "Coffee Shop",
		"color_scheme": "warm browns",
		"strategy": "react-sections",
		"sections": ["Hero", "Menu", "Contact"],
		"key_features": ["menu grid"],
		"special_instructions": "show opening hours"
	}`

	var spec BuildSpec
	err := json.Unmarshal([]byte(raw), &spec)
	require.NoError(t, err)
	assert.Equal(t, "Coffee Shop", spec.Title)
	assert.Equal(t, "warm browns", spec.ColorScheme)
	assert.Equal(t, StrategySections, spec.Strategy)
	assert.Equal(t, []string{"Hero", "Menu", "Contact"}, spec.Sections)
	assert.Equal(t, "show opening hours", spec.Instructions)
}

func TestBuildSpec_ApplyDefaults_FillsUnsetFields(t *testing.T) {
	spec := BuildSpec{Title: "Portfolio Site", Description: "a personal portfolio"}
	spec.ApplyDefaults()

	assert.Equal(t, StrategySections, spec.Strategy)
	assert.Equal(t, []string{"Hero", "Features", "About", "Contact"}, spec.Sections)
	assert.Equal(t, "dark with indigo and cyan accents", spec.ColorScheme)
	assert.Equal(t, "modern", spec.Style)
	assert.Equal(t, "a personal portfolio", spec.Instructions)
	assert.Equal(t, "portfolio-site", spec.ProjectName)
}

func TestBuildSpec_ApplyDefaults_PreservesExplicitValues(t *testing.T) {
	spec := BuildSpec{
		Title:       "Timer",
		Strategy:    StrategyApp,
		ColorScheme: "neon green",
		ProjectName: "my-timer",
	}
	spec.ApplyDefaults()

	assert.Equal(t, StrategyApp, spec.Strategy)
	assert.Equal(t, "neon green", spec.ColorScheme)
	assert.Equal(t, "my-timer", spec.ProjectName)
	assert.Empty(t, spec.Sections)
}

func TestBuildSpec_ComponentNames_SectionsStrategy(t *testing.T) {
	spec := BuildSpec{
		Strategy: StrategySections,
		Sections: []string{"Hero", "Navbar", "Pricing"},
	}

	names := spec.ComponentNames()
	assert.Equal(t, []string{"Navbar", "Hero", "Pricing"}, names)
}

func TestBuildSpec_ComponentNames_AppStrategy(t *testing.T) {
	spec := BuildSpec{Strategy: StrategyApp}
	assert.Equal(t, []string{"App"}, spec.ComponentNames())
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"simple title", "Coffee Shop", "coffee-shop"},
		{"punctuation stripped", "Bob's Diner!", "bobs-diner"},
		{"collapsed separators", "My  --  App", "my-app"},
		{"empty falls back", "!!!", "app"},
		{"long title truncated", "An Extremely Long Application Title Indeed", "an-extremely-long-applicatio"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slugify(tt.title))
		})
	}
}
