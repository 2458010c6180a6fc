package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFenced(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "jsx fence",
			input:    "```jsx\nconst A = 1\n```",
			expected: "const A = 1",
		},
		{
			name:     "bare fence with prose",
			input:    "Here is the component:\n```\nexport default function X() {}\n```\nHope it helps!",
			expected: "export default function X() {}",
		},
		{
			name:     "raw code without fences",
			input:    "export default function X() {}",
			expected: "export default function X() {}",
		},
		{
			name:     "prose only",
			input:    "Sorry, I cannot generate that.",
			expected: "",
		},
		{
			name:     "empty",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Fenced(tt.input))
		})
	}
}

func TestComponent_CleanPassThrough(t *testing.T) {
	raw := "import { motion } from 'framer-motion'\n\n" +
		"export default function Hero() {\n" +
		"  return (<div className='min-h-screen'>Welcome to the product page</div>)\n" +
		"}\n"
	out := Component(raw, "Hero", Options{})

	assert.Contains(t, out, "import { motion } from 'framer-motion'")
	assert.Contains(t, out, "export default function Hero()")
	assert.Contains(t, out, "Welcome to the product page")
}

func TestComponent_StripsFences(t *testing.T) {
	raw := "```jsx\nimport { motion } from 'framer-motion'\n" +
		"export default function Hero() {\n  return (<div>content here for the page</div>)\n}\n```"
	out := Component(raw, "Hero", Options{})

	assert.NotContains(t, out, "```")
	assert.Contains(t, out, "export default function Hero()")
}

func TestComponent_NoExportFallsBackToPlaceholder(t *testing.T) {
	out := Component("I am unable to produce that component.", "Pricing", Options{})

	assert.Contains(t, out, "export default function Pricing()")
	assert.Contains(t, out, "Section content goes here.")
	assert.Contains(t, out, "bg-gray-900")
	assert.Empty(t, QuickCheck(out, "Pricing"))
}

func TestComponent_KeepsReferencedHelper(t *testing.T) {
	raw := "import { motion } from 'framer-motion'\n" +
		"function Stat() {\n  return <div className='stat'>42 projects shipped</div>\n}\n" +
		"export default function Features() {\n" +
		"  return (<div className='grid'><Stat /><Stat /></div>)\n}\n"
	out := Component(raw, "Features", Options{})

	assert.Contains(t, out, "function Stat()")
	assert.Contains(t, out, "export default function Features()")
	// Helper declared before the export.
	assert.Less(t, strings.Index(out, "function Stat()"), strings.Index(out, "export default"))
}

func TestComponent_DropsUnreferencedHelper(t *testing.T) {
	raw := "function Orphan() {\n  return <div>nothing references this one</div>\n}\n" +
		"export default function About() {\n  return (<div>about text</div>)\n}\n"
	out := Component(raw, "About", Options{ThinWrapperChars: 10})

	assert.NotContains(t, out, "Orphan")
	assert.Contains(t, out, "export default function About()")
}

func TestComponent_ThinWrapperAdoptsLargestHelper(t *testing.T) {
	raw := "import { useState } from 'react'\n" +
		"function Calculator() {\n" +
		"  const [display, setDisplay] = useState('0')\n" +
		"  const press = (key) => setDisplay(display === '0' ? key : display + key)\n" +
		"  return (\n    <div className='keypad'>\n" +
		"      {['7','8','9','4','5','6','1','2','3'].map((k) => (\n" +
		"        <button key={k} onClick={() => press(k)}>{k}</button>\n" +
		"      ))}\n    </div>\n  )\n}\n" +
		"export default function App() {\n  return (<div>ready</div>)\n}\n"
	out := Component(raw, "App", Options{})

	assert.Contains(t, out, "export default function App()")
	assert.NotContains(t, out, "Calculator")
	assert.Contains(t, out, "keypad")
	assert.Contains(t, out, "import { useState } from 'react'")
}

func TestComponent_UsesAnyExportWhenNameMismatches(t *testing.T) {
	raw := "export default function HeroSection() {\n" +
		"  return (<div>big hero banner with headline</div>)\n}\n"
	out := Component(raw, "Hero", Options{})
	assert.Contains(t, out, "export default function HeroSection()")
}

func TestComponent_DefaultsMotionImport(t *testing.T) {
	raw := "export default function Footer() {\n  return (<footer>© company, all rights reserved</footer>)\n}\n"
	out := Component(raw, "Footer", Options{})
	assert.Contains(t, out, "import { motion } from 'framer-motion'")
}

func TestComponent_DedupesImports(t *testing.T) {
	raw := "import { motion } from 'framer-motion'\n" +
		"import { motion } from 'framer-motion'\n" +
		"export default function Hero() {\n  return (<div>deduplicated imports in here</div>)\n}\n"
	out := Component(raw, "Hero", Options{})
	assert.Equal(t, 1, strings.Count(out, "framer-motion"))
}

func TestComponent_UnbalancedBracesFallsBack(t *testing.T) {
	raw := "export default function Hero() {\n  {{{{{{ totally broken output\n"
	out := Component(raw, "Hero", Options{})
	assert.Contains(t, out, "Section content goes here.")
}

func TestComponent_NeverReturnsEmpty(t *testing.T) {
	inputs := []string{"", "garbage", "```jsx\n```", "export default", "{{{{"}
	for _, input := range inputs {
		out := Component(input, "Hero", Options{})
		require.NotEmpty(t, out)
		assert.Contains(t, out, "export default function")
	}
}

func TestQuickCheck(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected string
	}{
		{"empty", "", "empty"},
		{"too short", "<div />", "empty"},
		{
			"missing export",
			"function Hero() { return (<div>some long enough content</div>) }",
			"missing export default",
		},
		{
			"self referential",
			"export default function Hero() { return (<Hero />) }",
			"self-referential render",
		},
		{
			"valid",
			"export default function Hero() { return (<div>fine component body</div>) }",
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, QuickCheck(tt.code, "Hero"))
		})
	}
}

func TestRescued(t *testing.T) {
	assert.True(t, Rescued(strings.Repeat("x", 500), 200))
	assert.False(t, Rescued(strings.Repeat("x", 350), 200))
	assert.False(t, Rescued("", 200))
}
