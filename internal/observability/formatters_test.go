package observability

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/spa-builder/internal/project"
	"github.com/jonathan/spa-builder/internal/repair"
	"github.com/jonathan/spa-builder/internal/types"
)

func TestPrintBuildSpec(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	spec := &types.BuildSpec{
		Title:       "Mario's Pizza",
		ProjectName: "marios-pizza",
		Strategy:    types.StrategySections,
		ColorScheme: "red and gold",
		Sections:    []string{"Hero", "Menu", "About", "Contact"},
		KeyFeatures: []string{"online ordering", "photo gallery"},
	}

	p.PrintBuildSpec(spec)
	output := buf.String()

	assert.Contains(t, output, "BUILD SPEC")
	assert.Contains(t, output, "Mario's Pizza")
	assert.Contains(t, output, "react-sections")
	assert.Contains(t, output, "Hero")
	assert.Contains(t, output, "online ordering")
}

func TestPrintBuildSpec_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintBuildSpec(nil)

	assert.Empty(t, buf.String())
}

func TestPrintBuildSpec_TruncatesLongLists(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	spec := &types.BuildSpec{
		Title:    "Big Site",
		Sections: []string{"A", "B", "C", "D", "E", "F", "G"},
	}
	p.PrintBuildSpec(spec)

	assert.Contains(t, buf.String(), "... and 2 more")
}

func TestPrintVerification_AllClear(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintVerification(1, nil)

	assert.Contains(t, buf.String(), "ALL BROWSER CHECKS PASSED")
}

func TestPrintVerification_Failures(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintVerification(2, []string{
		"App never rendered — likely a compile/runtime error",
		"Console error: ReferenceError: FiOval is not defined",
	})
	output := buf.String()

	assert.Contains(t, output, "VERIFICATION — ATTEMPT 2")
	assert.Contains(t, output, "Found 2 issue(s)")
	assert.Contains(t, output, "⚠")
}

func TestPrintRepairSummary(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRepairSummary([]repair.Fix{
		{Path: "src/components/Hero.jsx", Outcome: repair.OutcomeRegenerated},
		{Path: "src/components/Menu.jsx", Outcome: repair.OutcomeFallback},
	})
	output := buf.String()

	assert.Contains(t, output, "REPAIR PASS")
	assert.Contains(t, output, "regenerated")
	assert.Contains(t, output, "fallback")
	assert.Contains(t, output, "src/components/Hero.jsx")
}

func TestPrintRepairSummary_EmptyPrintsNothing(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRepairSummary(nil)

	assert.Empty(t, buf.String())
}

func TestPrintProjects(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintProjects([]project.Info{
		{Name: "marios-pizza", Title: "marios-pizza", FileCount: 9, ModifiedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
	})
	output := buf.String()

	assert.Contains(t, output, "PROJECTS")
	assert.Contains(t, output, "marios-pizza")
	assert.Contains(t, output, "2026-03-01")
}

func TestPrintProjects_Empty(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintProjects(nil)

	assert.Contains(t, buf.String(), "No generated projects yet.")
}

func TestPrintBox_TruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TITLE", strings.Repeat("x", 200))

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), boxWidth)
	}
}
