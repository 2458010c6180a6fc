// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/spa-builder/internal/project"
	"github.com/jonathan/spa-builder/internal/repair"
	"github.com/jonathan/spa-builder/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintBuildSpec outputs a human-readable summary of the build spec.
func (p *Printer) PrintBuildSpec(spec *types.BuildSpec) {
	if spec == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Title:    %s\n", spec.Title))
	sb.WriteString(fmt.Sprintf("Project:  %s\n", spec.ProjectName))
	sb.WriteString(fmt.Sprintf("Strategy: %s\n", spec.Strategy))
	sb.WriteString(fmt.Sprintf("Colors:   %s\n", spec.ColorScheme))

	if len(spec.Sections) > 0 {
		sb.WriteString("\nSections:\n")
		count := min(len(spec.Sections), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", spec.Sections[i]))
		}
		if len(spec.Sections) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(spec.Sections)-maxItemsToShow))
		}
	}

	if len(spec.KeyFeatures) > 0 {
		sb.WriteString("\nKey Features:\n")
		count := min(len(spec.KeyFeatures), 3)
		for i := 0; i < count; i++ {
			feature := spec.KeyFeatures[i]
			if len(feature) > 50 {
				feature = feature[:47] + "..."
			}
			sb.WriteString(fmt.Sprintf("  • %s\n", feature))
		}
		if len(spec.KeyFeatures) > 3 {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(spec.KeyFeatures)-3))
		}
	}

	p.printBox("BUILD SPEC", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintVerification outputs the browser verification result.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintVerification(attempt int, failures []string) {
	if len(failures) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ ALL BROWSER CHECKS PASSED")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d issue(s):\n\n", len(failures)))

	for i, f := range failures {
		if len(f) > 45 {
			f = f[:42] + "..."
		}
		sb.WriteString(fmt.Sprintf("⚠ %s\n", f))
		if i < len(failures)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox(fmt.Sprintf("VERIFICATION — ATTEMPT %d", attempt), sb.String())
}

// PrintRepairSummary outputs what each fix pass did per file.
func (p *Printer) PrintRepairSummary(fixes []repair.Fix) {
	if len(fixes) == 0 {
		return
	}

	var sb strings.Builder
	for _, f := range fixes {
		marker := "✎"
		switch f.Outcome {
		case repair.OutcomeRescued:
			marker = "♻"
		case repair.OutcomeFallback:
			marker = "⚠"
		}
		sb.WriteString(fmt.Sprintf("%s %-12s %s\n", marker, f.Outcome, f.Path))
	}

	p.printBox("REPAIR PASS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintProjects outputs the workspace project listing.
func (p *Printer) PrintProjects(infos []project.Info) {
	if len(infos) == 0 {
		p.printBox("PROJECTS", "No generated projects yet.")
		return
	}

	var sb strings.Builder
	for _, info := range infos {
		title := info.Title
		if title == "" {
			title = info.Name
		}
		sb.WriteString(fmt.Sprintf("%-24s %3d files  %s\n",
			title, info.FileCount, info.ModifiedAt.Format("2006-01-02 15:04")))
	}

	p.printBox("PROJECTS", strings.TrimSuffix(sb.String(), "\n"))
}
