// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jonathan/skill-recommender/internal/types"
	"github.com/jonathan/skill-recommender/internal/vectorstore"
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
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, clip(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// clip shortens s to n runes, marking the cut with "...".
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// PrintRecommendations outputs a recommendation response with each skill's priority and plan.
func (p *Printer) PrintRecommendations(resp *types.RecommendationResponse) {
	if resp == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Member:   %s\n", resp.MemberName))
	sb.WriteString(fmt.Sprintf("Type:     %s\n", resp.RecommendationType))
	if resp.RunID != "" {
		sb.WriteString(fmt.Sprintf("Run:      %s\n", resp.RunID))
	}
	sb.WriteString("\n")

	if len(resp.Recommendations) == 0 {
		sb.WriteString("No recommendations\n")
	}
	for i, r := range resp.Recommendations {
		sb.WriteString(fmt.Sprintf("#%d  %s [%s]\n", i+1, r.SkillName, r.Priority))
		if r.EstimatedTime != "" {
			sb.WriteString(fmt.Sprintf("    Time: %s\n", r.EstimatedTime))
		}
		if r.MarketDemand != "" {
			sb.WriteString(fmt.Sprintf("    Demand: %s\n", r.MarketDemand))
		}
		steps := min(len(r.LearningPath), 3)
		for _, step := range r.LearningPath[:steps] {
			sb.WriteString(fmt.Sprintf("    • %s\n", step))
		}
		if i < len(resp.Recommendations)-1 {
			sb.WriteString("\n")
		}
	}

	if resp.Reasoning != "" {
		sb.WriteString("\n")
		for _, line := range wrap(resp.Reasoning, boxWidth-4) {
			sb.WriteString(line + "\n")
		}
	}
	if len(resp.ContextSources) > 0 {
		sb.WriteString(fmt.Sprintf("\nSources: %s\n", strings.Join(resp.ContextSources, ", ")))
	}
	if resp.TrendsAnalyzed > 0 {
		sb.WriteString(fmt.Sprintf("Trends analyzed: %d\n", resp.TrendsAnalyzed))
	}

	p.printBox("SKILL RECOMMENDATIONS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintTrendBundle outputs the top trends with scores and per-source counts.
func (p *Printer) PrintTrendBundle(bundle *types.TrendBundle) {
	if bundle == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Role:     %s\n", bundle.Role))
	if len(bundle.Skills) > 0 {
		sb.WriteString(fmt.Sprintf("Skills:   %s\n", strings.Join(bundle.Skills, ", ")))
	}
	sb.WriteString(fmt.Sprintf("Total trends: %d\n\n", len(bundle.Trends)))

	count := min(len(bundle.Trends), maxItemsToShow)
	for i := 0; i < count; i++ {
		t := bundle.Trends[i]
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, t.Label()))
		sb.WriteString(fmt.Sprintf("    %s · %s · %.2f\n", t.Type, t.Source, t.RelevanceScore))
	}
	if len(bundle.Trends) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(bundle.Trends)-maxItemsToShow))
	}

	if len(bundle.Sources) > 0 {
		keys := make([]string, 0, len(bundle.Sources))
		for k := range bundle.Sources {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteString("\nSources:\n")
		for _, k := range keys {
			sb.WriteString(fmt.Sprintf("  %-20s %d\n", k, bundle.Sources[k]))
		}
	}
	if bundle.Error != "" {
		sb.WriteString(fmt.Sprintf("\n⚠ %s\n", bundle.Error))
	}

	p.printBox("INDUSTRY TRENDS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintStoreStats outputs vector store statistics.
func (p *Printer) PrintStoreStats(stats vectorstore.Stats) {
	content := fmt.Sprintf("Documents:  %d\nDimension:  %d", stats.TotalDocuments, stats.EmbeddingDimension)
	p.printBox("VECTOR STORE", content)
}

// PrintTeamReport outputs the validation warnings and skill coverage of an ingested team.
func (p *Printer) PrintTeamReport(report *types.TeamReport) {
	if report == nil {
		return
	}

	var sb strings.Builder
	status := "✓ Valid"
	if !report.Valid {
		status = "✗ Has warnings"
	}
	sb.WriteString(fmt.Sprintf("Status:   %s\n", status))
	sb.WriteString(fmt.Sprintf("Members:  %d\n", report.MemberCount))
	sb.WriteString(fmt.Sprintf("Skills:   %d unique\n", report.Distribution.TotalUniqueSkills))

	if len(report.Warnings) > 0 {
		sb.WriteString("\nWarnings:\n")
		count := min(len(report.Warnings), maxItemsToShow)
		for _, w := range report.Warnings[:count] {
			sb.WriteString(fmt.Sprintf("  ⚠ %s\n", w))
		}
		if len(report.Warnings) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(report.Warnings)-maxItemsToShow))
		}
	}

	if low := report.Distribution.LowCoverageSkills; len(low) > 0 {
		count := min(len(low), maxItemsToShow)
		sb.WriteString(fmt.Sprintf("\nLow coverage: %s\n", strings.Join(low[:count], ", ")))
	}
	if high := report.Distribution.HighCoverageSkills; len(high) > 0 {
		count := min(len(high), maxItemsToShow)
		sb.WriteString(fmt.Sprintf("High coverage: %s\n", strings.Join(high[:count], ", ")))
	}

	p.printBox("TEAM VALIDATION", strings.TrimSuffix(sb.String(), "\n"))
}

// wrap splits text into lines of at most width runes on word boundaries.
func wrap(text string, width int) []string {
	var lines []string
	var line strings.Builder
	for _, word := range strings.Fields(text) {
		if line.Len() > 0 && len([]rune(line.String()))+1+len([]rune(word)) > width {
			lines = append(lines, line.String())
			line.Reset()
		}
		if line.Len() > 0 {
			line.WriteByte(' ')
		}
		line.WriteString(word)
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return lines
}
