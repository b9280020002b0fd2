package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/skill-recommender/internal/prompts"
	"github.com/jonathan/skill-recommender/internal/types"
	"github.com/jonathan/skill-recommender/internal/vectorstore"
)

const (
	maxDocChars         = 500
	maxTrendDescription = 200
	maxPromptTrends     = 10
)

func formatContextDocs(docs []vectorstore.Result) string {
	if len(docs) == 0 {
		return prompts.Recommendation(prompts.KeyNoContext)
	}

	parts := make([]string, 0, len(docs))
	for i, d := range docs {
		source := d.Metadata["source"]
		if source == "" {
			source = fmt.Sprintf("Document %d", i+1)
		}
		parts = append(parts, fmt.Sprintf("Source %d (%s): %s...", i+1, source, truncate(d.Document, maxDocChars)))
	}
	return strings.Join(parts, "\n\n")
}

// formatTrends lists up to ten trends as "N. TYPE: label" with description and source lines.
func formatTrends(items []types.Trend) string {
	if len(items) == 0 {
		return prompts.Recommendation(prompts.KeyNoTrends)
	}

	var sb strings.Builder
	for i, t := range items {
		if i == maxPromptTrends {
			break
		}
		typ := string(t.Type)
		if typ == "" {
			typ = "trend"
		}
		source := t.Source
		if source == "" {
			source = "Unknown"
		}
		fmt.Fprintf(&sb, "%d. %s: %s\n", i+1, strings.ToUpper(typ), t.Label())
		if t.Description != "" {
			fmt.Fprintf(&sb, "   Description: %s...\n", truncate(t.Description, maxTrendDescription))
		}
		fmt.Fprintf(&sb, "   Source: %s\n\n", source)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// contextSources names where a run's context came from: "<category>: <n> items" per
// trend source in dynamic runs, otherwise each document's source metadata.
func contextSources(s *State) []string {
	out := []string{}
	if s.Dynamic {
		if s.Trends == nil {
			return out
		}
		keys := make([]string, 0, len(s.Trends.Sources))
		for k, n := range s.Trends.Sources {
			if n > 0 {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			out = append(out, fmt.Sprintf("%s: %d items", k, s.Trends.Sources[k]))
		}
		return out
	}

	for _, d := range s.ContextDocs {
		source := d.Metadata["source"]
		if source == "" {
			source = "Unknown"
		}
		out = append(out, source)
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
