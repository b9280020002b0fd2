package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/skill-recommender/internal/types"
	"github.com/jonathan/skill-recommender/internal/vectorstore"
)

func TestPrintRecommendations(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	resp := &types.RecommendationResponse{
		RunID:              "run-1",
		MemberName:         "Alice",
		RecommendationType: types.RecommendationUpskill,
		Recommendations: []types.SkillRecommendation{
			{
				SkillName:     "Apache Spark",
				Priority:      types.PriorityHigh,
				EstimatedTime: "2 months",
				LearningPath:  []string{"Read the docs", "Build a batch job", "Tune partitions", "Stream"},
			},
			{SkillName: "dbt", Priority: types.PriorityMedium, MarketDemand: types.PriorityHigh},
		},
		Reasoning:      "Identified 1 missing core skills for the Data Engineer role.",
		ContextSources: []string{"handbook"},
	}

	p.PrintRecommendations(resp)
	output := buf.String()

	assert.Contains(t, output, "SKILL RECOMMENDATIONS")
	assert.Contains(t, output, "Alice")
	assert.Contains(t, output, "#1  Apache Spark [High]")
	assert.Contains(t, output, "Time: 2 months")
	assert.Contains(t, output, "Tune partitions")
	assert.NotContains(t, output, "Stream")
	assert.Contains(t, output, "Demand: High")
	assert.Contains(t, output, "Sources: handbook")
}

func TestPrintRecommendations_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintRecommendations(nil)
	assert.Empty(t, buf.String())
}

func TestPrintRecommendations_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintRecommendations(&types.RecommendationResponse{MemberName: "Bob"})
	assert.Contains(t, buf.String(), "No recommendations")
}

func TestPrintTrendBundle(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	trends := make([]types.Trend, 7)
	for i := range trends {
		trends[i] = types.Trend{Type: types.TrendRepository, Name: "repo", Source: "GitHub", RelevanceScore: 0.5}
	}
	trends[0].Name = "langchain"

	p.PrintTrendBundle(&types.TrendBundle{
		Role:    "Data Scientist",
		Skills:  []string{"Python"},
		Trends:  trends,
		Sources: map[string]int{"github": 7, "blogs": 0},
		Error:   "all sources failed",
	})
	output := buf.String()

	assert.Contains(t, output, "INDUSTRY TRENDS")
	assert.Contains(t, output, "#1  langchain")
	assert.Contains(t, output, "... and 2 more")
	assert.Contains(t, output, "all sources failed")
	assert.Less(t, strings.Index(output, "blogs"), strings.Index(output, "github"))
}

func TestPrintStoreStats(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintStoreStats(vectorstore.Stats{TotalDocuments: 12, EmbeddingDimension: 768})
	assert.Contains(t, buf.String(), "Documents:  12")
	assert.Contains(t, buf.String(), "Dimension:  768")
}

func TestPrintTeamReport(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintTeamReport(&types.TeamReport{
		Valid:       false,
		MemberCount: 3,
		Warnings:    []string{"Role 'Astronaut' not found in skill mapping"},
		Distribution: types.SkillDistribution{
			TotalUniqueSkills:  4,
			LowCoverageSkills:  []string{"Spark"},
			HighCoverageSkills: []string{"Python"},
		},
	})
	output := buf.String()

	assert.Contains(t, output, "TEAM VALIDATION")
	assert.Contains(t, output, "Has warnings")
	assert.Contains(t, output, "Astronaut")
	assert.Contains(t, output, "Low coverage: Spark")
}

func TestPrintBox_TruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TITLE", strings.Repeat("é", 100))
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		assert.Equal(t, boxWidth, len([]rune(line)))
	}
	assert.Contains(t, buf.String(), "...")
}

func TestWrap(t *testing.T) {
	lines := wrap("one two three four", 9)
	assert.Equal(t, []string{"one two", "three", "four"}, lines)
	assert.Empty(t, wrap("", 10))
}
