package trends

import (
	"sort"
	"strings"

	"github.com/jonathan/skill-recommender/internal/types"
)

// Relevance scoring constants. They are hand-tuned; changing them changes which trends survive.
const (
	RoleMatchWeight    = 0.4
	SkillMatchWeight   = 0.3
	KeywordMatchWeight = 0.1
	MaxRelevance       = 1.0
	RelevanceThreshold = 0.3
	MaxTrends          = 20
	MinTrends          = 3
)

// EmergingKeywords add KeywordMatchWeight each when found in a trend's text.
var EmergingKeywords = []string{
	"ai", "ml", "machine learning", "deep learning", "cloud", "kubernetes", "docker", "microservices",
}

// crossKeywords mark trends that talk about broadening rather than deepening.
var crossKeywords = []string{
	"cross-functional", "interdisciplinary", "adjacent", "complementary",
	"versatile", "multi-disciplinary", "hybrid", "full-stack",
}

// Relevance scores t against role and skills, clamped to MaxRelevance.
// Skill and keyword matches are case-insensitive substring matches and each one counts.
func Relevance(t types.Trend, role string, skills []string) float64 {
	score := 0.0
	if t.Role != "" && t.Role == role {
		score += RoleMatchWeight
	}

	text := t.Text()
	for _, skill := range skills {
		s := strings.ToLower(strings.TrimSpace(skill))
		if s != "" && strings.Contains(text, s) {
			score += SkillMatchWeight
		}
	}
	for _, kw := range EmergingKeywords {
		if strings.Contains(text, kw) {
			score += KeywordMatchWeight
		}
	}

	if score > MaxRelevance {
		return MaxRelevance
	}
	return score
}

// Rank scores every item, keeps those above RelevanceThreshold and returns at most MaxTrends
// of them, highest first. Equal scores keep their input order. items is not modified.
func Rank(items []types.Trend, role string, skills []string) []types.Trend {
	kept := make([]types.Trend, 0, len(items))
	for _, t := range items {
		t.RelevanceScore = Relevance(t, role, skills)
		if t.RelevanceScore > RelevanceThreshold {
			kept = append(kept, t)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].RelevanceScore > kept[j].RelevanceScore
	})

	if len(kept) > MaxTrends {
		kept = kept[:MaxTrends]
	}
	return kept
}

// CrossTrends returns the trends whose title or description mentions working across disciplines.
func CrossTrends(items []types.Trend) []types.Trend {
	var out []types.Trend
	for _, t := range items {
		text := strings.ToLower(t.Title + " " + t.Description)
		for _, kw := range crossKeywords {
			if strings.Contains(text, kw) {
				out = append(out, t)
				break
			}
		}
	}
	return out
}
