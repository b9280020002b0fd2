package pipeline

import (
	"sort"
	"strings"

	"github.com/jonathan/skill-recommender/internal/types"
)

// Output caps per variant.
const (
	MaxUpskill    = 5
	MaxCrossSkill = 4
)

// Rank drops recommendations without a skill name and repeats of an earlier name
// (case-insensitive), stable-sorts by priority, and truncates to the variant's cap.
// Ties are broken by High market demand for cross-skill and by required (gap-derived)
// skills for upskill; otherwise input order is kept.
func Rank(recs []types.SkillRecommendation, variant types.RecommendationType, required map[string]bool) []types.SkillRecommendation {
	seen := make(map[string]bool, len(recs))
	out := make([]types.SkillRecommendation, 0, len(recs))
	for _, r := range recs {
		key := strings.ToLower(strings.TrimSpace(r.SkillName))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		r.SkillName = strings.TrimSpace(r.SkillName)
		out = append(out, r)
	}

	cross := variant == types.RecommendationCrossSkill
	tieBreak := func(r types.SkillRecommendation) bool {
		if cross {
			return r.MarketDemand == types.PriorityHigh
		}
		return required[strings.ToLower(r.SkillName)]
	}

	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := out[i].Priority.Rank(), out[j].Priority.Rank()
		if ri != rj {
			return ri > rj
		}
		return tieBreak(out[i]) && !tieBreak(out[j])
	})

	limit := MaxUpskill
	if cross {
		limit = MaxCrossSkill
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
