package pipeline

import (
	"fmt"
	"strings"

	"github.com/jonathan/skill-recommender/internal/types"
)

// Experience tiers for reasoning text.
const (
	seniorYears = 5
	midYears    = 3
)

// Reasoning explains a run from its gap analysis and experience. It reads only the
// state, so equal states produce byte-identical text. Zero years means the experience
// was not supplied and adds no tier sentence.
func Reasoning(s *State) string {
	if s.Variant == types.RecommendationCrossSkill {
		return crossReasoning(s)
	}

	var parts []string
	if n := len(s.MissingCore); n > 0 {
		parts = append(parts, fmt.Sprintf("Identified %d missing core skills for the %s role.", n, s.Role))
	}
	if n := len(s.AdvancedSkills); n > 0 {
		parts = append(parts, fmt.Sprintf("Recommended %d advanced skills for career progression.", n))
	}
	switch years := s.YearsExperience; {
	case years >= seniorYears:
		parts = append(parts, "Given your senior experience level, focus on advanced skills and leadership capabilities.")
	case years >= midYears:
		parts = append(parts, "With your mid-level experience, balance core skill development with advanced topics.")
	case years > 0:
		parts = append(parts, "As a junior professional, prioritize building strong foundational skills.")
	}
	if len(parts) == 0 {
		return fmt.Sprintf("Generated personalized recommendations for %s role advancement.", s.Role)
	}
	return strings.Join(parts, " ")
}

func crossReasoning(s *State) string {
	var parts []string
	if n := len(s.AdjacentRoles); n > 0 {
		parts = append(parts, fmt.Sprintf("Identified %d adjacent roles that complement your %s expertise.", n, s.Role))
	}
	if n := len(s.IndustryTrends); n > 0 {
		parts = append(parts, fmt.Sprintf("Considered %d emerging industry trends for future-proofing your career.", n))
	}
	switch years := s.YearsExperience; {
	case years >= seniorYears:
		parts = append(parts, "Your senior experience makes you well-positioned for cross-functional leadership roles.")
	case years >= midYears:
		parts = append(parts, "Your mid-level experience is ideal for expanding into adjacent domains.")
	case years > 0:
		parts = append(parts, "Early in your career, focus on building a strong foundation before cross-skilling.")
	}
	if len(parts) == 0 {
		return fmt.Sprintf("Generated cross-skilling opportunities to expand your %s capabilities.", s.Role)
	}
	return strings.Join(parts, " ")
}

func failurePrefix(variant types.RecommendationType) string {
	if variant == types.RecommendationCrossSkill {
		return "Failed to generate cross-skill recommendations"
	}
	return "Failed to generate recommendations"
}

func failureReasoning(variant types.RecommendationType) string {
	return failurePrefix(variant) + " due to an error."
}
