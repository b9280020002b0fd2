// Package types provides type definitions for structured data used throughout the skill-recommender system.
package types

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// Priority ranks a recommendation and, for market demand, how sought-after a skill is.
type Priority string

// Priority values
const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Rank returns the sort weight of a priority. Unknown values rank as Low.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	default:
		return 1
	}
}

// ParsePriority maps free text ("high", " HIGH ") to a Priority.
// Anything unrecognised is returned verbatim so ranking treats it as Low.
func ParsePriority(s string) Priority {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return PriorityHigh
	case "medium":
		return PriorityMedium
	case "low":
		return PriorityLow
	default:
		return Priority(strings.TrimSpace(s))
	}
}

// RecommendationType selects the pipeline variant.
type RecommendationType string

// Recommendation types
const (
	RecommendationUpskill    RecommendationType = "upskill"
	RecommendationCrossSkill RecommendationType = "cross_skill"
)

// SkillRecommendation is a single suggested skill with a learning path.
type SkillRecommendation struct {
	SkillName       string   `json:"skill_name"`
	Description     string   `json:"description"`
	Priority        Priority `json:"priority"`
	LearningPath    []string `json:"learning_path"`
	EstimatedTime   string   `json:"estimated_time"`
	SourceDocuments []string `json:"source_documents"`
	MarketDemand    Priority `json:"market_demand,omitempty"`
	TrendRelevance  string   `json:"trend_relevance,omitempty"`
}

// RecommendationRequest is the input to a pipeline run.
type RecommendationRequest struct {
	MemberName         string             `json:"member_name" validate:"required"`
	Role               string             `json:"role" validate:"required"`
	Skills             []string           `json:"skills" validate:"required,min=1,dive,required"`
	RecommendationType RecommendationType `json:"recommendation_type" validate:"required,oneof=upskill cross_skill"`
	YearsExperience    int                `json:"years_experience,omitempty" validate:"gte=0,lte=60"`
	TargetRole         string             `json:"target_role,omitempty" validate:"required_if=RecommendationType cross_skill,excluded_unless=RecommendationType cross_skill"`
	// Dynamic switches context retrieval to live trend aggregation.
	Dynamic bool `json:"dynamic,omitempty"`
}

// Normalize trims whitespace and drops blank skills so that validation sees the effective values.
func (r *RecommendationRequest) Normalize() {
	r.MemberName = strings.TrimSpace(r.MemberName)
	r.Role = strings.TrimSpace(r.Role)
	r.TargetRole = strings.TrimSpace(r.TargetRole)
	r.RecommendationType = RecommendationType(strings.ToLower(strings.TrimSpace(string(r.RecommendationType))))

	skills := make([]string, 0, len(r.Skills))
	for _, s := range r.Skills {
		if s = strings.TrimSpace(s); s != "" {
			skills = append(skills, s)
		}
	}
	r.Skills = skills
}

// Validate validates the RecommendationRequest using the validator.
func (r *RecommendationRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// RecommendationResponse is the output of a pipeline run.
type RecommendationResponse struct {
	RunID                string                `json:"run_id,omitempty"`
	MemberName           string                `json:"member_name"`
	RecommendationType   RecommendationType    `json:"recommendation_type"`
	Recommendations      []SkillRecommendation `json:"recommendations"`
	Reasoning            string                `json:"reasoning"`
	TotalRecommendations int                   `json:"total_recommendations"`
	ContextSources       []string              `json:"context_sources"`
	TrendsAnalyzed       int                   `json:"trends_analyzed"`
}
