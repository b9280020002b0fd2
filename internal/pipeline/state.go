package pipeline

import (
	"github.com/google/uuid"

	"github.com/jonathan/skill-recommender/internal/skills"
	"github.com/jonathan/skill-recommender/internal/types"
	"github.com/jonathan/skill-recommender/internal/vectorstore"
)

// State is owned by a single run and threaded through its stages.
type State struct {
	RunID           uuid.UUID
	MemberName      string
	Role            string
	TargetRole      string
	Skills          []string
	YearsExperience int
	Variant         types.RecommendationType
	Dynamic         bool
	Stage           Stage

	// Role analysis
	Profile        skills.Profile
	AdjacentRoles  []string
	IndustryTrends []string

	// Gap analysis
	MissingCore    []string
	AdvancedSkills []string
	Opportunities  []string

	// Context
	Trends      *types.TrendBundle
	ContextDocs []vectorstore.Result

	// Output
	Recommendations []types.SkillRecommendation
	// required holds lowercased names appended from the gap analysis.
	required  map[string]bool
	Reasoning string
}

func newState(req types.RecommendationRequest) *State {
	return &State{
		MemberName:      req.MemberName,
		Role:            req.Role,
		TargetRole:      req.TargetRole,
		Skills:          append([]string(nil), req.Skills...),
		YearsExperience: req.YearsExperience,
		Variant:         req.RecommendationType,
		Dynamic:         req.Dynamic,
		Stage:           StageStart,
		required:        map[string]bool{},
	}
}

func (s *State) isCross() bool {
	return s.Variant == types.RecommendationCrossSkill
}

// level is the seniority used for learning time estimates.
func (s *State) level() types.Level {
	return skills.LevelForYears(s.YearsExperience)
}

// reset puts the outputs of stage back to their neutral values after a failure.
func (s *State) reset(stage Stage) {
	switch stage {
	case StageAnalyzeRole:
		s.Profile = skills.Profile{}
		s.AdjacentRoles = nil
		s.IndustryTrends = nil
	case StageFetchTrends:
		s.Trends = &types.TrendBundle{
			Role:    s.Role,
			Skills:  append([]string(nil), s.Skills...),
			Trends:  []types.Trend{},
			Sources: map[string]int{},
		}
	case StageGapAnalysis:
		s.MissingCore = nil
		s.AdvancedSkills = nil
		s.Opportunities = nil
	case StageContextRetrieval:
		s.ContextDocs = nil
	case StageGeneration:
		s.Recommendations = []types.SkillRecommendation{}
		s.required = map[string]bool{}
	case StageValidation:
		s.Recommendations = []types.SkillRecommendation{}
		s.Reasoning = failureReasoning(s.Variant)
	}
}

func (s *State) response() *types.RecommendationResponse {
	recs := s.Recommendations
	if recs == nil {
		recs = []types.SkillRecommendation{}
	}
	resp := &types.RecommendationResponse{
		MemberName:           s.MemberName,
		RecommendationType:   s.Variant,
		Recommendations:      recs,
		Reasoning:            s.Reasoning,
		TotalRecommendations: len(recs),
		ContextSources:       contextSources(s),
	}
	if s.RunID != uuid.Nil {
		resp.RunID = s.RunID.String()
	}
	if s.Dynamic && s.Trends != nil {
		resp.TrendsAnalyzed = len(s.Trends.Trends)
	}
	return resp
}
