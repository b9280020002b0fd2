package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/jonathan/skill-recommender/internal/parsing"
	"github.com/jonathan/skill-recommender/internal/prompts"
	"github.com/jonathan/skill-recommender/internal/skills"
	"github.com/jonathan/skill-recommender/internal/trends"
	"github.com/jonathan/skill-recommender/internal/types"
	"github.com/jonathan/skill-recommender/internal/vectorstore"
)

// Vector search queries and result counts.
const (
	roleQueryK   = 3
	skillQueryK  = 2
	crossQueryK  = 3
	trendQueryK  = 2
	crossAppends = 3
)

const (
	crossQueryFormat = "cross-functional skills interdisciplinary %s adjacent roles"
	emergingQuery    = "emerging skills technology trends career development"
	roleQueryFormat  = "%s role skills career development requirements"
)

// analyzeRole loads the role profile. Cross-skill runs also resolve adjacent roles,
// which collapse to exactly the target role when one is given, and industry trends.
func (p *Pipeline) analyzeRole(_ context.Context, s *State) error {
	s.Profile = p.table.Profile(s.Role)
	if !s.isCross() {
		return nil
	}

	if s.TargetRole != "" {
		s.AdjacentRoles = []string{s.TargetRole}
	} else {
		s.AdjacentRoles = skills.AdjacentRoles(s.Role)
	}
	s.IndustryTrends = skills.IndustryTrends(s.Role)
	return nil
}

// fetchTrends is the dynamic-mode entry stage: role analysis plus a live trend bundle.
// Cross-skill runs replace the static industry trends with skills named by live trends.
func (p *Pipeline) fetchTrends(ctx context.Context, s *State) error {
	if err := p.analyzeRole(ctx, s); err != nil {
		return err
	}
	if p.trends == nil {
		return errors.New("trend aggregation is not configured")
	}

	if s.isCross() {
		s.Trends = p.trends.FetchCross(ctx, s.Role, s.TargetRole, s.Skills)
	} else {
		s.Trends = p.trends.Fetch(ctx, s.Role, s.Skills)
	}
	if s.Trends == nil {
		return errors.New("trend aggregation returned no bundle")
	}
	if s.Trends.Error != "" {
		log.Printf("[PIPELINE] Trend fetch for %s used fallback data: %s", s.Role, s.Trends.Error)
	}

	if s.isCross() {
		live := trends.CrossTrends(s.Trends.Trends)
		live = append(live, s.Trends.Trends...)
		if trending := skills.TrendingSkills(live); len(trending) > 0 {
			s.IndustryTrends = trending
		}
	}
	return nil
}

func (p *Pipeline) analyzeGaps(_ context.Context, s *State) error {
	if s.isCross() {
		profiles := make([]skills.Profile, 0, len(s.AdjacentRoles))
		for _, r := range s.AdjacentRoles {
			profiles = append(profiles, p.table.Profile(r))
		}
		s.Opportunities = skills.CrossOpportunities(profiles, s.Skills, skills.Complements, s.IndustryTrends)
		if p.verbose {
			log.Printf("[PIPELINE] Found %d cross-skilling opportunities across %d adjacent roles", len(s.Opportunities), len(s.AdjacentRoles))
		}
		return nil
	}

	s.MissingCore = skills.MissingCore(s.Profile, s.Skills)
	s.AdvancedSkills = skills.AdvancedCandidates(s.Profile, s.Skills, s.YearsExperience)
	if p.verbose {
		log.Printf("[PIPELINE] Identified %d missing core skills and %d advanced skills", len(s.MissingCore), len(s.AdvancedSkills))
	}
	return nil
}

// retrieveContext searches the document store. Dynamic runs already carry trend
// context and skip the search.
func (p *Pipeline) retrieveContext(ctx context.Context, s *State) error {
	if s.Dynamic || p.store == nil {
		return nil
	}

	var primary, secondary []vectorstore.Result
	var err error
	if s.isCross() {
		primary, err = p.store.Search(ctx, fmt.Sprintf(crossQueryFormat, s.Role), crossQueryK)
		if err != nil {
			return fmt.Errorf("cross-functional search failed: %w", err)
		}
		secondary, err = p.store.Search(ctx, emergingQuery, trendQueryK)
		if err != nil {
			return fmt.Errorf("emerging skills search failed: %w", err)
		}
	} else {
		primary, err = p.store.Search(ctx, fmt.Sprintf(roleQueryFormat, s.Role), roleQueryK)
		if err != nil {
			return fmt.Errorf("role search failed: %w", err)
		}
		secondary, err = p.store.SearchSkills(ctx, s.Skills, skillQueryK)
		if err != nil {
			return fmt.Errorf("skills search failed: %w", err)
		}
	}

	s.ContextDocs = append(primary, secondary...)
	return nil
}

// generate asks the model for recommendations, then appends gap skills the model did not
// name: missing core skills at High for upskill, the first three cross opportunities at
// Medium for cross-skill. Unparseable output becomes the placeholder recommendation.
func (p *Pipeline) generate(ctx context.Context, s *State) error {
	out, err := parsing.Generate(ctx, p.client, p.buildPrompt(s), p.tier.Get())
	if err != nil {
		log.Printf("[PIPELINE] Generation for %s degraded: %v", s.MemberName, err)
		var perr *parsing.ParseError
		if p.verbose && errors.As(err, &perr) {
			log.Printf("[PIPELINE] Model output: %s", perr.Snippet())
		}
	}
	out = parsing.OrPlaceholder(out, err)

	s.Recommendations = out.Recommendations
	if s.isCross() {
		limit := min(crossAppends, len(s.Opportunities))
		for _, sk := range s.Opportunities[:limit] {
			p.appendGap(s, sk, fmt.Sprintf("Cross-functional skill that complements your %s expertise", s.Role),
				types.PriorityMedium, skills.ComplexityMedium, "Cross-functional analysis")
		}
	} else {
		for _, sk := range s.MissingCore {
			p.appendGap(s, sk, fmt.Sprintf("Core skill required for %s role", s.Role),
				types.PriorityHigh, skills.ComplexityBasic, "Role requirements")
		}
	}
	return nil
}

func (p *Pipeline) appendGap(s *State, skill, description string, priority types.Priority, c skills.Complexity, source string) {
	for _, r := range s.Recommendations {
		if strings.EqualFold(strings.TrimSpace(r.SkillName), skill) {
			return
		}
	}
	s.Recommendations = append(s.Recommendations, types.SkillRecommendation{
		SkillName:       skill,
		Description:     description,
		Priority:        priority,
		LearningPath:    skills.LearningPath(skill),
		EstimatedTime:   skills.EstimateLearningTime(c, s.level()),
		SourceDocuments: []string{source},
	})
	s.required[strings.ToLower(skill)] = true
}

func (p *Pipeline) validate(_ context.Context, s *State) error {
	s.Recommendations = Rank(s.Recommendations, s.Variant, s.required)
	s.Reasoning = Reasoning(s)
	return nil
}

func (p *Pipeline) buildPrompt(s *State) string {
	contextText := formatContextDocs(s.ContextDocs)
	if s.Dynamic {
		var items []types.Trend
		if s.Trends != nil {
			items = s.Trends.Trends
		}
		contextText = formatTrends(items)
	}

	data := map[string]string{
		"MemberName":          s.MemberName,
		"Role":                s.Role,
		"Skills":              strings.Join(s.Skills, ", "),
		"YearsExperience":     strconv.Itoa(s.YearsExperience),
		"Context":             contextText,
		"TargetContext":       "",
		"TargetConsideration": "",
	}
	if s.isCross() && s.TargetRole != "" {
		index := "6"
		if s.Dynamic {
			index = "7"
		}
		target := map[string]string{"Role": s.Role, "TargetRole": s.TargetRole, "Index": index}
		data["TargetContext"] = prompts.Format(prompts.Recommendation(prompts.KeyTargetContext), target)
		data["TargetConsideration"] = prompts.Format(prompts.Recommendation(prompts.KeyTargetConsideration), target)
	}

	return prompts.Format(prompts.Recommendation(prompts.TemplateKey(s.isCross(), s.Dynamic)), data)
}
