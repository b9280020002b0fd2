// Package parsing turns language model output into structured skill recommendations.
package parsing

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"

	"github.com/jonathan/skill-recommender/internal/llm"
	"github.com/jonathan/skill-recommender/internal/schemas"
	"github.com/jonathan/skill-recommender/internal/types"
)

// Output is a parsed model answer.
type Output struct {
	Reasoning       string                      `json:"reasoning"`
	Recommendations []types.SkillRecommendation `json:"recommendations"`
}

// PlaceholderReasoning accompanies the placeholder recommendation.
const PlaceholderReasoning = "Generated recommendations based on current industry trends"

// Placeholder is the single recommendation returned in place of unparseable model output.
func Placeholder() []types.SkillRecommendation {
	return []types.SkillRecommendation{{
		SkillName:       "Skill Analysis Required",
		Description:     "Please review the LLM response for detailed recommendations",
		Priority:        types.PriorityMedium,
		LearningPath:    []string{"Review current trends", "Identify skill gaps", "Create learning plan"},
		EstimatedTime:   "4-8 weeks",
		SourceDocuments: []string{"Industry trends", "Market analysis"},
		MarketDemand:    types.PriorityMedium,
		TrendRelevance:  "Based on current industry analysis",
	}}
}

// steps is a list field that models sometimes send as a single string.
type steps []string

func (s *steps) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*s = steps{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*s = many
	return nil
}

type rawRecommendation struct {
	SkillName       string `json:"skill_name"`
	Description     string `json:"description"`
	Priority        string `json:"priority"`
	LearningPath    steps  `json:"learning_path"`
	EstimatedTime   string `json:"estimated_time"`
	SourceDocuments steps  `json:"source_documents"`
	SourceEvidence  steps  `json:"source_evidence"`
	MarketDemand    string `json:"market_demand"`
	TrendRelevance  string `json:"trend_relevance"`
}

type rawOutput struct {
	Reasoning       string            `json:"reasoning"`
	Recommendations []json.RawMessage `json:"recommendations"`
}

// ParseRecommendations accepts {"reasoning", "recommendations": [...]} or a bare array,
// optionally wrapped in code fences or surrounding prose. Anything else is a *ParseError
// carrying the raw text. Items that are malformed on their own are skipped; items without
// a skill name are kept for ranking to drop.
func ParseRecommendations(raw string) (*Output, error) {
	text, ok := llm.ExtractJSON(llm.CleanJSONBlock(raw))
	if !ok {
		return nil, &ParseError{Message: "no JSON object or array in model output", Raw: raw}
	}

	if err := schemas.ValidateRecommendations(text); err != nil {
		return nil, &ParseError{Message: "model output does not match recommendation schema", Raw: raw, Cause: err}
	}

	var out rawOutput
	if strings.HasPrefix(text, "[") {
		if err := json.Unmarshal([]byte(text), &out.Recommendations); err != nil {
			return nil, &ParseError{Message: "failed to decode recommendation list", Raw: raw, Cause: err}
		}
	} else if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, &ParseError{Message: "failed to decode recommendation object", Raw: raw, Cause: err}
	}

	parsed := &Output{
		Reasoning:       strings.TrimSpace(out.Reasoning),
		Recommendations: make([]types.SkillRecommendation, 0, len(out.Recommendations)),
	}
	for i, item := range out.Recommendations {
		r, err := decodeItem(item)
		if err != nil {
			log.Printf("[PARSING] Skipping recommendation %d: %v", i, err)
			continue
		}
		parsed.Recommendations = append(parsed.Recommendations, r.toRecommendation())
	}
	return parsed, nil
}

func decodeItem(item json.RawMessage) (rawRecommendation, error) {
	var r rawRecommendation
	if err := schemas.ValidateRecommendationItem(string(item)); err != nil {
		return r, err
	}
	if err := json.Unmarshal(item, &r); err != nil {
		return r, err
	}
	return r, nil
}

func (r rawRecommendation) toRecommendation() types.SkillRecommendation {
	sources := r.SourceDocuments
	if len(sources) == 0 {
		sources = r.SourceEvidence
	}

	rec := types.SkillRecommendation{
		SkillName:       strings.TrimSpace(r.SkillName),
		Description:     strings.TrimSpace(r.Description),
		Priority:        types.ParsePriority(r.Priority),
		LearningPath:    trimAll(r.LearningPath),
		EstimatedTime:   strings.TrimSpace(r.EstimatedTime),
		SourceDocuments: trimAll(sources),
		TrendRelevance:  strings.TrimSpace(r.TrendRelevance),
	}
	if rec.Priority == "" {
		rec.Priority = types.PriorityMedium
	}
	if strings.TrimSpace(r.MarketDemand) != "" {
		rec.MarketDemand = types.ParsePriority(r.MarketDemand)
	}
	return rec
}

func trimAll(list []string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Generate sends prompt to the model and parses the reply. A failed call is an
// *APICallError; a reply that cannot be parsed is a *ParseError.
func Generate(ctx context.Context, client llm.Client, prompt string, tier llm.ModelTier) (*Output, error) {
	if client == nil {
		return nil, &APICallError{Message: "no language model client configured"}
	}

	responseText, err := client.GenerateJSON(ctx, prompt, tier)
	if err != nil {
		return nil, &APICallError{
			Model:   client.GetModel(tier),
			Message: "failed to generate recommendations",
			Cause:   err,
		}
	}

	return ParseRecommendations(responseText)
}

// OrPlaceholder resolves a Generate result the way callers degrade: a *ParseError yields
// the placeholder recommendation, any other error yields nothing.
func OrPlaceholder(out *Output, err error) *Output {
	if err == nil {
		return out
	}
	var perr *ParseError
	if errors.As(err, &perr) {
		return &Output{Reasoning: PlaceholderReasoning, Recommendations: Placeholder()}
	}
	return &Output{Recommendations: []types.SkillRecommendation{}}
}
