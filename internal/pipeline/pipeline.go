// Package pipeline runs the staged recommendation workflow: role analysis or live trend
// fetch, gap analysis, context retrieval, model generation, then validation and ranking.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/skill-recommender/internal/llm"
	"github.com/jonathan/skill-recommender/internal/parsing"
	"github.com/jonathan/skill-recommender/internal/skills"
	"github.com/jonathan/skill-recommender/internal/types"
	"github.com/jonathan/skill-recommender/internal/vectorstore"
)

// Retriever is the document search the pipeline needs from the vector store.
type Retriever interface {
	Search(ctx context.Context, query string, k int) ([]vectorstore.Result, error)
	SearchSkills(ctx context.Context, skills []string, k int) ([]vectorstore.Result, error)
}

// TrendFetcher supplies live trend bundles. Implementations never fail; problems are
// reported in the bundle's Error field.
type TrendFetcher interface {
	Fetch(ctx context.Context, role string, skills []string) *types.TrendBundle
	FetchCross(ctx context.Context, role, targetRole string, skills []string) *types.TrendBundle
}

// Options wires a Pipeline. Only Table is required for a useful run; a missing
// collaborator degrades the stage that needs it.
type Options struct {
	Table    *skills.Table
	Store    Retriever
	Trends   TrendFetcher
	Client   llm.Client
	Tier     *llm.TierSelector
	Recorder Recorder
	Verbose  bool
}

// Pipeline is safe for concurrent use; every run owns its State.
type Pipeline struct {
	table    *skills.Table
	store    Retriever
	trends   TrendFetcher
	client   llm.Client
	tier     *llm.TierSelector
	recorder Recorder
	verbose  bool
}

// teamConcurrency bounds parallel member runs in RunTeam.
const teamConcurrency = 4

// New builds a pipeline from opts.
func New(opts Options) *Pipeline {
	p := &Pipeline{
		table:    opts.Table,
		store:    opts.Store,
		trends:   opts.Trends,
		client:   opts.Client,
		tier:     opts.Tier,
		recorder: opts.Recorder,
		verbose:  opts.Verbose,
	}
	if p.table == nil {
		p.table = skills.NewTable(nil)
	}
	if p.tier == nil {
		p.tier = llm.NewTierSelector(llm.TierStandard)
	}
	if p.recorder == nil {
		p.recorder = NopRecorder{}
	}
	return p
}

// Tier returns the selector used for generation so callers can switch models.
func (p *Pipeline) Tier() *llm.TierSelector {
	return p.tier
}

// Recommend normalizes and validates req, then runs it. Only invalid input is an error.
func (p *Pipeline) Recommend(ctx context.Context, req types.RecommendationRequest) (*types.RecommendationResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, &parsing.ValidationError{Field: "request", Message: err.Error()}
	}
	return p.Run(ctx, req), nil
}

// Run executes one recommendation run. It always returns a response; if anything escapes
// the stages the response is empty and its reasoning describes the failure.
func (p *Pipeline) Run(ctx context.Context, req types.RecommendationRequest) (resp *types.RecommendationResponse) {
	s := newState(req)

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[PIPELINE] Run for %s panicked: %v\n%s", s.MemberName, r, debug.Stack())
			resp = failedResponse(s, fmt.Errorf("%v", r))
			p.complete(ctx, s, types.RunStatusFailed, resp)
		}
	}()

	s.RunID = startRun(ctx, p.recorder, req)
	if p.verbose {
		log.Printf("[PIPELINE] Run %s: %s for %s (%s)", s.RunID, s.Variant, s.MemberName, s.Role)
	}

	for s.Stage = Next(StageStart, s.Dynamic); s.Stage != StageDone; s.Stage = Next(s.Stage, s.Dynamic) {
		p.step(ctx, s)
	}

	resp = s.response()
	p.complete(ctx, s, types.RunStatusCompleted, resp)
	return resp
}

// RunTeam runs one recommendation per member. Cross-skill runs use the adjacency table
// since members carry no target role.
func (p *Pipeline) RunTeam(ctx context.Context, members []types.TeamMember, variant types.RecommendationType, dynamic bool) []*types.RecommendationResponse {
	out := make([]*types.RecommendationResponse, len(members))

	g := new(errgroup.Group)
	g.SetLimit(teamConcurrency)
	for i, m := range members {
		g.Go(func() error {
			out[i] = p.Run(ctx, types.RecommendationRequest{
				MemberName:         m.Name,
				Role:               m.Role,
				Skills:             m.Skills,
				RecommendationType: variant,
				YearsExperience:    m.YearsExperience,
				Dynamic:            dynamic,
			})
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// step runs the handler for the current stage. A returned error or panic resets the
// stage's outputs and the run continues with the next stage.
func (p *Pipeline) step(ctx context.Context, s *State) {
	stage := s.Stage
	start := time.Now()

	err := safely(func() error { return p.handler(stage)(ctx, s) })

	rec := types.StageRecord{
		Stage:      stage.String(),
		Status:     types.StageStatusCompleted,
		DurationMS: time.Since(start).Milliseconds(),
	}
	if err != nil {
		log.Printf("[PIPELINE] Stage %s failed for %s, continuing with defaults: %v", stage, s.MemberName, err)
		s.reset(stage)
		rec.Status = types.StageStatusDegraded
		rec.Error = err.Error()
	} else if p.verbose {
		log.Printf("[PIPELINE] Stage %s completed in %dms", stage, rec.DurationMS)
	}

	if rerr := p.recorder.RecordStage(ctx, s.RunID, rec); rerr != nil {
		log.Printf("[PIPELINE] Warning: failed to record stage %s: %v", stage, rerr)
	}
}

func (p *Pipeline) handler(stage Stage) func(context.Context, *State) error {
	switch stage {
	case StageAnalyzeRole:
		return p.analyzeRole
	case StageFetchTrends:
		return p.fetchTrends
	case StageGapAnalysis:
		return p.analyzeGaps
	case StageContextRetrieval:
		return p.retrieveContext
	case StageGeneration:
		return p.generate
	case StageValidation:
		return p.validate
	default:
		return func(context.Context, *State) error { return nil }
	}
}

func (p *Pipeline) complete(ctx context.Context, s *State, status string, resp *types.RecommendationResponse) {
	if err := p.recorder.CompleteRun(ctx, s.RunID, status, resp); err != nil {
		log.Printf("[PIPELINE] Warning: failed to record run completion: %v", err)
	}
}

func safely(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

func failedResponse(s *State, cause error) *types.RecommendationResponse {
	resp := &types.RecommendationResponse{
		MemberName:         s.MemberName,
		RecommendationType: s.Variant,
		Recommendations:    []types.SkillRecommendation{},
		Reasoning:          fmt.Sprintf("%s: %v", failurePrefix(s.Variant), cause),
		ContextSources:     []string{},
	}
	if s.RunID != uuid.Nil {
		resp.RunID = s.RunID.String()
	}
	return resp
}
