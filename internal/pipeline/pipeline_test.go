package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/skill-recommender/internal/llm"
	"github.com/jonathan/skill-recommender/internal/parsing"
	"github.com/jonathan/skill-recommender/internal/skills"
	"github.com/jonathan/skill-recommender/internal/types"
	"github.com/jonathan/skill-recommender/internal/vectorstore"
)

type fakeLLM struct {
	mu      sync.Mutex
	reply   string
	err     error
	panics  bool
	prompts []string
}

func (f *fakeLLM) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return f.GenerateJSON(ctx, prompt, tier)
}

func (f *fakeLLM) GenerateJSON(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	if f.panics {
		panic("model exploded")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

func (f *fakeLLM) GetModel(tier llm.ModelTier) string { return string(tier) }
func (f *fakeLLM) Close() error                       { return nil }

func (f *fakeLLM) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

type fakeRetriever struct {
	mu      sync.Mutex
	queries []string
	err     error
	panics  bool
}

func (f *fakeRetriever) Search(_ context.Context, query string, k int) ([]vectorstore.Result, error) {
	if f.panics {
		panic("index corrupted")
	}
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]vectorstore.Result, 0, k)
	for i := 0; i < k; i++ {
		out = append(out, vectorstore.Result{
			Document: "Guide on " + query,
			Score:    0.9,
			Metadata: map[string]string{"source": "handbook"},
		})
	}
	return out, nil
}

func (f *fakeRetriever) SearchSkills(ctx context.Context, skills []string, k int) ([]vectorstore.Result, error) {
	return f.Search(ctx, strings.Join(skills, " "), k)
}

type fakeTrends struct {
	bundle *types.TrendBundle
	cross  int
}

func (f *fakeTrends) Fetch(context.Context, string, []string) *types.TrendBundle {
	return f.bundle
}

func (f *fakeTrends) FetchCross(context.Context, string, string, []string) *types.TrendBundle {
	f.cross++
	return f.bundle
}

type fakeRecorder struct {
	mu       sync.Mutex
	id       uuid.UUID
	startErr error
	stages   []types.StageRecord
	status   string
	resp     *types.RecommendationResponse
}

func (f *fakeRecorder) StartRun(context.Context, types.RecommendationRequest) (uuid.UUID, error) {
	return f.id, f.startErr
}

func (f *fakeRecorder) RecordStage(_ context.Context, _ uuid.UUID, rec types.StageRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stages = append(f.stages, rec)
	return nil
}

func (f *fakeRecorder) CompleteRun(_ context.Context, _ uuid.UUID, status string, resp *types.RecommendationResponse) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = status
	f.resp = resp
	return errors.New("database unavailable")
}

func (f *fakeRecorder) stageNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.stages))
	for _, s := range f.stages {
		names = append(names, s.Stage)
	}
	return names
}

const modelReply = `{
	"reasoning": "model reasoning is ignored",
	"recommendations": [
		{"skill_name": "Docker", "priority": "High", "learning_path": ["Containers 101"], "estimated_time": "3 weeks", "source_documents": ["handbook"]},
		{"skill_name": "Kubernetes", "priority": "High"},
		{"skill_name": "System Design", "priority": "Medium"}
	]
}`

func engineerRequest() types.RecommendationRequest {
	return types.RecommendationRequest{
		MemberName:         "Alice",
		Role:               "Software Engineer",
		Skills:             []string{"Python"},
		RecommendationType: types.RecommendationUpskill,
		YearsExperience:    2,
	}
}

func newTestPipeline(client llm.Client, store Retriever, rec Recorder) *Pipeline {
	return New(Options{
		Table:    skills.DefaultTable(),
		Store:    store,
		Client:   client,
		Recorder: rec,
	})
}

func TestRun_UpskillMissingCoreAtHigh(t *testing.T) {
	client := &fakeLLM{reply: modelReply}
	store := &fakeRetriever{}
	p := newTestPipeline(client, store, nil)

	resp := p.Run(t.Context(), engineerRequest())

	require.Len(t, resp.Recommendations, MaxUpskill)
	assert.Equal(t, MaxUpskill, resp.TotalRecommendations)
	names := make([]string, 0, len(resp.Recommendations))
	for _, r := range resp.Recommendations {
		assert.Equal(t, types.PriorityHigh, r.Priority)
		names = append(names, r.SkillName)
	}
	assert.ElementsMatch(t, []string{"JavaScript", "Git", "SQL", "Data Structures", "Testing"}, names)

	assert.Equal(t, "Identified 5 missing core skills for the Software Engineer role. "+
		"Recommended 2 advanced skills for career progression. "+
		"As a junior professional, prioritize building strong foundational skills.", resp.Reasoning)
	assert.NotEmpty(t, resp.RunID)
	assert.Equal(t, []string{"handbook", "handbook", "handbook", "handbook", "handbook"}, resp.ContextSources)
	assert.Zero(t, resp.TrendsAnalyzed)

	require.Len(t, store.queries, 2)
	assert.Equal(t, "Software Engineer role skills career development requirements", store.queries[0])
	assert.Equal(t, "Python", store.queries[1])

	prompt := client.lastPrompt()
	assert.Contains(t, prompt, "Alice")
	assert.Contains(t, prompt, "Source 1 (handbook)")
}

func TestRun_AppendedGapSkillDetails(t *testing.T) {
	client := &fakeLLM{reply: `[]`}
	p := newTestPipeline(client, nil, nil)

	resp := p.Run(t.Context(), engineerRequest())

	require.NotEmpty(t, resp.Recommendations)
	first := resp.Recommendations[0]
	assert.Equal(t, "JavaScript", first.SkillName)
	assert.Equal(t, "Core skill required for Software Engineer role", first.Description)
	assert.Equal(t, []string{"Role requirements"}, first.SourceDocuments)
	assert.Equal(t, "1 month", first.EstimatedTime)
	assert.NotEmpty(t, first.LearningPath)
	assert.Empty(t, resp.ContextSources)
}

func TestRun_ModelErrorKeepsGapSkills(t *testing.T) {
	client := &fakeLLM{err: errors.New("quota exceeded")}
	p := newTestPipeline(client, nil, nil)

	req := engineerRequest()
	req.Skills = []string{"Python", "JavaScript", "Git", "SQL", "Data Structures"}
	resp := p.Run(t.Context(), req)

	require.Len(t, resp.Recommendations, 1)
	assert.Equal(t, "Testing", resp.Recommendations[0].SkillName)
}

func TestRun_NamelessItemDoesNotDiscardReply(t *testing.T) {
	client := &fakeLLM{reply: `[
		{"skill_name": "Docker", "priority": "High", "learning_path": "Containers 101"},
		{"skill_name": "Kubernetes", "priority": "High"},
		{"description": "model forgot the name", "priority": "High"}
	]`}
	p := newTestPipeline(client, nil, nil)

	req := engineerRequest()
	req.Skills = []string{"Python", "JavaScript", "Git", "SQL", "Data Structures"}
	resp := p.Run(t.Context(), req)

	names := make([]string, 0, len(resp.Recommendations))
	for _, r := range resp.Recommendations {
		names = append(names, r.SkillName)
	}
	assert.ElementsMatch(t, []string{"Docker", "Kubernetes", "Testing"}, names)
}

func TestRun_UnparseableOutputUsesPlaceholder(t *testing.T) {
	client := &fakeLLM{reply: "I cannot help with that."}
	p := newTestPipeline(client, nil, nil)

	req := engineerRequest()
	req.Role = "Astronaut"
	resp := p.Run(t.Context(), req)

	require.Len(t, resp.Recommendations, 1)
	assert.Equal(t, parsing.Placeholder()[0].SkillName, resp.Recommendations[0].SkillName)
	assert.Equal(t, "As a junior professional, prioritize building strong foundational skills.", resp.Reasoning)
}

func TestRun_CrossSkillWithTarget(t *testing.T) {
	client := &fakeLLM{reply: `{"reasoning": "", "recommendations": [
		{"skill_name": "Statistics", "priority": "Medium", "market_demand": "High"},
		{"skill_name": "Tableau", "priority": "Medium", "market_demand": "Low"}
	]}`}
	store := &fakeRetriever{}
	p := newTestPipeline(client, store, nil)

	req := types.RecommendationRequest{
		MemberName:         "Bob",
		Role:               "Data Engineer",
		Skills:             []string{"Python", "SQL"},
		RecommendationType: types.RecommendationCrossSkill,
		TargetRole:         "Data Scientist",
		YearsExperience:    6,
	}
	resp := p.Run(t.Context(), req)

	assert.Equal(t, types.RecommendationCrossSkill, resp.RecommendationType)
	assert.LessOrEqual(t, len(resp.Recommendations), MaxCrossSkill)
	require.NotEmpty(t, resp.Recommendations)
	assert.Equal(t, "Statistics", resp.Recommendations[0].SkillName)

	assert.True(t, strings.HasPrefix(resp.Reasoning, "Identified 1 adjacent roles that complement your Data Engineer expertise."))
	assert.True(t, strings.HasSuffix(resp.Reasoning, "Your senior experience makes you well-positioned for cross-functional leadership roles."))

	require.Len(t, store.queries, 2)
	assert.Equal(t, "cross-functional skills interdisciplinary Data Engineer adjacent roles", store.queries[0])
	assert.Equal(t, emergingQuery, store.queries[1])

	prompt := client.lastPrompt()
	assert.Contains(t, prompt, "Data Scientist")
	assert.Contains(t, prompt, "6. Specific skills needed to transition to Data Scientist role")
}

func TestAnalyzeRole_TargetCollapsesAdjacentRoles(t *testing.T) {
	p := newTestPipeline(nil, nil, nil)

	s := newState(types.RecommendationRequest{
		Role:               "Data Engineer",
		RecommendationType: types.RecommendationCrossSkill,
		TargetRole:         "Data Scientist",
	})
	require.NoError(t, p.analyzeRole(t.Context(), s))
	assert.Equal(t, []string{"Data Scientist"}, s.AdjacentRoles)
	assert.NotEmpty(t, s.IndustryTrends)

	s = newState(types.RecommendationRequest{Role: "Data Engineer", RecommendationType: types.RecommendationCrossSkill})
	require.NoError(t, p.analyzeRole(t.Context(), s))
	assert.Equal(t, skills.AdjacentRoles("Data Engineer"), s.AdjacentRoles)
}

func TestRun_DynamicUsesTrendsInsteadOfStore(t *testing.T) {
	client := &fakeLLM{reply: modelReply}
	store := &fakeRetriever{}
	fetcher := &fakeTrends{bundle: &types.TrendBundle{
		Role: "Software Engineer",
		Trends: []types.Trend{
			{Type: types.TrendRepository, Name: "awesome-rust", Description: "Rust tooling", Source: "GitHub Trending", Skill: "Rust"},
			{Type: types.TrendJobMarket, Skill: "Go", Demand: "High", Source: "Job Market Analysis"},
		},
		Sources: map[string]int{"github_trending": 1, "job_market": 1, "tech_blogs": 0},
	}}
	rec := &fakeRecorder{id: uuid.New()}
	p := New(Options{Table: skills.DefaultTable(), Store: store, Trends: fetcher, Client: client, Recorder: rec})

	req := engineerRequest()
	req.Dynamic = true
	resp := p.Run(t.Context(), req)

	assert.Empty(t, store.queries)
	assert.Equal(t, 2, resp.TrendsAnalyzed)
	assert.Equal(t, []string{"github_trending: 1 items", "job_market: 1 items"}, resp.ContextSources)
	assert.Equal(t, rec.id.String(), resp.RunID)

	prompt := client.lastPrompt()
	assert.Contains(t, prompt, "1. REPOSITORY: awesome-rust")
	assert.Contains(t, prompt, "   Description: Rust tooling...")
	assert.Contains(t, prompt, "2. JOB_MARKET: Go")

	assert.Equal(t, []string{"fetch_trends", "gap_analysis", "context_retrieval", "generation", "validation_and_ranking"}, rec.stageNames())
	assert.Equal(t, types.RunStatusCompleted, rec.status)
	assert.Same(t, resp, rec.resp)
}

func TestRun_DynamicCrossUsesLiveTrendingSkills(t *testing.T) {
	fetcher := &fakeTrends{bundle: &types.TrendBundle{
		Trends:  []types.Trend{{Type: types.TrendLearning, Skill: "Rust", Source: "Learning Platforms"}},
		Sources: map[string]int{"learning_platforms": 1},
	}}
	p := New(Options{Table: skills.DefaultTable(), Trends: fetcher, Client: &fakeLLM{reply: "[]"}})

	s := newState(types.RecommendationRequest{
		Role:               "QA Engineer",
		Skills:             []string{"Python"},
		RecommendationType: types.RecommendationCrossSkill,
		Dynamic:            true,
	})
	require.NoError(t, p.fetchTrends(t.Context(), s))
	assert.Equal(t, 1, fetcher.cross)
	assert.Equal(t, []string{"Rust"}, s.IndustryTrends)
}

func TestRun_DynamicWithoutFetcherDegrades(t *testing.T) {
	rec := &fakeRecorder{id: uuid.New()}
	p := New(Options{Table: skills.DefaultTable(), Client: &fakeLLM{reply: "[]"}, Recorder: rec})

	req := engineerRequest()
	req.Dynamic = true
	resp := p.Run(t.Context(), req)

	assert.Zero(t, resp.TrendsAnalyzed)
	assert.Empty(t, resp.ContextSources)
	require.NotEmpty(t, rec.stages)
	assert.Equal(t, types.StageStatusDegraded, rec.stages[0].Status)
	assert.Contains(t, rec.stages[0].Error, "not configured")
	assert.Len(t, resp.Recommendations, MaxUpskill)
}

func TestRun_PanickingCollaboratorsDegrade(t *testing.T) {
	rec := &fakeRecorder{id: uuid.New()}
	p := newTestPipeline(&fakeLLM{panics: true}, &fakeRetriever{panics: true}, rec)

	resp := p.Run(t.Context(), engineerRequest())

	require.NotNil(t, resp)
	assert.Empty(t, resp.Recommendations)
	assert.NotNil(t, resp.Recommendations)
	assert.Equal(t, "Identified 5 missing core skills for the Software Engineer role. "+
		"Recommended 2 advanced skills for career progression. "+
		"As a junior professional, prioritize building strong foundational skills.", resp.Reasoning)

	statuses := map[string]string{}
	for _, st := range rec.stages {
		statuses[st.Stage] = st.Status
	}
	assert.Equal(t, types.StageStatusDegraded, statuses["context_retrieval"])
	assert.Equal(t, types.StageStatusDegraded, statuses["generation"])
	assert.Equal(t, types.StageStatusCompleted, statuses["validation_and_ranking"])
}

func TestRun_StoreErrorDegrades(t *testing.T) {
	p := newTestPipeline(&fakeLLM{reply: "[]"}, &fakeRetriever{err: errors.New("timeout")}, nil)

	resp := p.Run(t.Context(), engineerRequest())
	assert.Empty(t, resp.ContextSources)
	assert.Len(t, resp.Recommendations, MaxUpskill)
}

func TestRun_RecorderStartFailureStillRuns(t *testing.T) {
	rec := &fakeRecorder{startErr: errors.New("no database")}
	p := newTestPipeline(&fakeLLM{reply: "[]"}, nil, rec)

	resp := p.Run(t.Context(), engineerRequest())
	assert.NotEmpty(t, resp.RunID)
	assert.NotEqual(t, uuid.Nil.String(), resp.RunID)
}

func TestRun_ReasoningIsDeterministic(t *testing.T) {
	p := newTestPipeline(&fakeLLM{reply: modelReply}, nil, nil)

	a := p.Run(t.Context(), engineerRequest())
	b := p.Run(t.Context(), engineerRequest())
	assert.Equal(t, a.Reasoning, b.Reasoning)
	assert.Equal(t, a.Recommendations, b.Recommendations)
	assert.NotEqual(t, a.RunID, b.RunID)
}

func TestRecommend_ValidatesInput(t *testing.T) {
	p := newTestPipeline(&fakeLLM{reply: "[]"}, nil, nil)

	req := engineerRequest()
	req.Skills = []string{"  "}
	_, err := p.Recommend(t.Context(), req)
	var verr *parsing.ValidationError
	require.ErrorAs(t, err, &verr)

	req = engineerRequest()
	req.RecommendationType = types.RecommendationCrossSkill
	_, err = p.Recommend(t.Context(), req)
	require.ErrorAs(t, err, &verr)

	req = engineerRequest()
	req.RecommendationType = " UPSKILL "
	resp, err := p.Recommend(t.Context(), req)
	require.NoError(t, err)
	assert.Equal(t, types.RecommendationUpskill, resp.RecommendationType)
}

func TestRunTeam(t *testing.T) {
	p := newTestPipeline(&fakeLLM{reply: "[]"}, nil, nil)

	members := []types.TeamMember{
		{Name: "Alice", Role: "Software Engineer", Skills: []string{"Python"}, YearsExperience: 2},
		{Name: "Bob", Role: "Data Engineer", Skills: []string{"SQL"}, YearsExperience: 4},
		{Name: "Carol", Role: "QA Engineer", Skills: []string{"Selenium"}},
		{Name: "Dan", Role: "DevOps Engineer", Skills: []string{"Docker"}},
		{Name: "Eve", Role: "Data Scientist", Skills: []string{"Python"}},
	}
	out := p.RunTeam(t.Context(), members, types.RecommendationCrossSkill, false)

	require.Len(t, out, len(members))
	for i, resp := range out {
		require.NotNil(t, resp)
		assert.Equal(t, members[i].Name, resp.MemberName)
		assert.Equal(t, types.RecommendationCrossSkill, resp.RecommendationType)
		assert.LessOrEqual(t, len(resp.Recommendations), MaxCrossSkill)
	}
}

func TestFailedResponse(t *testing.T) {
	s := newState(types.RecommendationRequest{MemberName: "Alice", RecommendationType: types.RecommendationCrossSkill})
	resp := failedResponse(s, errors.New("boom"))
	assert.Equal(t, "Failed to generate cross-skill recommendations: boom", resp.Reasoning)
	assert.Empty(t, resp.RunID)
	assert.NotNil(t, resp.Recommendations)
	assert.Zero(t, resp.TotalRecommendations)
}

func TestNext(t *testing.T) {
	static := []Stage{}
	for s := Next(StageStart, false); s != StageDone; s = Next(s, false) {
		static = append(static, s)
	}
	assert.Equal(t, []Stage{StageAnalyzeRole, StageGapAnalysis, StageContextRetrieval, StageGeneration, StageValidation}, static)

	assert.Equal(t, StageFetchTrends, Next(StageStart, true))
	assert.Equal(t, StageGapAnalysis, Next(StageFetchTrends, true))
	assert.Equal(t, StageDone, Next(StageValidation, true))
	assert.Equal(t, StageDone, Next(StageDone, false))
	assert.Equal(t, "validation_and_ranking", StageValidation.String())
	assert.Equal(t, "unknown", Stage(42).String())
}

func TestState_ResetValidation(t *testing.T) {
	s := newState(engineerRequest())
	s.Recommendations = []types.SkillRecommendation{{SkillName: "Go"}}
	s.reset(StageValidation)
	assert.Empty(t, s.Recommendations)
	assert.Equal(t, "Failed to generate recommendations due to an error.", s.Reasoning)
}
