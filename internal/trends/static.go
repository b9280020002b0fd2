package trends

import (
	"context"

	"github.com/jonathan/skill-recommender/internal/types"
)

// LearningSource reports skills trending on learning platforms.
type LearningSource struct{}

func (LearningSource) Name() string { return SourceLearning }

func (LearningSource) Fetch(context.Context, string, []string) ([]types.Trend, error) {
	return []types.Trend{
		{Type: types.TrendLearning, Skill: "Machine Learning", Source: "Coursera", Growth: "increasing", Popularity: 150},
		{Type: types.TrendLearning, Skill: "DevOps", Source: "Udemy", Growth: "increasing", Popularity: 89},
		{Type: types.TrendLearning, Skill: "Data Engineering", Source: "edX", Growth: "increasing", Popularity: 45},
		{Type: types.TrendLearning, Skill: "Cloud Computing", Source: "Coursera", Growth: "increasing", Popularity: 120},
	}, nil
}

type jobDemand struct {
	skill, demand, growth string
}

var jobMarket = map[string][]jobDemand{
	"Data Engineer": {
		{"Apache Airflow", "high", "+25%"},
		{"Snowflake", "high", "+30%"},
		{"dbt", "medium", "+40%"},
		{"Kubernetes", "medium", "+15%"},
	},
	"Data Architect": {
		{"Data Modeling", "high", "+20%"},
		{"Snowflake", "high", "+30%"},
		{"Data Governance", "high", "+35%"},
		{"ETL Design", "medium", "+25%"},
	},
	"Software Engineer": {
		{"React", "high", "+20%"},
		{"Python", "high", "+25%"},
		{"TypeScript", "high", "+35%"},
		{"Docker", "medium", "+18%"},
	},
	"Frontend Developer": {
		{"React", "high", "+25%"},
		{"TypeScript", "high", "+40%"},
		{"Next.js", "high", "+50%"},
		{"Tailwind CSS", "medium", "+30%"},
	},
	"Data Scientist": {
		{"Machine Learning", "high", "+30%"},
		{"Deep Learning", "high", "+40%"},
		{"MLOps", "medium", "+50%"},
		{"A/B Testing", "medium", "+20%"},
	},
	"DevOps Engineer": {
		{"Kubernetes", "high", "+35%"},
		{"Terraform", "high", "+45%"},
		{"AWS", "high", "+25%"},
		{"GitOps", "medium", "+60%"},
	},
}

// JobMarketSource reports in-demand skills per role. Unknown roles use the Software Engineer table.
type JobMarketSource struct{}

func (JobMarketSource) Name() string { return SourceJobMarket }

func (JobMarketSource) Fetch(_ context.Context, role string, _ []string) ([]types.Trend, error) {
	rows, ok := jobMarket[role]
	if !ok {
		rows = jobMarket[defaultFallbackRole]
	}
	out := make([]types.Trend, 0, len(rows))
	for _, r := range rows {
		out = append(out, types.Trend{
			Type:   types.TrendJobMarket,
			Skill:  r.skill,
			Demand: r.demand,
			Growth: r.growth,
			Source: "Job market",
		})
	}
	return out, nil
}
