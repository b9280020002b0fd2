package trends

import "github.com/jonathan/skill-recommender/internal/types"

const fallbackSource = "Curated"

// defaultFallbackRole is used for roles without their own fallback set.
const defaultFallbackRole = "Software Engineer"

var fallbackTrends = map[string][][2]string{
	"Data Engineer": {
		{"Data Engineering Best Practices", "Modern data engineering practices and tools"},
		{"Apache Airflow Adoption", "Growing adoption of workflow orchestration tools"},
		{"Cloud Data Platforms", "Migration to cloud-based data platforms"},
	},
	"Data Architect": {
		{"Data Architecture Patterns", "Modern data architecture design patterns"},
		{"Data Governance", "Importance of data governance in modern organizations"},
		{"Data Mesh Architecture", "Emerging data mesh architectural patterns"},
	},
	"Software Engineer": {
		{"Modern Software Development", "Current trends in software development"},
		{"Microservices Architecture", "Microservices and distributed systems"},
		{"Cloud-Native Development", "Cloud-native application development"},
	},
	"Frontend Developer": {
		{"Modern Frontend Frameworks", "Latest frontend development frameworks"},
		{"Web Performance", "Web performance optimization techniques"},
		{"Progressive Web Apps", "PWA development and adoption"},
	},
	"Data Scientist": {
		{"Machine Learning Trends", "Current trends in machine learning"},
		{"MLOps Practices", "Machine learning operations and deployment"},
		{"AI Ethics and Governance", "Ethical considerations in AI development"},
	},
	"DevOps Engineer": {
		{"DevOps Best Practices", "Modern DevOps practices and tools"},
		{"Container Orchestration", "Kubernetes and container management"},
		{"Infrastructure as Code", "IaC practices and tools"},
	},
}

// Fallback returns the static trends for role. Unknown roles get the Software Engineer set.
// The returned slice is freshly allocated and carries no relevance score.
func Fallback(role string) []types.Trend {
	entries, ok := fallbackTrends[role]
	if !ok {
		entries = fallbackTrends[defaultFallbackRole]
	}

	out := make([]types.Trend, 0, len(entries))
	for _, e := range entries {
		out = append(out, types.Trend{
			Type:        types.TrendFallback,
			Title:       e[0],
			Description: e[1],
			Source:      fallbackSource,
		})
	}
	return out
}

func fallbackBundle(role string, skills []string, reason string) *types.TrendBundle {
	fb := Fallback(role)
	return &types.TrendBundle{
		Role:      role,
		Skills:    skills,
		Timestamp: now(),
		Trends:    fb,
		Sources:   map[string]int{SourceFallback: len(fb)},
		Error:     reason,
	}
}
