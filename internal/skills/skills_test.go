package skills

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/skill-recommender/internal/types"
)

func TestDefaultTable(t *testing.T) {
	table := DefaultTable()
	assert.Equal(t, 11, table.Len())
	assert.True(t, table.Has("Software Engineer"))
	assert.False(t, table.Has("Astronaut"))

	p := table.Profile("Software Engineer")
	assert.Contains(t, p.CoreSkills, "Python")
	assert.NotEmpty(t, p.AdvancedSkills)
	assert.NotEmpty(t, p.CrossSkills)

	assert.Equal(t, Profile{}, table.Profile("Astronaut"))
	roles := table.Roles()
	assert.IsIncreasing(t, roles)
}

func TestLoadTable(t *testing.T) {
	t.Run("embedded", func(t *testing.T) {
		table, err := LoadTable(EmbeddedPath)
		require.NoError(t, err)
		assert.Equal(t, DefaultTable().Roles(), table.Roles())
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "roles.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"Tester":{"core_skills":["Go"],"advanced_skills":[],"cross_skills":[]}}`), 0o644))
		table, err := LoadTable(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"Tester"}, table.Roles())
		assert.Equal(t, []string{"Go"}, table.Profile("Tester").CoreSkills)
	})

	t.Run("missing file is empty", func(t *testing.T) {
		table, err := LoadTable(filepath.Join(t.TempDir(), "absent.json"))
		require.NoError(t, err)
		assert.Equal(t, 0, table.Len())
		assert.Equal(t, Profile{}, table.Profile("Software Engineer"))
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "roles.json")
		require.NoError(t, os.WriteFile(path, []byte(`{broken`), 0o644))
		table, err := LoadTable(path)
		require.Error(t, err)
		require.NotNil(t, table)
		assert.Equal(t, 0, table.Len())
	})
}

func TestNewTable_Copies(t *testing.T) {
	core := []string{"Go"}
	table := NewTable(map[string]Profile{"R": {CoreSkills: core}})
	core[0] = "changed"
	assert.Equal(t, []string{"Go"}, table.Profile("R").CoreSkills)
}

func TestNilTable(t *testing.T) {
	var table *Table
	assert.Equal(t, Profile{}, table.Profile("x"))
	assert.False(t, table.Has("x"))
	assert.Nil(t, table.Roles())
	assert.Zero(t, table.Len())
}

var testProfile = Profile{
	CoreSkills:     []string{"Python", "SQL", "Git", "Testing"},
	AdvancedSkills: []string{"Kubernetes", "AWS", "System Design", "Kafka"},
	CrossSkills:    []string{"DevOps", "Machine Learning"},
}

func TestMissingCore(t *testing.T) {
	tests := []struct {
		name    string
		current []string
		want    []string
	}{
		{"none held", []string{"Rust"}, []string{"Python", "SQL", "Git", "Testing"}},
		{"some held", []string{"Python", "Git"}, []string{"SQL", "Testing"}},
		{"case insensitive", []string{"python", " sql "}, []string{"Git", "Testing"}},
		{"all held", []string{"Testing", "Git", "SQL", "Python"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MissingCore(testProfile, tt.current))
		})
	}

	assert.Empty(t, MissingCore(Profile{}, []string{"Python"}))
}

func TestMissingCore_IsSetDifference(t *testing.T) {
	table := DefaultTable()
	for _, role := range table.Roles() {
		p := table.Profile(role)
		current := []string{p.CoreSkills[0]}
		got := MissingCore(p, current)
		assert.ElementsMatch(t, p.CoreSkills[1:], got, role)
	}
}

func TestAdvancedCandidates(t *testing.T) {
	assert.Equal(t, []string{"Kubernetes", "AWS", "System Design", "Kafka"}, AdvancedCandidates(testProfile, nil, 3))
	assert.Equal(t, []string{"Kubernetes", "AWS", "System Design", "Kafka"}, AdvancedCandidates(testProfile, nil, 10))
	assert.Equal(t, []string{"Kubernetes", "AWS"}, AdvancedCandidates(testProfile, nil, 2))
	assert.Equal(t, []string{"AWS", "Kafka"}, AdvancedCandidates(testProfile, []string{"kubernetes", "System Design"}, 0))
}

func TestAdjacentSkills(t *testing.T) {
	got := AdjacentSkills([]Profile{
		{CoreSkills: []string{"Python", "SQL"}, AdvancedSkills: []string{"MLOps"}},
		{CoreSkills: []string{"sql", "Docker"}},
	})
	assert.Equal(t, []string{"Python", "SQL", "MLOps", "Docker"}, got)
}

func TestIsComplementary(t *testing.T) {
	assert.True(t, IsComplementary("Machine Learning", []string{"Python"}, Complements))
	assert.True(t, IsComplementary("node.js", []string{"javascript"}, Complements))
	assert.False(t, IsComplementary("Kubernetes", []string{"Python"}, Complements))
	assert.False(t, IsComplementary("Python", []string{"Rust"}, Complements))
}

func TestCrossOpportunities(t *testing.T) {
	adjacent := []Profile{
		{CoreSkills: []string{"Python", "Machine Learning", "Statistics"}, AdvancedSkills: []string{"Data Analysis"}},
		{CoreSkills: []string{"Docker", "Automation"}},
	}
	trends := []string{"MLOps", "Machine Learning", "Security"}

	got := CrossOpportunities(adjacent, []string{"Python", "SQL"}, Complements, trends)
	// Complementary first (Python -> ML, Data Analysis, Automation; SQL -> Data Analysis),
	// then trends not already listed.
	assert.Equal(t, []string{"Machine Learning", "Data Analysis", "Automation", "MLOps", "Security"}, got)
}

func TestCrossOpportunities_Capped(t *testing.T) {
	trends := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}
	got := CrossOpportunities(nil, []string{"Python"}, Complements, trends)
	assert.Len(t, got, MaxCrossOpportunity)
	assert.Equal(t, "a", got[0])
}

func TestCrossOpportunities_ExcludesHeld(t *testing.T) {
	got := CrossOpportunities(nil, []string{"Security"}, Complements, []string{"Security", "GitOps"})
	assert.Equal(t, []string{"GitOps"}, got)
}

func TestSuggestPriorities(t *testing.T) {
	pr := SuggestPriorities(testProfile, []string{"Python", "DevOps"}, 4)
	assert.Equal(t, []string{"SQL", "Git", "Testing"}, pr.High)
	assert.Equal(t, testProfile.AdvancedSkills, pr.Medium)
	assert.Equal(t, []string{"Machine Learning"}, pr.Low)

	junior := SuggestPriorities(testProfile, nil, 1)
	assert.Empty(t, junior.Medium)
}

func TestOverlap(t *testing.T) {
	assert.InDelta(t, 1.0, Overlap([]string{"Go", "SQL"}, []string{"sql", "go"}), 1e-9)
	assert.InDelta(t, 1.0/3.0, Overlap([]string{"Go", "SQL"}, []string{"Go", "Rust"}), 1e-9)
	assert.Zero(t, Overlap(nil, []string{"Go"}))
	assert.Zero(t, Overlap([]string{"Go"}, []string{"Rust"}))
}

func TestAdjacentRoles(t *testing.T) {
	assert.Equal(t, []string{"Data Scientist", "DevOps Engineer", "Software Engineer", "Machine Learning Engineer"}, AdjacentRoles("Data Engineer"))
	assert.Equal(t, []string{"Software Engineer", "Product Manager", "Data Scientist"}, AdjacentRoles("Astronaut"))

	got := AdjacentRoles("QA Engineer")
	got[0] = "changed"
	assert.Equal(t, "Software Engineer", AdjacentRoles("QA Engineer")[0])
}

func TestIndustryTrends(t *testing.T) {
	assert.Equal(t, []string{"MLOps", "Real-time Processing", "Data Governance", "Cloud Data Platforms", "AI/ML"}, IndustryTrends("Data Engineer"))
	assert.Equal(t, []string{"GitOps", "Platform Engineering", "Security", "Observability", "AI/ML"}, IndustryTrends("DevOps Engineer"))
	assert.Equal(t, []string{"AI/ML", "Cloud Computing", "Security", "Automation", "Data Literacy"}, IndustryTrends("Astronaut"))
}

func TestLearningPath(t *testing.T) {
	py := LearningPath("Python")
	require.Len(t, py, 6)
	assert.Equal(t, "Learn Python basics and syntax", py[0])

	generic := LearningPath("Rust")
	require.Len(t, generic, 6)
	assert.Equal(t, "Research Rust fundamentals", generic[0])
	assert.Equal(t, "Apply Rust in real-world scenarios", generic[5])
}

func TestEstimateLearningTime(t *testing.T) {
	tests := []struct {
		c     Complexity
		level types.Level
		want  string
	}{
		{ComplexityBasic, types.LevelSenior, "1 week"},
		{ComplexityBasic, types.LevelMid, "2 weeks"},
		{ComplexityBasic, types.LevelJunior, "1 month"},
		{ComplexityMedium, types.LevelMid, "1 month"},
		{ComplexityMedium, types.LevelJunior, "2 months"},
		{ComplexityAdvanced, types.LevelJunior, "4 months"},
		{ComplexityAdvanced, types.LevelLead, "1 month"},
		{Complexity("unknown"), types.LevelMid, "1 month"},
	}
	for _, tt := range tests {
		t.Run(string(tt.c)+"/"+string(tt.level), func(t *testing.T) {
			assert.Equal(t, tt.want, EstimateLearningTime(tt.c, tt.level))
		})
	}
}

func TestFormatWeeks(t *testing.T) {
	assert.Equal(t, "3 weeks", formatWeeks(3))
	assert.Equal(t, "1 month, 1 week", formatWeeks(5))
	assert.Equal(t, "2 months, 3 weeks", formatWeeks(11))
}

func TestLevelForYears(t *testing.T) {
	assert.Equal(t, types.LevelMid, LevelForYears(0))
	assert.Equal(t, types.LevelJunior, LevelForYears(2))
	assert.Equal(t, types.LevelMid, LevelForYears(3))
	assert.Equal(t, types.LevelSenior, LevelForYears(5))
}

func TestNormalizeSkillName(t *testing.T) {
	tests := map[string]string{
		"js":                   "JavaScript",
		"  K8S ":               "Kubernetes",
		"amazon  web services": "AWS",
		"ML":                   "Machine Learning",
		"ci/cd":                "CI/CD",
		"rust":                 "Rust",
		"event sourcing":       "Event Sourcing",
		"PostgreSQL":           "PostgreSQL",
		"GRPC":                 "GRPC",
		"":                     "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeSkillName(in), in)
	}
}

func TestNormalizeSkills(t *testing.T) {
	got := NormalizeSkills([]string{"python", "Python", " ", "js", "Go"})
	assert.Equal(t, []string{"Go", "JavaScript", "Python"}, got)
}

func TestTrendingSkills(t *testing.T) {
	trends := []types.Trend{
		{Skill: "Snowflake"},
		{Title: "Scaling Python and Kubernetes"},
		{Title: "Why machine learning needs data science"},
		{Skill: "snowflake"},
		{Title: "Nothing relevant"},
	}
	got := TrendingSkills(trends)
	assert.Equal(t, []string{"Snowflake", "Python", "Kubernetes", "Machine Learning", "Data Science"}, got)
}

func TestTable_ClosestRole(t *testing.T) {
	table := DefaultTable()
	assert.Equal(t, "Data Engineer", table.ClosestRole([]string{"sql", "ETL", "Apache Spark"}))
	assert.Equal(t, "DevOps Engineer", table.ClosestRole([]string{"Terraform", "Bash", "Linux"}))
	assert.Equal(t, "", table.ClosestRole([]string{"Zero-G"}))
	assert.Equal(t, "", (*Table)(nil).ClosestRole([]string{"SQL"}))
}
