package skills

import (
	"fmt"

	"github.com/jonathan/skill-recommender/internal/types"
)

var learningPaths = map[string][]string{
	"Python": {
		"Learn Python basics and syntax",
		"Practice with data structures and algorithms",
		"Learn popular libraries (pandas, numpy, matplotlib)",
		"Build small projects",
		"Learn testing and debugging",
		"Explore advanced topics (async, decorators)",
	},
	"Machine Learning": {
		"Strengthen Python and statistics fundamentals",
		"Learn scikit-learn for basic ML",
		"Study data preprocessing and feature engineering",
		"Learn model evaluation and validation",
		"Explore deep learning with TensorFlow/PyTorch",
		"Practice with real-world datasets",
	},
	"DevOps": {
		"Learn Linux fundamentals and shell scripting",
		"Master version control with Git",
		"Learn containerization with Docker",
		"Study CI/CD pipelines",
		"Learn cloud platforms (AWS/Azure/GCP)",
		"Explore monitoring and logging tools",
	},
	"Data Engineering": {
		"Strengthen SQL and database fundamentals",
		"Learn ETL processes and data warehousing",
		"Master Apache Airflow for workflow orchestration",
		"Learn big data technologies (Spark, Hadoop)",
		"Study data modeling and architecture",
		"Explore cloud data platforms",
	},
}

// LearningPath returns ordered study steps for skill, falling back to a generic plan.
func LearningPath(skill string) []string {
	if path, ok := learningPaths[skill]; ok {
		return append([]string(nil), path...)
	}
	return []string{
		fmt.Sprintf("Research %s fundamentals", skill),
		fmt.Sprintf("Find online courses or tutorials for %s", skill),
		fmt.Sprintf("Practice %s with hands-on projects", skill),
		fmt.Sprintf("Build a portfolio project using %s", skill),
		fmt.Sprintf("Seek mentorship or join %s communities", skill),
		fmt.Sprintf("Apply %s in real-world scenarios", skill),
	}
}

// Complexity is how hard a skill is to pick up.
type Complexity string

// Complexities
const (
	ComplexityBasic    Complexity = "basic"
	ComplexityMedium   Complexity = "medium"
	ComplexityAdvanced Complexity = "advanced"
)

var baseWeeks = map[Complexity]map[types.Level]int{
	ComplexityBasic:    {types.LevelJunior: 4, types.LevelMid: 2, types.LevelSenior: 1},
	ComplexityMedium:   {types.LevelJunior: 8, types.LevelMid: 4, types.LevelSenior: 2},
	ComplexityAdvanced: {types.LevelJunior: 16, types.LevelMid: 8, types.LevelSenior: 4},
}

const defaultWeeks = 4

// EstimateLearningTime returns a human-readable duration such as "2 weeks" or "1 month, 2 weeks".
// Unknown complexities or levels (including Lead) default to four weeks.
func EstimateLearningTime(c Complexity, level types.Level) string {
	weeks, ok := baseWeeks[c][level]
	if !ok {
		weeks = defaultWeeks
	}
	return formatWeeks(weeks)
}

func formatWeeks(weeks int) string {
	if weeks < 4 {
		return plural(weeks, "week")
	}
	months, rest := weeks/4, weeks%4
	if rest == 0 {
		return plural(months, "month")
	}
	return plural(months, "month") + ", " + plural(rest, "week")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// LevelForYears buckets years of experience. Zero means unknown and maps to Mid.
func LevelForYears(years int) types.Level {
	switch {
	case years >= 5:
		return types.LevelSenior
	case years >= 3:
		return types.LevelMid
	case years > 0:
		return types.LevelJunior
	default:
		return types.LevelMid
	}
}
