package skills

import (
	"sort"
	"strings"
	"unicode"

	"github.com/jonathan/skill-recommender/internal/types"
)

// skillNormalizations maps common skill name variants to canonical names.
var skillNormalizations = map[string]string{
	"javascript":              "JavaScript",
	"js":                      "JavaScript",
	"typescript":              "TypeScript",
	"ts":                      "TypeScript",
	"python":                  "Python",
	"java":                    "Java",
	"golang":                  "Go",
	"go lang":                 "Go",
	"sql":                     "SQL",
	"html":                    "HTML",
	"css":                     "CSS",
	"react":                   "React",
	"react.js":                "React",
	"reactjs":                 "React",
	"vue":                     "Vue.js",
	"vue.js":                  "Vue.js",
	"vuejs":                   "Vue.js",
	"angular":                 "Angular",
	"node.js":                 "Node.js",
	"nodejs":                  "Node.js",
	"docker":                  "Docker",
	"kubernetes":              "Kubernetes",
	"k8s":                     "Kubernetes",
	"aws":                     "AWS",
	"amazon web services":     "AWS",
	"azure":                   "Azure",
	"gcp":                     "Google Cloud",
	"google cloud":            "Google Cloud",
	"machine learning":        "Machine Learning",
	"ml":                      "Machine Learning",
	"deep learning":           "Deep Learning",
	"ai":                      "Artificial Intelligence",
	"artificial intelligence": "Artificial Intelligence",
	"data science":            "Data Science",
	"devops":                  "DevOps",
	"ci/cd":                   "CI/CD",
	"continuous integration":  "CI/CD",
	"agile":                   "Agile",
	"scrum":                   "Scrum",
	"kanban":                  "Kanban",
}

// NormalizeSkillName returns the canonical form of a skill name.
// Unknown all-lowercase names are title-cased; anything with capitals is kept as written.
func NormalizeSkillName(skill string) string {
	normalized := strings.Join(strings.Fields(skill), " ")
	if normalized == "" {
		return ""
	}

	if canonical, ok := skillNormalizations[strings.ToLower(normalized)]; ok {
		return canonical
	}

	if normalized == strings.ToLower(normalized) {
		return titleCase(normalized)
	}
	return normalized
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// NormalizeSkills normalizes every name, drops blanks and duplicates, and sorts the result.
func NormalizeSkills(skills []string) []string {
	seen := make(map[string]struct{}, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		n := NormalizeSkillName(s)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// trendingKeywords are looked for in trend titles that carry no explicit skill.
var trendingKeywords = []string{
	"python", "javascript", "react", "docker", "kubernetes", "aws", "machine learning", "data science",
}

// TrendingSkills extracts skill names from trends in first-seen order.
// A trend's own skill wins; otherwise known keywords are matched in its title.
func TrendingSkills(trends []types.Trend) []string {
	seen := newSkillSet()
	var out []string
	add := func(s string) {
		if s == "" || seen.has(s) {
			return
		}
		seen.add(s)
		out = append(out, s)
	}

	for _, t := range trends {
		if t.Skill != "" {
			add(t.Skill)
			continue
		}
		title := strings.ToLower(t.Title)
		for _, kw := range trendingKeywords {
			if strings.Contains(title, kw) {
				add(NormalizeSkillName(kw))
			}
		}
	}
	return out
}
