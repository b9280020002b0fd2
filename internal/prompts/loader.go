// Package prompts holds the recommendation prompt templates. Templates live in JSON files
// embedded at compile time and use {{.Name}} placeholders.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

// RecommendationFile holds the generation templates and their fragments.
const RecommendationFile = "recommendation.json"

// Template and fragment keys in RecommendationFile.
const (
	KeyUpskill             = "upskill"
	KeyCrossSkill          = "cross-skill"
	KeyTargetContext       = "target-context"
	KeyTargetConsideration = "target-consideration"
	KeyNoContext           = "no-context"
	KeyNoTrends            = "no-trends"

	trendsSuffix = "-trends"
)

var (
	filesMu sync.RWMutex
	files   = map[string]map[string]string{}
)

var placeholder = regexp.MustCompile(`\{\{\.([A-Za-z]+)\}\}`)

// TemplateKey selects the generation template for a variant. Dynamic runs use the
// trend-context wording.
func TemplateKey(cross, dynamic bool) string {
	key := KeyUpskill
	if cross {
		key = KeyCrossSkill
	}
	if dynamic {
		key += trendsSuffix
	}
	return key
}

// Get returns the template stored under key in filename.
func Get(filename, key string) (string, error) {
	templates, err := load(filename)
	if err != nil {
		return "", err
	}
	text, ok := templates[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, filename)
	}
	return text, nil
}

// MustGet is Get for templates the binary cannot run without.
func MustGet(filename, key string) string {
	text, err := Get(filename, key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return text
}

// Recommendation returns a template or fragment from RecommendationFile.
func Recommendation(key string) string {
	return MustGet(RecommendationFile, key)
}

// Format substitutes {{.Name}} placeholders from data. Placeholders without a value are left
// in place so Unresolved can report them.
func Format(template string, data map[string]string) string {
	return placeholder.ReplaceAllStringFunc(template, func(m string) string {
		name := placeholder.FindStringSubmatch(m)[1]
		if v, ok := data[name]; ok {
			return v
		}
		return m
	})
}

// Unresolved lists the distinct placeholder names still present in text, sorted.
func Unresolved(text string) []string {
	seen := map[string]bool{}
	var names []string
	for _, m := range placeholder.FindAllStringSubmatch(text, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	sort.Strings(names)
	return names
}

// Keys returns the sorted template keys in filename.
func Keys(filename string) ([]string, error) {
	templates, err := load(filename)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(templates))
	for k := range templates {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func load(filename string) (map[string]string, error) {
	filesMu.RLock()
	templates, ok := files[filename]
	filesMu.RUnlock()
	if ok {
		return templates, nil
	}

	data, err := promptFiles.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", filename, err)
	}
	if err := json.Unmarshal(data, &templates); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", filename, err)
	}
	for k, v := range templates {
		if strings.TrimSpace(v) == "" {
			return nil, fmt.Errorf("prompt %q in %s is empty", k, filename)
		}
	}

	filesMu.Lock()
	files[filename] = templates
	filesMu.Unlock()
	return templates, nil
}
