package types

import (
	"strings"
	"time"
)

// TrendType identifies which kind of source produced a trend item.
type TrendType string

// Trend types
const (
	TrendRepository TrendType = "repository"
	TrendBlogPost   TrendType = "blog_post"
	TrendLearning   TrendType = "learning_trend"
	TrendJobMarket  TrendType = "job_market"
	TrendAI         TrendType = "ai_trend"
	TrendFallback   TrendType = "fallback"
)

// Trend is one item of market signal. RelevanceScore is computed by the aggregator.
type Trend struct {
	Type           TrendType `json:"type"`
	Title          string    `json:"title,omitempty"`
	Name           string    `json:"name,omitempty"`
	Skill          string    `json:"skill,omitempty"`
	Description    string    `json:"description,omitempty"`
	URL            string    `json:"url,omitempty"`
	Source         string    `json:"source"`
	Role           string    `json:"role,omitempty"`
	Language       string    `json:"language,omitempty"`
	Demand         string    `json:"demand,omitempty"`
	Growth         string    `json:"growth,omitempty"`
	Popularity     int       `json:"popularity,omitempty"`
	Published      string    `json:"published,omitempty"`
	RelevanceScore float64   `json:"relevance_score"`
}

// Label returns the first non-empty of title, name and skill.
func (t Trend) Label() string {
	switch {
	case t.Title != "":
		return t.Title
	case t.Name != "":
		return t.Name
	default:
		return t.Skill
	}
}

// Text returns the lowercased title, description and skill that relevance matching runs against.
func (t Trend) Text() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{t.Title, t.Description, t.Skill} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// TrendBundle is the per-request result of trend aggregation. It is never cached.
type TrendBundle struct {
	Role      string         `json:"role"`
	Skills    []string       `json:"skills"`
	Timestamp time.Time      `json:"timestamp"`
	Trends    []Trend        `json:"trends"`
	Sources   map[string]int `json:"sources"`
	Error     string         `json:"error,omitempty"`
}
