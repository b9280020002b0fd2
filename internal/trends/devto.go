package trends

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/jonathan/skill-recommender/internal/fetch"
	"github.com/jonathan/skill-recommender/internal/types"
)

const (
	defaultDevToBase = "https://dev.to"
	devToMaxArticles = 5
	devToTopDays     = 7
)

// DefaultDevToTags maps roles to dev.to tags. Unknown roles use "programming".
var DefaultDevToTags = map[string]string{
	"Data Engineer":             "dataengineering",
	"Data Architect":            "database",
	"Data Scientist":            "datascience",
	"Machine Learning Engineer": "machinelearning",
	"DevOps Engineer":           "devops",
	"Frontend Developer":        "frontend",
	"Backend Developer":         "backend",
	"QA Engineer":               "testing",
	"UX/UI Designer":            "ux",
	"Product Manager":           "productivity",
	"Software Engineer":         "programming",
}

type devToArticle struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	PublishedAt string   `json:"published_at"`
	Reactions   int      `json:"positive_reactions_count"`
	TagList     []string `json:"tag_list"`
}

// DevToSource reads the week's top dev.to articles for the role's tag.
type DevToSource struct {
	BaseURL string
	Tags    map[string]string
	Gate    Gate
	Options *fetch.Options
}

// NewDevToSource returns a source against the public dev.to API.
func NewDevToSource(gate Gate, opts *fetch.Options) *DevToSource {
	return &DevToSource{BaseURL: defaultDevToBase, Tags: DefaultDevToTags, Gate: gate, Options: opts}
}

func (s *DevToSource) Name() string { return SourceDevTo }

func (s *DevToSource) Fetch(ctx context.Context, role string, _ []string) ([]types.Trend, error) {
	if err := wait(ctx, s.Gate); err != nil {
		return nil, err
	}

	tag, ok := s.Tags[role]
	if !ok {
		tag = "programming"
	}
	endpoint := fmt.Sprintf("%s/api/articles?tag=%s&top=%d&per_page=%d",
		strings.TrimRight(s.BaseURL, "/"), url.QueryEscape(tag), devToTopDays, devToMaxArticles)

	var articles []devToArticle
	if err := fetch.JSON(ctx, endpoint, s.Options, &articles); err != nil {
		return nil, err
	}

	out := make([]types.Trend, 0, devToMaxArticles)
	for _, a := range articles {
		if strings.TrimSpace(a.Title) == "" {
			continue
		}
		out = append(out, types.Trend{
			Type:        types.TrendBlogPost,
			Title:       strings.TrimSpace(a.Title),
			Description: strings.TrimSpace(a.Description),
			URL:         a.URL,
			Source:      "dev.to",
			Role:        role,
			Popularity:  a.Reactions,
			Published:   a.PublishedAt,
		})
		if len(out) == devToMaxArticles {
			break
		}
	}
	return out, nil
}
