package trends

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/skill-recommender/internal/fetch"
	"github.com/jonathan/skill-recommender/internal/types"
)

const (
	defaultGitHubTrendingURL = "https://github.com/trending"
	githubMaxRepos           = 10
)

// GitHubSource scrapes the GitHub trending page.
type GitHubSource struct {
	URL     string
	Since   string
	Gate    Gate
	Options *fetch.Options
}

// NewGitHubSource returns a source for the weekly trending page.
func NewGitHubSource(gate Gate, opts *fetch.Options) *GitHubSource {
	return &GitHubSource{URL: defaultGitHubTrendingURL, Since: "weekly", Gate: gate, Options: opts}
}

func (s *GitHubSource) Name() string { return SourceGitHub }

func (s *GitHubSource) Fetch(ctx context.Context, _ string, _ []string) ([]types.Trend, error) {
	if err := wait(ctx, s.Gate); err != nil {
		return nil, err
	}

	u := s.URL
	if s.Since != "" {
		u += "?since=" + s.Since
	}
	res, err := fetch.URL(ctx, u, s.Options)
	if err != nil {
		return nil, err
	}
	return parseGitHubTrending(res.Body)
}

func parseGitHubTrending(html string) ([]types.Trend, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse trending page: %w", err)
	}

	var out []types.Trend
	doc.Find("article.Box-row").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		link := row.Find("h2 a").First()
		name := strings.Join(strings.Fields(link.Text()), "")
		if name == "" {
			return true
		}

		t := types.Trend{
			Type:        types.TrendRepository,
			Name:        name,
			Description: strings.TrimSpace(row.Find("p").First().Text()),
			Language:    strings.TrimSpace(row.Find(`span[itemprop="programmingLanguage"]`).First().Text()),
			Source:      "GitHub",
		}
		if href, ok := link.Attr("href"); ok && strings.HasPrefix(href, "/") {
			t.URL = "https://github.com" + href
		}
		out = append(out, t)
		return len(out) < githubMaxRepos
	})
	return out, nil
}
