package trends

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"github.com/jonathan/skill-recommender/internal/fetch"
	"github.com/jonathan/skill-recommender/internal/types"
)

const (
	blogURLsPerRole   = 2
	blogPostsPerURL   = 5
	blogMinTitleChars = 10
	blogItemSelector  = `article[class*="article"], article[class*="post"], article[class*="entry"], ` +
		`div[class*="article"], div[class*="post"], div[class*="entry"]`
)

// DefaultBlogURLs maps roles to engineering blogs. Unknown roles use the Software Engineer list.
var DefaultBlogURLs = map[string][]string{
	"Data Engineer": {
		"https://engineering.linkedin.com/blog/topic/data-engineering",
		"https://netflixtechblog.com/tagged/data-engineering",
		"https://medium.com/tag/data-engineering",
	},
	"Data Architect": {
		"https://engineering.linkedin.com/blog/topic/data-engineering",
		"https://netflixtechblog.com/tagged/data-engineering",
		"https://medium.com/tag/data-architecture",
	},
	"Software Engineer": {
		"https://engineering.fb.com/",
		"https://netflixtechblog.com/",
		"https://medium.com/tag/software-engineering",
	},
	"Frontend Developer": {
		"https://engineering.fb.com/",
		"https://netflixtechblog.com/",
		"https://medium.com/tag/frontend-development",
	},
	"Data Scientist": {
		"https://netflixtechblog.com/tagged/data-science",
		"https://medium.com/tag/data-science",
		"https://towardsdatascience.com/",
	},
	"DevOps Engineer": {
		"https://netflixtechblog.com/tagged/devops",
		"https://medium.com/tag/devops",
		"https://www.hashicorp.com/blog",
	},
}

// BlogSource crawls the first post cards from role-specific engineering blogs.
// Only the first blogPostsPerURL cards of each page are considered.
type BlogSource struct {
	URLs      map[string][]string
	Gate      Gate
	UserAgent string
	Timeout   time.Duration
	// UseBrowser renders a blog headlessly when the static HTML has no posts.
	UseBrowser bool
}

// NewBlogSource returns a source over DefaultBlogURLs.
func NewBlogSource(gate Gate, timeout time.Duration, useBrowser bool) *BlogSource {
	return &BlogSource{
		URLs:       DefaultBlogURLs,
		Gate:       gate,
		UserAgent:  fetch.DefaultUserAgent,
		Timeout:    timeout,
		UseBrowser: useBrowser,
	}
}

func (s *BlogSource) Name() string { return SourceBlogs }

// Fetch returns an error only when every blog for the role failed.
func (s *BlogSource) Fetch(ctx context.Context, role string, _ []string) ([]types.Trend, error) {
	urls, ok := s.URLs[role]
	if !ok {
		urls = s.URLs[defaultFallbackRole]
	}
	if len(urls) > blogURLsPerRole {
		urls = urls[:blogURLsPerRole]
	}

	var (
		out  []types.Trend
		errs []error
	)
	for _, u := range urls {
		if err := wait(ctx, s.Gate); err != nil {
			return out, err
		}
		titles, err := s.crawl(ctx, u)
		if err == nil && len(titles) == 0 && s.UseBrowser {
			titles, err = s.render(ctx, u)
		}
		if err != nil {
			log.Printf("[TRENDS] Blog %s failed: %v", u, err)
			errs = append(errs, err)
			continue
		}
		for _, title := range titles {
			out = append(out, types.Trend{
				Type:   types.TrendBlogPost,
				Title:  title,
				URL:    u,
				Source: hostOf(u),
				Role:   role,
			})
		}
	}

	if len(urls) > 0 && len(errs) == len(urls) {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

func (s *BlogSource) crawl(ctx context.Context, blogURL string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := colly.NewCollector(colly.UserAgent(s.UserAgent))
	if s.Timeout > 0 {
		c.SetRequestTimeout(s.Timeout)
	}
	_ = c.Limit(&colly.LimitRule{DomainGlob: "*", Parallelism: 1, Delay: 200 * time.Millisecond})

	var titles []string
	seen := 0
	c.OnHTML(blogItemSelector, func(e *colly.HTMLElement) {
		if seen >= blogPostsPerURL {
			return
		}
		seen++
		if title := blogTitle(e.DOM); title != "" {
			titles = append(titles, title)
		}
	})

	var reqErr error
	c.OnError(func(r *colly.Response, err error) {
		reqErr = fmt.Errorf("HTTP %d: %w", r.StatusCode, err)
	})

	if err := c.Visit(blogURL); err != nil {
		return nil, err
	}
	c.Wait()
	if reqErr != nil {
		return nil, reqErr
	}
	return titles, nil
}

func (s *BlogSource) render(ctx context.Context, blogURL string) ([]string, error) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = fetch.DefaultTimeout
	}
	html, err := fetch.WithBrowser(ctx, blogURL, timeout, false)
	if err != nil {
		return nil, err
	}
	return parseBlogTitles(html)
}

func parseBlogTitles(html string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse blog page: %w", err)
	}
	var titles []string
	doc.Find(blogItemSelector).EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if title := blogTitle(sel); title != "" {
			titles = append(titles, title)
		}
		return i+1 < blogPostsPerURL
	})
	return titles, nil
}

// blogTitle returns the first heading of a post card if it is long enough to be a real title.
func blogTitle(sel *goquery.Selection) string {
	title := strings.TrimSpace(sel.Find("h1, h2, h3").First().Text())
	if len(title) <= blogMinTitleChars {
		return ""
	}
	return title
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return strings.TrimPrefix(u.Host, "www.")
}
