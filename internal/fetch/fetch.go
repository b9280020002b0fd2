// Package fetch provides HTTP fetching, HTML-to-text processing and JSON retrieval
// for the trend sources.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 15 * time.Second

// DefaultUserAgent is the user agent string for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (compatible; SkillRecommender/1.0)"

// maxBodyBytes caps how much of a response is read.
const maxBodyBytes = 8 << 20

// Result holds the raw and processed content from a URL fetch.
type Result struct {
	URL         string
	Body        string
	Text        string
	ContentType string
	StatusCode  int
}

// Error represents an error during URL fetching.
type Error struct {
	URL        string
	Message    string
	StatusCode int
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures the fetch behavior.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Headers   map[string]string
	Retry     RetryConfig
	// Client overrides the HTTP client; Timeout is ignored when set.
	Client *http.Client
}

// DefaultOptions returns sensible defaults for fetching.
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
		Retry:     DefaultRetryConfig,
	}
}

func (o *Options) client() *http.Client {
	if o.Client != nil {
		return o.Client
	}
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// URL retrieves content from a URL, retrying transient failures.
// On a non-200 final status the partial Result is returned alongside the error.
func URL(ctx context.Context, urlStr string, opts *Options) (*Result, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	parsedURL, err := url.Parse(urlStr)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, &Error{
			URL:     urlStr,
			Message: "invalid URL",
			Cause:   err,
		}
	}

	client := opts.client()
	resp, err := RetryHTTP(ctx, opts.Retry, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
		if err != nil {
			return nil, err
		}
		ua := opts.UserAgent
		if ua == "" {
			ua = DefaultUserAgent
		}
		req.Header.Set("User-Agent", ua)
		for key, value := range opts.Headers {
			req.Header.Set(key, value)
		}
		return client.Do(req)
	})
	if err != nil {
		fe := &Error{URL: urlStr, Message: "HTTP request failed", Cause: err}
		var se *StatusError
		if errors.As(err, &se) {
			fe.StatusCode = se.StatusCode
			fe.Message = fmt.Sprintf("HTTP status %d", se.StatusCode)
		}
		return nil, fe
	}
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &Error{
			URL:     urlStr,
			Message: "failed to read response body",
			Cause:   err,
		}
	}

	result := &Result{
		URL:         urlStr,
		Body:        string(bodyBytes),
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}

	if resp.StatusCode != http.StatusOK {
		return result, &Error{
			URL:        urlStr,
			Message:    fmt.Sprintf("HTTP status %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
		}
	}

	return result, nil
}

// JSON fetches urlStr and decodes the body into out.
func JSON(ctx context.Context, urlStr string, opts *Options, out any) error {
	if opts == nil {
		opts = DefaultOptions()
	}
	withAccept := *opts
	withAccept.Headers = map[string]string{"Accept": "application/json"}
	for k, v := range opts.Headers {
		withAccept.Headers[k] = v
	}

	result, err := URL(ctx, urlStr, &withAccept)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(result.Body), out); err != nil {
		return &Error{URL: urlStr, Message: "failed to decode JSON", Cause: err}
	}
	return nil
}

// PageText fetches a page and extracts its readable text. When the text is shorter than
// MinContentLength and useBrowser is set, the page is rendered headlessly and re-extracted.
func PageText(ctx context.Context, urlStr string, opts *Options, useBrowser bool) (string, error) {
	result, err := URL(ctx, urlStr, opts)
	if err != nil && !useBrowser {
		return "", err
	}

	var text string
	if result != nil {
		text, _ = ExtractMainText(result.Body, ArticleSelectors())
	}
	if !useBrowser || !ShouldUseBrowser(text) {
		return text, err
	}

	log.Printf("[FETCH] Short content for %s (%d chars), rendering with browser", urlStr, len(text))
	html, berr := WithBrowser(ctx, urlStr, DefaultTimeout, false)
	if berr != nil {
		if text != "" {
			return text, nil
		}
		return "", berr
	}
	return ExtractMainText(html, ArticleSelectors())
}

// ExtractMainText parses HTML and returns the main body text.
// It removes noise elements using noiseSelectors, then finds content using contentSelectors.
// If no content selectors match, it falls back to the body element.
func ExtractMainText(html string, contentSelectors []string, noiseSelectors ...string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("nav, footer, header, script, style, noscript, .ad, .advertisement, .ads, .sidebar, .cookie-banner, .popup").Remove()

	if len(noiseSelectors) > 0 {
		if noise := strings.Join(noiseSelectors, ", "); noise != "" {
			doc.Find(noise).Remove()
		}
	}

	var mainContent *goquery.Selection
	for _, selector := range contentSelectors {
		if selection := doc.Find(selector); selection.Length() > 0 {
			mainContent = selection.First()
			break
		}
	}
	if mainContent == nil {
		mainContent = doc.Find("body")
	}

	return cleanWhitespace(mainContent.Text()), nil
}

// ArticleSelectors returns selectors for engineering blog posts.
func ArticleSelectors() []string {
	return []string{
		"article .post-content",
		"article .entry-content",
		".post-body",
		"article",
		"main",
		".content",
		"#content",
	}
}

// cleanWhitespace drops blank lines and trims the rest.
func cleanWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	var cleaned []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
