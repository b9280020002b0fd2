package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastOptions() *Options {
	opts := DefaultOptions()
	opts.Retry = RetryConfig{MaxRetries: 2, InitialWait: time.Millisecond, MaxWait: 5 * time.Millisecond, Multiplier: 2}
	return opts
}

func TestURL_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body><h1>Test</h1></body></html>"))
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, server.URL, result.URL)
	assert.Contains(t, result.Body, "<h1>Test</h1>")
	assert.Equal(t, http.StatusOK, result.StatusCode)
}

func TestURL_InvalidURL(t *testing.T) {
	_, err := URL(context.Background(), "not-a-valid-url", nil)
	require.Error(t, err)

	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "invalid URL")
}

func TestURL_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, fastOptions())
	require.Error(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, http.StatusNotFound, result.StatusCode)

	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
	assert.Contains(t, err.Error(), "404")
}

func TestURL_RetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, fastOptions())
	require.NoError(t, err)
	assert.Equal(t, "ok", result.Body)
	assert.Equal(t, int32(3), calls.Load())
}

func TestURL_RetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := URL(context.Background(), server.URL, fastOptions())
	require.Error(t, err)

	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusTooManyRequests, fetchErr.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
}

func TestJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "abc", r.Header.Get("X-Key"))
		_, _ = w.Write([]byte(`[{"title":"Go generics"}]`))
	}))
	defer server.Close()

	opts := fastOptions()
	opts.Headers = map[string]string{"X-Key": "abc"}

	var out []struct {
		Title string `json:"title"`
	}
	require.NoError(t, JSON(context.Background(), server.URL, opts, &out))
	require.Len(t, out, 1)
	assert.Equal(t, "Go generics", out[0].Title)
	assert.Len(t, opts.Headers, 1)
}

func TestJSON_DecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	var out map[string]any
	err := JSON(context.Background(), server.URL, fastOptions(), &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode JSON")
}

func TestPageText_NoBrowser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><nav>Menu</nav><article><h1>Platform Engineering</h1><p>Internal developer platforms.</p></article></body></html>`))
	}))
	defer server.Close()

	text, err := PageText(context.Background(), server.URL, fastOptions(), false)
	require.NoError(t, err)
	assert.Contains(t, text, "Platform Engineering")
	assert.NotContains(t, text, "Menu")
}

func TestExtractMainText_WithMainElement(t *testing.T) {
	html := `
	<html>
		<body>
			<nav>Navigation</nav>
			<main>
				<h1>Main Content</h1>
				<p>This is the important text.</p>
			</main>
			<footer>Footer</footer>
		</body>
	</html>`

	text, err := ExtractMainText(html, ArticleSelectors())
	require.NoError(t, err)
	assert.Contains(t, text, "Main Content")
	assert.Contains(t, text, "important text")
	assert.NotContains(t, text, "Navigation")
	assert.NotContains(t, text, "Footer")
}

func TestExtractMainText_ArticleSelectors(t *testing.T) {
	html := `
	<html>
		<body>
			<div class="sidebar">Related posts</div>
			<article>
				<div class="post-content"><p>Observability with OpenTelemetry</p></div>
				<div class="comments">Comments</div>
			</article>
		</body>
	</html>`

	text, err := ExtractMainText(html, ArticleSelectors())
	require.NoError(t, err)
	assert.Equal(t, "Observability with OpenTelemetry", text)
}

func TestExtractMainText_FallbackToBody(t *testing.T) {
	text, err := ExtractMainText(`<html><body><div>Some content here.</div></body></html>`, ArticleSelectors())
	require.NoError(t, err)
	assert.Contains(t, text, "Some content here")
}

func TestExtractMainText_NoiseSelectors(t *testing.T) {
	html := `<html><body><main><p>Keep</p><div class="promo">Drop</div></main></body></html>`
	text, err := ExtractMainText(html, ArticleSelectors(), ".promo")
	require.NoError(t, err)
	assert.Equal(t, "Keep", text)
}

func TestShouldUseBrowser(t *testing.T) {
	assert.True(t, ShouldUseBrowser("short"))
	assert.False(t, ShouldUseBrowser(strings.Repeat("x", MinContentLength)))
}
