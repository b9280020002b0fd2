package trends

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/jonathan/skill-recommender/internal/types"
)

// Source categories as reported in TrendBundle.Sources.
const (
	SourceGitHub    = "github"
	SourceBlogs     = "blogs"
	SourceDevTo     = "devto"
	SourceLearning  = "learning"
	SourceJobMarket = "job_market"
	SourceAI        = "ai"
	SourceFallback  = "fallback"
)

// Source fetches raw, unscored trend items for one category.
type Source interface {
	Name() string
	Fetch(ctx context.Context, role string, skills []string) ([]types.Trend, error)
}

// Gate throttles outbound requests. *rate.Limiter satisfies it.
type Gate interface {
	Wait(ctx context.Context) error
}

// NewGate allows limit requests per period with a burst of limit.
func NewGate(limit int, period time.Duration) *rate.Limiter {
	if limit <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if period <= 0 {
		period = time.Second
	}
	return rate.NewLimiter(rate.Every(period/time.Duration(limit)), limit)
}

func wait(ctx context.Context, g Gate) error {
	if g == nil {
		return nil
	}
	return g.Wait(ctx)
}

var now = func() time.Time { return time.Now().UTC() }
