// Package trends aggregates market signal from independent sources into a ranked TrendBundle.
package trends

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/skill-recommender/internal/fetch"
	"github.com/jonathan/skill-recommender/internal/types"
)

// DefaultSourceTimeout bounds a single source fetch.
const DefaultSourceTimeout = 15 * time.Second

// Aggregator fans out to every source concurrently and ranks the combined result.
// It holds no per-request state and is safe for concurrent use.
type Aggregator struct {
	sources []Source
	timeout time.Duration
}

// NewAggregator creates an aggregator over sources. A non-positive timeout uses DefaultSourceTimeout.
func NewAggregator(sources []Source, timeout time.Duration) *Aggregator {
	if timeout <= 0 {
		timeout = DefaultSourceTimeout
	}
	return &Aggregator{sources: sources, timeout: timeout}
}

// DefaultConfig holds what DefaultSources needs.
type DefaultConfig struct {
	RateLimit     int
	Period        time.Duration
	SourceTimeout time.Duration
	UseBrowser    bool
	Cache         *Cache
}

// DefaultSources builds the standard source set behind one shared rate gate.
// Network sources are wrapped with the cache; the static ones are not.
func DefaultSources(cfg DefaultConfig) []Source {
	gate := NewGate(cfg.RateLimit, cfg.Period)
	opts := fetch.DefaultOptions()
	if cfg.SourceTimeout > 0 {
		opts.Timeout = cfg.SourceTimeout
	}

	return []Source{
		Cached(NewGitHubSource(gate, opts), cfg.Cache),
		Cached(NewBlogSource(gate, opts.Timeout, cfg.UseBrowser), cfg.Cache),
		Cached(NewDevToSource(gate, opts), cfg.Cache),
		LearningSource{},
		JobMarketSource{},
		Cached(NewFeedSource(gate, opts), cfg.Cache),
	}
}

// Sources returns the category names of the configured sources.
func (a *Aggregator) Sources() []string {
	names := make([]string, len(a.sources))
	for i, s := range a.sources {
		names[i] = s.Name()
	}
	return names
}

type sourceResult struct {
	name  string
	items []types.Trend
	err   error
}

// Fetch builds a fresh bundle for role and skills. It never fails: when every source
// errors, or aggregation itself breaks, the bundle holds only fallback trends and Error is set.
func (a *Aggregator) Fetch(ctx context.Context, role string, skills []string) (bundle *types.TrendBundle) {
	skills = append([]string(nil), skills...)

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[TRENDS] Aggregation panicked for %q: %v", role, r)
			bundle = fallbackBundle(role, skills, fmt.Sprintf("trend aggregation failed: %v", r))
		}
	}()

	if err := ctx.Err(); err != nil {
		return fallbackBundle(role, skills, err.Error())
	}

	results := a.gather(ctx, role, skills)

	sources := make(map[string]int, len(results))
	var (
		raw  []types.Trend
		errs []error
	)
	for _, r := range results {
		sources[r.name] += len(r.items)
		if r.err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.name, r.err))
			continue
		}
		raw = append(raw, r.items...)
	}

	if len(results) > 0 && len(errs) == len(results) {
		return fallbackBundle(role, skills, "all trend sources failed: "+errors.Join(errs...).Error())
	}

	ranked := Rank(raw, role, skills)
	if len(ranked) < MinTrends {
		ranked = append(ranked, Fallback(role)...)
	}

	log.Printf("[TRENDS] %s: %d raw items, %d relevant, %d sources failed", role, len(raw), len(ranked), len(errs))

	return &types.TrendBundle{
		Role:      role,
		Skills:    skills,
		Timestamp: now(),
		Trends:    ranked,
		Sources:   sources,
	}
}

// FetchCross aggregates for role and, when set, targetRole. Scored items from both are
// merged and re-ranked; fallback trends for role are appended when fewer than MinTrends remain.
func (a *Aggregator) FetchCross(ctx context.Context, role, targetRole string, skills []string) *types.TrendBundle {
	if targetRole == "" || targetRole == role {
		return a.Fetch(ctx, role, skills)
	}

	var own, target *types.TrendBundle
	g := new(errgroup.Group)
	g.Go(func() error {
		own = a.Fetch(ctx, role, skills)
		return nil
	})
	g.Go(func() error {
		target = a.Fetch(ctx, targetRole, skills)
		return nil
	})
	_ = g.Wait()

	merged := make([]types.Trend, 0, len(own.Trends)+len(target.Trends))
	sources := make(map[string]int)
	var errs []string
	for _, b := range []*types.TrendBundle{own, target} {
		for _, t := range b.Trends {
			if t.Type == types.TrendFallback {
				continue
			}
			if t.Role == "" {
				t.Role = b.Role
			}
			merged = append(merged, t)
		}
		for k, v := range b.Sources {
			sources[k] += v
		}
		if b.Error != "" {
			errs = append(errs, b.Role+": "+b.Error)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].RelevanceScore > merged[j].RelevanceScore
	})
	if len(merged) > MaxTrends {
		merged = merged[:MaxTrends]
	}
	if len(merged) < MinTrends {
		merged = append(merged, Fallback(role)...)
	}

	return &types.TrendBundle{
		Role:      role,
		Skills:    append([]string(nil), skills...),
		Timestamp: now(),
		Trends:    merged,
		Sources:   sources,
		Error:     strings.Join(errs, "; "),
	}
}

func (a *Aggregator) gather(ctx context.Context, role string, skills []string) []sourceResult {
	results := make([]sourceResult, len(a.sources))
	g := new(errgroup.Group)
	for i, src := range a.sources {
		g.Go(func() error {
			results[i] = a.fetchOne(ctx, src, role, skills)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// fetchOne isolates a single source: errors and panics become an empty, failed result.
func (a *Aggregator) fetchOne(ctx context.Context, src Source, role string, skills []string) (res sourceResult) {
	res.name = src.Name()
	defer func() {
		if r := recover(); r != nil {
			res.items = nil
			res.err = fmt.Errorf("source panicked: %v", r)
			log.Printf("[TRENDS] Source %s panicked: %v", res.name, r)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	items, err := src.Fetch(ctx, role, skills)
	if err != nil {
		log.Printf("[TRENDS] Source %s failed: %v", res.name, err)
		res.err = err
		return res
	}
	res.items = items
	return res
}
