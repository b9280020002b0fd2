package trends

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/jonathan/skill-recommender/internal/fetch"
	"github.com/jonathan/skill-recommender/internal/types"
)

const feedMaxEntries = 5

// DefaultAIFeeds are RSS/Atom feeds covering AI and ML.
var DefaultAIFeeds = []string{
	"https://feeds.feedburner.com/oreilly/ai",
	"https://distill.pub/rss.xml",
}

// FeedSource reads the newest entries of topic feeds.
type FeedSource struct {
	URLs    []string
	Gate    Gate
	Options *fetch.Options
}

// NewFeedSource returns a source over DefaultAIFeeds.
func NewFeedSource(gate Gate, opts *fetch.Options) *FeedSource {
	return &FeedSource{URLs: DefaultAIFeeds, Gate: gate, Options: opts}
}

func (s *FeedSource) Name() string { return SourceAI }

// Fetch returns an error only when every feed failed.
func (s *FeedSource) Fetch(ctx context.Context, _ string, _ []string) ([]types.Trend, error) {
	parser := gofeed.NewParser()

	var (
		out  []types.Trend
		errs []error
	)
	for _, u := range s.URLs {
		if err := wait(ctx, s.Gate); err != nil {
			return out, err
		}
		items, err := s.readFeed(ctx, parser, u)
		if err != nil {
			log.Printf("[TRENDS] Feed %s failed: %v", u, err)
			errs = append(errs, err)
			continue
		}
		out = append(out, items...)
	}

	if len(s.URLs) > 0 && len(errs) == len(s.URLs) {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

func (s *FeedSource) readFeed(ctx context.Context, parser *gofeed.Parser, feedURL string) ([]types.Trend, error) {
	res, err := fetch.URL(ctx, feedURL, s.Options)
	if err != nil {
		return nil, err
	}
	feed, err := parser.ParseString(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	source := strings.TrimSpace(feed.Title)
	if source == "" {
		source = hostOf(feedURL)
	}

	out := make([]types.Trend, 0, feedMaxEntries)
	for _, item := range feed.Items {
		if len(out) == feedMaxEntries {
			break
		}
		out = append(out, types.Trend{
			Type:        types.TrendAI,
			Title:       strings.TrimSpace(item.Title),
			Description: strings.TrimSpace(item.Description),
			URL:         item.Link,
			Source:      source,
			Published:   item.Published,
		})
	}
	return out, nil
}
