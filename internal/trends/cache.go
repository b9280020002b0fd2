package trends

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jonathan/skill-recommender/internal/types"
)

// DefaultCacheTTL is how long raw source results are reused.
const DefaultCacheTTL = 10 * time.Minute

// Cache stores raw per-source items in redis. A Cache without a reachable server
// is a no-op, so callers never need to check for nil.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *log.Logger

	warned atomic.Bool
}

// NewCache connects to redisURL. An empty URL or a failed ping yields a bypassing cache.
func NewCache(redisURL string, ttl time.Duration, logger *log.Logger) *Cache {
	if logger == nil {
		logger = log.Default()
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	c := &Cache{ttl: ttl, logger: logger}

	redisURL = strings.TrimSpace(redisURL)
	if redisURL == "" {
		return c
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		logger.Printf("[CACHE] Invalid REDIS_URL, bypassing cache: %v", err)
		return c
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Printf("[CACHE] Redis unavailable, bypassing cache: %v", err)
		_ = client.Close()
		return c
	}

	c.client = client
	return c
}

// Enabled reports whether a redis server is attached.
func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

// Close releases the redis connection.
func (c *Cache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

func cacheKey(source, role string) string {
	role = strings.ToLower(strings.Join(strings.Fields(role), "_"))
	return "trends:" + source + ":" + role
}

// Get returns cached items for source and role. A miss or an error reports ok=false.
func (c *Cache) Get(ctx context.Context, source, role string) ([]types.Trend, bool) {
	if !c.Enabled() {
		return nil, false
	}
	b, err := c.client.Get(ctx, cacheKey(source, role)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.warnOnce(err)
		}
		return nil, false
	}
	var items []types.Trend
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, false
	}
	return items, true
}

// Set stores items for source and role. Failures are logged once and otherwise ignored.
func (c *Cache) Set(ctx context.Context, source, role string, items []types.Trend) {
	if !c.Enabled() {
		return
	}
	b, err := json.Marshal(items)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, cacheKey(source, role), b, c.ttl).Err(); err != nil {
		c.warnOnce(err)
	}
}

func (c *Cache) warnOnce(err error) {
	if c.warned.CompareAndSwap(false, true) {
		c.logger.Printf("[CACHE] Redis error, bypassing cache: %v", err)
	}
}

type cachedSource struct {
	Source
	cache *Cache
}

// Cached wraps src so successful results are reused for the cache TTL.
// Failed fetches are never cached.
func Cached(src Source, cache *Cache) Source {
	if !cache.Enabled() {
		return src
	}
	return &cachedSource{Source: src, cache: cache}
}

func (s *cachedSource) Fetch(ctx context.Context, role string, skills []string) ([]types.Trend, error) {
	if items, ok := s.cache.Get(ctx, s.Name(), role); ok {
		return items, nil
	}
	items, err := s.Source.Fetch(ctx, role, skills)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, s.Name(), role, items)
	return items, nil
}
