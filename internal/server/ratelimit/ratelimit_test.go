package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestBucket_Allow(t *testing.T) {
	b := newBucket(10, 1.0) // 10 tokens, 1 token per second
	now := time.Now()

	// Should allow 10 requests immediately (burst)
	for i := 0; i < 10; i++ {
		if !b.allow(now) {
			t.Errorf("Expected request %d to be allowed", i+1)
		}
	}

	// 11th request should be denied (no tokens left)
	if b.allow(now) {
		t.Error("Expected 11th request to be denied")
	}
}

func TestBucket_Refill(t *testing.T) {
	b := newBucket(10, 1.0)
	now := time.Now()

	for i := 0; i < 10; i++ {
		b.allow(now)
	}

	// One second later exactly one token is back
	later := now.Add(1100 * time.Millisecond)
	if !b.allow(later) {
		t.Error("Expected request to be allowed after refill")
	}
	if b.allow(later) {
		t.Error("Expected request to be denied after consuming refilled token")
	}
}

func TestBucket_Status(t *testing.T) {
	b := newBucket(10, 1.0)
	now := time.Now()

	for i := 0; i < 5; i++ {
		b.allow(now)
	}

	remaining, resetTime := b.status(now)
	if remaining != 5 {
		t.Errorf("Expected 5 remaining tokens, got %d", remaining)
	}
	if got := resetTime.Sub(now); got < 4900*time.Millisecond || got > 5100*time.Millisecond {
		t.Errorf("Expected reset in about 5s, got %v", got)
	}
	if d := b.retryAfter(now); d != 0 {
		t.Errorf("Expected no retry delay with tokens left, got %v", d)
	}
}

func TestLimiter_Allow(t *testing.T) {
	config := &Config{
		Enabled:       true,
		DefaultLimit:  10,
		DefaultWindow: time.Minute,
	}
	limiter := NewLimiter(config)
	defer limiter.Stop()

	clientID := "127.0.0.1"
	endpoint := "/store/stats"
	method := "GET"

	// Should allow requests up to limit
	for i := 0; i < 10; i++ {
		allowed, rateInfo := limiter.Allow(clientID, endpoint, method)
		if !allowed {
			t.Errorf("Expected request %d to be allowed", i+1)
		}
		if rateInfo.Limit != 10 {
			t.Errorf("Expected limit 10, got %d", rateInfo.Limit)
		}
		if rateInfo.Remaining != 9-i {
			t.Errorf("Expected remaining %d, got %d", 9-i, rateInfo.Remaining)
		}
	}

	// 11th request should be denied
	allowed, rateInfo := limiter.Allow(clientID, endpoint, method)
	if allowed {
		t.Error("Expected 11th request to be denied")
	}
	if rateInfo.Remaining != 0 {
		t.Errorf("Expected remaining 0, got %d", rateInfo.Remaining)
	}
	if rateInfo.RetryAfter <= 0 {
		t.Error("Expected retry after to be positive")
	}
}

func TestLimiter_Whitelist(t *testing.T) {
	config := &Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
		Whitelist:     map[string]bool{"127.0.0.1": true},
	}
	limiter := NewLimiter(config)
	defer limiter.Stop()

	for i := 0; i < 100; i++ {
		allowed, rateInfo := limiter.Allow("127.0.0.1", "/recommend", "POST")
		if !allowed {
			t.Errorf("Expected whitelisted request %d to be allowed", i+1)
		}
		if rateInfo.Limit != 0 {
			t.Errorf("Expected limit 0 for whitelisted, got %d", rateInfo.Limit)
		}
	}
}

func TestLimiter_Blacklist(t *testing.T) {
	config := &Config{
		Enabled:       true,
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		Blacklist:     map[string]bool{"192.168.1.1": true},
	}
	limiter := NewLimiter(config)
	defer limiter.Stop()

	allowed, _ := limiter.Allow("192.168.1.1", "/health", "GET")
	if allowed {
		t.Error("Expected blacklisted request to be denied")
	}
}

func TestLimiter_Disabled(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: false})
	defer limiter.Stop()

	for i := 0; i < 100; i++ {
		allowed, rateInfo := limiter.Allow("127.0.0.1", "/recommend", "POST")
		if !allowed {
			t.Errorf("Expected request %d to be allowed when disabled", i+1)
		}
		if rateInfo.Limit != 0 {
			t.Errorf("Expected limit 0 when disabled, got %d", rateInfo.Limit)
		}
	}
}

func TestLimiter_EndpointSpecific(t *testing.T) {
	config := &Config{
		Enabled:       true,
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		EndpointConfigs: []EndpointConfig{
			{Path: "/recommend/team", Method: "POST", Limit: 5, Window: time.Hour, Burst: 5},
		},
	}
	limiter := NewLimiter(config)
	defer limiter.Stop()

	clientID := "127.0.0.1"

	for i := 0; i < 5; i++ {
		allowed, rateInfo := limiter.Allow(clientID, "/recommend/team", "POST")
		if !allowed {
			t.Errorf("Expected request %d to be allowed", i+1)
		}
		if rateInfo.Limit != 5 {
			t.Errorf("Expected limit 5, got %d", rateInfo.Limit)
		}
	}

	allowed, rateInfo := limiter.Allow(clientID, "/recommend/team", "POST")
	if allowed {
		t.Error("Expected 6th request to be denied")
	}
	if rateInfo.Limit != 5 {
		t.Errorf("Expected limit 5, got %d", rateInfo.Limit)
	}

	// Different endpoint should use default limit
	allowed, rateInfo = limiter.Allow(clientID, "/store/stats", "GET")
	if !allowed {
		t.Error("Expected different endpoint to be allowed")
	}
	if rateInfo.Limit != 1000 {
		t.Errorf("Expected default limit 1000, got %d", rateInfo.Limit)
	}
}

func TestLimiter_HealthUnlimited(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Hour})
	defer limiter.Stop()

	for i := 0; i < 20; i++ {
		if allowed, _ := limiter.Allow("10.0.0.1", "/health", "GET"); !allowed {
			t.Fatalf("Expected health check %d to be allowed", i+1)
		}
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	config := &Config{
		Enabled:       true,
		DefaultLimit:  100,
		DefaultWindow: time.Hour,
	}
	limiter := NewLimiter(config)
	defer limiter.Stop()

	var wg sync.WaitGroup
	allowedCount := 0
	var mu sync.Mutex

	// Make 200 concurrent requests (should only allow 100)
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			allowed, _ := limiter.Allow("127.0.0.1", "/store/stats", "GET")
			if allowed {
				mu.Lock()
				allowedCount++
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	if allowedCount != 100 {
		t.Errorf("Expected 100 allowed requests, got %d", allowedCount)
	}
}

func TestLimiter_CleanupBuckets(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})
	defer limiter.Stop()

	for i := 0; i < 10; i++ {
		clientID := fmt.Sprintf("127.0.0.%d", i+1)
		if allowed, _ := limiter.Allow(clientID, "/store/stats", "GET"); !allowed {
			t.Errorf("Expected request from %s to be allowed", clientID)
		}
	}
	if n := limiter.bucketCount(); n != 10 {
		t.Fatalf("Expected 10 buckets, got %d", n)
	}

	limiter.cleanupBuckets(time.Now().Add(-time.Hour))
	if n := limiter.bucketCount(); n != 10 {
		t.Errorf("Expected recent buckets to survive cleanup, got %d", n)
	}

	limiter.cleanupBuckets(time.Now().Add(time.Second))
	if n := limiter.bucketCount(); n != 0 {
		t.Errorf("Expected stale buckets to be removed, got %d", n)
	}
}

func TestLimiter_Burst(t *testing.T) {
	config := &Config{
		Enabled:       true,
		DefaultLimit:  10,
		DefaultWindow: time.Minute,
		EndpointConfigs: []EndpointConfig{
			{Path: "/ingest/", Method: "POST", Limit: 10, Window: time.Minute, Burst: 5},
		},
	}
	limiter := NewLimiter(config)
	defer limiter.Stop()

	clientID := "127.0.0.1"

	for i := 0; i < 5; i++ {
		allowed, _ := limiter.Allow(clientID, "/ingest/team", "POST")
		if !allowed {
			t.Errorf("Expected burst request %d to be allowed", i+1)
		}
	}

	allowed, _ := limiter.Allow(clientID, "/ingest/team", "POST")
	if allowed {
		t.Error("Expected request after burst to be denied")
	}
}

func TestNewLimiter_NilConfig(t *testing.T) {
	limiter := NewLimiter(nil)
	defer limiter.Stop()
	defer limiter.Stop()

	allowed, rateInfo := limiter.Allow("127.0.0.1", "/store/stats", "GET")
	if !allowed {
		t.Error("Expected request to be allowed with default config")
	}
	if rateInfo.Limit != 1000 {
		t.Errorf("Expected default limit 1000, got %d", rateInfo.Limit)
	}
}

func TestMatchEndpoint(t *testing.T) {
	configs := DefaultEndpointConfigs()

	if c := MatchEndpoint("/recommend/team", "POST", configs); c == nil || c.Limit != 10 {
		t.Errorf("Expected team limit 10, got %+v", c)
	}
	if c := MatchEndpoint("/recommend", "POST", configs); c == nil || c.Limit != 60 {
		t.Errorf("Expected recommend limit 60, got %+v", c)
	}
	if c := MatchEndpoint("/trends/Data%20Engineer", "GET", configs); c == nil || c.Limit != 30 {
		t.Errorf("Expected trends prefix match, got %+v", c)
	}
	if c := MatchEndpoint("/store/stats", "GET", configs); c != nil {
		t.Errorf("Expected no match for read endpoint, got %+v", c)
	}
	if c := MatchEndpoint("/health", "GET", configs); c == nil || c.Limit != 0 {
		t.Errorf("Expected unlimited health check, got %+v", c)
	}
}

func TestMatchEndpoint_LongestPrefixAndAnyMethod(t *testing.T) {
	configs := []EndpointConfig{
		{Path: "/ingest/", Method: "POST", Limit: 100},
		{Path: "/ingest/documents/", Method: "POST", Limit: 5},
		{Path: "/runs/", Limit: 7},
	}

	if c := MatchEndpoint("/ingest/documents/bulk", "POST", configs); c == nil || c.Limit != 5 {
		t.Errorf("Expected longest prefix match, got %+v", c)
	}
	if c := MatchEndpoint("/ingest/team", "POST", configs); c == nil || c.Limit != 100 {
		t.Errorf("Expected /ingest/ prefix match, got %+v", c)
	}
	if c := MatchEndpoint("/runs/abc", "DELETE", configs); c == nil || c.Limit != 7 {
		t.Errorf("Expected empty method to match any method, got %+v", c)
	}
	if c := MatchEndpoint("/recommend", "OPTIONS", configs); c == nil || c.Limit != 0 {
		t.Errorf("Expected preflight to be unlimited, got %+v", c)
	}
}

func TestParseEndpointOverrides(t *testing.T) {
	got, err := ParseEndpointOverrides("POST /recommend=20/1m, get /trends/=3/10s,")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []EndpointConfig{
		{Path: "/recommend", Method: "POST", Limit: 20, Window: time.Minute, Burst: 4},
		{Path: "/trends/", Method: "GET", Limit: 3, Window: 10 * time.Second, Burst: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("Expected %d entries, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}

	for _, bad := range []string{"POST /recommend", "/recommend=1/1m", "POST /recommend=x/1m", "POST /recommend=1/soon", "POST /recommend=5"} {
		if _, err := ParseEndpointOverrides(bad); err == nil {
			t.Errorf("Expected error for %q", bad)
		}
	}
}

func TestLoadConfig_EndpointOverrides(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_ENDPOINTS", "POST /recommend=5/1m, GET /runs/=50/1m")

	cfg := LoadConfig()
	if c := MatchEndpoint("/recommend", "POST", cfg.EndpointConfigs); c == nil || c.Limit != 5 {
		t.Errorf("Expected overridden recommend limit 5, got %+v", c)
	}
	if c := MatchEndpoint("/runs/123", "GET", cfg.EndpointConfigs); c == nil || c.Limit != 50 {
		t.Errorf("Expected added runs limit 50, got %+v", c)
	}
	if len(cfg.EndpointConfigs) != len(DefaultEndpointConfigs())+1 {
		t.Errorf("Expected one appended entry, got %d entries", len(cfg.EndpointConfigs))
	}

	t.Setenv("RATE_LIMIT_ENDPOINTS", "garbage")
	if c := MatchEndpoint("/recommend", "POST", LoadConfig().EndpointConfigs); c == nil || c.Limit != 60 {
		t.Errorf("Expected defaults when overrides are invalid, got %+v", c)
	}
}
