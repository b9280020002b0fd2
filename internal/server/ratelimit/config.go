package ratelimit

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Exact path, or a prefix when it ends in "/"
	Method string        // HTTP method; empty matches any method
	Limit  int           // Maximum requests per window; 0 means unlimited
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// Environment variables read by LoadConfig.
const (
	envEnabled         = "RATE_LIMIT_ENABLED"
	envDefaultLimit    = "RATE_LIMIT_DEFAULT_LIMIT"
	envDefaultWindow   = "RATE_LIMIT_DEFAULT_WINDOW"
	envCleanupInterval = "RATE_LIMIT_CLEANUP_INTERVAL"
	envWhitelist       = "RATE_LIMIT_WHITELIST"
	envBlacklist       = "RATE_LIMIT_BLACKLIST"
	envEndpoints       = "RATE_LIMIT_ENDPOINTS"
)

// LoadConfig loads rate limiting configuration from environment variables.
// RATE_LIMIT_ENDPOINTS overrides or adds endpoint limits, for example
// "POST /recommend=20/1m, POST /recommend/team=5/1h".
func LoadConfig() *Config {
	if !envValue(envEnabled, true, strconv.ParseBool) {
		return &Config{Enabled: false}
	}

	endpoints := DefaultEndpointConfigs()
	if spec := os.Getenv(envEndpoints); spec != "" {
		overrides, err := ParseEndpointOverrides(spec)
		if err != nil {
			log.Printf("[rate-limit] Ignoring %s: %v", envEndpoints, err)
		} else {
			endpoints = MergeEndpointConfigs(endpoints, overrides)
		}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    envValue(envDefaultLimit, 1000, strconv.Atoi),
		DefaultWindow:   envValue(envDefaultWindow, time.Minute, time.ParseDuration),
		CleanupInterval: envValue(envCleanupInterval, 5*time.Minute, time.ParseDuration),
		Whitelist:       parseIPList(os.Getenv(envWhitelist)),
		Blacklist:       parseIPList(os.Getenv(envBlacklist)),
		EndpointConfigs: endpoints,
	}
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Tier 1: Model-backed operations (strictest limits)
		{Path: "/recommend/team", Method: "POST", Limit: 10, Window: time.Hour, Burst: 2},
		{Path: "/recommend/team/stream", Method: "POST", Limit: 10, Window: time.Hour, Burst: 2},
		{Path: "/recommend", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},

		// Tier 2: Outbound fetches and writes (moderate limits)
		{Path: "/trends/", Method: "GET", Limit: 30, Window: time.Minute, Burst: 5},
		{Path: "/ingest/", Method: "POST", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/store", Method: "DELETE", Limit: 10, Window: time.Minute, Burst: 2},
		{Path: "/models/switch", Method: "POST", Limit: 30, Window: time.Minute, Burst: 5},

		// Tier 3: Read operations (more lenient) - handled by default limit
		// Tier 4: Health check and preflight (unlimited) - see exemptions in matcher
	}
}

// ParseEndpointOverrides parses comma-separated "METHOD /path=LIMIT/WINDOW" entries.
// Burst is a fifth of the limit, at least 1.
func ParseEndpointOverrides(spec string) ([]EndpointConfig, error) {
	var out []EndpointConfig
	for _, entry := range strings.Split(spec, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		route, rate, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("entry %q: missing '='", entry)
		}
		method, path, ok := strings.Cut(strings.TrimSpace(route), " ")
		path = strings.TrimSpace(path)
		if !ok || !strings.HasPrefix(path, "/") {
			return nil, fmt.Errorf("entry %q: want \"METHOD /path\"", entry)
		}
		limitStr, windowStr, ok := strings.Cut(strings.TrimSpace(rate), "/")
		if !ok {
			return nil, fmt.Errorf("entry %q: want LIMIT/WINDOW", entry)
		}
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 0 {
			return nil, fmt.Errorf("entry %q: invalid limit %q", entry, limitStr)
		}
		window, err := time.ParseDuration(windowStr)
		if err != nil || window <= 0 {
			return nil, fmt.Errorf("entry %q: invalid window %q", entry, windowStr)
		}

		out = append(out, EndpointConfig{
			Path:   path,
			Method: strings.ToUpper(method),
			Limit:  limit,
			Window: window,
			Burst:  max(limit/5, 1),
		})
	}
	return out, nil
}

// MergeEndpointConfigs replaces entries of base that share method and path with an
// override and appends the rest.
func MergeEndpointConfigs(base, overrides []EndpointConfig) []EndpointConfig {
	out := append([]EndpointConfig(nil), base...)
	for _, o := range overrides {
		replaced := false
		for i := range out {
			if out[i].Path == o.Path && out[i].Method == o.Method {
				out[i] = o
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, o)
		}
	}
	return out
}

// envValue parses an environment variable, returning def when unset or unparseable.
func envValue[T any](key string, def T, parse func(string) (T, error)) T {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		return def
	}
	return v
}

// parseIPList parses a comma-separated list of IP addresses into a map.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
