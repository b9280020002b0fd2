package ratelimit

import (
	"net/http"
	"strings"
)

// unlimited is returned for exempt requests.
var unlimited = &EndpointConfig{}

// exempt reports requests that are never rate limited: health probes and CORS preflight.
func exempt(path, method string) bool {
	return method == http.MethodOptions || (path == "/health" && method == http.MethodGet)
}

// MatchEndpoint matches a request path and method to an endpoint configuration.
// An exact path wins; otherwise the longest matching "/"-terminated prefix. Returns nil
// when nothing matches so the caller applies the default limit.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if exempt(path, method) {
		return unlimited
	}

	var best *EndpointConfig
	for i := range configs {
		c := &configs[i]
		if c.Method != "" && c.Method != method {
			continue
		}
		if c.Path == path {
			return c
		}
		if strings.HasSuffix(c.Path, "/") && strings.HasPrefix(path, c.Path) {
			if best == nil || len(c.Path) > len(best.Path) {
				best = c
			}
		}
	}
	return best
}
