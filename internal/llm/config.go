// Package llm provides the language model adapter used to generate recommendations.
// Callers depend on the Client interface; Gemini is the only implementation.
package llm

import (
	"fmt"
	"strings"
	"sync"
)

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is the fastest model, used for short trend summaries
	TierLite ModelTier = "lite"
	// TierStandard is the default for recommendation generation
	TierStandard ModelTier = "standard"
	// TierAdvanced is the most capable and slowest model
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

// ProviderGemini is the Google Gemini provider
const ProviderGemini Provider = "gemini"

// tierAliases maps the user-facing speed names onto tiers.
var tierAliases = map[string]ModelTier{
	"fast":     TierLite,
	"balanced": TierStandard,
	"powerful": TierAdvanced,
}

// ParseTier accepts a tier name (lite, standard, advanced) or its alias
// (fast, balanced, powerful), case-insensitively.
func ParseTier(s string) (ModelTier, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	switch ModelTier(key) {
	case TierLite, TierStandard, TierAdvanced:
		return ModelTier(key), nil
	}
	if t, ok := tierAliases[key]; ok {
		return t, nil
	}
	return "", fmt.Errorf("unknown model tier %q: use fast, balanced or powerful", s)
}

// Alias returns the speed name for a tier.
func (t ModelTier) Alias() string {
	for alias, tier := range tierAliases {
		if tier == t {
			return alias
		}
	}
	return string(t)
}

// Config holds the model configuration for the application
type Config struct {
	Provider Provider
	Models   map[ModelTier]string
}

// DefaultConfig returns the default Gemini configuration
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
	}
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}

// WithModel returns a new Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := &Config{
		Provider: c.Provider,
		Models:   make(map[ModelTier]string),
	}
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	newConfig.Models[tier] = model
	return newConfig
}

// TierSelector holds the tier used for generation. It can be switched at runtime
// and is safe for concurrent use.
type TierSelector struct {
	mu   sync.RWMutex
	tier ModelTier
}

// NewTierSelector starts at the given tier, or TierStandard when empty.
func NewTierSelector(tier ModelTier) *TierSelector {
	if tier == "" {
		tier = TierStandard
	}
	return &TierSelector{tier: tier}
}

// Get returns the current tier.
func (s *TierSelector) Get() ModelTier {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tier
}

// Set switches tiers and returns the previous one.
func (s *TierSelector) Set(tier ModelTier) ModelTier {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.tier
	s.tier = tier
	return prev
}
