// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/skill-recommender/internal/embedding"
	"github.com/jonathan/skill-recommender/internal/llm"
)

// Environment variable names
const (
	EnvAPIKey             = "GEMINI_API_KEY"
	EnvModelTier          = "LLM_MODEL_TIER"
	EnvModelName          = "LLM_MODEL"
	EnvEmbeddingProvider  = "EMBEDDING_PROVIDER"
	EnvEmbeddingModel     = "EMBEDDING_MODEL"
	EnvOllamaURL          = "OLLAMA_URL"
	EnvVectorStorePath    = "VECTOR_STORE_PATH"
	EnvRoleSkillsPath     = "ROLE_SKILLS_PATH"
	EnvDocsWatchDir       = "DOCS_WATCH_DIR"
	EnvTrendRateLimit     = "TREND_FETCH_RATE_LIMIT"
	EnvTrendPeriod        = "TREND_FETCH_PERIOD"
	EnvTrendSourceTimeout = "TREND_SOURCE_TIMEOUT"
	EnvRedisURL           = "REDIS_URL"
	EnvTrendCacheTTL      = "TREND_CACHE_TTL"
	EnvDatabaseURL        = "DATABASE_URL"
	EnvUseBrowser         = "USE_BROWSER"
	EnvPort               = "PORT"
)

// ConfigurationError reports a missing or invalid setting.
type ConfigurationError struct {
	Key     string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("configuration error: %s is not set", e.Key)
	}
	return fmt.Sprintf("configuration error: %s: %s", e.Key, e.Message)
}

// Duration is a time.Duration that reads "15s" style strings from JSON.
type Duration time.Duration

// UnmarshalJSON accepts a duration string or a number of nanoseconds.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid duration %s", data)
	}
	*d = Duration(n)
	return nil
}

// Duration returns the value as a time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// MarshalJSON writes the duration as a string.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Config represents the application configuration that can be loaded from a JSON file.
// All fields are optional; missing values use Defaults or environment variables.
type Config struct {
	// Model
	APIKey    string `json:"api_key,omitempty"`    // Gemini API key
	ModelTier string `json:"model_tier,omitempty"` // lite | standard | advanced (or fast | balanced | powerful)
	ModelName string `json:"model_name,omitempty"` // Overrides the model used for ModelTier

	// Embeddings and documents
	EmbeddingProvider string `json:"embedding_provider,omitempty"` // gemini | ollama
	EmbeddingModel    string `json:"embedding_model,omitempty"`
	OllamaURL         string `json:"ollama_url,omitempty"`
	VectorStorePath   string `json:"vector_store_path,omitempty"`
	DocsWatchDir      string `json:"docs_watch_dir,omitempty"` // Directory to watch for new documents

	// Roles
	RoleSkillsPath string `json:"role_skills_path,omitempty"` // "embedded" selects the compiled-in table

	// Trends
	TrendRateLimit     int      `json:"trend_fetch_rate_limit,omitempty"` // Outbound requests per period
	TrendPeriod        Duration `json:"trend_fetch_period,omitempty"`
	TrendSourceTimeout Duration `json:"trend_source_timeout,omitempty"`
	RedisURL           string   `json:"redis_url,omitempty"` // Empty disables the source cache
	TrendCacheTTL      Duration `json:"trend_cache_ttl,omitempty"`
	UseBrowser         bool     `json:"use_browser,omitempty"` // Render blog pages with a headless browser

	// Persistence and serving
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL; empty disables run history
	Port        int    `json:"port,omitempty"`

	Verbose bool `json:"verbose,omitempty"` // Print detailed debug information
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		ModelTier:          string(llm.TierStandard),
		EmbeddingProvider:  embedding.ProviderGemini,
		EmbeddingModel:     "text-embedding-004",
		OllamaURL:          "http://localhost:11434",
		VectorStorePath:    "data/vectorstore/skill_index",
		RoleSkillsPath:     "data/static_role_skills.json",
		TrendRateLimit:     10,
		TrendPeriod:        Duration(time.Second),
		TrendSourceTimeout: Duration(15 * time.Second),
		TrendCacheTTL:      Duration(10 * time.Minute),
		Port:               8000,
	}
}

// Load builds the effective configuration: defaults, then the optional JSON file at
// path, then environment variables.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if path != "" {
		fileCfg, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg.MergeWithDefaults(cfg)
	}
	cfg.ApplyEnv()
	return &cfg, nil
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// ApplyEnv overrides fields with any environment variables that are set.
// Unparseable numeric or duration values are ignored.
func (c *Config) ApplyEnv() {
	setString(&c.APIKey, EnvAPIKey)
	setString(&c.ModelTier, EnvModelTier)
	setString(&c.ModelName, EnvModelName)
	setString(&c.EmbeddingProvider, EnvEmbeddingProvider)
	setString(&c.EmbeddingModel, EnvEmbeddingModel)
	setString(&c.OllamaURL, EnvOllamaURL)
	setString(&c.VectorStorePath, EnvVectorStorePath)
	setString(&c.RoleSkillsPath, EnvRoleSkillsPath)
	setString(&c.DocsWatchDir, EnvDocsWatchDir)
	setString(&c.RedisURL, EnvRedisURL)
	setString(&c.DatabaseURL, EnvDatabaseURL)

	if v, ok := envInt(EnvTrendRateLimit); ok {
		c.TrendRateLimit = v
	}
	if v, ok := envInt(EnvPort); ok {
		c.Port = v
	}
	if v, ok := envDuration(EnvTrendPeriod); ok {
		c.TrendPeriod = Duration(v)
	}
	if v, ok := envDuration(EnvTrendSourceTimeout); ok {
		c.TrendSourceTimeout = Duration(v)
	}
	if v, ok := envDuration(EnvTrendCacheTTL); ok {
		c.TrendCacheTTL = Duration(v)
	}
	if v := os.Getenv(EnvUseBrowser); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.UseBrowser = b
		}
	}
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	return n, err == nil
}

func envDuration(key string) (time.Duration, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	d, err := time.ParseDuration(v)
	return d, err == nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for the API key since only some commands need it;
// see RequireAPIKey.
func (c *Config) Validate() error {
	if _, err := llm.ParseTier(c.ModelTier); err != nil {
		return &ConfigurationError{Key: EnvModelTier, Message: err.Error()}
	}

	switch c.EmbeddingProvider {
	case embedding.ProviderGemini, embedding.ProviderOllama:
	default:
		return &ConfigurationError{Key: EnvEmbeddingProvider, Message: fmt.Sprintf("unknown provider %q", c.EmbeddingProvider)}
	}

	// Validate numeric ranges
	if c.TrendRateLimit <= 0 {
		return &ConfigurationError{Key: EnvTrendRateLimit, Message: "must be positive"}
	}
	if c.TrendPeriod <= 0 {
		return &ConfigurationError{Key: EnvTrendPeriod, Message: "must be positive"}
	}
	if c.TrendSourceTimeout <= 0 {
		return &ConfigurationError{Key: EnvTrendSourceTimeout, Message: "must be positive"}
	}
	if c.TrendCacheTTL < 0 {
		return &ConfigurationError{Key: EnvTrendCacheTTL, Message: "must be non-negative"}
	}
	if c.Port <= 0 || c.Port > 65535 {
		return &ConfigurationError{Key: EnvPort, Message: fmt.Sprintf("invalid port %d", c.Port)}
	}

	// Validate directories exist (if specified)
	if c.DocsWatchDir != "" {
		info, err := os.Stat(c.DocsWatchDir)
		if err != nil || !info.IsDir() {
			return &ConfigurationError{Key: EnvDocsWatchDir, Message: fmt.Sprintf("directory not found: %s", c.DocsWatchDir)}
		}
	}

	return nil
}

// RequireAPIKey returns a ConfigurationError when no model API key is set.
func (c *Config) RequireAPIKey() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return &ConfigurationError{Key: EnvAPIKey}
	}
	return nil
}

// Tier returns the configured model tier, falling back to standard.
func (c *Config) Tier() llm.ModelTier {
	t, err := llm.ParseTier(c.ModelTier)
	if err != nil {
		return llm.TierStandard
	}
	return t
}

// LLMConfig returns the model mapping, with ModelName replacing the configured tier's model.
func (c *Config) LLMConfig() *llm.Config {
	base := llm.DefaultConfig()
	if c.ModelName == "" {
		return base
	}
	return base.WithModel(c.Tier(), c.ModelName)
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	mergeString(&result.APIKey, defaults.APIKey)
	mergeString(&result.ModelTier, defaults.ModelTier)
	mergeString(&result.EmbeddingProvider, defaults.EmbeddingProvider)
	mergeString(&result.EmbeddingModel, defaults.EmbeddingModel)
	mergeString(&result.OllamaURL, defaults.OllamaURL)
	mergeString(&result.VectorStorePath, defaults.VectorStorePath)
	mergeString(&result.DocsWatchDir, defaults.DocsWatchDir)
	mergeString(&result.RoleSkillsPath, defaults.RoleSkillsPath)
	mergeString(&result.RedisURL, defaults.RedisURL)
	mergeString(&result.DatabaseURL, defaults.DatabaseURL)

	// Numeric fields: use default if zero
	if result.TrendRateLimit == 0 {
		result.TrendRateLimit = defaults.TrendRateLimit
	}
	if result.TrendPeriod == 0 {
		result.TrendPeriod = defaults.TrendPeriod
	}
	if result.TrendSourceTimeout == 0 {
		result.TrendSourceTimeout = defaults.TrendSourceTimeout
	}
	if result.TrendCacheTTL == 0 {
		result.TrendCacheTTL = defaults.TrendCacheTTL
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

func mergeString(dst *string, def string) {
	if *dst == "" {
		*dst = def
	}
}
