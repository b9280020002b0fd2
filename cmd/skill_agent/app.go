package main

import (
	"context"
	"fmt"
	"log"

	"github.com/jonathan/skill-recommender/internal/config"
	"github.com/jonathan/skill-recommender/internal/db"
	"github.com/jonathan/skill-recommender/internal/embedding"
	"github.com/jonathan/skill-recommender/internal/llm"
	"github.com/jonathan/skill-recommender/internal/pipeline"
	"github.com/jonathan/skill-recommender/internal/skills"
	"github.com/jonathan/skill-recommender/internal/trends"
	"github.com/jonathan/skill-recommender/internal/vectorstore"
)

// loadConfig resolves the effective configuration for a command.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Verbose = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// app holds the components a command needs. Close releases them in reverse order.
type app struct {
	cfg      *config.Config
	table    *skills.Table
	store    *vectorstore.Store
	trends   *trends.Aggregator
	client   llm.Client
	pipeline *pipeline.Pipeline
	db       *db.DB
	closers  []func() error
}

func (a *app) onClose(fn func() error) {
	a.closers = append(a.closers, fn)
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Printf("[CLI] Cleanup failed: %v", err)
		}
	}
	a.closers = nil
}

// loadTable reads the role table; a load error is logged and the empty table is kept.
func loadTable(cfg *config.Config) *skills.Table {
	table, err := skills.LoadTable(cfg.RoleSkillsPath)
	if err != nil {
		log.Printf("[CLI] %v", err)
	}
	if cfg.Verbose {
		log.Printf("[CLI] Loaded %d roles from %s", table.Len(), cfg.RoleSkillsPath)
	}
	return table
}

// openStore opens the vector store. Without an embedder the store can report
// stats and be cleared, but not searched or added to.
func openStore(ctx context.Context, a *app, withEmbedder bool) error {
	var embedder embedding.Provider
	if withEmbedder {
		p, closeFn, err := embedding.New(ctx, embedding.Options{
			Provider:  a.cfg.EmbeddingProvider,
			Model:     a.cfg.EmbeddingModel,
			APIKey:    a.cfg.APIKey,
			OllamaURL: a.cfg.OllamaURL,
		})
		if err != nil {
			return fmt.Errorf("failed to create embedding provider: %w", err)
		}
		a.onClose(closeFn)
		embedder = p
	}
	a.store = vectorstore.Open(a.cfg.VectorStorePath, embedder)
	return nil
}

// newTrendAggregator builds the default sources behind the optional redis cache.
func newTrendAggregator(a *app) {
	cache := trends.NewCache(a.cfg.RedisURL, a.cfg.TrendCacheTTL.Duration(), nil)
	a.onClose(cache.Close)

	timeout := a.cfg.TrendSourceTimeout.Duration()
	a.trends = trends.NewAggregator(trends.DefaultSources(trends.DefaultConfig{
		RateLimit:     a.cfg.TrendRateLimit,
		Period:        a.cfg.TrendPeriod.Duration(),
		SourceTimeout: timeout,
		UseBrowser:    a.cfg.UseBrowser,
		Cache:         cache,
	}), timeout)
}

// newApp wires every component for recommend and serve. Generation needs the model API key.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, table: loadTable(cfg)}
	ok := false
	defer func() {
		if !ok {
			a.Close()
		}
	}()

	if err := openStore(ctx, a, true); err != nil {
		return nil, err
	}
	newTrendAggregator(a)

	client, err := llm.NewClient(ctx, cfg.LLMConfig(), cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	a.client = client
	a.onClose(client.Close)

	var recorder pipeline.Recorder
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.onClose(func() error { database.Close(); return nil })
		if err := database.Migrate(ctx); err != nil {
			return nil, err
		}
		a.db = database
		recorder = database
	}

	a.pipeline = pipeline.New(pipeline.Options{
		Table:    a.table,
		Store:    a.store,
		Trends:   a.trends,
		Client:   client,
		Tier:     llm.NewTierSelector(cfg.Tier()),
		Recorder: recorder,
		Verbose:  cfg.Verbose,
	})

	ok = true
	return a, nil
}
