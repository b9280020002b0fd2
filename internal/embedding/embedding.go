// Package embedding converts text into fixed-length vectors for similarity search.
package embedding

import (
	"context"
	"fmt"
)

// Provider embeds text. Every vector returned by one provider has the same dimension.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Error is returned when the embedding service is unreachable or answers with something unusable.
type Error struct {
	Provider string
	Message  string
	Cause    error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("embedding error (%s): %s: %v", e.Provider, e.Message, e.Cause)
	}
	return fmt.Sprintf("embedding error (%s): %s", e.Provider, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Provider names accepted by New.
const (
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
)

// Options selects and configures a provider.
type Options struct {
	Provider  string
	Model     string
	APIKey    string
	OllamaURL string
}

// New builds the provider named in opts. The returned close function releases client resources.
func New(ctx context.Context, opts Options) (Provider, func() error, error) {
	switch opts.Provider {
	case ProviderOllama:
		return NewOllama(opts.OllamaURL, opts.Model), func() error { return nil }, nil
	case ProviderGemini, "":
		g, err := NewGemini(ctx, opts.APIKey, opts.Model)
		if err != nil {
			return nil, nil, err
		}
		return g, g.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown embedding provider %q", opts.Provider)
	}
}
