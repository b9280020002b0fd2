package embedding

import (
	"context"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultGeminiModel is used when no embedding model is configured.
const DefaultGeminiModel = "text-embedding-004"

// MaxGeminiBatch is the most requests the API accepts in one BatchEmbedContents call.
const MaxGeminiBatch = 100

// Gemini embeds text with the Gemini embedding API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini embedding adapter.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, &Error{Provider: ProviderGemini, Message: "API key is required"}
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, &Error{Provider: ProviderGemini, Message: "failed to create client", Cause: err}
	}
	return &Gemini{client: client, model: model}, nil
}

// Embed generates an embedding for a single text.
func (g *Gemini) Embed(ctx context.Context, text string) ([]float32, error) {
	res, err := g.client.EmbeddingModel(g.model).EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, &Error{Provider: ProviderGemini, Message: "embed request failed", Cause: err}
	}
	if res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, &Error{Provider: ProviderGemini, Message: "empty embedding"}
	}
	return res.Embedding.Values, nil
}

// EmbedBatch embeds texts with BatchEmbedContents, MaxGeminiBatch texts per call.
func (g *Gemini) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	em := g.client.EmbeddingModel(g.model)
	out := make([][]float32, 0, len(texts))
	for _, chunk := range batches(texts, MaxGeminiBatch) {
		batch := em.NewBatch()
		for _, text := range chunk {
			batch.AddContent(genai.Text(text))
		}

		res, err := em.BatchEmbedContents(ctx, batch)
		if err != nil {
			return nil, &Error{Provider: ProviderGemini, Message: "batch embed request failed", Cause: err}
		}
		if len(res.Embeddings) != len(chunk) {
			return nil, &Error{Provider: ProviderGemini, Message: "embedding count does not match input count"}
		}
		for _, e := range res.Embeddings {
			out = append(out, e.Values)
		}
	}
	return out, nil
}

// batches splits texts into consecutive slices of at most size elements.
func batches(texts []string, size int) [][]string {
	var out [][]string
	for len(texts) > size {
		out = append(out, texts[:size])
		texts = texts[size:]
	}
	if len(texts) > 0 {
		out = append(out, texts)
	}
	return out
}

// Close releases the underlying client.
func (g *Gemini) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}
