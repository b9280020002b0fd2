package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Client is the single call shape every language model adapter implements.
type Client interface {
	// GenerateContent generates free text using the specified model tier
	GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error)
	// GenerateJSON asks for JSON output and strips any code fences from the reply
	GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error)
	// GetModel returns the provider model name for a tier
	GetModel(tier ModelTier) string
	// Close releases any resources held by the client
	Close() error
}

// Sampling controls generation for one kind of call.
type Sampling struct {
	Temperature     float32
	TopP            float32
	MaxOutputTokens int32
}

// Sampling defaults. Free text is more varied than the JSON recommendation lists.
var (
	TextSampling = Sampling{Temperature: 0.7, TopP: 1.0, MaxOutputTokens: 2048}
	JSONSampling = Sampling{Temperature: 0.3, TopP: 1.0, MaxOutputTokens: 2048}
)

// BlockedError reports a reply withheld by the provider's safety filters.
type BlockedError struct {
	Reason string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("response blocked by provider: %s", e.Reason)
}

// NewClient creates a new LLM client based on configuration
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case ProviderGemini, "":
		return NewGeminiClient(ctx, config, apiKey)
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", config.Provider)
	}
}

// GeminiClient implements Client for Google Gemini.
type GeminiClient struct {
	client *genai.Client
	config *Config
	text   Sampling
	json   Sampling
}

// NewGeminiClient creates a Gemini client with TextSampling and JSONSampling.
func NewGeminiClient(ctx context.Context, config *Config, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		config: config,
		text:   TextSampling,
		json:   JSONSampling,
	}, nil
}

func (c *GeminiClient) model(tier ModelTier, s Sampling) (*genai.GenerativeModel, error) {
	name := c.config.GetModel(tier)
	if name == "" {
		return nil, fmt.Errorf("no model configured for tier %s", tier)
	}
	m := c.client.GenerativeModel(name)
	m.SetTemperature(s.Temperature)
	m.SetTopP(s.TopP)
	m.SetMaxOutputTokens(s.MaxOutputTokens)
	return m, nil
}

func (c *GeminiClient) generate(ctx context.Context, m *genai.GenerativeModel, prompt string) (string, error) {
	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	return responseText(resp)
}

// GenerateContent generates free text with TextSampling.
func (c *GeminiClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	m, err := c.model(tier, c.text)
	if err != nil {
		return "", err
	}
	return c.generate(ctx, m, prompt)
}

// GenerateJSON requests an application/json reply with JSONSampling and strips fences.
func (c *GeminiClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	m, err := c.model(tier, c.json)
	if err != nil {
		return "", err
	}
	m.ResponseMIMEType = "application/json"

	text, err := c.generate(ctx, m, prompt)
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(text), nil
}

// GetModel returns the model name for a tier
func (c *GeminiClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close releases resources held by the client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// responseText joins the text parts of the first candidate. A blocked prompt or a
// candidate stopped by the safety filter is a *BlockedError.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("empty response")
	}
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != genai.BlockReasonUnspecified {
		return "", &BlockedError{Reason: fb.BlockReason.String()}
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", &BlockedError{Reason: candidate.FinishReason.String()}
	}
	if candidate.Content == nil {
		return "", fmt.Errorf("no content in response")
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no text in response (finish reason %s)", candidate.FinishReason)
	}
	return sb.String(), nil
}
