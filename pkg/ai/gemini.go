package ai

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/johnquangdev/acta-generator/pkg/config"
)

// GeminiClient calls Google's Generative AI through the genai SDK
type GeminiClient struct {
	client      *genai.Client
	model       string
	temperature float32
	timeout     time.Duration
}

// NewGeminiClient creates a Gemini client. A custom HTTP client may be passed for tests.
func NewGeminiClient(ctx context.Context, cfg *config.LLMConfig, httpClient *http.Client) (*GeminiClient, error) {
	apiKey := cfg.GeminiAPIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}

	cc := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if cfg.GeminiURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.GeminiURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}

	return &GeminiClient{
		client:      client,
		model:       model,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
	}, nil
}

// Name returns the provider name
func (g *GeminiClient) Name() string {
	return config.ProviderGemini
}

// Complete sends the prompt and concatenates the text parts of the first candidate
func (g *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	temperature := g.temperature
	gc := &genai.GenerateContentConfig{
		Temperature: &temperature,
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), gc)
	if err != nil {
		return "", newServiceError(g.Name(), 0, fmt.Errorf("failed to generate content: %w", err))
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", newServiceError(g.Name(), 0, fmt.Errorf("no content generated"))
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	if sb.Len() == 0 {
		return "", newServiceError(g.Name(), 0, fmt.Errorf("no content generated"))
	}
	return sb.String(), nil
}
