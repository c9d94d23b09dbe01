package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/johnquangdev/acta-generator/pkg/config"
)

// GroqClient is a minimal client for OpenAI compatible chat completion endpoints (Groq by default)
type GroqClient struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float32
	maxTokens   int
	client      *http.Client
}

// NewGroqClient creates a Groq client using values from the provided config.
// Pass a nil config to fall back to environment variables.
func NewGroqClient(cfg *config.LLMConfig) *GroqClient {
	var apiKey string
	if cfg != nil {
		apiKey = cfg.GroqAPIKey
	}
	if apiKey == "" {
		apiKey = os.Getenv("GROQ_API_KEY")
	}

	var base string
	if cfg != nil && cfg.GroqURL != "" {
		base = cfg.GroqURL
	} else {
		base = os.Getenv("GROQ_API_URL")
		if base == "" {
			base = "https://api.groq.com"
		}
	}

	c := &GroqClient{
		apiKey:      apiKey,
		baseURL:     base,
		model:       "llama-3.3-70b-versatile",
		temperature: 0.2,
		client:      &http.Client{Timeout: 60 * time.Second},
	}
	if cfg != nil {
		if cfg.Model != "" {
			c.model = cfg.Model
		}
		c.temperature = cfg.Temperature
		c.maxTokens = cfg.MaxTokens
		if cfg.Timeout > 0 {
			c.client.Timeout = cfg.Timeout
		}
	}
	return c
}

// ChatMessage is one message of a chat completion request
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the shape for chat completion requests
type ChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

// ChatResponse is a minimal response shape
type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Name returns the provider name
func (g *GroqClient) Name() string {
	return config.ProviderGroq
}

// Complete sends the prompt as a single user message and returns the assistant content
func (g *GroqClient) Complete(ctx context.Context, prompt string) (string, error) {
	reqBody := ChatRequest{
		Model:       g.model,
		Messages:    []ChatMessage{{Role: "user", Content: prompt}},
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", newServiceError(g.Name(), 0, fmt.Errorf("failed to marshal request: %w", err))
	}

	endpoint := g.baseURL + "/openai/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return "", newServiceError(g.Name(), 0, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", newServiceError(g.Name(), 0, fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", newServiceError(g.Name(), resp.StatusCode, fmt.Errorf("groq returned status %d: %s", resp.StatusCode, bytes.TrimSpace(body)))
	}

	var cr ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", newServiceError(g.Name(), resp.StatusCode, fmt.Errorf("failed to decode response: %w", err))
	}
	if len(cr.Choices) == 0 || strings.TrimSpace(cr.Choices[0].Message.Content) == "" {
		return "", newServiceError(g.Name(), resp.StatusCode, fmt.Errorf("empty response from groq"))
	}
	return cr.Choices[0].Message.Content, nil
}
