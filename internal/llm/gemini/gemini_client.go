package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/genai"

	"finlens/internal/config"
	"finlens/internal/llm"
	"finlens/internal/port"
)

const defaultModel = "gemini-2.0-flash"

// Client implements port.CompletionClient using the Gemini API through the genai SDK.
type Client struct {
	model  string
	client *genai.Client
}

// NewClient creates a Gemini completion client from a provider config.
func NewClient(cfg *config.ProviderConfig) (*Client, error) {
	return newClient(cfg, cfg.BaseURL)
}

// NewClientWithEndpoint creates a client pointing at a custom API base URL (for testing).
func NewClientWithEndpoint(cfg *config.ProviderConfig, baseURL string) (*Client, error) {
	return newClient(cfg, baseURL)
}

func newClient(cfg *config.ProviderConfig, baseURL string) (*Client, error) {
	model := cfg.DefaultModel
	if model == "" {
		model = defaultModel
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: timeout},
	}
	if baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(context.Background(), cc)
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return &Client{model: model, client: client}, nil
}

func (c *Client) Complete(ctx context.Context, req port.CompletionRequest) (*port.CompletionResponse, error) {
	gc := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(req.Temperature)),
	}
	if req.MaxTokens > 0 {
		gc.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.JSONMode {
		gc.ResponseMIMEType = "application/json"
	}
	if req.SystemPrompt != "" {
		gc.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemPrompt}},
		}
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(req.UserPrompt), gc)
	if err != nil {
		baseErr := fmt.Errorf("gemini generation failed: %w", err)
		if isRateLimited(err) {
			return nil, llm.NewRateLimitError("gemini", baseErr, 0)
		}
		return nil, baseErr
	}

	text := result.Text()
	if text == "" {
		return nil, fmt.Errorf("empty response from API")
	}
	return &port.CompletionResponse{Text: text, Model: c.model, Provider: "gemini"}, nil
}

func isRateLimited(err error) bool {
	var apiErr genai.APIError
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests
}
