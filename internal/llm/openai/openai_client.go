// Package openai implements port.CompletionClient for OpenAI-compatible chat
// completion APIs, including Groq.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"finlens/internal/config"
	"finlens/internal/llm"
	"finlens/internal/port"
)

const (
	openAIURL = "https://api.openai.com/v1/chat/completions"
	groqURL   = "https://api.groq.com/openai/v1/chat/completions"

	openAIModel = "gpt-4o-mini"
	groqModel   = "llama-3.3-70b-versatile"
)

// Client implements port.CompletionClient using the Chat Completions API.
type Client struct {
	provider string
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewClient creates an OpenAI client from a provider config.
func NewClient(cfg *config.ProviderConfig) *Client {
	return newClient("openai", cfg, endpointOr(cfg, openAIURL), openAIModel)
}

// NewGroqClient creates a client for Groq's OpenAI-compatible endpoint.
func NewGroqClient(cfg *config.ProviderConfig) *Client {
	return newClient("groq", cfg, endpointOr(cfg, groqURL), groqModel)
}

// NewClientWithEndpoint creates a client pointing at a custom API endpoint (for testing).
func NewClientWithEndpoint(cfg *config.ProviderConfig, endpoint string) *Client {
	name := cfg.Provider
	if name == "" {
		name = "openai"
	}
	return newClient(name, cfg, endpoint, groqModel)
}

func endpointOr(cfg *config.ProviderConfig, def string) string {
	if cfg.BaseURL != "" {
		return cfg.BaseURL
	}
	return def
}

func newClient(provider string, cfg *config.ProviderConfig, endpoint, defaultModel string) *Client {
	model := cfg.DefaultModel
	if model == "" {
		model = defaultModel
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		provider: provider,
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	MaxTokens      int               `json:"max_tokens,omitempty"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

func (c *Client) Complete(ctx context.Context, req port.CompletionRequest) (*port.CompletionResponse, error) {
	var messages []chatMessage
	if req.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.UserPrompt})

	body := chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.JSONMode {
		body.ResponseFormat = map[string]string{"type": "json_object"}
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("calling %s API: %w", c.provider, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("%s API error (status %d): %s", c.provider, resp.StatusCode, llm.Truncate(string(respBody), 500))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := llm.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return nil, llm.NewRateLimitError(c.provider, baseErr, retryAfter)
		}
		return nil, baseErr
	}

	text, err := parseResponse(respBody)
	if err != nil {
		return nil, err
	}
	return &port.CompletionResponse{Text: text, Model: c.model, Provider: c.provider}, nil
}

// apiResponse models the Chat Completions API response.
type apiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func parseResponse(body []byte) (string, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("unmarshaling response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from API: no choices")
	}
	// A length cut still returns usable text; JSON recovery may salvage it.
	return resp.Choices[0].Message.Content, nil
}
