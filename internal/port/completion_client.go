package port

import "context"

// CompletionRequest carries a single chat completion call.
type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float64
	MaxTokens    int
	// JSONMode asks providers that support it to constrain output to a JSON object.
	JSONMode bool
}

// CompletionResponse contains the text returned by a completion provider.
type CompletionResponse struct {
	Text     string
	Model    string
	Provider string
}

// CompletionClient abstracts a text completion service.
type CompletionClient interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}
