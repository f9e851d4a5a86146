// Package analysis turns extracted document text into structured financial or
// earnings analyses by prompting a completion service, recovering JSON from its
// response and falling back to local heuristics when the response is unusable.
package analysis

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"finlens/internal/domain"
	"finlens/internal/port"
)

// DefaultCompletionTimeout bounds a single completion call.
const DefaultCompletionTimeout = 60 * time.Second

// Config describes one structured extraction task.
type Config[T any] struct {
	Name         string
	SystemPrompt string
	BuildPrompt  func(text string, tables *domain.TableClassification) string
	Temperature  float64
	MaxTokens    int

	// Normalize, if set, fills defaults on decoded model output.
	Normalize func(*T)
	// Richness returns an error when decoded model output is too sparse to use.
	Richness func(*T) error
	// Fallback derives a result without the model.
	Fallback func(text string, tables *domain.TableClassification) *T
	// Enhance, if set, supplements accepted model output with table data.
	Enhance func(*T, *domain.TableClassification)
}

// Outcome reports where a result came from and, for fallbacks, why.
type Outcome struct {
	Source   domain.AnalysisSource `json:"source"`
	Reason   string                `json:"reason,omitempty"`
	Provider string                `json:"provider,omitempty"`
}

// Orchestrator runs a Config against a completion client.
type Orchestrator[T any] struct {
	cfg     Config[T]
	client  port.CompletionClient
	timeout time.Duration
	logger  *zap.Logger
}

// NewOrchestrator creates an Orchestrator. A nil client always takes the fallback path.
func NewOrchestrator[T any](cfg Config[T], client port.CompletionClient, timeout time.Duration, logger *zap.Logger) *Orchestrator[T] {
	if timeout <= 0 {
		timeout = DefaultCompletionTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator[T]{cfg: cfg, client: client, timeout: timeout, logger: logger}
}

// Run produces a result for text. It never fails: every model problem leads to
// the configured fallback, reported through the Outcome.
func (o *Orchestrator[T]) Run(ctx context.Context, text string, tables *domain.TableClassification) (*T, Outcome) {
	result, provider, err := o.fromModel(ctx, text, tables)
	if err != nil {
		o.logger.Warn("analysis.Orchestrator: using fallback",
			zap.String("task", o.cfg.Name),
			zap.Error(err),
		)
		return o.cfg.Fallback(text, tables), Outcome{Source: domain.SourceFallback, Reason: err.Error()}
	}

	if o.cfg.Enhance != nil {
		o.cfg.Enhance(result, tables)
	}
	return result, Outcome{Source: domain.SourceModel, Provider: provider}
}

func (o *Orchestrator[T]) fromModel(ctx context.Context, text string, tables *domain.TableClassification) (*T, string, error) {
	if o.client == nil {
		return nil, "", domain.ErrCompletionUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	resp, err := o.client.Complete(ctx, port.CompletionRequest{
		SystemPrompt: o.cfg.SystemPrompt,
		UserPrompt:   o.cfg.BuildPrompt(text, tables),
		Temperature:  o.cfg.Temperature,
		MaxTokens:    o.cfg.MaxTokens,
		JSONMode:     true,
	})
	if err != nil {
		return nil, "", err
	}
	if strings.TrimSpace(resp.Text) == "" {
		return nil, resp.Provider, errors.New("empty completion")
	}

	result, err := RecoverJSON[T](resp.Text)
	if err != nil {
		return nil, resp.Provider, err
	}
	if o.cfg.Normalize != nil {
		o.cfg.Normalize(result)
	}
	if o.cfg.Richness != nil {
		if err := o.cfg.Richness(result); err != nil {
			return nil, resp.Provider, err
		}
	}

	o.logger.Debug("analysis.Orchestrator: model result accepted",
		zap.String("task", o.cfg.Name),
		zap.String("provider", resp.Provider),
		zap.String("model", resp.Model),
	)
	return result, resp.Provider, nil
}

// truncate limits text to maxChars runes.
func truncate(text string, maxChars int) string {
	if maxChars <= 0 {
		return text
	}
	n := 0
	for i := range text {
		if n == maxChars {
			return text[:i]
		}
		n++
	}
	return text
}
