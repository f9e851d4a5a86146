package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"finlens/internal/domain"
	"finlens/internal/port"
)

// circuitState tracks rate-limit backoff for a single provider.
type circuitState struct {
	mu      sync.RWMutex
	resetAt time.Time // zero value = closed (healthy)
}

func (c *circuitState) isOpenWithReset(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuitState) open(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

// FallbackClient tries completion providers in order, one attempt each,
// skipping those whose circuit is open after a rate limit.
// It implements port.CompletionClient.
type FallbackClient struct {
	clients  []port.CompletionClient
	circuits []*circuitState
	names    []string
	logger   *zap.Logger
	now      func() time.Time
}

// NewFallbackClient creates a FallbackClient from an ordered list of clients and their names.
func NewFallbackClient(clients []port.CompletionClient, names []string) *FallbackClient {
	circuits := make([]*circuitState, len(clients))
	for i := range circuits {
		circuits[i] = &circuitState{}
	}
	return &FallbackClient{
		clients:  clients,
		circuits: circuits,
		names:    names,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
}

// WithLogger sets the logger used to report provider failures.
func (f *FallbackClient) WithLogger(logger *zap.Logger) *FallbackClient {
	f.logger = logger
	return f
}

// Len returns the number of providers in the chain.
func (f *FallbackClient) Len() int {
	return len(f.clients)
}

func (f *FallbackClient) Complete(ctx context.Context, req port.CompletionRequest) (*port.CompletionResponse, error) {
	if len(f.clients) == 0 {
		return nil, domain.ErrCompletionUnavailable
	}

	now := f.now()
	var lastErr error
	allRateLimited := true
	var earliestReset time.Time

	for i, c := range f.clients {
		if resetAt, open := f.circuits[i].isOpenWithReset(now); open {
			f.logger.Info("llm.FallbackClient: skipping provider",
				zap.String("provider", f.names[i]),
				zap.Time("circuit_open_until", resetAt),
			)
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
			continue
		}

		out, err := c.Complete(ctx, req)
		if err == nil {
			return out, nil
		}

		f.logger.Warn("llm.FallbackClient: provider failed", zap.String("provider", f.names[i]), zap.Error(err))
		lastErr = err

		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			resetAt := now.Add(rlErr.RetryAfter)
			f.circuits[i].open(resetAt)
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
		} else {
			allRateLimited = false
		}

		if ctx.Err() != nil {
			return nil, fmt.Errorf("completion aborted: %w", ctx.Err())
		}
	}

	if lastErr == nil || allRateLimited {
		retryAfter := earliestReset.Sub(f.now())
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		return nil, NewRateLimitError("all", fmt.Errorf("all providers rate limited"), int(retryAfter.Seconds()))
	}

	return nil, fmt.Errorf("all providers failed: %w", lastErr)
}
