package llm

import (
	"fmt"
	"sort"

	"finlens/internal/config"
	"finlens/internal/port"
)

// ProviderFactory is a function that creates a CompletionClient from a provider config.
type ProviderFactory func(cfg *config.ProviderConfig) (port.CompletionClient, error)

// registry of provider factories, populated via RegisterProvider at startup.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a completion provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// RegisteredProviders returns the names of all registered providers, sorted.
func RegisteredProviders() []string {
	names := make([]string, 0, len(providers))
	for n := range providers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// NewClient creates a CompletionClient from a provider config using the registered factory.
func NewClient(cfg *config.ProviderConfig) (port.CompletionClient, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown completion provider: %s", cfg.Provider)
	}
	return factory(cfg)
}

// NewChain builds a FallbackClient from every configured provider in priority order.
// Providers without an API key are skipped. Returns the provider names used.
func NewChain(cfg *config.LLMConfig) (*FallbackClient, []string, error) {
	var (
		clients []port.CompletionClient
		names   []string
	)
	for _, pc := range cfg.Providers() {
		if pc.APIKey == "" {
			continue
		}
		c, err := NewClient(pc)
		if err != nil {
			return nil, nil, fmt.Errorf("creating %s client: %w", pc.Provider, err)
		}
		clients = append(clients, c)
		names = append(names, pc.Provider)
	}
	return NewFallbackClient(clients, names), names, nil
}
