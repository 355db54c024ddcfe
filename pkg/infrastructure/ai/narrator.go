package ai

import (
	"fmt"
	"log/slog"

	"github.com/vsinha/supplyadvisor/pkg/infrastructure/config"
)

// Supported narrator providers
const (
	ProviderNone       = "none"
	ProviderOpenRouter = "openrouter"
	ProviderOpenAI     = "openai"
)

// NewNarrator builds the configured narrator wrapped in retries and a circuit
// breaker. The "none" provider yields a nil narrator.
func NewNarrator(cfg config.AIConfig, logger *slog.Logger) (Narrator, error) {
	var client Narrator
	switch cfg.Provider {
	case "", ProviderNone:
		return nil, nil
	case ProviderOpenRouter:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("ai.api_key is required for provider %s", cfg.Provider)
		}
		client = NewOpenRouterClient(cfg.APIKey, cfg.Model, cfg.Timeout, logger)
	case ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("ai.api_key is required for provider %s", cfg.Provider)
		}
		client = NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.BaseURL, cfg.Timeout, logger)
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.Provider)
	}

	logger.Info("narrator configured",
		slog.String("provider", cfg.Provider),
		slog.String("model", cfg.Model),
		slog.Bool("anonymize", cfg.Anonymize))

	return NewResilientNarrator(cfg.Provider, client, logger,
		WithRetries(cfg.MaxRetries, cfg.RetryDelay),
	), nil
}
