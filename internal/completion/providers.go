package completion

import (
	"context"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/idebisnis-backend/internal/config"
)

// NewFromConfig builds the provider chain from every provider with a key.
func NewFromConfig(ctx context.Context, cfg *config.Config) (*Chain, error) {
	var providers []Provider

	if cfg.ChatAPIKey != "" {
		providers = append(providers, NewChatClient("chat", cfg.ChatAPIURL, cfg.ChatAPIKey,
			Models{Preview: cfg.ChatPreviewModel, Full: cfg.ChatFullModel}, cfg.AITimeout))
	}
	if cfg.DeepSeekAPIKey != "" {
		providers = append(providers, NewChatClient("deepseek", cfg.DeepSeekAPIURL, cfg.DeepSeekAPIKey,
			Models{Preview: cfg.DeepSeekPreviewModel, Full: cfg.DeepSeekFullModel}, cfg.AITimeout))
	}
	if cfg.AnthropicAPIKey != "" {
		providers = append(providers, NewAnthropicProvider(cfg.AnthropicAPIKey,
			Models{Preview: cfg.AnthropicPreviewModel, Full: cfg.AnthropicFullModel}))
	}
	if cfg.GeminiAPIKey != "" {
		gemini, err := NewGeminiProvider(ctx, cfg.GeminiAPIKey,
			Models{Preview: cfg.GeminiPreviewModel, Full: cfg.GeminiFullModel})
		if err != nil {
			return nil, err
		}
		providers = append(providers, gemini)
	}

	names := make([]string, len(providers))
	for i, p := range providers {
		names[i] = p.Name()
	}
	slog.Info("completion providers configured", "providers", names)

	return NewChain(providers,
		WithMaxRetries(cfg.AIMaxRetries),
		WithAttemptTimeout(cfg.AITimeout),
	), nil
}
