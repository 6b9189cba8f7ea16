package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/iav0207/fcards2-sub001/internal/config"
	"github.com/iav0207/fcards2-sub001/internal/platform/anthropic"
	"github.com/iav0207/fcards2-sub001/internal/platform/gemini"
	"github.com/iav0207/fcards2-sub001/internal/platform/openai"
	"github.com/iav0207/fcards2-sub001/internal/translation"
)

// buildRegistry registers every provider that has an API key, in the order
// gemini, anthropic, openai. The first registered provider other than the
// primary is the fallback.
func buildRegistry(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	httpClient *http.Client,
) (*translation.Registry, error) {
	retry := translation.RetryPolicy{
		MaxRetries: cfg.Translation.MaxRetries,
		BaseDelay:  cfg.Translation.RetryDelay,
	}
	registry, err := translation.NewRegistry()
	if err != nil {
		return nil, err
	}

	providers := cfg.Providers
	if providers.Gemini.APIKey != "" {
		p, err := gemini.New(ctx, logger, providers.Gemini, retry)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize gemini provider: %w", err)
		}
		if err := registry.Register(p); err != nil {
			return nil, err
		}
	}
	if providers.Anthropic.APIKey != "" {
		p, err := anthropic.New(logger, providers.Anthropic, retry)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize anthropic provider: %w", err)
		}
		if err := registry.Register(p); err != nil {
			return nil, err
		}
	}
	if providers.OpenAI.APIKey != "" {
		p, err := openai.New(logger, providers.OpenAI, retry, httpClient)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize openai provider: %w", err)
		}
		if err := registry.Register(p); err != nil {
			return nil, err
		}
	}

	if registry.Len() == 0 {
		logger.Warn("no translation provider configured, using the offline baseline only")
	}
	return registry, nil
}
