// Package anthropic provides a translation.Provider backed by Anthropic's
// Claude Messages API.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/iav0207/fcards2-sub001/internal/config"
	"github.com/iav0207/fcards2-sub001/internal/translation"
	"github.com/iav0207/fcards2-sub001/internal/translation/llm"
)

// Name is the provider name used in configuration and results.
const Name = "anthropic"

// DefaultMaxTokens caps replies when the configuration leaves it unset.
const DefaultMaxTokens = 1024

// messageSender is the part of the SDK client this package uses.
// *sdk.MessageService satisfies it.
type messageSender interface {
	New(ctx context.Context, body sdk.MessageNewParams, opts ...option.RequestOption) (*sdk.Message, error)
}

type completer struct {
	messages  messageSender
	model     string
	maxTokens int64
}

// New creates a Claude translation provider. The SDK's own retries are
// disabled; retry decides instead.
func New(logger *slog.Logger, cfg config.AnthropicConfig, retry translation.RetryPolicy) (*llm.Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: anthropic API key cannot be empty", translation.ErrInvalidConfig)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("%w: anthropic model name cannot be empty", translation.ErrInvalidConfig)
	}

	client := sdk.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	)
	return newProvider(logger, &client.Messages, cfg.Model, cfg.MaxTokens, retry)
}

func newProvider(
	logger *slog.Logger,
	messages messageSender,
	model string,
	maxTokens int64,
	retry translation.RetryPolicy,
) (*llm.Provider, error) {
	if logger == nil {
		return nil, fmt.Errorf("%w: logger cannot be nil", translation.ErrInvalidConfig)
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	logger.Info("initializing Anthropic translation provider", slog.String("model", model))

	return llm.NewProvider(Name, &completer{messages: messages, model: model, maxTokens: maxTokens}, retry, logger)
}

// Complete sends the prompt as a single user message and joins the text
// blocks of the reply.
func (c *completer) Complete(ctx context.Context, req llm.Request) (string, error) {
	msg, err := c.messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(req.Prompt)),
		},
	})
	if err != nil {
		var apiErr *sdk.Error
		if errors.As(err, &apiErr) {
			return "", llm.ClassifyStatus(apiErr.StatusCode, err)
		}
		return "", llm.ClassifyError(err)
	}
	if msg == nil || len(msg.Content) == 0 {
		return "", fmt.Errorf("%w: empty response", translation.ErrInvalidResponse)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("%w: response has no text", translation.ErrInvalidResponse)
	}
	return text.String(), nil
}
