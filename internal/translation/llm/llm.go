// Package llm adapts a text-completion backend into a translation.Provider.
// Backends only send a prompt and return the reply; prompting, retries and
// reply parsing live here.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/iav0207/fcards2-sub001/internal/domain"
	"github.com/iav0207/fcards2-sub001/internal/translation"
	"github.com/iav0207/fcards2-sub001/internal/translation/prompt"
)

// Request is a single prompt for a completion backend.
type Request struct {
	Prompt string
	// JSON asks the backend for a JSON reply when it supports that.
	JSON bool
}

// Completer sends a prompt to a language model and returns its text reply.
// Errors should wrap the translation sentinels so retries can tell
// transient failures from permanent ones.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Provider implements translation.Provider on top of a Completer.
type Provider struct {
	name      string
	completer Completer
	retry     translation.RetryPolicy
	logger    *slog.Logger
}

var _ translation.Provider = (*Provider)(nil)

// NewProvider wraps completer under the given provider name.
func NewProvider(name string, completer Completer, retry translation.RetryPolicy, logger *slog.Logger) (*Provider, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: provider name cannot be empty", translation.ErrInvalidConfig)
	}
	if completer == nil {
		return nil, fmt.Errorf("%w: completer cannot be nil", translation.ErrInvalidConfig)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		name:      name,
		completer: completer,
		retry:     retry,
		logger:    logger.With(slog.String("provider", name)),
	}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return p.name
}

// EvaluateTranslation asks the model to grade req.UserTranslation.
func (p *Provider) EvaluateTranslation(ctx context.Context, req domain.EvaluationRequest) (*domain.EvaluationResult, error) {
	text, err := prompt.Evaluation(req)
	if err != nil {
		return nil, err
	}

	reply, err := p.complete(ctx, Request{Prompt: text, JSON: true})
	if err != nil {
		return nil, err
	}

	result, err := prompt.ParseEvaluation(reply)
	if err != nil {
		p.logger.WarnContext(ctx, "unparseable evaluation reply", slog.Int("reply_length", len(reply)))
		return nil, err
	}
	return result, nil
}

// GenerateTranslation asks the model to translate req.Content.
func (p *Provider) GenerateTranslation(ctx context.Context, req domain.GenerationRequest) (string, error) {
	text, err := prompt.Generation(req)
	if err != nil {
		return "", err
	}

	reply, err := p.complete(ctx, Request{Prompt: text})
	if err != nil {
		return "", err
	}
	return prompt.ParseGeneration(reply)
}

func (p *Provider) complete(ctx context.Context, req Request) (string, error) {
	p.logger.DebugContext(ctx, "sending prompt", slog.Int("prompt_length", len(req.Prompt)))

	return translation.WithRetry(ctx, p.logger, p.retry, func(ctx context.Context) (string, error) {
		return p.completer.Complete(ctx, req)
	})
}

// ClassifyStatus wraps err with the translation sentinel matching an HTTP
// status code returned by a provider API.
func ClassifyStatus(status int, err error) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: %w", translation.ErrAPIKey, err)
	case status == http.StatusRequestTimeout || status == http.StatusTooManyRequests || status >= 500:
		return fmt.Errorf("%w: %w", translation.ErrTransientFailure, err)
	default:
		return fmt.Errorf("%w: %w", translation.ErrProviderFailed, err)
	}
}

var transientHints = []string{
	"429",
	"500",
	"502",
	"503",
	"504",
	"resource_exhausted",
	"unavailable",
	"deadline",
	"timeout",
	"connection reset",
	"overloaded",
}

// ClassifyError wraps err with a translation sentinel judged from its
// message, for SDKs that do not expose a status code.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", translation.ErrTransientFailure, err)
	}
	if translation.IsAPIKeyError(err) {
		return fmt.Errorf("%w: %w", translation.ErrAPIKey, err)
	}
	msg := strings.ToLower(err.Error())
	for _, hint := range transientHints {
		if strings.Contains(msg, hint) {
			return fmt.Errorf("%w: %w", translation.ErrTransientFailure, err)
		}
	}
	return fmt.Errorf("%w: %w", translation.ErrProviderFailed, err)
}
