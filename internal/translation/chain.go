package translation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/iav0207/fcards2-sub001/internal/domain"
	"github.com/iav0207/fcards2-sub001/internal/platform/logger"
	"github.com/iav0207/fcards2-sub001/internal/redact"
)

// BaselineName is reported as the provider of baseline results.
const BaselineName = "baseline"

// DefaultTimeout bounds a single provider call when ChainConfig.Timeout is unset.
const DefaultTimeout = 30 * time.Second

// Baseline is the translator of last resort. It must never fail.
type Baseline interface {
	Evaluate(req domain.EvaluationRequest) domain.EvaluationResult
	Generate(req domain.GenerationRequest) string
}

// ChainConfig configures a Chain.
type ChainConfig struct {
	// Primary names the provider tried first. Empty means none is configured.
	Primary string
	// Timeout bounds each provider call.
	Timeout time.Duration
	// Strict returns the enriched ProviderError instead of a baseline result
	// when every provider failed.
	Strict bool
	// Fallback picks the provider tried after the primary. Defaults to FirstOther.
	Fallback FallbackPolicy
}

// Chain evaluates and generates translations: primary provider, then one
// fallback provider, then the baseline translator.
type Chain struct {
	registry *Registry
	baseline Baseline
	config   ChainConfig
	validate *validator.Validate
	logger   *slog.Logger
}

// NewChain creates a Chain. A nil registry means no providers.
func NewChain(registry *Registry, baseline Baseline, cfg ChainConfig, logger *slog.Logger) *Chain {
	if baseline == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("baseline cannot be nil")
	}
	if registry == nil {
		registry, _ = NewRegistry()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Fallback == nil {
		cfg.Fallback = FirstOther
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Chain{
		registry: registry,
		baseline: baseline,
		config:   cfg,
		validate: validator.New(),
		logger:   logger.With(slog.String("component", "translation_chain")),
	}
}

// Primary returns the configured primary provider name.
func (c *Chain) Primary() string {
	return c.config.Primary
}

// Providers lists the registered provider names.
func (c *Chain) Providers() []string {
	return c.registry.Names()
}

// EvaluateTranslation judges a user's translation. Unless the chain is
// strict it always returns a result.
func (c *Chain) EvaluateTranslation(
	ctx context.Context,
	req domain.EvaluationRequest,
) (*domain.EvaluationResult, error) {
	if err := c.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	res, perr := run(ctx, c, req.SourceLanguage, req.TargetLanguage, "evaluate",
		func(ctx context.Context, p Provider) (*domain.EvaluationResult, error) {
			r, err := p.EvaluateTranslation(ctx, req)
			if err == nil && r == nil {
				err = fmt.Errorf("%w: empty evaluation", ErrInvalidResponse)
			}
			return r, err
		})
	if res != nil {
		return res, nil
	}
	if perr != nil && c.config.Strict {
		return nil, perr
	}

	baseline := c.baseline.Evaluate(req)
	baseline.Provider = BaselineName
	baseline.Fallback = true
	if perr != nil {
		baseline.Error = true
		baseline.Warning = perr.UserMessage()
		baseline.APIKeyError = perr.APIKeyError
	}
	return &baseline, nil
}

// GenerateTranslation translates content. Unless the chain is strict it
// always returns a result; a baseline miss is the content in brackets.
func (c *Chain) GenerateTranslation(
	ctx context.Context,
	req domain.GenerationRequest,
) (*domain.GenerationResult, error) {
	if err := c.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	res, perr := run(ctx, c, req.SourceLanguage, req.TargetLanguage, "generate",
		func(ctx context.Context, p Provider) (*domain.GenerationResult, error) {
			text, err := p.GenerateTranslation(ctx, req)
			if err != nil {
				return nil, err
			}
			if text == "" {
				return nil, fmt.Errorf("%w: empty translation", ErrInvalidResponse)
			}
			return &domain.GenerationResult{Translation: text}, nil
		})
	if res != nil {
		return res, nil
	}
	if perr != nil && c.config.Strict {
		return nil, perr
	}

	result := &domain.GenerationResult{
		Translation: c.baseline.Generate(req),
		Provider:    BaselineName,
		Fallback:    true,
	}
	if perr != nil {
		result.Error = true
		result.Warning = perr.UserMessage()
		result.APIKeyError = perr.APIKeyError
	}
	return result, nil
}

// providerResult lets run stamp the answering provider's name.
type providerResult interface {
	*domain.EvaluationResult | *domain.GenerationResult
}

// run tries the primary and fallback providers in turn. It returns the first
// successful result, or nil and the enriched failure. Both are nil when no
// provider was attempted.
func run[R providerResult](
	ctx context.Context,
	c *Chain,
	sourceLanguage, targetLanguage, operation string,
	call func(context.Context, Provider) (R, error),
) (R, *ProviderError) {
	log := logger.FromContextOrDefault(ctx, c.logger).With(slog.String("operation", operation))

	primary, hasPrimary := c.registry.Get(c.config.Primary)
	candidates := make([]Provider, 0, 2)
	if hasPrimary {
		candidates = append(candidates, primary)
	} else if c.config.Primary != "" {
		log.Warn("primary translation provider is not registered",
			slog.String("provider", c.config.Primary))
	}
	if fb, ok := c.config.Fallback(c.registry, c.config.Primary); ok && (!hasPrimary || fb.Name() != primary.Name()) {
		candidates = append(candidates, fb)
	}

	var (
		attempted []string
		lastErr   error
		keyErr    bool
	)
	for _, p := range candidates {
		attempted = append(attempted, p.Name())
		start := time.Now()

		res, err := callWithTimeout(ctx, c.config.Timeout, func(ctx context.Context) (R, error) {
			return call(ctx, p)
		})
		if err == nil {
			stamp(res, p.Name())
			log.Debug("translation provider succeeded",
				slog.String("provider", p.Name()),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()))
			if len(attempted) > 1 {
				log.Warn("translation served by fallback provider",
					slog.String("provider", p.Name()),
					slog.Any("failed", attempted[:len(attempted)-1]))
			}
			return res, nil
		}

		lastErr = err
		if IsAPIKeyError(err) {
			keyErr = true
		}
		log.Warn("translation provider failed",
			slog.String("provider", p.Name()),
			slog.Bool("api_key_error", IsAPIKeyError(err)),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
			slog.String("error", redact.Error(err)))
	}

	var zero R
	if len(attempted) == 0 {
		return zero, nil
	}

	perr := &ProviderError{
		Provider:       c.config.Primary,
		Attempted:      attempted,
		HasProviders:   c.registry.Len() > 0,
		APIAvailable:   hasPrimary,
		SourceLanguage: sourceLanguage,
		TargetLanguage: targetLanguage,
		APIKeyError:    keyErr,
		Err:            lastErr,
	}
	log.Warn("all translation providers failed, degrading to baseline",
		slog.Any("attempted", attempted),
		slog.Bool("strict", c.config.Strict),
		slog.Bool("api_key_error", keyErr))
	return zero, perr
}

func stamp[R providerResult](res R, name string) {
	switch r := any(res).(type) {
	case *domain.EvaluationResult:
		r.Provider = name
		r.Fallback = false
	case *domain.GenerationResult:
		r.Provider = name
	}
}

// callWithTimeout runs fn with a deadline and gives up waiting when the
// deadline passes even if fn ignores its context. A panic in fn is reported
// as an error.
func callWithTimeout[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		v   T
		err error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if p := recover(); p != nil {
				var zero T
				done <- outcome{zero, fmt.Errorf("%w: provider panicked: %v", ErrProviderFailed, p)}
			}
		}()
		v, err := fn(ctx)
		done <- outcome{v, err}
	}()

	select {
	case o := <-done:
		return o.v, o.err
	case <-ctx.Done():
		var zero T
		return zero, fmt.Errorf("%w: %w", ErrTransientFailure, ctx.Err())
	}
}
