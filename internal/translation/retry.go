package translation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"github.com/iav0207/fcards2-sub001/internal/redact"
)

// RetryPolicy controls how providers retry transient failures.
type RetryPolicy struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	// BaseDelay is the delay before the first retry; it doubles per attempt.
	BaseDelay time.Duration
}

// IsRetryable reports whether err is worth another attempt. Credential,
// safety and parse failures are permanent.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrAPIKey) || errors.Is(err, ErrContentBlocked) ||
		errors.Is(err, ErrInvalidResponse) || errors.Is(err, ErrInvalidConfig) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return errors.Is(err, ErrTransientFailure)
}

// WithRetry calls fn until it succeeds, fails permanently, or the policy is
// exhausted. Delays use exponential backoff with jitter and stop early when
// ctx is done.
func WithRetry[T any](ctx context.Context, log *slog.Logger, policy RetryPolicy, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	maxRetries := max(policy.MaxRetries, 0)

	for attempt := 0; ; attempt++ {
		v, err := fn(ctx)
		if err == nil {
			if attempt > 0 {
				log.DebugContext(ctx, "provider call succeeded after retry", slog.Int("attempt", attempt+1))
			}
			return v, nil
		}

		if !IsRetryable(err) {
			return zero, err
		}
		if attempt >= maxRetries {
			log.WarnContext(ctx, "maximum retry attempts reached",
				slog.Int("max_retries", maxRetries),
				slog.String("error", redact.Error(err)))
			return zero, err
		}

		// delay = base * 2^attempt * (0.5 + rand(0, 0.5))
		backoff := float64(policy.BaseDelay) * math.Pow(2, float64(attempt))
		delay := time.Duration(backoff * (0.5 + rand.Float64()*0.5))

		log.InfoContext(ctx, "retrying provider call after delay",
			slog.Int("attempt", attempt+1),
			slog.Duration("delay", delay),
			slog.String("error", redact.Error(err)))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return zero, fmt.Errorf("%w: %w", ErrTransientFailure, ctx.Err())
		}
	}
}
