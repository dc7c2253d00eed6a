package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	codepulseErrors "codepulse/internal/errors"
)

// RetryOptions control the retry loop around a single AI call.
type RetryOptions struct {
	MaxAttempts    int           // total attempts, not extra retries
	BaseDelay      time.Duration // delay grows linearly with the attempt number
	JitterCeiling  time.Duration // uniform random addition on top of the base
	AttemptTimeout time.Duration // per-attempt deadline; 0 disables
}

const (
	defaultMaxAttempts    = 2
	defaultBaseDelay      = 1 * time.Second
	defaultJitterCeiling  = 1 * time.Second
	defaultAttemptTimeout = 90 * time.Second
)

func (o RetryOptions) withDefaults() RetryOptions {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = defaultMaxAttempts
	}
	if o.BaseDelay <= 0 {
		o.BaseDelay = defaultBaseDelay
	}
	if o.JitterCeiling < 0 {
		o.JitterCeiling = defaultJitterCeiling
	}
	return o
}

// executeWithRetry runs fn up to MaxAttempts times. After failed attempt k
// (1-based) it waits BaseDelay*k plus uniform jitter, so expected waits grow
// between rounds while identical clients still spread out. Waits abort on ctx
// cancellation. Parse failures are retried like transport failures: a fresh
// sampling draw can turn a malformed response into a valid one.
func executeWithRetry[T any](
	ctx context.Context,
	opts RetryOptions,
	policy *SamplingPolicy,
	logger *codepulseErrors.Logger,
	operation string,
	fn func(ctx context.Context, attempt int) (T, error),
) (T, error) {
	var zero T
	var lastErr error

	opts = opts.withDefaults()

	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		if attempt > 1 {
			delay := opts.BaseDelay*time.Duration(attempt-1) + policy.JitterDuration(opts.JitterCeiling)

			logger.Warn("Retrying AI operation",
				"operation", operation,
				"attempt", attempt,
				"max_attempts", opts.MaxAttempts,
				"delay", delay.String(),
				"error", lastErr.Error())

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return zero, ctx.Err()
			}
		}

		result, err := runAttempt(ctx, opts.AttemptTimeout, attempt, fn)
		if err == nil {
			if attempt > 1 {
				logger.Info("AI operation succeeded after retry",
					"operation", operation,
					"successful_attempt", attempt)
			}
			return result, nil
		}

		lastErr = err

		if !isRetryableError(err) {
			logger.Debug("Error is not retryable, stopping retry attempts",
				"operation", operation,
				"error", err.Error())
			break
		}
	}

	logger.LogError(lastErr, "AI operation failed after all retry attempts",
		"operation", operation,
		"max_attempts", opts.MaxAttempts)

	return zero, fmt.Errorf("operation '%s' failed after %d attempts: %w", operation, opts.MaxAttempts, lastErr)
}

func runAttempt[T any](
	ctx context.Context,
	timeout time.Duration,
	attempt int,
	fn func(ctx context.Context, attempt int) (T, error),
) (T, error) {
	if timeout > 0 {
		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return fn(attemptCtx, attempt)
	}
	return fn(ctx, attempt)
}

// isRetryableError reports whether another attempt could plausibly succeed.
// A missing or rejected credential never benefits from a retry; parent
// cancellation means the caller is gone. Everything else, including response
// validation failures, gets its remaining attempts.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) {
		return false
	}

	var appErr *codepulseErrors.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case codepulseErrors.ErrCodeMissingAPIKey,
			codepulseErrors.ErrCodeMissingInput,
			codepulseErrors.ErrCodeInvalidConfig:
			return false
		}
	}

	return true
}
