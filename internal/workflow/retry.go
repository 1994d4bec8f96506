// internal/workflow/retry.go
package workflow

import (
	"context"
	"fmt"
	"time"

	"hiring-coordinator/internal/common/config"
	"hiring-coordinator/internal/common/errors"
	"hiring-coordinator/internal/common/logger"
	"hiring-coordinator/internal/common/metrics"
)

// retryWithBackoff runs fn with exponential backoff until it succeeds,
// returns a non-retryable error, the attempt budget is spent, or the
// context is cancelled.
func retryWithBackoff(ctx context.Context, cfg config.RetryConfig, log logger.Logger, operationName string, fn func(ctx context.Context) error) error {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	delay := time.Duration(cfg.InitialDelayMS) * time.Millisecond
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}
	factor := cfg.BackoffFactor
	if factor <= 1 {
		factor = 2
	}

	var (
		err      error
		attempts int
	)
	for {
		attempts++
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if !errors.IsRetryable(err) {
			return err
		}
		if attempts >= attemptBudget(maxAttempts, err) {
			break
		}

		metrics.ExternalCallRetries.WithLabelValues(operationName).Inc()
		log.Warn(fmt.Sprintf("%s failed, retrying", operationName), map[string]interface{}{
			"error":       err,
			"attempt":     attempts,
			"maxAttempts": maxAttempts,
			"nextRetryIn": delay.String(),
		})

		select {
		case <-ctx.Done():
			return fmt.Errorf("%s cancelled during backoff: %w", operationName, ctx.Err())
		case <-time.After(delay):
		}
		delay = time.Duration(float64(delay) * factor)
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, attempts, err)
}

// attemptBudget is the total attempts allowed for err: the configured
// ceiling, further capped by the error code's own retry budget when the
// error carries one.
func attemptBudget(maxAttempts int, err error) int {
	code := errors.CodeOf(err)
	if code == "" {
		return maxAttempts
	}
	if budget := 1 + errors.GetRetryCount(code); budget < maxAttempts {
		return budget
	}
	return maxAttempts
}
