package gemini

import (
	"context"
	"fmt"
	"time"
)

// RetryConfig configures the retry behavior for capability calls.
type RetryConfig struct {
	MaxRetries      int           // Maximum number of retry attempts
	InitialInterval time.Duration // Initial backoff interval
	MaxInterval     time.Duration // Maximum backoff interval
}

// DefaultRetryConfig returns sensible defaults for model API calls.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:      3,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     10 * time.Second,
	}
}

// withRetry executes fn with exponential backoff. Each attempt waits on the
// rate limiter and runs under its own timeout, so a hung call counts as one
// failed attempt rather than stalling the pipeline.
func (c *Client) withRetry(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	var lastErr error
	delay := c.retry.InitialInterval
	start := time.Now()

	for attempt := 0; attempt <= c.retry.MaxRetries; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return fmt.Errorf("rate limit wait: %w", err)
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		err := fn(attemptCtx)
		cancel()
		if err == nil {
			c.logger.Debug("capability call succeeded",
				"op", op,
				"attempts", attempt+1,
				"elapsed", time.Since(start),
			)
			return nil
		}

		lastErr = err

		if !retryableError(err) {
			return err
		}
		if attempt == c.retry.MaxRetries {
			break
		}

		c.logger.Debug("retrying capability call",
			"op", op,
			"attempt", attempt+1,
			"delay", delay,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return fmt.Errorf("context canceled during retry: %w", ctx.Err())
		case <-time.After(delay):
			delay = min(delay*2, c.retry.MaxInterval)
		}
	}

	return fmt.Errorf("%s after %d retries (elapsed: %v): %w",
		op, c.retry.MaxRetries, time.Since(start), lastErr)
}
