package geocode

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/klanec/pic2pin/internal/logger"
)

// RetryConfig defines retry behavior for lookups that might fail transiently
type RetryConfig struct {
	// MaxRetries is the maximum number of retries before giving up
	MaxRetries int

	// InitialBackoff is the duration to wait before the first retry
	InitialBackoff time.Duration

	// MaxBackoff is the maximum duration to wait between retries
	MaxBackoff time.Duration

	// BackoffFactor is the factor by which to increase backoff after each retry
	BackoffFactor float64
}

// DefaultRetryConfig returns a default retry configuration
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     30 * time.Second,
		BackoffFactor:  2.0,
	}
}

// StatusError is a non-2xx response from the lookup service.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("lookup service returned status %d", e.Code)
}

// IsRetryable determines if an error should be retried. Rate limiting and
// server-side failures are; client errors and cancellation are not.
func (rc RetryConfig) IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code == http.StatusTooManyRequests || statusErr.Code >= 500
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	lowerErr := strings.ToLower(err.Error())
	if strings.Contains(lowerErr, "timeout") ||
		strings.Contains(lowerErr, "connection") ||
		strings.Contains(lowerErr, "reset") ||
		strings.Contains(lowerErr, "broken pipe") {
		return true
	}

	return false
}

// RetryWithBackoff retries the given operation with exponential backoff
func RetryWithBackoff(ctx context.Context, operation string, fn func() error, config RetryConfig) error {
	var err error
	var attempt int

	for attempt = 0; attempt <= config.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return fmt.Errorf("%s canceled: %w", operation, ctx.Err())
		}

		if attempt > 0 {
			logger.Debug("Retry attempt %d/%d for %s", attempt, config.MaxRetries, operation)
		}

		err = fn()
		if err == nil {
			if attempt > 0 {
				logger.Info("Successfully completed %s after %d retries", operation, attempt)
			}
			return nil
		}

		if !config.IsRetryable(err) {
			return err
		}

		if attempt == config.MaxRetries {
			break
		}

		backoff := getBackoffDuration(attempt, config)
		logger.Debug("Backing off for %v before retrying %s: %v", backoff, operation, err)

		select {
		case <-time.After(backoff):
			// Continue to the next attempt
		case <-ctx.Done():
			return fmt.Errorf("%s canceled during retry: %w", operation, ctx.Err())
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operation, attempt, err)
}

// getBackoffDuration calculates the backoff duration for a retry attempt
func getBackoffDuration(attempt int, config RetryConfig) time.Duration {
	backoff := float64(config.InitialBackoff) * math.Pow(config.BackoffFactor, float64(attempt))

	// ±20% jitter
	jitter := (rand.Float64() * 0.4) - 0.2
	backoff = backoff * (1 + jitter)

	if backoff > float64(config.MaxBackoff) {
		backoff = float64(config.MaxBackoff)
	}

	return time.Duration(backoff)
}
