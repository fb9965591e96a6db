package dataflows

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// RetryConfig configures retry behavior
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Multiplier float64
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 1,
		BaseDelay:  500 * time.Millisecond,
		MaxDelay:   5 * time.Second,
		Multiplier: 2.0,
	}
}

// Throttle spaces out provider calls and retries failed ones with
// exponential backoff. A nil Throttle calls through directly.
type Throttle struct {
	limiter *rate.Limiter
	retry   RetryConfig
}

// NewThrottle allows one call per interval. interval <= 0 disables spacing.
func NewThrottle(interval time.Duration, retry RetryConfig) *Throttle {
	t := &Throttle{retry: retry}
	if interval > 0 {
		t.limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
	return t
}

// NewThrottleFromConfig builds the process-wide throttle from config.
func NewThrottleFromConfig(cfg *Config) *Throttle {
	retry := DefaultRetryConfig()
	retry.MaxRetries = cfg.MaxRetries
	if d := cfg.RetryBaseDelay(); d > 0 {
		retry.BaseDelay = d
	}
	return NewThrottle(cfg.RequestInterval(), retry)
}

// Do runs fn after waiting for the limiter, retrying on error.
func (t *Throttle) Do(ctx context.Context, fn func() error) error {
	if t == nil {
		return fn()
	}

	var lastErr error
	for attempt := 0; attempt <= t.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := sleepCtx(ctx, t.backoff(attempt)); err != nil {
				return err
			}
		}
		if t.limiter != nil {
			if err := t.limiter.Wait(ctx); err != nil {
				return err
			}
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if errors.Is(lastErr, context.Canceled) || errors.Is(lastErr, context.DeadlineExceeded) {
			return lastErr
		}
	}

	if t.retry.MaxRetries == 0 {
		return lastErr
	}
	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (t *Throttle) backoff(attempt int) time.Duration {
	delay := float64(t.retry.BaseDelay)
	for i := 1; i < attempt; i++ {
		delay *= t.retry.Multiplier
	}
	d := time.Duration(delay)
	if t.retry.MaxDelay > 0 && d > t.retry.MaxDelay {
		d = t.retry.MaxDelay
	}
	return d
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
