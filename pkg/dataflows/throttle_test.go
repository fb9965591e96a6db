package dataflows

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestThrottleRetries(t *testing.T) {
	th := NewThrottle(0, RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond, Multiplier: 2})

	calls := 0
	err := th.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("flaky")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestThrottleGivesUp(t *testing.T) {
	th := NewThrottle(0, RetryConfig{MaxRetries: 1, BaseDelay: time.Millisecond, Multiplier: 2})
	boom := errors.New("boom")

	calls := 0
	err := th.Do(context.Background(), func() error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestThrottleSpacesCalls(t *testing.T) {
	th := NewThrottle(30*time.Millisecond, RetryConfig{})

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := th.Do(context.Background(), func() error { return nil }); err != nil {
			t.Fatal(err)
		}
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Fatalf("calls were not spaced out: %v", elapsed)
	}
}

func TestThrottleHonoursCancel(t *testing.T) {
	th := NewThrottle(time.Hour, RetryConfig{})
	_ = th.Do(context.Background(), func() error { return nil })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	if err := th.Do(ctx, func() error { called = true; return nil }); err == nil {
		t.Fatalf("expected context error")
	}
	if called {
		t.Fatalf("fn must not run after cancellation")
	}
}

func TestNilThrottle(t *testing.T) {
	var th *Throttle
	if err := th.Do(context.Background(), func() error { return nil }); err != nil {
		t.Fatal(err)
	}
}
