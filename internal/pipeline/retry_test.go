package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/organvm-iii-ergon/universal-mail--automation/internal/infra/mailstore"
)

var testRetryConfig = RetryConfig{
	MaxAttempts:     4,
	InitialDelay:    1 * time.Second,
	MaxDelay:        8 * time.Second,
	BackoffMultiple: 2.0,
}

func noSleep(ctx context.Context, d time.Duration) error { return nil }

func throttled() error {
	return mailstore.NewError(mailstore.KindRateLimited, "apply_batch",
		errors.New("quota exceeded"))
}

func TestCallWithRetrySucceedsAfterThrottles(t *testing.T) {
	calls := 0
	retries := 0
	err := callWithRetry(context.Background(), testRetryConfig, noSleep,
		func(attempt int) { retries++ },
		func() error {
			calls++
			if calls < 3 {
				return throttled()
			}
			return nil
		})
	if err != nil {
		t.Fatalf("callWithRetry() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if retries != 2 {
		t.Errorf("onRetry invocations = %d, want 2", retries)
	}
}

func TestCallWithRetryStopsOnPermanentError(t *testing.T) {
	permanent := mailstore.NewError(mailstore.KindPermanent, "apply_batch",
		errors.New("invalid label"))
	calls := 0
	err := callWithRetry(context.Background(), testRetryConfig, noSleep, nil,
		func() error {
			calls++
			return permanent
		})
	if !errors.Is(err, permanent) {
		t.Fatalf("error = %v, want the permanent error unwrapped", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestCallWithRetryExhaustsAttempts(t *testing.T) {
	calls := 0
	err := callWithRetry(context.Background(), testRetryConfig, noSleep, nil,
		func() error {
			calls++
			return throttled()
		})
	if err == nil {
		t.Fatal("error = nil, want exhaustion")
	}
	if calls != testRetryConfig.MaxAttempts {
		t.Errorf("calls = %d, want %d", calls, testRetryConfig.MaxAttempts)
	}
	// The classified cause survives the exhaustion wrapper.
	if mailstore.KindOf(err) != mailstore.KindRateLimited {
		t.Errorf("KindOf = %v, want KindRateLimited", mailstore.KindOf(err))
	}
}

func TestCallWithRetryHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := callWithRetry(ctx, testRetryConfig, realSleep, nil,
		func() error {
			calls++
			return throttled()
		})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 before the sleep noticed cancellation", calls)
	}
}

func TestCalculateBackoff(t *testing.T) {
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 8 * time.Second}, // capped at MaxDelay
		{10, 8 * time.Second},
	}
	for _, tt := range tests {
		if got := calculateBackoff(tt.attempt, testRetryConfig); got != tt.want {
			t.Errorf("calculateBackoff(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestSleepObservesDelays(t *testing.T) {
	var slept []time.Duration
	record := func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	_ = callWithRetry(context.Background(), testRetryConfig, record, nil,
		func() error { return throttled() })

	want := []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
	if len(slept) != len(want) {
		t.Fatalf("sleeps = %v, want %v", slept, want)
	}
	for i := range want {
		if slept[i] != want[i] {
			t.Errorf("sleep[%d] = %v, want %v", i, slept[i], want[i])
		}
	}
}
