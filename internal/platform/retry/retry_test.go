package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

type recordingSleeper struct {
	waits []time.Duration
}

func (s *recordingSleeper) Sleep(_ context.Context, d time.Duration) error {
	s.waits = append(s.waits, d)
	return nil
}

var errFlaky = errors.New("flaky")

func TestRetrier_Do_RetriesUntilSuccess(t *testing.T) {
	t.Parallel()

	sleeper := &recordingSleeper{}
	r := New(sleeper)
	r.Jitter = nil

	calls := 0
	err := r.Do(context.Background(), Policy{MaxAttempts: 4, BaseDelay: time.Second, Backoff: BackoffLinear}, nil, func(context.Context, int) error {
		calls++
		if calls < 3 {
			return errFlaky
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got=%d", calls)
	}
	if len(sleeper.waits) != 2 || sleeper.waits[0] != time.Second || sleeper.waits[1] != 2*time.Second {
		t.Fatalf("unexpected waits: %v", sleeper.waits)
	}
}

func TestRetrier_Do_StopsOnNonRetryable(t *testing.T) {
	t.Parallel()

	permanent := errors.New("bad request")
	calls := 0
	err := New(&recordingSleeper{}).Do(context.Background(), Policy{MaxAttempts: 5}, func(err error) bool {
		return !errors.Is(err, permanent)
	}, func(context.Context, int) error {
		calls++
		return permanent
	})
	if !errors.Is(err, permanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected single call, got=%d", calls)
	}
}

func TestRetrier_Do_ReturnsLastErrorWhenExhausted(t *testing.T) {
	t.Parallel()

	sleeper := &recordingSleeper{}
	attemptsSeen := make([]int, 0, 3)
	err := New(sleeper).Do(context.Background(), Policy{MaxAttempts: 3}.NoDelay(), nil, func(_ context.Context, attempt int) error {
		attemptsSeen = append(attemptsSeen, attempt)
		return errFlaky
	})
	if !errors.Is(err, errFlaky) {
		t.Fatalf("expected flaky error, got %v", err)
	}
	if len(attemptsSeen) != 3 || attemptsSeen[2] != 2 {
		t.Fatalf("unexpected attempts: %v", attemptsSeen)
	}
	for _, wait := range sleeper.waits {
		if wait != 0 {
			t.Fatalf("expected zero waits, got %v", sleeper.waits)
		}
	}
}

func TestRetrier_Do_HonoursCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := New(nil).Do(ctx, Policy{MaxAttempts: 3}, nil, func(context.Context, int) error {
		t.Fatalf("fn must not run on a cancelled context")
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestPolicy_Delay(t *testing.T) {
	t.Parallel()

	linear := Policy{BaseDelay: 8 * time.Second, MaxDelay: 45 * time.Second, Backoff: BackoffLinear}
	if got := linear.Delay(0, nil); got != 8*time.Second {
		t.Fatalf("linear attempt 0: got %s", got)
	}
	if got := linear.Delay(9, nil); got != 45*time.Second {
		t.Fatalf("linear delay should be capped, got %s", got)
	}

	exp := Policy{BaseDelay: 500 * time.Millisecond, MaxDelay: 4 * time.Second, Backoff: BackoffExponential}
	if got := exp.Delay(2, nil); got != 2*time.Second {
		t.Fatalf("exponential attempt 2: got %s", got)
	}
	if got := exp.Delay(5, nil); got != 4*time.Second {
		t.Fatalf("exponential delay should be capped, got %s", got)
	}

	jittered := Policy{BaseDelay: time.Second, Jitter: 1500 * time.Millisecond}
	got := jittered.Delay(0, func(max time.Duration) time.Duration { return max / 3 })
	if got != 1500*time.Millisecond {
		t.Fatalf("unexpected jittered delay: %s", got)
	}
}
