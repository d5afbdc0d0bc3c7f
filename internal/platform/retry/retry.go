package retry

import (
	"context"
	"math/rand/v2"
	"time"
)

type Backoff string

const (
	BackoffLinear      Backoff = "linear"
	BackoffExponential Backoff = "exponential"
)

// Policy describes how many times a call is attempted and how long to wait
// between attempts. Delays are computed from BaseDelay and capped at MaxDelay;
// a uniform random jitter in [0, Jitter) is added on top.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Jitter      time.Duration
	Backoff     Backoff
}

// NoDelay keeps the attempt ceiling but drops every wait.
func (p Policy) NoDelay() Policy {
	p.BaseDelay = 0
	p.MaxDelay = 0
	p.Jitter = 0
	return p
}

// Delay returns the wait before attempt+1, where attempt is zero based.
func (p Policy) Delay(attempt int, jitter func(time.Duration) time.Duration) time.Duration {
	if p.BaseDelay <= 0 {
		return 0
	}

	var delay time.Duration
	switch p.Backoff {
	case BackoffExponential:
		delay = p.BaseDelay << min(attempt, 16)
	default:
		delay = p.BaseDelay * time.Duration(attempt+1)
	}
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	if p.Jitter > 0 && jitter != nil {
		delay += jitter(p.Jitter)
	}
	return delay
}

func (p Policy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// Sleeper blocks for d or until ctx is done.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

type SleeperFunc func(ctx context.Context, d time.Duration) error

func (f SleeperFunc) Sleep(ctx context.Context, d time.Duration) error {
	return f(ctx, d)
}

// TimerSleeper waits on a real timer.
type TimerSleeper struct{}

func (TimerSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	select {
	case <-ctx.Done():
		timer.Stop()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Retrier runs calls under a Policy.
type Retrier struct {
	Sleeper Sleeper
	Jitter  func(time.Duration) time.Duration
}

func New(sleeper Sleeper) *Retrier {
	if sleeper == nil {
		sleeper = TimerSleeper{}
	}
	return &Retrier{
		Sleeper: sleeper,
		Jitter:  uniformJitter,
	}
}

// Do calls fn until it succeeds, returns an error retryable rejects, or the
// policy runs out of attempts. The last error is returned as is.
func (r *Retrier) Do(ctx context.Context, policy Policy, retryable func(error) bool, fn func(ctx context.Context, attempt int) error) error {
	var lastErr error
	attempts := policy.attempts()
	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(ctx, attempt)
		if lastErr == nil {
			return nil
		}
		if retryable != nil && !retryable(lastErr) {
			return lastErr
		}
		if attempt == attempts-1 {
			break
		}

		if err := r.sleeper().Sleep(ctx, policy.Delay(attempt, r.Jitter)); err != nil {
			return err
		}
	}
	return lastErr
}

func (r *Retrier) sleeper() Sleeper {
	if r == nil || r.Sleeper == nil {
		return TimerSleeper{}
	}
	return r.Sleeper
}

func uniformJitter(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	return time.Duration(rand.Int64N(int64(max)))
}
