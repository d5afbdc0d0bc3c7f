package usecase

import (
	"context"
	"time"

	"github.com/riskibarqy/nba-gamelogs/internal/domain/upstream"
	"github.com/riskibarqy/nba-gamelogs/internal/platform/logging"
	"github.com/riskibarqy/nba-gamelogs/internal/platform/retry"
)

// SourceTier identifies which stage of the pipeline issues a request. Retry
// and pacing are configured per tier.
type SourceTier string

const (
	TierRoster   SourceTier = "roster"
	TierBulk     SourceTier = "bulk"
	TierBackfill SourceTier = "backfill"
	TierRebuild  SourceTier = "rebuild"
)

// Pacing is the fixed wait between upstream calls. PerEntity follows every
// backfill and rebuild request; Bulk separates consecutive bulk requests.
type Pacing struct {
	PerEntity time.Duration
	Bulk      time.Duration
}

func DefaultPacing() Pacing {
	return Pacing{
		PerEntity: 80 * time.Millisecond,
		Bulk:      time.Second,
	}
}

func DefaultRetryPolicies() map[SourceTier]retry.Policy {
	return map[SourceTier]retry.Policy{
		TierRoster: {
			MaxAttempts: 5,
			BaseDelay:   8 * time.Second,
			MaxDelay:    45 * time.Second,
			Jitter:      1500 * time.Millisecond,
			Backoff:     retry.BackoffLinear,
		},
		TierBulk: {
			MaxAttempts: 4,
			BaseDelay:   2 * time.Second,
			MaxDelay:    20 * time.Second,
			Jitter:      time.Second,
			Backoff:     retry.BackoffExponential,
		},
		TierBackfill: {
			MaxAttempts: 3,
			BaseDelay:   time.Second,
			MaxDelay:    3 * time.Second,
			Jitter:      250 * time.Millisecond,
			Backoff:     retry.BackoffLinear,
		},
		TierRebuild: {
			MaxAttempts: 4,
			BaseDelay:   time.Second,
			MaxDelay:    8 * time.Second,
			Jitter:      500 * time.Millisecond,
			Backoff:     retry.BackoffExponential,
		},
	}
}

type FetcherConfig struct {
	Policies map[SourceTier]retry.Policy
	Pacing   Pacing
	Sleeper  retry.Sleeper
	Logger   *logging.Logger
}

// FetchSpec describes one logical request. Request may vary by attempt and
// Accept may reject a successful body; a transient rejection is retried.
type FetchSpec struct {
	Tier    SourceTier
	Request func(attempt int) (upstream.Request, error)
	Accept  func(body []byte) error
}

// Fetcher wraps a single-attempt transport with retries and pacing. It is not
// safe for concurrent use; the pipeline issues upstream calls sequentially.
type Fetcher struct {
	transport upstream.Transport
	policies  map[SourceTier]retry.Policy
	pacing    Pacing
	sleeper   retry.Sleeper
	retrier   *retry.Retrier
	logger    *logging.Logger
	bulkCalls int
}

func NewFetcher(transport upstream.Transport, cfg FetcherConfig) *Fetcher {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	sleeper := cfg.Sleeper
	if sleeper == nil {
		sleeper = retry.TimerSleeper{}
	}
	policies := DefaultRetryPolicies()
	for tier, policy := range cfg.Policies {
		policies[tier] = policy
	}

	return &Fetcher{
		transport: transport,
		policies:  policies,
		pacing:    cfg.Pacing,
		sleeper:   sleeper,
		retrier:   retry.New(sleeper),
		logger:    logger.Named("fetcher"),
	}
}

func (f *Fetcher) Fetch(ctx context.Context, tier SourceTier, req upstream.Request) ([]byte, error) {
	return f.Do(ctx, FetchSpec{
		Tier:    tier,
		Request: func(int) (upstream.Request, error) { return req, nil },
	})
}

func (f *Fetcher) Do(ctx context.Context, spec FetchSpec) ([]byte, error) {
	if err := f.paceBefore(ctx, spec.Tier); err != nil {
		return nil, err
	}

	var body []byte
	err := f.retrier.Do(ctx, f.policies[spec.Tier], upstream.IsTransient, func(ctx context.Context, attempt int) error {
		req, err := spec.Request(attempt)
		if err != nil {
			return err
		}

		raw, err := f.transport.Do(ctx, req)
		if err == nil && spec.Accept != nil {
			err = spec.Accept(raw)
		}
		if err != nil {
			f.logger.WarnContext(ctx, "upstream attempt failed",
				"tier", spec.Tier,
				"kind", req.Kind,
				"attempt", attempt+1,
				"transient", upstream.IsTransient(err),
				"error", err,
			)
			return err
		}
		body = raw
		return nil
	})

	if paceErr := f.paceAfter(ctx, spec.Tier); paceErr != nil && err == nil {
		err = paceErr
	}
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (f *Fetcher) paceBefore(ctx context.Context, tier SourceTier) error {
	if tier != TierBulk {
		return nil
	}
	f.bulkCalls++
	if f.bulkCalls == 1 {
		return nil
	}
	return f.sleeper.Sleep(ctx, f.pacing.Bulk)
}

func (f *Fetcher) paceAfter(ctx context.Context, tier SourceTier) error {
	if tier != TierBackfill && tier != TierRebuild {
		return nil
	}
	return f.sleeper.Sleep(ctx, f.pacing.PerEntity)
}
