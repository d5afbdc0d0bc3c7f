package app

import (
	"context"
	"fmt"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/nba-gamelogs/external/nbastats"
	"github.com/riskibarqy/nba-gamelogs/internal/config"
	"github.com/riskibarqy/nba-gamelogs/internal/domain/buildrun"
	"github.com/riskibarqy/nba-gamelogs/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/nba-gamelogs/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/nba-gamelogs/internal/infrastructure/storage/filesystem"
	"github.com/riskibarqy/nba-gamelogs/internal/platform/cache"
	"github.com/riskibarqy/nba-gamelogs/internal/platform/dburl"
	idgen "github.com/riskibarqy/nba-gamelogs/internal/platform/id"
	"github.com/riskibarqy/nba-gamelogs/internal/platform/logging"
	"github.com/riskibarqy/nba-gamelogs/internal/platform/resilience"
	"github.com/riskibarqy/nba-gamelogs/internal/usecase"
)

// scheduleCacheTTL outlives any single build; the schedule is fetched at most
// once per run.
const scheduleCacheTTL = 6 * time.Hour

// Builder holds the wired pipeline for one CLI invocation.
type Builder struct {
	Service *usecase.BuildService
	Ledger  buildrun.Repository
	Store   *filesystem.Store

	db *sqlx.DB
}

// Options override values from Config for a single invocation.
type Options struct {
	OutputDir string
}

func NewBuilder(ctx context.Context, cfg config.Config, opts Options, logger *logging.Logger) (*Builder, error) {
	if logger == nil {
		logger = logging.Default()
	}

	outputDir := cfg.OutputDir
	if opts.OutputDir != "" {
		outputDir = opts.OutputDir
	}
	store, err := filesystem.NewStore(outputDir, cfg.PublishWorkers, logger)
	if err != nil {
		return nil, fmt.Errorf("create artifact store: %w", err)
	}

	ledger, db, err := newLedger(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	client := nbastats.NewClient(nbastats.ClientConfig{
		StatsBaseURL:      cfg.StatsBaseURL,
		CDNBaseURL:        cfg.CDNBaseURL,
		Timeout:           cfg.ProviderTimeout,
		RequestsPerSecond: cfg.ProviderRequestsPerSecond,
		UserAgent:         cfg.ProviderUserAgent,
		Logger:            logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.ProviderCircuitEnabled,
			FailureThreshold: cfg.ProviderCircuitFailureCount,
			OpenTimeout:      cfg.ProviderCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.ProviderCircuitHalfOpenReq,
		},
	})

	fetcher := usecase.NewFetcher(client, usecase.FetcherConfig{
		Pacing: usecase.Pacing{
			PerEntity: cfg.PacingPerEntity,
			Bulk:      cfg.PacingBulk,
		},
		Logger: logger,
	})

	bulk := usecase.NewBulkTier(fetcher)
	backfill := usecase.NewBackfillTier(fetcher, cfg.MaxEntityFailures, logger)
	rebuild := usecase.NewRebuildTier(fetcher, cache.NewStore(scheduleCacheTTL), logger)

	stages := usecase.DefaultStages(bulk, backfill, rebuild, usecase.EscalationPolicy{
		BackfillMissing: cfg.BackfillMissingThreshold,
		RebuildFloor: usecase.CoverageThresholds{
			MinCovered: cfg.RebuildMinCovered,
			MinRatio:   cfg.RebuildMinRatio,
		},
	})
	validator := usecase.NewCoverageValidator(usecase.CoveragePolicy{
		Strict: usecase.CoverageThresholds{
			MinCovered: cfg.StrictMinCovered,
			MinRatio:   cfg.StrictMinRatio,
		},
		WithFallback: usecase.CoverageThresholds{
			MinCovered: cfg.FallbackMinCovered,
			MinRatio:   cfg.FallbackMinRatio,
		},
	})

	buildCfg := usecase.DefaultBuildConfig()
	buildCfg.RosterMinRows = cfg.RosterMinRows

	service := usecase.NewBuildService(
		fetcher,
		usecase.NewOrchestrator(stages, logger),
		bulk,
		validator,
		store,
		ledger,
		idgen.NewRunGenerator(),
		buildCfg,
		logger,
	)

	return &Builder{
		Service: service,
		Ledger:  ledger,
		Store:   store,
		db:      db,
	}, nil
}

func newLedger(ctx context.Context, cfg config.Config, logger *logging.Logger) (buildrun.Repository, *sqlx.DB, error) {
	if cfg.LedgerDBURL == "" {
		logger.Debug("build ledger in memory", "reason", "LEDGER_DB_URL empty")
		return memory.NewBuildRunRepository(), nil, nil
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("build ledger on postgres", "database", dburl.Name(cfg.LedgerDBURL), "dsn", dburl.Redact(cfg.LedgerDBURL))

	return postgres.NewBuildRunRepository(db), db, nil
}

func (b *Builder) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	if err := b.db.Close(); err != nil {
		return crerr.Wrap(err, "close ledger database")
	}
	return nil
}
