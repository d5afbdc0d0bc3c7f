// Command gamelogs builds and audits the published NBA game-log datasets.
//
// Usage:
//
//	gamelogs build --seasons 2025-26 --output data --default-season 2025-26
//	gamelogs build --seasons 2025-26 --date 2025-11-05 --days 3
//	gamelogs validate --seasons 2024-25,2025-26 --output data
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/riskibarqy/nba-gamelogs/internal/app"
	"github.com/riskibarqy/nba-gamelogs/internal/config"
	"github.com/riskibarqy/nba-gamelogs/internal/domain/buildrun"
	"github.com/riskibarqy/nba-gamelogs/internal/observability"
	"github.com/riskibarqy/nba-gamelogs/internal/platform/logging"
	"github.com/riskibarqy/nba-gamelogs/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:           "gamelogs",
		Short:         "Build per-player NBA game-log datasets",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(buildCmd())
	root.AddCommand(validateCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func buildCmd() *cobra.Command {
	var (
		seasons       []string
		output        string
		defaultSeason string
		date          string
		days          int
		dryRun        bool
	)
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Fetch, validate and publish game logs for the given seasons",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(output, func(ctx context.Context, cfg config.Config, logger *logging.Logger, builder *app.Builder) error {
				input := usecase.BuildInput{
					Seasons:       seasons,
					DefaultSeason: defaultSeason,
					Date:          date,
					Days:          days,
					DryRun:        dryRun,
				}
				if len(input.Seasons) == 0 {
					input.Seasons = cfg.StaticSeasons
				}
				if input.DefaultSeason == "" {
					input.DefaultSeason = cfg.DefaultSeason
				}

				start := time.Now()
				report, err := builder.Service.Build(ctx, input)
				logTargets(logger, report.Targets)
				summarizeLedger(ctx, logger, builder, report.RunID)
				if err != nil {
					return err
				}

				logger.Info("build finished",
					"run_id", report.RunID,
					"targets", len(report.Targets),
					"manifest_written", report.ManifestWritten,
					"dry_run", dryRun,
					"duration", time.Since(start).Round(time.Millisecond).String(),
				)
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&seasons, "seasons", nil, "Seasons to build, e.g. 2024-25,2025-26 (defaults to STATIC_SEASONS)")
	cmd.Flags().StringVar(&output, "output", "", "Output root (defaults to OUTPUT_DIR)")
	cmd.Flags().StringVar(&defaultSeason, "default-season", "", "Season advertised as default in the manifest")
	cmd.Flags().StringVar(&date, "date", "", "Incremental mode: last day of the refresh window (YYYY-MM-DD)")
	cmd.Flags().IntVar(&days, "days", 1, "Incremental mode: number of days in the refresh window")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Run the pipeline without writing any file")
	return cmd
}

func validateCmd() *cobra.Command {
	var (
		seasons []string
		output  string
	)
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Re-score published datasets against the published players files",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(output, func(ctx context.Context, cfg config.Config, logger *logging.Logger, builder *app.Builder) error {
				if len(seasons) == 0 {
					seasons = cfg.StaticSeasons
				}
				if len(seasons) == 0 {
					return fmt.Errorf("--seasons or STATIC_SEASONS is required")
				}

				results, err := builder.Service.Audit(ctx, seasons)
				for _, result := range results {
					args := []any{
						"season", result.Season,
						"season_type", string(result.SeasonType),
						"present", result.Present,
						"rows", result.Rows,
						"covered", result.Coverage.Covered,
						"active", result.Coverage.Active,
						"ratio", result.Coverage.Ratio,
					}
					if result.Err != nil {
						logger.Error("dataset invalid", append(args, "error", result.Err)...)
						continue
					}
					logger.Info("dataset ok", args...)
				}
				return err
			})
		},
	}
	cmd.Flags().StringSliceVar(&seasons, "seasons", nil, "Seasons to audit (defaults to STATIC_SEASONS)")
	cmd.Flags().StringVar(&output, "output", "", "Output root (defaults to OUTPUT_DIR)")
	return cmd
}

// run handles config loading, telemetry, wiring and signal cancellation.
func run(output string, fn func(ctx context.Context, cfg config.Config, logger *logging.Logger, builder *app.Builder) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.New(cfg.LogFormat, cfg.LogLevel)
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	shutdownTracing, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		return fmt.Errorf("init uptrace: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("uptrace shutdown failed", "error", err)
		}
	}()

	stopProfiling, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		return fmt.Errorf("init pyroscope: %w", err)
	}
	defer func() {
		if err := stopProfiling(); err != nil {
			logger.Warn("pyroscope stop failed", "error", err)
		}
	}()

	builder, err := app.NewBuilder(ctx, cfg, app.Options{OutputDir: output}, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := builder.Close(); err != nil {
			logger.Warn("close builder failed", "error", err)
		}
	}()

	return fn(ctx, cfg, logger, builder)
}

func logTargets(logger *logging.Logger, targets []usecase.TargetReport) {
	for _, target := range targets {
		args := []any{
			"season", target.Season,
			"season_type", string(target.SeasonType),
			"mode", string(target.Mode),
			"tier", string(target.Tier),
			"outcome", string(target.Outcome),
			"rows", target.Rows,
			"covered", target.Coverage.Covered,
			"active", target.Coverage.Active,
			"ratio", target.Coverage.Ratio,
			"failures", target.Failures,
		}
		switch target.Outcome {
		case buildrun.OutcomeFailed:
			logger.Error("target failed", append(args, "error", target.Err)...)
		case buildrun.OutcomeFallback:
			logger.Warn("target kept previous dataset", append(args, "error", target.Err)...)
		default:
			logger.Info("target done", args...)
		}
	}
}

// summarizeLedger reads back what this run recorded. For the in-memory ledger
// this is the only place the records surface.
func summarizeLedger(ctx context.Context, logger *logging.Logger, builder *app.Builder, runID string) {
	if runID == "" {
		return
	}
	runs, err := builder.Ledger.ListByRunID(ctx, runID)
	if err != nil {
		logger.Warn("read build ledger failed", "run_id", runID, "error", err)
		return
	}
	counts := make(map[buildrun.Outcome]int, 4)
	for _, item := range runs {
		counts[item.Outcome]++
	}
	logger.Info("build ledger",
		"run_id", runID,
		"records", len(runs),
		"published", counts[buildrun.OutcomePublished],
		"fallback", counts[buildrun.OutcomeFallback],
		"failed", counts[buildrun.OutcomeFailed],
		"dry_run", counts[buildrun.OutcomeDryRun],
	)
}
