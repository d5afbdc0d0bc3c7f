package usecase

import (
	"context"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/nba-gamelogs/internal/domain/buildrun"
	"github.com/riskibarqy/nba-gamelogs/internal/domain/gamelog"
	"github.com/riskibarqy/nba-gamelogs/internal/platform/id"
	"github.com/riskibarqy/nba-gamelogs/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type BuildConfig struct {
	SeasonTypes   []gamelog.SeasonType
	RosterMinRows int
	Now           func() time.Time
}

func DefaultBuildConfig() BuildConfig {
	return BuildConfig{
		SeasonTypes:   gamelog.SeasonTypes,
		RosterMinRows: 300,
		Now:           time.Now,
	}
}

type BuildInput struct {
	Seasons       []string `validate:"required,min=1,dive,season"`
	DefaultSeason string   `validate:"omitempty,season"`
	// Date switches to incremental mode for targets with a previous dataset.
	Date   string `validate:"omitempty,datetime=2006-01-02"`
	Days   int    `validate:"gte=0,lte=31"`
	DryRun bool
}

func (in BuildInput) normalized() BuildInput {
	seen := make(map[string]struct{}, len(in.Seasons))
	seasons := make([]string, 0, len(in.Seasons))
	for _, season := range in.Seasons {
		season = strings.TrimSpace(season)
		if season == "" {
			continue
		}
		if _, dup := seen[season]; dup {
			continue
		}
		seen[season] = struct{}{}
		seasons = append(seasons, season)
	}
	in.Seasons = seasons
	in.DefaultSeason = strings.TrimSpace(in.DefaultSeason)
	in.Date = strings.TrimSpace(in.Date)
	return in
}

// windowDates lists the incremental window oldest first, ending at Date.
func (in BuildInput) windowDates() []string {
	end, err := time.Parse(time.DateOnly, in.Date)
	if err != nil {
		return nil
	}
	days := max(in.Days, 1)
	out := make([]string, 0, days)
	for offset := days - 1; offset >= 0; offset-- {
		out = append(out, end.AddDate(0, 0, -offset).Format(time.DateOnly))
	}
	return out
}

type TargetReport struct {
	Season     string
	SeasonType gamelog.SeasonType
	Mode       buildrun.Mode
	Tier       SourceTier
	Outcome    buildrun.Outcome
	Rows       int
	Coverage   CoverageReport
	Failures   int
	Err        error
}

type BuildReport struct {
	RunID           string
	Targets         []TargetReport
	ManifestWritten bool
}

func (r BuildReport) Failed() []TargetReport {
	out := make([]TargetReport, 0)
	for _, target := range r.Targets {
		if target.Outcome == buildrun.OutcomeFailed {
			out = append(out, target)
		}
	}
	return out
}

// Err combines the errors of failed targets.
func (r BuildReport) Err() error {
	var combined error
	for _, target := range r.Failed() {
		combined = crerr.CombineErrors(combined, target.Err)
	}
	return combined
}

type BuildService struct {
	fetcher      *Fetcher
	orchestrator *Orchestrator
	bulk         Tier
	validator    *CoverageValidator
	store        gamelog.ArtifactStore
	ledger       buildrun.Repository
	ids          id.Generator
	cfg          BuildConfig
	logger       *logging.Logger
}

func NewBuildService(
	fetcher *Fetcher,
	orchestrator *Orchestrator,
	bulk Tier,
	validator *CoverageValidator,
	store gamelog.ArtifactStore,
	ledger buildrun.Repository,
	ids id.Generator,
	cfg BuildConfig,
	logger *logging.Logger,
) *BuildService {
	if logger == nil {
		logger = logging.Default()
	}
	defaults := DefaultBuildConfig()
	if len(cfg.SeasonTypes) == 0 {
		cfg.SeasonTypes = defaults.SeasonTypes
	}
	if cfg.RosterMinRows <= 0 {
		cfg.RosterMinRows = defaults.RosterMinRows
	}
	if cfg.Now == nil {
		cfg.Now = defaults.Now
	}
	return &BuildService{
		fetcher:      fetcher,
		orchestrator: orchestrator,
		bulk:         bulk,
		validator:    validator,
		store:        store,
		ledger:       ledger,
		ids:          ids,
		cfg:          cfg,
		logger:       logger.Named("build"),
	}
}

// Build produces and publishes every (season, season type) dataset. The
// manifest is only rewritten when no target failed, so readers keep seeing
// the previous consistent set.
func (s *BuildService) Build(ctx context.Context, input BuildInput) (BuildReport, error) {
	input = input.normalized()
	if err := paramValidator.Struct(input); err != nil {
		return BuildReport{}, crerr.Mark(crerr.Wrap(err, "validate build input"), ErrInvalidInput)
	}

	ctx, span := usecaseTracer.Start(ctx, "usecase.BuildService.Build", trace.WithAttributes(
		attribute.StringSlice("seasons", input.Seasons),
		attribute.String("date", input.Date),
		attribute.Bool("dry_run", input.DryRun),
	))
	defer span.End()

	runID, err := s.ids.NewID()
	if err != nil {
		return BuildReport{}, crerr.Wrap(err, "generate run id")
	}
	report := BuildReport{RunID: runID}
	span.SetAttributes(attribute.String("run_id", runID))
	s.logger.InfoContext(ctx, "build started", "run_id", runID, "seasons", strings.Join(input.Seasons, ","), "date", input.Date, "dry_run", input.DryRun)

	files := gamelog.ManifestFiles{
		Players:   make(map[string]string),
		Gamelogs:  make(map[string]map[string]string),
		Summaries: make(map[string]map[string]string),
	}
	for _, season := range input.Seasons {
		targets, err := s.buildSeason(ctx, runID, season, input, &files)
		report.Targets = append(report.Targets, targets...)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return report, err
		}
	}

	if failed := report.Failed(); len(failed) > 0 {
		err := report.Err()
		s.logger.ErrorContext(ctx, "build finished with failed targets, manifest left unchanged", "run_id", runID, "failed", len(failed), "error", err)
		span.SetStatus(codes.Error, "failed targets")
		return report, err
	}
	if input.DryRun {
		s.logger.InfoContext(ctx, "dry run finished", "run_id", runID, "targets", len(report.Targets))
		return report, nil
	}

	manifest := gamelog.Manifest{
		GeneratedAt:   s.cfg.Now().UTC().Format(time.RFC3339),
		DefaultSeason: resolveDefaultSeason(input.DefaultSeason, input.Seasons),
		Seasons:       input.Seasons,
		SeasonTypes:   s.cfg.SeasonTypes,
		Files:         files,
	}
	if err := s.store.Publish(ctx, []gamelog.Artifact{{Path: gamelog.ManifestPath, Payload: manifest}}); err != nil {
		span.RecordError(err)
		return report, crerr.Wrap(err, "publish manifest")
	}
	report.ManifestWritten = true
	s.logger.InfoContext(ctx, "build finished", "run_id", runID, "targets", len(report.Targets), "default_season", manifest.DefaultSeason)
	return report, nil
}

func resolveDefaultSeason(requested string, seasons []string) string {
	for _, season := range seasons {
		if season == requested {
			return requested
		}
	}
	return seasons[0]
}

func (s *BuildService) buildSeason(ctx context.Context, runID, season string, input BuildInput, files *gamelog.ManifestFiles) ([]TargetReport, error) {
	roster, rosterFresh, err := s.resolveRoster(ctx, season)
	if err != nil {
		return nil, err
	}

	reports := make([]TargetReport, 0, len(s.cfg.SeasonTypes))
	artifacts := make([]gamelog.Artifact, 0, len(s.cfg.SeasonTypes)*2+1)
	for _, seasonType := range s.cfg.SeasonTypes {
		result := s.buildTarget(ctx, runID, season, seasonType, roster, input)
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		reports = append(reports, result.report)
		if len(roster) == 0 && len(result.roster) > 0 {
			roster = result.roster
			rosterFresh = true
		}

		artifacts = append(artifacts, result.artifacts...)
		if result.datasetPath != "" {
			setNested(files.Gamelogs, season, seasonType.Slug(), result.datasetPath)
		}
		if result.summaryPath != "" {
			setNested(files.Summaries, season, seasonType.Slug(), result.summaryPath)
		}
	}

	if len(roster) > 0 {
		files.Players[season] = gamelog.PlayersPath(season)
		if rosterFresh {
			active := ActivePlayers(roster)
			artifacts = append(artifacts, gamelog.Artifact{
				Path:    gamelog.PlayersPath(season),
				Payload: gamelog.PlayersFile{Season: season, Count: len(active), Players: active},
			})
		}
	}

	if input.DryRun || len(artifacts) == 0 {
		return reports, nil
	}
	if err := s.store.Publish(ctx, artifacts); err != nil {
		return reports, crerr.Wrapf(err, "publish season %s", season)
	}
	return reports, nil
}

// resolveRoster prefers a fresh download and falls back to the previously
// published players file. An empty result defers to rows observed later.
func (s *BuildService) resolveRoster(ctx context.Context, season string) ([]gamelog.RosterEntry, bool, error) {
	roster, err := FetchRoster(ctx, s.fetcher, season, s.cfg.RosterMinRows)
	if err == nil {
		return roster, true, nil
	}
	if ctx.Err() != nil {
		return nil, false, ctx.Err()
	}

	previous, ok, loadErr := s.store.LoadPlayers(ctx, season)
	if loadErr == nil && ok && len(previous.Players) > 0 {
		s.logger.WarnContext(ctx, "roster unavailable, using previous players file", "season", season, "players", len(previous.Players), "error", err)
		return previous.Players, false, nil
	}
	s.logger.WarnContext(ctx, "roster unavailable, deriving from observed rows", "season", season, "error", err)
	return nil, false, nil
}

type targetResult struct {
	report      TargetReport
	roster      []gamelog.RosterEntry
	artifacts   []gamelog.Artifact
	datasetPath string
	summaryPath string
}

func (s *BuildService) buildTarget(ctx context.Context, runID, season string, seasonType gamelog.SeasonType, roster []gamelog.RosterEntry, input BuildInput) targetResult {
	started := s.cfg.Now()
	ctx, span := startUsecaseSpan(ctx, "usecase.BuildService.buildTarget",
		attribute.String("season", season),
		attribute.String("season_type", string(seasonType)),
	)
	defer span.End()

	result := targetResult{report: TargetReport{
		Season:     season,
		SeasonType: seasonType,
		Mode:       buildrun.ModeFull,
	}}
	defer func() {
		if result.report.Err != nil {
			span.RecordError(result.report.Err)
		}
		s.recordRun(ctx, runID, result.report, started)
	}()

	previous, hasPrevious := s.loadPrevious(ctx, season, seasonType)

	var rows []gamelog.Row
	if input.Date != "" && hasPrevious {
		result.report.Mode = buildrun.ModeIncremental
		result.report.Tier = TierBulk
		merged, applied := s.mergeWindow(ctx, season, seasonType, previous.Rows, input.windowDates())
		if applied == 0 {
			s.logger.WarnContext(ctx, "no day of the window could be fetched, keeping previous dataset", "season", season, "season_type", seasonType, "date", input.Date)
			s.keepPrevious(ctx, &result, season, seasonType, previous)
			return result
		}
		rows = merged
	} else {
		if input.Date != "" {
			s.logger.WarnContext(ctx, "no usable previous dataset, running full build", "season", season, "season_type", seasonType)
		}
		orchestrated, err := s.orchestrator.Run(ctx, Target{Season: season, SeasonType: seasonType, Roster: roster})
		result.report.Tier = orchestrated.Tier
		result.report.Failures = orchestrated.Failures
		if err != nil {
			result.report.Outcome = buildrun.OutcomeFailed
			result.report.Err = err
			s.logger.ErrorContext(ctx, "target failed", "season", season, "season_type", seasonType, "tier", orchestrated.Tier, "error", err)
			return result
		}
		rows = orchestrated.Rows
	}

	if len(roster) == 0 && seasonType.IsPrimary() && len(rows) > 0 {
		roster = DeriveRoster(rows)
		result.roster = roster
		s.logger.WarnContext(ctx, "roster derived from observed rows", "season", season, "players", len(roster))
	}

	coverage, err := s.validator.Validate(season, seasonType, result.report.Tier, roster, rows, hasPrevious)
	result.report.Coverage = coverage
	if err != nil {
		result.report.Err = err
		if hasPrevious {
			s.logger.WarnContext(ctx, "coverage below threshold, keeping previous dataset", "season", season, "season_type", seasonType, "error", err)
			s.keepPrevious(ctx, &result, season, seasonType, previous)
			return result
		}
		s.logger.ErrorContext(ctx, "coverage below threshold", "season", season, "season_type", seasonType, "error", err)
		result.report.Outcome = buildrun.OutcomeFailed
		return result
	}

	dataset := FinalizeDataset(season, seasonType, roster, rows)
	result.report.Rows = dataset.Count
	result.datasetPath = gamelog.DatasetPath(season, seasonType)
	result.summaryPath = gamelog.SummaryPath(season, seasonType)
	result.artifacts = []gamelog.Artifact{
		{Path: result.datasetPath, Payload: dataset},
		summaryArtifact(season, seasonType, dataset.Rows),
	}

	result.report.Outcome = buildrun.OutcomePublished
	if input.DryRun {
		result.report.Outcome = buildrun.OutcomeDryRun
	}
	s.logger.InfoContext(ctx, "target built",
		"season", season,
		"season_type", seasonType,
		"mode", result.report.Mode,
		"tier", result.report.Tier,
		"rows", dataset.Count,
		"covered", coverage.Covered,
		"active", coverage.Active,
	)
	return result
}

// keepPrevious leaves the published dataset in place and keeps its summary
// listed in the manifest. A missing or unreadable summary is regenerated from
// the previous dataset.
func (s *BuildService) keepPrevious(ctx context.Context, result *targetResult, season string, seasonType gamelog.SeasonType, previous gamelog.Dataset) {
	result.report.Outcome = buildrun.OutcomeFallback
	result.report.Rows = len(previous.Rows)
	result.datasetPath = gamelog.DatasetPath(season, seasonType)
	result.summaryPath = gamelog.SummaryPath(season, seasonType)

	_, ok, err := s.store.LoadSummary(ctx, season, seasonType)
	if err != nil {
		s.logger.WarnContext(ctx, "previous summary unreadable, regenerating", "season", season, "season_type", seasonType, "error", err)
	}
	if err != nil || !ok {
		result.artifacts = append(result.artifacts, summaryArtifact(season, seasonType, previous.Rows))
	}
}

func summaryArtifact(season string, seasonType gamelog.SeasonType, rows []gamelog.Row) gamelog.Artifact {
	genuine := GenuineRows(rows)
	summaryRows := BuildSeasonSummary(genuine)
	return gamelog.Artifact{
		Path: gamelog.SummaryPath(season, seasonType),
		Payload: gamelog.SummaryFile{
			Season:     season,
			SeasonType: seasonType,
			Count:      len(summaryRows),
			GameRows:   len(genuine),
			Rows:       summaryRows,
		},
	}
}

func (s *BuildService) loadPrevious(ctx context.Context, season string, seasonType gamelog.SeasonType) (gamelog.Dataset, bool) {
	previous, ok, err := s.store.LoadDataset(ctx, season, seasonType)
	if err != nil {
		s.logger.WarnContext(ctx, "previous dataset unreadable, treating as absent", "season", season, "season_type", seasonType, "error", err)
		return gamelog.Dataset{}, false
	}
	return previous, ok
}

func (s *BuildService) mergeWindow(ctx context.Context, season string, seasonType gamelog.SeasonType, existing []gamelog.Row, dates []string) ([]gamelog.Row, int) {
	days := make([]DayRows, 0, len(dates))
	for _, date := range dates {
		out, err := s.bulk.Attempt(ctx, TierInput{
			Season:     season,
			SeasonType: seasonType,
			DateFrom:   date,
			DateTo:     date,
		})
		if err != nil {
			s.logger.WarnContext(ctx, "day fetch failed, keeping existing rows for date", "season", season, "season_type", seasonType, "date", date, "error", err)
		}
		days = append(days, DayRows{Date: date, Rows: GenuineRows(Dedupe(out.Rows)), Err: err})
	}
	return MergeWindow(GenuineRows(existing), days)
}

func (s *BuildService) recordRun(ctx context.Context, runID string, report TargetReport, started time.Time) {
	if s.ledger == nil {
		return
	}
	run := buildrun.Run{
		RunID:      runID,
		Season:     report.Season,
		SeasonType: string(report.SeasonType),
		Mode:       report.Mode,
		Tier:       string(report.Tier),
		Rows:       report.Rows,
		Covered:    report.Coverage.Covered,
		Active:     report.Coverage.Active,
		Ratio:      report.Coverage.Ratio,
		Outcome:    report.Outcome,
		StartedAt:  started.UTC(),
		FinishedAt: s.cfg.Now().UTC(),
	}
	if report.Err != nil {
		run.Error = report.Err.Error()
	}
	if err := s.ledger.Record(ctx, run); err != nil {
		s.logger.WarnContext(ctx, "record build run failed", "run_id", runID, "season", report.Season, "season_type", report.SeasonType, "error", err)
	}
}

// FinalizeDataset sorts genuine rows and, for the primary type, adds a
// placeholder for every active player without one.
func FinalizeDataset(season string, seasonType gamelog.SeasonType, roster []gamelog.RosterEntry, rows []gamelog.Row) gamelog.Dataset {
	out := GenuineRows(Dedupe(rows))
	statFields := InferStatFields(out)

	if seasonType.IsPrimary() {
		observed := ObservedPlayers(out)
		for _, entry := range ActivePlayers(roster) {
			if _, ok := observed[entry.PlayerID]; ok {
				continue
			}
			if len(statFields) == 0 {
				statFields = gamelog.DefaultStatFields
			}
			out = append(out, gamelog.NewPlaceholderRow(entry, season, statFields))
		}
	}
	SortRows(out)

	return gamelog.Dataset{
		Season:     season,
		SeasonType: seasonType,
		Count:      len(out),
		StatFields: statFields,
		Rows:       out,
	}
}

func setNested(target map[string]map[string]string, outer, inner, value string) {
	if target[outer] == nil {
		target[outer] = make(map[string]string)
	}
	target[outer][inner] = value
}
