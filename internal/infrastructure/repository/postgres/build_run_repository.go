package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/nba-gamelogs/internal/domain/buildrun"
	qb "github.com/riskibarqy/nba-gamelogs/internal/platform/querybuilder"
)

var buildRunColumns = qb.MustColumns(buildRunTableModel{})

type BuildRunRepository struct {
	db *sqlx.DB
}

func NewBuildRunRepository(db *sqlx.DB) *BuildRunRepository {
	return &BuildRunRepository{db: db}
}

func (r *BuildRunRepository) Record(ctx context.Context, run buildrun.Run) error {
	runID := strings.TrimSpace(run.RunID)
	if runID == "" {
		return fmt.Errorf("run id is required")
	}
	if strings.TrimSpace(run.Season) == "" || strings.TrimSpace(run.SeasonType) == "" {
		return fmt.Errorf("season and season type are required for run_id=%s", runID)
	}

	finishedAt := run.FinishedAt.UTC()
	if finishedAt.IsZero() {
		finishedAt = time.Now().UTC()
	}
	startedAt := run.StartedAt.UTC()
	if startedAt.IsZero() {
		startedAt = finishedAt
	}
	mode := run.Mode
	if mode == "" {
		mode = buildrun.ModeFull
	}

	model := buildRunInsertModel{
		RunID:      runID,
		Season:     run.Season,
		SeasonType: run.SeasonType,
		Mode:       string(mode),
		Tier:       optionalString(run.Tier),
		Rows:       run.Rows,
		Covered:    run.Covered,
		Active:     run.Active,
		Ratio:      run.Ratio,
		Outcome:    string(run.Outcome),
		Error:      optionalString(run.Error),
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
	}

	query, args, err := qb.InsertModel("build_runs", model, `ON CONFLICT (run_id, season, season_type)
DO UPDATE SET
    mode = EXCLUDED.mode,
    tier = EXCLUDED.tier,
    row_count = EXCLUDED.row_count,
    covered_players = EXCLUDED.covered_players,
    active_players = EXCLUDED.active_players,
    coverage_ratio = EXCLUDED.coverage_ratio,
    outcome = EXCLUDED.outcome,
    last_error = EXCLUDED.last_error,
    finished_at = EXCLUDED.finished_at,
    updated_at = NOW()`)
	if err != nil {
		return fmt.Errorf("build upsert build run query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert build run run_id=%s season=%s season_type=%s: %w", runID, run.Season, run.SeasonType, err)
	}

	return nil
}

func (r *BuildRunRepository) ListByRunID(ctx context.Context, runID string) ([]buildrun.Run, error) {
	query, args, err := qb.Select(buildRunColumns...).From("build_runs").
		Where(qb.Eq("run_id", strings.TrimSpace(runID))).
		OrderBy("season", "season_type").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select build runs query: %w", err)
	}

	var rows []buildRunTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select build runs run_id=%s: %w", runID, err)
	}

	out := make([]buildrun.Run, 0, len(rows))
	for _, row := range rows {
		out = append(out, buildRunFromRow(row))
	}
	return out, nil
}

func buildRunFromRow(row buildRunTableModel) buildrun.Run {
	return buildrun.Run{
		RunID:      row.RunID,
		Season:     row.Season,
		SeasonType: row.SeasonType,
		Mode:       buildrun.Mode(row.Mode),
		Tier:       nullStringValue(row.Tier),
		Rows:       row.Rows,
		Covered:    row.Covered,
		Active:     row.Active,
		Ratio:      row.Ratio,
		Outcome:    buildrun.Outcome(row.Outcome),
		Error:      nullStringValue(row.Error),
		StartedAt:  row.StartedAt.UTC(),
		FinishedAt: row.FinishedAt.UTC(),
	}
}
