package usecase

import (
	"context"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/nba-gamelogs/internal/domain/gamelog"
	"github.com/sourcegraph/conc/iter"
)

// auditTier labels coverage errors raised against already published data.
const auditTier SourceTier = "published"

type AuditResult struct {
	Season     string
	SeasonType gamelog.SeasonType
	Present    bool
	Rows       int
	Coverage   CoverageReport
	Err        error
}

// Audit re-checks published datasets without touching the network. Every
// primary dataset is held to the strict thresholds.
func (s *BuildService) Audit(ctx context.Context, seasons []string) ([]AuditResult, error) {
	input := BuildInput{Seasons: seasons}.normalized()
	if err := paramValidator.Struct(input); err != nil {
		return nil, crerr.Mark(crerr.Wrap(err, "validate audit input"), ErrInvalidInput)
	}

	// Seasons are independent local reads, so they are audited in parallel.
	// iter.Map keeps the input order.
	perSeason := iter.Map(input.Seasons, func(season *string) seasonAudit {
		return s.auditSeason(ctx, *season)
	})

	results := make([]AuditResult, 0, len(input.Seasons)*len(s.cfg.SeasonTypes))
	var combined error
	for _, audit := range perSeason {
		combined = crerr.CombineErrors(combined, audit.err)
		results = append(results, audit.results...)
	}
	return results, combined
}

type seasonAudit struct {
	results []AuditResult
	err     error
}

func (s *BuildService) auditSeason(ctx context.Context, season string) seasonAudit {
	var out seasonAudit
	players, _, err := s.store.LoadPlayers(ctx, season)
	if err != nil {
		out.err = crerr.Wrapf(err, "players %s", season)
	}

	for _, seasonType := range s.cfg.SeasonTypes {
		result := s.auditTarget(ctx, season, seasonType, players.Players)
		if result.Err != nil {
			out.err = crerr.CombineErrors(out.err, result.Err)
		}
		out.results = append(out.results, result)
	}
	return out
}

func (s *BuildService) auditTarget(ctx context.Context, season string, seasonType gamelog.SeasonType, roster []gamelog.RosterEntry) AuditResult {
	result := AuditResult{Season: season, SeasonType: seasonType}
	dataset, ok, err := s.store.LoadDataset(ctx, season, seasonType)
	if err != nil {
		result.Err = crerr.Wrapf(err, "dataset %s %s", season, seasonType)
		return result
	}
	if !ok {
		if seasonType.IsPrimary() {
			result.Err = crerr.Newf("dataset %s %s is missing", season, seasonType)
		}
		return result
	}

	result.Present = true
	result.Rows = len(dataset.Rows)
	if dataset.Count != len(dataset.Rows) {
		result.Err = crerr.Mark(crerr.Newf("dataset %s %s: count %d does not match %d rows", season, seasonType, dataset.Count, len(dataset.Rows)), ErrMalformedArtifact)
		return result
	}
	if deduped := Dedupe(dataset.Rows); len(deduped) != len(dataset.Rows) {
		result.Err = crerr.Mark(crerr.Newf("dataset %s %s: %d duplicate (player, game) rows", season, seasonType, len(dataset.Rows)-len(deduped)), ErrMalformedArtifact)
		return result
	}

	result.Coverage, result.Err = s.validator.Validate(season, seasonType, auditTier, roster, dataset.Rows, false)
	return result
}
