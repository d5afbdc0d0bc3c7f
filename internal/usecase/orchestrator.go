package usecase

import (
	"context"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/nba-gamelogs/internal/domain/gamelog"
	"github.com/riskibarqy/nba-gamelogs/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

// EscalationPolicy holds the thresholds that move a target to the next tier.
type EscalationPolicy struct {
	// BackfillMissing is the number of uncovered active players above which
	// the primary type escalates to per-player backfill.
	BackfillMissing int
	// RebuildFloor escalates the primary type to a rebuild when both numbers
	// are below it.
	RebuildFloor CoverageThresholds
}

func DefaultEscalationPolicy() EscalationPolicy {
	return EscalationPolicy{
		BackfillMissing: 25,
		RebuildFloor:    CoverageThresholds{MinCovered: 50, MinRatio: 0.15},
	}
}

// EscalationState is what the chain knows before the next stage runs.
type EscalationState struct {
	SeasonType gamelog.SeasonType
	Rows       []gamelog.Row
	Coverage   CoverageReport
	Ran        []SourceTier
}

// Stage is one step of the escalation chain. A nil Gate always runs; a
// declining Gate ends the chain. Failure of a Fatal stage ends the target,
// failure of any other stage degrades to an empty result.
type Stage struct {
	Tier  Tier
	Gate  func(state EscalationState) bool
	Fatal bool
}

// DefaultStages wires bulk, then backfill, then rebuild.
func DefaultStages(bulk, backfill, rebuild Tier, policy EscalationPolicy) []Stage {
	return []Stage{
		{Tier: bulk},
		{
			Tier: backfill,
			Gate: func(state EscalationState) bool {
				if len(state.Rows) == 0 {
					return true
				}
				return state.SeasonType.IsPrimary() && len(state.Coverage.Missing) > policy.BackfillMissing
			},
		},
		{
			Tier: rebuild,
			Gate: func(state EscalationState) bool {
				if len(state.Rows) == 0 {
					return true
				}
				return state.SeasonType.IsPrimary() &&
					state.Coverage.Covered < policy.RebuildFloor.MinCovered &&
					state.Coverage.Ratio < policy.RebuildFloor.MinRatio
			},
			Fatal: true,
		},
	}
}

type Target struct {
	Season     string
	SeasonType gamelog.SeasonType
	Roster     []gamelog.RosterEntry
}

type OrchestrationResult struct {
	Rows []gamelog.Row
	// Tier is the last tier that ran.
	Tier     SourceTier
	Ran      []SourceTier
	Coverage CoverageReport
	Failures int
}

type Orchestrator struct {
	stages []Stage
	logger *logging.Logger
}

func NewOrchestrator(stages []Stage, logger *logging.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.Default()
	}
	return &Orchestrator{stages: stages, logger: logger.Named("orchestrator")}
}

// Run drives one target through the stages and returns the deduplicated
// genuine rows of the last tier that ran.
func (o *Orchestrator) Run(ctx context.Context, target Target) (OrchestrationResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.Orchestrator.Run",
		attribute.String("season", target.Season),
		attribute.String("season_type", string(target.SeasonType)),
	)
	defer span.End()

	state := EscalationState{SeasonType: target.SeasonType}
	result := OrchestrationResult{}
	for idx, stage := range o.stages {
		if idx > 0 && stage.Gate != nil && !stage.Gate(state) {
			break
		}
		name := stage.Tier.Name()
		if idx > 0 {
			o.logger.InfoContext(ctx, "escalating",
				"season", target.Season,
				"season_type", target.SeasonType,
				"tier", name,
				"rows", len(state.Rows),
				"covered", state.Coverage.Covered,
				"active", state.Coverage.Active,
				"missing_sample", formatPlayerIDs(state.Coverage.Missing, 10),
			)
		}

		out, err := stage.Tier.Attempt(ctx, TierInput{
			Season:     target.Season,
			SeasonType: target.SeasonType,
			Roster:     target.Roster,
			Rows:       state.Rows,
			Coverage:   state.Coverage,
		})
		result.Failures += out.Failures
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				span.RecordError(ctxErr)
				return result.settle(state, name), ctxErr
			}
			if stage.Fatal {
				span.RecordError(err)
				return result.settle(state, name), crerr.Wrapf(err, "%s tier for %s %s", name, target.Season, target.SeasonType)
			}
			o.logger.WarnContext(ctx, "tier failed, continuing with empty result",
				"season", target.Season,
				"season_type", target.SeasonType,
				"tier", name,
				"error", err,
			)
			out = TierOutput{}
		}

		if out.Replace {
			state.Rows = GenuineRows(Dedupe(out.Rows))
		} else {
			state.Rows = GenuineRows(Dedupe(append(state.Rows, out.Rows...)))
		}
		state.Coverage = MeasureCoverage(target.Roster, state.Rows)
		state.Ran = append(state.Ran, name)

		o.logger.InfoContext(ctx, "tier finished",
			"season", target.Season,
			"season_type", target.SeasonType,
			"tier", name,
			"rows", len(state.Rows),
			"covered", state.Coverage.Covered,
			"active", state.Coverage.Active,
			"ratio", state.Coverage.Ratio,
			"failures", out.Failures,
		)
	}

	result = result.settle(state, "")
	span.SetAttributes(
		attribute.String("tier", string(result.Tier)),
		attribute.Int("rows", len(result.Rows)),
	)
	return result, nil
}

// settle copies the chain state into the result. A non-empty failed tier is
// recorded as the last tier that ran.
func (r OrchestrationResult) settle(state EscalationState, failed SourceTier) OrchestrationResult {
	r.Rows = state.Rows
	r.Coverage = state.Coverage
	r.Ran = state.Ran
	if failed != "" {
		r.Ran = append(append([]SourceTier(nil), state.Ran...), failed)
	}
	if len(r.Ran) > 0 {
		r.Tier = r.Ran[len(r.Ran)-1]
	}
	return r
}
