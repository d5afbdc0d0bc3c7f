package usecase

import (
	"sort"

	"github.com/riskibarqy/nba-gamelogs/internal/domain/gamelog"
)

type CoverageThresholds struct {
	MinCovered int
	MinRatio   float64
}

// Breached reports whether the report falls below either threshold.
func (t CoverageThresholds) Breached(report CoverageReport) bool {
	return report.Covered < t.MinCovered || report.Ratio < t.MinRatio
}

// CoveragePolicy picks thresholds by run mode: Strict when no previous
// artifact exists, WithFallback when one can be republished instead.
type CoveragePolicy struct {
	Strict       CoverageThresholds
	WithFallback CoverageThresholds
}

func DefaultCoveragePolicy() CoveragePolicy {
	return CoveragePolicy{
		Strict:       CoverageThresholds{MinCovered: 150, MinRatio: 0.55},
		WithFallback: CoverageThresholds{MinCovered: 100, MinRatio: 0.35},
	}
}

func (p CoveragePolicy) thresholds(hasPrevious bool) CoverageThresholds {
	if hasPrevious {
		return p.WithFallback
	}
	return p.Strict
}

type CoverageReport struct {
	Active  int
	Covered int
	Ratio   float64
	// Missing lists active players without a genuine row, ascending.
	Missing []int64
}

// MeasureCoverage scores genuine rows against the active roster.
func MeasureCoverage(roster []gamelog.RosterEntry, rows []gamelog.Row) CoverageReport {
	observed := ObservedPlayers(rows)

	report := CoverageReport{}
	seen := make(map[int64]struct{}, len(roster))
	for _, entry := range roster {
		if !entry.Active || entry.PlayerID <= 0 {
			continue
		}
		if _, dup := seen[entry.PlayerID]; dup {
			continue
		}
		seen[entry.PlayerID] = struct{}{}
		report.Active++
		if _, ok := observed[entry.PlayerID]; ok {
			report.Covered++
			continue
		}
		report.Missing = append(report.Missing, entry.PlayerID)
	}
	sort.Slice(report.Missing, func(i, j int) bool { return report.Missing[i] < report.Missing[j] })
	if report.Active > 0 {
		report.Ratio = float64(report.Covered) / float64(report.Active)
	}
	return report
}

type CoverageValidator struct {
	policy CoveragePolicy
}

func NewCoverageValidator(policy CoveragePolicy) *CoverageValidator {
	return &CoverageValidator{policy: policy}
}

// Validate gates the primary season type only. The returned error is a
// *CoverageError wrapping ErrIncompleteCoverage.
func (v *CoverageValidator) Validate(season string, seasonType gamelog.SeasonType, tier SourceTier, roster []gamelog.RosterEntry, rows []gamelog.Row, hasPrevious bool) (CoverageReport, error) {
	report := MeasureCoverage(roster, rows)
	if !seasonType.IsPrimary() {
		return report, nil
	}

	thresholds := v.policy.thresholds(hasPrevious)
	if thresholds.Breached(report) {
		return report, &CoverageError{
			Season:     season,
			SeasonType: seasonType,
			Tier:       tier,
			Report:     report,
			Thresholds: thresholds,
		}
	}
	return report, nil
}
