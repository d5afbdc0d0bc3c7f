package usecase

import (
	"fmt"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/nba-gamelogs/internal/domain/gamelog"
	"github.com/riskibarqy/nba-gamelogs/internal/domain/upstream"
)

var (
	ErrTransientProvider  = upstream.ErrTransient
	ErrPermanentProvider  = upstream.ErrPermanent
	ErrIncompleteCoverage = crerr.New("incomplete coverage")
	ErrMalformedArtifact  = gamelog.ErrMalformedArtifact
	ErrInvalidInput       = crerr.New("invalid input")
)

// CoverageError carries the measured numbers that failed a coverage gate.
type CoverageError struct {
	Season     string
	SeasonType gamelog.SeasonType
	Tier       SourceTier
	Report     CoverageReport
	Thresholds CoverageThresholds
}

func (e *CoverageError) Error() string {
	return fmt.Sprintf(
		"incomplete coverage for %s %s after %s tier: covered=%d active=%d ratio=%.3f (need covered>=%d and ratio>=%.2f)",
		e.Season, e.SeasonType, e.Tier,
		e.Report.Covered, e.Report.Active, e.Report.Ratio,
		e.Thresholds.MinCovered, e.Thresholds.MinRatio,
	)
}

func (e *CoverageError) Unwrap() error {
	return ErrIncompleteCoverage
}

func permanentf(format string, args ...any) error {
	return crerr.Mark(crerr.Newf(format, args...), ErrPermanentProvider)
}
