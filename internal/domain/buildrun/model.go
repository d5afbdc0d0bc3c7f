package buildrun

import "time"

type Outcome string

const (
	OutcomePublished Outcome = "published"
	// OutcomeFallback means the previous artifact was republished unchanged.
	OutcomeFallback Outcome = "fallback"
	OutcomeFailed   Outcome = "failed"
	OutcomeDryRun   Outcome = "dry_run"
)

type Mode string

const (
	ModeFull        Mode = "full"
	ModeIncremental Mode = "incremental"
)

// Run is the ledger record for one (season, season type) inside a build.
type Run struct {
	RunID      string
	Season     string
	SeasonType string
	Mode       Mode
	Tier       string
	Rows       int
	Covered    int
	Active     int
	Ratio      float64
	Outcome    Outcome
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}
