package gamelog

import (
	"context"

	crerr "github.com/cockroachdb/errors"
)

// ErrMalformedArtifact marks a published file that exists but cannot be
// parsed. Callers treat it as absent.
var ErrMalformedArtifact = crerr.New("malformed artifact")

// Artifact is one file to publish, addressed relative to the output root.
type Artifact struct {
	Path    string
	Payload any
}

type ArtifactStore interface {
	LoadDataset(ctx context.Context, season string, seasonType SeasonType) (Dataset, bool, error)
	LoadPlayers(ctx context.Context, season string) (PlayersFile, bool, error)
	LoadSummary(ctx context.Context, season string, seasonType SeasonType) (SummaryFile, bool, error)
	Publish(ctx context.Context, artifacts []Artifact) error
}
