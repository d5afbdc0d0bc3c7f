package buildrun

import "context"

type Repository interface {
	Record(ctx context.Context, run Run) error
	ListByRunID(ctx context.Context, runID string) ([]Run, error)
}
