package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/riskibarqy/nba-gamelogs/internal/domain/buildrun"
)

type buildRunKey struct {
	season     string
	seasonType string
}

// BuildRunRepository keeps the run ledger in process memory. Used when no
// ledger database is configured.
type BuildRunRepository struct {
	mu   sync.RWMutex
	runs map[string]map[buildRunKey]buildrun.Run
}

func NewBuildRunRepository() *BuildRunRepository {
	return &BuildRunRepository{runs: make(map[string]map[buildRunKey]buildrun.Run)}
}

func (r *BuildRunRepository) Record(_ context.Context, run buildrun.Run) error {
	runID := strings.TrimSpace(run.RunID)
	if runID == "" {
		return fmt.Errorf("run id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	byTarget, ok := r.runs[runID]
	if !ok {
		byTarget = make(map[buildRunKey]buildrun.Run)
		r.runs[runID] = byTarget
	}
	byTarget[buildRunKey{season: run.Season, seasonType: run.SeasonType}] = run

	return nil
}

func (r *BuildRunRepository) ListByRunID(_ context.Context, runID string) ([]buildrun.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byTarget := r.runs[strings.TrimSpace(runID)]
	out := make([]buildrun.Run, 0, len(byTarget))
	for _, run := range byTarget {
		out = append(out, run)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Season != out[j].Season {
			return out[i].Season < out[j].Season
		}
		return out[i].SeasonType < out[j].SeasonType
	})

	return out, nil
}
