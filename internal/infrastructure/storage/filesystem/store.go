package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/nba-gamelogs/internal/domain/gamelog"
	"github.com/riskibarqy/nba-gamelogs/internal/platform/logging"
)

const defaultWorkers = 4

// artifactAPI sorts map keys so repeated builds produce identical bytes.
var artifactAPI = sonic.ConfigStd

type Store struct {
	root    string
	workers int
	logger  *logging.Logger
}

func NewStore(root string, workers int, logger *logging.Logger) (*Store, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, crerr.New("output root is required")
	}
	if workers <= 0 {
		workers = defaultWorkers
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	return &Store{
		root:    filepath.Clean(root),
		workers: workers,
		logger:  logger.Named("artifact_store"),
	}, nil
}

func (s *Store) Root() string {
	return s.root
}

func (s *Store) LoadDataset(ctx context.Context, season string, seasonType gamelog.SeasonType) (gamelog.Dataset, bool, error) {
	var dataset gamelog.Dataset
	ok, err := s.load(ctx, gamelog.DatasetPath(season, seasonType), &dataset)
	if err != nil || !ok {
		return gamelog.Dataset{}, false, err
	}
	if dataset.Season != "" && dataset.Season != season {
		return gamelog.Dataset{}, false, crerr.Mark(
			crerr.Newf("dataset season %q does not match %q", dataset.Season, season),
			gamelog.ErrMalformedArtifact,
		)
	}
	return dataset, true, nil
}

func (s *Store) LoadPlayers(ctx context.Context, season string) (gamelog.PlayersFile, bool, error) {
	var players gamelog.PlayersFile
	ok, err := s.load(ctx, gamelog.PlayersPath(season), &players)
	if err != nil || !ok {
		return gamelog.PlayersFile{}, false, err
	}
	return players, true, nil
}

func (s *Store) LoadSummary(ctx context.Context, season string, seasonType gamelog.SeasonType) (gamelog.SummaryFile, bool, error) {
	var summary gamelog.SummaryFile
	ok, err := s.load(ctx, gamelog.SummaryPath(season, seasonType), &summary)
	if err != nil || !ok {
		return gamelog.SummaryFile{}, false, err
	}
	if summary.Season != "" && summary.Season != season {
		return gamelog.SummaryFile{}, false, crerr.Mark(
			crerr.Newf("summary season %q does not match %q", summary.Season, season),
			gamelog.ErrMalformedArtifact,
		)
	}
	return summary, true, nil
}

func (s *Store) load(ctx context.Context, rel string, out any) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	target, err := s.resolve(rel)
	if err != nil {
		return false, err
	}

	raw, err := os.ReadFile(target)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, crerr.Wrapf(err, "read artifact %s", rel)
	}

	if err := artifactAPI.Unmarshal(raw, out); err != nil {
		return false, crerr.Mark(crerr.Wrapf(err, "decode artifact %s", rel), gamelog.ErrMalformedArtifact)
	}
	return true, nil
}

// Publish encodes every artifact first, then writes them through a bounded
// worker pool. Each file is replaced atomically.
func (s *Store) Publish(ctx context.Context, artifacts []gamelog.Artifact) error {
	if len(artifacts) == 0 {
		return nil
	}

	type encoded struct {
		rel    string
		target string
		body   []byte
	}
	files := make([]encoded, 0, len(artifacts))
	for _, artifact := range artifacts {
		target, err := s.resolve(artifact.Path)
		if err != nil {
			return err
		}
		body, err := artifactAPI.Marshal(artifact.Payload)
		if err != nil {
			return crerr.Wrapf(err, "encode artifact %s", artifact.Path)
		}
		files = append(files, encoded{rel: artifact.Path, target: target, body: body})
	}

	pool, err := ants.NewPool(min(s.workers, len(files)))
	if err != nil {
		return crerr.Wrap(err, "create publish worker pool")
	}
	defer pool.Release()

	var (
		mu      sync.Mutex
		errs    error
		workers sync.WaitGroup
	)
	for _, file := range files {
		file := file
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			if err := ctx.Err(); err != nil {
				mu.Lock()
				errs = crerr.CombineErrors(errs, err)
				mu.Unlock()
				return
			}
			if err := writeAtomic(file.target, file.body); err != nil {
				mu.Lock()
				errs = crerr.CombineErrors(errs, crerr.Wrapf(err, "write artifact %s", file.rel))
				mu.Unlock()
				return
			}
			s.logger.DebugContext(ctx, "artifact written", "path", file.rel, "bytes", len(file.body))
		}); err != nil {
			workers.Done()
			workers.Wait()
			return crerr.Wrap(err, "submit artifact write to worker pool")
		}
	}
	workers.Wait()

	return errs
}

func (s *Store) resolve(rel string) (string, error) {
	rel = filepath.FromSlash(strings.TrimSpace(rel))
	if rel == "" || !filepath.IsLocal(rel) {
		return "", crerr.Newf("artifact path %q escapes output root", rel)
	}
	return filepath.Join(s.root, rel), nil
}

func writeAtomic(target string, body []byte) error {
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(target)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(body); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmpName, target); err != nil {
		cleanup()
		return err
	}
	return nil
}
