package usecase

import (
	"context"
	"strconv"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/nba-gamelogs/internal/domain/gamelog"
	"github.com/riskibarqy/nba-gamelogs/internal/domain/upstream"
	"github.com/riskibarqy/nba-gamelogs/internal/platform/cache"
	"github.com/riskibarqy/nba-gamelogs/internal/platform/logging"
)

const (
	leagueGameLogsResultSet = "PlayerGameLogs"
	scheduleCacheKey        = "schedule:league"
)

type TierInput struct {
	Season     string
	SeasonType gamelog.SeasonType
	Roster     []gamelog.RosterEntry
	// Rows and Coverage describe what earlier tiers produced.
	Rows     []gamelog.Row
	Coverage CoverageReport
	DateFrom string
	DateTo   string
}

type TierOutput struct {
	Rows []gamelog.Row
	// Replace discards rows from earlier tiers.
	Replace  bool
	Failures int
}

// Tier is one acquisition strategy in the escalation chain.
type Tier interface {
	Name() SourceTier
	Attempt(ctx context.Context, in TierInput) (TierOutput, error)
}

// BulkTier pulls the league-wide log for a season type, optionally bounded
// to a date window.
type BulkTier struct {
	fetcher *Fetcher
}

func NewBulkTier(fetcher *Fetcher) *BulkTier {
	return &BulkTier{fetcher: fetcher}
}

func (t *BulkTier) Name() SourceTier { return TierBulk }

func (t *BulkTier) Attempt(ctx context.Context, in TierInput) (TierOutput, error) {
	params := map[string]any{
		"Season":     in.Season,
		"SeasonType": in.SeasonType,
	}
	if in.DateFrom != "" {
		params["DateFrom"] = in.DateFrom
	}
	if in.DateTo != "" {
		params["DateTo"] = in.DateTo
	}
	req, err := BuildRequest(upstream.KindLeagueGameLogs, params)
	if err != nil {
		return TierOutput{}, err
	}

	body, err := t.fetcher.Fetch(ctx, TierBulk, req)
	if err != nil {
		return TierOutput{}, crerr.Wrapf(err, "bulk game logs %s %s", in.Season, in.SeasonType)
	}
	rows, err := NormalizeResultSet(body, ResultSetHint{Name: leagueGameLogsResultSet})
	if err != nil {
		return TierOutput{}, crerr.Wrapf(err, "normalize bulk game logs %s %s", in.Season, in.SeasonType)
	}
	return TierOutput{Rows: rows}, nil
}

// BackfillTier fetches per-player logs for every active player the earlier
// tiers missed. A failing player is logged and skipped.
type BackfillTier struct {
	fetcher     *Fetcher
	logger      *logging.Logger
	maxFailures int
}

func NewBackfillTier(fetcher *Fetcher, maxFailures int, logger *logging.Logger) *BackfillTier {
	if logger == nil {
		logger = logging.Default()
	}
	return &BackfillTier{fetcher: fetcher, maxFailures: maxFailures, logger: logger.Named("backfill")}
}

func (t *BackfillTier) Name() SourceTier { return TierBackfill }

func (t *BackfillTier) Attempt(ctx context.Context, in TierInput) (TierOutput, error) {
	out := TierOutput{}
	total := len(in.Coverage.Missing)
	for idx, playerID := range in.Coverage.Missing {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		if idx == 0 || (idx+1)%20 == 0 || idx+1 == total {
			t.logger.InfoContext(ctx, "backfill progress", "season", in.Season, "season_type", in.SeasonType, "player", idx+1, "total", total)
		}

		rows, err := t.fetchPlayer(ctx, in, playerID)
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			out.Failures++
			t.logger.WarnContext(ctx, "backfill player failed, skipping",
				"season", in.Season,
				"season_type", in.SeasonType,
				"player_id", playerID,
				"error", err,
			)
			continue
		}
		out.Rows = append(out.Rows, rows...)
	}

	if t.maxFailures > 0 && out.Failures > t.maxFailures {
		t.logger.ErrorContext(ctx, "backfill failure budget exceeded",
			"season", in.Season,
			"season_type", in.SeasonType,
			"failures", out.Failures,
			"budget", t.maxFailures,
		)
	}
	return out, nil
}

func (t *BackfillTier) fetchPlayer(ctx context.Context, in TierInput, playerID int64) ([]gamelog.Row, error) {
	req, err := BuildRequest(upstream.KindPlayerGameLogs, map[string]any{
		"PlayerID":   playerID,
		"Season":     in.Season,
		"SeasonType": in.SeasonType,
	})
	if err != nil {
		return nil, err
	}
	body, err := t.fetcher.Fetch(ctx, TierBackfill, req)
	if err != nil {
		return nil, err
	}
	return NormalizeResultSet(body, ResultSetHint{
		Name:     leagueGameLogsResultSet,
		Defaults: map[string]any{gamelog.FieldPlayerID: playerID},
	})
}

// RebuildTier reconstructs the season from per-game boxscores enumerated
// from the league schedule. Its output replaces earlier tiers.
type RebuildTier struct {
	fetcher *Fetcher
	cache   *cache.Store
	logger  *logging.Logger
}

func NewRebuildTier(fetcher *Fetcher, store *cache.Store, logger *logging.Logger) *RebuildTier {
	if logger == nil {
		logger = logging.Default()
	}
	if store == nil {
		store = cache.NewStore(0)
	}
	return &RebuildTier{fetcher: fetcher, cache: store, logger: logger.Named("rebuild")}
}

func (t *RebuildTier) Name() SourceTier { return TierRebuild }

func (t *RebuildTier) Attempt(ctx context.Context, in TierInput) (TierOutput, error) {
	index, err := cache.Load(ctx, t.cache, scheduleCacheKey, t.loadSchedule)
	if err != nil {
		return TierOutput{}, crerr.Wrap(err, "load schedule index")
	}

	games := index.CompletedGames(in.Season, in.SeasonType)
	if len(games) == 0 {
		if index.SeasonYear != "" && index.SeasonYear != in.Season {
			return TierOutput{}, permanentf("schedule covers %s, not %s", index.SeasonYear, in.Season)
		}
		t.logger.InfoContext(ctx, "no completed games to rebuild from", "season", in.Season, "season_type", in.SeasonType)
		return TierOutput{Replace: true}, nil
	}

	out := TierOutput{Replace: true}
	for idx, game := range games {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		if idx == 0 || (idx+1)%50 == 0 || idx+1 == len(games) {
			t.logger.InfoContext(ctx, "rebuild progress", "season", in.Season, "season_type", in.SeasonType, "game", idx+1, "total", len(games))
		}

		rows, err := t.fetchGame(ctx, in.Season, game.GameID)
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			out.Failures++
			t.logger.WarnContext(ctx, "boxscore failed, skipping game", "game_id", game.GameID, "error", err)
			continue
		}
		out.Rows = append(out.Rows, rows...)
	}

	if len(out.Rows) == 0 {
		return out, crerr.Newf("rebuild produced no rows from %d completed games (%d failed)", len(games), out.Failures)
	}
	return out, nil
}

func (t *RebuildTier) loadSchedule(ctx context.Context) (ScheduleIndex, error) {
	req, err := BuildRequest(upstream.KindSchedule, nil)
	if err != nil {
		return ScheduleIndex{}, err
	}
	body, err := t.fetcher.Fetch(ctx, TierRebuild, req)
	if err != nil {
		return ScheduleIndex{}, err
	}
	return ParseSchedule(body)
}

func (t *RebuildTier) fetchGame(ctx context.Context, season, gameID string) ([]gamelog.Row, error) {
	req, err := BuildRequest(upstream.KindBoxscore, map[string]any{"GameID": gameID})
	if err != nil {
		return nil, err
	}
	body, err := t.fetcher.Fetch(ctx, TierRebuild, req)
	if err != nil {
		return nil, crerr.Wrapf(err, "boxscore %s", gameID)
	}
	return NormalizeBoxscore(body, season)
}

func formatPlayerIDs(ids []int64, limit int) string {
	if len(ids) > limit {
		ids = ids[:limit]
	}
	out := make([]byte, 0, len(ids)*8)
	for i, id := range ids {
		if i > 0 {
			out = append(out, ',')
		}
		out = strconv.AppendInt(out, id, 10)
	}
	return string(out)
}
