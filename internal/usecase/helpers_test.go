package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/nba-gamelogs/internal/domain/gamelog"
	"github.com/riskibarqy/nba-gamelogs/internal/domain/upstream"
	"github.com/riskibarqy/nba-gamelogs/internal/platform/logging"
	"github.com/riskibarqy/nba-gamelogs/internal/platform/retry"
)

// recordingSleeper returns immediately and remembers every requested wait.
type recordingSleeper struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (s *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.waits = append(s.waits, d)
	s.mu.Unlock()
	return ctx.Err()
}

func (s *recordingSleeper) recorded() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.waits...)
}

// stubTransport answers requests with a caller supplied function and counts
// calls per kind.
type stubTransport struct {
	mu     sync.Mutex
	calls  map[upstream.Kind]int
	params []map[string]string
	handle func(req upstream.Request, call int) ([]byte, error)
}

func newStubTransport(handle func(req upstream.Request, call int) ([]byte, error)) *stubTransport {
	return &stubTransport{calls: make(map[upstream.Kind]int), handle: handle}
}

func (s *stubTransport) Do(_ context.Context, req upstream.Request) ([]byte, error) {
	s.mu.Lock()
	call := s.calls[req.Kind]
	s.calls[req.Kind]++
	s.params = append(s.params, req.Params)
	s.mu.Unlock()
	return s.handle(req, call)
}

func (s *stubTransport) count(kind upstream.Kind) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[kind]
}

func zeroDelayPolicies() map[SourceTier]retry.Policy {
	out := DefaultRetryPolicies()
	for tier, policy := range out {
		out[tier] = policy.NoDelay()
	}
	return out
}

func newTestFetcher(transport upstream.Transport) (*Fetcher, *recordingSleeper) {
	sleeper := &recordingSleeper{}
	return NewFetcher(transport, FetcherConfig{
		Policies: zeroDelayPolicies(),
		Sleeper:  sleeper,
		Logger:   logging.NewNop(),
	}), sleeper
}

var gameLogHeaders = []string{
	"SEASON_YEAR", "PLAYER_ID", "PLAYER_NAME", "TEAM_ID", "TEAM_ABBREVIATION",
	"GAME_ID", "GAME_DATE", "MATCHUP", "WL", "MIN", "PTS", "REB", "AST", "PTS_RANK",
}

func resultSetBody(name string, headers []string, rows [][]any) []byte {
	headerValues := make([]any, 0, len(headers))
	for _, header := range headers {
		headerValues = append(headerValues, header)
	}
	if rows == nil {
		rows = [][]any{}
	}
	body, err := sonic.Marshal(map[string]any{
		"resultSets": []any{
			map[string]any{"name": name, "headers": headerValues, "rowSet": rows},
		},
	})
	if err != nil {
		panic(err)
	}
	return body
}

// gameLogRow builds one tabular row matching gameLogHeaders.
func gameLogRow(playerID int64, gameID, date string, pts int) []any {
	return []any{
		"2025-26", playerID, fmt.Sprintf("Player %d", playerID), 1610612747, "LAL",
		gameID, date + "T00:00:00", "LAL vs. BOS", "W", 30.5, pts, 5, 4, 12,
	}
}

// gameLogBody returns one game for each player id.
func gameLogBody(playerIDs []int64, date string) []byte {
	rows := make([][]any, 0, len(playerIDs))
	for _, id := range playerIDs {
		rows = append(rows, gameLogRow(id, "0022500100", date, 10))
	}
	return resultSetBody(leagueGameLogsResultSet, gameLogHeaders, rows)
}

var rosterHeaders = []string{"PERSON_ID", "DISPLAY_FIRST_LAST", "ROSTERSTATUS", "TEAM_ID", "TEAM_ABBREVIATION"}

// rosterBody lists active players 1..active followed by inactive ones up to total.
func rosterBody(active, total int) []byte {
	rows := make([][]any, 0, total)
	for i := 1; i <= total; i++ {
		status := 0
		if i <= active {
			status = 1
		}
		rows = append(rows, []any{i, fmt.Sprintf("Player %04d", i), status, 1610612747, "LAL"})
	}
	return resultSetBody(rosterResultSet, rosterHeaders, rows)
}

func playerIDs(from, to int64) []int64 {
	out := make([]int64, 0, to-from+1)
	for id := from; id <= to; id++ {
		out = append(out, id)
	}
	return out
}

func activeRoster(count int) []gamelog.RosterEntry {
	out := make([]gamelog.RosterEntry, 0, count)
	for i := 1; i <= count; i++ {
		out = append(out, gamelog.RosterEntry{PlayerID: int64(i), Name: fmt.Sprintf("Player %04d", i), Active: true})
	}
	return out
}

func genuineRows(ids []int64, gameID, date string) []gamelog.Row {
	out := make([]gamelog.Row, 0, len(ids))
	for _, id := range ids {
		out = append(out, gamelog.Row{
			gamelog.FieldPlayerID: id,
			gamelog.FieldGameID:   gameID,
			gamelog.FieldGameDate: date,
			"PTS":                 float64(10),
		})
	}
	return out
}

// memoryArtifactStore keeps published payloads in memory.
type memoryArtifactStore struct {
	mu        sync.Mutex
	datasets  map[string]gamelog.Dataset
	players   map[string]gamelog.PlayersFile
	summaries map[string]gamelog.SummaryFile
	published map[string]any
	publishes int
}

func newMemoryArtifactStore() *memoryArtifactStore {
	return &memoryArtifactStore{
		datasets:  make(map[string]gamelog.Dataset),
		players:   make(map[string]gamelog.PlayersFile),
		summaries: make(map[string]gamelog.SummaryFile),
		published: make(map[string]any),
	}
}

func (s *memoryArtifactStore) LoadDataset(_ context.Context, season string, seasonType gamelog.SeasonType) (gamelog.Dataset, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dataset, ok := s.datasets[gamelog.DatasetPath(season, seasonType)]
	return dataset, ok, nil
}

func (s *memoryArtifactStore) LoadPlayers(_ context.Context, season string) (gamelog.PlayersFile, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	players, ok := s.players[gamelog.PlayersPath(season)]
	return players, ok, nil
}

func (s *memoryArtifactStore) LoadSummary(_ context.Context, season string, seasonType gamelog.SeasonType) (gamelog.SummaryFile, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	summary, ok := s.summaries[gamelog.SummaryPath(season, seasonType)]
	return summary, ok, nil
}

func (s *memoryArtifactStore) Publish(_ context.Context, artifacts []gamelog.Artifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publishes++
	for _, artifact := range artifacts {
		s.published[artifact.Path] = artifact.Payload
		switch payload := artifact.Payload.(type) {
		case gamelog.Dataset:
			s.datasets[artifact.Path] = payload
		case gamelog.PlayersFile:
			s.players[artifact.Path] = payload
		case gamelog.SummaryFile:
			s.summaries[artifact.Path] = payload
		}
	}
	return nil
}

func (s *memoryArtifactStore) payload(path string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.published[path]
	return value, ok
}
