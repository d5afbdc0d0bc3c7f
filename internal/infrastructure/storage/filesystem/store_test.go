package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/nba-gamelogs/internal/domain/gamelog"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir(), 2, nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func TestStore_PublishAndLoad(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	teamID := int64(1610612747)
	dataset := gamelog.Dataset{
		Season:     "2024-25",
		SeasonType: gamelog.RegularSeason,
		Count:      1,
		StatFields: []string{"PTS"},
		Rows: []gamelog.Row{
			{"PLAYER_ID": float64(2544), "GAME_ID": "0022400001", "PTS": float64(31)},
		},
	}
	players := gamelog.PlayersFile{
		Season: "2024-25",
		Count:  1,
		Players: []gamelog.RosterEntry{
			{PlayerID: 2544, Name: "LeBron James", TeamID: &teamID, TeamCode: "LAL", Active: true},
		},
	}

	err := store.Publish(ctx, []gamelog.Artifact{
		{Path: gamelog.DatasetPath("2024-25", gamelog.RegularSeason), Payload: dataset},
		{Path: gamelog.PlayersPath("2024-25"), Payload: players},
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	loaded, ok, err := store.LoadDataset(ctx, "2024-25", gamelog.RegularSeason)
	if err != nil || !ok {
		t.Fatalf("load dataset ok=%v err=%v", ok, err)
	}
	if loaded.Count != 1 || len(loaded.Rows) != 1 || loaded.Rows[0].PlayerID() != 2544 {
		t.Fatalf("unexpected dataset: %+v", loaded)
	}

	loadedPlayers, ok, err := store.LoadPlayers(ctx, "2024-25")
	if err != nil || !ok {
		t.Fatalf("load players ok=%v err=%v", ok, err)
	}
	if len(loadedPlayers.Players) != 1 || loadedPlayers.Players[0].TeamID == nil || *loadedPlayers.Players[0].TeamID != teamID {
		t.Fatalf("unexpected players: %+v", loadedPlayers)
	}
}

func TestStore_PublishSortsKeysAndLeavesNoTempFiles(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	rel := gamelog.DatasetPath("2024-25", gamelog.Playoffs)

	payload := gamelog.Dataset{
		Season:     "2024-25",
		SeasonType: gamelog.Playoffs,
		Rows:       []gamelog.Row{{"PTS": float64(10), "AST": float64(3), "GAME_ID": "0042400101"}},
	}
	for i := 0; i < 2; i++ {
		if err := store.Publish(context.Background(), []gamelog.Artifact{{Path: rel, Payload: payload}}); err != nil {
			t.Fatalf("publish #%d: %v", i, err)
		}
	}

	raw, err := os.ReadFile(filepath.Join(store.Root(), filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	body := string(raw)
	if strings.Index(body, `"AST"`) > strings.Index(body, `"GAME_ID"`) || strings.Index(body, `"GAME_ID"`) > strings.Index(body, `"PTS"`) {
		t.Fatalf("expected sorted row keys, got %s", body)
	}

	entries, err := os.ReadDir(filepath.Dir(filepath.Join(store.Root(), filepath.FromSlash(rel))))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected a single file after atomic writes, got %d", len(entries))
	}
}

func TestStore_LoadMissingAndMalformed(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	if _, ok, err := store.LoadDataset(ctx, "2024-25", gamelog.RegularSeason); ok || err != nil {
		t.Fatalf("expected missing dataset to be absent, ok=%v err=%v", ok, err)
	}

	target := filepath.Join(store.Root(), filepath.FromSlash(gamelog.PlayersPath("2024-25")))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(target, []byte(`{"season": "2024-25", "players": [`), 0o644); err != nil {
		t.Fatalf("write malformed file: %v", err)
	}

	_, ok, err := store.LoadPlayers(ctx, "2024-25")
	if ok {
		t.Fatalf("expected malformed players file to be absent")
	}
	if !crerr.Is(err, gamelog.ErrMalformedArtifact) {
		t.Fatalf("expected ErrMalformedArtifact, got %v", err)
	}
}

func TestStore_LoadDatasetRejectsSeasonMismatch(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	err := store.Publish(ctx, []gamelog.Artifact{{
		Path:    gamelog.DatasetPath("2024-25", gamelog.RegularSeason),
		Payload: gamelog.Dataset{Season: "2023-24", SeasonType: gamelog.RegularSeason},
	}})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	_, ok, err := store.LoadDataset(ctx, "2024-25", gamelog.RegularSeason)
	if ok || !crerr.Is(err, gamelog.ErrMalformedArtifact) {
		t.Fatalf("expected malformed season mismatch, ok=%v err=%v", ok, err)
	}
}

func TestStore_RejectsEscapingPaths(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	err := store.Publish(context.Background(), []gamelog.Artifact{{Path: "../outside.json", Payload: map[string]any{}}})
	if err == nil {
		t.Fatalf("expected error for path outside output root")
	}
}

func TestStore_PublishHonoursCancelledContext(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.Publish(ctx, []gamelog.Artifact{{Path: gamelog.ManifestPath, Payload: gamelog.Manifest{}}})
	if !crerr.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(store.Root(), gamelog.ManifestPath)); !os.IsNotExist(statErr) {
		t.Fatalf("expected manifest not to be written")
	}
}

func TestStore_UnreadableArtifactIsNotMalformed(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	target := filepath.Join(store.Root(), filepath.FromSlash(gamelog.SummaryPath("2024-25", gamelog.RegularSeason)))
	if err := os.MkdirAll(target, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	_, ok, err := store.LoadSummary(context.Background(), "2024-25", gamelog.RegularSeason)
	if err == nil || ok {
		t.Fatalf("expected read error, got ok=%v err=%v", ok, err)
	}
	if crerr.Is(err, gamelog.ErrMalformedArtifact) {
		t.Fatalf("read failure must not be marked malformed: %v", err)
	}
	if !strings.Contains(err.Error(), "read artifact summaries/2024-25/regular-season.json") {
		t.Fatalf("expected wrapped read context, got %v", err)
	}
}

func TestStore_LoadSummary(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	if _, ok, err := store.LoadSummary(ctx, "2024-25", gamelog.Playoffs); err != nil || ok {
		t.Fatalf("expected missing summary, got ok=%v err=%v", ok, err)
	}

	summary := gamelog.SummaryFile{Season: "2024-25", SeasonType: gamelog.Playoffs, Count: 1, GameRows: 4}
	path := gamelog.SummaryPath("2024-25", gamelog.Playoffs)
	if err := store.Publish(ctx, []gamelog.Artifact{{Path: path, Payload: summary}}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	got, ok, err := store.LoadSummary(ctx, "2024-25", gamelog.Playoffs)
	if err != nil || !ok || got.GameRows != 4 {
		t.Fatalf("unexpected summary %+v ok=%v err=%v", got, ok, err)
	}

	if _, _, err := store.LoadSummary(ctx, "2023-24", gamelog.Playoffs); err != nil {
		t.Fatalf("other season should be missing, got %v", err)
	}
}

func TestNewStore_RequiresRoot(t *testing.T) {
	t.Parallel()

	if _, err := NewStore("  ", 1, nil); err == nil {
		t.Fatalf("expected error for blank root")
	}
}
