package usecase

import (
	"reflect"
	"testing"

	"github.com/riskibarqy/nba-gamelogs/internal/domain/gamelog"
)

func TestDedupe_FirstRowWinsAndIsIdempotent(t *testing.T) {
	t.Parallel()

	rows := []gamelog.Row{
		{"PLAYER_ID": 1.0, "GAME_ID": "0022500100", "PTS": 10.0},
		{"PLAYER_ID": 2.0, "GAME_ID": "0022500100", "PTS": 8.0},
		{"PLAYER_ID": 1.0, "GAME_ID": "0022500100", "PTS": 99.0},
		{"PLAYER_ID": 0.0, "GAME_ID": "0022500100", "PTS": 1.0},
		{"PLAYER_ID": 3.0, "PTS": 2.0},
	}

	once := Dedupe(rows)
	if len(once) != 4 {
		t.Fatalf("expected 4 rows, got=%d", len(once))
	}
	if once[0].Float("PTS") != 10 {
		t.Fatalf("expected first occurrence to win, got=%v", once[0])
	}

	twice := Dedupe(once)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("dedupe is not idempotent")
	}
}

func TestSortRows_ByDateThenPlayerStable(t *testing.T) {
	t.Parallel()

	rows := []gamelog.Row{
		{"PLAYER_ID": 5.0, "GAME_DATE": "2025-11-06", "GAME_ID": "a"},
		{"PLAYER_ID": 9.0, "GAME_DATE": "Nov 05, 2025", "GAME_ID": "b"},
		{"PLAYER_ID": 2.0, "GAME_DATE": "2025-11-05T00:00:00", "GAME_ID": "c"},
		{"PLAYER_ID": 2.0, "GAME_DATE": "2025-11-05", "GAME_ID": "d"},
	}
	SortRows(rows)

	got := []string{rows[0].GameID(), rows[1].GameID(), rows[2].GameID(), rows[3].GameID()}
	want := []string{"c", "d", "b", "a"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected order: got=%v want=%v", got, want)
	}
}

func TestObservedPlayersSkipsPlaceholders(t *testing.T) {
	t.Parallel()

	rows := append(genuineRows([]int64{1, 2}, "0022500100", "2025-11-05"),
		gamelog.NewPlaceholderRow(gamelog.RosterEntry{PlayerID: 3}, "2025-26", nil),
		gamelog.Row{"PLAYER_ID": 4.0, "MATCHUP": "no games yet"},
	)

	observed := ObservedPlayers(rows)
	if len(observed) != 2 {
		t.Fatalf("expected 2 observed players, got=%v", observed)
	}
	if genuine := GenuineRows(rows); len(genuine) != 2 {
		t.Fatalf("expected 2 genuine rows, got=%d", len(genuine))
	}
}
