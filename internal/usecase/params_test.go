package usecase

import (
	"testing"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/nba-gamelogs/internal/domain/gamelog"
	"github.com/riskibarqy/nba-gamelogs/internal/domain/upstream"
)

func TestBuildRequest_FillsDefaultsAndCoerces(t *testing.T) {
	t.Parallel()

	req, err := BuildRequest(upstream.KindLeagueGameLogs, map[string]any{
		"Season":     "2025-26",
		"SeasonType": gamelog.RegularSeason,
		"DateFrom":   "2025-11-05",
		"DateTo":     "2025-11-05",
	})
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if req.Param("LeagueID") != "00" {
		t.Fatalf("expected default league id, got=%q", req.Param("LeagueID"))
	}
	if req.Param("SeasonType") != "Regular Season" {
		t.Fatalf("unexpected season type: %q", req.Param("SeasonType"))
	}
	if req.Param("DateFrom") != "11/05/2025" {
		t.Fatalf("unexpected date rendering: %q", req.Param("DateFrom"))
	}
}

func TestBuildRequest_RosterFlagRendering(t *testing.T) {
	t.Parallel()

	req, err := BuildRequest(upstream.KindRoster, map[string]any{"Season": "2025-26"})
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if req.Param("IsOnlyCurrentSeason") != "1" {
		t.Fatalf("expected default flag 1, got=%q", req.Param("IsOnlyCurrentSeason"))
	}

	req, err = BuildRequest(upstream.KindRoster, map[string]any{"Season": "2025-26", "IsOnlyCurrentSeason": false})
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if req.Param("IsOnlyCurrentSeason") != "0" {
		t.Fatalf("expected flag 0, got=%q", req.Param("IsOnlyCurrentSeason"))
	}
}

func TestBuildRequest_Rejections(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		kind   upstream.Kind
		values map[string]any
	}{
		{name: "missing required", kind: upstream.KindPlayerGameLogs, values: map[string]any{"Season": "2025-26", "SeasonType": "Playoffs"}},
		{name: "unknown parameter", kind: upstream.KindRoster, values: map[string]any{"Season": "2025-26", "Team": "LAL"}},
		{name: "bad season", kind: upstream.KindRoster, values: map[string]any{"Season": "2025-27"}},
		{name: "bad season type", kind: upstream.KindLeagueGameLogs, values: map[string]any{"Season": "2025-26", "SeasonType": "Preseason"}},
		{name: "non positive player", kind: upstream.KindPlayerGameLogs, values: map[string]any{"PlayerID": 0, "Season": "2025-26", "SeasonType": "Playoffs"}},
		{name: "bad game id", kind: upstream.KindBoxscore, values: map[string]any{"GameID": "12345"}},
		{name: "bad date", kind: upstream.KindLeagueGameLogs, values: map[string]any{"Season": "2025-26", "SeasonType": "Playoffs", "DateFrom": "11/05/2025"}},
		{name: "unknown kind", kind: upstream.Kind("teamgamelogs"), values: nil},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := BuildRequest(tc.kind, tc.values)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !crerr.Is(err, ErrPermanentProvider) {
				t.Fatalf("expected permanent error, got %v", err)
			}
		})
	}
}

func TestValidSeason(t *testing.T) {
	t.Parallel()

	for raw, want := range map[string]bool{
		"2025-26": true,
		"1999-00": true,
		"2025-25": false,
		"2025/26": false,
		"25-26":   false,
	} {
		if got := validSeason(raw); got != want {
			t.Fatalf("validSeason(%q)=%v want=%v", raw, got, want)
		}
	}
}
