package usecase

import (
	"context"
	"sort"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/nba-gamelogs/internal/domain/gamelog"
	"github.com/riskibarqy/nba-gamelogs/internal/domain/upstream"
)

const (
	rosterResultSet   = "CommonAllPlayers"
	rosterStatusField = "ROSTERSTATUS"
	rosterNameField   = "DISPLAY_FIRST_LAST"
)

// rosterCurrentSeasonOnly is the IsOnlyCurrentSeason flag per attempt. Later
// attempts widen to the all-time list, which the endpoint serves more
// reliably when the current-season view is stale.
var rosterCurrentSeasonOnly = []bool{true, true, true, false, false}

// FetchRoster downloads the player index for a season. A payload with fewer
// than minRows rows is treated as a transient failure.
func FetchRoster(ctx context.Context, fetcher *Fetcher, season string, minRows int) ([]gamelog.RosterEntry, error) {
	var rows []gamelog.Row
	_, err := fetcher.Do(ctx, FetchSpec{
		Tier: TierRoster,
		Request: func(attempt int) (upstream.Request, error) {
			flag := rosterCurrentSeasonOnly[min(attempt, len(rosterCurrentSeasonOnly)-1)]
			return BuildRequest(upstream.KindRoster, map[string]any{
				"Season":              season,
				"IsOnlyCurrentSeason": flag,
			})
		},
		Accept: func(body []byte) error {
			parsed, err := NormalizeResultSet(body, ResultSetHint{Name: rosterResultSet})
			if err != nil {
				return err
			}
			if len(parsed) < minRows {
				return crerr.Mark(crerr.Newf("roster payload too small: %d rows, need %d", len(parsed), minRows), ErrTransientProvider)
			}
			rows = parsed
			return nil
		},
	})
	if err != nil {
		return nil, crerr.Wrapf(err, "fetch roster %s", season)
	}
	return RosterFromRows(rows), nil
}

// RosterFromRows converts player index rows into roster entries, one per id.
func RosterFromRows(rows []gamelog.Row) []gamelog.RosterEntry {
	out := make([]gamelog.RosterEntry, 0, len(rows))
	seen := make(map[int64]struct{}, len(rows))
	for _, row := range rows {
		id := row.PlayerID()
		if id <= 0 {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		entry := gamelog.RosterEntry{
			PlayerID: id,
			Name:     row.String(rosterNameField),
			TeamCode: row.String(gamelog.FieldTeamAbbreviation),
			Active:   row.Int64(rosterStatusField) == 1,
		}
		if teamID := row.Int64(gamelog.FieldTeamID); teamID > 0 {
			entry.TeamID = &teamID
		}
		out = append(out, entry)
	}
	return out
}

// DeriveRoster builds an all-active roster from observed game rows. The team
// is taken from each player's latest row.
func DeriveRoster(rows []gamelog.Row) []gamelog.RosterEntry {
	type latest struct {
		entry gamelog.RosterEntry
		date  string
	}
	byID := make(map[int64]*latest)
	order := make([]int64, 0)
	for _, row := range rows {
		id := row.PlayerID()
		if id <= 0 || row.IsPlaceholder() {
			continue
		}
		current, ok := byID[id]
		if !ok {
			current = &latest{}
			byID[id] = current
			order = append(order, id)
		} else if row.GameDate() < current.date {
			continue
		}
		current.date = row.GameDate()
		current.entry = gamelog.RosterEntry{
			PlayerID: id,
			Name:     row.String(gamelog.FieldPlayerName),
			TeamCode: row.String(gamelog.FieldTeamAbbreviation),
			Active:   true,
		}
		if teamID := row.Int64(gamelog.FieldTeamID); teamID > 0 {
			current.entry.TeamID = &teamID
		}
	}

	out := make([]gamelog.RosterEntry, 0, len(order))
	for _, id := range order {
		out = append(out, byID[id].entry)
	}
	SortRoster(out)
	return out
}

// SortRoster orders entries by (name, id).
func SortRoster(entries []gamelog.RosterEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Name != entries[j].Name {
			return entries[i].Name < entries[j].Name
		}
		return entries[i].PlayerID < entries[j].PlayerID
	})
}

// ActivePlayers returns the active entries sorted by (name, id).
func ActivePlayers(roster []gamelog.RosterEntry) []gamelog.RosterEntry {
	out := make([]gamelog.RosterEntry, 0, len(roster))
	for _, entry := range roster {
		if entry.Active {
			out = append(out, entry)
		}
	}
	SortRoster(out)
	return out
}
