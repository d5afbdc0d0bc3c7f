package usecase

import (
	"sort"

	"github.com/riskibarqy/nba-gamelogs/internal/domain/gamelog"
)

type rowKey struct {
	playerID int64
	gameID   string
}

// Dedupe keeps the first row seen for each (player, game) key. Rows missing
// either half of the key are kept as they are, in place.
func Dedupe(rows []gamelog.Row) []gamelog.Row {
	seen := make(map[rowKey]struct{}, len(rows))
	out := make([]gamelog.Row, 0, len(rows))
	for _, row := range rows {
		if !row.HasIdentity() {
			out = append(out, row)
			continue
		}
		key := rowKey{playerID: row.PlayerID(), gameID: row.GameID()}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, row)
	}
	return out
}

// GenuineRows drops placeholder rows.
func GenuineRows(rows []gamelog.Row) []gamelog.Row {
	out := make([]gamelog.Row, 0, len(rows))
	for _, row := range rows {
		if row.IsPlaceholder() {
			continue
		}
		out = append(out, row)
	}
	return out
}

// SortRows orders rows by (game date, player id); ties keep input order.
func SortRows(rows []gamelog.Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		left, right := rows[i].GameDate(), rows[j].GameDate()
		if left != right {
			return left < right
		}
		return rows[i].PlayerID() < rows[j].PlayerID()
	})
}

// ObservedPlayers returns ids with at least one genuine row.
func ObservedPlayers(rows []gamelog.Row) map[int64]struct{} {
	out := make(map[int64]struct{})
	for _, row := range rows {
		if row.IsPlaceholder() {
			continue
		}
		if id := row.PlayerID(); id > 0 {
			out[id] = struct{}{}
		}
	}
	return out
}
