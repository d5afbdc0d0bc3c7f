package usecase

import (
	"sort"

	"github.com/riskibarqy/nba-gamelogs/internal/domain/gamelog"
)

type playerTeamKey struct {
	playerID int64
	teamID   int64
}

// BuildSeasonSummary totals genuine game rows per (player, team) and
// consolidates traded players into a single aggregate row.
func BuildSeasonSummary(rows []gamelog.Row) []gamelog.Row {
	order := make([]playerTeamKey, 0)
	groups := make(map[playerTeamKey][]gamelog.Row)
	for _, row := range rows {
		if row.IsPlaceholder() || !row.HasIdentity() {
			continue
		}
		key := playerTeamKey{playerID: row.PlayerID(), teamID: row.Int64(gamelog.FieldTeamID)}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], row)
	}

	perTeam := make([]gamelog.Row, 0, len(order))
	for _, key := range order {
		perTeam = append(perTeam, totalGames(groups[key]))
	}

	out := AggregateTraded(perTeam, SeasonTotalsAggregateSpec)
	sort.SliceStable(out, func(i, j int) bool {
		left, right := out[i].String(gamelog.FieldPlayerName), out[j].String(gamelog.FieldPlayerName)
		if left != right {
			return left < right
		}
		return out[i].PlayerID() < out[j].PlayerID()
	})
	return out
}

func totalGames(games []gamelog.Row) gamelog.Row {
	first := games[0]
	out := gamelog.Row{
		gamelog.FieldSeasonYear:       first[gamelog.FieldSeasonYear],
		gamelog.FieldPlayerID:         first.PlayerID(),
		gamelog.FieldPlayerName:       first.String(gamelog.FieldPlayerName),
		gamelog.FieldTeamID:           first.Int64(gamelog.FieldTeamID),
		gamelog.FieldTeamAbbreviation: first.String(gamelog.FieldTeamAbbreviation),
		"GP":                          len(games),
	}

	wins, losses := 0, 0
	for _, game := range games {
		switch game.String(gamelog.FieldWL) {
		case "W":
			wins++
		case "L":
			losses++
		}
	}
	out["W"] = wins
	out["L"] = losses

	totals := make(map[string]float64, len(SeasonTotalsAggregateSpec.Counts))
	for _, field := range SeasonTotalsAggregateSpec.Counts {
		if field == "GP" || field == "W" || field == "L" {
			continue
		}
		for _, game := range games {
			totals[field] += game.Float(field)
		}
		out[field] = roundTo(totals[field], 3)
	}
	for _, derived := range SeasonTotalsAggregateSpec.Derived {
		out[derived.Field] = roundTo(derived.Compute(totals), 6)
	}
	return out
}
