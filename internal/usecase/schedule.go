package usecase

import (
	"sort"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/nba-gamelogs/internal/domain/gamelog"
)

const gameStatusFinal = 3

type ScheduledGame struct {
	GameID string
	Status int
	Date   string
}

// ScheduleIndex is the league schedule as published by the CDN.
type ScheduleIndex struct {
	SeasonYear string
	Games      []ScheduledGame
}

type scheduleEnvelope struct {
	LeagueSchedule struct {
		SeasonYear string `json:"seasonYear"`
		GameDates  []struct {
			GameDate string `json:"gameDate"`
			Games    []struct {
				GameID      string `json:"gameId"`
				GameStatus  int    `json:"gameStatus"`
				GameDateEst string `json:"gameDateEst"`
			} `json:"games"`
		} `json:"gameDates"`
	} `json:"leagueSchedule"`
}

func ParseSchedule(body []byte) (ScheduleIndex, error) {
	var envelope scheduleEnvelope
	if err := sonic.Unmarshal(body, &envelope); err != nil {
		return ScheduleIndex{}, permanentf("decode schedule payload: %v", err)
	}

	index := ScheduleIndex{SeasonYear: strings.TrimSpace(envelope.LeagueSchedule.SeasonYear)}
	for _, day := range envelope.LeagueSchedule.GameDates {
		for _, game := range day.Games {
			if strings.TrimSpace(game.GameID) == "" {
				continue
			}
			date := gamelog.NormalizeDate(game.GameDateEst)
			if date == "" {
				date = gamelog.NormalizeDate(day.GameDate)
			}
			index.Games = append(index.Games, ScheduledGame{
				GameID: strings.TrimSpace(game.GameID),
				Status: game.GameStatus,
				Date:   date,
			})
		}
	}
	return index, nil
}

// CompletedGames returns final games of the season and stage, ordered by
// date then game id. Game ids encode stage in chars 0-2 and the season start
// year in chars 3-4, e.g. 0022500123.
func (idx ScheduleIndex) CompletedGames(season string, seasonType gamelog.SeasonType) []ScheduledGame {
	yearCode := ""
	if len(season) >= 4 {
		yearCode = season[2:4]
	}
	prefix := seasonType.GameIDPrefix()

	out := make([]ScheduledGame, 0, len(idx.Games))
	seen := make(map[string]struct{}, len(idx.Games))
	for _, game := range idx.Games {
		if game.Status != gameStatusFinal || len(game.GameID) < 5 {
			continue
		}
		if !strings.HasPrefix(game.GameID, prefix) || game.GameID[3:5] != yearCode {
			continue
		}
		if _, dup := seen[game.GameID]; dup {
			continue
		}
		seen[game.GameID] = struct{}{}
		out = append(out, game)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].GameID < out[j].GameID
	})
	return out
}
