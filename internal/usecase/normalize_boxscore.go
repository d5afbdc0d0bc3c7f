package usecase

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/nba-gamelogs/internal/domain/gamelog"
)

type boxscoreEnvelope struct {
	Game boxscoreGame `json:"game"`
}

type boxscoreGame struct {
	GameID      string       `json:"gameId"`
	GameEt      string       `json:"gameEt"`
	GameTimeUTC string       `json:"gameTimeUTC"`
	GameStatus  int          `json:"gameStatus"`
	HomeTeam    boxscoreTeam `json:"homeTeam"`
	AwayTeam    boxscoreTeam `json:"awayTeam"`
}

type boxscoreTeam struct {
	TeamID      int64            `json:"teamId"`
	TeamCity    string           `json:"teamCity"`
	TeamName    string           `json:"teamName"`
	TeamTricode string           `json:"teamTricode"`
	Score       int              `json:"score"`
	Players     []boxscorePlayer `json:"players"`
}

type boxscorePlayer struct {
	PersonID   int64          `json:"personId"`
	Name       string         `json:"name"`
	FirstName  string         `json:"firstName"`
	FamilyName string         `json:"familyName"`
	Played     string         `json:"played"`
	Statistics map[string]any `json:"statistics"`
}

var boxscoreStatFields = []struct {
	source string
	target string
}{
	{"points", "PTS"},
	{"fieldGoalsMade", "FGM"},
	{"fieldGoalsAttempted", "FGA"},
	{"fieldGoalsPercentage", "FG_PCT"},
	{"threePointersMade", "FG3M"},
	{"threePointersAttempted", "FG3A"},
	{"threePointersPercentage", "FG3_PCT"},
	{"freeThrowsMade", "FTM"},
	{"freeThrowsAttempted", "FTA"},
	{"freeThrowsPercentage", "FT_PCT"},
	{"reboundsOffensive", "OREB"},
	{"reboundsDefensive", "DREB"},
	{"reboundsTotal", "REB"},
	{"assists", "AST"},
	{"steals", "STL"},
	{"blocks", "BLK"},
	{"turnovers", "TOV"},
	{"foulsPersonal", "PF"},
	{"plusMinusPoints", "PLUS_MINUS"},
}

// NormalizeBoxscore flattens a per-game boxscore into one row per player who
// took the floor, with matchup and result taken from the team context.
func NormalizeBoxscore(body []byte, season string) ([]gamelog.Row, error) {
	var envelope boxscoreEnvelope
	if err := sonic.Unmarshal(body, &envelope); err != nil {
		return nil, permanentf("decode boxscore payload: %v", err)
	}
	game := envelope.Game
	if strings.TrimSpace(game.GameID) == "" {
		return nil, permanentf("boxscore payload has no game id")
	}

	gameDate := gamelog.NormalizeDate(game.GameEt)
	if len(gameDate) != len("2006-01-02") && len(game.GameTimeUTC) >= 10 {
		gameDate = game.GameTimeUTC[:10]
	}

	out := make([]gamelog.Row, 0, len(game.HomeTeam.Players)+len(game.AwayTeam.Players))
	out = appendTeamRows(out, game, game.HomeTeam, game.AwayTeam, true, gameDate, season)
	out = appendTeamRows(out, game, game.AwayTeam, game.HomeTeam, false, gameDate, season)
	return out, nil
}

func appendTeamRows(out []gamelog.Row, game boxscoreGame, team, opponent boxscoreTeam, home bool, gameDate, season string) []gamelog.Row {
	matchup := team.TeamTricode + " @ " + opponent.TeamTricode
	if home {
		matchup = team.TeamTricode + " vs. " + opponent.TeamTricode
	}

	wl := ""
	switch {
	case team.Score > opponent.Score:
		wl = "W"
	case team.Score < opponent.Score:
		wl = "L"
	}

	for _, player := range team.Players {
		if player.PersonID <= 0 {
			continue
		}
		minutes := ParseMinutes(player.Statistics["minutes"])
		if player.Played != "1" && minutes <= 0 {
			continue
		}

		row := gamelog.Row{
			gamelog.FieldSeasonYear:       season,
			gamelog.FieldPlayerID:         player.PersonID,
			gamelog.FieldPlayerName:       playerDisplayName(player),
			gamelog.FieldTeamID:           team.TeamID,
			gamelog.FieldTeamAbbreviation: team.TeamTricode,
			gamelog.FieldTeamName:         strings.TrimSpace(team.TeamCity + " " + team.TeamName),
			gamelog.FieldGameID:           game.GameID,
			gamelog.FieldGameDate:         gameDate,
			gamelog.FieldMatchup:          matchup,
			gamelog.FieldWL:               wl,
			gamelog.FieldMinutes:          minutes,
		}
		for _, field := range boxscoreStatFields {
			value, _ := gamelog.AsFloat(player.Statistics[field.source])
			row[field.target] = value
		}
		out = append(out, row)
	}
	return out
}

func playerDisplayName(player boxscorePlayer) string {
	full := strings.TrimSpace(player.FirstName + " " + player.FamilyName)
	if full != "" {
		return full
	}
	return strings.TrimSpace(player.Name)
}

var isoDurationRegex = regexp.MustCompile(`^PT(?:(\d+(?:\.\d+)?)H)?(?:(\d+(?:\.\d+)?)M)?(?:(\d+(?:\.\d+)?)S)?$`)

// ParseMinutes converts "MM:SS", ISO-8601 durations ("PT34M12.00S") and plain
// numbers to fractional minutes. Anything else is 0.
func ParseMinutes(raw any) float64 {
	if value, ok := raw.(float64); ok {
		return roundTo(value, 2)
	}
	text, ok := raw.(string)
	if !ok {
		value, _ := gamelog.AsFloat(raw)
		return roundTo(value, 2)
	}

	text = strings.ToUpper(strings.TrimSpace(text))
	if text == "" {
		return 0
	}

	if match := isoDurationRegex.FindStringSubmatch(text); match != nil && text != "PT" {
		hours := parseFloatOrZero(match[1])
		minutes := parseFloatOrZero(match[2])
		seconds := parseFloatOrZero(match[3])
		return roundTo(hours*60+minutes+seconds/60, 2)
	}

	if mins, secs, found := strings.Cut(text, ":"); found {
		m, errM := strconv.ParseFloat(mins, 64)
		s, errS := strconv.ParseFloat(secs, 64)
		if errM != nil || errS != nil {
			return 0
		}
		return roundTo(m+s/60, 2)
	}

	value, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(value) {
		return 0
	}
	return roundTo(value, 2)
}

func parseFloatOrZero(raw string) float64 {
	if raw == "" {
		return 0
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return value
}

func roundTo(value float64, digits int) float64 {
	scale := math.Pow(10, float64(digits))
	return math.Round(value*scale) / scale
}
