package gamelog

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

type SeasonType string

const (
	RegularSeason SeasonType = "Regular Season"
	Playoffs      SeasonType = "Playoffs"
)

// SeasonTypes is the publish order. The first entry is the primary type.
var SeasonTypes = []SeasonType{RegularSeason, Playoffs}

var whitespaceRegex = regexp.MustCompile(`\s+`)

func (t SeasonType) Slug() string {
	return whitespaceRegex.ReplaceAllString(strings.ToLower(strings.TrimSpace(string(t))), "-")
}

// IsPrimary reports whether the type is coverage gated.
func (t SeasonType) IsPrimary() bool {
	return t == RegularSeason
}

// GameIDPrefix is the stage prefix the league uses in game ids.
func (t SeasonType) GameIDPrefix() string {
	if t == Playoffs {
		return "004"
	}
	return "002"
}

func ParseSeasonType(raw string) (SeasonType, error) {
	value := strings.TrimSpace(raw)
	for _, item := range SeasonTypes {
		if strings.EqualFold(value, string(item)) || strings.EqualFold(value, item.Slug()) {
			return item, nil
		}
	}
	return "", fmt.Errorf("unknown season type %q", raw)
}

const (
	FieldSeasonYear       = "SEASON_YEAR"
	FieldPlayerID         = "PLAYER_ID"
	FieldPlayerName       = "PLAYER_NAME"
	FieldTeamID           = "TEAM_ID"
	FieldTeamAbbreviation = "TEAM_ABBREVIATION"
	FieldTeamName         = "TEAM_NAME"
	FieldGameID           = "GAME_ID"
	FieldGameDate         = "GAME_DATE"
	FieldMatchup          = "MATCHUP"
	FieldWL               = "WL"
	FieldMinutes          = "MIN"
	FieldIsPlaceholder    = "IS_PLACEHOLDER"

	PlaceholderGamePrefix = "NO_GAME_"
	PlaceholderMatchup    = "NO GAMES YET"
)

// DefaultStatFields is used to zero placeholder rows when a dataset has no
// genuine rows to infer numeric fields from.
var DefaultStatFields = []string{
	"AST", "BLK", "DREB", "FG3A", "FG3M", "FG3_PCT", "FGA", "FGM", "FG_PCT",
	"FTA", "FTM", "FT_PCT", "MIN", "OREB", "PF", "PLUS_MINUS", "PTS", "REB",
	"STL", "TOV",
}

type RosterEntry struct {
	PlayerID int64  `json:"player_id"`
	Name     string `json:"name"`
	TeamID   *int64 `json:"team_id"`
	TeamCode string `json:"team"`
	Active   bool   `json:"is_active"`
}

// Dataset is one published (season, season type) file.
type Dataset struct {
	Season     string     `json:"season"`
	SeasonType SeasonType `json:"season_type"`
	Count      int        `json:"count"`
	StatFields []string   `json:"stat_fields"`
	Rows       []Row      `json:"rows"`
}

type PlayersFile struct {
	Season  string        `json:"season"`
	Count   int           `json:"count"`
	Players []RosterEntry `json:"players"`
}

// SummaryFile holds per-player season totals derived from a dataset.
type SummaryFile struct {
	Season     string     `json:"season"`
	SeasonType SeasonType `json:"season_type"`
	Count      int        `json:"count"`
	GameRows   int        `json:"game_rows"`
	Rows       []Row      `json:"rows"`
}

type Manifest struct {
	GeneratedAt   string        `json:"generated_at"`
	DefaultSeason string        `json:"default_season"`
	Seasons       []string      `json:"seasons"`
	SeasonTypes   []SeasonType  `json:"season_types"`
	Files         ManifestFiles `json:"files"`
}

type ManifestFiles struct {
	Players   map[string]string            `json:"players"`
	Gamelogs  map[string]map[string]string `json:"gamelogs"`
	Summaries map[string]map[string]string `json:"summaries,omitempty"`
}

const ManifestPath = "manifest.json"

func PlayersPath(season string) string {
	return path.Join("players", season+".json")
}

func DatasetPath(season string, seasonType SeasonType) string {
	return path.Join("gamelogs", season, seasonType.Slug()+".json")
}

func SummaryPath(season string, seasonType SeasonType) string {
	return path.Join("summaries", season, seasonType.Slug()+".json")
}
