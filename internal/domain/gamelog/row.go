package gamelog

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Row is one canonical stat row keyed by provider field names. Field naming
// is the downstream contract, so rows stay as maps instead of structs.
type Row map[string]any

func (r Row) PlayerID() int64 {
	return r.Int64(FieldPlayerID)
}

func (r Row) GameID() string {
	return r.String(FieldGameID)
}

// HasIdentity reports whether the row carries both halves of the
// (player, game) key.
func (r Row) HasIdentity() bool {
	return r.PlayerID() > 0 && r.GameID() != ""
}

var gameDateLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02",
	"Jan 02, 2006",
	"01/02/2006 15:04:05",
	"01/02/2006",
}

// GameDate returns the row date as YYYY-MM-DD, or the raw value when it
// matches no known layout.
func (r Row) GameDate() string {
	raw := r.String(FieldGameDate)
	if raw == "" {
		return ""
	}
	return NormalizeDate(raw)
}

func NormalizeDate(raw string) string {
	raw = strings.TrimSpace(raw)
	for _, layout := range gameDateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.Format(time.DateOnly)
		}
	}
	return raw
}

func (r Row) IsPlaceholder() bool {
	if r.Int64(FieldIsPlaceholder) == 1 {
		return true
	}
	if strings.HasPrefix(r.GameID(), PlaceholderGamePrefix) {
		return true
	}
	return strings.Contains(strings.ToUpper(r.String(FieldMatchup)), PlaceholderMatchup)
}

func (r Row) Clone() Row {
	out := make(Row, len(r))
	for key, value := range r {
		out[key] = value
	}
	return out
}

func (r Row) String(field string) string {
	switch typed := r[field].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(typed)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case int:
		return strconv.Itoa(typed)
	case int64:
		return strconv.FormatInt(typed, 10)
	default:
		return ""
	}
}

func (r Row) Int64(field string) int64 {
	value, ok := AsFloat(r[field])
	if !ok {
		return 0
	}
	return int64(value)
}

func (r Row) Float(field string) float64 {
	value, _ := AsFloat(r[field])
	return value
}

// AsFloat parses numbers and numeric strings. NaN and booleans are rejected.
func AsFloat(value any) (float64, bool) {
	var out float64
	switch typed := value.(type) {
	case float64:
		out = typed
	case float32:
		out = float64(typed)
	case int:
		out = float64(typed)
	case int64:
		out = float64(typed)
	case int32:
		out = float64(typed)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		if err != nil {
			return 0, false
		}
		out = parsed
	default:
		return 0, false
	}
	if math.IsNaN(out) {
		return 0, false
	}
	return out, true
}

// NewPlaceholderRow stands in for an active player with no games so far.
func NewPlaceholderRow(entry RosterEntry, season string, statFields []string) Row {
	if len(statFields) == 0 {
		statFields = DefaultStatFields
	}

	row := make(Row, len(statFields)+10)
	for _, field := range statFields {
		row[field] = 0
	}
	var teamID int64
	if entry.TeamID != nil {
		teamID = *entry.TeamID
	}
	row[FieldSeasonYear] = season
	row[FieldPlayerID] = entry.PlayerID
	row[FieldPlayerName] = entry.Name
	row[FieldTeamID] = teamID
	row[FieldTeamAbbreviation] = entry.TeamCode
	row[FieldGameID] = PlaceholderGamePrefix + strconv.FormatInt(entry.PlayerID, 10)
	row[FieldGameDate] = ""
	row[FieldMatchup] = PlaceholderMatchup
	row[FieldWL] = ""
	row[FieldIsPlaceholder] = 1
	return row
}
