package usecase

import (
	"bytes"
	"sort"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/nba-gamelogs/internal/domain/gamelog"
)

// ResultSetHint selects a result set by name (first set when empty or
// absent) and supplies values for canonical fields the payload omits.
type ResultSetHint struct {
	Name     string
	Defaults map[string]any
}

// identifierAliases lists spellings some endpoints use for canonical ids.
var identifierAliases = map[string][]string{
	gamelog.FieldPlayerID: {"Player_ID", "player_id", "playerId", "PERSON_ID", "person_id", "personId"},
	gamelog.FieldGameID:   {"Game_ID", "game_id", "gameId"},
	gamelog.FieldTeamID:   {"Team_ID", "team_id", "teamId"},
	gamelog.FieldGameDate: {"Game_Date", "game_date", "gameDate"},
}

type resultSet struct {
	Name    string  `json:"name"`
	Headers []any   `json:"headers"`
	RowSet  [][]any `json:"rowSet"`
}

// resultSetList accepts both a list of result sets and a single object.
type resultSetList []resultSet

func (l *resultSetList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*l = nil
		return nil
	}
	if trimmed[0] == '[' {
		var many []resultSet
		if err := sonic.Unmarshal(trimmed, &many); err != nil {
			return err
		}
		*l = many
		return nil
	}
	var one resultSet
	if err := sonic.Unmarshal(trimmed, &one); err != nil {
		return err
	}
	*l = resultSetList{one}
	return nil
}

type resultSetEnvelope struct {
	ResultSets resultSetList `json:"resultSets"`
	ResultSet  resultSetList `json:"resultSet"`
}

// NormalizeResultSet zips a tabular {headers, rowSet} payload into rows.
func NormalizeResultSet(body []byte, hint ResultSetHint) ([]gamelog.Row, error) {
	var envelope resultSetEnvelope
	if err := sonic.Unmarshal(body, &envelope); err != nil {
		return nil, permanentf("decode result set payload: %v", err)
	}

	sets := envelope.ResultSets
	if len(sets) == 0 {
		sets = envelope.ResultSet
	}
	if len(sets) == 0 {
		return nil, permanentf("payload has no result sets")
	}

	set := sets[0]
	if hint.Name != "" {
		for _, candidate := range sets {
			if strings.EqualFold(candidate.Name, hint.Name) {
				set = candidate
				break
			}
		}
	}

	headers := make([]string, 0, len(set.Headers))
	for _, raw := range set.Headers {
		name, ok := raw.(string)
		if !ok {
			return nil, permanentf("result set %q has non-tabular headers", set.Name)
		}
		headers = append(headers, strings.TrimSpace(name))
	}
	if len(headers) == 0 {
		if len(set.RowSet) == 0 {
			return []gamelog.Row{}, nil
		}
		return nil, permanentf("result set %q has rows but no headers", set.Name)
	}

	out := make([]gamelog.Row, 0, len(set.RowSet))
	for _, values := range set.RowSet {
		row := make(gamelog.Row, len(headers)+len(hint.Defaults))
		for i, header := range headers {
			if i < len(values) {
				row[header] = values[i]
			} else {
				row[header] = nil
			}
		}
		canonicalizeIdentifiers(row)
		for field, value := range hint.Defaults {
			if current, ok := row[field]; !ok || current == nil {
				row[field] = value
			}
		}
		out = append(out, row)
	}
	return out, nil
}

func canonicalizeIdentifiers(row gamelog.Row) {
	for canonical, aliases := range identifierAliases {
		if current, ok := row[canonical]; ok && current != nil {
			continue
		}
		for _, alias := range aliases {
			if value, ok := row[alias]; ok && value != nil {
				row[canonical] = value
				break
			}
		}
	}
}

var statFieldDenylist = map[string]struct{}{
	gamelog.FieldPlayerID:      {},
	gamelog.FieldTeamID:        {},
	gamelog.FieldGameID:        {},
	gamelog.FieldIsPlaceholder: {},
	"GAME_DATE_EST":            {},
	"personId":                 {},
	"teamId":                   {},
	"AVAILABLE_FLAG":           {},
	"TEAM_COUNT":               {},
}

// InferStatFields lists fields that parse as a number in at least one genuine
// row, minus identifiers and rank columns, sorted.
func InferStatFields(rows []gamelog.Row) []string {
	numeric := make(map[string]struct{})
	for _, row := range rows {
		if row.IsPlaceholder() {
			continue
		}
		for field, value := range row {
			if _, seen := numeric[field]; seen {
				continue
			}
			if _, denied := statFieldDenylist[field]; denied || strings.HasSuffix(field, "_RANK") {
				continue
			}
			if _, ok := gamelog.AsFloat(value); ok {
				numeric[field] = struct{}{}
			}
		}
	}

	out := make([]string, 0, len(numeric))
	for field := range numeric {
		out = append(out, field)
	}
	sort.Strings(out)
	return out
}
