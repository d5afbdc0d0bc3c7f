package usecase

import (
	"sort"

	"github.com/riskibarqy/nba-gamelogs/internal/domain/gamelog"
)

const (
	aggregateTeamID   = 0
	aggregateTeamCode = "TOT"
	aggregateTeamName = "Traded Players"
)

// DerivedField is recomputed from summed counting fields.
type DerivedField struct {
	Field   string
	Compute func(totals map[string]float64) float64
}

// AggregateSpec describes how multiple rows of one entity collapse.
// Weighted maps a rate field to the volume field it is normalized against.
type AggregateSpec struct {
	EntityField string
	Counts      []string
	Weighted    map[string]string
	Derived     []DerivedField
}

func ratio(numerator, denominator string) func(map[string]float64) float64 {
	return func(totals map[string]float64) float64 {
		if totals[denominator] <= 0 {
			return 0
		}
		return totals[numerator] / totals[denominator]
	}
}

// PlaytypeAggregateSpec merges possession based play type rows.
var PlaytypeAggregateSpec = AggregateSpec{
	EntityField: gamelog.FieldPlayerID,
	Counts:      []string{"GP", "POSS", "PTS", "FGM", "FGA", "FGMX"},
	Weighted: map[string]string{
		"POSS_PCT":         "POSS",
		"FT_POSS_PCT":      "POSS",
		"TOV_POSS_PCT":     "POSS",
		"SF_POSS_PCT":      "POSS",
		"PLUSONE_POSS_PCT": "POSS",
		"SCORE_POSS_PCT":   "POSS",
		"PERCENTILE":       "POSS",
	},
	Derived: []DerivedField{
		{Field: "PPP", Compute: ratio("PTS", "POSS")},
		{Field: "FG_PCT", Compute: ratio("FGM", "FGA")},
		{Field: "EFG_PCT", Compute: func(t map[string]float64) float64 {
			if t["FGA"] <= 0 {
				return 0
			}
			return (t["FGM"] + 0.5*t["FGMX"]) / t["FGA"]
		}},
	},
}

// SeasonTotalsAggregateSpec merges per-team season totals of one player.
var SeasonTotalsAggregateSpec = AggregateSpec{
	EntityField: gamelog.FieldPlayerID,
	Counts: []string{
		"GP", "W", "L", "MIN", "PTS", "FGM", "FGA", "FG3M", "FG3A", "FTM", "FTA",
		"OREB", "DREB", "REB", "AST", "STL", "BLK", "TOV", "PF", "PLUS_MINUS",
	},
	Derived: []DerivedField{
		{Field: "FG_PCT", Compute: ratio("FGM", "FGA")},
		{Field: "FG3_PCT", Compute: ratio("FG3M", "FG3A")},
		{Field: "FT_PCT", Compute: ratio("FTM", "FTA")},
	},
}

// AggregateTraded collapses entities with more than one row into a single
// row under the aggregate team identity. Counting fields are summed, rate
// fields are weight averaged and derived fields are recomputed. Entities with
// one row and rows without an entity id pass through. Output keeps the order
// in which entities first appear, passthrough rows last.
func AggregateTraded(rows []gamelog.Row, spec AggregateSpec) []gamelog.Row {
	entityField := spec.EntityField
	if entityField == "" {
		entityField = gamelog.FieldPlayerID
	}

	order := make([]int64, 0, len(rows))
	groups := make(map[int64][]gamelog.Row, len(rows))
	passthrough := make([]gamelog.Row, 0)
	for _, row := range rows {
		id := row.Int64(entityField)
		if id <= 0 {
			passthrough = append(passthrough, row)
			continue
		}
		if _, ok := groups[id]; !ok {
			order = append(order, id)
		}
		groups[id] = append(groups[id], row)
	}

	out := make([]gamelog.Row, 0, len(order)+len(passthrough))
	for _, id := range order {
		group := groups[id]
		if len(group) == 1 {
			out = append(out, group[0])
			continue
		}
		out = append(out, mergeGroup(group, spec))
	}
	return append(out, passthrough...)
}

func mergeGroup(group []gamelog.Row, spec AggregateSpec) gamelog.Row {
	merged := group[0].Clone()
	merged[gamelog.FieldTeamID] = aggregateTeamID
	merged[gamelog.FieldTeamAbbreviation] = aggregateTeamCode
	merged[gamelog.FieldTeamName] = aggregateTeamName

	totals := make(map[string]float64, len(spec.Counts))
	for _, field := range spec.Counts {
		for _, row := range group {
			totals[field] += row.Float(field)
		}
		merged[field] = roundTo(totals[field], 3)
	}

	weightedFields := make([]string, 0, len(spec.Weighted))
	for field := range spec.Weighted {
		weightedFields = append(weightedFields, field)
	}
	sort.Strings(weightedFields)
	for _, field := range weightedFields {
		weightField := spec.Weighted[field]
		var weighted, weights float64
		for _, row := range group {
			w := row.Float(weightField)
			weighted += row.Float(field) * w
			weights += w
		}
		value := 0.0
		if weights > 0 {
			value = weighted / weights
		}
		merged[field] = roundTo(value, 6)
	}

	for _, derived := range spec.Derived {
		merged[derived.Field] = roundTo(derived.Compute(totals), 6)
	}
	return merged
}
