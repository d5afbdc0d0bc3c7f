package usecase

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/nba-gamelogs/internal/domain/gamelog"
	"github.com/riskibarqy/nba-gamelogs/internal/domain/upstream"
)

type ParamType string

const (
	ParamString     ParamType = "string"
	ParamInt        ParamType = "int"
	ParamBool       ParamType = "bool"
	ParamSeason     ParamType = "season"
	ParamSeasonType ParamType = "season_type"
	ParamDate       ParamType = "date"
)

// ParamSpec declares one request parameter. Rule is an optional validator
// tag checked after coercion.
type ParamSpec struct {
	Name     string
	Type     ParamType
	Required bool
	Default  any
	Rule     string
}

const leagueIDNBA = "00"

var requestSchemas = map[upstream.Kind][]ParamSpec{
	upstream.KindLeagueGameLogs: {
		{Name: "Season", Type: ParamSeason, Required: true},
		{Name: "SeasonType", Type: ParamSeasonType, Required: true},
		{Name: "LeagueID", Type: ParamString, Default: leagueIDNBA},
		{Name: "DateFrom", Type: ParamDate},
		{Name: "DateTo", Type: ParamDate},
	},
	upstream.KindPlayerGameLogs: {
		{Name: "PlayerID", Type: ParamInt, Required: true, Rule: "gt=0"},
		{Name: "Season", Type: ParamSeason, Required: true},
		{Name: "SeasonType", Type: ParamSeasonType, Required: true},
		{Name: "LeagueID", Type: ParamString, Default: leagueIDNBA},
	},
	upstream.KindRoster: {
		{Name: "Season", Type: ParamSeason, Required: true},
		{Name: "IsOnlyCurrentSeason", Type: ParamBool, Default: true},
		{Name: "LeagueID", Type: ParamString, Default: leagueIDNBA},
	},
	upstream.KindSchedule: {},
	upstream.KindBoxscore: {
		{Name: "GameID", Type: ParamString, Required: true, Rule: "len=10,numeric"},
	},
}

var (
	seasonRegex    = regexp.MustCompile(`^(\d{4})-(\d{2})$`)
	paramValidator = newParamValidator()
)

func newParamValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("season", func(fl validator.FieldLevel) bool {
		return validSeason(fl.Field().String())
	})
	return v
}

// validSeason accepts "2025-26" style labels where the suffix is the next year.
func validSeason(raw string) bool {
	match := seasonRegex.FindStringSubmatch(raw)
	if match == nil {
		return false
	}
	start, _ := strconv.Atoi(match[1])
	end, _ := strconv.Atoi(match[2])
	return (start+1)%100 == end
}

// BuildRequest checks values against the kind's schema, fills defaults and
// renders every parameter in wire form. Violations are permanent errors.
func BuildRequest(kind upstream.Kind, values map[string]any) (upstream.Request, error) {
	schema, ok := requestSchemas[kind]
	if !ok {
		return upstream.Request{}, permanentf("unknown request kind %q", kind)
	}

	known := make(map[string]struct{}, len(schema))
	params := make(map[string]string, len(schema))
	for _, spec := range schema {
		known[spec.Name] = struct{}{}

		raw, present := values[spec.Name]
		if !present || isBlank(raw) {
			if spec.Required {
				return upstream.Request{}, permanentf("%s: parameter %s is required", kind, spec.Name)
			}
			if spec.Default == nil {
				continue
			}
			raw = spec.Default
		}

		rendered, err := coerceParam(spec, raw)
		if err != nil {
			return upstream.Request{}, permanentf("%s: parameter %s: %v", kind, spec.Name, err)
		}
		params[spec.Name] = rendered
	}

	for name := range values {
		if _, ok := known[name]; !ok {
			return upstream.Request{}, permanentf("%s: unknown parameter %s", kind, name)
		}
	}

	return upstream.Request{Kind: kind, Params: params}, nil
}

func coerceParam(spec ParamSpec, raw any) (string, error) {
	switch spec.Type {
	case ParamInt:
		value, err := toInt64(raw)
		if err != nil {
			return "", err
		}
		if err := checkRule(value, spec.Rule); err != nil {
			return "", err
		}
		return strconv.FormatInt(value, 10), nil
	case ParamBool:
		value, err := toBool(raw)
		if err != nil {
			return "", err
		}
		if value {
			return "1", nil
		}
		return "0", nil
	case ParamSeason:
		value := strings.TrimSpace(fmt.Sprint(raw))
		if err := checkRule(value, "season"); err != nil {
			return "", fmt.Errorf("season %q must look like 2025-26", value)
		}
		return value, nil
	case ParamSeasonType:
		if typed, ok := raw.(gamelog.SeasonType); ok {
			raw = string(typed)
		}
		value, err := gamelog.ParseSeasonType(fmt.Sprint(raw))
		if err != nil {
			return "", err
		}
		return string(value), nil
	case ParamDate:
		return coerceDate(raw)
	default:
		value := strings.TrimSpace(fmt.Sprint(raw))
		if err := checkRule(value, spec.Rule); err != nil {
			return "", err
		}
		return value, nil
	}
}

// coerceDate accepts YYYY-MM-DD or time.Time and renders MM/DD/YYYY.
func coerceDate(raw any) (string, error) {
	if typed, ok := raw.(time.Time); ok {
		return typed.Format("01/02/2006"), nil
	}
	value := strings.TrimSpace(fmt.Sprint(raw))
	if err := checkRule(value, "datetime=2006-01-02"); err != nil {
		return "", fmt.Errorf("date %q must be YYYY-MM-DD", value)
	}
	parsed, _ := time.Parse(time.DateOnly, value)
	return parsed.Format("01/02/2006"), nil
}

func checkRule(value any, rule string) error {
	if rule == "" {
		return nil
	}
	return paramValidator.Var(value, rule)
}

func toInt64(raw any) (int64, error) {
	switch typed := raw.(type) {
	case int:
		return int64(typed), nil
	case int64:
		return typed, nil
	case float64:
		if typed != float64(int64(typed)) {
			return 0, fmt.Errorf("%v is not an integer", typed)
		}
		return int64(typed), nil
	case string:
		return strconv.ParseInt(strings.TrimSpace(typed), 10, 64)
	default:
		return 0, fmt.Errorf("unsupported integer value %T", raw)
	}
}

func toBool(raw any) (bool, error) {
	switch typed := raw.(type) {
	case bool:
		return typed, nil
	case int:
		return typed != 0, nil
	case string:
		return strconv.ParseBool(strings.TrimSpace(typed))
	default:
		return false, fmt.Errorf("unsupported boolean value %T", raw)
	}
}

func isBlank(raw any) bool {
	if raw == nil {
		return true
	}
	if s, ok := raw.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}
