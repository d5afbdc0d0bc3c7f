package upstream

import (
	"sort"

	crerr "github.com/cockroachdb/errors"
)

// Kind names one upstream endpoint.
type Kind string

const (
	KindLeagueGameLogs Kind = "league_gamelogs"
	KindPlayerGameLogs Kind = "player_gamelogs"
	KindRoster         Kind = "roster"
	KindSchedule       Kind = "schedule"
	KindBoxscore       Kind = "boxscore"
)

// Request is a fully coerced request: every parameter is already rendered in
// the wire form the provider expects.
type Request struct {
	Kind   Kind
	Params map[string]string
}

func (r Request) Param(name string) string {
	return r.Params[name]
}

// ParamNames returns parameter names in a stable order.
func (r Request) ParamNames() []string {
	out := make([]string, 0, len(r.Params))
	for name := range r.Params {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

var (
	ErrTransient = crerr.New("transient provider failure")
	ErrPermanent = crerr.New("permanent provider failure")
)

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	return crerr.Is(err, ErrTransient)
}
