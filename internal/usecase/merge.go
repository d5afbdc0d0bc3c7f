package usecase

import (
	"github.com/riskibarqy/nba-gamelogs/internal/domain/gamelog"
)

// MergeDay replaces every existing row dated targetDate with newDay, dedupes
// and re-sorts. Existing rows for other dates are passed through untouched.
func MergeDay(existing, newDay []gamelog.Row, targetDate string) []gamelog.Row {
	targetDate = gamelog.NormalizeDate(targetDate)

	out := make([]gamelog.Row, 0, len(existing)+len(newDay))
	for _, row := range existing {
		if row.GameDate() == targetDate {
			continue
		}
		out = append(out, row)
	}
	out = append(out, newDay...)

	out = Dedupe(out)
	SortRows(out)
	return out
}

// DayRows is the fetch result for one day of an incremental window.
type DayRows struct {
	Date string
	Rows []gamelog.Row
	Err  error
}

// MergeWindow applies each successful day in order. A failed day leaves the
// rows for that date as they were.
func MergeWindow(existing []gamelog.Row, days []DayRows) ([]gamelog.Row, int) {
	out := existing
	applied := 0
	for _, day := range days {
		if day.Err != nil {
			continue
		}
		out = MergeDay(out, day.Rows, day.Date)
		applied++
	}
	return out, applied
}
