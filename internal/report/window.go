package report

import (
	"fmt"
	"time"

	"github.com/mtlprog/farmops/internal/domain"
)

// DateLayout is the calendar date format accepted by report callers.
const DateLayout = "2006-01-02"

const day = 24 * time.Hour

// InclusiveDays returns the number of calendar days covered by w:
// floor((to - from) / 24h) + 1. Reversed windows give zero or a negative count.
func InclusiveDays(w domain.Window) int {
	span := w.To.Sub(w.From)
	days := span / day
	if span < 0 && span%day != 0 {
		days--
	}
	return int(days) + 1
}

// PreviousWindow returns the window with the same inclusive day count that
// ends one second before w starts.
//
//	[2024-01-01T00:00:00, 2024-01-05T23:59:59] -> [2023-12-27T00:00:00, 2023-12-31T23:59:59]
func PreviousWindow(w domain.Window) domain.Window {
	days := InclusiveDays(w)
	return domain.Window{
		From: w.From.AddDate(0, 0, -days),
		To:   w.From.Add(-time.Second),
	}
}

// DayWindow expands a calendar date range to [startOfDay(from), endOfDay(to)] in UTC.
func DayWindow(from, to time.Time) domain.Window {
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(to.Year(), to.Month(), to.Day(), 23, 59, 59, 0, time.UTC)
	return domain.Window{From: start, To: end}
}

// ParseDayWindow parses two YYYY-MM-DD dates and expands them with DayWindow.
func ParseDayWindow(from, to string) (domain.Window, error) {
	fromDate, err := time.Parse(DateLayout, from)
	if err != nil {
		return domain.Window{}, fmt.Errorf("%w: from %q", domain.ErrInvalidDate, from)
	}
	toDate, err := time.Parse(DateLayout, to)
	if err != nil {
		return domain.Window{}, fmt.Errorf("%w: to %q", domain.ErrInvalidDate, to)
	}
	return DayWindow(fromDate, toDate), nil
}
