// Package period resolves named period selectors into concrete inclusive
// date ranges. Presets always resolve against a caller-supplied clock.
package period

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/castlemilk/bizpulse/backend/internal/apperr"
)

// Period is an inclusive calendar-date range. It is a value type; derive a
// new one instead of mutating.
type Period struct {
	Start time.Time
	End   time.Time
}

// Date truncates t to a calendar date in UTC.
func Date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// New builds a Period from two dates, failing when start is after end.
func New(start, end time.Time) (Period, error) {
	start, end = Date(start), Date(end)
	if start.After(end) {
		return Period{}, &apperr.InvalidRangeError{
			Start:  start,
			End:    end,
			Reason: "start date is after end date",
		}
	}
	return Period{Start: start, End: end}, nil
}

// Contains reports whether t falls on a date inside the period.
func (p Period) Contains(t time.Time) bool {
	d := Date(t)
	return !d.Before(p.Start) && !d.After(p.End)
}

// Days returns the number of calendar days covered, both ends included.
func (p Period) Days() int {
	return p.span() + 1
}

func (p Period) span() int {
	return int(p.End.Sub(p.Start).Hours() / 24)
}

// Months returns max(1, ceil((Days()-1)/30.44)). It divides end-start, one
// less than the inclusive day count, so a 31-day month counts as one month
// where ceil(Days()/30.44) would give two.
func (p Period) Months() int {
	m := int(math.Ceil(float64(p.span()) / 30.44))
	if m < 1 {
		return 1
	}
	return m
}

// MonthAligned reports whether the period starts on the first of a month and
// ends on the last day of a month.
func (p Period) MonthAligned() bool {
	return p.Start.Day() == 1 && p.End.AddDate(0, 0, 1).Day() == 1
}

// CalendarMonths returns the number of calendar months touched by the period.
func (p Period) CalendarMonths() int {
	return (p.End.Year()-p.Start.Year())*12 + int(p.End.Month()) - int(p.Start.Month()) + 1
}

// PreviousComparable returns the period of the same length immediately
// before p. Month-aligned periods shift by whole calendar months.
func (p Period) PreviousComparable() Period {
	end := p.Start.AddDate(0, 0, -1)
	if p.MonthAligned() {
		return Period{Start: p.Start.AddDate(0, -p.CalendarMonths(), 0), End: end}
	}
	return Period{Start: end.AddDate(0, 0, -p.span()), End: end}
}

// SamePeriodLastYear returns the same calendar range one year earlier.
func (p Period) SamePeriodLastYear() Period {
	start := shiftYear(p.Start)
	if p.MonthAligned() {
		end := monthStart(shiftYear(p.End)).AddDate(0, 1, -1)
		return Period{Start: start, End: end}
	}
	return Period{Start: start, End: shiftYear(p.End)}
}

// String renders the period as "2006-01-02..2006-01-02".
func (p Period) String() string {
	return p.Start.Format(time.DateOnly) + ".." + p.End.Format(time.DateOnly)
}

// IsZero reports whether the period was never set.
func (p Period) IsZero() bool {
	return p.Start.IsZero() && p.End.IsZero()
}

type periodJSON struct {
	Start string `json:"start_date"`
	End   string `json:"end_date"`
}

// MarshalJSON encodes the period with date-only strings.
func (p Period) MarshalJSON() ([]byte, error) {
	return json.Marshal(periodJSON{
		Start: p.Start.Format(time.DateOnly),
		End:   p.End.Format(time.DateOnly),
	})
}

// UnmarshalJSON decodes date-only strings and validates the range.
func (p *Period) UnmarshalJSON(data []byte) error {
	var raw periodJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	start, err := time.Parse(time.DateOnly, strings.TrimSpace(raw.Start))
	if err != nil {
		return fmt.Errorf("invalid start_date: %w", err)
	}
	end, err := time.Parse(time.DateOnly, strings.TrimSpace(raw.End))
	if err != nil {
		return fmt.Errorf("invalid end_date: %w", err)
	}
	parsed, err := New(start, end)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// shiftYear moves a date back one year, clamping Feb 29 to Feb 28.
func shiftYear(t time.Time) time.Time {
	if t.Month() == time.February && t.Day() == 29 {
		return time.Date(t.Year()-1, time.February, 28, 0, 0, 0, 0, time.UTC)
	}
	return time.Date(t.Year()-1, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
