package period

import (
	"strings"
	"time"

	"github.com/castlemilk/bizpulse/backend/internal/apperr"
)

// Selector names a period preset.
type Selector string

const (
	ThisMonth    Selector = "this_month"
	LastMonth    Selector = "last_month"
	Last3Months  Selector = "last_3_months"
	Last6Months  Selector = "last_6_months"
	Last12Months Selector = "last_12_months"
	ThisQuarter  Selector = "this_quarter"
	YearToDate   Selector = "ytd"
	Custom       Selector = "custom"
)

// Presets lists the selectors offered to users, in display order.
var Presets = []Selector{ThisMonth, LastMonth, Last3Months, Last6Months, Last12Months, ThisQuarter, YearToDate}

var labels = map[Selector]string{
	ThisMonth:    "This month",
	LastMonth:    "Last month",
	Last3Months:  "Last 3 months",
	Last6Months:  "Last 6 months",
	Last12Months: "Last 12 months",
	ThisQuarter:  "This quarter",
	YearToDate:   "YTD",
	Custom:       "Custom",
}

// Label returns the human-readable name of the selector.
func (s Selector) Label() string {
	if l, ok := labels[s]; ok {
		return l
	}
	return string(s)
}

// ParseSelector accepts either the canonical key ("last_3_months") or the
// display label ("Last 3 months"), case-insensitively.
func ParseSelector(raw string) (Selector, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.ReplaceAll(key, " ", "_")
	key = strings.ReplaceAll(key, "-", "_")
	if key == "year_to_date" {
		key = string(YearToDate)
	}
	sel := Selector(key)
	if _, ok := labels[sel]; !ok {
		return "", &apperr.InvalidRangeError{Selector: raw, Reason: "unknown period selector"}
	}
	return sel, nil
}

// Resolve turns a selector into a concrete period relative to now. custom is
// only consulted for the Custom selector.
func Resolve(sel Selector, now time.Time, custom *Period) (Period, error) {
	today := Date(now)
	thisMonth := monthStart(today)

	switch sel {
	case ThisMonth:
		return Period{Start: thisMonth, End: thisMonth.AddDate(0, 1, -1)}, nil
	case LastMonth:
		start := thisMonth.AddDate(0, -1, 0)
		return Period{Start: start, End: thisMonth.AddDate(0, 0, -1)}, nil
	case Last3Months:
		return trailingMonths(thisMonth, 3), nil
	case Last6Months:
		return trailingMonths(thisMonth, 6), nil
	case Last12Months:
		return trailingMonths(thisMonth, 12), nil
	case ThisQuarter:
		qStart := time.Date(today.Year(), time.Month((int(today.Month())-1)/3*3+1), 1, 0, 0, 0, 0, time.UTC)
		return Period{Start: qStart, End: qStart.AddDate(0, 3, -1)}, nil
	case YearToDate:
		return Period{Start: time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC), End: today}, nil
	case Custom:
		if custom == nil || custom.IsZero() {
			return Period{}, &apperr.InvalidRangeError{Selector: string(sel), Reason: "custom period requires start and end dates"}
		}
		return New(custom.Start, custom.End)
	default:
		return Period{}, &apperr.InvalidRangeError{Selector: string(sel), Reason: "unknown period selector"}
	}
}

// trailingMonths covers n whole calendar months ending with the month that
// starts at current.
func trailingMonths(current time.Time, n int) Period {
	return Period{Start: current.AddDate(0, -(n - 1), 0), End: current.AddDate(0, 1, -1)}
}
