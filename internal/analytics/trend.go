package analytics

import (
	"fmt"
	"time"

	"github.com/castlemilk/bizpulse/backend/internal/ledger"
	"github.com/castlemilk/bizpulse/backend/internal/period"
	"github.com/shopspring/decimal"
)

// Granularity selects the bucket width of a time series.
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

const (
	// SmoothingAlpha weights the newest observation in the forecast.
	SmoothingAlpha = 0.3
	// ForecastHorizonDays is the projection window of the forecast.
	ForecastHorizonDays = 30
	// HistoryWeeks is the weekly history the forecast is smoothed over.
	HistoryWeeks = 12
	// MaxMovingAverageWindow caps the trailing moving-average window.
	MaxMovingAverageWindow = 7
)

// ParseGranularity maps a request value to a Granularity, defaulting to
// month when empty.
func ParseGranularity(raw string) (Granularity, error) {
	switch Granularity(raw) {
	case "":
		return GranularityMonth, nil
	case GranularityDay, GranularityWeek, GranularityMonth:
		return Granularity(raw), nil
	}
	return "", fmt.Errorf("unknown granularity %q", raw)
}

// Point is one bucket of a time series.
type Point struct {
	Start time.Time `json:"start"`
	Label string    `json:"label"`
	Value float64   `json:"value"`
}

// BucketStart returns the first day of the bucket holding t. Weeks are ISO
// weeks starting on Monday.
func BucketStart(t time.Time, g Granularity) time.Time {
	d := period.Date(t)
	switch g {
	case GranularityDay:
		return d
	case GranularityWeek:
		offset := (int(d.Weekday()) + 6) % 7
		return d.AddDate(0, 0, -offset)
	default:
		return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
}

func nextBucket(start time.Time, g Granularity) time.Time {
	switch g {
	case GranularityDay:
		return start.AddDate(0, 0, 1)
	case GranularityWeek:
		return start.AddDate(0, 0, 7)
	default:
		return start.AddDate(0, 1, 0)
	}
}

func bucketLabel(start time.Time, g Granularity) string {
	switch g {
	case GranularityDay:
		return start.Format(time.DateOnly)
	case GranularityWeek:
		year, week := start.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	default:
		return start.Format("2006-01")
	}
}

// Bucketize groups entries dated inside p into a dense series covering the
// whole period. Empty buckets are zero.
func Bucketize[T ledger.Entry](entries []T, p period.Period, g Granularity) []Point {
	return bucketRange(entries, BucketStart(p.Start, g), p, g)
}

func bucketRange[T ledger.Entry](entries []T, first time.Time, p period.Period, g Granularity) []Point {
	sums := make(map[time.Time]decimal.Decimal)
	for _, e := range entries {
		r := e.Core()
		if !p.Contains(r.Date) {
			continue
		}
		key := BucketStart(r.Date, g)
		sums[key] = sums[key].Add(r.MustAmountBase())
	}

	var points []Point
	for start := first; !start.After(p.End); start = nextBucket(start, g) {
		points = append(points, Point{
			Start: start,
			Label: bucketLabel(start, g),
			Value: sums[start].InexactFloat64(),
		})
	}
	return points
}

// MovingAverage returns the trailing mean of values over a window of
// min(7, len(values)). Leading points average what is available.
func MovingAverage(values []float64) []float64 {
	n := len(values)
	if n == 0 {
		return nil
	}
	window := MaxMovingAverageWindow
	if n < window {
		window = n
	}

	out := make([]float64, n)
	for i := range values {
		lo := i - window + 1
		if lo < 0 {
			lo = 0
		}
		var sum float64
		for _, v := range values[lo : i+1] {
			sum += v
		}
		out[i] = sum / float64(i+1-lo)
	}
	return out
}

// ExponentialForecast smooths values with S0 = v0, St = a*vt + (1-a)*St-1
// and projects the last smoothed weekly value over a 30-day horizon. It
// keeps no state between calls. An empty series forecasts zero.
func ExponentialForecast(values []float64) (smoothed, forecast float64) {
	if len(values) == 0 {
		return 0, 0
	}
	s := values[0]
	for _, v := range values[1:] {
		s = SmoothingAlpha*v + (1-SmoothingAlpha)*s
	}
	return s, s * (float64(ForecastHorizonDays) / 7)
}

// ForecastResult is the trend series of a period plus its projection.
type ForecastResult struct {
	Granularity          Granularity `json:"granularity"`
	Series               []Point     `json:"bucketed_series"`
	MovingAverage        []float64   `json:"moving_average_series"`
	WeeklyHistory        []Point     `json:"weekly_history"`
	LastSmoothedValue    float64     `json:"last_smoothed_value"`
	ForecastValue        float64     `json:"forecast_value"`
	HorizonDays          int         `json:"horizon"`
	SmoothingAlpha       float64     `json:"smoothing_alpha"`
	HistoryWeeksWithData int         `json:"history_weeks_with_data"`
}

// Forecast buckets entries over p and projects the next 30 days from the 12
// ISO weeks ending with the week that holds HistoryEnd(p, today). entries
// may include history before p; anything after that day is ignored.
func Forecast[T ledger.Entry](entries []T, p period.Period, g Granularity, today time.Time) ForecastResult {
	series := Bucketize(entries, p, g)
	values := make([]float64, len(series))
	for i, pt := range series {
		values[i] = pt.Value
	}

	historyEnd := HistoryEnd(p, today)
	historyStart := HistoryStart(p, today)
	history := bucketRange(entries, historyStart, period.Period{Start: historyStart, End: historyEnd}, GranularityWeek)

	weekly := make([]float64, len(history))
	withData := 0
	for i, pt := range history {
		weekly[i] = pt.Value
		if pt.Value != 0 {
			withData++
		}
	}

	result := ForecastResult{
		Granularity:          g,
		Series:               series,
		MovingAverage:        MovingAverage(values),
		WeeklyHistory:        history,
		HorizonDays:          ForecastHorizonDays,
		SmoothingAlpha:       SmoothingAlpha,
		HistoryWeeksWithData: withData,
	}
	if withData > 0 {
		result.LastSmoothedValue, result.ForecastValue = ExponentialForecast(weekly)
	}
	return result
}

// HistoryEnd is the last day the forecast reads: p.End, or today when the
// period runs past it. A zero today means p.End.
func HistoryEnd(p period.Period, today time.Time) time.Time {
	if !today.IsZero() && today.Before(p.End) {
		return period.Date(today)
	}
	return p.End
}

// HistoryStart is the Monday of the first of the HistoryWeeks weeks that end
// with the week holding HistoryEnd(p, today).
func HistoryStart(p period.Period, today time.Time) time.Time {
	return BucketStart(HistoryEnd(p, today), GranularityWeek).AddDate(0, 0, -7*(HistoryWeeks-1))
}
