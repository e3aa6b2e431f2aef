package analytics

import (
	"testing"
	"time"

	"github.com/castlemilk/bizpulse/backend/internal/ledger"
	"github.com/castlemilk/bizpulse/backend/internal/period"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucketStart(t *testing.T) {
	sat := day(2025, 3, 15)
	assert.Equal(t, sat, BucketStart(sat, GranularityDay))
	assert.Equal(t, day(2025, 3, 10), BucketStart(sat, GranularityWeek))
	assert.Equal(t, day(2025, 3, 10), BucketStart(day(2025, 3, 10), GranularityWeek))
	assert.Equal(t, day(2025, 3, 10), BucketStart(day(2025, 3, 16), GranularityWeek))
	assert.Equal(t, day(2025, 3, 1), BucketStart(sat, GranularityMonth))
}

func TestParseGranularity(t *testing.T) {
	g, err := ParseGranularity("")
	require.NoError(t, err)
	assert.Equal(t, GranularityMonth, g)

	g, err = ParseGranularity("week")
	require.NoError(t, err)
	assert.Equal(t, GranularityWeek, g)

	_, err = ParseGranularity("hour")
	assert.Error(t, err)
}

func TestBucketize(t *testing.T) {
	lines := []ledger.RevenueLine{
		revenue("a", day(2025, 1, 5), "100"),
		revenue("b", day(2025, 1, 25), "50"),
		revenue("c", day(2025, 3, 2), "300"),
		revenue("outside", day(2025, 4, 1), "999"),
	}
	q1 := period.Period{Start: day(2025, 1, 1), End: day(2025, 3, 31)}

	t.Run("monthly series is dense", func(t *testing.T) {
		points := Bucketize(lines, q1, GranularityMonth)
		require.Len(t, points, 3)
		assert.Equal(t, "2025-01", points[0].Label)
		assert.Equal(t, 150.0, points[0].Value)
		assert.Equal(t, "2025-02", points[1].Label)
		assert.Equal(t, 0.0, points[1].Value)
		assert.Equal(t, 300.0, points[2].Value)
	})

	t.Run("weekly labels use ISO weeks", func(t *testing.T) {
		points := Bucketize(lines, period.Period{Start: day(2025, 3, 1), End: day(2025, 3, 16)}, GranularityWeek)
		require.Len(t, points, 3)
		assert.Equal(t, "2025-W09", points[0].Label)
		assert.Equal(t, 300.0, points[0].Value)
		assert.Equal(t, "2025-W11", points[2].Label)
	})

	t.Run("daily", func(t *testing.T) {
		points := Bucketize(lines, period.Period{Start: day(2025, 1, 5), End: day(2025, 1, 7)}, GranularityDay)
		require.Len(t, points, 3)
		assert.Equal(t, "2025-01-05", points[0].Label)
		assert.Equal(t, 100.0, points[0].Value)
	})
}

func TestMovingAverage(t *testing.T) {
	assert.Nil(t, MovingAverage(nil))
	assert.Equal(t, []float64{1, 1.5, 2}, MovingAverage([]float64{1, 2, 3}))

	ma := MovingAverage([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9})
	require.Len(t, ma, 9)
	assert.Equal(t, 4.0, ma[6])
	// Trailing window of 7: mean(3..9).
	assert.Equal(t, 6.0, ma[8])
}

func TestExponentialForecast(t *testing.T) {
	t.Run("empty history forecasts zero", func(t *testing.T) {
		s, f := ExponentialForecast(nil)
		assert.Zero(t, s)
		assert.Zero(t, f)
	})

	t.Run("smoothing recurrence", func(t *testing.T) {
		s, f := ExponentialForecast([]float64{10, 20})
		assert.InDelta(t, 13.0, s, 1e-9)
		assert.InDelta(t, 13.0*30/7, f, 1e-9)
	})

	t.Run("idempotent", func(t *testing.T) {
		weekly := []float64{120, 80, 95, 130, 0, 60, 210, 180, 75, 90, 100, 140}
		s1, f1 := ExponentialForecast(weekly)
		s2, f2 := ExponentialForecast(weekly)
		assert.Equal(t, s1, s2)
		assert.Equal(t, f1, f2)
	})
}

func TestForecast(t *testing.T) {
	t.Run("zero history", func(t *testing.T) {
		res := Forecast([]ledger.RevenueLine{}, march, GranularityWeek, day(2025, 4, 2))
		assert.Zero(t, res.ForecastValue)
		assert.Zero(t, res.HistoryWeeksWithData)
		assert.Len(t, res.WeeklyHistory, HistoryWeeks)
		assert.Equal(t, ForecastHorizonDays, res.HorizonDays)
		assert.Equal(t, SmoothingAlpha, res.SmoothingAlpha)
	})

	t.Run("constant weekly revenue projects 30 days", func(t *testing.T) {
		// 2025-03-31 is a Monday; twelve Mondays back to 2025-01-13.
		var lines []ledger.RevenueLine
		for d := day(2025, 1, 13); !d.After(day(2025, 3, 31)); d = d.AddDate(0, 0, 7) {
			lines = append(lines, revenue(d.Format("20060102"), d, "700"))
		}
		// Older history falls outside the 12-week window.
		lines = append(lines, revenue("old", day(2024, 12, 2), "99999"))

		res := Forecast(lines, march, GranularityMonth, day(2025, 4, 2))
		require.Len(t, res.WeeklyHistory, HistoryWeeks)
		assert.Equal(t, day(2025, 1, 13), res.WeeklyHistory[0].Start)
		assert.Equal(t, HistoryWeeks, res.HistoryWeeksWithData)
		assert.InDelta(t, 700.0, res.LastSmoothedValue, 1e-6)
		assert.InDelta(t, 3000.0, res.ForecastValue, 1e-6)

		require.Len(t, res.Series, 1)
		assert.Equal(t, 3500.0, res.Series[0].Value)
		assert.Equal(t, []float64{3500}, res.MovingAverage)
	})

	t.Run("history stops at today inside the period", func(t *testing.T) {
		// Weekly 1000 on each Monday from 2024-12-23 to 2025-03-10.
		var lines []ledger.RevenueLine
		for d := day(2024, 12, 23); !d.After(day(2025, 3, 10)); d = d.AddDate(0, 0, 7) {
			lines = append(lines, revenue(d.Format("20060102"), d, "1000"))
		}

		res := Forecast(lines, march, GranularityWeek, day(2025, 3, 15))
		require.Len(t, res.WeeklyHistory, HistoryWeeks)
		assert.Equal(t, day(2024, 12, 23), res.WeeklyHistory[0].Start)
		assert.Equal(t, day(2025, 3, 10), res.WeeklyHistory[HistoryWeeks-1].Start)
		assert.Equal(t, HistoryWeeks, res.HistoryWeeksWithData)
		assert.InDelta(t, 1000.0, res.LastSmoothedValue, 1e-6)
		assert.InDelta(t, 1000.0*30/7, res.ForecastValue, 1e-6)

		// The series still spans the whole month.
		assert.Equal(t, day(2025, 3, 31), res.Series[len(res.Series)-1].Start)
	})

	t.Run("zero today reads up to the period end", func(t *testing.T) {
		assert.Equal(t, day(2025, 3, 31), HistoryEnd(march, time.Time{}))
		assert.Equal(t, day(2025, 3, 31), HistoryEnd(march, day(2025, 6, 1)))
		assert.Equal(t, day(2025, 3, 15), HistoryEnd(march, time.Date(2025, 3, 15, 18, 0, 0, 0, time.UTC)))
		assert.Equal(t, day(2024, 12, 23), HistoryStart(march, day(2025, 3, 15)))
	})

	t.Run("repeated runs are identical", func(t *testing.T) {
		lines := []ledger.RevenueLine{
			revenue("a", day(2025, 3, 3), "120.50"),
			revenue("b", day(2025, 2, 11), "80"),
		}
		assert.Equal(t, Forecast(lines, march, GranularityDay, day(2025, 3, 20)), Forecast(lines, march, GranularityDay, day(2025, 3, 20)))
	})
}
