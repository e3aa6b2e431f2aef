package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/castlemilk/bizpulse/backend/internal/ledger"
	"github.com/castlemilk/bizpulse/backend/internal/money"
	"github.com/montanaflynn/stats"
)

// OutlierSigmas is how many population standard deviations from the mean a
// record must lie beyond to be flagged.
const OutlierSigmas = 2.0

// OutlierRow is the per-record result of outlier detection.
type OutlierRow struct {
	RecordID   string     `json:"record_id"`
	Date       time.Time  `json:"date"`
	Amount     money.Dual `json:"amount"`
	AmountBase float64    `json:"amount_base"`
	ZScore     float64    `json:"z_score"`
	IsOutlier  bool       `json:"is_outlier"`
}

// OutlierReport summarizes a detection run.
type OutlierReport struct {
	Mean         float64      `json:"mean"`
	StdDev       float64      `json:"std_dev"`
	Threshold    float64      `json:"threshold"`
	Count        int          `json:"count"`
	OutlierCount int          `json:"outlier_count"`
	Rows         []OutlierRow `json:"rows"`
}

// Outliers returns only the flagged rows.
func (r OutlierReport) Outliers() []OutlierRow {
	var out []OutlierRow
	for _, row := range r.Rows {
		if row.IsOutlier {
			out = append(out, row)
		}
	}
	return out
}

// DetectOutliers flags records whose base amount deviates from the mean by
// more than 2σ, using the population standard deviation. With fewer than two
// records σ is zero and nothing is flagged. Rows are ordered by date, then id.
func DetectOutliers[T ledger.Entry](entries []T, baseCurrency string) OutlierReport {
	records := make([]ledger.Record, len(entries))
	for i, e := range entries {
		records[i] = e.Core()
	}
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].Date.Equal(records[j].Date) {
			return records[i].Date.Before(records[j].Date)
		}
		return records[i].ID < records[j].ID
	})

	amounts := make(stats.Float64Data, len(records))
	for i, r := range records {
		amounts[i] = r.MustAmountBase().InexactFloat64()
	}

	report := OutlierReport{Count: len(records), Rows: make([]OutlierRow, len(records))}
	if len(amounts) > 0 {
		report.Mean, _ = stats.Mean(amounts)
	}
	if len(amounts) >= 2 {
		report.StdDev, _ = stats.StandardDeviationPopulation(amounts)
	}
	report.Threshold = OutlierSigmas * report.StdDev

	for i, r := range records {
		x := amounts[i]
		row := OutlierRow{
			RecordID:   r.ID,
			Date:       r.Date,
			Amount:     r.Dual(baseCurrency),
			AmountBase: x,
		}
		if report.StdDev > 0 {
			row.ZScore = (x - report.Mean) / report.StdDev
			row.IsOutlier = math.Abs(x-report.Mean) > report.Threshold
		}
		if row.IsOutlier {
			report.OutlierCount++
		}
		report.Rows[i] = row
	}
	return report
}
