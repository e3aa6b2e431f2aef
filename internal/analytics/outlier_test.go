package analytics

import (
	"fmt"
	"testing"

	"github.com/castlemilk/bizpulse/backend/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func invoicesWithAmounts(amounts ...string) []ledger.Invoice {
	out := make([]ledger.Invoice, len(amounts))
	for i, a := range amounts {
		out[i] = ledger.Invoice{
			Record:        record(fmt.Sprintf("inv-%02d", i), day(2025, 3, i+1), a),
			DueDate:       day(2025, 4, 1),
			InvoiceStatus: ledger.InvoiceUnpaid,
		}
	}
	return out
}

func TestDetectOutliersWorkedExample(t *testing.T) {
	report := DetectOutliers(invoicesWithAmounts("100", "100", "100", "100", "900"), "USD")

	assert.Equal(t, 260.0, report.Mean)
	assert.Equal(t, 320.0, report.StdDev)
	assert.Equal(t, 640.0, report.Threshold)
	// |900-260| = 640 is not strictly greater than 2σ = 640.
	assert.Zero(t, report.OutlierCount)
	assert.Empty(t, report.Outliers())
	require.Len(t, report.Rows, 5)
	assert.Equal(t, 2.0, report.Rows[4].ZScore)
	assert.False(t, report.Rows[4].IsOutlier)
}

func TestDetectOutliers(t *testing.T) {
	t.Run("flags a clear outlier", func(t *testing.T) {
		amounts := []string{"100", "100", "100", "100", "100", "100", "100", "100", "100", "1000"}
		report := DetectOutliers(invoicesWithAmounts(amounts...), "USD")

		assert.Equal(t, 190.0, report.Mean)
		assert.Equal(t, 270.0, report.StdDev)
		outliers := report.Outliers()
		require.Len(t, outliers, 1)
		assert.Equal(t, "inv-09", outliers[0].RecordID)
		assert.Equal(t, 3.0, outliers[0].ZScore)
	})

	t.Run("single record is never flagged", func(t *testing.T) {
		report := DetectOutliers(invoicesWithAmounts("5000"), "USD")
		assert.Zero(t, report.StdDev)
		assert.Equal(t, 5000.0, report.Mean)
		assert.Empty(t, report.Outliers())
	})

	t.Run("empty input", func(t *testing.T) {
		report := DetectOutliers([]ledger.Invoice{}, "USD")
		assert.Zero(t, report.Count)
		assert.Empty(t, report.Rows)
	})

	t.Run("identical amounts", func(t *testing.T) {
		report := DetectOutliers(invoicesWithAmounts("10", "10", "10"), "USD")
		assert.Zero(t, report.StdDev)
		assert.Zero(t, report.OutlierCount)
	})

	t.Run("rows report original and base amounts", func(t *testing.T) {
		invoices := invoicesWithAmounts("100", "200")
		invoices[0].Currency = "EUR"
		invoices[0].FXRate = dec("1.1")

		report := DetectOutliers(invoices, "USD")
		row := report.Rows[0]
		assert.Equal(t, "EUR", row.Amount.OriginalCurrency)
		assert.Equal(t, "100", row.Amount.Original.String())
		assert.Equal(t, "110", row.Amount.Base.String())
		assert.Equal(t, 110.0, row.AmountBase)
	})

	t.Run("rows are ordered by date then id", func(t *testing.T) {
		invoices := invoicesWithAmounts("1", "2", "3")
		invoices[0].Date = day(2025, 3, 9)
		invoices[2].Date = invoices[1].Date
		invoices[1].ID, invoices[2].ID = "b", "a"

		report := DetectOutliers(invoices, "USD")
		ids := []string{report.Rows[0].RecordID, report.Rows[1].RecordID, report.Rows[2].RecordID}
		assert.Equal(t, []string{"a", "b", "inv-00"}, ids)
	})
}
