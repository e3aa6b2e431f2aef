package ledger

import (
	"testing"
	"time"

	"github.com/castlemilk/bizpulse/backend/internal/period"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func rec(id string, date time.Time, amount, rate string) Record {
	return Record{
		ID:       id,
		Date:     date,
		Amount:   decimal.RequireFromString(amount),
		Currency: "USD",
		FXRate:   decimal.RequireFromString(rate),
	}
}

func TestAmountBase(t *testing.T) {
	r := rec("r1", day(2025, 3, 2), "200", "1.1")
	base, err := r.AmountBase()
	require.NoError(t, err)
	assert.Equal(t, "220", base.String())

	// Changing the rate changes the derived value; nothing is cached.
	r.FXRate = decimal.RequireFromString("1.5")
	assert.Equal(t, "300", r.MustAmountBase().String())
}

func TestEffectiveStatus(t *testing.T) {
	today := day(2025, 3, 15)

	tests := []struct {
		name   string
		stored InvoiceStatus
		due    time.Time
		want   InvoiceStatus
	}{
		{"paid stays paid even when late", InvoicePaid, day(2025, 1, 1), InvoicePaid},
		{"void stays void", InvoiceVoid, day(2025, 1, 1), InvoiceVoid},
		{"unpaid past due becomes overdue", InvoiceUnpaid, day(2025, 3, 14), InvoiceOverdue},
		{"unpaid due today is not overdue", InvoiceUnpaid, day(2025, 3, 15), InvoiceUnpaid},
		{"stale overdue flag is recomputed", InvoiceOverdue, day(2025, 4, 1), InvoiceUnpaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := Invoice{Record: rec("i", day(2025, 1, 1), "10", "1"), DueDate: tt.due, InvoiceStatus: tt.stored}
			assert.Equal(t, tt.want, inv.EffectiveStatus(today))
		})
	}
}

func TestSelect(t *testing.T) {
	p := period.Period{Start: day(2025, 3, 1), End: day(2025, 3, 31)}

	lines := []RevenueLine{
		{Record: rec("a", day(2025, 2, 28), "10", "1")},
		{Record: rec("b", day(2025, 3, 1), "20", "1")},
		{Record: rec("c", day(2025, 3, 31), "30", "1")},
		{Record: rec("d", day(2025, 4, 1), "40", "1")},
	}
	lines[1].CustomerID = "cust-1"
	lines[1].Channel = "online"
	lines[2].CustomerID = "cust-2"
	lines[2].Channel = "online"

	t.Run("date range inclusive on both ends", func(t *testing.T) {
		got := Select(lines, p, Filter{})
		require.Len(t, got, 2)
		assert.Equal(t, "b", got[0].ID)
		assert.Equal(t, "c", got[1].ID)
	})

	t.Run("predicates are ANDed", func(t *testing.T) {
		got := Select(lines, p, Filter{Channel: "online", CustomerID: "cust-2"})
		require.Len(t, got, 1)
		assert.Equal(t, "c", got[0].ID)
	})

	t.Run("no match", func(t *testing.T) {
		assert.Empty(t, Select(lines, p, Filter{ProjectID: "proj-x"}))
	})

	t.Run("result does not alias input", func(t *testing.T) {
		got := Select(lines, p, Filter{})
		got[0].Amount = decimal.NewFromInt(999)
		assert.Equal(t, "20", lines[1].Amount.String())
	})
}

func TestSelectInvoicesByEffectiveStatus(t *testing.T) {
	p := period.Period{Start: day(2025, 3, 1), End: day(2025, 3, 31)}
	invoices := []Invoice{
		{Record: rec("i1", day(2025, 3, 2), "100", "1"), DueDate: day(2025, 3, 10), InvoiceStatus: InvoiceUnpaid},
		{Record: rec("i2", day(2025, 3, 3), "100", "1"), DueDate: day(2025, 3, 10), InvoiceStatus: InvoicePaid},
		{Record: rec("i3", day(2025, 3, 4), "100", "1"), DueDate: day(2025, 4, 10), InvoiceStatus: InvoiceUnpaid},
	}

	got := Select(invoices, p, Filter{Status: string(InvoiceOverdue), Today: day(2025, 3, 20)})
	require.Len(t, got, 1)
	assert.Equal(t, "i1", got[0].ID)
}

func TestPartition(t *testing.T) {
	good := rec("ok", day(2025, 3, 1), "10", "1")
	zeroRate := rec("zero-rate", day(2025, 3, 1), "10", "0")
	negative := rec("negative", day(2025, 3, 1), "-5", "1")
	badCurrency := rec("bad-ccy", day(2025, 3, 1), "5", "1")
	badCurrency.Currency = "ZZZZ"

	valid, rejected := Partition("revenue", []RevenueLine{{Record: good}, {Record: zeroRate}, {Record: negative}, {Record: badCurrency}})
	require.Len(t, valid, 1)
	assert.Equal(t, "ok", valid[0].ID)
	require.Len(t, rejected, 3)
	assert.Equal(t, "zero-rate", rejected[0].RecordID)
	assert.Contains(t, rejected[0].Reason, "fx_rate")
	assert.Equal(t, "negative", rejected[1].RecordID)
	assert.Equal(t, "bad-ccy", rejected[2].RecordID)

	_, rejected = Partition("cash", []CashEntry{{Record: good, Direction: "sideways"}})
	require.Len(t, rejected, 1)
	assert.Contains(t, rejected[0].Reason, "direction")

	_, rejected = Partition("invoice", []Invoice{{Record: good, InvoiceStatus: "lost"}})
	require.Len(t, rejected, 1)
}

func TestPnL(t *testing.T) {
	row := PnLLineItem{
		Month: day(2025, 3, 1),
		Buckets: []Bucket{
			{Name: BucketRevenue, Kind: KindRevenue, Amount: decimal.NewFromInt(50000)},
			{Name: "Software", Kind: KindExpense, Amount: decimal.NewFromInt(900)},
			{Name: BucketPayroll, Kind: KindExpense, Amount: decimal.NewFromInt(20000)},
			{Name: BucketCOGS, Kind: KindExpense, Amount: decimal.NewFromInt(12000)},
		},
	}

	assert.Equal(t, "50000", row.Total(KindRevenue).String())
	assert.Equal(t, "32900", row.Total(KindExpense).String())
	assert.True(t, row.Amount(BucketRent).IsZero())

	buckets := row.ExpenseBuckets()
	names := make([]string, len(buckets))
	for i, b := range buckets {
		names[i] = b.Name
	}
	assert.Equal(t, []string{BucketCOGS, BucketPayroll, BucketRent, BucketMarketing, BucketOther, "Software"}, names)

	bad := PnLLineItem{Month: day(2025, 3, 1), Buckets: []Bucket{{Name: BucketRent, Kind: KindExpense, Amount: decimal.NewFromInt(-1)}}}
	assert.Error(t, bad.Validate())
}

func TestSelectPnL(t *testing.T) {
	rows := []PnLLineItem{
		{Month: day(2025, 3, 1)},
		{Month: day(2025, 1, 1)},
		{Month: day(2024, 12, 1)},
		{Month: day(2025, 2, 1)},
	}
	// YTD ending mid-March still includes the March row.
	p := period.Period{Start: day(2025, 1, 1), End: day(2025, 3, 15)}
	got := SelectPnL(rows, p)
	require.Len(t, got, 3)
	assert.Equal(t, day(2025, 1, 1), got[0].Month)
	assert.Equal(t, day(2025, 3, 1), got[2].Month)
}
