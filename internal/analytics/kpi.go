// Package analytics reduces filtered ledger data into dashboard metrics.
// Every function here is pure: results depend only on the arguments.
package analytics

import (
	"github.com/castlemilk/bizpulse/backend/internal/ledger"
	"github.com/castlemilk/bizpulse/backend/internal/money"
	"github.com/castlemilk/bizpulse/backend/internal/period"
	"github.com/shopspring/decimal"
)

// Revenue sources reported on a snapshot.
const (
	SourceRevenueLines = "revenue_lines"
	SourcePnL          = "pnl"
	SourceNone         = "none"
)

// PeriodData is the filtered input of a single period.
type PeriodData struct {
	Revenue []ledger.RevenueLine
	PnL     []ledger.PnLLineItem
}

// IsEmpty reports whether the period has nothing to aggregate.
func (d PeriodData) IsEmpty() bool {
	return len(d.Revenue) == 0 && len(d.PnL) == 0
}

// Totals are the summed amounts of one period, in base currency.
type Totals struct {
	Revenue       decimal.Decimal
	Expenses      decimal.Decimal
	COGS          decimal.Decimal
	Payroll       decimal.Decimal
	RevenueSource string
}

// NetProfit is revenue minus expenses.
func (t Totals) NetProfit() decimal.Decimal {
	return t.Revenue.Sub(t.Expenses)
}

// ComputeTotals sums a period. Revenue comes from revenue lines; when there
// are none it falls back to the revenue buckets of the P&L rows.
func ComputeTotals(d PeriodData) Totals {
	t := Totals{
		Revenue:       decimal.Zero,
		Expenses:      decimal.Zero,
		COGS:          decimal.Zero,
		Payroll:       decimal.Zero,
		RevenueSource: SourceNone,
	}
	pnlRevenue := decimal.Zero
	for _, row := range d.PnL {
		pnlRevenue = pnlRevenue.Add(row.Total(ledger.KindRevenue))
		t.Expenses = t.Expenses.Add(row.Total(ledger.KindExpense))
		t.COGS = t.COGS.Add(row.Amount(ledger.BucketCOGS))
		t.Payroll = t.Payroll.Add(row.Amount(ledger.BucketPayroll))
	}

	switch {
	case len(d.Revenue) > 0:
		for _, line := range d.Revenue {
			t.Revenue = t.Revenue.Add(line.MustAmountBase())
		}
		t.RevenueSource = SourceRevenueLines
	case len(d.PnL) > 0:
		t.Revenue = pnlRevenue
		t.RevenueSource = SourcePnL
	}
	return t
}

// Delta compares a figure against its prior-period value.
type Delta struct {
	Current          decimal.Decimal `json:"current"`
	Previous         decimal.Decimal `json:"previous"`
	PercentageChange float64         `json:"percentage_change"`
}

func newDelta(curr, prev decimal.Decimal) Delta {
	return Delta{Current: curr, Previous: prev, PercentageChange: money.Change(curr, prev)}
}

// Changes groups the deltas of the headline figures.
type Changes struct {
	Revenue   Delta `json:"revenue"`
	Expenses  Delta `json:"expenses"`
	NetProfit Delta `json:"net_profit"`
}

func newChanges(curr, prev Totals) Changes {
	return Changes{
		Revenue:   newDelta(curr.Revenue, prev.Revenue),
		Expenses:  newDelta(curr.Expenses, prev.Expenses),
		NetProfit: newDelta(curr.NetProfit(), prev.NetProfit()),
	}
}

// KPISnapshot is the immutable summary of one (period, filter) combination.
type KPISnapshot struct {
	Period             period.Period   `json:"period"`
	ComparisonPeriod   period.Period   `json:"comparison_period"`
	YearAgoPeriod      period.Period   `json:"year_ago_period"`
	BaseCurrency       string          `json:"base_currency"`
	TotalRevenue       decimal.Decimal `json:"total_revenue"`
	TotalExpenses      decimal.Decimal `json:"total_expenses"`
	TotalCOGS          decimal.Decimal `json:"total_cogs"`
	GrossProfit        decimal.Decimal `json:"gross_profit"`
	NetProfit          decimal.Decimal `json:"net_profit"`
	ProfitMarginPct    float64         `json:"profit_margin_pct"`
	GrossMarginPct     float64         `json:"gross_margin_pct"`
	PayrollRatioPct    float64         `json:"payroll_ratio_pct"`
	MonthChange        Changes         `json:"month_change"`
	YearChange         Changes         `json:"year_change"`
	TopExpenseCategory string          `json:"top_expense_category"`
	TopExpenseAmount   decimal.Decimal `json:"top_expense_amount"`
	RevenueSource      string          `json:"revenue_source"`
}

// ExpensesMoMPct is the expense change against the comparison period.
func (k KPISnapshot) ExpensesMoMPct() float64 { return k.MonthChange.Expenses.PercentageChange }

// RevenueMoMPct is the revenue change against the comparison period.
func (k KPISnapshot) RevenueMoMPct() float64 { return k.MonthChange.Revenue.PercentageChange }

// KPIInput carries the current period and its two baselines. Missing
// baseline data yields zero deltas rather than an error.
type KPIInput struct {
	Period        period.Period
	BaseCurrency  string
	Current       PeriodData
	PreviousMonth PeriodData
	PreviousYear  PeriodData
}

// AggregateKPIs reduces the input into a KPISnapshot.
func AggregateKPIs(in KPIInput) KPISnapshot {
	curr := ComputeTotals(in.Current)
	prevMonth := ComputeTotals(in.PreviousMonth)
	prevYear := ComputeTotals(in.PreviousYear)

	gross := curr.Revenue.Sub(curr.COGS)
	net := curr.NetProfit()

	snap := KPISnapshot{
		Period:           in.Period,
		ComparisonPeriod: in.Period.PreviousComparable(),
		YearAgoPeriod:    in.Period.SamePeriodLastYear(),
		BaseCurrency:     in.BaseCurrency,
		TotalRevenue:     curr.Revenue,
		TotalExpenses:    curr.Expenses,
		TotalCOGS:        curr.COGS,
		GrossProfit:      gross,
		NetProfit:        net,
		MonthChange:      newChanges(curr, prevMonth),
		YearChange:       newChanges(curr, prevYear),
		TopExpenseAmount: decimal.Zero,
		RevenueSource:    curr.RevenueSource,
	}
	if curr.Revenue.IsPositive() {
		snap.ProfitMarginPct = money.Percent(net, curr.Revenue, 2)
		snap.GrossMarginPct = money.Percent(gross, curr.Revenue, 2)
		snap.PayrollRatioPct = money.Percent(curr.Payroll, curr.Revenue, 1)
	}

	if name, amount, ok := TopExpenseCategory(in.Current.PnL); ok {
		snap.TopExpenseCategory = name
		snap.TopExpenseAmount = amount
	}
	return snap
}

// TopExpenseCategory returns the largest expense bucket of the most recent
// P&L row. Ties go to the bucket declared first.
func TopExpenseCategory(rows []ledger.PnLLineItem) (string, decimal.Decimal, bool) {
	if len(rows) == 0 {
		return "", decimal.Zero, false
	}
	latest := rows[0]
	for _, row := range rows[1:] {
		if row.Month.After(latest.Month) {
			latest = row
		}
	}

	var (
		best   string
		amount = decimal.Zero
	)
	for _, b := range latest.ExpenseBuckets() {
		if b.Amount.GreaterThan(amount) {
			best = b.Name
			amount = b.Amount
		}
	}
	return best, amount, best != ""
}
