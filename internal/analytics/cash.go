package analytics

import (
	"github.com/castlemilk/bizpulse/backend/internal/ledger"
	"github.com/shopspring/decimal"
)

// Cash flow sources reported on a CashPosition.
const (
	CashSourceLedger = "cash_ledger"
	CashSourcePnL    = "pnl"
)

// CashInput carries everything the buffer calculation needs. OpeningCash is
// nil when the account never reported a balance.
type CashInput struct {
	OpeningCash   *decimal.Decimal
	TotalIncome   decimal.Decimal
	TotalExpense  decimal.Decimal
	TotalExpenses decimal.Decimal
	TotalCOGS     decimal.Decimal
	Months        int
	Source        string
}

// CashPosition is the runway of the period. When Available is false the
// figures are zero and should be shown as "N/A".
type CashPosition struct {
	Available       bool            `json:"available"`
	BufferAvailable bool            `json:"buffer_available"`
	OpeningCash     decimal.Decimal `json:"opening_cash"`
	TotalIncome     decimal.Decimal `json:"total_income"`
	TotalExpense    decimal.Decimal `json:"total_expense"`
	EndingCash      decimal.Decimal `json:"ending_cash"`
	MonthlyOpex     decimal.Decimal `json:"monthly_opex"`
	BufferMonths    float64         `json:"cash_buffer_months"`
	Source          string          `json:"source"`
}

// CashFlows sums cash ledger entries by direction.
func CashFlows(entries []ledger.CashEntry) (income, expense decimal.Decimal) {
	income, expense = decimal.Zero, decimal.Zero
	for _, e := range entries {
		switch e.Direction {
		case ledger.CashIn:
			income = income.Add(e.MustAmountBase())
		case ledger.CashOut:
			expense = expense.Add(e.MustAmountBase())
		}
	}
	return income, expense
}

// NewCashInput picks the period's inflow and outflow from the cash ledger
// when it has entries and from the P&L totals otherwise.
func NewCashInput(opening *decimal.Decimal, entries []ledger.CashEntry, totals Totals, months int) CashInput {
	in := CashInput{
		OpeningCash:   opening,
		TotalExpenses: totals.Expenses,
		TotalCOGS:     totals.COGS,
		Months:        months,
	}
	if len(entries) > 0 {
		in.TotalIncome, in.TotalExpense = CashFlows(entries)
		in.Source = CashSourceLedger
	} else {
		in.TotalIncome, in.TotalExpense = totals.Revenue, totals.Expenses
		in.Source = CashSourcePnL
	}
	return in
}

// ComputeCash derives ending cash, monthly opex and the buffer in months.
// The buffer is zero whenever monthly opex is not positive.
func ComputeCash(in CashInput) CashPosition {
	months := in.Months
	if months < 1 {
		months = 1
	}
	opex := in.TotalExpenses.Sub(in.TotalCOGS).Div(decimal.NewFromInt(int64(months)))

	pos := CashPosition{
		OpeningCash:  decimal.Zero,
		TotalIncome:  in.TotalIncome,
		TotalExpense: in.TotalExpense,
		EndingCash:   decimal.Zero,
		MonthlyOpex:  opex.Round(2),
		Source:       in.Source,
	}
	if in.OpeningCash == nil {
		return pos
	}

	pos.Available = true
	pos.OpeningCash = *in.OpeningCash
	pos.EndingCash = in.OpeningCash.Sub(in.TotalExpense).Add(in.TotalIncome)
	pos.BufferMonths = BufferMonths(pos.EndingCash, opex)
	pos.BufferAvailable = opex.IsPositive()
	return pos
}

// BufferMonths is ending cash over monthly opex, rounded to two places, or
// zero when opex is not positive.
func BufferMonths(endingCash, monthlyOpex decimal.Decimal) float64 {
	if !monthlyOpex.IsPositive() {
		return 0
	}
	return endingCash.DivRound(monthlyOpex, 2).InexactFloat64()
}
