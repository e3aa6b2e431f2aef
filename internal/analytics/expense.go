package analytics

import (
	"sort"

	"github.com/castlemilk/bizpulse/backend/internal/ledger"
	"github.com/castlemilk/bizpulse/backend/internal/money"
	"github.com/shopspring/decimal"
)

// CategoryAmount is the aggregated expense of one category. IsSpike is set
// by the data source and passed through untouched.
type CategoryAmount struct {
	Name    string
	Amount  decimal.Decimal
	IsSpike bool
}

// ExpenseChip is one entry of the expense breakdown.
type ExpenseChip struct {
	Category   string          `json:"category"`
	AmountBase decimal.Decimal `json:"amount_base"`
	PctOfTotal float64         `json:"pct_of_total"`
	IsSpike    bool            `json:"is_spike"`
	IsNew      bool            `json:"is_new"`
}

// CategorizeExpenses turns the current categories into chips ordered by
// amount descending, then name. A category is new when the previous period
// has no positive amount for it and the current amount is positive.
func CategorizeExpenses(current []CategoryAmount, previous map[string]decimal.Decimal) []ExpenseChip {
	total := decimal.Zero
	for _, c := range current {
		total = total.Add(c.Amount)
	}

	chips := make([]ExpenseChip, 0, len(current))
	for _, c := range current {
		prev, seen := previous[c.Name]
		chips = append(chips, ExpenseChip{
			Category:   c.Name,
			AmountBase: c.Amount,
			PctOfTotal: money.Percent(c.Amount, total, 1),
			IsSpike:    c.IsSpike,
			IsNew:      (!seen || !prev.IsPositive()) && c.Amount.IsPositive(),
		})
	}

	sort.SliceStable(chips, func(i, j int) bool {
		if cmp := chips[i].AmountBase.Cmp(chips[j].AmountBase); cmp != 0 {
			return cmp > 0
		}
		return chips[i].Category < chips[j].Category
	})
	return chips
}

// CategoriesFromPnL sums the expense buckets of rows by name. Categories come
// out in declared bucket order and only when their total is positive. spikes
// flags categories as spiking; nil means none do.
func CategoriesFromPnL(rows []ledger.PnLLineItem, spikes map[string]bool) []CategoryAmount {
	var order []string
	sums := make(map[string]decimal.Decimal)
	for _, row := range rows {
		for _, b := range row.ExpenseBuckets() {
			if _, ok := sums[b.Name]; !ok {
				order = append(order, b.Name)
				sums[b.Name] = decimal.Zero
			}
			sums[b.Name] = sums[b.Name].Add(b.Amount)
		}
	}

	var out []CategoryAmount
	for _, name := range order {
		if !sums[name].IsPositive() {
			continue
		}
		out = append(out, CategoryAmount{Name: name, Amount: sums[name], IsSpike: spikes[name]})
	}
	return out
}

// CategoryTotals indexes categories by name, the shape CategorizeExpenses
// expects for the previous period.
func CategoryTotals(categories []CategoryAmount) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(categories))
	for _, c := range categories {
		out[c.Name] = c.Amount
	}
	return out
}
