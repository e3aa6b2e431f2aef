// Package signal evaluates the alert rules over a computed snapshot.
package signal

import (
	"fmt"
	"sort"

	"github.com/castlemilk/bizpulse/backend/internal/analytics"
	"github.com/castlemilk/bizpulse/backend/internal/money"
	"github.com/castlemilk/bizpulse/backend/internal/period"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Severity ranks a signal.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

func (s Severity) rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityWarning:
		return 1
	default:
		return 2
	}
}

// Rule names.
const (
	RuleCashShortfall   = "cash_shortfall"
	RuleOverdueInvoices = "overdue_invoices"
	RuleExpenseGrowth   = "expense_growth"
	RuleRevenueGrowth   = "revenue_growth"
	RuleLowBuffer       = "low_buffer"
)

// Thresholds of the percentage and runway rules.
const (
	ExpenseGrowthPct = 20.0
	RevenueGrowthPct = 10.0
	LowBufferMonths  = 2.0
)

// namespace seeds the deterministic signal ids.
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://bizpulse.app/signals"))

// Signal is one alert shown on the dashboard.
type Signal struct {
	ID         string            `json:"id"`
	Rule       string            `json:"rule"`
	Severity   Severity          `json:"severity"`
	Title      string            `json:"title"`
	Message    string            `json:"message"`
	ActionLink string            `json:"action_link"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// Input is the combined output of the primary aggregations.
type Input struct {
	Period       period.Period
	BaseCurrency string
	KPI          analytics.KPISnapshot
	Invoices     analytics.InvoiceSummary
	Cash         analytics.CashPosition
}

type rule struct {
	name     string
	severity Severity
	eval     func(Input) (Signal, bool)
}

var rules = []rule{
	{RuleCashShortfall, SeverityCritical, cashShortfall},
	{RuleOverdueInvoices, SeverityWarning, overdueInvoices},
	{RuleExpenseGrowth, SeverityWarning, expenseGrowth},
	{RuleRevenueGrowth, SeverityInfo, revenueGrowth},
	{RuleLowBuffer, SeverityWarning, lowBuffer},
}

// Generate evaluates every rule independently and returns the signals that
// fire, critical first, then warning, then info. Within a severity the rule
// table order holds. An empty result means all clear.
func Generate(in Input) []Signal {
	var out []Signal
	for _, r := range rules {
		s, ok := r.eval(in)
		if !ok {
			continue
		}
		s.Rule = r.name
		s.Severity = r.severity
		s.ID = uuid.NewSHA1(namespace, []byte(r.name+"|"+in.Period.String())).String()
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Severity.rank() < out[j].Severity.rank()
	})
	return out
}

// AllClear reports whether no rule fired.
func AllClear(signals []Signal) bool {
	return len(signals) == 0
}

func (in Input) format(d decimal.Decimal) string {
	return money.Format(d, in.BaseCurrency)
}

func cashShortfall(in Input) (Signal, bool) {
	c := in.Cash
	burning := c.TotalExpense.GreaterThan(c.TotalIncome)
	negative := c.Available && c.EndingCash.IsNegative()
	if !burning && !negative {
		return Signal{}, false
	}

	var msg string
	if burning {
		msg = fmt.Sprintf("Expenses of %s exceeded income of %s.", in.format(c.TotalExpense), in.format(c.TotalIncome))
	} else {
		msg = fmt.Sprintf("Ending cash is negative at %s.", in.format(c.EndingCash))
	}
	meta := map[string]string{}
	if driver := in.KPI.TopExpenseCategory; driver != "" {
		msg += fmt.Sprintf(" Biggest driver: %s (%s).", driver, in.format(in.KPI.TopExpenseAmount))
		meta["driver"] = driver
	}
	return Signal{
		Title:      "Cash shortfall",
		Message:    msg,
		ActionLink: "/dashboard/cash",
		Metadata:   meta,
	}, true
}

func overdueInvoices(in Input) (Signal, bool) {
	inv := in.Invoices
	if !inv.OverdueTotal.IsPositive() {
		return Signal{}, false
	}
	noun := "invoices are"
	if inv.OverdueCount == 1 {
		noun = "invoice is"
	}
	return Signal{
		Title:      "Overdue invoices",
		Message:    fmt.Sprintf("%d %s overdue, totalling %s.", inv.OverdueCount, noun, in.format(inv.OverdueTotal)),
		ActionLink: "/dashboard/invoices",
		Metadata: map[string]string{
			"count":  fmt.Sprint(inv.OverdueCount),
			"amount": inv.OverdueTotal.StringFixed(2),
		},
	}, true
}

func expenseGrowth(in Input) (Signal, bool) {
	pct := in.KPI.ExpensesMoMPct()
	if pct <= ExpenseGrowthPct {
		return Signal{}, false
	}
	return Signal{
		Title:      "Expenses rising",
		Message:    fmt.Sprintf("Expenses are up %.1f%% on the previous period.", pct),
		ActionLink: "/dashboard/expenses",
		Metadata:   map[string]string{"percentage_change": fmt.Sprintf("%.2f", pct)},
	}, true
}

func revenueGrowth(in Input) (Signal, bool) {
	pct := in.KPI.RevenueMoMPct()
	if pct <= RevenueGrowthPct {
		return Signal{}, false
	}
	return Signal{
		Title:      "Revenue growing",
		Message:    fmt.Sprintf("Revenue is up %.1f%% on the previous period. Nice work.", pct),
		ActionLink: "/dashboard/revenue",
		Metadata:   map[string]string{"percentage_change": fmt.Sprintf("%.2f", pct)},
	}, true
}

func lowBuffer(in Input) (Signal, bool) {
	months := in.Cash.BufferMonths
	if !in.Cash.BufferAvailable || months <= 0 || months >= LowBufferMonths {
		return Signal{}, false
	}
	return Signal{
		Title:      "Low cash buffer",
		Message:    fmt.Sprintf("Cash covers %.1f months of operating expenses.", months),
		ActionLink: "/dashboard/cash",
		Metadata:   map[string]string{"cash_buffer_months": fmt.Sprintf("%.2f", months)},
	}, true
}
