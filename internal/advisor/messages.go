package advisor

import (
	"fmt"
	"strings"

	"github.com/castlemilk/bizpulse/backend/internal/money"
	"github.com/castlemilk/bizpulse/backend/internal/period"
	"github.com/castlemilk/bizpulse/backend/internal/signal"
	"github.com/shopspring/decimal"
)

// Recommendation kinds picked by the decision table.
const (
	AdviceLiquidity = "liquidity"
	AdvicePayroll   = "payroll_benchmark"
	AdviceGrowth    = "growth_reserve"
)

// PayrollTeamSize is the head count from which payroll benchmarking applies.
const PayrollTeamSize = 10

// PayrollRatioHighPct is the payroll-to-revenue ratio above which payroll is
// called out as high.
const PayrollRatioHighPct = 50.0

const (
	greetingText     = "Hi! I'm your business advisor. I'll walk you through how your numbers are tracking."
	periodPromptText = "Which period would you like to look at?"
	followUpQuestion = "Would you like a reminder to review these numbers again next month?"
	farewellYes      = "Done. I'll check back in with you next month."
	farewellNo       = "No problem. Your dashboard is here whenever you need it."
	retryPromptText  = "Pick another period, or try this one again once your data has synced."
)

// RetryOption is offered after an empty period. Answering it selects the
// same period again.
const RetryOption = "Try again"

func noDataText(label string, p period.Period) string {
	return fmt.Sprintf("I couldn't find any records for %s (%s), so there is nothing to analyse yet.", label, p.String())
}

// AdviceKind applies the decision table: a low cash buffer wins, then teams
// of ten or more get payroll benchmarking, everyone else growth advice.
func AdviceKind(in Insight) string {
	switch {
	case in.LowBuffer():
		return AdviceLiquidity
	case in.Profile.EmployeeCount >= PayrollTeamSize:
		return AdvicePayroll
	default:
		return AdviceGrowth
	}
}

// Recommend renders the advice for the insight, taking captured notes into
// account.
func Recommend(in Insight, notes []Note) string {
	f := func(d decimal.Decimal) string { return money.Format(d, in.BaseCurrency) }

	var b strings.Builder
	switch AdviceKind(in) {
	case AdviceLiquidity:
		target := in.Cash.MonthlyOpex.Mul(decimal.NewFromFloat(signal.LowBufferMonths))
		fmt.Fprintf(&b, "Your cash covers %.1f months of operating costs. Rebuild liquidity towards at least %.0f months (about %s): chase overdue invoices and hold off on non-essential spend.",
			in.Cash.BufferMonths, signal.LowBufferMonths, f(target))
	case AdvicePayroll:
		fmt.Fprintf(&b, "Payroll is %.1f%% of revenue for a team of %d.", in.KPI.PayrollRatioPct, in.Profile.EmployeeCount)
		if in.KPI.PayrollRatioPct > PayrollRatioHighPct {
			fmt.Fprintf(&b, " That is above the %.0f%% mark most %s businesses aim for, so review it before adding headcount.", PayrollRatioHighPct, industry(in))
		} else {
			fmt.Fprintf(&b, " That is within the range most %s businesses run at.", industry(in))
		}
	default:
		b.WriteString("Costs and cash look steady. Set aside part of each month's profit as a reserve and put the rest towards growth.")
	}

	for _, n := range notesFor(notes, in.Period) {
		switch n.Kind {
		case ContextDividend:
			b.WriteString(" Since you took a dividend, consider pausing further draws until the buffer recovers.")
		case ContextOneOffExpense:
			b.WriteString(" As this period included a one-off expense, expect next period to look lighter.")
		case ContextNewClient:
			b.WriteString(" With new business coming in, plan capacity before committing to fixed costs.")
		}
	}
	return b.String()
}

func notesFor(notes []Note, p period.Period) []Note {
	var out []Note
	for _, n := range notes {
		if n.Period.Start.Equal(p.Start) && n.Period.End.Equal(p.End) {
			out = append(out, n)
		}
	}
	return out
}

func industry(in Insight) string {
	if in.Profile.Industry == "" {
		return "similar"
	}
	return strings.ToLower(in.Profile.Industry)
}

func analyzingText(label string, p period.Period) string {
	return fmt.Sprintf("Crunching the numbers for %s (%s)...", label, p.String())
}

func analysisTexts(label string, in Insight) []string {
	f := func(d decimal.Decimal) string { return money.Format(d, in.BaseCurrency) }
	k := in.KPI
	if label == "" {
		label = in.Period.String()
	}

	texts := []string{
		fmt.Sprintf("%s: revenue %s, expenses %s, net profit %s (%.2f%% margin). Revenue %s and expenses %s on the previous period.",
			label, f(k.TotalRevenue), f(k.TotalExpenses), f(k.NetProfit), k.ProfitMarginPct,
			direction(k.RevenueMoMPct()), direction(k.ExpensesMoMPct())),
	}

	if in.Cash.Available {
		texts = append(texts, fmt.Sprintf("You ended the period with %s in cash, about %.2f months of operating costs.", f(in.Cash.EndingCash), in.Cash.BufferMonths))
	} else {
		texts = append(texts, "Cash buffer: N/A. Add an opening balance to see your runway.")
	}

	switch in.OutlierCount {
	case 0:
		texts = append(texts, "No invoices stand out as unusual.")
	case 1:
		texts = append(texts, "1 invoice looks unusual compared with the rest.")
	default:
		texts = append(texts, fmt.Sprintf("%d invoices look unusual compared with the rest.", in.OutlierCount))
	}

	if len(in.Expenses) > 0 {
		top := in.Expenses[0]
		text := fmt.Sprintf("Your biggest expense was %s at %s (%.1f%% of spend).", top.Category, f(top.AmountBase), top.PctOfTotal)
		var fresh, spiking []string
		for _, c := range in.Expenses {
			if c.IsNew {
				fresh = append(fresh, c.Category)
			}
			if c.IsSpike {
				spiking = append(spiking, c.Category)
			}
		}
		if len(fresh) > 0 {
			text += " New this period: " + strings.Join(fresh, ", ") + "."
		}
		if len(spiking) > 0 {
			text += " Spiking: " + strings.Join(spiking, ", ") + "."
		}
		texts = append(texts, text)
	}

	if signal.AllClear(in.Signals) {
		texts = append(texts, "All clear: nothing needs your attention right now.")
	} else {
		titles := make([]string, len(in.Signals))
		for i, s := range in.Signals {
			titles[i] = s.Title
		}
		noun := "alerts"
		if len(titles) == 1 {
			noun = "alert"
		}
		texts = append(texts, fmt.Sprintf("%d %s to look at: %s.", len(titles), noun, strings.Join(titles, "; ")))
	}
	return texts
}

func direction(pct float64) string {
	switch {
	case pct > 0:
		return fmt.Sprintf("up %.1f%%", pct)
	case pct < 0:
		return fmt.Sprintf("down %.1f%%", -pct)
	default:
		return "flat"
	}
}

func contextQuestion(in Insight) string {
	var reason string
	if in.KPI.ExpensesMoMPct() > signal.ExpenseGrowthPct {
		reason = fmt.Sprintf("Expenses rose %.1f%% compared with the previous period.", in.KPI.ExpensesMoMPct())
	} else {
		reason = fmt.Sprintf("Your cash buffer is down to %.1f months.", in.Cash.BufferMonths)
	}
	return reason + " Was there anything unusual going on?"
}

func confirmationText(kind ContextKind, text string) string {
	if kind == ContextNone {
		return "Thanks. I'll treat this period as business as usual."
	}
	return fmt.Sprintf("Thanks, I've noted: %q.", text)
}
