package advisor

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/castlemilk/bizpulse/backend/internal/analytics"
	"github.com/castlemilk/bizpulse/backend/internal/ledger"
	"github.com/castlemilk/bizpulse/backend/internal/period"
	"github.com/castlemilk/bizpulse/backend/internal/signal"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var march = period.Period{
	Start: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	End:   time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
}

func steadyInsight() Insight {
	return Insight{
		Period:       march,
		BaseCurrency: "USD",
		KPI: analytics.KPISnapshot{
			TotalRevenue:    decimal.NewFromInt(80000),
			TotalExpenses:   decimal.NewFromInt(60000),
			NetProfit:       decimal.NewFromInt(20000),
			ProfitMarginPct: 25,
			PayrollRatioPct: 38.5,
			MonthChange: analytics.Changes{
				Revenue:  analytics.Delta{PercentageChange: 4.2},
				Expenses: analytics.Delta{PercentageChange: 3.1},
			},
		},
		Expenses: []analytics.ExpenseChip{
			{Category: "Payroll", AmountBase: decimal.NewFromInt(30800), PctOfTotal: 51.3},
			{Category: "Events", AmountBase: decimal.NewFromInt(900), PctOfTotal: 1.5, IsNew: true},
		},
		Cash: analytics.CashPosition{
			Available:       true,
			BufferAvailable: true,
			EndingCash:      decimal.NewFromInt(200000),
			MonthlyOpex:     decimal.NewFromInt(40000),
			BufferMonths:    5,
		},
		Profile: ledger.CompanyProfile{Name: "Acme", EmployeeCount: 4, Industry: "Retail"},
	}
}

func mustReduce(t *testing.T, s State, ev Event) (State, []Turn) {
	t.Helper()
	next, turns, err := Reduce(s, ev)
	require.NoError(t, err)
	return next, turns
}

// toAnalyzing drives a fresh conversation up to the analyzing stage.
func toAnalyzing(t *testing.T) State {
	t.Helper()
	s, _ := mustReduce(t, New(), EventStart{})
	s, _ = mustReduce(t, s, EventPeriodSelected{Label: "This month", Period: march})
	return s
}

func TestStartAdvancesToPeriodSelection(t *testing.T) {
	s, turns := mustReduce(t, New(), EventStart{})
	assert.Equal(t, StagePeriodSelection, s.Stage)
	require.Len(t, turns, 2)
	assert.Equal(t, StageGreeting, turns[0].Stage)
	assert.Equal(t, SpeakerAssistant, turns[0].Speaker)
	assert.Contains(t, turns[1].Options, "This month")
	assert.Contains(t, turns[1].Options, "YTD")
	assert.Equal(t, []int{1, 2}, []int{turns[0].Seq, turns[1].Seq})
}

func TestPeriodSelectionEntersAnalyzing(t *testing.T) {
	s := toAnalyzing(t)
	assert.Equal(t, StageAnalyzing, s.Stage)
	assert.Equal(t, march, s.Period)
	assert.Equal(t, "This month", s.PeriodLabel)
	last := s.Transcript[len(s.Transcript)-1]
	assert.Contains(t, last.Text, "2025-03-01..2025-03-31")

	// No user input while analyzing.
	_, _, err := Reduce(s, EventPeriodSelected{Label: "YTD", Period: march})
	assert.ErrorIs(t, err, ErrInputNotAccepted)
	_, _, err = Reduce(s, EventContextAnswer{Kind: ContextNone})
	assert.ErrorIs(t, err, ErrInputNotAccepted)
}

func TestSteadyAnalysisGoesStraightToRecommendations(t *testing.T) {
	s, turns := mustReduce(t, toAnalyzing(t), EventAnalysisReady{Insight: steadyInsight()})

	assert.Equal(t, StageClosing, s.Stage)
	var stages []Stage
	for _, turn := range turns {
		stages = append(stages, turn.Stage)
	}
	assert.Contains(t, stages, StageAnalysisShown)
	assert.Contains(t, stages, StageRecommendations)
	assert.NotContains(t, stages, StageAskingContext)

	assert.Contains(t, turns[0].Text, "$80000.00")
	assert.Contains(t, turns[0].Text, "up 4.2%")
	assert.Contains(t, joined(turns), "New this period: Events.")
	assert.Contains(t, joined(turns), "All clear")
	assert.Equal(t, []string{"Yes", "No"}, turns[len(turns)-1].Options)
}

func TestNoDataGoesBackToPeriodSelection(t *testing.T) {
	empty := Insight{
		Status:       StatusNoData,
		Message:      "insufficient_data: no usable records",
		Period:       march,
		BaseCurrency: "USD",
	}
	s, turns := mustReduce(t, toAnalyzing(t), EventAnalysisReady{Insight: empty})

	assert.Equal(t, StagePeriodSelection, s.Stage)
	assert.Nil(t, s.Insight)
	require.Len(t, turns, 2)
	assert.Equal(t, StageAnalysisShown, turns[0].Stage)
	assert.Contains(t, turns[0].Text, "couldn't find any records for This month")
	assert.NotContains(t, joined(turns), "All clear")
	assert.NotContains(t, joined(turns), "$0.00")
	assert.Equal(t, RetryOption, turns[1].Options[0])
	assert.Contains(t, turns[1].Options, "Last 3 months")

	// Retrying the same period starts a fresh analysis.
	s, _ = mustReduce(t, s, EventPeriodSelected{Label: "This month", Period: march})
	assert.Equal(t, StageAnalyzing, s.Stage)
	s, _ = mustReduce(t, s, EventAnalysisReady{Insight: steadyInsight()})
	assert.Equal(t, StageClosing, s.Stage)

	_, _, err := Reduce(s, EventContextAnswer{Kind: ContextNone})
	assert.ErrorIs(t, err, ErrInputNotAccepted)
}

func TestLowBufferAsksForContext(t *testing.T) {
	insight := steadyInsight()
	insight.Cash.BufferMonths = 1.5

	s, turns := mustReduce(t, toAnalyzing(t), EventAnalysisReady{Insight: insight})
	assert.Equal(t, StageAskingContext, s.Stage)
	for _, turn := range turns {
		assert.NotEqual(t, StageRecommendations, turn.Stage)
	}
	last := turns[len(turns)-1]
	assert.Contains(t, last.Text, "1.5 months")
	assert.Len(t, last.Options, len(ContextKinds))
}

func TestExpenseGrowthAsksForContext(t *testing.T) {
	insight := steadyInsight()
	insight.KPI.MonthChange.Expenses.PercentageChange = 27.5

	s, _ := mustReduce(t, toAnalyzing(t), EventAnalysisReady{Insight: insight})
	assert.Equal(t, StageAskingContext, s.Stage)
	assert.Contains(t, s.Transcript[len(s.Transcript)-1].Text, "27.5%")
}

func TestUnknownBufferDoesNotAskForContext(t *testing.T) {
	insight := steadyInsight()
	insight.Cash = analytics.CashPosition{}

	s, turns := mustReduce(t, toAnalyzing(t), EventAnalysisReady{Insight: insight})
	assert.Equal(t, StageClosing, s.Stage)
	assert.Contains(t, joined(turns), "N/A")
}

func TestContextAnswerCapturedAndAcknowledged(t *testing.T) {
	insight := steadyInsight()
	insight.Cash.BufferMonths = 1.5
	s, _ := mustReduce(t, toAnalyzing(t), EventAnalysisReady{Insight: insight})

	s, turns := mustReduce(t, s, EventContextAnswer{Kind: ContextDividend})
	assert.Equal(t, StageClosing, s.Stage)
	require.Len(t, s.Notes, 1)
	assert.Equal(t, ContextDividend, s.Notes[0].Kind)
	assert.Equal(t, march, s.Notes[0].Period)
	assert.Equal(t, ContextDividend.Label(), s.Notes[0].Text)

	require.Len(t, turns, 4)
	assert.Equal(t, SpeakerUser, turns[0].Speaker)
	assert.Equal(t, StageConfirmation, turns[1].Stage)
	assert.Equal(t, StageRecommendations, turns[2].Stage)
	assert.Contains(t, turns[2].Text, "Rebuild liquidity")
	assert.Contains(t, turns[2].Text, "$80000.00")
	assert.Contains(t, turns[2].Text, "pausing further draws")
	assert.Equal(t, StageClosing, turns[3].Stage)

	// A second answer in the same conversation is rejected.
	_, _, err := Reduce(s, EventContextAnswer{Kind: ContextNone})
	assert.ErrorIs(t, err, ErrInputNotAccepted)
}

func TestInvalidContextAnswers(t *testing.T) {
	insight := steadyInsight()
	insight.Cash.BufferMonths = 0.5
	s, _ := mustReduce(t, toAnalyzing(t), EventAnalysisReady{Insight: insight})

	for _, ev := range []EventContextAnswer{
		{Kind: "bonus"},
		{Kind: ContextFreeText, Text: "   "},
	} {
		next, turns, err := Reduce(s, ev)
		assert.ErrorIs(t, err, ErrInputNotAccepted)
		assert.Nil(t, turns)
		assert.Equal(t, s, next)
	}

	s, _ = mustReduce(t, s, EventContextAnswer{Kind: ContextFreeText, Text: " bought a van "})
	assert.Equal(t, "bought a van", s.Notes[0].Text)
}

func TestFollowUpTerminates(t *testing.T) {
	s, _ := mustReduce(t, toAnalyzing(t), EventAnalysisReady{Insight: steadyInsight()})
	s, turns := mustReduce(t, s, EventFollowUp{Yes: true})
	assert.True(t, s.Done())
	require.Len(t, turns, 2)
	assert.Equal(t, "Yes", turns[0].Text)

	for _, ev := range []Event{EventStart{}, EventFollowUp{}, EventContextAnswer{Kind: ContextNone}, nil} {
		next, _, err := Reduce(s, ev)
		assert.True(t, errors.Is(err, ErrInputNotAccepted))
		assert.Equal(t, s, next)
	}
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	before := toAnalyzing(t)
	snapshot, err := json.Marshal(before)
	require.NoError(t, err)

	_, _ = mustReduce(t, before, EventAnalysisReady{Insight: steadyInsight()})

	after, err := json.Marshal(before)
	require.NoError(t, err)
	assert.JSONEq(t, string(snapshot), string(after))
}

func TestTranscriptIsAppendOnly(t *testing.T) {
	s1 := toAnalyzing(t)
	s2, _ := mustReduce(t, s1, EventAnalysisReady{Insight: steadyInsight()})
	require.Greater(t, len(s2.Transcript), len(s1.Transcript))
	assert.Equal(t, s1.Transcript, s2.Transcript[:len(s1.Transcript)])
	for i, turn := range s2.Transcript {
		assert.Equal(t, i+1, turn.Seq)
	}
}

func TestReduceIsDeterministic(t *testing.T) {
	a, ta := mustReduce(t, toAnalyzing(t), EventAnalysisReady{Insight: steadyInsight()})
	b, tb := mustReduce(t, toAnalyzing(t), EventAnalysisReady{Insight: steadyInsight()})
	assert.Equal(t, ta, tb)
	assert.Equal(t, a, b)
}

func TestStateSurvivesJSON(t *testing.T) {
	insight := steadyInsight()
	insight.Cash.BufferMonths = 1.5
	s, _ := mustReduce(t, toAnalyzing(t), EventAnalysisReady{Insight: insight})

	raw, err := json.Marshal(s)
	require.NoError(t, err)
	var decoded State
	require.NoError(t, json.Unmarshal(raw, &decoded))

	next, turns, err := Reduce(decoded, EventContextAnswer{Kind: ContextNone})
	require.NoError(t, err)
	assert.Equal(t, StageClosing, next.Stage)
	assert.Contains(t, joined(turns), "Rebuild liquidity")
}

func TestAdviceKind(t *testing.T) {
	tests := []struct {
		name      string
		buffer    float64
		available bool
		employees int
		want      string
	}{
		{"low buffer wins over team size", 1.9, true, 25, AdviceLiquidity},
		{"negative buffer is low", -0.5, true, 2, AdviceLiquidity},
		{"large team gets payroll benchmark", 3, true, 10, AdvicePayroll},
		{"unknown buffer large team", 0, false, 12, AdvicePayroll},
		{"small healthy team", 6, true, 9, AdviceGrowth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := steadyInsight()
			in.Cash.BufferMonths = tt.buffer
			in.Cash.BufferAvailable = tt.available
			in.Profile.EmployeeCount = tt.employees
			assert.Equal(t, tt.want, AdviceKind(in))
		})
	}
}

func TestRecommendPayroll(t *testing.T) {
	in := steadyInsight()
	in.Profile.EmployeeCount = 14
	assert.Contains(t, Recommend(in, nil), "38.5% of revenue for a team of 14")
	assert.Contains(t, Recommend(in, nil), "retail")

	in.KPI.PayrollRatioPct = 61
	assert.Contains(t, Recommend(in, nil), "above the 50%")
}

func TestRecommendIgnoresNotesFromOtherPeriods(t *testing.T) {
	in := steadyInsight()
	notes := []Note{{Kind: ContextOneOffExpense, Period: march.PreviousComparable()}}
	assert.NotContains(t, Recommend(in, notes), "one-off")

	notes = append(notes, Note{Kind: ContextOneOffExpense, Period: march})
	assert.Contains(t, Recommend(in, notes), "one-off")
}

func TestInsightWithSignals(t *testing.T) {
	in := steadyInsight()
	in.Signals = []signal.Signal{{Title: "Overdue invoices"}}
	assert.Contains(t, analysisTexts("March", in), "1 alert to look at: Overdue invoices.")
}

func joined(turns []Turn) string {
	var out string
	for _, t := range turns {
		out += t.Text + "\n"
	}
	return out
}
