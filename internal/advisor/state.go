// Package advisor sequences the dashboard analytics into a short guided
// conversation. Reduce is a pure function of (state, event); any delay
// between messages is left to whoever renders the transcript.
package advisor

import (
	"errors"

	"github.com/castlemilk/bizpulse/backend/internal/analytics"
	"github.com/castlemilk/bizpulse/backend/internal/ledger"
	"github.com/castlemilk/bizpulse/backend/internal/period"
	"github.com/castlemilk/bizpulse/backend/internal/signal"
)

// ErrInputNotAccepted is returned when the current stage does not take the
// event. The state is left unchanged.
var ErrInputNotAccepted = errors.New("input not accepted in current stage")

// Stage is a node of the conversation.
type Stage string

const (
	StageGreeting        Stage = "greeting"
	StagePeriodSelection Stage = "period_selection"
	StageAnalyzing       Stage = "analyzing"
	StageAnalysisShown   Stage = "analysis_shown"
	StageAskingContext   Stage = "asking_context"
	StageConfirmation    Stage = "confirmation"
	StageRecommendations Stage = "recommendations"
	StageClosing         Stage = "closing"
	StageTerminal        Stage = "terminal"
)

// Speaker identifies who produced a turn.
type Speaker string

const (
	SpeakerAssistant Speaker = "assistant"
	SpeakerUser      Speaker = "user"
)

// Turn is one transcript entry. Turns are never edited once appended.
type Turn struct {
	ID      string   `json:"id"`
	Seq     int      `json:"seq"`
	Stage   Stage    `json:"stage"`
	Speaker Speaker  `json:"speaker"`
	Text    string   `json:"text"`
	Options []string `json:"options,omitempty"`
}

// ContextKind is the category of a user-supplied context answer.
type ContextKind string

const (
	ContextDividend      ContextKind = "dividend"
	ContextOneOffExpense ContextKind = "one_off_expense"
	ContextNewClient     ContextKind = "new_client"
	ContextNone          ContextKind = "none"
	ContextFreeText      ContextKind = "free_text"
)

// ContextKinds lists the answer options in the order they are offered.
var ContextKinds = []ContextKind{ContextDividend, ContextOneOffExpense, ContextNewClient, ContextNone, ContextFreeText}

// Label is the option text shown for the kind.
func (k ContextKind) Label() string {
	switch k {
	case ContextDividend:
		return "I took a dividend"
	case ContextOneOffExpense:
		return "There was a one-off expense"
	case ContextNewClient:
		return "We won a new client or had a special event"
	case ContextNone:
		return "Nothing unusual"
	case ContextFreeText:
		return "Something else"
	}
	return string(k)
}

func (k ContextKind) valid() bool {
	for _, known := range ContextKinds {
		if k == known {
			return true
		}
	}
	return false
}

// Note is qualitative context captured from the user, tagged with the period
// it was given for.
type Note struct {
	Seq    int           `json:"seq"`
	Kind   ContextKind   `json:"kind"`
	Text   string        `json:"text"`
	Period period.Period `json:"period"`
}

// Insight is the analysis the conversation discloses. It is built from a
// dashboard snapshot once all aggregations have completed.
type Insight struct {
	// Status and Message carry the snapshot status. StatusNoData means there
	// was nothing to analyse.
	Status       string                  `json:"status,omitempty"`
	Message      string                  `json:"message,omitempty"`
	Period       period.Period           `json:"period"`
	BaseCurrency string                  `json:"base_currency"`
	KPI          analytics.KPISnapshot   `json:"kpi"`
	OutlierCount int                     `json:"outlier_count"`
	Expenses     []analytics.ExpenseChip `json:"expenses"`
	Cash         analytics.CashPosition  `json:"cash"`
	Signals      []signal.Signal         `json:"signals"`
	Profile      ledger.CompanyProfile   `json:"profile"`
}

// StatusNoData is the snapshot status of a period without usable records.
const StatusNoData = "no_data"

// NoData reports whether the snapshot had no usable records.
func (i Insight) NoData() bool {
	return i.Status == StatusNoData
}

// LowBuffer reports whether the cash buffer is known and under two months.
func (i Insight) LowBuffer() bool {
	return i.Cash.BufferAvailable && i.Cash.BufferMonths < signal.LowBufferMonths
}

// NeedsContext reports whether the numbers warrant asking the user what
// happened before giving advice.
func (i Insight) NeedsContext() bool {
	return i.KPI.ExpensesMoMPct() > signal.ExpenseGrowthPct || i.LowBuffer()
}

// State is the full conversation. It is a value: Reduce returns a new State
// and never modifies the one passed in.
type State struct {
	Stage       Stage         `json:"stage"`
	Transcript  []Turn        `json:"transcript"`
	Notes       []Note        `json:"captured_notes"`
	Period      period.Period `json:"period"`
	PeriodLabel string        `json:"period_label,omitempty"`
	Insight     *Insight      `json:"insight,omitempty"`
}

// New returns a conversation waiting to start.
func New() State {
	return State{Stage: StageGreeting}
}

// Done reports whether the conversation has ended.
func (s State) Done() bool {
	return s.Stage == StageTerminal
}

// Event is an input to Reduce.
type Event interface {
	accepts(Stage) bool
}

// EventStart opens the conversation.
type EventStart struct{}

// EventPeriodSelected is the user choosing the period to analyse.
type EventPeriodSelected struct {
	Label  string
	Period period.Period
}

// EventAnalysisReady delivers the computed insight for the selected period.
type EventAnalysisReady struct {
	Insight Insight
}

// EventContextAnswer is the user explaining the period's numbers.
type EventContextAnswer struct {
	Kind ContextKind
	Text string
}

// EventFollowUp answers the closing yes/no question.
type EventFollowUp struct {
	Yes bool
}

func (EventStart) accepts(s Stage) bool          { return s == StageGreeting }
func (EventPeriodSelected) accepts(s Stage) bool { return s == StagePeriodSelection }
func (EventAnalysisReady) accepts(s Stage) bool  { return s == StageAnalyzing }
func (EventContextAnswer) accepts(s Stage) bool  { return s == StageAskingContext }
func (EventFollowUp) accepts(s Stage) bool       { return s == StageClosing }
