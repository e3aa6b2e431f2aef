package advisor

import (
	"fmt"
	"slices"
	"strings"

	"github.com/castlemilk/bizpulse/backend/internal/period"
	"github.com/google/uuid"
)

var turnNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://bizpulse.app/advisor/turns"))

// Reduce applies ev to s and returns the next state along with the turns
// emitted by the transition. Automatic transitions run to completion, so the
// returned state always waits for user or system input, or is terminal.
// When the stage does not accept ev, s is returned unchanged together with
// ErrInputNotAccepted.
func Reduce(s State, ev Event) (State, []Turn, error) {
	if ev == nil || !ev.accepts(s.Stage) {
		return s, nil, fmt.Errorf("%w: %T in stage %s", ErrInputNotAccepted, ev, s.Stage)
	}

	r := &reduction{next: s, base: len(s.Transcript)}
	r.next.Transcript = slices.Clone(s.Transcript)
	r.next.Notes = slices.Clone(s.Notes)

	switch e := ev.(type) {
	case EventStart:
		r.start()
	case EventPeriodSelected:
		if e.Period.IsZero() {
			return s, nil, fmt.Errorf("%w: no period selected", ErrInputNotAccepted)
		}
		r.selectPeriod(e)
	case EventAnalysisReady:
		r.showAnalysis(e.Insight)
	case EventContextAnswer:
		text := strings.TrimSpace(e.Text)
		if !e.Kind.valid() || (e.Kind == ContextFreeText && text == "") {
			return s, nil, fmt.Errorf("%w: invalid context answer %q", ErrInputNotAccepted, e.Kind)
		}
		r.captureContext(e.Kind, text)
	case EventFollowUp:
		r.close(e.Yes)
	}
	return r.next, r.emitted, nil
}

type reduction struct {
	next    State
	base    int
	emitted []Turn
}

func (r *reduction) say(speaker Speaker, text string, options ...string) {
	seq := r.base + len(r.emitted) + 1
	turn := Turn{
		ID:      uuid.NewSHA1(turnNamespace, []byte(fmt.Sprintf("%d|%s|%s", seq, r.next.Stage, text))).String(),
		Seq:     seq,
		Stage:   r.next.Stage,
		Speaker: speaker,
		Text:    text,
		Options: options,
	}
	r.emitted = append(r.emitted, turn)
	r.next.Transcript = append(r.next.Transcript, turn)
}

func (r *reduction) enter(stage Stage) {
	r.next.Stage = stage
}

func (r *reduction) start() {
	r.say(SpeakerAssistant, greetingText)
	r.enter(StagePeriodSelection)
	r.say(SpeakerAssistant, periodPromptText, presetOptions()...)
}

func presetOptions() []string {
	options := make([]string, 0, len(period.Presets))
	for _, sel := range period.Presets {
		options = append(options, sel.Label())
	}
	return options
}

func (r *reduction) selectPeriod(e EventPeriodSelected) {
	label := e.Label
	if label == "" {
		label = e.Period.String()
	}
	r.say(SpeakerUser, label)
	r.next.Period = e.Period
	r.next.PeriodLabel = label
	r.enter(StageAnalyzing)
	r.say(SpeakerAssistant, analyzingText(label, e.Period))
}

func (r *reduction) showAnalysis(in Insight) {
	if in.NoData() {
		r.noData()
		return
	}
	insight := in
	r.next.Insight = &insight
	r.enter(StageAnalysisShown)
	for _, text := range analysisTexts(r.next.PeriodLabel, insight) {
		r.say(SpeakerAssistant, text)
	}

	if insight.NeedsContext() {
		r.enter(StageAskingContext)
		options := make([]string, len(ContextKinds))
		for i, k := range ContextKinds {
			options[i] = k.Label()
		}
		r.say(SpeakerAssistant, contextQuestion(insight), options...)
		return
	}
	r.recommend()
}

// noData reports the empty period and goes back to period selection. There
// is nothing to recommend from.
func (r *reduction) noData() {
	r.next.Insight = nil
	r.enter(StageAnalysisShown)
	r.say(SpeakerAssistant, noDataText(r.next.PeriodLabel, r.next.Period))
	r.enter(StagePeriodSelection)
	r.say(SpeakerAssistant, retryPromptText, append([]string{RetryOption}, presetOptions()...)...)
}

func (r *reduction) captureContext(kind ContextKind, text string) {
	if text == "" {
		text = kind.Label()
	}
	r.say(SpeakerUser, text)
	r.next.Notes = append(r.next.Notes, Note{
		Seq:    len(r.next.Notes) + 1,
		Kind:   kind,
		Text:   text,
		Period: r.next.Period,
	})
	r.enter(StageConfirmation)
	r.say(SpeakerAssistant, confirmationText(kind, text))
	r.recommend()
}

func (r *reduction) recommend() {
	r.enter(StageRecommendations)
	var insight Insight
	if r.next.Insight != nil {
		insight = *r.next.Insight
	}
	r.say(SpeakerAssistant, Recommend(insight, r.next.Notes))
	r.enter(StageClosing)
	r.say(SpeakerAssistant, followUpQuestion, "Yes", "No")
}

func (r *reduction) close(yes bool) {
	if yes {
		r.say(SpeakerUser, "Yes")
		r.enter(StageTerminal)
		r.say(SpeakerAssistant, farewellYes)
		return
	}
	r.say(SpeakerUser, "No")
	r.enter(StageTerminal)
	r.say(SpeakerAssistant, farewellNo)
}
