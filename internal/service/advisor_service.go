package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/castlemilk/bizpulse/backend/internal/advisor"
	"github.com/castlemilk/bizpulse/backend/internal/analytics"
	"github.com/castlemilk/bizpulse/backend/internal/dashboard"
	"github.com/castlemilk/bizpulse/backend/internal/ledger"
	"github.com/castlemilk/bizpulse/backend/internal/logger"
	"github.com/castlemilk/bizpulse/backend/internal/period"
	"github.com/castlemilk/bizpulse/backend/internal/store"
	"github.com/castlemilk/bizpulse/backend/internal/tenant"
	"github.com/sirupsen/logrus"
	"google.golang.org/protobuf/types/known/structpb"
)

// DefaultFetchTimeout bounds the store reads of a single request.
const DefaultFetchTimeout = 10 * time.Second

type AdvisorService struct {
	store          store.Store
	fetchTimeout   time.Duration
	now            func() time.Time
	defaultProfile *ledger.CompanyProfile
}

// Option configures an AdvisorService.
type Option func(*AdvisorService)

// WithFetchTimeout sets the timeout applied to the store reads of a request.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *AdvisorService) {
		if d > 0 {
			s.fetchTimeout = d
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *AdvisorService) { s.now = now }
}

// WithDefaultProfile is used for accounts that have no stored profile.
func WithDefaultProfile(p ledger.CompanyProfile) Option {
	return func(s *AdvisorService) { s.defaultProfile = &p }
}

func NewAdvisorService(store store.Store, opts ...Option) *AdvisorService {
	s := &AdvisorService{
		store:        store,
		fetchTimeout: DefaultFetchTimeout,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SnapshotRequest selects the period, filter and granularity of a snapshot.
type SnapshotRequest struct {
	Selector    string         `json:"selector"`
	Custom      *period.Period `json:"custom,omitempty"`
	Filter      ledger.Filter  `json:"filter"`
	Granularity string         `json:"granularity,omitempty"`
}

func (r SnapshotRequest) dashboardRequest(now time.Time) (dashboard.Request, error) {
	sel := period.ThisMonth
	if r.Selector != "" {
		parsed, err := period.ParseSelector(r.Selector)
		if err != nil {
			return dashboard.Request{}, err
		}
		sel = parsed
	}
	if r.Custom != nil && r.Selector == "" {
		sel = period.Custom
	}
	g, err := analytics.ParseGranularity(r.Granularity)
	if err != nil {
		return dashboard.Request{}, connect.NewError(connect.CodeInvalidArgument, err)
	}
	return dashboard.Request{
		Selector:    sel,
		Custom:      r.Custom,
		Now:         now,
		Filter:      r.Filter,
		Granularity: g,
	}, nil
}

// snapshot resolves the request period, loads the account data and computes
// the dashboard.
func (s *AdvisorService) snapshot(ctx context.Context, accountID string, req dashboard.Request) (dashboard.Snapshot, error) {
	p, err := period.Resolve(req.Selector, req.Now, req.Custom)
	if err != nil {
		return dashboard.Snapshot{}, err
	}
	ds, err := s.loadDataset(ctx, accountID, p, period.Date(req.Now))
	if err != nil {
		return dashboard.Snapshot{}, err
	}
	return dashboard.Compute(ctx, req, ds)
}

func (s *AdvisorService) log(accountID, procedure string) *logrus.Entry {
	return logger.Component("service").WithFields(logrus.Fields{
		"account_id": accountID,
		"procedure":  procedure,
	})
}

// ComputeSnapshot returns the full dashboard snapshot for a period.
func (s *AdvisorService) ComputeSnapshot(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	accountID, err := tenant.RequireAccount(ctx)
	if err != nil {
		return nil, err
	}
	var in SnapshotRequest
	if err := decodeMsg(req.Msg, &in); err != nil {
		return nil, err
	}
	dreq, err := in.dashboardRequest(s.now())
	if err != nil {
		return nil, toConnectError("compute snapshot", err)
	}

	snap, err := s.snapshot(ctx, accountID, dreq)
	if err != nil {
		s.log(accountID, ComputeSnapshotProcedure).WithError(err).Warn("snapshot failed")
		return nil, toConnectError("compute snapshot", err)
	}
	return respond(snap)
}

// ForecastResponse is the trend and projection of a period.
type ForecastResponse struct {
	Period       period.Period            `json:"period"`
	BaseCurrency string                   `json:"base_currency"`
	Status       dashboard.Status         `json:"status"`
	Forecast     analytics.ForecastResult `json:"forecast"`
}

// GetForecast returns only the trend series and forecast of a period.
func (s *AdvisorService) GetForecast(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	accountID, err := tenant.RequireAccount(ctx)
	if err != nil {
		return nil, err
	}
	var in SnapshotRequest
	if err := decodeMsg(req.Msg, &in); err != nil {
		return nil, err
	}
	dreq, err := in.dashboardRequest(s.now())
	if err != nil {
		return nil, toConnectError("get forecast", err)
	}

	snap, err := s.snapshot(ctx, accountID, dreq)
	if err != nil {
		s.log(accountID, GetForecastProcedure).WithError(err).Warn("forecast failed")
		return nil, toConnectError("get forecast", err)
	}
	return respond(ForecastResponse{
		Period:       snap.Period,
		BaseCurrency: snap.BaseCurrency,
		Status:       snap.Status,
		Forecast:     snap.Forecast,
	})
}

// PeriodPreset is a selectable period resolved against the server clock.
type PeriodPreset struct {
	Selector period.Selector `json:"selector"`
	Label    string          `json:"label"`
	Period   period.Period   `json:"period"`
}

// ListPeriodPresets returns the preset periods in display order.
func (s *AdvisorService) ListPeriodPresets(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	now := s.now()
	presets := make([]PeriodPreset, 0, len(period.Presets))
	for _, sel := range period.Presets {
		p, err := period.Resolve(sel, now, nil)
		if err != nil {
			return nil, toConnectError("list period presets", err)
		}
		presets = append(presets, PeriodPreset{Selector: sel, Label: sel.Label(), Period: p})
	}
	return respond(map[string]any{"presets": presets})
}

// Event types accepted by Converse.
const (
	EventStart         = "start"
	EventSelectPeriod  = "select_period"
	EventContextAnswer = "context_answer"
	EventFollowUp      = "follow_up"
)

// ConverseEvent is a user action in the advisory conversation.
type ConverseEvent struct {
	Type     string         `json:"type"`
	Selector string         `json:"selector,omitempty"`
	Custom   *period.Period `json:"custom,omitempty"`
	Kind     string         `json:"kind,omitempty"`
	Text     string         `json:"text,omitempty"`
	Yes      bool           `json:"yes,omitempty"`
}

// ConverseRequest carries the conversation so far and the next event. The
// server keeps no conversation state between calls.
type ConverseRequest struct {
	State  *advisor.State `json:"state,omitempty"`
	Event  ConverseEvent  `json:"event"`
	Filter ledger.Filter  `json:"filter"`
}

// ConverseResponse is the new state and the turns the event produced.
type ConverseResponse struct {
	State    advisor.State       `json:"state"`
	Turns    []advisor.Turn      `json:"turns"`
	Snapshot *dashboard.Snapshot `json:"snapshot,omitempty"`
}

// Converse advances the advisory conversation by one user event. Selecting
// a period also computes the snapshot and feeds the analysis back in, so the
// response already holds the analysis turns.
func (s *AdvisorService) Converse(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	accountID, err := tenant.RequireAccount(ctx)
	if err != nil {
		return nil, err
	}
	var in ConverseRequest
	if err := decodeMsg(req.Msg, &in); err != nil {
		return nil, err
	}
	state := advisor.New()
	if in.State != nil {
		state = *in.State
	}

	out, err := s.converse(ctx, accountID, state, in)
	if err != nil {
		s.log(accountID, ConverseProcedure).WithError(err).WithField("stage", state.Stage).Warn("conversation event rejected")
		return nil, toConnectError("converse", err)
	}
	return respond(out)
}

func (s *AdvisorService) converse(ctx context.Context, accountID string, state advisor.State, in ConverseRequest) (ConverseResponse, error) {
	var ev advisor.Event
	switch in.Event.Type {
	case EventStart:
		ev = advisor.EventStart{}
	case EventContextAnswer:
		ev = advisor.EventContextAnswer{Kind: parseContextKind(in.Event.Kind), Text: in.Event.Text}
	case EventFollowUp:
		ev = advisor.EventFollowUp{Yes: in.Event.Yes}
	case EventSelectPeriod:
		return s.selectPeriod(ctx, accountID, state, in)
	default:
		return ConverseResponse{}, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("unknown event type %q", in.Event.Type))
	}

	next, turns, err := advisor.Reduce(state, ev)
	if err != nil {
		return ConverseResponse{}, err
	}
	return ConverseResponse{State: next, Turns: turns}, nil
}

func (s *AdvisorService) selectPeriod(ctx context.Context, accountID string, state advisor.State, in ConverseRequest) (ConverseResponse, error) {
	dreq, err := SnapshotRequest{
		Selector: in.Event.Selector,
		Custom:   in.Event.Custom,
		Filter:   in.Filter,
	}.dashboardRequest(s.now())
	if err != nil {
		return ConverseResponse{}, err
	}
	p, err := period.Resolve(dreq.Selector, dreq.Now, dreq.Custom)
	if err != nil {
		return ConverseResponse{}, err
	}

	next, turns, err := advisor.Reduce(state, advisor.EventPeriodSelected{Label: dreq.Selector.Label(), Period: p})
	if err != nil {
		return ConverseResponse{}, err
	}
	snap, err := s.snapshot(ctx, accountID, dreq)
	if err != nil {
		return ConverseResponse{}, err
	}
	next, more, err := advisor.Reduce(next, advisor.EventAnalysisReady{Insight: snap.Insight()})
	if err != nil {
		return ConverseResponse{}, err
	}
	return ConverseResponse{State: next, Turns: append(turns, more...), Snapshot: &snap}, nil
}

// parseContextKind accepts either the kind key or its option label.
func parseContextKind(raw string) advisor.ContextKind {
	raw = strings.TrimSpace(raw)
	for _, k := range advisor.ContextKinds {
		if strings.EqualFold(raw, string(k)) || strings.EqualFold(raw, k.Label()) {
			return k
		}
	}
	return advisor.ContextKind(raw)
}
