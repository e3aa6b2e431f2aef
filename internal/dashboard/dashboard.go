// Package dashboard is the single entry point that turns an account's raw
// ledger data and a period selection into a complete, immutable Snapshot.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/castlemilk/bizpulse/backend/internal/advisor"
	"github.com/castlemilk/bizpulse/backend/internal/analytics"
	"github.com/castlemilk/bizpulse/backend/internal/apperr"
	"github.com/castlemilk/bizpulse/backend/internal/ledger"
	"github.com/castlemilk/bizpulse/backend/internal/logger"
	"github.com/castlemilk/bizpulse/backend/internal/money"
	"github.com/castlemilk/bizpulse/backend/internal/period"
	"github.com/castlemilk/bizpulse/backend/internal/signal"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// DefaultBaseCurrency is used when the company profile does not name one.
const DefaultBaseCurrency = "USD"

// Dataset is everything known about one account. The caller owns it;
// Compute only reads from it.
type Dataset struct {
	Profile     ledger.CompanyProfile
	Revenue     []ledger.RevenueLine
	Invoices    []ledger.Invoice
	Cash        []ledger.CashEntry
	PnL         []ledger.PnLLineItem
	OpeningCash *decimal.Decimal
	// ExpenseSpikes flags expense categories as spiking in the selected
	// period. It is supplied by
	// the data source and passed through as is.
	ExpenseSpikes map[string]bool
}

// Request selects what to compute.
type Request struct {
	Selector    period.Selector
	Custom      *period.Period
	Now         time.Time
	Filter      ledger.Filter
	Granularity analytics.Granularity
}

// Status tells the presentation layer how far to trust the snapshot.
type Status string

const (
	StatusOK      Status = "ok"
	StatusPartial Status = "partial"
	StatusNoData  Status = advisor.StatusNoData
)

// Snapshot is the full result of one Compute call.
type Snapshot struct {
	Status       Status                   `json:"status"`
	Message      string                   `json:"message,omitempty"`
	Selector     period.Selector          `json:"selector"`
	Period       period.Period            `json:"period"`
	BaseCurrency string                   `json:"base_currency"`
	Profile      ledger.CompanyProfile    `json:"profile"`
	KPI          analytics.KPISnapshot    `json:"kpi"`
	Forecast     analytics.ForecastResult `json:"forecast"`
	Invoices     analytics.InvoiceSummary `json:"invoices"`
	Outliers     analytics.OutlierReport  `json:"outliers"`
	Expenses     []analytics.ExpenseChip  `json:"expenses"`
	Cash         analytics.CashPosition   `json:"cash"`
	Signals      []signal.Signal          `json:"signals"`
	AllClear     bool                     `json:"all_clear"`
	Rejected     []ledger.Rejection       `json:"rejected,omitempty"`
}

// Insight extracts what the advisor discloses from the snapshot.
func (s Snapshot) Insight() advisor.Insight {
	return advisor.Insight{
		Status:       string(s.Status),
		Message:      s.Message,
		Period:       s.Period,
		BaseCurrency: s.BaseCurrency,
		KPI:          s.KPI,
		OutlierCount: s.Outliers.OutlierCount,
		Expenses:     s.Expenses,
		Cash:         s.Cash,
		Signals:      s.Signals,
		Profile:      s.Profile,
	}
}

type validated struct {
	revenue  []ledger.RevenueLine
	invoices []ledger.Invoice
	cash     []ledger.CashEntry
	pnl      []ledger.PnLLineItem
	rejected []ledger.Rejection
}

func validate(ds Dataset) validated {
	var v validated
	var rej []ledger.Rejection
	v.revenue, rej = ledger.Partition("revenue", ds.Revenue)
	v.rejected = append(v.rejected, rej...)
	v.invoices, rej = ledger.Partition("invoice", ds.Invoices)
	v.rejected = append(v.rejected, rej...)
	v.cash, rej = ledger.Partition("cash", ds.Cash)
	v.rejected = append(v.rejected, rej...)
	v.pnl, rej = ledger.Partition("pnl", ds.PnL)
	v.rejected = append(v.rejected, rej...)
	return v
}

// Compute resolves the period, validates and filters the dataset, runs the
// four primary aggregations concurrently, then the forecast and the signal
// rules. Range and configuration errors are returned before any aggregation
// starts. Records failing integrity checks are excluded and listed in
// Snapshot.Rejected. The result depends only on req and ds.
func Compute(ctx context.Context, req Request, ds Dataset) (Snapshot, error) {
	base := ds.Profile.BaseCurrency
	if base == "" {
		base = DefaultBaseCurrency
	}
	base, err := money.ValidateCode(base)
	if err != nil {
		return Snapshot{}, fmt.Errorf("company profile: %w", err)
	}

	p, err := period.Resolve(req.Selector, req.Now, req.Custom)
	if err != nil {
		return Snapshot{}, err
	}
	granularity := req.Granularity
	if granularity == "" {
		granularity = analytics.GranularityMonth
	}
	today := period.Date(req.Now)
	filter := req.Filter
	if filter.Today.IsZero() {
		filter.Today = today
	}

	log := logger.Component("dashboard").WithFields(logrus.Fields{
		"account_id": ds.Profile.AccountID,
		"period":     p.String(),
	})

	v := validate(ds)
	prev := p.PreviousComparable()
	yearAgo := p.SamePeriodLastYear()

	current := analytics.PeriodData{Revenue: ledger.Select(v.revenue, p, filter), PnL: ledger.SelectPnL(v.pnl, p)}
	previous := analytics.PeriodData{Revenue: ledger.Select(v.revenue, prev, filter), PnL: ledger.SelectPnL(v.pnl, prev)}
	lastYear := analytics.PeriodData{Revenue: ledger.Select(v.revenue, yearAgo, filter), PnL: ledger.SelectPnL(v.pnl, yearAgo)}
	invoices := ledger.Select(v.invoices, p, filter)
	cash := ledger.Select(v.cash, p, filter)

	snap := Snapshot{
		Status:       StatusOK,
		Selector:     req.Selector,
		Period:       p,
		BaseCurrency: base,
		Profile:      ds.Profile,
		Rejected:     v.rejected,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		snap.KPI = analytics.AggregateKPIs(analytics.KPIInput{
			Period:        p,
			BaseCurrency:  base,
			Current:       current,
			PreviousMonth: previous,
			PreviousYear:  lastYear,
		})
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		snap.Invoices = analytics.SummarizeInvoices(invoices, today)
		snap.Outliers = analytics.DetectOutliers(invoices, base)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		totals := analytics.ComputeTotals(current)
		snap.Cash = analytics.ComputeCash(analytics.NewCashInput(ds.OpeningCash, cash, totals, p.Months()))
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		curr := analytics.CategoriesFromPnL(current.PnL, ds.ExpenseSpikes)
		before := analytics.CategoryTotals(analytics.CategoriesFromPnL(previous.PnL, nil))
		snap.Expenses = analytics.CategorizeExpenses(curr, before)
		return nil
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}

	history := ledger.Select(v.revenue, period.Period{End: p.End}, filter)
	snap.Forecast = analytics.Forecast(history, p, granularity, today)

	snap.Signals = signal.Generate(signal.Input{
		Period:       p,
		BaseCurrency: base,
		KPI:          snap.KPI,
		Invoices:     snap.Invoices,
		Cash:         snap.Cash,
	})

	switch {
	case current.IsEmpty() && len(invoices) == 0 && len(cash) == 0:
		snap.Status = StatusNoData
		snap.Message = (&apperr.InsufficientDataError{
			Stage:  "dashboard",
			Reason: fmt.Sprintf("no usable records for %s", p.String()),
		}).Error()
	case len(v.rejected) > 0:
		snap.Status = StatusPartial
	}
	// An empty period is never all clear.
	snap.AllClear = snap.Status != StatusNoData && signal.AllClear(snap.Signals)

	log.WithFields(logrus.Fields{
		"status":   snap.Status,
		"rejected": len(v.rejected),
		"signals":  len(snap.Signals),
	}).Debug("computed snapshot")
	return snap, nil
}
