package service

import (
	"context"
	"errors"
	"time"

	"github.com/castlemilk/bizpulse/backend/internal/analytics"
	"github.com/castlemilk/bizpulse/backend/internal/dashboard"
	"github.com/castlemilk/bizpulse/backend/internal/ledger"
	"github.com/castlemilk/bizpulse/backend/internal/period"
	"github.com/castlemilk/bizpulse/backend/internal/store"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// fetchWindow is the date range a snapshot of p taken on today reads: the
// period itself, its comparison periods and the weekly forecast history.
func fetchWindow(p period.Period, today time.Time) period.Period {
	start := p.Start
	for _, t := range []time.Time{p.PreviousComparable().Start, p.SamePeriodLastYear().Start, analytics.HistoryStart(p, today)} {
		if t.Before(start) {
			start = t
		}
	}
	return period.Period{Start: start, End: p.End}
}

// loadDataset reads everything a snapshot of p needs for one account. The
// reads run concurrently and share the fetch timeout.
func (s *AdvisorService) loadDataset(ctx context.Context, accountID string, p period.Period, today time.Time) (dashboard.Dataset, error) {
	ctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	w := fetchWindow(p, today)
	var ds dashboard.Dataset

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		profile, err := s.store.GetCompanyProfile(gctx, accountID)
		if errors.Is(err, store.ErrNotFound) && s.defaultProfile != nil {
			fallback := *s.defaultProfile
			fallback.AccountID = accountID
			profile, err = &fallback, nil
		}
		if err != nil {
			return &fetchError{what: "company profile", err: err}
		}
		ds.Profile = *profile
		return nil
	})
	g.Go(func() error {
		lines, err := s.store.ListRevenue(gctx, accountID, w.Start, w.End)
		if err != nil {
			return &fetchError{what: "revenue", err: err}
		}
		ds.Revenue = lines
		return nil
	})
	g.Go(func() error {
		invoices, err := s.store.ListInvoices(gctx, accountID, w.Start, w.End)
		if err != nil {
			return &fetchError{what: "invoices", err: err}
		}
		ds.Invoices = invoices
		return nil
	})
	g.Go(func() error {
		rows, err := s.store.ListPnL(gctx, accountID, w.Start, w.End)
		if err != nil {
			return &fetchError{what: "pnl", err: err}
		}
		ds.PnL = rows
		return nil
	})
	g.Go(func() error {
		spikes, err := s.store.GetExpenseSpikes(gctx, accountID, p.Start, p.End)
		if err != nil {
			return &fetchError{what: "expense spikes", err: err}
		}
		ds.ExpenseSpikes = spikes
		return nil
	})
	g.Go(func() error {
		balance, err := s.store.GetOpeningCash(gctx, accountID, p.Start)
		if err != nil {
			return &fetchError{what: "opening cash", err: err}
		}
		start := w.Start
		if balance != nil && balance.AsOf.Before(start) {
			start = balance.AsOf
		}
		entries, err := s.store.ListCashEntries(gctx, accountID, start, w.End)
		if err != nil {
			return &fetchError{what: "cash entries", err: err}
		}
		ds.Cash = entries
		ds.OpeningCash = rollForward(balance, entries, p.Start)
		return nil
	})

	if err := g.Wait(); err != nil {
		return dashboard.Dataset{}, err
	}
	return ds, nil
}

// rollForward moves a stored balance to the start of the period by applying
// the valid cash movements dated from the balance date up to the day before
// start. It returns nil when no balance was ever recorded.
func rollForward(balance *store.Balance, entries []ledger.CashEntry, start time.Time) *decimal.Decimal {
	if balance == nil {
		return nil
	}
	amount := balance.Amount
	for _, e := range entries {
		if e.Date.Before(balance.AsOf) || !e.Date.Before(start) || e.Validate() != nil {
			continue
		}
		if e.Direction == ledger.CashIn {
			amount = amount.Add(e.MustAmountBase())
		} else {
			amount = amount.Sub(e.MustAmountBase())
		}
	}
	return &amount
}
