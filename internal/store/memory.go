package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/castlemilk/bizpulse/backend/internal/ledger"
	"github.com/shopspring/decimal"
)

// account is everything held for a single tenant.
type account struct {
	revenue  map[string]ledger.RevenueLine
	invoices map[string]ledger.Invoice
	cash     map[string]ledger.CashEntry
	pnl      map[string]ledger.PnLLineItem
	balances []Balance
	spikes   map[string]spikesDoc
}

func newAccount() *account {
	return &account{
		revenue:  make(map[string]ledger.RevenueLine),
		invoices: make(map[string]ledger.Invoice),
		cash:     make(map[string]ledger.CashEntry),
		pnl:      make(map[string]ledger.PnLLineItem),
		spikes:   make(map[string]spikesDoc),
	}
}

// MemoryStore implements Store interface with in-memory storage
type MemoryStore struct {
	mu sync.RWMutex

	accounts map[string]*account
	profiles map[string]ledger.CompanyProfile
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[string]*account),
		profiles: make(map[string]ledger.CompanyProfile),
	}
}

// must be called with the write lock held
func (s *MemoryStore) account(accountID string) *account {
	a, ok := s.accounts[accountID]
	if !ok {
		a = newAccount()
		s.accounts[accountID] = a
	}
	return a
}

func listRange[T ledger.Entry](items map[string]T, start, end time.Time) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if inRange(item.Core().Date, start, end) {
			out = append(out, item)
		}
	}
	sortRecords(out)
	return out
}

// ListRevenue returns revenue lines dated within [start, end]
func (s *MemoryStore) ListRevenue(ctx context.Context, accountID string, start, end time.Time) ([]ledger.RevenueLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[accountID]
	if !ok {
		return []ledger.RevenueLine{}, nil
	}
	return listRange(a.revenue, start, end), nil
}

// ListInvoices returns invoices issued within [start, end]
func (s *MemoryStore) ListInvoices(ctx context.Context, accountID string, start, end time.Time) ([]ledger.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[accountID]
	if !ok {
		return []ledger.Invoice{}, nil
	}
	return listRange(a.invoices, start, end), nil
}

// ListCashEntries returns cash movements dated within [start, end]
func (s *MemoryStore) ListCashEntries(ctx context.Context, accountID string, start, end time.Time) ([]ledger.CashEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[accountID]
	if !ok {
		return []ledger.CashEntry{}, nil
	}
	return listRange(a.cash, start, end), nil
}

// ListPnL returns the P&L rows whose month overlaps [start, end]
func (s *MemoryStore) ListPnL(ctx context.Context, accountID string, start, end time.Time) ([]ledger.PnLLineItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[accountID]
	if !ok {
		return []ledger.PnLLineItem{}, nil
	}
	first := monthStart(start)
	out := make([]ledger.PnLLineItem, 0, len(a.pnl))
	for _, row := range a.pnl {
		if inRange(row.Month, first, end) {
			out = append(out, clonePnL(row))
		}
	}
	sortPnL(out)
	return out, nil
}

// GetOpeningCash returns the latest balance recorded on or before asOf
func (s *MemoryStore) GetOpeningCash(ctx context.Context, accountID string, asOf time.Time) (*Balance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[accountID]
	if !ok {
		return nil, nil
	}
	var latest *Balance
	for i := range a.balances {
		b := a.balances[i]
		if b.AsOf.After(asOf) {
			continue
		}
		if latest == nil || b.AsOf.After(latest.AsOf) {
			latest = &b
		}
	}
	return latest, nil
}

// GetCompanyProfile retrieves the profile of an account
func (s *MemoryStore) GetCompanyProfile(ctx context.Context, accountID string) (*ledger.CompanyProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profile, ok := s.profiles[accountID]
	if !ok {
		return nil, fmt.Errorf("company profile %s: %w", accountID, ErrNotFound)
	}
	return &profile, nil
}

// GetExpenseSpikes returns the categories flagged in the months overlapping
// [start, end]
func (s *MemoryStore) GetExpenseSpikes(ctx context.Context, accountID string, start, end time.Time) (map[string]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[accountID]
	if !ok {
		return map[string]bool{}, nil
	}
	first := monthStart(start)
	var months []spikesDoc
	for _, d := range a.spikes {
		if inRange(d.Month, first, end) {
			months = append(months, d)
		}
	}
	return spikeSet(months), nil
}

// PutRevenue upserts revenue lines by id
func (s *MemoryStore) PutRevenue(ctx context.Context, accountID string, lines []ledger.RevenueLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.account(accountID)
	for _, l := range lines {
		a.revenue[l.ID] = l
	}
	return nil
}

// PutInvoices upserts invoices by id
func (s *MemoryStore) PutInvoices(ctx context.Context, accountID string, invoices []ledger.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.account(accountID)
	for _, inv := range invoices {
		a.invoices[inv.ID] = inv
	}
	return nil
}

// PutCashEntries upserts cash entries by id
func (s *MemoryStore) PutCashEntries(ctx context.Context, accountID string, entries []ledger.CashEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.account(accountID)
	for _, e := range entries {
		a.cash[e.ID] = e
	}
	return nil
}

// PutPnL upserts P&L rows by month
func (s *MemoryStore) PutPnL(ctx context.Context, accountID string, rows []ledger.PnLLineItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.account(accountID)
	for _, row := range rows {
		row.Month = monthStart(row.Month)
		a.pnl[row.Month.Format("2006-01")] = clonePnL(row)
	}
	return nil
}

// PutOpeningCash records a balance; a second balance for the same day
// replaces the first.
func (s *MemoryStore) PutOpeningCash(ctx context.Context, accountID string, asOf time.Time, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.account(accountID)
	asOf = asOf.UTC()
	for i := range a.balances {
		if a.balances[i].AsOf.Equal(asOf) {
			a.balances[i].Amount = amount
			return nil
		}
	}
	a.balances = append(a.balances, Balance{AsOf: asOf, Amount: amount})
	return nil
}

// PutCompanyProfile creates or replaces a profile
func (s *MemoryStore) PutCompanyProfile(ctx context.Context, profile ledger.CompanyProfile) error {
	if profile.AccountID == "" {
		return fmt.Errorf("company profile: account id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.profiles[profile.AccountID] = profile
	s.account(profile.AccountID)
	return nil
}

// PutExpenseSpikes replaces the spiking categories of one month
func (s *MemoryStore) PutExpenseSpikes(ctx context.Context, accountID string, month time.Time, categories []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	spikes := append([]string(nil), categories...)
	sort.Strings(spikes)
	d := newSpikesDoc(accountID, month, spikes)
	s.account(accountID).spikes[d.Key] = d
	return nil
}

func clonePnL(row ledger.PnLLineItem) ledger.PnLLineItem {
	row.Buckets = append([]ledger.Bucket(nil), row.Buckets...)
	return row
}
