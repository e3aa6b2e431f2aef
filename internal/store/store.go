package store

import (
	"context"
	"errors"
	"time"

	"github.com/castlemilk/bizpulse/backend/internal/ledger"
	"github.com/castlemilk/bizpulse/backend/internal/period"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=store.go -destination=store_mock.go -package=store

// ErrNotFound is returned when an account or document does not exist.
var ErrNotFound = errors.New("not found")

// Balance is the cash held at the start of AsOf.
type Balance struct {
	AsOf   time.Time       `json:"as_of"`
	Amount decimal.Decimal `json:"amount"`
}

// Store defines the data access used by the service. Date ranges are
// inclusive calendar dates.
type Store interface {
	// Ledger reads
	ListRevenue(ctx context.Context, accountID string, start, end time.Time) ([]ledger.RevenueLine, error)
	ListInvoices(ctx context.Context, accountID string, start, end time.Time) ([]ledger.Invoice, error)
	ListCashEntries(ctx context.Context, accountID string, start, end time.Time) ([]ledger.CashEntry, error)
	// ListPnL returns the monthly rows whose month overlaps the range.
	ListPnL(ctx context.Context, accountID string, start, end time.Time) ([]ledger.PnLLineItem, error)

	// GetOpeningCash returns the latest balance recorded on or before asOf,
	// or nil when there is none.
	GetOpeningCash(ctx context.Context, accountID string, asOf time.Time) (*Balance, error)
	GetCompanyProfile(ctx context.Context, accountID string) (*ledger.CompanyProfile, error)
	// GetExpenseSpikes returns the expense categories the data source flags
	// as spiking in any month overlapping the range.
	GetExpenseSpikes(ctx context.Context, accountID string, start, end time.Time) (map[string]bool, error)

	// Writers, used by seeding and imports
	PutRevenue(ctx context.Context, accountID string, lines []ledger.RevenueLine) error
	PutInvoices(ctx context.Context, accountID string, invoices []ledger.Invoice) error
	PutCashEntries(ctx context.Context, accountID string, entries []ledger.CashEntry) error
	PutPnL(ctx context.Context, accountID string, rows []ledger.PnLLineItem) error
	PutOpeningCash(ctx context.Context, accountID string, asOf time.Time, amount decimal.Decimal) error
	PutCompanyProfile(ctx context.Context, profile ledger.CompanyProfile) error
	// PutExpenseSpikes replaces the flags of the month holding month.
	PutExpenseSpikes(ctx context.Context, accountID string, month time.Time, categories []string) error
}

// inRange compares calendar dates, so a timestamp on end is inside.
func inRange(t, start, end time.Time) bool {
	d := period.Date(t)
	return !d.Before(period.Date(start)) && !d.After(period.Date(end))
}

// dayAfter is the exclusive upper bound of a range ending on end.
func dayAfter(end time.Time) time.Time {
	return period.Date(end).AddDate(0, 0, 1)
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
