package store

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/castlemilk/bizpulse/backend/internal/ledger"
	"github.com/shopspring/decimal"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	colRevenue  = "revenue"
	colInvoices = "invoices"
	colCash     = "cashEntries"
	colPnL      = "pnl"
	colBalances = "openingBalances"
	colProfiles = "companyProfiles"
	colSpikes   = "expenseSpikes"

	// maxBatchWrites is the Firestore limit on writes per batch.
	maxBatchWrites = 500
)

// FirestoreStore implements the Store interface using Firestore
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore creates a new Firestore-backed store
func NewFirestoreStore(client *firestore.Client) Store {
	return &FirestoreStore{
		client: client,
	}
}

// listRecords runs a date range query for one account and decodes every
// document with decode.
func listRecords[T any](ctx context.Context, s *FirestoreStore, collection, accountID string, start, end time.Time, decode func(recordDoc) (T, error)) ([]T, error) {
	query := s.client.Collection(collection).
		Where("accountId", "==", accountID).
		Where("date", ">=", start).
		Where("date", "<", dayAfter(end)).
		OrderBy("date", firestore.Asc)

	iter := query.Documents(ctx)
	defer iter.Stop()

	out := []T{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", collection, err)
		}
		var d recordDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, fmt.Errorf("failed to parse %s/%s: %w", collection, doc.Ref.ID, err)
		}
		item, err := decode(d)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

// ListRevenue lists revenue lines dated within [start, end]
func (s *FirestoreStore) ListRevenue(ctx context.Context, accountID string, start, end time.Time) ([]ledger.RevenueLine, error) {
	out, err := listRecords(ctx, s, colRevenue, accountID, start, end, recordDoc.revenue)
	if err != nil {
		return nil, err
	}
	sortRecords(out)
	return out, nil
}

// ListInvoices lists invoices issued within [start, end]
func (s *FirestoreStore) ListInvoices(ctx context.Context, accountID string, start, end time.Time) ([]ledger.Invoice, error) {
	out, err := listRecords(ctx, s, colInvoices, accountID, start, end, recordDoc.invoice)
	if err != nil {
		return nil, err
	}
	sortRecords(out)
	return out, nil
}

// ListCashEntries lists cash movements dated within [start, end]
func (s *FirestoreStore) ListCashEntries(ctx context.Context, accountID string, start, end time.Time) ([]ledger.CashEntry, error) {
	out, err := listRecords(ctx, s, colCash, accountID, start, end, recordDoc.cash)
	if err != nil {
		return nil, err
	}
	sortRecords(out)
	return out, nil
}

// ListPnL lists the monthly rows overlapping [start, end]
func (s *FirestoreStore) ListPnL(ctx context.Context, accountID string, start, end time.Time) ([]ledger.PnLLineItem, error) {
	docs, err := s.client.Collection(colPnL).
		Where("accountId", "==", accountID).
		Where("month", ">=", monthStart(start)).
		Where("month", "<=", end).
		OrderBy("month", firestore.Asc).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list pnl: %w", err)
	}

	out := make([]ledger.PnLLineItem, 0, len(docs))
	for _, doc := range docs {
		var d pnlDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, fmt.Errorf("failed to parse pnl/%s: %w", doc.Ref.ID, err)
		}
		row, err := d.row()
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	sortPnL(out)
	return out, nil
}

// GetOpeningCash returns the latest balance on or before asOf
func (s *FirestoreStore) GetOpeningCash(ctx context.Context, accountID string, asOf time.Time) (*Balance, error) {
	docs, err := s.client.Collection(colBalances).
		Where("accountId", "==", accountID).
		Where("asOf", "<=", asOf).
		OrderBy("asOf", firestore.Desc).
		Limit(1).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to get opening cash: %w", err)
	}
	if len(docs) == 0 {
		return nil, nil
	}

	var d balanceDoc
	if err := docs[0].DataTo(&d); err != nil {
		return nil, fmt.Errorf("failed to parse opening cash: %w", err)
	}
	return d.balance()
}

// GetCompanyProfile retrieves the profile of an account
func (s *FirestoreStore) GetCompanyProfile(ctx context.Context, accountID string) (*ledger.CompanyProfile, error) {
	doc, err := s.client.Collection(colProfiles).Doc(accountID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("company profile %s: %w", accountID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get company profile: %w", err)
	}

	var profile ledger.CompanyProfile
	if err := doc.DataTo(&profile); err != nil {
		return nil, fmt.Errorf("failed to parse company profile: %w", err)
	}
	return &profile, nil
}

// GetExpenseSpikes returns the categories flagged in the months overlapping
// [start, end]
func (s *FirestoreStore) GetExpenseSpikes(ctx context.Context, accountID string, start, end time.Time) (map[string]bool, error) {
	docs, err := s.client.Collection(colSpikes).
		Where("accountId", "==", accountID).
		Where("month", ">=", monthStart(start)).
		Where("month", "<=", end).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list expense spikes: %w", err)
	}

	months := make([]spikesDoc, 0, len(docs))
	for _, doc := range docs {
		var d spikesDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, fmt.Errorf("failed to parse expense spikes/%s: %w", doc.Ref.ID, err)
		}
		months = append(months, d)
	}
	return spikeSet(months), nil
}

type pendingWrite struct {
	ref  *firestore.DocumentRef
	data interface{}
}

// commit writes docs in batches that stay under the Firestore limit.
func (s *FirestoreStore) commit(ctx context.Context, writes []pendingWrite) error {
	for start := 0; start < len(writes); start += maxBatchWrites {
		end := start + maxBatchWrites
		if end > len(writes) {
			end = len(writes)
		}
		batch := s.client.Batch()
		for _, w := range writes[start:end] {
			batch.Set(w.ref, w.data)
		}
		if _, err := batch.Commit(ctx); err != nil {
			return fmt.Errorf("failed to commit batch: %w", err)
		}
	}
	return nil
}

func (s *FirestoreStore) putRecords(ctx context.Context, collection string, docs []recordDoc) error {
	writes := make([]pendingWrite, len(docs))
	for i, d := range docs {
		writes[i] = pendingWrite{ref: s.client.Collection(collection).Doc(d.Key), data: d}
	}
	if err := s.commit(ctx, writes); err != nil {
		return fmt.Errorf("failed to write %s: %w", collection, err)
	}
	return nil
}

// PutRevenue upserts revenue lines
func (s *FirestoreStore) PutRevenue(ctx context.Context, accountID string, lines []ledger.RevenueLine) error {
	docs := make([]recordDoc, len(lines))
	for i, l := range lines {
		docs[i] = revenueDoc(accountID, l)
	}
	return s.putRecords(ctx, colRevenue, docs)
}

// PutInvoices upserts invoices
func (s *FirestoreStore) PutInvoices(ctx context.Context, accountID string, invoices []ledger.Invoice) error {
	docs := make([]recordDoc, len(invoices))
	for i, inv := range invoices {
		docs[i] = invoiceDoc(accountID, inv)
	}
	return s.putRecords(ctx, colInvoices, docs)
}

// PutCashEntries upserts cash entries
func (s *FirestoreStore) PutCashEntries(ctx context.Context, accountID string, entries []ledger.CashEntry) error {
	docs := make([]recordDoc, len(entries))
	for i, e := range entries {
		docs[i] = cashDoc(accountID, e)
	}
	return s.putRecords(ctx, colCash, docs)
}

// PutPnL upserts P&L rows keyed by month
func (s *FirestoreStore) PutPnL(ctx context.Context, accountID string, rows []ledger.PnLLineItem) error {
	writes := make([]pendingWrite, len(rows))
	for i, row := range rows {
		d := newPnLDoc(accountID, row)
		writes[i] = pendingWrite{ref: s.client.Collection(colPnL).Doc(d.Key), data: d}
	}
	if err := s.commit(ctx, writes); err != nil {
		return fmt.Errorf("failed to write pnl: %w", err)
	}
	return nil
}

// PutOpeningCash records the balance held on asOf
func (s *FirestoreStore) PutOpeningCash(ctx context.Context, accountID string, asOf time.Time, amount decimal.Decimal) error {
	d := newBalanceDoc(accountID, asOf, amount)
	_, err := s.client.Collection(colBalances).Doc(d.Key).Set(ctx, d)
	if err != nil {
		return fmt.Errorf("failed to write opening cash: %w", err)
	}
	return nil
}

// PutCompanyProfile creates or replaces a profile
func (s *FirestoreStore) PutCompanyProfile(ctx context.Context, profile ledger.CompanyProfile) error {
	if profile.AccountID == "" {
		return fmt.Errorf("company profile: account id is required")
	}
	_, err := s.client.Collection(colProfiles).Doc(profile.AccountID).Set(ctx, profile)
	return err
}

// PutExpenseSpikes replaces the spiking categories of one month
func (s *FirestoreStore) PutExpenseSpikes(ctx context.Context, accountID string, month time.Time, categories []string) error {
	d := newSpikesDoc(accountID, month, categories)
	_, err := s.client.Collection(colSpikes).Doc(d.Key).Set(ctx, d)
	return err
}
