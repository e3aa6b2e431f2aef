package store

import (
	"fmt"
	"sort"
	"time"

	"github.com/castlemilk/bizpulse/backend/internal/ledger"
	"github.com/shopspring/decimal"
)

// recordDoc is the persisted form shared by revenue lines, invoices and cash
// entries. Amounts are stored as decimal strings so no precision is lost in
// either Firestore or Mongo.
type recordDoc struct {
	Key           string    `firestore:"-" bson:"_id"`
	AccountID     string    `firestore:"accountId" bson:"account_id"`
	ID            string    `firestore:"id" bson:"record_id"`
	Date          time.Time `firestore:"date" bson:"date"`
	Amount        string    `firestore:"amount" bson:"amount"`
	Currency      string    `firestore:"currency" bson:"currency"`
	FXRate        string    `firestore:"fxRate" bson:"fx_rate"`
	CustomerID    string    `firestore:"customerId,omitempty" bson:"customer_id,omitempty"`
	ProjectID     string    `firestore:"projectId,omitempty" bson:"project_id,omitempty"`
	ProductCode   string    `firestore:"productCode,omitempty" bson:"product_code,omitempty"`
	Channel       string    `firestore:"channel,omitempty" bson:"channel,omitempty"`
	Status        string    `firestore:"status,omitempty" bson:"status,omitempty"`
	Category      string    `firestore:"category,omitempty" bson:"category,omitempty"`
	DueDate       time.Time `firestore:"dueDate,omitempty" bson:"due_date,omitempty"`
	InvoiceStatus string    `firestore:"invoiceStatus,omitempty" bson:"invoice_status,omitempty"`
	Direction     string    `firestore:"direction,omitempty" bson:"direction,omitempty"`
}

func newRecordDoc(accountID string, r ledger.Record) recordDoc {
	return recordDoc{
		Key:         docKey(accountID, r.ID),
		AccountID:   accountID,
		ID:          r.ID,
		Date:        r.Date.UTC(),
		Amount:      r.Amount.String(),
		Currency:    r.Currency,
		FXRate:      r.FXRate.String(),
		CustomerID:  r.CustomerID,
		ProjectID:   r.ProjectID,
		ProductCode: r.ProductCode,
		Channel:     r.Channel,
		Status:      r.Status,
	}
}

// docKey scopes a record id to its account so ids only need to be unique
// per account.
func docKey(accountID, id string) string {
	return accountID + "_" + id
}

func (d recordDoc) record() (ledger.Record, error) {
	amount, err := decimal.NewFromString(d.Amount)
	if err != nil {
		return ledger.Record{}, fmt.Errorf("record %s: invalid amount %q: %w", d.ID, d.Amount, err)
	}
	rate, err := decimal.NewFromString(d.FXRate)
	if err != nil {
		return ledger.Record{}, fmt.Errorf("record %s: invalid fx rate %q: %w", d.ID, d.FXRate, err)
	}
	return ledger.Record{
		ID:       d.ID,
		Date:     d.Date.UTC(),
		Amount:   amount,
		Currency: d.Currency,
		FXRate:   rate,
		Dimensions: ledger.Dimensions{
			CustomerID:  d.CustomerID,
			ProjectID:   d.ProjectID,
			ProductCode: d.ProductCode,
			Channel:     d.Channel,
			Status:      d.Status,
		},
	}, nil
}

func revenueDoc(accountID string, l ledger.RevenueLine) recordDoc {
	d := newRecordDoc(accountID, l.Record)
	d.Category = l.Category
	return d
}

func (d recordDoc) revenue() (ledger.RevenueLine, error) {
	r, err := d.record()
	return ledger.RevenueLine{Record: r, Category: d.Category}, err
}

func invoiceDoc(accountID string, inv ledger.Invoice) recordDoc {
	d := newRecordDoc(accountID, inv.Record)
	d.DueDate = inv.DueDate.UTC()
	d.InvoiceStatus = string(inv.InvoiceStatus)
	return d
}

func (d recordDoc) invoice() (ledger.Invoice, error) {
	r, err := d.record()
	return ledger.Invoice{Record: r, DueDate: d.DueDate.UTC(), InvoiceStatus: ledger.InvoiceStatus(d.InvoiceStatus)}, err
}

func cashDoc(accountID string, c ledger.CashEntry) recordDoc {
	d := newRecordDoc(accountID, c.Record)
	d.Direction = string(c.Direction)
	d.Category = c.Category
	return d
}

func (d recordDoc) cash() (ledger.CashEntry, error) {
	r, err := d.record()
	return ledger.CashEntry{Record: r, Direction: ledger.Direction(d.Direction), Category: d.Category}, err
}

type bucketDoc struct {
	Name   string `firestore:"name" bson:"name"`
	Kind   string `firestore:"kind" bson:"kind"`
	Amount string `firestore:"amount" bson:"amount"`
}

type pnlDoc struct {
	Key       string      `firestore:"-" bson:"_id"`
	AccountID string      `firestore:"accountId" bson:"account_id"`
	Month     time.Time   `firestore:"month" bson:"month"`
	Buckets   []bucketDoc `firestore:"buckets" bson:"buckets"`
}

func newPnLDoc(accountID string, row ledger.PnLLineItem) pnlDoc {
	month := monthStart(row.Month)
	d := pnlDoc{Key: pnlKey(accountID, month), AccountID: accountID, Month: month, Buckets: make([]bucketDoc, len(row.Buckets))}
	for i, b := range row.Buckets {
		d.Buckets[i] = bucketDoc{Name: b.Name, Kind: string(b.Kind), Amount: b.Amount.String()}
	}
	return d
}

func pnlKey(accountID string, month time.Time) string {
	return docKey(accountID, month.Format("2006-01"))
}

func (d pnlDoc) row() (ledger.PnLLineItem, error) {
	row := ledger.PnLLineItem{Month: d.Month.UTC(), Buckets: make([]ledger.Bucket, len(d.Buckets))}
	for i, b := range d.Buckets {
		amount, err := decimal.NewFromString(b.Amount)
		if err != nil {
			return ledger.PnLLineItem{}, fmt.Errorf("pnl %s bucket %s: invalid amount %q: %w", d.Month.Format("2006-01"), b.Name, b.Amount, err)
		}
		row.Buckets[i] = ledger.Bucket{Name: b.Name, Kind: ledger.BucketKind(b.Kind), Amount: amount}
	}
	return row, nil
}

type balanceDoc struct {
	Key       string    `firestore:"-" bson:"_id"`
	AccountID string    `firestore:"accountId" bson:"account_id"`
	AsOf      time.Time `firestore:"asOf" bson:"as_of"`
	Amount    string    `firestore:"amount" bson:"amount"`
}

func newBalanceDoc(accountID string, asOf time.Time, amount decimal.Decimal) balanceDoc {
	asOf = asOf.UTC()
	return balanceDoc{Key: docKey(accountID, asOf.Format("2006-01-02")), AccountID: accountID, AsOf: asOf, Amount: amount.String()}
}

func (d balanceDoc) balance() (*Balance, error) {
	amount, err := decimal.NewFromString(d.Amount)
	if err != nil {
		return nil, fmt.Errorf("opening cash %s: invalid amount %q: %w", d.AsOf.Format("2006-01-02"), d.Amount, err)
	}
	return &Balance{AsOf: d.AsOf.UTC(), Amount: amount}, nil
}

type spikesDoc struct {
	Key        string    `firestore:"-" bson:"_id"`
	AccountID  string    `firestore:"accountId" bson:"account_id"`
	Month      time.Time `firestore:"month" bson:"month"`
	Categories []string  `firestore:"categories" bson:"categories"`
}

func newSpikesDoc(accountID string, month time.Time, categories []string) spikesDoc {
	month = monthStart(month)
	return spikesDoc{
		Key:        docKey(accountID, month.Format("2006-01")),
		AccountID:  accountID,
		Month:      month,
		Categories: categories,
	}
}

// spikeSet merges the flags of every month in docs.
func spikeSet(docs []spikesDoc) map[string]bool {
	out := make(map[string]bool)
	for _, d := range docs {
		for _, c := range d.Categories {
			out[c] = true
		}
	}
	return out
}

// sortRecords orders records by date then id, the order every backend
// returns.
func sortRecords[T ledger.Entry](items []T) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].Core(), items[j].Core()
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.ID < b.ID
	})
}

func sortPnL(rows []ledger.PnLLineItem) {
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Month.Before(rows[j].Month) })
}
