// Package ledger holds the raw accounting inputs of the analytics core and
// the filtering and integrity checks applied to them before aggregation.
package ledger

import (
	"time"

	"github.com/castlemilk/bizpulse/backend/internal/money"
	"github.com/shopspring/decimal"
)

// Dimensions are the tags a record can be filtered on.
type Dimensions struct {
	CustomerID  string `json:"customer_id,omitempty"`
	ProjectID   string `json:"project_id,omitempty"`
	ProductCode string `json:"product_code,omitempty"`
	Channel     string `json:"channel,omitempty"`
	Status      string `json:"status,omitempty"`
}

// Record is the common shape of revenue lines, invoices and cash entries.
// Amount is in the record currency; the base amount is always derived.
type Record struct {
	ID       string          `json:"id"`
	Date     time.Time       `json:"date"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	FXRate   decimal.Decimal `json:"fx_rate"`
	Dimensions
}

// Core returns the record itself; embedding types inherit it.
func (r Record) Core() Record { return r }

// StatusOn returns the stored status tag.
func (r Record) StatusOn(time.Time) string { return r.Status }

// AmountBase returns amount * fx_rate.
func (r Record) AmountBase() (decimal.Decimal, error) {
	return money.Normalize(r.Amount, r.FXRate)
}

// MustAmountBase is AmountBase for records that already passed Validate.
func (r Record) MustAmountBase() decimal.Decimal {
	v, err := r.AmountBase()
	if err != nil {
		return decimal.Zero
	}
	return v
}

// Dual reports the record amount in both its own and the base currency.
func (r Record) Dual(baseCurrency string) money.Dual {
	return money.Dual{
		Original:         r.Amount,
		OriginalCurrency: r.Currency,
		Base:             r.MustAmountBase(),
		BaseCurrency:     baseCurrency,
	}
}

// RevenueLine is a single booked revenue amount.
type RevenueLine struct {
	Record
	Category string `json:"category,omitempty"`
}

// InvoiceStatus is the lifecycle state of an invoice.
type InvoiceStatus string

const (
	InvoicePaid    InvoiceStatus = "paid"
	InvoiceUnpaid  InvoiceStatus = "unpaid"
	InvoiceOverdue InvoiceStatus = "overdue"
	InvoiceVoid    InvoiceStatus = "void"
)

// Valid reports whether s is one of the known statuses.
func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoicePaid, InvoiceUnpaid, InvoiceOverdue, InvoiceVoid:
		return true
	}
	return false
}

// Invoice is a billed amount with a due date.
type Invoice struct {
	Record
	DueDate       time.Time     `json:"due_date"`
	InvoiceStatus InvoiceStatus `json:"invoice_status"`
}

// EffectiveStatus recomputes overdue: anything not paid or void whose due
// date is before today is overdue, regardless of the stored status.
func (i Invoice) EffectiveStatus(today time.Time) InvoiceStatus {
	switch i.InvoiceStatus {
	case InvoicePaid, InvoiceVoid:
		return i.InvoiceStatus
	}
	if !i.DueDate.IsZero() && !today.IsZero() && dateOf(i.DueDate).Before(dateOf(today)) {
		return InvoiceOverdue
	}
	if i.InvoiceStatus == InvoiceOverdue && today.IsZero() {
		return InvoiceOverdue
	}
	return InvoiceUnpaid
}

// StatusOn returns the effective invoice status as a filterable tag.
func (i Invoice) StatusOn(today time.Time) string {
	return string(i.EffectiveStatus(today))
}

// Direction tells whether cash came in or went out.
type Direction string

const (
	CashIn  Direction = "in"
	CashOut Direction = "out"
)

// CashEntry is a cash ledger movement.
type CashEntry struct {
	Record
	Direction Direction `json:"direction"`
	Category  string    `json:"category,omitempty"`
}

// Entry is implemented by every record kind.
type Entry interface {
	Core() Record
	StatusOn(today time.Time) string
}

// BucketKind separates revenue from expense buckets in a P&L row.
type BucketKind string

const (
	KindRevenue BucketKind = "revenue"
	KindExpense BucketKind = "expense"
)

// Canonical bucket names.
const (
	BucketRevenue   = "Revenue"
	BucketCOGS      = "COGS"
	BucketPayroll   = "Payroll"
	BucketRent      = "Rent"
	BucketMarketing = "Marketing"
	BucketOther     = "Other"
)

// ExpenseBucketOrder is the declared order of the standard expense buckets.
// It breaks ties wherever buckets are ranked.
var ExpenseBucketOrder = []string{BucketCOGS, BucketPayroll, BucketRent, BucketMarketing, BucketOther}

// Bucket is one named amount of a P&L row.
type Bucket struct {
	Name   string          `json:"name"`
	Kind   BucketKind      `json:"kind"`
	Amount decimal.Decimal `json:"amount"`
}

// PnLLineItem is the profit and loss summary of one calendar month, already
// in base currency.
type PnLLineItem struct {
	Month   time.Time `json:"month"`
	Buckets []Bucket  `json:"buckets"`
}

// Amount returns the named bucket, or zero when the bucket is missing.
func (p PnLLineItem) Amount(name string) decimal.Decimal {
	for _, b := range p.Buckets {
		if b.Name == name {
			return b.Amount
		}
	}
	return decimal.Zero
}

// Total sums all buckets of the given kind.
func (p PnLLineItem) Total(kind BucketKind) decimal.Decimal {
	total := decimal.Zero
	for _, b := range p.Buckets {
		if b.Kind == kind {
			total = total.Add(b.Amount)
		}
	}
	return total
}

// ExpenseBuckets returns the expense buckets in declared order: the standard
// buckets first, then any others in row order. Missing standard buckets are
// reported as zero.
func (p PnLLineItem) ExpenseBuckets() []Bucket {
	out := make([]Bucket, 0, len(p.Buckets)+len(ExpenseBucketOrder))
	seen := make(map[string]bool, len(ExpenseBucketOrder))
	for _, name := range ExpenseBucketOrder {
		out = append(out, Bucket{Name: name, Kind: KindExpense, Amount: p.Amount(name)})
		seen[name] = true
	}
	for _, b := range p.Buckets {
		if b.Kind != KindExpense || seen[b.Name] {
			continue
		}
		out = append(out, b)
		seen[b.Name] = true
	}
	return out
}

func (p PnLLineItem) clone() PnLLineItem {
	buckets := make([]Bucket, len(p.Buckets))
	copy(buckets, p.Buckets)
	return PnLLineItem{Month: p.Month, Buckets: buckets}
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
