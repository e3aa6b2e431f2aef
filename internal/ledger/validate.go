package ledger

import (
	"errors"
	"fmt"

	"github.com/castlemilk/bizpulse/backend/internal/apperr"
	"github.com/castlemilk/bizpulse/backend/internal/logger"
	"github.com/castlemilk/bizpulse/backend/internal/money"
	"github.com/sirupsen/logrus"
)

// Rejection records an input row that was excluded from aggregation.
type Rejection struct {
	Kind     string `json:"kind"`
	RecordID string `json:"record_id"`
	Reason   string `json:"reason"`
}

// Validate checks the invariants shared by all record kinds.
func (r Record) Validate() error {
	fail := func(field, reason string) error {
		return &apperr.DataIntegrityError{RecordID: r.ID, Field: field, Reason: reason}
	}
	if r.Date.IsZero() {
		return fail("date", "is required")
	}
	if !r.FXRate.IsPositive() {
		return fail("fx_rate", fmt.Sprintf("must be greater than zero, got %s", r.FXRate.String()))
	}
	if r.Amount.IsNegative() {
		return fail("amount", fmt.Sprintf("must not be negative, got %s", r.Amount.String()))
	}
	if _, err := money.ValidateCode(r.Currency); err != nil {
		return fail("currency", fmt.Sprintf("unknown ISO 4217 code %q", r.Currency))
	}
	return nil
}

// Validate checks the record fields and the invoice status.
func (i Invoice) Validate() error {
	if err := i.Record.Validate(); err != nil {
		return err
	}
	if !i.InvoiceStatus.Valid() {
		return &apperr.DataIntegrityError{RecordID: i.ID, Field: "invoice_status", Reason: fmt.Sprintf("unknown status %q", i.InvoiceStatus)}
	}
	return nil
}

// Validate checks the record fields and the cash direction.
func (c CashEntry) Validate() error {
	if err := c.Record.Validate(); err != nil {
		return err
	}
	if c.Direction != CashIn && c.Direction != CashOut {
		return &apperr.DataIntegrityError{RecordID: c.ID, Field: "direction", Reason: fmt.Sprintf("unknown direction %q", c.Direction)}
	}
	return nil
}

// Validate checks that the row has a month and no negative bucket.
func (p PnLLineItem) Validate() error {
	id := p.Month.Format("2006-01")
	if p.Month.IsZero() {
		return &apperr.DataIntegrityError{Field: "month", Reason: "is required"}
	}
	for _, b := range p.Buckets {
		if b.Amount.IsNegative() {
			return &apperr.DataIntegrityError{RecordID: id, Field: "bucket " + b.Name, Reason: fmt.Sprintf("must not be negative, got %s", b.Amount.String())}
		}
		if b.Kind != KindRevenue && b.Kind != KindExpense {
			return &apperr.DataIntegrityError{RecordID: id, Field: "bucket " + b.Name, Reason: fmt.Sprintf("unknown kind %q", b.Kind)}
		}
	}
	return nil
}

type validatable interface {
	Validate() error
}

// Partition splits items into the ones that pass validation and a rejection
// per failing item. Rejected items are logged and excluded; the batch is
// never aborted.
func Partition[T validatable](kind string, items []T) ([]T, []Rejection) {
	valid := make([]T, 0, len(items))
	var rejected []Rejection
	for _, item := range items {
		err := item.Validate()
		if err == nil {
			valid = append(valid, item)
			continue
		}
		rej := Rejection{Kind: kind, Reason: err.Error()}
		var integrity *apperr.DataIntegrityError
		if errors.As(err, &integrity) {
			rej.RecordID = integrity.RecordID
		}
		logger.Component("ledger").WithFields(logrus.Fields{
			"kind":      kind,
			"record_id": rej.RecordID,
		}).WithError(err).Warn("excluding record that failed integrity check")
		rejected = append(rejected, rej)
	}
	return valid, rejected
}
