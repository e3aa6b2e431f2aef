package analytics

import (
	"time"

	"github.com/castlemilk/bizpulse/backend/internal/ledger"
	"github.com/shopspring/decimal"
)

// InvoiceSummary ages the invoices of a period.
type InvoiceSummary struct {
	TotalBilled      decimal.Decimal `json:"total_billed"`
	PaidTotal        decimal.Decimal `json:"paid_total"`
	OutstandingTotal decimal.Decimal `json:"outstanding_total"`
	OverdueTotal     decimal.Decimal `json:"overdue_total"`
	PaidCount        int             `json:"paid_count"`
	UnpaidCount      int             `json:"unpaid_count"`
	OverdueCount     int             `json:"overdue_count"`
	VoidCount        int             `json:"void_count"`
}

// SummarizeInvoices totals invoices by their effective status on today.
// Void invoices are counted but never billed.
func SummarizeInvoices(invoices []ledger.Invoice, today time.Time) InvoiceSummary {
	s := InvoiceSummary{
		TotalBilled:      decimal.Zero,
		PaidTotal:        decimal.Zero,
		OutstandingTotal: decimal.Zero,
		OverdueTotal:     decimal.Zero,
	}
	for _, inv := range invoices {
		amount := inv.MustAmountBase()
		switch inv.EffectiveStatus(today) {
		case ledger.InvoiceVoid:
			s.VoidCount++
			continue
		case ledger.InvoicePaid:
			s.PaidCount++
			s.PaidTotal = s.PaidTotal.Add(amount)
		case ledger.InvoiceOverdue:
			s.OverdueCount++
			s.OverdueTotal = s.OverdueTotal.Add(amount)
			s.OutstandingTotal = s.OutstandingTotal.Add(amount)
		default:
			s.UnpaidCount++
			s.OutstandingTotal = s.OutstandingTotal.Add(amount)
		}
		s.TotalBilled = s.TotalBilled.Add(amount)
	}
	return s
}
