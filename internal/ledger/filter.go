package ledger

import (
	"sort"
	"time"

	"github.com/castlemilk/bizpulse/backend/internal/period"
)

// Filter holds optional equality predicates on record dimensions. An empty
// field places no constraint; set fields are ANDed.
type Filter struct {
	CustomerID  string `json:"customer_id,omitempty"`
	ProjectID   string `json:"project_id,omitempty"`
	ProductCode string `json:"product_code,omitempty"`
	Channel     string `json:"channel,omitempty"`
	Status      string `json:"status,omitempty"`

	// Today is the clock used to derive invoice statuses for Status matching.
	Today time.Time `json:"-"`
}

// IsEmpty reports whether the filter has no predicates.
func (f Filter) IsEmpty() bool {
	return f.CustomerID == "" && f.ProjectID == "" && f.ProductCode == "" && f.Channel == "" && f.Status == ""
}

// Matches reports whether e satisfies every predicate.
func (f Filter) Matches(e Entry) bool {
	r := e.Core()
	if f.CustomerID != "" && r.CustomerID != f.CustomerID {
		return false
	}
	if f.ProjectID != "" && r.ProjectID != f.ProjectID {
		return false
	}
	if f.ProductCode != "" && r.ProductCode != f.ProductCode {
		return false
	}
	if f.Channel != "" && r.Channel != f.Channel {
		return false
	}
	if f.Status != "" && e.StatusOn(f.Today) != f.Status {
		return false
	}
	return true
}

// Select returns copies of the items dated inside p that match f. The
// result never aliases the input slice.
func Select[T Entry](items []T, p period.Period, f Filter) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if !p.Contains(item.Core().Date) {
			continue
		}
		if !f.Matches(item) {
			continue
		}
		out = append(out, item)
	}
	return out
}

// SelectPnL returns copies of the P&L rows whose month overlaps p, ordered
// by month.
func SelectPnL(rows []PnLLineItem, p period.Period) []PnLLineItem {
	out := make([]PnLLineItem, 0, len(rows))
	for _, row := range rows {
		start := time.Date(row.Month.Year(), row.Month.Month(), 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 1, -1)
		if end.Before(p.Start) || start.After(p.End) {
			continue
		}
		out = append(out, row.clone())
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Month.Before(out[j].Month)
	})
	return out
}
