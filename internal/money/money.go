// Package money converts record amounts into the tenant's base currency and
// renders amounts for display.
package money

import (
	"fmt"
	"strings"

	"github.com/castlemilk/bizpulse/backend/internal/apperr"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// Normalize converts an amount into base currency: amount * fxRate.
// A non-positive rate is a data integrity violation.
func Normalize(amount, fxRate decimal.Decimal) (decimal.Decimal, error) {
	if !fxRate.IsPositive() {
		return decimal.Zero, &apperr.DataIntegrityError{
			Field:  "fx_rate",
			Reason: fmt.Sprintf("must be greater than zero, got %s", fxRate.String()),
		}
	}
	return amount.Mul(fxRate), nil
}

// ValidateCode checks that code is a known ISO 4217 currency and returns it
// upper-cased.
func ValidateCode(code string) (string, error) {
	unit, err := currency.ParseISO(strings.TrimSpace(code))
	if err != nil {
		return "", &apperr.DataIntegrityError{
			Field:  "currency",
			Reason: fmt.Sprintf("unknown ISO 4217 code %q", code),
		}
	}
	return unit.String(), nil
}

// Symbol returns the narrow display symbol for an ISO code ("$", "€"),
// falling back to the code itself.
func Symbol(code string) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return strings.ToUpper(code)
	}
	return fmt.Sprint(currency.NarrowSymbol(unit))
}

// Scale returns the number of minor-unit digits used when displaying the
// currency (2 for USD, 0 for JPY).
func Scale(code string) int32 {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return 2
	}
	scale, _ := currency.Standard.Rounding(unit)
	return int32(scale)
}

// Format renders an amount with its currency symbol, e.g. "€1234.50".
func Format(amount decimal.Decimal, code string) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}
	return sign + Symbol(code) + amount.StringFixed(Scale(code))
}

// Dual is an amount reported both in its original currency and in base
// currency, used when an individual record is shown.
type Dual struct {
	Original         decimal.Decimal `json:"original"`
	OriginalCurrency string          `json:"original_currency"`
	Base             decimal.Decimal `json:"base"`
	BaseCurrency     string          `json:"base_currency"`
}

// String renders "€100.00 (≈ $108.00)" or a single amount when both
// currencies match.
func (d Dual) String() string {
	if strings.EqualFold(d.OriginalCurrency, d.BaseCurrency) {
		return Format(d.Base, d.BaseCurrency)
	}
	return fmt.Sprintf("%s (≈ %s)", Format(d.Original, d.OriginalCurrency), Format(d.Base, d.BaseCurrency))
}

// Float converts a decimal into float64 for statistical routines.
func Float(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

// Percent computes round(part / whole * 100, places), returning 0 when whole
// is zero.
func Percent(part, whole decimal.Decimal, places int32) float64 {
	if whole.IsZero() {
		return 0
	}
	return part.Div(whole).Mul(decimal.NewFromInt(100)).Round(places).InexactFloat64()
}

// Change computes round((curr - prev) / prev * 100, 2), returning 0 when prev
// is zero.
func Change(curr, prev decimal.Decimal) float64 {
	if prev.IsZero() {
		return 0
	}
	return curr.Sub(prev).Div(prev.Abs()).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
}
