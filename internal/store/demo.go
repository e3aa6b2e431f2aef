package store

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/castlemilk/bizpulse/backend/internal/ledger"
	"github.com/shopspring/decimal"
)

// DemoAccountID is the account the demo data is written to by default.
const DemoAccountID = "demo"

// Seed is a complete account ready to be written to a Store.
type Seed struct {
	Profile       ledger.CompanyProfile
	Revenue       []ledger.RevenueLine
	Invoices      []ledger.Invoice
	Cash          []ledger.CashEntry
	PnL           []ledger.PnLLineItem
	OpeningAsOf   time.Time
	OpeningCash   decimal.Decimal
	ExpenseSpikes []MonthSpikes
}

// MonthSpikes are the expense categories flagged as spiking in one month.
type MonthSpikes struct {
	Month      time.Time
	Categories []string
}

// Load writes every part of the seed to st.
func (s Seed) Load(ctx context.Context, st Store) error {
	id := s.Profile.AccountID
	if err := st.PutCompanyProfile(ctx, s.Profile); err != nil {
		return fmt.Errorf("seed profile: %w", err)
	}
	if err := st.PutRevenue(ctx, id, s.Revenue); err != nil {
		return fmt.Errorf("seed revenue: %w", err)
	}
	if err := st.PutInvoices(ctx, id, s.Invoices); err != nil {
		return fmt.Errorf("seed invoices: %w", err)
	}
	if err := st.PutCashEntries(ctx, id, s.Cash); err != nil {
		return fmt.Errorf("seed cash: %w", err)
	}
	if err := st.PutPnL(ctx, id, s.PnL); err != nil {
		return fmt.Errorf("seed pnl: %w", err)
	}
	if err := st.PutOpeningCash(ctx, id, s.OpeningAsOf, s.OpeningCash); err != nil {
		return fmt.Errorf("seed opening cash: %w", err)
	}
	for _, sp := range s.ExpenseSpikes {
		if err := st.PutExpenseSpikes(ctx, id, sp.Month, sp.Categories); err != nil {
			return fmt.Errorf("seed expense spikes %s: %w", sp.Month.Format("2006-01"), err)
		}
	}
	return nil
}

var (
	demoChannels  = []string{"online", "direct", "partner"}
	demoProducts  = []string{"SUB-BASIC", "SUB-PRO", "CONSULT"}
	demoCustomers = []string{"northwind", "globex", "initech", "umbrella", "hooli", "stark", "wayne", "acme-retail"}
)

func cents(v int64) decimal.Decimal {
	return decimal.New(v, -2)
}

// DemoSeed builds six months of deterministic data for accountID ending at
// now. The same arguments always produce the same seed.
func DemoSeed(accountID string, now time.Time) Seed {
	if accountID == "" {
		accountID = DemoAccountID
	}
	rng := rand.New(rand.NewSource(20250101))
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	first := monthStart(today).AddDate(0, -5, 0)

	seed := Seed{
		Profile: ledger.CompanyProfile{
			AccountID:     accountID,
			Name:          "Harbor & Pine Studio",
			EmployeeCount: 14,
			Industry:      "Professional services",
			BaseCurrency:  "USD",
		},
		OpeningAsOf: first,
		OpeningCash: cents(6_000_000),
	}

	usd := decimal.NewFromInt(1)
	eur := decimal.RequireFromString("1.08")
	var revN, invN, cashN int

	for m := 0; m < 6; m++ {
		month := first.AddDate(0, m, 0)
		last := month.AddDate(0, 1, -1)
		if last.After(today) {
			last = today
		}
		monthRevenue := decimal.Zero

		for d := month; !d.After(last); d = d.AddDate(0, 0, 1) {
			if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday || rng.Intn(3) != 0 {
				continue
			}
			revN++
			r := ledger.Record{
				ID:       fmt.Sprintf("rev-%04d", revN),
				Date:     d,
				Amount:   cents(int64(150_000 + rng.Intn(450_000))),
				Currency: "USD",
				FXRate:   usd,
				Dimensions: ledger.Dimensions{
					CustomerID:  demoCustomers[rng.Intn(len(demoCustomers))],
					ProductCode: demoProducts[rng.Intn(len(demoProducts))],
					Channel:     demoChannels[rng.Intn(len(demoChannels))],
				},
			}
			if rng.Intn(5) == 0 {
				r.Currency = "EUR"
				r.FXRate = eur
			}
			seed.Revenue = append(seed.Revenue, ledger.RevenueLine{Record: r, Category: "services"})
			monthRevenue = monthRevenue.Add(r.MustAmountBase())
		}

		invoices := 4 + rng.Intn(3)
		for i := 0; i < invoices; i++ {
			invN++
			issued := month.AddDate(0, 0, rng.Intn(last.Day()))
			amount := int64(200_000 + rng.Intn(600_000))
			if invN%11 == 0 {
				amount *= 4
			}
			inv := ledger.Invoice{
				Record: ledger.Record{
					ID:         fmt.Sprintf("inv-%04d", invN),
					Date:       issued,
					Amount:     cents(amount),
					Currency:   "USD",
					FXRate:     usd,
					Dimensions: ledger.Dimensions{CustomerID: demoCustomers[rng.Intn(len(demoCustomers))]},
				},
				DueDate:       issued.AddDate(0, 0, 30),
				InvoiceStatus: ledger.InvoiceUnpaid,
			}
			switch {
			case inv.DueDate.Before(today.AddDate(0, 0, -20)) && rng.Intn(4) != 0:
				inv.InvoiceStatus = ledger.InvoicePaid
			case rng.Intn(15) == 0:
				inv.InvoiceStatus = ledger.InvoiceVoid
			}
			seed.Invoices = append(seed.Invoices, inv)
		}

		payroll := cents(int64(1_400_000 + rng.Intn(200_000)))
		rent := cents(350_000)
		marketing := cents(int64(100_000 + rng.Intn(200_000)))
		if m == 5 {
			marketing = marketing.Mul(decimal.NewFromInt(3))
			seed.ExpenseSpikes = append(seed.ExpenseSpikes, MonthSpikes{Month: month, Categories: []string{ledger.BucketMarketing}})
		}
		other := cents(int64(50_000 + rng.Intn(100_000)))
		cogs := monthRevenue.Mul(decimal.RequireFromString("0.2")).Round(2)

		seed.PnL = append(seed.PnL, ledger.PnLLineItem{
			Month: month,
			Buckets: []ledger.Bucket{
				{Name: ledger.BucketRevenue, Kind: ledger.KindRevenue, Amount: monthRevenue},
				{Name: ledger.BucketCOGS, Kind: ledger.KindExpense, Amount: cogs},
				{Name: ledger.BucketPayroll, Kind: ledger.KindExpense, Amount: payroll},
				{Name: ledger.BucketRent, Kind: ledger.KindExpense, Amount: rent},
				{Name: ledger.BucketMarketing, Kind: ledger.KindExpense, Amount: marketing},
				{Name: ledger.BucketOther, Kind: ledger.KindExpense, Amount: other},
			},
		})

		outflows := []struct {
			category string
			day      int
			amount   decimal.Decimal
		}{
			{ledger.BucketRent, 1, rent},
			{ledger.BucketPayroll, 15, payroll},
			{ledger.BucketMarketing, 20, marketing},
			{ledger.BucketCOGS, 25, cogs},
		}
		for _, o := range outflows {
			date := month.AddDate(0, 0, o.day-1)
			if date.After(last) {
				continue
			}
			cashN++
			seed.Cash = append(seed.Cash, ledger.CashEntry{
				Record: ledger.Record{
					ID:       fmt.Sprintf("cash-%04d", cashN),
					Date:     date,
					Amount:   o.amount,
					Currency: "USD",
					FXRate:   usd,
				},
				Direction: ledger.CashOut,
				Category:  o.category,
			})
		}
		if monthRevenue.IsPositive() {
			cashN++
			seed.Cash = append(seed.Cash, ledger.CashEntry{
				Record: ledger.Record{
					ID:       fmt.Sprintf("cash-%04d", cashN),
					Date:     last,
					Amount:   monthRevenue.Mul(decimal.RequireFromString("0.9")).Round(2),
					Currency: "USD",
					FXRate:   usd,
				},
				Direction: ledger.CashIn,
				Category:  "collections",
			})
		}
	}
	return seed
}
