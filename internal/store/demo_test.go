package store

import (
	"context"
	"testing"
	"time"

	"github.com/castlemilk/bizpulse/backend/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var demoNow = time.Date(2025, 6, 18, 10, 0, 0, 0, time.UTC)

func TestDemoSeedIsDeterministic(t *testing.T) {
	a := DemoSeed("", demoNow)
	b := DemoSeed("", demoNow)
	assert.Equal(t, a, b)
	assert.Equal(t, DemoAccountID, a.Profile.AccountID)
}

func TestDemoSeedShape(t *testing.T) {
	seed := DemoSeed("acme", demoNow)

	require.Len(t, seed.PnL, 6)
	assert.Equal(t, day(1, 1), seed.PnL[0].Month)
	assert.Equal(t, day(6, 1), seed.PnL[5].Month)
	assert.Equal(t, day(1, 1), seed.OpeningAsOf)
	assert.NotEmpty(t, seed.Revenue)
	assert.NotEmpty(t, seed.Invoices)
	assert.NotEmpty(t, seed.Cash)

	for _, l := range seed.Revenue {
		assert.NoError(t, l.Validate(), l.ID)
		assert.False(t, l.Date.After(day(6, 18)), l.ID)
	}
	for _, inv := range seed.Invoices {
		assert.NoError(t, inv.Validate(), inv.ID)
	}
	for _, c := range seed.Cash {
		assert.NoError(t, c.Validate(), c.ID)
	}
	for _, row := range seed.PnL {
		assert.NoError(t, row.Validate())
	}

	// June marketing is tripled so the spike has something to show.
	assert.True(t, seed.PnL[5].Amount(ledger.BucketMarketing).GreaterThan(seed.PnL[4].Amount(ledger.BucketMarketing)))
}

func TestSeedLoad(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	seed := DemoSeed("acme", demoNow)
	require.NoError(t, seed.Load(ctx, s))

	profile, err := s.GetCompanyProfile(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, seed.Profile, *profile)

	revenue, err := s.ListRevenue(ctx, "acme", day(1, 1), day(6, 30))
	require.NoError(t, err)
	assert.Len(t, revenue, len(seed.Revenue))

	opening, err := s.GetOpeningCash(ctx, "acme", demoNow)
	require.NoError(t, err)
	require.NotNil(t, opening)
	assert.True(t, opening.Amount.Equal(seed.OpeningCash))
	assert.Equal(t, seed.OpeningAsOf, opening.AsOf)

	spikes, err := s.GetExpenseSpikes(ctx, "acme", day(6, 1), day(6, 30))
	require.NoError(t, err)
	assert.True(t, spikes[ledger.BucketMarketing])

	// Only the month it was flagged for.
	spikes, err = s.GetExpenseSpikes(ctx, "acme", day(5, 1), day(5, 31))
	require.NoError(t, err)
	assert.Empty(t, spikes)
}

func TestSeedLoadStopsOnError(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := NewMockStore(ctrl)
	seed := DemoSeed("acme", demoNow)

	m.EXPECT().PutCompanyProfile(gomock.Any(), seed.Profile).Return(nil)
	m.EXPECT().PutRevenue(gomock.Any(), "acme", gomock.Any()).Return(assert.AnError)

	err := seed.Load(context.Background(), m)
	assert.ErrorIs(t, err, assert.AnError)
	assert.ErrorContains(t, err, "seed revenue")
}
