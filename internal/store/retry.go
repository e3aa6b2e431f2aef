package store

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/castlemilk/bizpulse/backend/internal/ledger"
	"github.com/castlemilk/bizpulse/backend/internal/logger"
	"go.mongodb.org/mongo-driver/mongo"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// RetryConfig configures retry behavior with exponential backoff.
type RetryConfig struct {
	MaxRetries     int
	InitialDelay   time.Duration
	MaxDelay       time.Duration
	BackoffFactor  float64
	JitterFraction float64 // 0.0 to 1.0, fraction of delay to randomize
}

// DefaultRetryConfig keeps the worst case well inside the service fetch
// timeout.
var DefaultRetryConfig = RetryConfig{
	MaxRetries:     2,
	InitialDelay:   100 * time.Millisecond,
	MaxDelay:       1 * time.Second,
	BackoffFactor:  2.0,
	JitterFraction: 0.2,
}

// IsTransient reports whether a backend error is worth retrying.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return true
	}
	switch status.Code(err) {
	case codes.Unavailable, codes.ResourceExhausted, codes.Aborted:
		return true
	}
	return false
}

// WithRetry executes fn with exponential backoff and jitter. It stops on
// success, on a non-transient error, when ctx is done, or once the retries
// are exhausted.
func WithRetry[T any](ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) (T, error)) (T, error) {
	var lastErr error
	var zero T

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !IsTransient(err) || attempt >= cfg.MaxRetries {
			break
		}

		delay := float64(cfg.InitialDelay) * math.Pow(cfg.BackoffFactor, float64(attempt))
		if delay > float64(cfg.MaxDelay) {
			delay = float64(cfg.MaxDelay)
		}
		if cfg.JitterFraction > 0 {
			delay += delay * cfg.JitterFraction * (rand.Float64()*2 - 1)
			if delay < 0 {
				delay = float64(cfg.InitialDelay)
			}
		}

		logger.Component("store").WithError(err).WithField("attempt", attempt+1).Debug("retrying transient store error")

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(time.Duration(delay)):
		}
	}

	return zero, lastErr
}

// RetryingStore retries the reads of the wrapped store on transient errors.
// Writes pass through unchanged.
type RetryingStore struct {
	Store
	cfg RetryConfig
}

// NewRetryingStore wraps inner.
func NewRetryingStore(inner Store, cfg RetryConfig) *RetryingStore {
	return &RetryingStore{Store: inner, cfg: cfg}
}

func (s *RetryingStore) ListRevenue(ctx context.Context, accountID string, start, end time.Time) ([]ledger.RevenueLine, error) {
	return WithRetry(ctx, s.cfg, func(ctx context.Context) ([]ledger.RevenueLine, error) {
		return s.Store.ListRevenue(ctx, accountID, start, end)
	})
}

func (s *RetryingStore) ListInvoices(ctx context.Context, accountID string, start, end time.Time) ([]ledger.Invoice, error) {
	return WithRetry(ctx, s.cfg, func(ctx context.Context) ([]ledger.Invoice, error) {
		return s.Store.ListInvoices(ctx, accountID, start, end)
	})
}

func (s *RetryingStore) ListCashEntries(ctx context.Context, accountID string, start, end time.Time) ([]ledger.CashEntry, error) {
	return WithRetry(ctx, s.cfg, func(ctx context.Context) ([]ledger.CashEntry, error) {
		return s.Store.ListCashEntries(ctx, accountID, start, end)
	})
}

func (s *RetryingStore) ListPnL(ctx context.Context, accountID string, start, end time.Time) ([]ledger.PnLLineItem, error) {
	return WithRetry(ctx, s.cfg, func(ctx context.Context) ([]ledger.PnLLineItem, error) {
		return s.Store.ListPnL(ctx, accountID, start, end)
	})
}

func (s *RetryingStore) GetOpeningCash(ctx context.Context, accountID string, asOf time.Time) (*Balance, error) {
	return WithRetry(ctx, s.cfg, func(ctx context.Context) (*Balance, error) {
		return s.Store.GetOpeningCash(ctx, accountID, asOf)
	})
}

func (s *RetryingStore) GetCompanyProfile(ctx context.Context, accountID string) (*ledger.CompanyProfile, error) {
	return WithRetry(ctx, s.cfg, func(ctx context.Context) (*ledger.CompanyProfile, error) {
		return s.Store.GetCompanyProfile(ctx, accountID)
	})
}

func (s *RetryingStore) GetExpenseSpikes(ctx context.Context, accountID string, start, end time.Time) (map[string]bool, error) {
	return WithRetry(ctx, s.cfg, func(ctx context.Context) (map[string]bool, error) {
		return s.Store.GetExpenseSpikes(ctx, accountID, start, end)
	})
}
