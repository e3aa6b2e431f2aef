package service

import (
	"context"
	"errors"
	"fmt"

	"connectrpc.com/connect"
	"github.com/castlemilk/bizpulse/backend/internal/advisor"
	"github.com/castlemilk/bizpulse/backend/internal/apperr"
	"github.com/castlemilk/bizpulse/backend/internal/store"
)

// fetchError marks a failure to read the account's data from the store.
type fetchError struct {
	what string
	err  error
}

func (e *fetchError) Error() string { return fmt.Sprintf("failed to fetch %s: %v", e.what, e.err) }
func (e *fetchError) Unwrap() error { return e.err }

// toConnectError maps domain and store errors onto connect codes.
func toConnectError(operation string, err error) error {
	if err == nil {
		return nil
	}
	var ce *connect.Error
	if errors.As(err, &ce) {
		return err
	}

	wrapped := fmt.Errorf("failed to %s: %w", operation, err)
	var fetch *fetchError
	switch {
	case apperr.IsInvalidRange(err):
		return connect.NewError(connect.CodeInvalidArgument, wrapped)
	case errors.Is(err, store.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, wrapped)
	case errors.Is(err, advisor.ErrInputNotAccepted):
		return connect.NewError(connect.CodeFailedPrecondition, wrapped)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, wrapped)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, wrapped)
	case errors.As(err, &fetch):
		return connect.NewError(connect.CodeUnavailable, wrapped)
	case apperr.IsDataIntegrity(err):
		// Only the company profile can fail this way past validation.
		return connect.NewError(connect.CodeFailedPrecondition, wrapped)
	default:
		return connect.NewError(connect.CodeInternal, wrapped)
	}
}
