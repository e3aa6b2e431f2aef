// Package tenant scopes every RPC to a single business account.
package tenant

import (
	"context"
	"fmt"
	"strings"

	"connectrpc.com/connect"
)

// AccountHeader carries the account a request is for.
const AccountHeader = "X-Account-ID"

const maxAccountIDLen = 128

// ExtractAccountID validates a raw header value and returns the account id.
func ExtractAccountID(header string) (string, error) {
	id := strings.TrimSpace(header)
	if id == "" {
		return "", fmt.Errorf("%s header is required", AccountHeader)
	}
	if len(id) > maxAccountIDLen {
		return "", fmt.Errorf("account id must be at most %d characters", maxAccountIDLen)
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return "", fmt.Errorf("account id contains invalid character %q", r)
		}
	}
	return id, nil
}

// AccountInterceptor resolves the account from the request header. When the
// header is absent and defaultAccount is set (local mode) the request is
// scoped to defaultAccount instead.
func AccountInterceptor(defaultAccount string) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if isPublicEndpoint(req.Spec().Procedure) {
				return next(ctx, req)
			}

			header := req.Header().Get(AccountHeader)
			if header == "" && defaultAccount != "" {
				return next(WithAccount(ctx, defaultAccount), req)
			}

			id, err := ExtractAccountID(header)
			if err != nil {
				return nil, connect.NewError(connect.CodeInvalidArgument, err)
			}
			return next(WithAccount(ctx, id), req)
		}
	}
}

// isPublicEndpoint checks if an endpoint is served without an account
func isPublicEndpoint(procedure string) bool {
	publicEndpoints := []string{
		"/health",
		"/ping",
	}

	for _, endpoint := range publicEndpoints {
		if procedure == endpoint {
			return true
		}
	}

	return false
}

type contextKey string

const accountKey contextKey = "account_id"

// WithAccount scopes ctx to accountID.
func WithAccount(ctx context.Context, accountID string) context.Context {
	return context.WithValue(ctx, accountKey, accountID)
}

// AccountID returns the account ctx is scoped to.
func AccountID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(accountKey).(string)
	return id, ok && id != ""
}

// RequireAccount returns the scoped account or an invalid argument error.
func RequireAccount(ctx context.Context) (string, error) {
	id, ok := AccountID(ctx)
	if !ok {
		return "", connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("request is not scoped to an account"))
	}
	return id, nil
}
