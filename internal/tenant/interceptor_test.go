package tenant

import (
	"context"
	"strings"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/emptypb"
)

func TestExtractAccountID(t *testing.T) {
	tests := []struct {
		name        string
		header      string
		expectedErr bool
		errContains string
		wantID      string
	}{
		{
			name:        "empty header",
			header:      "",
			expectedErr: true,
			errContains: "header is required",
		},
		{
			name:        "whitespace only",
			header:      "   ",
			expectedErr: true,
			errContains: "header is required",
		},
		{
			name:        "invalid character",
			header:      "acme/../other",
			expectedErr: true,
			errContains: "invalid character",
		},
		{
			name:        "too long",
			header:      strings.Repeat("a", maxAccountIDLen+1),
			expectedErr: true,
			errContains: "at most",
		},
		{
			name:   "simple id",
			header: "acme",
			wantID: "acme",
		},
		{
			name:   "trimmed",
			header: "  acme-co_2 ",
			wantID: "acme-co_2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ExtractAccountID(tt.header)

			if tt.expectedErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				assert.Empty(t, id)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, id)
			}
		})
	}
}

func TestAccountContext(t *testing.T) {
	t.Run("WithAccount scopes the context", func(t *testing.T) {
		ctx := WithAccount(context.Background(), "acme")

		id, ok := AccountID(ctx)
		require.True(t, ok)
		assert.Equal(t, "acme", id)

		got, err := RequireAccount(ctx)
		require.NoError(t, err)
		assert.Equal(t, "acme", got)
	})

	t.Run("RequireAccount fails on an unscoped context", func(t *testing.T) {
		_, err := RequireAccount(context.Background())
		require.Error(t, err)
		assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
	})
}

func TestIsPublicEndpoint(t *testing.T) {
	tests := []struct {
		name      string
		procedure string
		expected  bool
	}{
		{"health endpoint", "/health", true},
		{"ping endpoint", "/ping", true},
		{"advisor endpoint", "/bizpulse.v1.AdvisorService/ComputeSnapshot", false},
		{"empty endpoint", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isPublicEndpoint(tt.procedure))
		})
	}
}

func TestAccountInterceptor(t *testing.T) {
	var seen string
	next := connect.UnaryFunc(func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		seen, _ = AccountID(ctx)
		return connect.NewResponse(&emptypb.Empty{}), nil
	})

	tests := []struct {
		name           string
		defaultAccount string
		header         string
		wantAccount    string
		wantCode       connect.Code
	}{
		{name: "header wins", defaultAccount: "demo", header: "acme", wantAccount: "acme"},
		{name: "default when header missing", defaultAccount: "demo", wantAccount: "demo"},
		{name: "missing without default", wantCode: connect.CodeInvalidArgument},
		{name: "invalid header", defaultAccount: "demo", header: "a b", wantCode: connect.CodeInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = ""
			req := connect.NewRequest(&emptypb.Empty{})
			if tt.header != "" {
				req.Header().Set(AccountHeader, tt.header)
			}

			_, err := AccountInterceptor(tt.defaultAccount)(next)(context.Background(), req)
			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, connect.CodeOf(err))
				assert.Empty(t, seen)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAccount, seen)
		})
	}
}
