package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProfile(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		wantName string
		wantCcy  string
		wantErr  string
	}{
		{
			name:     "full profile",
			yaml:     "name: Harbor & Pine Studio\nemployee_count: 14\nindustry: Design\nbase_currency: EUR\n",
			wantName: "Harbor & Pine Studio",
			wantCcy:  "EUR",
		},
		{
			name:     "currency left to default",
			yaml:     "name: '  Acme  '\n",
			wantName: "Acme",
		},
		{
			name:    "missing name",
			yaml:    "employee_count: 3\n",
			wantErr: "name is required",
		},
		{
			name:    "negative headcount",
			yaml:    "name: Acme\nemployee_count: -1\n",
			wantErr: "employee_count",
		},
		{
			name:    "unknown currency",
			yaml:    "name: Acme\nbase_currency: XYZQ\n",
			wantErr: "currency",
		},
		{
			name:    "malformed yaml",
			yaml:    "name: [unterminated\n",
			wantErr: "failed to parse company profile",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseProfile([]byte(tt.yaml))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, p.Name)
			assert.Equal(t, tt.wantCcy, p.BaseCurrency)
		})
	}
}

func TestLoadProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: Acme\nemployee_count: 12\nbase_currency: USD\n"), 0o600))

	p, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, 12, p.EmployeeCount)
	assert.Equal(t, "USD", p.BaseCurrency)

	_, err = LoadProfile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read company profile")
}
