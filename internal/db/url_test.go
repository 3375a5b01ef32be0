package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseURL(t *testing.T) {
	tests := []struct {
		in         string
		wantDriver string
		wantTarget string
	}{
		{"sqlite:///./career_agent.db", DriverSQLite, "./career_agent.db"},
		{"sqlite:////var/lib/ca.db", DriverSQLite, "/var/lib/ca.db"},
		{"postgres://u:p@localhost:5432/ca", DriverPostgres, "postgres://u:p@localhost:5432/ca"},
		{"postgresql://localhost/ca?sslmode=disable", DriverPostgres, "postgresql://localhost/ca?sslmode=disable"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			driver, target, err := ParseURL(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDriver, driver)
			assert.Equal(t, tt.wantTarget, target)
		})
	}
}

func TestParseURLRejects(t *testing.T) {
	for _, in := range []string{"", "mysql://x", "sqlite:///", "./plain.db"} {
		_, _, err := ParseURL(in)
		assert.Error(t, err, in)
	}
}
