package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "GRPC_PORT", "DATABASE_URL", "REDIS_URL",
		"SCHEDULER_ENABLED", "SCHEDULER_HOUR", "SCHEDULER_MINUTE",
		"GMAIL_CREDENTIALS_PATH", "GMAIL_TOKEN_PATH", "SENDER_EMAIL",
		"ADZUNA_APP_ID", "ADZUNA_APP_KEY", "ADZUNA_COUNTRY",
		"SEARCH_SOURCES", "RED_FLAGS", "VOCABULARY_FILE", "LOCK_FILE",
		"LOG_JSON", "LOG_DEBUG",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "9000", cfg.GRPCPort)
	assert.True(t, cfg.GRPCEnabled())
	assert.Equal(t, "sqlite:///./career_agent.db", cfg.DatabaseURL)
	assert.Empty(t, cfg.RedisURL)
	assert.True(t, cfg.SchedulerEnabled)
	assert.Equal(t, 8, cfg.SchedulerHour)
	assert.Equal(t, 0, cfg.SchedulerMinute)
	assert.Equal(t, "your_email@gmail.com", cfg.SenderEmail)
	assert.Equal(t, "in", cfg.AdzunaCountry)
	assert.Equal(t, []string{"internshala", "linkedin", "remoteok", "adzuna"}, cfg.SearchSources)
	assert.Nil(t, cfg.RedFlags)
	assert.Equal(t, "careeragent.lock", cfg.LockFile)
	assert.False(t, cfg.LogJSON)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("GRPC_PORT", "0")
	t.Setenv("SCHEDULER_HOUR", "23")
	t.Setenv("SCHEDULER_MINUTE", "59")
	t.Setenv("SCHEDULER_ENABLED", "false")
	t.Setenv("SEARCH_SOURCES", " RemoteOK , ,adzuna ")
	t.Setenv("RED_FLAGS", "Unpaid, registration fee")
	t.Setenv("ADZUNA_COUNTRY", "GB")
	t.Setenv("LOG_JSON", "1")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.False(t, cfg.GRPCEnabled())
	assert.Equal(t, 23, cfg.SchedulerHour)
	assert.Equal(t, 59, cfg.SchedulerMinute)
	assert.False(t, cfg.SchedulerEnabled)
	assert.Equal(t, []string{"remoteok", "adzuna"}, cfg.SearchSources)
	assert.Equal(t, []string{"unpaid", "registration fee"}, cfg.RedFlags)
	assert.Equal(t, "gb", cfg.AdzunaCountry)
	assert.True(t, cfg.LogJSON)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"SCHEDULER_HOUR", "24"},
		{"SCHEDULER_HOUR", "eight"},
		{"SCHEDULER_MINUTE", "-1"},
		{"SCHEDULER_MINUTE", "60"},
		{"SCHEDULER_ENABLED", "maybe"},
		{"PORT", "http"},
		{"SENDER_EMAIL", "nobody"},
		{"SEARCH_SOURCES", "monster"},
		{"ADZUNA_COUNTRY", "india"},
		{"LOG_DEBUG", "yes please"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
