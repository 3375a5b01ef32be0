// Package config loads and validates environment variables at startup.
// Fail-fast: a malformed value is an error, never a silent default.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Config holds all runtime configuration for CareerAgent.
type Config struct {
	Port        string `validate:"required,numeric"`
	GRPCPort    string `validate:"required,numeric"`
	DatabaseURL string `validate:"required"`
	RedisURL    string

	SchedulerEnabled bool
	SchedulerHour    int `validate:"min=0,max=23"`
	SchedulerMinute  int `validate:"min=0,max=59"`

	GmailCredentialsPath string `validate:"required"`
	GmailTokenPath       string `validate:"required"`
	SenderEmail          string `validate:"required,email"`

	AdzunaAppID   string
	AdzunaAppKey  string
	AdzunaCountry string `validate:"required,len=2"`

	SearchSources  []string `validate:"dive,oneof=internshala linkedin remoteok adzuna"`
	RedFlags       []string
	VocabularyFile string
	LockFile       string `validate:"required"`

	LogJSON  bool
	LogDebug bool
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	hour, err := intEnv("SCHEDULER_HOUR", 8)
	if err != nil {
		return nil, err
	}
	minute, err := intEnv("SCHEDULER_MINUTE", 0)
	if err != nil {
		return nil, err
	}
	enabled, err := boolEnv("SCHEDULER_ENABLED", true)
	if err != nil {
		return nil, err
	}
	logJSON, err := boolEnv("LOG_JSON", false)
	if err != nil {
		return nil, err
	}
	logDebug, err := boolEnv("LOG_DEBUG", false)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:        stringEnv("PORT", "8000"),
		GRPCPort:    stringEnv("GRPC_PORT", "9000"),
		DatabaseURL: stringEnv("DATABASE_URL", "sqlite:///./career_agent.db"),
		RedisURL:    os.Getenv("REDIS_URL"),

		SchedulerEnabled: enabled,
		SchedulerHour:    hour,
		SchedulerMinute:  minute,

		GmailCredentialsPath: stringEnv("GMAIL_CREDENTIALS_PATH", "credentials.json"),
		GmailTokenPath:       stringEnv("GMAIL_TOKEN_PATH", "token.json"),
		SenderEmail:          stringEnv("SENDER_EMAIL", "your_email@gmail.com"),

		AdzunaAppID:   os.Getenv("ADZUNA_APP_ID"),
		AdzunaAppKey:  os.Getenv("ADZUNA_APP_KEY"),
		AdzunaCountry: strings.ToLower(stringEnv("ADZUNA_COUNTRY", "in")),

		SearchSources:  listEnv("SEARCH_SOURCES", "internshala,linkedin,remoteok,adzuna"),
		RedFlags:       listEnv("RED_FLAGS", ""),
		VocabularyFile: os.Getenv("VOCABULARY_FILE"),
		LockFile:       stringEnv("LOCK_FILE", "careeragent.lock"),

		LogJSON:  logJSON,
		LogDebug: logDebug,
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// GRPCEnabled reports whether the gRPC listener should start.
func (c *Config) GRPCEnabled() bool {
	return c.GRPCPort != "0"
}

func stringEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, s)
	}
	return v, nil
}

func boolEnv(key string, def bool) (bool, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean, got %q", key, s)
	}
	return v, nil
}

// listEnv splits a comma list, dropping blanks and lower-casing entries.
func listEnv(key, def string) []string {
	raw := stringEnv(key, def)
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.ToLower(strings.TrimSpace(part)); p != "" {
			out = append(out, p)
		}
	}
	return out
}
