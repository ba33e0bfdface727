// Package config provides configuration for the dialog engine.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends.
const (
	StoreSQLite   = "sqlite"
	StoreDynamoDB = "dynamodb"
	StorePostgres = "postgres"
)

// Config holds the dialog engine configuration.
type Config struct {
	// Server settings
	HTTPPort int
	RPCPort  int

	// Session store
	SessionStore     string
	DatabaseURL      string
	PostgresDSN      string
	SessionTableName string
	SessionTTL       time.Duration
	TimeZone         string

	// Model backend
	LLMBaseURL     string
	LLMAPIKey      string
	LLMModel       string
	LLMTimeout     time.Duration
	LLMTemperature float64
	LLMMaxTokens   int

	// Turn processing
	MaxToolIterations int
	BlankInputLimit   int
	SystemPrompt      string

	// Tools
	DirectionsURL     string
	StoreHours        string
	TransferAllowlist []string
	BlockedTools      []string

	// Twilio SMS
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string

	// Logging
	LogLevel string
}

// DefaultSystemPrompt is used when SYSTEM_PROMPT is not set.
const DefaultSystemPrompt = `You are a friendly phone assistant for a small retail store. ` +
	`Answer questions about products, opening hours and location briefly. ` +
	`When the caller asks to speak with a person, call transfer_call with the store's main number. ` +
	`When the caller is done or says good bye, call hangup_call.`

// Load loads configuration from a .env file (when present) and environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	cfg := &Config{
		HTTPPort:          getEnvInt("HTTP_PORT", 8080),
		RPCPort:           getEnvInt("RPC_PORT", 8091),
		SessionStore:      strings.ToLower(getEnv("SESSION_STORE", StoreSQLite)),
		DatabaseURL:       getEnv("DATABASE_URL", "file:callbot.db?cache=shared&mode=rwc"),
		PostgresDSN:       getEnv("POSTGRES_DSN", ""),
		SessionTableName:  getEnv("SESSION_TABLE_NAME", "callbot-sessions"),
		SessionTTL:        time.Duration(getEnvInt("SESSION_TTL_HOURS", 48)) * time.Hour,
		TimeZone:          getEnv("SESSION_TIME_ZONE", "America/Chicago"),
		LLMBaseURL:        getEnv("LLM_BASE_URL", "https://api.openai.com"),
		LLMAPIKey:         getEnv("LLM_API_KEY", ""),
		LLMModel:          getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMTimeout:        time.Duration(getEnvInt("LLM_TIMEOUT_MS", 25000)) * time.Millisecond,
		LLMTemperature:    getEnvFloat("LLM_TEMPERATURE", 0.2),
		LLMMaxTokens:      getEnvInt("LLM_MAX_TOKENS", 500),
		MaxToolIterations: getEnvInt("MAX_TOOL_ITERATIONS", 10),
		BlankInputLimit:   getEnvInt("BLANK_INPUT_LIMIT", 2),
		SystemPrompt:      getEnv("SYSTEM_PROMPT", DefaultSystemPrompt),
		DirectionsURL:     getEnv("DIRECTIONS_URL", "https://www.google.com/maps/dir/?api=1&destination=160+Main+St+Wahkon+MN+56386"),
		StoreHours:        getEnv("STORE_HOURS", "mon-sat=10:00-17:00,sun=12:00-16:00"),
		TransferAllowlist: getEnvList("TRANSFER_ALLOWLIST"),
		BlockedTools:      getEnvList("BLOCKED_TOOLS"),
		TwilioAccountSID:  getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:   getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioFromNumber:  getEnv("TWILIO_FROM_NUMBER", ""),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.SessionStore {
	case StoreSQLite:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL cannot be empty")
		}
	case StoreDynamoDB:
		if c.SessionTableName == "" {
			return fmt.Errorf("SESSION_TABLE_NAME cannot be empty")
		}
	case StorePostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN cannot be empty")
		}
	default:
		return fmt.Errorf("unknown SESSION_STORE %q", c.SessionStore)
	}
	if _, err := time.LoadLocation(c.TimeZone); err != nil {
		return fmt.Errorf("SESSION_TIME_ZONE: %w", err)
	}
	if c.LLMTimeout <= 0 {
		return fmt.Errorf("LLM_TIMEOUT_MS must be > 0")
	}
	if c.MaxToolIterations <= 0 {
		return fmt.Errorf("MAX_TOOL_ITERATIONS must be > 0")
	}
	if c.BlankInputLimit < 0 {
		return fmt.Errorf("BLANK_INPUT_LIMIT must be >= 0")
	}
	return nil
}

// Location returns the reference time zone for session keys.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// TwilioEnabled reports whether SMS credentials are configured.
func (c *Config) TwilioEnabled() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" && c.TwilioFromNumber != ""
}

// SlogLevel maps LogLevel onto a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvList(key string) []string {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
