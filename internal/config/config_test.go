package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SESSION_STORE", "")
	t.Setenv("LLM_TIMEOUT_MS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.SessionStore != StoreSQLite {
		t.Fatalf("expected sqlite store, got %q", cfg.SessionStore)
	}
	if cfg.LLMTimeout != 25*time.Second {
		t.Fatalf("unexpected timeout: %v", cfg.LLMTimeout)
	}
	if cfg.BlankInputLimit != 2 || cfg.MaxToolIterations != 10 {
		t.Fatalf("unexpected limits: blank=%d iterations=%d", cfg.BlankInputLimit, cfg.MaxToolIterations)
	}
	if cfg.TwilioEnabled() {
		t.Fatalf("twilio should be disabled without credentials")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SESSION_STORE", "DynamoDB")
	t.Setenv("SESSION_TABLE_NAME", "sessions")
	t.Setenv("TRANSFER_ALLOWLIST", " +13205550100, ,+13205550101 ")
	t.Setenv("LLM_TIMEOUT_MS", "1500")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.SessionStore != StoreDynamoDB {
		t.Fatalf("expected dynamodb store, got %q", cfg.SessionStore)
	}
	if len(cfg.TransferAllowlist) != 2 || cfg.TransferAllowlist[1] != "+13205550101" {
		t.Fatalf("unexpected allowlist: %v", cfg.TransferAllowlist)
	}
	if cfg.LLMTimeout != 1500*time.Millisecond {
		t.Fatalf("unexpected timeout: %v", cfg.LLMTimeout)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Fatalf("unexpected log level: %v", cfg.SlogLevel())
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			SessionStore:      StoreSQLite,
			DatabaseURL:       ":memory:",
			TimeZone:          "UTC",
			LLMTimeout:        time.Second,
			MaxToolIterations: 1,
		}
	}
	if err := valid().Validate(); err != nil {
		t.Fatalf("expected valid config: %v", err)
	}

	cases := map[string]func(c *Config){
		"unknown store":      func(c *Config) { c.SessionStore = "redis" },
		"missing dsn":        func(c *Config) { c.SessionStore = StorePostgres },
		"bad zone":           func(c *Config) { c.TimeZone = "Mars/Olympus" },
		"zero timeout":       func(c *Config) { c.LLMTimeout = 0 },
		"zero iterations":    func(c *Config) { c.MaxToolIterations = 0 },
		"negative blank cap": func(c *Config) { c.BlankInputLimit = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := valid()
			mutate(c)
			if err := c.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestLocationFallsBackToUTC(t *testing.T) {
	c := &Config{TimeZone: "Nowhere/Special"}
	if c.Location() != time.UTC {
		t.Fatalf("expected UTC fallback")
	}
}
