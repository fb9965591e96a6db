package config

import (
	"testing"
	"time"
)

func TestDefaultConfigWithRootValidates(t *testing.T) {
	cfg := DefaultConfigWithRoot(t.TempDir())
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.RequestInterval() != 500*time.Millisecond {
		t.Fatalf("unexpected request interval %v", cfg.RequestInterval())
	}
	if cfg.NewsWindow() != 7*24*time.Hour {
		t.Fatalf("unexpected news window %v", cfg.NewsWindow())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative limit", func(c *Config) { c.NewsLimit = -1 }},
		{"zero window", func(c *Config) { c.NewsWindowDays = 0 }},
		{"bad timezone", func(c *Config) { c.DisplayTimezone = "Mars/Olympus" }},
		{"bad price provider", func(c *Config) { c.PriceProvider = "x" }},
		{"bad news provider", func(c *Config) { c.NewsProvider = "x" }},
		{"bad translator", func(c *Config) { c.TranslateProvider = "x" }},
		{"bad llm", func(c *Config) { c.LLMProvider = "x" }},
		{"negative retries", func(c *Config) { c.MaxRetries = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfigWithRoot(t.TempDir())
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("STOCKPULSE_NEWS_LIMIT", "4")
	t.Setenv("STOCKPULSE_TRANSLATE_PROVIDER", "NONE")
	t.Setenv("STOCKPULSE_REQUEST_INTERVAL_MS", "0")
	t.Setenv("LONGPORT_APP_KEY", "k")

	cfg := DefaultConfigWithRoot(t.TempDir())
	cfg.loadFromEnv()

	if cfg.NewsLimit != 4 {
		t.Errorf("news limit = %d", cfg.NewsLimit)
	}
	if cfg.TranslateProvider != TranslateNone {
		t.Errorf("translate provider = %q", cfg.TranslateProvider)
	}
	if cfg.RequestInterval() != 0 {
		t.Errorf("request interval = %v", cfg.RequestInterval())
	}
	if cfg.LongportConfigured() {
		t.Errorf("longport should need all three credentials")
	}
}

func TestWithEnvLeavesOriginalUntouched(t *testing.T) {
	t.Setenv("STOCKPULSE_CORS_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("FINNHUB_API_KEY", "from-env")

	base := DefaultConfigWithRoot(t.TempDir())
	effective := base.WithEnv()

	if len(effective.CORSOrigins) != 2 || effective.CORSOrigins[1] != "http://b.test" {
		t.Errorf("cors origins = %v", effective.CORSOrigins)
	}
	if effective.FinnhubAPIKey != "from-env" {
		t.Errorf("finnhub key = %q", effective.FinnhubAPIKey)
	}
	if base.FinnhubAPIKey != "" || len(base.CORSOrigins) != 0 {
		t.Errorf("base config was modified: %+v", base)
	}
}
