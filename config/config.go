package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

const (
	PriceProviderYahoo    = "yahoo"
	PriceProviderLongport = "longport"

	NewsProviderYahoo   = "yahoo"
	NewsProviderFinnhub = "finnhub"

	TranslateNone   = "none"
	TranslateGoogle = "google"
	TranslateLLM    = "llm"

	LLMProviderDeepSeek = "deepseek"
	LLMProviderOpenAI   = "openai"
)

type Config struct {
	ConfigDir  string `json:"config_dir"`
	ListenAddr string `json:"listen_addr"`
	// CORSOrigins enables CORS on /api for these origins.
	CORSOrigins []string `json:"cors_origins"`

	DisplayTimezone string `json:"display_timezone"`
	DefaultSymbol   string `json:"default_symbol"`

	NewsLimit      int `json:"news_limit"`
	NewsWindowDays int `json:"news_window_days"`
	// RSSTimeoutSeconds bounds the fallback RSS request.
	RSSTimeoutSeconds int    `json:"rss_timeout_seconds"`
	RSSUserAgent      string `json:"rss_user_agent"`

	// RequestIntervalMs spaces out provider calls. 0 disables throttling.
	RequestIntervalMs int `json:"request_interval_ms"`
	MaxRetries        int `json:"max_retries"`
	RetryBaseDelayMs  int `json:"retry_base_delay_ms"`

	PriceProvider     string `json:"price_provider"`
	NewsProvider      string `json:"news_provider"`
	TranslateProvider string `json:"translate_provider"`
	TargetLanguage    string `json:"target_language"`

	LLMProvider string `json:"llm_provider"`
	LLMModel    string `json:"llm_model"`
	LLMBaseURL  string `json:"llm_base_url"`
	LLMAPIKey   string `json:"llm_api_key"`

	// Longport API Configuration
	LongportAppKey      string `json:"longport_app_key"`
	LongportAppSecret   string `json:"longport_app_secret"`
	LongportAccessToken string `json:"longport_access_token"`

	FinnhubAPIKey string `json:"finnhub_api_key"`

	LogLevel string `json:"log_level"`
	LogFile  string `json:"log_file"`
	Debug    bool   `json:"debug"`

	// Eino Debug configuration
	EinoDebugEnabled bool `json:"eino_debug_enabled"`
	EinoDebugPort    int  `json:"eino_debug_port"`
}

func DefaultConfig() *Config {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir, _ = os.Getwd()
	}
	cfg := DefaultConfigWithRoot(filepath.Join(dir, "StockPulse"))

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg.loadFromEnv()

	return cfg
}

// DefaultConfigWithRoot returns the built-in defaults rooted at dir, without
// consulting the environment.
func DefaultConfigWithRoot(dir string) *Config {
	return &Config{
		ConfigDir:  dir,
		ListenAddr: ":8501",

		DisplayTimezone: "Asia/Shanghai",
		DefaultSymbol:   "AAPL",

		NewsLimit:         8,
		NewsWindowDays:    7,
		RSSTimeoutSeconds: 5,
		RSSUserAgent:      "Mozilla/5.0",

		RequestIntervalMs: 500,
		MaxRetries:        1,
		RetryBaseDelayMs:  500,

		PriceProvider:     PriceProviderYahoo,
		NewsProvider:      NewsProviderYahoo,
		TranslateProvider: TranslateGoogle,
		TargetLanguage:    "zh-CN",

		LLMProvider: LLMProviderDeepSeek,
		LLMModel:    "deepseek-chat",

		LogLevel: "info",

		EinoDebugEnabled: false,
		EinoDebugPort:    52538,
	}
}

func (c *Config) loadFromEnv() {
	if val := os.Getenv("STOCKPULSE_LISTEN_ADDR"); val != "" {
		c.ListenAddr = val
	}
	if val := os.Getenv("STOCKPULSE_CORS_ORIGINS"); val != "" {
		c.CORSOrigins = nil
		for _, origin := range strings.Split(val, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				c.CORSOrigins = append(c.CORSOrigins, origin)
			}
		}
	}
	if val := os.Getenv("STOCKPULSE_DISPLAY_TZ"); val != "" {
		c.DisplayTimezone = val
	}
	if val := os.Getenv("STOCKPULSE_NEWS_LIMIT"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.NewsLimit = v
		}
	}
	if val := os.Getenv("STOCKPULSE_NEWS_WINDOW_DAYS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.NewsWindowDays = v
		}
	}
	if val := os.Getenv("STOCKPULSE_REQUEST_INTERVAL_MS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.RequestIntervalMs = v
		}
	}
	if val := os.Getenv("STOCKPULSE_MAX_RETRIES"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.MaxRetries = v
		}
	}

	if val := os.Getenv("STOCKPULSE_PRICE_PROVIDER"); val != "" {
		c.PriceProvider = strings.ToLower(val)
	}
	if val := os.Getenv("STOCKPULSE_NEWS_PROVIDER"); val != "" {
		c.NewsProvider = strings.ToLower(val)
	}
	if val := os.Getenv("STOCKPULSE_TRANSLATE_PROVIDER"); val != "" {
		c.TranslateProvider = strings.ToLower(val)
	}
	if val := os.Getenv("STOCKPULSE_TARGET_LANGUAGE"); val != "" {
		c.TargetLanguage = val
	}

	if val := os.Getenv("LLM_PROVIDER"); val != "" {
		c.LLMProvider = strings.ToLower(val)
	}
	if val := os.Getenv("LLM_MODEL"); val != "" {
		c.LLMModel = val
	}
	if val := os.Getenv("LLM_BASE_URL"); val != "" {
		c.LLMBaseURL = val
	}
	if val := os.Getenv("DEEPSEEK_API_KEY"); val != "" && c.LLMAPIKey == "" {
		c.LLMAPIKey = val
	}
	if val := os.Getenv("OPENAI_API_KEY"); val != "" && c.LLMProvider == LLMProviderOpenAI {
		c.LLMAPIKey = val
	}

	if val := os.Getenv("LONGPORT_APP_KEY"); val != "" {
		c.LongportAppKey = val
	}
	if val := os.Getenv("LONGPORT_APP_SECRET"); val != "" {
		c.LongportAppSecret = val
	}
	if val := os.Getenv("LONGPORT_ACCESS_TOKEN"); val != "" {
		c.LongportAccessToken = val
	}
	if val := os.Getenv("FINNHUB_API_KEY"); val != "" {
		c.FinnhubAPIKey = val
	}

	if val := os.Getenv("STOCKPULSE_LOG_LEVEL"); val != "" {
		c.LogLevel = val
	}
	if val := os.Getenv("STOCKPULSE_LOG_FILE"); val != "" {
		c.LogFile = val
	}
	if val := os.Getenv("STOCKPULSE_DEFAULT_SYMBOL"); val != "" {
		c.DefaultSymbol = strings.ToUpper(strings.TrimSpace(val))
	}
	if val := os.Getenv("STOCKPULSE_DEBUG"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.Debug = enabled
		}
	}

	if val := os.Getenv("EINO_DEBUG_ENABLED"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.EinoDebugEnabled = enabled
		}
	}
	if val := os.Getenv("EINO_DEBUG_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			c.EinoDebugPort = port
		}
	}
}

// WithEnv returns a copy of c with .env and environment overrides applied.
// The file-backed config stays free of secrets that only live in the
// environment.
func (c Config) WithEnv() Config {
	_ = godotenv.Load()
	c.loadFromEnv()
	return c
}

// Validate reports the first setting that cannot be used as-is.
func (c *Config) Validate() error {
	if c.NewsLimit < 0 {
		return errors.New("news_limit must not be negative")
	}
	if c.NewsWindowDays <= 0 {
		return errors.New("news_window_days must be positive")
	}
	if c.RequestIntervalMs < 0 || c.MaxRetries < 0 || c.RetryBaseDelayMs < 0 {
		return errors.New("request_interval_ms, max_retries and retry_base_delay_ms must not be negative")
	}
	for _, origin := range c.CORSOrigins {
		if origin != "*" && !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("cors origin %q must be \"*\" or start with http:// or https://", origin)
		}
	}
	if _, err := time.LoadLocation(c.DisplayTimezone); err != nil {
		return fmt.Errorf("invalid display_timezone %q: %w", c.DisplayTimezone, err)
	}

	switch c.PriceProvider {
	case PriceProviderYahoo, PriceProviderLongport:
	default:
		return fmt.Errorf("unknown price_provider %q", c.PriceProvider)
	}
	switch c.NewsProvider {
	case NewsProviderYahoo, NewsProviderFinnhub:
	default:
		return fmt.Errorf("unknown news_provider %q", c.NewsProvider)
	}
	switch c.TranslateProvider {
	case TranslateNone, TranslateGoogle, TranslateLLM:
	default:
		return fmt.Errorf("unknown translate_provider %q", c.TranslateProvider)
	}
	switch c.LLMProvider {
	case LLMProviderDeepSeek, LLMProviderOpenAI:
	default:
		return fmt.Errorf("unknown llm_provider %q", c.LLMProvider)
	}
	return nil
}

// LongportConfigured reports whether all Longport credentials are present.
func (c *Config) LongportConfigured() bool {
	return c.LongportAppKey != "" && c.LongportAppSecret != "" && c.LongportAccessToken != ""
}

func (c *Config) RequestInterval() time.Duration {
	return time.Duration(c.RequestIntervalMs) * time.Millisecond
}

func (c *Config) RetryBaseDelay() time.Duration {
	return time.Duration(c.RetryBaseDelayMs) * time.Millisecond
}

func (c *Config) RSSTimeout() time.Duration {
	return time.Duration(c.RSSTimeoutSeconds) * time.Second
}

func (c *Config) NewsWindow() time.Duration {
	return time.Duration(c.NewsWindowDays) * 24 * time.Hour
}

// Location returns the display timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.DisplayTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) EnsureDirectories() error {
	dirs := []string{c.ConfigDir}
	if c.LogFile != "" {
		dirs = append(dirs, filepath.Dir(c.LogFile))
	}
	for _, dir := range dirs {
		path := strings.TrimSpace(dir)
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", path, err)
		}
	}
	return nil
}
