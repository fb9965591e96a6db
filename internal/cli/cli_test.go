package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dyike/StockPulse/config"
	"github.com/dyike/StockPulse/internal/dashboard"
	"github.com/dyike/StockPulse/models"
)

func TestValidateSymbol(t *testing.T) {
	tests := []struct {
		in      interface{}
		wantErr bool
	}{
		{"AAPL", false},
		{" msft ", false},
		{"", true},
		{"   ", true},
		{"ABCDEFGHIJK", true},
		{42, true},
	}
	for _, tt := range tests {
		if err := validateSymbol(tt.in); (err != nil) != tt.wantErr {
			t.Errorf("validateSymbol(%v) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
	}
}

func TestRenderResult(t *testing.T) {
	now := time.Date(2024, 5, 7, 14, 0, 0, 0, time.UTC)
	res := &dashboard.Result{
		Symbol: "AAPL",
		Quote: &models.Quote{
			Symbol:       "AAPL",
			LastPrice:    decimal.NewFromInt(150),
			PrevClose:    decimal.NewFromInt(148),
			Change:       decimal.NewFromInt(2),
			ChangePct:    decimal.NewFromInt(2).Div(decimal.NewFromInt(148)),
			IsMarketOpen: false,
			Session:      models.MarketSession{Label: "pre-market / after-hours"},
		},
		News: []models.NewsItem{{
			Title:     "Apple beats",
			Publisher: "Reuters",
			Published: now.Add(-2 * time.Minute),
		}},
	}

	out := renderResult(res, now, time.UTC, 7)
	for _, want := range []string{
		"AAPL",
		"150.00 USD",
		"+2.00 (+1.35%)",
		"After-hours / close · Prev close: 148.00 USD · pre-market / after-hours",
		"Apple beats",
		"Reuters · 2 minutes ago",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	res.News = nil
	if out := renderResult(res, now, time.UTC, 7); !strings.Contains(out, "No major news in the last 7 days.") {
		t.Errorf("empty news message missing:\n%s", out)
	}
	if out := renderResult(res, now, time.UTC, 14); !strings.Contains(out, "No major news in the last 14 days.") {
		t.Errorf("empty news message should follow the window:\n%s", out)
	}
}

func TestConfigSetCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	var buf bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", path, "config", "set", "news_window_days", "3"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(buf.String(), "news_window_days updated") {
		t.Fatalf("got %q", buf.String())
	}

	m, err := config.NewManager(config.WithConfigPath(path))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if m.Get().NewsWindowDays != 3 {
		t.Fatalf("news_window_days not persisted: %d", m.Get().NewsWindowDays)
	}
}

func TestShowConfigMasksSecrets(t *testing.T) {
	cfg := *config.DefaultConfigWithRoot(t.TempDir())
	cfg.FinnhubAPIKey = "super-secret"

	var buf bytes.Buffer
	if err := showConfig(&buf, cfg); err != nil {
		t.Fatalf("showConfig: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "super-secret") {
		t.Fatal("secret leaked")
	}
	if !strings.Contains(out, "finnhub_api_key") || !strings.Contains(out, "****") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestConfigPathCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	var buf bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", path, "config", "path"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if strings.TrimSpace(buf.String()) != path {
		t.Fatalf("got %q, want %q", buf.String(), path)
	}
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"version"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "StockPulse ") {
		t.Fatalf("got %q", buf.String())
	}
}

type fakeLookuper struct {
	res   *dashboard.Result
	calls int
}

func (f *fakeLookuper) Lookup(_ context.Context, symbol string) (*dashboard.Result, error) {
	f.calls++
	return f.res, nil
}

func TestRunQuoteReusesService(t *testing.T) {
	a := &app{cfg: *config.DefaultConfigWithRoot(t.TempDir()), logger: zerolog.Nop()}
	a.cfg.NewsWindowDays = 2
	fl := &fakeLookuper{res: &dashboard.Result{
		Symbol: "MSFT",
		Quote: &models.Quote{
			Symbol:    "MSFT",
			LastPrice: decimal.NewFromInt(410),
			PrevClose: decimal.NewFromInt(400),
			Change:    decimal.NewFromInt(10),
			ChangePct: decimal.NewFromInt(10).Div(decimal.NewFromInt(400)),
		},
	}}

	var buf bytes.Buffer
	for i := 0; i < 2; i++ {
		if err := a.runQuote(context.Background(), &buf, fl, "msft", false); err != nil {
			t.Fatalf("runQuote: %v", err)
		}
	}
	if fl.calls != 2 {
		t.Fatalf("expected both lookups on the same service, got %d", fl.calls)
	}
	if !strings.Contains(buf.String(), "No major news in the last 2 days.") {
		t.Errorf("output should use the configured window:\n%s", buf.String())
	}
}

func TestServeReloadDebounceFlag(t *testing.T) {
	serve, _, err := NewRootCmd().Find([]string{"serve"})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	flag := serve.Flags().Lookup("reload-debounce")
	if flag == nil {
		t.Fatal("serve has no --reload-debounce flag")
	}
	if flag.DefValue != config.DefaultReloadDebounce.String() {
		t.Errorf("default = %s, want %s", flag.DefValue, config.DefaultReloadDebounce)
	}
}
