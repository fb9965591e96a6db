package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/assert/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dyike/StockPulse/internal/dashboard"
	"github.com/dyike/StockPulse/internal/quote"
	"github.com/dyike/StockPulse/models"
)

type fakeLookuper struct {
	result *dashboard.Result
	err    error
	calls  int
}

func (f *fakeLookuper) Lookup(ctx context.Context, rawSymbol string) (*dashboard.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

var testNow = time.Date(2024, 5, 7, 14, 0, 0, 0, time.UTC)

func newTestServer(l Lookuper) *Server {
	gin.SetMode(gin.TestMode)
	s := NewServer(l, Settings{DefaultSymbol: "AAPL", Location: time.UTC}, zerolog.Nop())
	s.now = func() time.Time { return testNow }
	return s
}

func sampleResult(news []models.NewsItem) *dashboard.Result {
	return &dashboard.Result{
		Symbol: "AAPL",
		Quote: &models.Quote{
			Symbol:       "AAPL",
			LastPrice:    decimal.NewFromInt(150),
			PrevClose:    decimal.NewFromInt(148),
			Change:       decimal.NewFromInt(2),
			ChangePct:    decimal.NewFromInt(2).Div(decimal.NewFromInt(148)),
			IsMarketOpen: true,
			Session:      models.MarketSession{Open: true, Label: quote.SessionOpenLabel},
		},
		News: news,
	}
}

func get(s *Server, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestIndex_FormOnly(t *testing.T) {
	fl := &fakeLookuper{}
	w := get(newTestServer(fl), "/")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, fl.calls)
	body := w.Body.String()
	assert.Equal(t, true, strings.Contains(body, `maxlength="10"`))
	assert.Equal(t, true, strings.Contains(body, `value="AAPL"`))
}

func TestIndex_RendersQuoteAndNews(t *testing.T) {
	fl := &fakeLookuper{result: sampleResult([]models.NewsItem{{
		Title:           "Apple beats",
		TitleTranslated: "苹果超预期",
		TitleOK:         true,
		Summary:         "Revenue rose",
		Publisher:       "Reuters",
		Published:       testNow.Add(-3 * time.Hour),
		Link:            "https://example.com/a",
	}})}
	w := get(newTestServer(fl), "/?symbol=aapl")

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	for _, want := range []string{
		"150.00 USD",
		"+2.00 (+1.35%)",
		"#00C805",
		"Intraday price · Prev close: 148.00 USD · US market hours",
		"苹果超预期",
		"Revenue rose",
		"Reuters · 3 hours ago",
		"View original",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestIndex_NoNews(t *testing.T) {
	fl := &fakeLookuper{result: sampleResult(nil)}
	w := get(newTestServer(fl), "/?symbol=AAPL")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, strings.Contains(w.Body.String(), "No major news in the last 7 days."))
}

func TestIndex_NoNewsFollowsWindow(t *testing.T) {
	fl := &fakeLookuper{result: sampleResult(nil)}
	s := newTestServer(fl)
	s.Swap(fl, Settings{DefaultSymbol: "AAPL", Location: time.UTC, NewsWindowDays: 3})

	body := get(s, "/?symbol=AAPL").Body.String()
	assert.Equal(t, true, strings.Contains(body, "No major news in the last 3 days."))
	assert.Equal(t, false, strings.Contains(body, "7 days"))
}

func TestIndex_NotFound(t *testing.T) {
	fl := &fakeLookuper{err: fmt.Errorf("%w for ZZZZ", quote.ErrNoValidQuote)}
	w := get(newTestServer(fl), "/?symbol=zzzz")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, strings.Contains(w.Body.String(), "Stock not found. Check the symbol or your connection."))
}

func TestIndex_EmptySymbol(t *testing.T) {
	fl := &fakeLookuper{err: quote.ErrEmptySymbol}
	w := get(newTestServer(fl), "/?symbol=")

	assert.Equal(t, true, strings.Contains(w.Body.String(), "Please enter a stock symbol."))
}

func TestAPIQuote(t *testing.T) {
	fl := &fakeLookuper{result: sampleResult([]models.NewsItem{{Title: "x", Published: testNow}})}
	w := get(newTestServer(fl), "/api/quote?symbol=AAPL")

	assert.Equal(t, http.StatusOK, w.Code)
	var res dashboard.Result
	err := json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, nil, err)
	assert.Equal(t, "AAPL", res.Symbol)
	assert.Equal(t, 1, len(res.News))
	assert.Equal(t, true, res.Quote.LastPrice.Equal(decimal.NewFromInt(150)))
}

func TestAPIQuote_Errors(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{quote.ErrEmptySymbol, http.StatusBadRequest},
		{fmt.Errorf("%w for X", quote.ErrNoValidQuote), http.StatusNotFound},
		{fmt.Errorf("dial tcp: timeout"), http.StatusBadGateway},
	}
	for _, tt := range tests {
		w := get(newTestServer(&fakeLookuper{err: tt.err}), "/api/quote?symbol=X")
		assert.Equal(t, tt.code, w.Code)
	}
}

func TestHealth(t *testing.T) {
	w := get(newTestServer(&fakeLookuper{}), "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSwap(t *testing.T) {
	first := &fakeLookuper{result: sampleResult(nil)}
	second := &fakeLookuper{result: sampleResult(nil)}
	s := newTestServer(first)

	s.Swap(second, Settings{DefaultSymbol: "MSFT"})
	get(s, "/api/quote?symbol=AAPL")

	assert.Equal(t, 0, first.calls)
	assert.Equal(t, 1, second.calls)
	assert.Equal(t, true, strings.Contains(get(s, "/").Body.String(), `value="MSFT"`))
}

func TestSwap_ReappliesCORS(t *testing.T) {
	fl := &fakeLookuper{result: sampleResult(nil)}
	s := newTestServer(fl)

	request := func(method string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(method, "/api/quote?symbol=AAPL", nil)
		req.Header.Set("Origin", "https://dash.example.com")
		if method == http.MethodOptions {
			req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		}
		s.Handler().ServeHTTP(w, req)
		return w
	}

	w := request(http.MethodGet)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "", w.Header().Get("Access-Control-Allow-Origin"))

	s.Swap(fl, Settings{DefaultSymbol: "AAPL", CORSOrigins: []string{"https://dash.example.com"}})
	w = request(http.MethodGet)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://dash.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	w = request(http.MethodOptions)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://dash.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	s.Swap(fl, Settings{DefaultSymbol: "AAPL", CORSOrigins: []string{"https://other.example.com"}})
	w = request(http.MethodGet)
	assert.Equal(t, http.StatusForbidden, w.Code)

	s.Swap(fl, Settings{DefaultSymbol: "AAPL"})
	w = request(http.MethodGet)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "", w.Header().Get("Access-Control-Allow-Origin"))
}
