// Package quote turns provider price data into a single dashboard quote.
package quote

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dyike/StockPulse/models"
	"github.com/dyike/StockPulse/pkg/dataflows"
)

var (
	ErrEmptySymbol  = errors.New("symbol is required")
	ErrNoValidQuote = errors.New("no valid quote")
)

// Normalize trims and upper-cases a user supplied ticker.
func Normalize(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

type Fetcher struct {
	source dataflows.PriceSource
	logger zerolog.Logger
	now    func() time.Time
}

type Option func(*Fetcher)

// WithClock overrides time.Now for AsOf and the session.
func WithClock(now func() time.Time) Option {
	return func(f *Fetcher) {
		f.now = now
	}
}

func NewFetcher(source dataflows.PriceSource, logger zerolog.Logger, opts ...Option) *Fetcher {
	f := &Fetcher{
		source: source,
		logger: logger.With().Str("component", "quote").Logger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch builds the quote for symbol from the last two daily closes, falling
// back to the live snapshot when no history is available.
func (f *Fetcher) Fetch(ctx context.Context, symbol string) (*models.Quote, error) {
	symbol = Normalize(symbol)
	if symbol == "" {
		return nil, ErrEmptySymbol
	}

	var last, prev decimal.Decimal
	var haveLast, havePrev bool

	closes, err := f.source.RecentCloses(ctx, symbol, 2)
	if err != nil {
		f.logger.Warn().Err(err).Str("symbol", symbol).Msg("history unavailable, trying live price")
		closes = nil
	}
	switch {
	case len(closes) >= 2:
		prev, last = closes[len(closes)-2], closes[len(closes)-1]
		haveLast, havePrev = true, true
	case len(closes) == 1:
		last, haveLast = closes[0], true
	}

	var liveErr error
	if !haveLast {
		live, err := f.source.LivePrice(ctx, symbol)
		if err != nil {
			liveErr = err
		} else {
			last, haveLast = live.First()
		}
	}

	if !haveLast {
		if liveErr != nil {
			return nil, fmt.Errorf("%w for %s: %w", ErrNoValidQuote, symbol, liveErr)
		}
		return nil, fmt.Errorf("%w for %s", ErrNoValidQuote, symbol)
	}
	if !havePrev {
		prev = last
	}

	change := last.Sub(prev)
	changePct := decimal.Zero
	if !prev.IsZero() {
		changePct = change.Div(prev)
	}

	now := f.now()
	session := Session(now)
	return &models.Quote{
		Symbol:       symbol,
		LastPrice:    last,
		PrevClose:    prev,
		Change:       change,
		ChangePct:    changePct,
		AsOf:         now,
		IsMarketOpen: session.Open,
		Session:      session,
		Source:       f.source.Name(),
	}, nil
}
