package dataflows

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	lpconfig "github.com/longportapp/openapi-go/config"
	"github.com/longportapp/openapi-go/quote"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dyike/StockPulse/models"
)

// LongportClient reads US prices through the Longport quote API. It holds a
// long-lived connection; call Close when the client is no longer used.
type LongportClient struct {
	quoteCtx  *quote.QuoteContext
	throttle  *Throttle
	logger    zerolog.Logger
	closeOnce sync.Once
	closeErr  error
}

func NewLongportClient(cfg *Config, throttle *Throttle, logger zerolog.Logger) (*LongportClient, error) {
	if !cfg.LongportConfigured() {
		return nil, errors.New("longport API credentials not configured")
	}

	conf, err := lpconfig.New(lpconfig.WithConfigKey(cfg.LongportAppKey, cfg.LongportAppSecret, cfg.LongportAccessToken))
	if err != nil {
		return nil, err
	}

	quoteContext, err := quote.NewFromCfg(conf)
	if err != nil {
		return nil, err
	}

	return &LongportClient{
		quoteCtx: quoteContext,
		throttle: throttle,
		logger:   logger.With().Str("source", "longport").Logger(),
	}, nil
}

func (lpc *LongportClient) Name() string { return "longport" }

// Close releases the quote connection. It is safe to call more than once.
func (lpc *LongportClient) Close() error {
	lpc.closeOnce.Do(func() {
		if lpc.quoteCtx == nil {
			return
		}
		lpc.closeErr = lpc.quoteCtx.Close()
		lpc.logger.Debug().Err(lpc.closeErr).Msg("quote context closed")
	})
	return lpc.closeErr
}

// usSymbol maps AAPL to AAPL.US; symbols that already carry a market are kept.
func usSymbol(symbol string) string {
	if strings.Contains(symbol, ".") {
		return symbol
	}
	return symbol + ".US"
}

func (lpc *LongportClient) RecentCloses(ctx context.Context, symbol string, n int) ([]decimal.Decimal, error) {
	var sticks []*quote.Candlestick
	err := lpc.throttle.Do(ctx, func() error {
		var err error
		sticks, err = lpc.quoteCtx.Candlesticks(ctx, usSymbol(symbol), quote.PeriodDay, int32(n), quote.AdjustTypeNo)
		if err != nil {
			return fmt.Errorf("failed to get candlesticks for %s: %w", symbol, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	closes := make([]decimal.Decimal, 0, len(sticks))
	for _, stick := range sticks {
		if stick == nil || stick.Close == nil || stick.Close.IsZero() {
			continue
		}
		closes = append(closes, *stick.Close)
	}
	return closes, nil
}

func (lpc *LongportClient) LivePrice(ctx context.Context, symbol string) (models.LiveQuote, error) {
	var quotes []*quote.SecurityQuote
	err := lpc.throttle.Do(ctx, func() error {
		var err error
		quotes, err = lpc.quoteCtx.Quote(ctx, []string{usSymbol(symbol)})
		if err != nil {
			return fmt.Errorf("failed to get quote for %s: %w", symbol, err)
		}
		return nil
	})
	if err != nil {
		return models.LiveQuote{}, err
	}
	if len(quotes) == 0 || quotes[0] == nil {
		return models.LiveQuote{}, fmt.Errorf("no quote returned for %s", symbol)
	}

	q := quotes[0]
	live := models.LiveQuote{LastPrice: nullOf(q.LastDone)}
	if q.PostMarketQuote != nil {
		live.PostMarketPrice = nullOf(q.PostMarketQuote.LastDone)
	}
	if q.PreMarketQuote != nil {
		live.PreMarketPrice = nullOf(q.PreMarketQuote.LastDone)
	}
	return live, nil
}

func nullOf(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}
