package dataflows

import (
	"context"
	"fmt"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/quote"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dyike/StockPulse/models"
)

// closesLookback covers long weekends so the last two sessions are present.
const closesLookback = 7 * 24 * time.Hour

// YahooFinanceClient handles Yahoo Finance data operations
type YahooFinanceClient struct {
	throttle *Throttle
	logger   zerolog.Logger
}

// NewYahooFinanceClient creates a new Yahoo Finance client
func NewYahooFinanceClient(throttle *Throttle, logger zerolog.Logger) *YahooFinanceClient {
	return &YahooFinanceClient{
		throttle: throttle,
		logger:   logger.With().Str("source", "yahoo").Logger(),
	}
}

func (yf *YahooFinanceClient) Name() string { return "yahoo" }

// RecentCloses gets the last n daily closes from the chart endpoint.
func (yf *YahooFinanceClient) RecentCloses(ctx context.Context, symbol string, n int) ([]decimal.Decimal, error) {
	var closes []decimal.Decimal
	err := yf.throttle.Do(ctx, func() error {
		end := time.Now()
		start := end.Add(-closesLookback)
		params := &chart.Params{
			Symbol:   symbol,
			Start:    datetime.New(&start),
			End:      datetime.New(&end),
			Interval: datetime.OneDay,
		}

		iter := chart.Get(params)

		closes = closes[:0]
		for iter.Next() {
			bar := iter.Bar()
			if bar == nil || bar.Close.IsZero() {
				continue
			}
			closes = append(closes, bar.Close)
		}

		if err := iter.Err(); err != nil {
			return fmt.Errorf("failed to get historical data for %s: %w", symbol, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(closes) > n {
		closes = closes[len(closes)-n:]
	}
	yf.logger.Debug().Str("symbol", symbol).Int("closes", len(closes)).Msg("chart fetched")
	return closes, nil
}

// LivePrice gets the current quote snapshot.
func (yf *YahooFinanceClient) LivePrice(ctx context.Context, symbol string) (models.LiveQuote, error) {
	var live models.LiveQuote
	err := yf.throttle.Do(ctx, func() error {
		q, err := quote.Get(symbol)
		if err != nil {
			return fmt.Errorf("failed to get quote for %s: %w", symbol, err)
		}
		if q == nil {
			return fmt.Errorf("no quote returned for %s", symbol)
		}

		live = models.LiveQuote{
			RegularMarketPrice: models.PriceOf(q.RegularMarketPrice),
			PostMarketPrice:    models.PriceOf(q.PostMarketPrice),
			PreMarketPrice:     models.PriceOf(q.PreMarketPrice),
		}
		return nil
	})
	return live, err
}
