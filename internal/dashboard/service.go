// Package dashboard runs one symbol lookup end to end: quote, news and
// translation.
package dashboard

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dyike/StockPulse/config"
	"github.com/dyike/StockPulse/internal/news"
	"github.com/dyike/StockPulse/internal/quote"
	"github.com/dyike/StockPulse/internal/translate"
	"github.com/dyike/StockPulse/models"
	"github.com/dyike/StockPulse/pkg/dataflows"
)

type QuoteFetcher interface {
	Fetch(ctx context.Context, symbol string) (*models.Quote, error)
}

type NewsFetcher interface {
	Fetch(ctx context.Context, symbol string, limit int) ([]models.NewsItem, []error)
}

// Result is everything the page needs for one symbol.
type Result struct {
	Symbol   string            `json:"symbol"`
	Quote    *models.Quote     `json:"quote"`
	News     []models.NewsItem `json:"news"`
	Warnings []string          `json:"warnings,omitempty"`
}

type Service struct {
	quotes     QuoteFetcher
	news       NewsFetcher
	translator translate.Translator
	newsLimit  int
	logger     zerolog.Logger

	// closers are the provider connections this service owns.
	closers   []io.Closer
	closeOnce sync.Once
	closeErr  error
}

func NewService(quotes QuoteFetcher, newsFetcher NewsFetcher, translator translate.Translator, newsLimit int, logger zerolog.Logger) *Service {
	if translator == nil {
		translator = translate.Noop{}
	}
	return &Service{
		quotes:     quotes,
		news:       newsFetcher,
		translator: translator,
		newsLimit:  newsLimit,
		logger:     logger.With().Str("component", "dashboard").Logger(),
	}
}

// NewServiceFromConfig wires the providers, fetchers and translator named in
// cfg.
func NewServiceFromConfig(ctx context.Context, cfg *config.Config, logger zerolog.Logger) *Service {
	throttle := dataflows.NewThrottleFromConfig(cfg)

	priceSource := dataflows.NewPriceSource(cfg, throttle, logger)
	primary, fallback := dataflows.NewNewsSources(cfg, throttle, logger)

	svc := NewService(
		quote.NewFetcher(priceSource, logger),
		news.NewFetcher(primary, fallback, logger, news.WithWindow(cfg.NewsWindow())),
		translate.New(ctx, cfg, logger),
		cfg.NewsLimit,
		logger,
	)
	for _, src := range []any{priceSource, primary, fallback} {
		if c, ok := src.(io.Closer); ok {
			svc.closers = append(svc.closers, c)
		}
	}
	return svc
}

// Close releases provider connections. Lookups must not be started after
// Close; calling it again is a no-op.
func (s *Service) Close() error {
	s.closeOnce.Do(func() {
		var errs []error
		for _, c := range s.closers {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		s.closeErr = errors.Join(errs...)
		if s.closeErr != nil {
			s.logger.Warn().Err(s.closeErr).Msg("failed to close providers")
		}
	})
	return s.closeErr
}

// Lookup fetches the quote first; without one there is nothing to show and
// the error is returned. News and translation problems become warnings.
func (s *Service) Lookup(ctx context.Context, rawSymbol string) (*Result, error) {
	symbol := quote.Normalize(rawSymbol)
	if symbol == "" {
		return nil, quote.ErrEmptySymbol
	}

	start := time.Now()
	q, err := s.quotes.Fetch(ctx, symbol)
	if err != nil {
		s.logger.Warn().Err(err).Str("symbol", symbol).Msg("quote lookup failed")
		return nil, err
	}

	items, newsErrs := s.news.Fetch(ctx, symbol, s.newsLimit)
	translate.Apply(ctx, s.translator, items)

	result := &Result{
		Symbol: symbol,
		Quote:  q,
		News:   items,
	}
	for _, e := range newsErrs {
		result.Warnings = append(result.Warnings, e.Error())
	}
	if result.News == nil {
		result.News = []models.NewsItem{}
	}

	s.logger.Info().
		Str("symbol", symbol).
		Str("source", q.Source).
		Int("news", len(items)).
		Dur("elapsed", time.Since(start)).
		Msg("lookup done")
	return result, nil
}
