// Package news collects recent headlines for a ticker from a primary
// provider with an RSS fallback.
package news

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/dyike/StockPulse/internal/quote"
	"github.com/dyike/StockPulse/models"
	"github.com/dyike/StockPulse/pkg/dataflows"
)

const (
	DefaultLimit  = 8
	DefaultWindow = 7 * 24 * time.Hour
)

type Fetcher struct {
	primary  dataflows.NewsSource
	fallback dataflows.NewsSource
	window   time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

type Option func(*Fetcher)

func WithWindow(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.window = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(f *Fetcher) {
		f.now = now
	}
}

// NewFetcher takes the primary source and an optional fallback (may be nil).
func NewFetcher(primary, fallback dataflows.NewsSource, logger zerolog.Logger, opts ...Option) *Fetcher {
	f := &Fetcher{
		primary:  primary,
		fallback: fallback,
		window:   DefaultWindow,
		logger:   logger.With().Str("component", "news").Logger(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns at most limit in-window items, newest first. Provider
// failures never fail the call; they are returned as warnings.
func (f *Fetcher) Fetch(ctx context.Context, symbol string, limit int) ([]models.NewsItem, []error) {
	symbol = quote.Normalize(symbol)
	if symbol == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	cutoff := f.now().Add(-f.window)

	var warnings []error
	items, err := f.collect(ctx, f.primary, symbol, cutoff)
	if err != nil {
		warnings = append(warnings, err)
	}

	if len(items) == 0 && f.fallback != nil {
		f.logger.Debug().Str("symbol", symbol).Msg("primary news empty, using fallback")
		items, err = f.collect(ctx, f.fallback, symbol, cutoff)
		if err != nil {
			warnings = append(warnings, err)
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Published.After(items[j].Published)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, warnings
}

func (f *Fetcher) collect(ctx context.Context, src dataflows.NewsSource, symbol string, cutoff time.Time) ([]models.NewsItem, error) {
	if src == nil {
		return nil, nil
	}
	raw, err := src.FetchNews(ctx, symbol)
	if err != nil {
		f.logger.Warn().Err(err).Str("source", src.Name()).Str("symbol", symbol).Msg("news fetch failed")
		return nil, fmt.Errorf("%s news: %w", src.Name(), err)
	}

	items := make([]models.NewsItem, 0, len(raw))
	for _, item := range raw {
		if item.Published.IsZero() || item.Published.Before(cutoff) {
			continue
		}
		item.Summary = dataflows.StripHTML(item.Summary)
		items = append(items, item)
	}
	return items, nil
}
