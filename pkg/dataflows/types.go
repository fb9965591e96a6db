package dataflows

import (
	"context"

	"github.com/dyike/StockPulse/config"
	"github.com/dyike/StockPulse/models"
	"github.com/shopspring/decimal"
)

// Config is an alias for the main application config
type Config = config.Config

// PriceSource supplies daily closes and a live snapshot for a symbol.
type PriceSource interface {
	Name() string
	// RecentCloses returns up to n of the most recent daily closes, oldest first.
	RecentCloses(ctx context.Context, symbol string, n int) ([]decimal.Decimal, error)
	LivePrice(ctx context.Context, symbol string) (models.LiveQuote, error)
}

// NewsSource returns headlines for a symbol in provider order. Items whose
// timestamp cannot be parsed are dropped by the source.
type NewsSource interface {
	Name() string
	FetchNews(ctx context.Context, symbol string) ([]models.NewsItem, error)
}
