package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is the price snapshot shown for one lookup.
type Quote struct {
	Symbol       string          `json:"symbol"`
	LastPrice    decimal.Decimal `json:"last_price"`
	PrevClose    decimal.Decimal `json:"prev_close"`
	Change       decimal.Decimal `json:"change"`
	ChangePct    decimal.Decimal `json:"change_pct"`
	AsOf         time.Time       `json:"as_of"`
	IsMarketOpen bool            `json:"is_market_open"`
	Session      MarketSession   `json:"session"`
	Source       string          `json:"source"`
}

// MarketSession describes the US trading session at a point in time.
type MarketSession struct {
	Open  bool   `json:"open"`
	Label string `json:"label"`
}

// LiveQuote holds the optional price fields a provider exposes in its
// real-time snapshot.
type LiveQuote struct {
	LastPrice          decimal.NullDecimal
	RegularMarketPrice decimal.NullDecimal
	CurrentPrice       decimal.NullDecimal
	PostMarketPrice    decimal.NullDecimal
	PreMarketPrice     decimal.NullDecimal
}

// First returns the first populated, non-zero price in priority order.
func (lq LiveQuote) First() (decimal.Decimal, bool) {
	for _, v := range []decimal.NullDecimal{
		lq.LastPrice,
		lq.RegularMarketPrice,
		lq.CurrentPrice,
		lq.PostMarketPrice,
		lq.PreMarketPrice,
	} {
		if v.Valid && !v.Decimal.IsZero() {
			return v.Decimal, true
		}
	}
	return decimal.Zero, false
}

// PriceOf wraps a float provider field, treating zero as absent.
func PriceOf(v float64) decimal.NullDecimal {
	if v == 0 {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.NewFromFloat(v))
}
