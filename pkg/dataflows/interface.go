package dataflows

import (
	"github.com/rs/zerolog"

	"github.com/dyike/StockPulse/config"
)

// NewPriceSource picks the price provider named in config. Longport without
// credentials falls back to Yahoo.
func NewPriceSource(cfg *Config, throttle *Throttle, logger zerolog.Logger) PriceSource {
	if cfg.PriceProvider == config.PriceProviderLongport {
		lp, err := NewLongportClient(cfg, throttle, logger)
		if err == nil {
			return lp
		}
		logger.Warn().Err(err).Msg("longport unavailable, using yahoo prices")
	}
	return NewYahooFinanceClient(throttle, logger)
}

// NewNewsSources returns the primary provider named in config and the RSS
// fallback.
func NewNewsSources(cfg *Config, throttle *Throttle, logger zerolog.Logger) (primary, fallback NewsSource) {
	fallback = NewGoogleNewsClient(cfg, throttle, logger)

	if cfg.NewsProvider == config.NewsProviderFinnhub {
		fh, err := NewFinnhubClient(cfg, throttle, logger)
		if err == nil {
			return fh, fallback
		}
		logger.Warn().Err(err).Msg("finnhub unavailable, using yahoo news")
	}
	return NewYahooNewsClient(throttle, logger), fallback
}
