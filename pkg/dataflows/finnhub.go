package dataflows

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/dyike/StockPulse/models"
)

// FinnhubClient handles Finnhub API operations
type FinnhubClient struct {
	client   *resty.Client
	throttle *Throttle
	apiKey   string
	window   time.Duration
	logger   zerolog.Logger
}

// FinnhubNews represents news from Finnhub API
type FinnhubNews struct {
	Category string `json:"category"`
	DateTime int64  `json:"datetime"`
	Headline string `json:"headline"`
	ID       int64  `json:"id"`
	Image    string `json:"image"`
	Related  string `json:"related"`
	Source   string `json:"source"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
}

// NewFinnhubClient creates a new Finnhub client
func NewFinnhubClient(cfg *Config, throttle *Throttle, logger zerolog.Logger, opts ...ClientOption) (*FinnhubClient, error) {
	if cfg.FinnhubAPIKey == "" {
		return nil, errors.New("finnhub API key not configured")
	}
	return &FinnhubClient{
		client:   newRestyClient("https://finnhub.io/api/v1", 30*time.Second, "StockPulse/1.0", opts),
		throttle: throttle,
		apiKey:   cfg.FinnhubAPIKey,
		window:   cfg.NewsWindow(),
		logger:   logger.With().Str("source", "finnhub").Logger(),
	}, nil
}

func (fc *FinnhubClient) Name() string { return "finnhub" }

// FetchNews gets company news for the trailing window.
func (fc *FinnhubClient) FetchNews(ctx context.Context, symbol string) ([]models.NewsItem, error) {
	to := time.Now().UTC()
	from := to.Add(-fc.window)

	var finnhubNews []FinnhubNews
	err := fc.throttle.Do(ctx, func() error {
		resp, err := fc.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"symbol": symbol,
				"from":   from.Format("2006-01-02"),
				"to":     to.Format("2006-01-02"),
				"token":  fc.apiKey,
			}).
			Get("/company-news")
		if err != nil {
			return fmt.Errorf("failed to fetch news for %s: %w", symbol, err)
		}
		if resp.StatusCode() != 200 {
			return fmt.Errorf("API error %d: %s", resp.StatusCode(), resp.String())
		}
		if err := json.Unmarshal(resp.Body(), &finnhubNews); err != nil {
			return fmt.Errorf("failed to parse news response: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	items := make([]models.NewsItem, 0, len(finnhubNews))
	for _, news := range finnhubNews {
		if news.DateTime <= 0 {
			continue
		}
		publisher := news.Source
		if publisher == "" {
			publisher = "Finnhub"
		}
		items = append(items, models.NewsItem{
			Title:     news.Headline,
			Link:      news.URL,
			Publisher: publisher,
			Published: time.Unix(news.DateTime, 0).UTC(),
			Summary:   news.Summary,
			Source:    fc.Name(),
		})
	}
	return items, nil
}
