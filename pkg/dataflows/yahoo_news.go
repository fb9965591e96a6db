package dataflows

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/dyike/StockPulse/models"
)

// YahooNewsClient reads the news list Yahoo Finance attaches to a ticker
// search.
type YahooNewsClient struct {
	client    *resty.Client
	throttle  *Throttle
	newsCount int
	logger    zerolog.Logger
}

type yahooSearchResponse struct {
	News []yahooNews `json:"news"`
}

type yahooNews struct {
	UUID                string   `json:"uuid"`
	Title               string   `json:"title"`
	Publisher           string   `json:"publisher"`
	Link                string   `json:"link"`
	ProviderPublishTime int64    `json:"providerPublishTime"`
	Summary             string   `json:"summary"`
	RelatedTickers      []string `json:"relatedTickers"`
}

func NewYahooNewsClient(throttle *Throttle, logger zerolog.Logger, opts ...ClientOption) *YahooNewsClient {
	return &YahooNewsClient{
		client:    newRestyClient("https://query2.finance.yahoo.com", 30*time.Second, browserUserAgent, opts),
		throttle:  throttle,
		newsCount: 20,
		logger:    logger.With().Str("source", "yahoo_news").Logger(),
	}
}

func (yn *YahooNewsClient) Name() string { return "yahoo" }

func (yn *YahooNewsClient) FetchNews(ctx context.Context, symbol string) ([]models.NewsItem, error) {
	var payload yahooSearchResponse
	err := yn.throttle.Do(ctx, func() error {
		resp, err := yn.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"q":           symbol,
				"quotesCount": "0",
				"newsCount":   strconv.Itoa(yn.newsCount),
			}).
			Get("/v1/finance/search")
		if err != nil {
			return fmt.Errorf("failed to fetch news for %s: %w", symbol, err)
		}
		if resp.StatusCode() != 200 {
			return fmt.Errorf("API error %d when fetching news for %s", resp.StatusCode(), symbol)
		}
		if err := json.Unmarshal(resp.Body(), &payload); err != nil {
			return fmt.Errorf("failed to parse news response: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	items := make([]models.NewsItem, 0, len(payload.News))
	for _, n := range payload.News {
		if n.ProviderPublishTime <= 0 {
			yn.logger.Debug().Str("uuid", n.UUID).Msg("dropping item without publish time")
			continue
		}
		publisher := strings.TrimSpace(n.Publisher)
		if publisher == "" {
			publisher = "Yahoo"
		}
		items = append(items, models.NewsItem{
			Title:     strings.TrimSpace(n.Title),
			Link:      n.Link,
			Publisher: publisher,
			Published: time.Unix(n.ProviderPublishTime, 0).UTC(),
			Summary:   n.Summary,
			Source:    yn.Name(),
		})
	}
	return items, nil
}
