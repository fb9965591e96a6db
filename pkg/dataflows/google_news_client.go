package dataflows

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"net/mail"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/mmcdole/gofeed/rss"
	"github.com/rs/zerolog"

	"github.com/dyike/StockPulse/models"
)

// GoogleNewsClient searches the Google News RSS feed. It is the fallback when
// the primary provider has nothing recent.
type GoogleNewsClient struct {
	client   *resty.Client
	throttle *Throttle
	language string
	country  string
	logger   zerolog.Logger
}

func NewGoogleNewsClient(cfg *Config, throttle *Throttle, logger zerolog.Logger, opts ...ClientOption) *GoogleNewsClient {
	userAgent := cfg.RSSUserAgent
	if userAgent == "" {
		userAgent = "Mozilla/5.0"
	}
	timeout := cfg.RSSTimeout()
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &GoogleNewsClient{
		client:   newRestyClient("https://news.google.com", timeout, userAgent, opts),
		throttle: throttle,
		language: "en-US",
		country:  "US",
		logger:   logger.With().Str("source", "google_news_rss").Logger(),
	}
}

func (gnc *GoogleNewsClient) Name() string { return "google_news" }

// searchQuery is the free-text query sent for a ticker.
func searchQuery(symbol string) string {
	return symbol + " stock"
}

func (gnc *GoogleNewsClient) FetchNews(ctx context.Context, symbol string) ([]models.NewsItem, error) {
	var feed *rss.Feed
	err := gnc.throttle.Do(ctx, func() error {
		resp, err := gnc.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"q":    searchQuery(symbol),
				"hl":   gnc.language,
				"gl":   gnc.country,
				"ceid": fmt.Sprintf("%s:%s", gnc.country, strings.Split(gnc.language, "-")[0]),
			}).
			Get("/rss/search")
		if err != nil {
			return fmt.Errorf("failed to fetch RSS feed: %w", err)
		}
		if resp.StatusCode() != 200 {
			return fmt.Errorf("HTTP error %d when fetching RSS feed", resp.StatusCode())
		}

		parser := rss.Parser{}
		feed, err = parser.Parse(bytes.NewReader(resp.Body()))
		if err != nil {
			return fmt.Errorf("failed to parse RSS XML: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	items := make([]models.NewsItem, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		published, ok := pubDate(item)
		if !ok {
			gnc.logger.Debug().Str("pub_date", item.PubDate).Msg("dropping item with unparsable date")
			continue
		}

		publisher := "Google News"
		if item.Source != nil && strings.TrimSpace(item.Source.Title) != "" {
			publisher = strings.TrimSpace(item.Source.Title)
		}

		items = append(items, models.NewsItem{
			Title:     html.UnescapeString(strings.TrimSpace(item.Title)),
			Link:      item.Link,
			Publisher: publisher,
			Published: published.UTC(),
			Summary:   item.Description,
			Source:    gnc.Name(),
		})
	}
	return items, nil
}

// pubDate prefers the parser's result and falls back to a strict RFC 822
// parse of the raw field.
func pubDate(item *rss.Item) (time.Time, bool) {
	if item.PubDateParsed != nil && !item.PubDateParsed.IsZero() {
		return *item.PubDateParsed, true
	}
	raw := strings.TrimSpace(item.PubDate)
	if raw == "" {
		return time.Time{}, false
	}
	t, err := mail.ParseDate(raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
