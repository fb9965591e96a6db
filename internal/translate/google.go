package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// GoogleTranslator calls the public web endpoint used by the Google
// Translate widget. No API key is needed.
type GoogleTranslator struct {
	client *resty.Client
	target string
	logger zerolog.Logger
}

type GoogleOption func(*GoogleTranslator)

func WithGoogleBaseURL(url string) GoogleOption {
	return func(g *GoogleTranslator) {
		g.client.SetBaseURL(url)
	}
}

func NewGoogleTranslator(target string, logger zerolog.Logger, opts ...GoogleOption) *GoogleTranslator {
	if target == "" {
		target = "zh-CN"
	}
	client := resty.New()
	client.SetBaseURL("https://translate.googleapis.com")
	client.SetTimeout(10 * time.Second)
	client.SetHeader("User-Agent", "Mozilla/5.0")

	g := &GoogleTranslator{
		client: client,
		target: target,
		logger: logger.With().Str("translator", "google").Logger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *GoogleTranslator) Translate(ctx context.Context, text string) (string, bool) {
	if strings.TrimSpace(text) == "" {
		return text, false
	}
	out, err := g.translate(ctx, text)
	if err != nil {
		g.logger.Warn().Err(err).Msg("translation failed")
		return text, false
	}
	return out, out != ""
}

func (g *GoogleTranslator) translate(ctx context.Context, text string) (string, error) {
	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"client": "gtx",
			"sl":     "auto",
			"tl":     g.target,
			"dt":     "t",
			"q":      text,
		}).
		Get("/translate_a/single")
	if err != nil {
		return "", fmt.Errorf("translate request: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("translate API error %d", resp.StatusCode())
	}
	return parseGoogleResponse(resp.Body())
}

// parseGoogleResponse joins the translated segments of a response shaped like
// [[["译文","source",...],...],null,"en",...].
func parseGoogleResponse(body []byte) (string, error) {
	var payload []any
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("decode translate response: %w", err)
	}
	if len(payload) == 0 {
		return "", fmt.Errorf("empty translate response")
	}
	segments, ok := payload[0].([]any)
	if !ok {
		return "", fmt.Errorf("unexpected translate response shape")
	}

	var sb strings.Builder
	for _, seg := range segments {
		parts, ok := seg.([]any)
		if !ok || len(parts) == 0 {
			continue
		}
		if s, ok := parts[0].(string); ok {
			sb.WriteString(s)
		}
	}
	return strings.TrimSpace(sb.String()), nil
}
