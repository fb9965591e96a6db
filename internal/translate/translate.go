// Package translate renders news text in the reader's language on a best
// effort basis.
package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dyike/StockPulse/config"
	"github.com/dyike/StockPulse/models"
)

// Translator returns the translated text and true, or the input and false
// when translation is unavailable. It never fails the caller.
type Translator interface {
	Translate(ctx context.Context, text string) (string, bool)
}

// Noop leaves text untouched.
type Noop struct{}

func (Noop) Translate(_ context.Context, text string) (string, bool) {
	return text, false
}

// New picks the translator named in config. Construction problems degrade to
// Noop so the dashboard still renders the original text.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) Translator {
	switch cfg.TranslateProvider {
	case config.TranslateGoogle:
		return NewGoogleTranslator(cfg.TargetLanguage, logger)
	case config.TranslateLLM:
		t, err := NewLLMTranslator(ctx, cfg, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("llm translator unavailable, showing original text")
			return Noop{}
		}
		return t
	default:
		return Noop{}
	}
}

// Apply fills the translated fields of every item in place. Title and
// summary are tracked separately; a failed translation keeps the original.
func Apply(ctx context.Context, t Translator, items []models.NewsItem) {
	if t == nil {
		t = Noop{}
	}
	for i := range items {
		item := &items[i]
		if item.Title != "" {
			item.TitleTranslated, item.TitleOK = translateOrKeep(ctx, t, item.Title)
		}
		if item.Summary != "" {
			item.SummaryTranslated, item.SummaryOK = translateOrKeep(ctx, t, item.Summary)
		} else {
			item.SummaryTranslated, item.SummaryOK = "", false
		}
	}
}

func translateOrKeep(ctx context.Context, t Translator, text string) (string, bool) {
	out, ok := t.Translate(ctx, text)
	out = strings.TrimSpace(out)
	if !ok || out == "" {
		return text, false
	}
	return out, true
}

// languageName is used in LLM prompts where a code alone is ambiguous.
func languageName(code string) string {
	switch strings.ToLower(code) {
	case "zh-cn", "zh", "zh-hans":
		return "Simplified Chinese"
	case "zh-tw", "zh-hant":
		return "Traditional Chinese"
	case "ja":
		return "Japanese"
	case "ko":
		return "Korean"
	case "en":
		return "English"
	default:
		return fmt.Sprintf("the language with code %q", code)
	}
}
