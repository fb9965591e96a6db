package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"

	"github.com/dyike/StockPulse/config"
)

const llmMaxTokens = 1024

const translateSystemPrompt = `You are a financial news translator. Translate the user's text into {language}.
Keep ticker symbols, company names and numbers unchanged.
Reply with the translation only, without quotes, notes or explanations.`

// LLMTranslator runs a compiled prompt -> chat model chain per text.
type LLMTranslator struct {
	chain  compose.Runnable[map[string]any, *schema.Message]
	target string
	logger zerolog.Logger
}

func NewLLMTranslator(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*LLMTranslator, error) {
	if cfg.LLMAPIKey == "" {
		return nil, fmt.Errorf("%s API key not configured", cfg.LLMProvider)
	}

	var (
		chatModel model.BaseChatModel
		err       error
	)
	switch cfg.LLMProvider {
	case config.LLMProviderOpenAI:
		maxTokens := llmMaxTokens
		chatModel, err = openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL:   cfg.LLMBaseURL,
			APIKey:    cfg.LLMAPIKey,
			Model:     cfg.LLMModel,
			MaxTokens: &maxTokens,
		})
	default:
		chatModel, err = deepseek.NewChatModel(ctx, &deepseek.ChatModelConfig{
			APIKey:    cfg.LLMAPIKey,
			Model:     cfg.LLMModel,
			BaseURL:   cfg.LLMBaseURL,
			MaxTokens: llmMaxTokens,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s model: %w", cfg.LLMProvider, err)
	}

	return NewLLMTranslatorWithModel(ctx, chatModel, cfg.TargetLanguage, logger)
}

// NewLLMTranslatorWithModel compiles the translation chain around chatModel.
func NewLLMTranslatorWithModel(ctx context.Context, chatModel model.BaseChatModel, target string, logger zerolog.Logger) (*LLMTranslator, error) {
	if target == "" {
		target = "zh-CN"
	}

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(prompt.FromMessages(schema.FString,
		schema.SystemMessage(translateSystemPrompt),
		schema.UserMessage("{text}"),
	), compose.WithNodeName("prompt"))
	chain.AppendChatModel(chatModel, compose.WithNodeName("translator"))

	runnable, err := chain.Compile(ctx, compose.WithGraphName("news_translation"))
	if err != nil {
		return nil, fmt.Errorf("failed to compile translation chain: %w", err)
	}

	return &LLMTranslator{
		chain:  runnable,
		target: target,
		logger: logger.With().Str("translator", "llm").Logger(),
	}, nil
}

func (l *LLMTranslator) Translate(ctx context.Context, text string) (string, bool) {
	if strings.TrimSpace(text) == "" {
		return text, false
	}

	msg, err := l.chain.Invoke(ctx, map[string]any{
		"language": languageName(l.target),
		"text":     text,
	})
	if err != nil {
		l.logger.Warn().Err(err).Msg("translation failed")
		return text, false
	}
	if msg == nil {
		return text, false
	}

	out := strings.TrimSpace(msg.Content)
	if out == "" {
		return text, false
	}
	return out, true
}
