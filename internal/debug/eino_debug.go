package debug

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cloudwego/eino-ext/devops"
	"github.com/rs/zerolog"

	"github.com/dyike/StockPulse/config"
)

// EinoDebugger starts the eino devops server so the translation chain can be
// inspected while the dashboard runs. Only chains compiled after Initialize
// are registered with the server.
type EinoDebugger struct {
	config *config.Config
	logger zerolog.Logger
	start  func(ctx context.Context, port string) error
}

func NewEinoDebugger(cfg *config.Config, logger zerolog.Logger) *EinoDebugger {
	return &EinoDebugger{
		config: cfg,
		logger: logger.With().Str("component", "eino_debug").Logger(),
		start: func(ctx context.Context, port string) error {
			return devops.Init(ctx, devops.WithDevServerPort(port))
		},
	}
}

func (d *EinoDebugger) Initialize(ctx context.Context) error {
	if !d.IsEnabled() {
		return nil
	}

	d.logger.Debug().Int("port", d.config.EinoDebugPort).Msg("initializing eino debug plugin")
	if err := d.start(ctx, strconv.Itoa(d.config.EinoDebugPort)); err != nil {
		return fmt.Errorf("failed to initialize Eino debug plugin: %w", err)
	}
	d.logger.Info().Str("url", d.GetDebugURL()).Msg("eino debug server ready")
	return nil
}

// IsEnabled is true only when translation goes through an LLM.
func (d *EinoDebugger) IsEnabled() bool {
	return d.config.EinoDebugEnabled && d.config.TranslateProvider == config.TranslateLLM
}

func (d *EinoDebugger) GetDebugURL() string {
	if !d.IsEnabled() {
		return ""
	}
	return fmt.Sprintf("http://localhost:%d", d.config.EinoDebugPort)
}
