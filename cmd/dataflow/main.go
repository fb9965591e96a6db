// Command dataflow calls every configured provider directly for one symbol
// and dumps what comes back. Useful when a lookup looks wrong.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dyike/StockPulse/config"
	"github.com/dyike/StockPulse/internal/logging"
	"github.com/dyike/StockPulse/pkg/dataflows"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cfg := config.DefaultConfig()
	logCfg := logging.DefaultLogConfig()
	logCfg.Level = "debug"
	logger := logging.New(logCfg)

	symbol := "AAPL"
	if len(os.Args) > 1 {
		symbol = strings.ToUpper(strings.TrimSpace(os.Args[1]))
	}

	throttle := dataflows.NewThrottleFromConfig(cfg)
	prices := dataflows.NewPriceSource(cfg, throttle, logger)
	if c, ok := prices.(io.Closer); ok {
		defer c.Close()
	}

	closes, err := prices.RecentCloses(ctx, symbol, 2)
	if err != nil {
		logger.Error().Err(err).Str("source", prices.Name()).Msg("closes")
	}
	dump("closes ("+prices.Name()+")", closes)

	live, err := prices.LivePrice(ctx, symbol)
	if err != nil {
		logger.Error().Err(err).Str("source", prices.Name()).Msg("live price")
	}
	dump("live ("+prices.Name()+")", live)

	primary, fallback := dataflows.NewNewsSources(cfg, throttle, logger)
	for _, src := range []dataflows.NewsSource{primary, fallback} {
		items, err := src.FetchNews(ctx, symbol)
		if err != nil {
			logger.Error().Err(err).Str("source", src.Name()).Msg("news")
			continue
		}
		dump(fmt.Sprintf("news (%s, %d items)", src.Name(), len(items)), items)
	}
}

func dump(label string, v any) {
	payload, _ := json.MarshalIndent(v, "", "  ")
	fmt.Printf("=== %s ===\n%s\n\n", label, payload)
}
