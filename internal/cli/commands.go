package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dyike/StockPulse/config"
	"github.com/dyike/StockPulse/internal/dashboard"
	"github.com/dyike/StockPulse/internal/debug"
	"github.com/dyike/StockPulse/internal/logging"
	"github.com/dyike/StockPulse/internal/quote"
	"github.com/dyike/StockPulse/internal/web"
)

// Version is overridden at build time with -ldflags.
var Version = "dev"

// swapDrain is how long a replaced dashboard stays open for in-flight
// requests after a config reload.
const swapDrain = 30 * time.Second

// app carries what every subcommand needs once flags are parsed.
type app struct {
	configPath     string
	debug          bool
	reloadDebounce time.Duration

	manager *config.Manager
	cfg     config.Config
	logger  zerolog.Logger
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "stockpulse",
		Short: "StockPulse - US stock quotes and news at a glance",
		Long: `StockPulse shows the latest price, daily change and recent headlines for a US ticker.
Headlines can be machine-translated. Run "stockpulse serve" for the web dashboard.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Default behavior: start interactive mode
			return a.runInteractive(cmd.Context(), cmd.OutOrStdout())
		},
	}

	rootCmd.AddCommand(a.newServeCmd())
	rootCmd.AddCommand(a.newQuoteCmd())
	rootCmd.AddCommand(a.newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())

	// Global flags
	rootCmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Configuration file path")

	return rootCmd
}

func (a *app) init(cmd *cobra.Command) error {
	manager, err := config.NewManager(
		config.WithConfigPath(a.configPath),
		config.WithDebounce(a.reloadDebounce),
	)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	a.manager = manager
	a.cfg = manager.Get().WithEnv()

	if err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := a.cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	a.logger = newLogger(&a.cfg, a.debug, cmd.ErrOrStderr())
	a.manager.SetLogger(a.logger)
	return nil
}

func newLogger(cfg *config.Config, debugFlag bool, out io.Writer) zerolog.Logger {
	logCfg := logging.DefaultLogConfig()
	logCfg.Level = cfg.LogLevel
	if debugFlag || cfg.Debug {
		logCfg.Level = "debug"
	}
	logCfg.FilePath = cfg.LogFile
	logCfg.Out = out
	return logging.New(logCfg)
}

func webSettings(cfg *config.Config) web.Settings {
	return web.Settings{
		DefaultSymbol:  cfg.DefaultSymbol,
		Location:       cfg.Location(),
		CORSOrigins:    cfg.CORSOrigins,
		NewsWindowDays: cfg.NewsWindowDays,
	}
}

func (a *app) newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web dashboard",
		Long: `Serve the dashboard page and the JSON API.
Changes to the configuration file are picked up without a restart.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.ListenAddr
			}
			return a.runServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (defaults to listen_addr from config)")
	cmd.Flags().DurationVar(&a.reloadDebounce, "reload-debounce", config.DefaultReloadDebounce,
		"How long config file changes must settle before the dashboard is rebuilt")
	return cmd
}

func (a *app) runServe(parent context.Context, addr string) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := a.cfg
	if err := debug.NewEinoDebugger(&cfg, a.logger).Initialize(ctx); err != nil {
		a.logger.Warn().Err(err).Msg("eino debug disabled")
	}

	var (
		mu      sync.Mutex
		service = dashboard.NewServiceFromConfig(ctx, &cfg, a.logger)
	)
	defer func() {
		mu.Lock()
		defer mu.Unlock()
		_ = service.Close()
	}()
	server := web.NewServer(service, webSettings(&cfg), a.logger)

	err := a.manager.Watch(ctx, func(fileCfg config.Config) {
		next := fileCfg.WithEnv()
		if err := next.Validate(); err != nil {
			a.logger.Error().Err(err).Msg("ignoring invalid configuration")
			return
		}
		fresh := dashboard.NewServiceFromConfig(ctx, &next, a.logger)
		server.Swap(fresh, webSettings(&next))

		mu.Lock()
		old := service
		service = fresh
		mu.Unlock()
		// Requests already holding the old service get time to finish.
		time.AfterFunc(swapDrain, func() { _ = old.Close() })
		a.logger.Info().Msg("dashboard rebuilt from new configuration")
	})
	if err != nil {
		a.logger.Warn().Err(err).Msg("config hot reload unavailable")
	}

	return server.Run(ctx, addr)
}

func (a *app) newQuoteCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "quote [SYMBOL]",
		Short: "Show the quote and recent news for a symbol",
		Long: `Look up a US ticker and print its price, daily change and recent headlines.
Example: stockpulse quote AAPL`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var symbol string
			if len(args) == 1 {
				symbol = args[0]
			} else {
				var err error
				symbol, err = promptSymbol(a.cfg.DefaultSymbol)
				if err != nil {
					return err
				}
			}
			svc := a.newService(cmd.Context())
			defer svc.Close()
			return a.runQuote(cmd.Context(), cmd.OutOrStdout(), svc, symbol, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}

// newService builds the dashboard for one command run. Callers close it.
func (a *app) newService(ctx context.Context) *dashboard.Service {
	if ctx == nil {
		ctx = context.Background()
	}
	return dashboard.NewServiceFromConfig(ctx, &a.cfg, a.logger)
}

func (a *app) runQuote(ctx context.Context, out io.Writer, svc web.Lookuper, symbol string, asJSON bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	res, err := svc.Lookup(ctx, symbol)
	if err != nil {
		if errors.Is(err, quote.ErrEmptySymbol) {
			return err
		}
		fmt.Fprintln(out, renderError("Stock not found. Check the symbol or your connection."))
		return err
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	fmt.Fprintln(out, renderResult(res, time.Now(), a.cfg.Location(), a.cfg.NewsWindowDays))
	return nil
}

// runInteractive keeps asking for symbols until the user quits.
func (a *app) runInteractive(ctx context.Context, out io.Writer) error {
	fmt.Fprintln(out, renderBanner())

	svc := a.newService(ctx)
	defer svc.Close()

	for {
		symbol, err := promptSymbol(a.cfg.DefaultSymbol)
		if err != nil {
			if errors.Is(err, terminal.InterruptErr) {
				return nil
			}
			return err
		}

		switch strings.ToUpper(strings.TrimSpace(symbol)) {
		case "EXIT", "QUIT", "Q":
			fmt.Fprintln(out, "Bye!")
			return nil
		}

		if err := a.runQuote(ctx, out, svc, symbol, false); err != nil {
			a.logger.Debug().Err(err).Str("symbol", symbol).Msg("lookup failed")
		}

		again, err := confirmAnother()
		if err != nil || !again {
			return nil
		}
	}
}

// newVersionCmd creates the version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "StockPulse %s\n", Version)
		},
	}
}
