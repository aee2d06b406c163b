package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kalepail/smol-sc/internal/assets"
	"github.com/kalepail/smol-sc/internal/auth"
	"github.com/kalepail/smol-sc/internal/config"
	"github.com/kalepail/smol-sc/internal/flags"
	"github.com/kalepail/smol-sc/internal/infrastructure/sqlite"
	"github.com/kalepail/smol-sc/internal/log"
	"github.com/kalepail/smol-sc/internal/market"
	"github.com/kalepail/smol-sc/internal/paths"
	"github.com/kalepail/smol-sc/internal/pubsub"
	"github.com/kalepail/smol-sc/internal/tracing"
)

var (
	version      = "dev"
	cfgFile      string
	debug        bool
	cfg          config.Config
	flagRegistry *flags.Registry
)

var rootCmd = &cobra.Command{
	Use:     "smol",
	Short:   "A marketplace for colors and glyphs",
	Long:    `A persistent marketplace engine for 24-bit colors and pixel-art glyphs, with sorted offer books, atomic swaps and proportional royalties.`,
	Version: version,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.smol/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"enable debug logging")
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("db_path", defaults.DBPath)
	viper.SetDefault("custody", defaults.Custody)
	viper.SetDefault("market.color_claim_fee", defaults.Market.ColorClaimFee)
	viper.SetDefault("market.color_owner_rate", defaults.Market.ColorOwnerRate)
	viper.SetDefault("market.glyph_author_rate", defaults.Market.GlyphAuthorRate)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)
	viper.SetDefault("tracing.service_name", defaults.Tracing.ServiceName)
	viper.SetDefault("log.path", defaults.Log.Path)
	viper.SetDefault("log.level", defaults.Log.Level)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .smol/config.yaml (current directory, honoring redirects)
		// 2. config.yaml in the resolved data directory
		local := paths.ConfigPath(paths.ResolveDataDir("."))
		if _, err := os.Stat(local); err == nil {
			viper.SetConfigFile(local)
		} else {
			viper.AddConfigPath(paths.ResolveDataDir(os.Getenv("SMOL_DIR")))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			defaultPath := paths.ConfigPath(paths.ResolveDataDir(os.Getenv("SMOL_DIR")))
			if writeErr := config.WriteDefaultConfig(defaultPath); writeErr == nil {
				viper.SetConfigFile(defaultPath)
				_ = viper.ReadInConfig()
			}
			// If write fails, continue with defaults
		}
	}

	_ = viper.Unmarshal(&cfg)

	initLogging()
	flagRegistry = flags.New(cfg.Flags)
}

func initLogging() {
	if !cfg.Log.Enabled && !debug && os.Getenv("SMOL_DEBUG") == "" {
		return
	}
	if _, err := log.Init(cfg.Log.Path); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not open log file: %v\n", err)
		return
	}
	if debug || os.Getenv("SMOL_DEBUG") != "" {
		log.SetMinLevel(log.LevelDebug)
	} else {
		log.SetMinLevel(log.ParseLevel(cfg.Log.Level))
	}
}

// engine bundles the wired marketplace and its teardown.
type engine struct {
	market *market.Marketplace
	ledger *assets.Ledger
	close  func()
}

// openEngine wires the sqlite store, the asset ledger, tracing and the
// marketplace facade from the loaded config.
func openEngine() (*engine, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	db, err := sqlite.NewDB(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// The ledger needs its own database: transfers run while a marketplace
	// transaction holds the write lock on the marketplace one.
	ledgerDB, err := sqlite.NewDB(ledgerDBPath(cfg.DBPath))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("opening ledger database: %w", err)
	}

	provider, err := tracing.NewProvider(cfg.Tracing)
	if err != nil {
		ledgerDB.Close()
		db.Close()
		return nil, fmt.Errorf("configuring tracing: %w", err)
	}

	store := db.Store()
	ledger := assets.NewLedger(ledgerDB.Store())
	opts := []market.Option{
		market.WithTracer(provider.Tracer()),
		market.WithCustody(market.Principal(cfg.Custody)),
	}

	var stopMirror func()
	if flagRegistry.Enabled(flags.FlagEventMirror) {
		broker := pubsub.NewBroker[market.Notification]()
		opts = append(opts, market.WithEvents(broker))
		stopMirror = mirrorEvents(broker)
	}

	m := market.New(store, auth.NewStatic(), ledger, opts...)

	return &engine{
		market: m,
		ledger: ledger,
		close: func() {
			if stopMirror != nil {
				stopMirror()
			}
			_ = provider.Shutdown(rootCmd.Context())
			_ = ledgerDB.Close()
			_ = db.Close()
		},
	}, nil
}

// ledgerDBPath returns the dev ledger database next to the marketplace one.
func ledgerDBPath(dbPath string) string {
	return filepath.Join(filepath.Dir(dbPath), "ledger.db")
}

// mirrorEvents forwards marketplace notifications into the debug log until
// the returned stop function is called.
func mirrorEvents(broker *pubsub.Broker[market.Notification]) func() {
	ctx, cancel := context.WithCancel(context.Background())
	events := broker.Subscribe(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range events {
			log.Info(log.CatEvents, "marketplace event", "topic", string(ev.Type), "id", ev.Payload.ID)
		}
	}()
	return func() {
		broker.Close()
		cancel()
		<-done
	}
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
