// Package config provides configuration types and defaults for the
// marketplace engine.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kalepail/smol-sc/internal/log"
	"github.com/kalepail/smol-sc/internal/paths"
	"github.com/kalepail/smol-sc/internal/tracing"
)

// Config holds all configuration options for the engine.
type Config struct {
	// DBPath is the SQLite database file backing the marketplace state.
	// Default: ~/.smol/market.db
	DBPath string `mapstructure:"db_path"`

	// Custody is the principal that holds escrow and royalty funds.
	Custody string `mapstructure:"custody"`

	Market  MarketConfig   `mapstructure:"market"`
	Tracing tracing.Config `mapstructure:"tracing"`
	Log     LogConfig      `mapstructure:"log"`

	// Flags holds feature flags; unknown flags are ignored and default off.
	Flags map[string]bool `mapstructure:"flags"`
}

// MarketConfig holds the values written by the one-time initialize step.
type MarketConfig struct {
	// Admin may update fees and rates after initialization.
	Admin string `mapstructure:"admin"`

	// FeeAsset denominates the color claim fee.
	FeeAsset string `mapstructure:"fee_asset"`

	// FeeRecipient receives color claim fees.
	FeeRecipient string `mapstructure:"fee_recipient"`

	// ColorClaimFee is charged per color claim, in FeeAsset's smallest unit.
	ColorClaimFee int64 `mapstructure:"color_claim_fee"`

	// ColorOwnerRate is the percentage of each sale split across the owners
	// of the colors in the sold glyph.
	ColorOwnerRate int64 `mapstructure:"color_owner_rate"`

	// GlyphAuthorRate is the percentage of each sale paid to the glyph's
	// author.
	GlyphAuthorRate int64 `mapstructure:"glyph_author_rate"`
}

// LogConfig holds file logging configuration.
type LogConfig struct {
	// Enabled controls whether the debug log file is written.
	Enabled bool `mapstructure:"enabled"`

	// Path is the log file location. Default: ~/.smol/debug.log
	Path string `mapstructure:"path"`

	// Level is the minimum level written: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
}

// DefaultDBPath returns the database file in the resolved data directory,
// honoring the SMOL_DIR environment variable.
func DefaultDBPath() string {
	return paths.DBPath(paths.ResolveDataDir(os.Getenv("SMOL_DIR")))
}

// DefaultLogPath returns the log file in the resolved data directory,
// honoring the SMOL_DIR environment variable.
func DefaultLogPath() string {
	return paths.LogPath(paths.ResolveDataDir(os.Getenv("SMOL_DIR")))
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		DBPath:  DefaultDBPath(),
		Custody: "marketplace",
		Market: MarketConfig{
			ColorClaimFee:   1,
			ColorOwnerRate:  2,
			GlyphAuthorRate: 5,
		},
		Tracing: tracing.DefaultConfig(),
		Log: LogConfig{
			Enabled: false,
			Path:    DefaultLogPath(),
			Level:   "info",
		},
	}
}

// Validate checks the configuration for errors. Empty values fall back to
// defaults and are not errors.
func Validate(cfg Config) error {
	if cfg.DBPath != "" && !filepath.IsAbs(cfg.DBPath) {
		return fmt.Errorf("db_path must be an absolute path, got %q", cfg.DBPath)
	}
	if err := ValidateMarket(cfg.Market); err != nil {
		return err
	}
	if err := ValidateTracing(cfg.Tracing); err != nil {
		return err
	}
	return ValidateLog(cfg.Log)
}

// ValidateMarket checks the market section for errors.
func ValidateMarket(m MarketConfig) error {
	if m.ColorClaimFee < 0 {
		return fmt.Errorf("market.color_claim_fee must not be negative, got %d", m.ColorClaimFee)
	}
	if m.ColorOwnerRate < 0 || m.ColorOwnerRate > 100 {
		return fmt.Errorf("market.color_owner_rate must be between 0 and 100, got %d", m.ColorOwnerRate)
	}
	if m.GlyphAuthorRate < 0 || m.GlyphAuthorRate > 100 {
		return fmt.Errorf("market.glyph_author_rate must be between 0 and 100, got %d", m.GlyphAuthorRate)
	}
	if m.ColorOwnerRate+m.GlyphAuthorRate > 100 {
		return fmt.Errorf("market royalty rates sum to %d, must not exceed 100", m.ColorOwnerRate+m.GlyphAuthorRate)
	}
	return nil
}

// ValidateTracing checks the tracing section for errors.
func ValidateTracing(t tracing.Config) error {
	if t.SampleRate < 0.0 || t.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", t.SampleRate)
	}
	switch t.Exporter {
	case "", "none", "stdout", "otlp":
	default:
		return fmt.Errorf("tracing.exporter must be \"none\", \"stdout\", or \"otlp\", got %q", t.Exporter)
	}
	if t.Enabled && t.Exporter == "otlp" && t.OTLPEndpoint == "" {
		return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
	}
	return nil
}

// ValidateLog checks the log section for errors.
func ValidateLog(l LogConfig) error {
	switch l.Level {
	case "", "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("log.level must be \"debug\", \"info\", \"warn\", or \"error\", got %q", l.Level)
	}
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# smol marketplace configuration

# Path to the SQLite database file holding marketplace state
# db_path: ~/.smol/market.db

# Principal that holds escrowed offer funds and accrued royalties
custody: marketplace

# Values applied by 'smol admin init'
market:
  # admin: GADMIN...
  # fee_asset: USDC
  # fee_recipient: GTREASURY...
  color_claim_fee: 1     # charged per color claim, in fee_asset's smallest unit
  color_owner_rate: 2    # percent of each sale split across color owners
  glyph_author_rate: 5   # percent of each sale paid to the glyph author

# Distributed tracing (spans every marketplace operation)
# tracing:
#   enabled: false
#   exporter: stdout               # none, stdout, or otlp
#   otlp_endpoint: localhost:4317  # collector endpoint for the otlp exporter
#   sample_rate: 1.0               # 0.0 to 1.0

# Debug log file
# log:
#   enabled: false
#   path: ~/.smol/debug.log
#   level: info  # debug, info, warn, or error

# Feature flags
# flags:
#   dev-ledger: false    # enable the ledger:mint development command
#   event-mirror: false  # mirror marketplace notifications into the debug log
`
}

// WriteDefaultConfig creates a config file at the given path with default
// settings and comments. Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
