// Package config loads minipas settings from a TOML or YAML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/strager/minipas/logger"
	"github.com/strager/minipas/report"
	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable consulted by LoadDefault.
const EnvVar = "MINIPAS_CONFIG"

// Config holds the complete tool configuration
type Config struct {
	Diagnostics DiagnosticsConfig `toml:"diagnostics" yaml:"diagnostics"`
	Log         LogConfig         `toml:"log" yaml:"log"`
	Run         RunConfig         `toml:"run" yaml:"run"`
}

// DiagnosticsConfig controls which diagnostics are reported and how
type DiagnosticsConfig struct {
	Werror           bool     `toml:"werror" yaml:"werror"`
	DisabledErrors   []string `toml:"disabled_errors" yaml:"disabled_errors"`
	DisabledWarnings []string `toml:"disabled_warnings" yaml:"disabled_warnings"`
	// Color is "auto", "always" or "never".
	Color    string `toml:"color" yaml:"color"`
	TabWidth int    `toml:"tab_width" yaml:"tab_width"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
	File   string `toml:"file" yaml:"file"`
}

// RunConfig selects what the default command prints after a clean analysis
type RunConfig struct {
	Graph        bool `toml:"graph" yaml:"graph"`
	PrintSymbols bool `toml:"print_symbols" yaml:"print_symbols"`
	PrintSource  bool `toml:"print_source" yaml:"print_source"`
	Execute      bool `toml:"execute" yaml:"execute"`
}

// Default returns the configuration used when no file is found. The
// default command prints everything the full pipeline produces.
func Default() *Config {
	cfg := &Config{
		Run: RunConfig{
			PrintSymbols: true,
			PrintSource:  true,
			Execute:      true,
		},
	}
	cfg.applyDefaults()
	return cfg
}

// Load loads configuration from a file. Files ending in .yaml or .yml are
// read as YAML, everything else as TOML. Run settings the file leaves out
// keep their Default values.
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	cfg := Config{Run: Default().Run}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	default:
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyDefaults()
	cfg.Log.File = os.ExpandEnv(cfg.Log.File)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// LoadDefault loads the file named by $MINIPAS_CONFIG, or else the first
// of ./minipas.toml and ./minipas.yaml that exists. Without any file it
// returns Default().
func LoadDefault() (*Config, error) {
	if path := os.Getenv(EnvVar); path != "" {
		return Load(path)
	}
	for _, p := range []string{"./minipas.toml", "./minipas.yaml"} {
		if _, err := os.Stat(p); err == nil {
			return Load(p)
		}
	}
	return Default(), nil
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	if c.Diagnostics.Color == "" {
		c.Diagnostics.Color = "auto"
	}
	if c.Diagnostics.TabWidth == 0 {
		c.Diagnostics.TabWidth = report.DefaultTabWidth
	}
	if c.Log.Level == "" {
		c.Log.Level = "warn"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks that every named kind and level is known.
func (c *Config) Validate() error {
	if _, err := c.ReportOptions(); err != nil {
		return err
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	switch c.Diagnostics.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("unknown color mode %q", c.Diagnostics.Color)
	}
	if c.Diagnostics.TabWidth < 0 {
		return fmt.Errorf("tab_width must be positive, got %d", c.Diagnostics.TabWidth)
	}
	return nil
}

// ReportOptions converts the diagnostics section for report.New.
func (c *Config) ReportOptions() (report.Options, error) {
	opts := report.Options{WarningsAsErrors: c.Diagnostics.Werror}
	for _, name := range c.Diagnostics.DisabledErrors {
		kind, err := report.ParseErrorType(name)
		if err != nil {
			return report.Options{}, err
		}
		opts.DisabledErrors = append(opts.DisabledErrors, kind)
	}
	for _, name := range c.Diagnostics.DisabledWarnings {
		kind, err := report.ParseWarningType(name)
		if err != nil {
			return report.Options{}, err
		}
		opts.DisabledWarnings = append(opts.DisabledWarnings, kind)
	}
	return opts, nil
}

// LoggerConfig converts the log section for logger.Init.
func (c *Config) LoggerConfig() (logger.Config, error) {
	level, err := logger.ParseLevel(c.Log.Level)
	if err != nil {
		return logger.Config{}, err
	}
	cfg := logger.DefaultConfig()
	cfg.Level = level
	cfg.Format = c.Log.Format
	cfg.LogFile = c.Log.File
	return cfg, nil
}

// UseColor reports whether diagnostics should be colored. isTerminal is
// consulted only in "auto" mode.
func (c *Config) UseColor(isTerminal bool) bool {
	switch c.Diagnostics.Color {
	case "always":
		return true
	case "never":
		return false
	default:
		return isTerminal
	}
}
