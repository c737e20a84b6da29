// File: internal/config/config.go
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/xkilldash9x/morph-cli/internal/brain/models"
)

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Brain() BrainConfig
	SetBrainDetectDrift(bool)
}

// Config holds the entire application configuration.
type Config struct {
	LoggerCfg LoggerConfig `mapstructure:"logger" yaml:"logger"`
	BrainCfg  BrainConfig  `mapstructure:"brain" yaml:"brain"`
}

func (c *Config) Logger() LoggerConfig { return c.LoggerCfg }
func (c *Config) Brain() BrainConfig   { return c.BrainCfg }

func (c *Config) SetBrainDetectDrift(b bool) { c.BrainCfg.DetectDrift = b }

// LoggerConfig configures the global zap logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color names for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// BrainConfig tunes the planning pipeline.
type BrainConfig struct {
	// ApplyModel names the merge strategy placed in every payload.
	ApplyModel        string `mapstructure:"apply_model" yaml:"apply_model"`
	PaletteLimit      int    `mapstructure:"palette_limit" yaml:"palette_limit"`
	HeadingLimit      int    `mapstructure:"heading_limit" yaml:"heading_limit"`
	LargeCSSThreshold int    `mapstructure:"large_css_threshold" yaml:"large_css_threshold"`
	DefaultBrandColor string `mapstructure:"default_brand_color" yaml:"default_brand_color"`
	DetectDrift       bool   `mapstructure:"detect_drift" yaml:"detect_drift"`
}

// Validate checks the brain settings.
func (b *BrainConfig) Validate() error {
	if b.ApplyModel == "" {
		return fmt.Errorf("apply_model must not be empty")
	}
	if b.PaletteLimit <= 0 {
		return fmt.Errorf("palette_limit must be a positive integer")
	}
	if b.HeadingLimit <= 0 {
		return fmt.Errorf("heading_limit must be a positive integer")
	}
	if b.LargeCSSThreshold <= 0 {
		return fmt.Errorf("large_css_threshold must be a positive integer")
	}
	if !models.ValidHexColor(b.DefaultBrandColor) {
		return fmt.Errorf("default_brand_color %q is not a hex color", b.DefaultBrandColor)
	}
	return nil
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// DefaultBrainConfig returns the brain section of the defaults.
func DefaultBrainConfig() BrainConfig {
	return NewDefaultConfig().BrainCfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "morph")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Brain --
	v.SetDefault("brain.apply_model", "apply")
	v.SetDefault("brain.palette_limit", 12)
	v.SetDefault("brain.heading_limit", 10)
	v.SetDefault("brain.large_css_threshold", 10)
	v.SetDefault("brain.default_brand_color", "#2bb673")
	v.SetDefault("brain.detect_drift", true)
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	switch c.LoggerCfg.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logger.format must be 'console' or 'json', got %q", c.LoggerCfg.Format)
	}
	if err := c.BrainCfg.Validate(); err != nil {
		return fmt.Errorf("brain configuration invalid: %w", err)
	}
	return nil
}
