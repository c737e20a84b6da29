// File: internal/config/config_test.go
package config

import (
	"bytes"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -- Constructor and Defaults Tests --

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "info", cfg.Logger().Level)
	assert.Equal(t, "console", cfg.Logger().Format)
	assert.Equal(t, "morph", cfg.Logger().ServiceName)
	assert.Equal(t, "green", cfg.Logger().Colors.Info)

	assert.Equal(t, "apply", cfg.Brain().ApplyModel)
	assert.Equal(t, 12, cfg.Brain().PaletteLimit)
	assert.Equal(t, 10, cfg.Brain().HeadingLimit)
	assert.Equal(t, 10, cfg.Brain().LargeCSSThreshold)
	assert.Equal(t, "#2bb673", cfg.Brain().DefaultBrandColor)
	assert.True(t, cfg.Brain().DetectDrift)

	require.NoError(t, cfg.Validate())
}

func TestSetBrainDetectDrift(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.SetBrainDetectDrift(false)
	assert.False(t, cfg.Brain().DetectDrift)
}

// -- Validation Logic Tests --

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid defaults", func(c *Config) {}, ""},
		{"json format", func(c *Config) { c.LoggerCfg.Format = "json" }, ""},
		{"bad format", func(c *Config) { c.LoggerCfg.Format = "xml" }, "logger.format"},
		{"empty model", func(c *Config) { c.BrainCfg.ApplyModel = "" }, "apply_model"},
		{"zero palette", func(c *Config) { c.BrainCfg.PaletteLimit = 0 }, "palette_limit"},
		{"negative headings", func(c *Config) { c.BrainCfg.HeadingLimit = -1 }, "heading_limit"},
		{"zero threshold", func(c *Config) { c.BrainCfg.LargeCSSThreshold = 0 }, "large_css_threshold"},
		{"bad color", func(c *Config) { c.BrainCfg.DefaultBrandColor = "green" }, "default_brand_color"},
		{"short color", func(c *Config) { c.BrainCfg.DefaultBrandColor = "#0f0" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// -- Viper Integration Tests --

func TestNewConfigFromViper(t *testing.T) {
	t.Run("should override defaults from yaml", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.SetConfigType("yaml")
		yamlConfig := []byte(`
logger:
  level: debug
  format: json
brain:
  palette_limit: 4
  default_brand_color: "#123456"
  detect_drift: false
`)
		require.NoError(t, v.ReadConfig(bytes.NewBuffer(yamlConfig)))

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)
		assert.Equal(t, "debug", cfg.Logger().Level)
		assert.Equal(t, "json", cfg.Logger().Format)
		assert.Equal(t, 4, cfg.Brain().PaletteLimit)
		assert.Equal(t, "#123456", cfg.Brain().DefaultBrandColor)
		assert.False(t, cfg.Brain().DetectDrift)
		// Untouched keys keep their defaults.
		assert.Equal(t, 10, cfg.Brain().HeadingLimit)
	})

	t.Run("should reject invalid values", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.Set("brain.large_css_threshold", 0)

		_, err := NewConfigFromViper(v)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid configuration")
	})
}
