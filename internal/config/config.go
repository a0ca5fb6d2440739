// Package config loads application configuration from config.yaml and
// DILIGENCE_* environment variables, and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Search     SearchConfig     `yaml:"search" mapstructure:"search"`
	Fetch      FetchConfig      `yaml:"fetch" mapstructure:"fetch"`
	Research   ResearchConfig   `yaml:"research" mapstructure:"research"`
	Validation ValidationConfig `yaml:"validation" mapstructure:"validation"`
	Pricing    PricingConfig    `yaml:"pricing" mapstructure:"pricing"`
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// AnthropicConfig holds model API settings. The fast model handles
// per-task analysis and validation; the strong model handles deck
// extraction and the final assessment.
type AnthropicConfig struct {
	Key         string `yaml:"key" mapstructure:"key"`
	FastModel   string `yaml:"fast_model" mapstructure:"fast_model"`
	StrongModel string `yaml:"strong_model" mapstructure:"strong_model"`
}

// SearchConfig holds web-search API settings.
type SearchConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// FetchConfig configures evidence acquisition.
type FetchConfig struct {
	RenderEnabled    bool    `yaml:"render_enabled" mapstructure:"render_enabled"`
	TimeoutSecs      int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	PerHostPerSec    float64 `yaml:"per_host_per_sec" mapstructure:"per_host_per_sec"`
	InterFetchWaitMs int     `yaml:"inter_fetch_wait_ms" mapstructure:"inter_fetch_wait_ms"`
}

// ResearchConfig configures the research stage.
type ResearchConfig struct {
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent"`
}

// ValidationConfig configures the validation stage.
type ValidationConfig struct {
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent"`
}

// PricingConfig points at an optional rates override file.
type PricingConfig struct {
	RatesFile string `yaml:"rates_file" mapstructure:"rates_file"`
}

// StoreConfig configures the artifact database.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ServerConfig configures the read-only artifact server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("DILIGENCE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("anthropic.fast_model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.strong_model", "claude-sonnet-4-5-20250929")
	v.SetDefault("search.base_url", "https://s.jina.ai")
	v.SetDefault("fetch.render_enabled", true)
	v.SetDefault("fetch.timeout_secs", 10)
	v.SetDefault("fetch.per_host_per_sec", 1.0)
	v.SetDefault("fetch.inter_fetch_wait_ms", 1000)
	v.SetDefault("research.max_concurrent", 3)
	v.SetDefault("validation.max_concurrent", 3)
	v.SetDefault("store.path", "diligence.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
