// Package config handles configuration loading for FinVAR.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Providers ProvidersConfig `mapstructure:"providers" yaml:"providers"`
	Cache     CacheConfig     `mapstructure:"cache"     yaml:"cache"`
	Predictor PredictorConfig `mapstructure:"predictor" yaml:"predictor"`
	News      NewsConfig      `mapstructure:"news"      yaml:"news"`
	API       APIConfig       `mapstructure:"api"       yaml:"api"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"`
}

// ProvidersConfig holds upstream data provider credentials and preferences.
type ProvidersConfig struct {
	Preferred      string `mapstructure:"preferred"        yaml:"preferred"` // "fmp", "yfinance", "alphavantage"
	FMPKey         string `mapstructure:"fmp_key"          yaml:"fmp_key"`
	AlphaVantage   string `mapstructure:"alphavantage_key" yaml:"alphavantage_key"`
	EdgarUserAgent string `mapstructure:"edgar_user_agent" yaml:"edgar_user_agent"` // SEC requires a contact UA
}

// CacheConfig holds TTLs in seconds for the various cached payloads.
type CacheConfig struct {
	StatementTTL int `mapstructure:"statement_ttl" yaml:"statement_ttl"`
	QuoteTTL     int `mapstructure:"quote_ttl"     yaml:"quote_ttl"`
	ProfileTTL   int `mapstructure:"profile_ttl"   yaml:"profile_ttl"`
	NewsTTL      int `mapstructure:"news_ttl"      yaml:"news_ttl"`
}

// PredictorConfig holds the EPS regression artifact settings.
type PredictorConfig struct {
	ModelPath               string  `mapstructure:"model_path"                yaml:"model_path"`
	EPSRescaleThreshold     float64 `mapstructure:"eps_rescale_threshold"     yaml:"eps_rescale_threshold"`
	EPSRescaleFactor        float64 `mapstructure:"eps_rescale_factor"        yaml:"eps_rescale_factor"`
	RevenueRescaleThreshold float64 `mapstructure:"revenue_rescale_threshold" yaml:"revenue_rescale_threshold"`
	RevenueRescaleFactor    float64 `mapstructure:"revenue_rescale_factor"    yaml:"revenue_rescale_factor"`
}

// NewsConfig holds RSS feed settings.
type NewsConfig struct {
	FeedURL string `mapstructure:"feed_url" yaml:"feed_url"` // printf template with one %s for the symbol
	Limit   int    `mapstructure:"limit"    yaml:"limit"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.finvar/config.yaml (home directory)
//  3. /etc/finvar/config.yaml (system)
//
// Environment variables override config file values.
// Format: FINVAR_<SECTION>_<KEY>, e.g., FINVAR_PROVIDERS_FMP_KEY
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".finvar"))
	v.AddConfigPath("/etc/finvar")

	v.SetEnvPrefix("FINVAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file is fine, defaults plus env vars apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("FINVAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("providers.preferred", "")

	// Cache defaults (seconds).
	v.SetDefault("cache.statement_ttl", 3600) // 1 hour
	v.SetDefault("cache.quote_ttl", 60)
	v.SetDefault("cache.profile_ttl", 86400) // 24 hours
	v.SetDefault("cache.news_ttl", 600)

	// Predictor defaults match the artifact's training-time rescaling.
	v.SetDefault("predictor.model_path", "")
	v.SetDefault("predictor.eps_rescale_threshold", 1000.0)
	v.SetDefault("predictor.eps_rescale_factor", 1000.0)
	v.SetDefault("predictor.revenue_rescale_threshold", 1e7)
	v.SetDefault("predictor.revenue_rescale_factor", 1e6)

	// News defaults.
	v.SetDefault("news.feed_url", "")
	v.SetDefault("news.limit", 10)

	// API defaults.
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})

	// Logging defaults.
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// overrideFromEnv explicitly reads sensitive keys from environment
// variables, including the bare names used outside FinVAR configs.
func overrideFromEnv(cfg *Config) {
	for _, env := range []string{"FINVAR_PROVIDERS_FMP_KEY", "FMP_API_KEY"} {
		if key := os.Getenv(env); key != "" {
			cfg.Providers.FMPKey = key
			break
		}
	}
	for _, env := range []string{"FINVAR_PROVIDERS_ALPHAVANTAGE_KEY", "ALPHAVANTAGE_API_KEY"} {
		if key := os.Getenv(env); key != "" {
			cfg.Providers.AlphaVantage = key
			break
		}
	}
	for _, env := range []string{"FINVAR_PROVIDERS_EDGAR_USER_AGENT", "EDGAR_USER_AGENT"} {
		if ua := os.Getenv(env); ua != "" {
			cfg.Providers.EdgarUserAgent = ua
			break
		}
	}
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
