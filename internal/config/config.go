// Package config handles configuration loading for Investor GPS.
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
	API       APIConfig       `mapstructure:"api"       yaml:"api"`
	Database  DatabaseConfig  `mapstructure:"database"  yaml:"database"`
	Providers ProvidersConfig `mapstructure:"providers" yaml:"providers"`
	Macro     MacroConfig     `mapstructure:"macro"     yaml:"macro"`
	Reaction  ReactionConfig  `mapstructure:"reaction"  yaml:"reaction"`
	News      NewsConfig      `mapstructure:"news"      yaml:"news"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// DatabaseConfig holds SQLite settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path" yaml:"path"` // empty means the default temp-dir location
}

// ProvidersConfig holds upstream data source credentials.
type ProvidersConfig struct {
	BLSKey  string `mapstructure:"bls_key"  yaml:"bls_key"`  // optional registration key
	FREDKey string `mapstructure:"fred_key" yaml:"fred_key"` // required for FRED-backed indicators
}

// MacroConfig holds BLS ingestion settings.
type MacroConfig struct {
	YearsBack int `mapstructure:"years_back" yaml:"years_back"` // how far back each ingest reaches
}

// ReactionConfig holds market reaction analysis settings.
type ReactionConfig struct {
	HistoricalWindowDays int `mapstructure:"historical_window_days" yaml:"historical_window_days"`
}

// NewsConfig holds news collection settings.
type NewsConfig struct {
	MaxArticles int `mapstructure:"max_articles" yaml:"max_articles"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.investorgps/config.yaml (home directory)
//  3. /etc/investorgps/config.yaml (system)
//
// Environment variables override config file values.
// Format: INVESTORGPS_<SECTION>_<KEY>, e.g., INVESTORGPS_PROVIDERS_FRED_KEY
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".investorgps"))
	v.AddConfigPath("/etc/investorgps")

	v.SetEnvPrefix("INVESTORGPS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config file not required to exist; defaults + env vars suffice.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
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
	v.SetEnvPrefix("INVESTORGPS")
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
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})

	v.SetDefault("database.path", "")

	v.SetDefault("macro.years_back", 2)

	v.SetDefault("reaction.historical_window_days", 90)

	v.SetDefault("news.max_articles", 50)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
// The bare BLS_API_KEY and FRED_API_KEY names are honored too, since those
// are what the upstream providers document.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv("INVESTORGPS_PROVIDERS_BLS_KEY"); key != "" {
		cfg.Providers.BLSKey = key
	}
	if key := os.Getenv("BLS_API_KEY"); key != "" {
		cfg.Providers.BLSKey = key
	}
	if key := os.Getenv("INVESTORGPS_PROVIDERS_FRED_KEY"); key != "" {
		cfg.Providers.FREDKey = key
	}
	if key := os.Getenv("FRED_API_KEY"); key != "" {
		cfg.Providers.FREDKey = key
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
