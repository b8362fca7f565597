// Package config provides configuration loading for stocklens.
// Settings come from a YAML file, then a .env file, then environment variables,
// with defaults for everything left unset.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when CONFIG_PATH is not set
const DefaultPath = "configs/config.yaml"

// Config holds all application configuration
type Config struct {
	Database Database `yaml:"database"`
	Yahoo    Yahoo    `yaml:"yahoo"`
	Ingest   Ingest   `yaml:"ingest"`
	Viewer   Viewer   `yaml:"viewer"`

	// Exchange suffixes stripped from a symbol before matching news content
	SymbolSuffixes []string `yaml:"symbol_suffixes"`
}

// Database selects the driver and connection string
type Database struct {
	Driver string `yaml:"driver"`
	URL    string `yaml:"url"`
}

// Yahoo configures the chart API used for history downloads
type Yahoo struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Ingest configures the price download job
type Ingest struct {
	Period            string  `yaml:"period"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Retries           uint64  `yaml:"retries"`
	Cron              string  `yaml:"cron"`
}

// Viewer configures the interactive chart
type Viewer struct {
	DefaultDays int    `yaml:"default_days"`
	LogFile     string `yaml:"log_file"`
}

// Defaults target a local server with a passwordless root user
const (
	defaultDriver  = "postgres"
	defaultURL     = "postgres://root@localhost:5432/finance_nifty50?sslmode=disable"
	defaultYahoo   = "https://query1.finance.yahoo.com"
	defaultPeriod  = "5y"
	defaultCron    = "0 0 18 * * 1-5"
	defaultLogFile = "viewer.log"
)

// Load reads config from a YAML file, applies .env and environment overrides, then defaults.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// .env never overrides variables already present in the environment
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)

	return cfg, nil
}

// LoadDefault loads from CONFIG_PATH or DefaultPath
func LoadDefault() (*Config, error) {
	path := DefaultPath
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}
	return Load(path)
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("YAHOO_BASE_URL"); v != "" {
		cfg.Yahoo.BaseURL = v
	}
	if v := os.Getenv("INGEST_PERIOD"); v != "" {
		cfg.Ingest.Period = v
	}
	if v := os.Getenv("INGEST_CRON"); v != "" {
		cfg.Ingest.Cron = v
	}
	if v := os.Getenv("INGEST_RETRIES"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("parse INGEST_RETRIES: %w", err)
		}
		cfg.Ingest.Retries = n
	}
	if v := os.Getenv("SYMBOL_SUFFIXES"); v != "" {
		cfg.SymbolSuffixes = splitList(v)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = defaultDriver
	}
	if cfg.Database.URL == "" {
		cfg.Database.URL = defaultURL
	}
	if cfg.Yahoo.BaseURL == "" {
		cfg.Yahoo.BaseURL = defaultYahoo
	}
	if cfg.Yahoo.TimeoutSeconds <= 0 {
		cfg.Yahoo.TimeoutSeconds = 30
	}
	if cfg.Ingest.Period == "" {
		cfg.Ingest.Period = defaultPeriod
	}
	if cfg.Ingest.RequestsPerSecond <= 0 {
		cfg.Ingest.RequestsPerSecond = 2
	}
	if cfg.Ingest.Cron == "" {
		cfg.Ingest.Cron = defaultCron
	}
	if cfg.Viewer.DefaultDays <= 0 {
		cfg.Viewer.DefaultDays = 7
	}
	if cfg.Viewer.LogFile == "" {
		cfg.Viewer.LogFile = defaultLogFile
	}
	if len(cfg.SymbolSuffixes) == 0 {
		cfg.SymbolSuffixes = []string{".JK"}
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
