package common

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Storage StorageConfig `toml:"storage"`
	Logging LoggingConfig `toml:"logging"`
	Backup  BackupConfig  `toml:"backup"`
	Word    WordConfig    `toml:"word"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
	// RateLimit is the sustained request rate per second; Burst bounds spikes
	RateLimit float64 `toml:"rate_limit"`
	Burst     int     `toml:"burst"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// BackupConfig controls the scheduled JSON export of the whole library
type BackupConfig struct {
	Enabled  bool   `toml:"enabled"`
	Schedule string `toml:"schedule"` // cron schedule, e.g. "0 3 * * *"
	Dir      string `toml:"dir"`      // directory backups are written to
}

// WordConfig configures the external Word converter
type WordConfig struct {
	PandocPath string `toml:"pandoc_path"` // defaults to "pandoc" on PATH
}

// DefaultConfig returns configuration defaults applied before any file or
// environment override
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:      8085,
			Host:      "localhost",
			RateLimit: 50,
			Burst:     100,
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data/lexuz",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
		Backup: BackupConfig{
			Enabled:  false,
			Schedule: "0 3 * * *",
			Dir:      "./backups",
		},
		Word: WordConfig{
			PandocPath: "pandoc",
		},
	}
}

// LoadConfig loads configuration from defaults, then the given TOML file
// (skipped when path is empty), then environment variables
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// ApplyFlagOverrides applies command-line overrides (highest priority)
func ApplyFlagOverrides(cfg *Config, port int, host string) {
	if port != 0 {
		cfg.Server.Port = port
	}
	if host != "" {
		cfg.Server.Host = host
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LEXUZ_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("LEXUZ_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("LEXUZ_DB_PATH"); v != "" {
		cfg.Storage.Badger.Path = v
	}
	if v := os.Getenv("LEXUZ_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
