// Package config holds the settings every component is built from. A
// Config is loaded once at startup and passed by value from then on.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	// DatabasePath is the sqlite file holding the catalog.
	DatabasePath string `yaml:"database_path" env:"CATALOG_DATABASE_PATH" env-default:"catalog.db"`

	// DataRoot is the directory local storage locators resolve under.
	DataRoot string `yaml:"data_root" env:"CATALOG_DATA_ROOT" env-default:"data"`

	// InspectChunkBytes bounds the buffer used to checksum audio files.
	InspectChunkBytes int `yaml:"inspect_chunk_bytes" env:"CATALOG_INSPECT_CHUNK_BYTES" env-default:"1048576"`

	// InspectWorkers bounds how many audio files of one request are
	// inspected at once.
	InspectWorkers int `yaml:"inspect_workers" env:"CATALOG_INSPECT_WORKERS" env-default:"4"`

	// BusyTimeoutMS is how long sqlite waits on a locked database.
	BusyTimeoutMS int `yaml:"busy_timeout_ms" env:"CATALOG_BUSY_TIMEOUT_MS" env-default:"5000"`

	LogLevel  string `yaml:"log_level" env:"CATALOG_LOG_LEVEL" env-default:"info"`
	LogFormat string `yaml:"log_format" env:"CATALOG_LOG_FORMAT" env-default:"console"`
}

// Load reads the config file at path, if path is not empty, then applies
// CATALOG_* environment variables on top.
func Load(path string) (Config, error) {
	var cfg Config
	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("error reading config '%s': %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("error reading config from environment: %w", err)
	}
	return cfg.validated()
}

// Default is the configuration with every default applied, rooted at dir.
func Default(dir string) Config {
	return Config{
		DatabasePath:      filepath.Join(dir, "catalog.db"),
		DataRoot:          filepath.Join(dir, "data"),
		InspectChunkBytes: 1 << 20,
		InspectWorkers:    4,
		BusyTimeoutMS:     5000,
		LogLevel:          "info",
		LogFormat:         "console",
	}
}

func (cfg Config) validated() (Config, error) {
	root, err := filepath.Abs(cfg.DataRoot)
	if err != nil {
		return Config{}, fmt.Errorf("error resolving data root '%s': %w", cfg.DataRoot, err)
	}
	cfg.DataRoot = root
	if cfg.DatabasePath == "" {
		return Config{}, fmt.Errorf("database path is empty")
	}
	if cfg.InspectChunkBytes <= 0 {
		return Config{}, fmt.Errorf("inspect chunk size must be positive, got %d", cfg.InspectChunkBytes)
	}
	if cfg.InspectWorkers <= 0 {
		return Config{}, fmt.Errorf("inspect workers must be positive, got %d", cfg.InspectWorkers)
	}
	if cfg.BusyTimeoutMS < 0 {
		return Config{}, fmt.Errorf("busy timeout must not be negative, got %d", cfg.BusyTimeoutMS)
	}
	return cfg, nil
}
