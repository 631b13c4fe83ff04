package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"library-lending/library"
)

const defaultConfigFile = "library.toml"

// Config is the on-disk library.toml layout.
type Config struct {
	Admin   AdminConfig   `toml:"admin"`
	Catalog CatalogConfig `toml:"catalog"`
	Export  ExportConfig  `toml:"export"`
	Log     LogConfig     `toml:"log"`
}

type AdminConfig struct {
	Username string `toml:"username"`
	// PasswordHash is a bcrypt hash; see cmd/hashpw. Empty means the
	// built-in default password.
	PasswordHash string `toml:"password_hash"`
}

type CatalogConfig struct {
	SeedFile string `toml:"seed_file"`
}

type ExportConfig struct {
	Dir string `toml:"dir"`
}

type LogConfig struct {
	Verbose bool `toml:"verbose"`
}

func defaultConfig() Config {
	return Config{Admin: AdminConfig{Username: library.DefaultAdminUsername}}
}

// loadConfig layers defaults, the TOML file at path and LIBRARY_* environment
// variables. A missing file is only an error when required is set.
func loadConfig(path string, required bool) (Config, error) {
	// Do not override environment provided by the runtime.
	_ = godotenv.Load(".env")

	cfg := defaultConfig()

	data, err := os.ReadFile(filepath.Clean(path))
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !required:
	default:
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("LIBRARY_ADMIN_USERNAME"); v != "" {
		cfg.Admin.Username = v
	}
	if v := os.Getenv("LIBRARY_ADMIN_PASSWORD_HASH"); v != "" {
		cfg.Admin.PasswordHash = v
	}
	if v := os.Getenv("LIBRARY_SEED_FILE"); v != "" {
		cfg.Catalog.SeedFile = v
	}
	if v := os.Getenv("LIBRARY_EXPORT_DIR"); v != "" {
		cfg.Export.Dir = v
	}
	if v := os.Getenv("LIBRARY_VERBOSE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("LIBRARY_VERBOSE: %w", err)
		}
		cfg.Log.Verbose = b
	}
	return nil
}
