// Package config loads the petsclaws configuration: defaults, then an
// optional YAML file, then environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dreamware/petsclaws/internal/storage"
)

// DefaultTokenTTL is used when auth.token_ttl is missing or malformed.
const DefaultTokenTTL = 24 * time.Hour

// Config holds all petsclaws configuration.
type Config struct {
	// HTTP listen address of `petsclaws serve`
	Listen string `yaml:"listen"`

	Store   StoreConfig   `yaml:"store"`
	Auth    AuthConfig    `yaml:"auth"`
	Catalog CatalogConfig `yaml:"catalog"`
	Log     LogConfig     `yaml:"log"`
}

// StoreConfig selects the record store backend.
type StoreConfig struct {
	Driver string `yaml:"driver"` // memory, sqlite, postgres
	Path   string `yaml:"path"`   // sqlite file
	DSN    string `yaml:"dsn"`    // postgres connection string
}

// AuthConfig configures API bearer tokens.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
	TokenTTL  string `yaml:"token_ttl"`
}

// CatalogConfig points at a product catalog file. Empty uses the built-in one.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// LogConfig configures zap.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	return &Config{
		Listen: ":8080",
		Store: StoreConfig{
			Driver: storage.DriverSQLite,
			Path:   filepath.Join(".petsclaws", "petsclaws.db"),
		},
		Auth: AuthConfig{
			TokenTTL: DefaultTokenTTL.String(),
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults and applies environment overrides. A
// missing file is not an error; an empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	overrides := []struct {
		env string
		dst *string
	}{
		{"PETSCLAWS_LISTEN", &c.Listen},
		{"PETSCLAWS_STORE_DRIVER", &c.Store.Driver},
		{"PETSCLAWS_STORE_PATH", &c.Store.Path},
		{"PETSCLAWS_CATALOG", &c.Catalog.Path},
		{"PETSCLAWS_LOG_LEVEL", &c.Log.Level},
		{"JWT_SECRET", &c.Auth.JWTSecret},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.env); v != "" {
			*o.dst = v
		}
	}

	// DATABASE_URL alone switches to postgres
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		c.Store.DSN = dsn
		if os.Getenv("PETSCLAWS_STORE_DRIVER") == "" {
			c.Store.Driver = storage.DriverPostgres
		}
	}
}

// GetTokenTTL returns the bearer token lifetime.
func (c *Config) GetTokenTTL() time.Duration {
	d, err := time.ParseDuration(c.Auth.TokenTTL)
	if err != nil || d <= 0 {
		return DefaultTokenTTL
	}
	return d
}

// ValidDrivers lists the supported store drivers.
var ValidDrivers = []string{storage.DriverMemory, storage.DriverSQLite, storage.DriverPostgres}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case storage.DriverMemory, storage.DriverSQLite:
	case storage.DriverPostgres:
		if c.Store.DSN == "" {
			return errors.New("store.dsn is required for the postgres driver (or set DATABASE_URL)")
		}
	default:
		return fmt.Errorf("invalid store driver: %s (valid: %v)", c.Store.Driver, ValidDrivers)
	}
	if c.Store.Driver == storage.DriverSQLite && c.Store.Path == "" {
		return errors.New("store.path is required for the sqlite driver")
	}
	return nil
}

// ValidateServe additionally requires a token secret.
func (c *Config) ValidateServe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is not configured (set JWT_SECRET)")
	}
	return nil
}
