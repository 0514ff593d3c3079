// Package config loads findit's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/juiceshop/findit/internal/logging"
)

// Config holds all findit configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Snippets SnippetsConfig `yaml:"snippets"`
	Store    StoreConfig    `yaml:"store"`
	Logging  logging.Config `yaml:"logging"`

	// Users are the accounts that may post reviews, keyed by bearer token.
	Users []UserConfig `yaml:"users"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`

	// RequestTimeout bounds every request's context. Default: 10s.
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// ShutdownTimeout bounds graceful shutdown. Default: 5s.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// SnippetsConfig says where challenge source files and info files live.
type SnippetsConfig struct {
	// Sources are files or directories scanned for snippet markers.
	Sources []string `yaml:"sources"`

	// InfoDir holds <key>.info.yml files with hints.
	InfoDir string `yaml:"info_dir"`

	// Watch reloads snippets when source files change.
	Watch bool `yaml:"watch"`
}

// StoreConfig configures the SQLite database.
type StoreConfig struct {
	// Path overrides the default XDG location.
	Path string `yaml:"path"`
}

// UserConfig seeds one authenticated user.
type UserConfig struct {
	ID    int    `yaml:"id"`
	Email string `yaml:"email"`
	Token string `yaml:"token"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":3000",
			RequestTimeout:  10 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Snippets: SnippetsConfig{
			Sources: []string{"routes", "lib", "data", "models"},
			InfoDir: "data/static/codefixes",
		},
		Logging: logging.Config{Level: "info", Encoding: "console"},
	}
}

// Load reads the YAML file at path on top of Default and applies environment
// overrides. An empty path or a missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// defaults only
		case err != nil:
			return Config{}, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv lets FINDIT_DB and FINDIT_ADDR override file values.
func applyEnv(cfg *Config) {
	if v := os.Getenv("FINDIT_DB"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("FINDIT_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
}

// Validate checks the configuration for values the server cannot run with.
func (c Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr must not be empty")
	}
	if c.Server.RequestTimeout <= 0 {
		return errors.New("server.request_timeout must be positive")
	}
	if len(c.Snippets.Sources) == 0 {
		return errors.New("snippets.sources must list at least one path")
	}
	seen := make(map[string]bool, len(c.Users))
	for i, u := range c.Users {
		if u.Token == "" || u.Email == "" {
			return fmt.Errorf("users[%d]: token and email are required", i)
		}
		if seen[u.Token] {
			return fmt.Errorf("users[%d]: duplicate token", i)
		}
		seen[u.Token] = true
	}
	return nil
}
