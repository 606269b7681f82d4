// Package config loads the YAML configuration and wires the storage
// backends, degrading to cache-only mode when the relational backend cannot
// be built.
package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/botmint/chatstore"
	"github.com/botmint/chatstore/cache"
	"github.com/botmint/chatstore/storage"
)

// Config is the complete chatstore configuration.
type Config struct {
	Redis    RedisConfig    `yaml:"redis"`
	Database DatabaseConfig `yaml:"database"`
	Defaults DefaultsConfig `yaml:"defaults"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// RedisConfig holds the cache backend connection parameters.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// DatabaseConfig selects and configures the optional relational backend.
type DatabaseConfig struct {
	// Engine is "postgres", "sqlite" or "none" (the default).
	Engine string `yaml:"engine"`
	// DSN is the PostgreSQL connection string.
	DSN string `yaml:"dsn"`
	// Path is the SQLite database file path.
	Path string `yaml:"path"`
}

// DefaultsConfig holds the default tables for chat and user settings.
type DefaultsConfig struct {
	Chat map[string]string `yaml:"chat"`
	User map[string]string `yaml:"user"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

var envPattern = regexp.MustCompile(`\$\{(\w+)\}`)

// expandEnv replaces ${VAR} references with the value of the corresponding
// environment variable. Unset variables expand to the empty string.
func expandEnv(data []byte) []byte {
	return envPattern.ReplaceAllFunc(data, func(m []byte) []byte {
		name := envPattern.FindSubmatch(m)[1]
		return []byte(os.Getenv(string(name)))
	})
}

// Load reads, env-expands and parses the configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	cfg := &Config{
		Redis: RedisConfig{Addr: "localhost:6379"},
	}
	if err := yaml.Unmarshal(expandEnv(data), cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

// LogLevel maps the configured level name onto the chatstore log levels.
// Unrecognized or empty values map to Info.
func (c *LoggingConfig) LogLevel() chatstore.LogLevel {
	switch c.Level {
	case "debug":
		return chatstore.LogLevelDebug
	case "warn":
		return chatstore.LogLevelWarn
	case "error":
		return chatstore.LogLevelError
	default:
		return chatstore.LogLevelInfo
	}
}

// BuildStore wires a Composite store from the configuration. The cache
// backend is mandatory and a connection failure is returned to the caller.
// The relational backend is attempted when configured; when it cannot be
// built the failure is logged and the Composite runs in cache-only mode.
func (c *Config) BuildStore(logger chatstore.Logger) (*chatstore.Composite, error) {
	if logger == nil {
		logger = chatstore.NewDefaultLogger()
	}

	defaults := chatstore.Defaults{
		Chat: c.Defaults.Chat,
		User: c.Defaults.User,
	}

	cacheStore, err := cache.NewRedisStore(c.Redis.Addr, c.Redis.Password, c.Redis.DB, defaults)
	if err != nil {
		return nil, err
	}

	var relational chatstore.IdentityStore
	switch c.Database.Engine {
	case "postgres":
		ps, err := storage.NewPostgresStore(c.Database.DSN, logger)
		if err != nil {
			logger.Warn("relational store unavailable, running cache-only", "engine", "postgres", "err", err)
		} else {
			relational = ps
		}
	case "sqlite":
		ss, err := storage.NewSQLiteStore(c.Database.Path, logger)
		if err != nil {
			logger.Warn("relational store unavailable, running cache-only", "engine", "sqlite", "err", err)
		} else {
			relational = ss
		}
	case "", "none":
		// cache-only deployment
	default:
		cacheStore.Close()
		return nil, fmt.Errorf("config: unknown database engine %q", c.Database.Engine)
	}

	return chatstore.New(
		chatstore.WithCache(cacheStore),
		chatstore.WithRelational(relational),
		chatstore.WithLogger(logger),
	)
}
