// Package config loads the service configuration from a YAML file, an
// optional .env file and TELLER_* environment variables.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Config is the full service configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Session SessionConfig `mapstructure:"session"`
	NLU     NLUConfig     `mapstructure:"nlu"`
	Bank    BankConfig    `mapstructure:"bank"`
	OpenAI  OpenAIConfig  `mapstructure:"openai"`
	Log     LogConfig     `mapstructure:"log"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr           string        `mapstructure:"addr"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	RateLimit      float64       `mapstructure:"rate_limit"`
	Burst          int           `mapstructure:"burst"`
	TrustedProxy   bool          `mapstructure:"trusted_proxy"`
	ShutdownGrace  time.Duration `mapstructure:"shutdown_grace"`
}

// SessionConfig configures dialogue state storage.
type SessionConfig struct {
	Store           string        `mapstructure:"store"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	SweepInterval   time.Duration `mapstructure:"sweep_interval"`
	EncryptionKey   string        `mapstructure:"encryption_key"`
	FallbackKeys    []string      `mapstructure:"fallback_keys"`
	DistributedLock bool          `mapstructure:"distributed_lock"`
	Redis           RedisConfig   `mapstructure:"redis"`
}

// RedisConfig locates the Redis server.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// NLUConfig selects the intent classifier.
type NLUConfig struct {
	Classifier string  `mapstructure:"classifier"`
	Threshold  float64 `mapstructure:"threshold"`
	Smoothing  float64 `mapstructure:"smoothing"`
}

// BankConfig selects the banking backend.
type BankConfig struct {
	Driver     string  `mapstructure:"driver"`
	DSN        string  `mapstructure:"dsn"`
	AnnualRate float64 `mapstructure:"annual_rate"`
	Migrate    bool    `mapstructure:"migrate"`
}

// OpenAIConfig configures the model-backed responder. An empty key disables it.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// LogConfig configures the application logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Accepted enumerations.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"

	BankMemory   = "memory"
	BankPostgres = "postgres"

	ClassifierRules = "rules"
	ClassifierBayes = "bayes"

	FormatText = "text"
	FormatJSON = "json"
)

// Validate reports the first inconsistency found.
func (c *Config) Validate() error {
	var errs []error

	switch c.Session.Store {
	case StoreMemory, StoreRedis:
	default:
		errs = append(errs, fmt.Errorf("session.store: unknown store %q", c.Session.Store))
	}
	if c.Session.Store == StoreRedis && c.Session.Redis.Addr == "" {
		errs = append(errs, errors.New("session.redis.addr is required with the redis store"))
	}
	if c.Session.DistributedLock && c.Session.Store != StoreRedis {
		errs = append(errs, errors.New("session.distributed_lock requires the redis store"))
	}
	if c.Session.IdleTimeout <= 0 {
		errs = append(errs, errors.New("session.idle_timeout must be positive"))
	}
	if c.Session.SweepInterval <= 0 {
		errs = append(errs, errors.New("session.sweep_interval must be positive"))
	}
	if c.Session.EncryptionKey != "" {
		if err := checkKey(c.Session.EncryptionKey); err != nil {
			errs = append(errs, fmt.Errorf("session.encryption_key: %w", err))
		}
	}
	for i, k := range c.Session.FallbackKeys {
		if err := checkKey(k); err != nil {
			errs = append(errs, fmt.Errorf("session.fallback_keys[%d]: %w", i, err))
		}
	}

	switch c.NLU.Classifier {
	case ClassifierRules, ClassifierBayes:
	default:
		errs = append(errs, fmt.Errorf("nlu.classifier: unknown classifier %q", c.NLU.Classifier))
	}
	if c.NLU.Threshold < 0 || c.NLU.Threshold > 1 {
		errs = append(errs, errors.New("nlu.threshold must be within [0, 1]"))
	}
	if c.NLU.Smoothing <= 0 {
		errs = append(errs, errors.New("nlu.smoothing must be positive"))
	}

	switch c.Bank.Driver {
	case BankMemory:
	case BankPostgres:
		if c.Bank.DSN == "" {
			errs = append(errs, errors.New("bank.dsn is required with the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("bank.driver: unknown driver %q", c.Bank.Driver))
	}
	if c.Bank.AnnualRate < 0 {
		errs = append(errs, errors.New("bank.annual_rate cannot be negative"))
	}

	if c.Server.RateLimit < 0 || c.Server.Burst < 0 {
		errs = append(errs, errors.New("server.rate_limit and server.burst cannot be negative"))
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case FormatText, FormatJSON:
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}

	return errors.Join(errs...)
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level: unknown level %q", s)
	}
	return level, nil
}

func checkKey(encoded string) error {
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return errors.New("not valid base64")
	}
	if len(key) != 32 {
		return fmt.Errorf("decoded key is %d bytes, want 32", len(key))
	}
	return nil
}
