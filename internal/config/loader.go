package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override: TELLER_SESSION_STORE sets session.store.
const EnvPrefix = "TELLER"

// Load reads the configuration. An empty path searches for teller.yaml in the
// working directory, $HOME/.teller and /etc/teller; a missing file is not an
// error. Values from the environment (and a .env file, when present) win over
// the file.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("teller")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.teller")
		v.AddConfigPath("/etc/teller")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	// Lists given through the environment arrive as one comma-separated string.
	cfg.Server.AllowedOrigins = splitList(cfg.Server.AllowedOrigins)
	cfg.Session.FallbackKeys = splitList(cfg.Session.FallbackKeys)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.rate_limit", 5.0)
	v.SetDefault("server.burst", 10)
	v.SetDefault("server.trusted_proxy", false)
	v.SetDefault("server.shutdown_grace", 10*time.Second)

	v.SetDefault("session.store", StoreMemory)
	v.SetDefault("session.idle_timeout", 30*time.Minute)
	v.SetDefault("session.sweep_interval", time.Minute)
	v.SetDefault("session.encryption_key", "")
	v.SetDefault("session.fallback_keys", []string{})
	v.SetDefault("session.distributed_lock", false)
	v.SetDefault("session.redis.addr", "localhost:6379")
	v.SetDefault("session.redis.password", "")
	v.SetDefault("session.redis.db", 0)
	v.SetDefault("session.redis.prefix", "teller:session:")

	v.SetDefault("nlu.classifier", ClassifierRules)
	v.SetDefault("nlu.threshold", 0.3)
	v.SetDefault("nlu.smoothing", 0.1)

	v.SetDefault("bank.driver", BankMemory)
	v.SetDefault("bank.dsn", "")
	v.SetDefault("bank.annual_rate", 0.07)
	v.SetDefault("bank.migrate", false)

	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.base_url", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", FormatText)
}

func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
