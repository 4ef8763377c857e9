package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	StoreDriverJSON     = "json"
	StoreDriverPostgres = "postgres"
)

type Config struct {
	// Store
	StoreDriver string `env:"STORE_DRIVER" envDefault:"json"`
	StorePath   string `env:"STORE_PATH" envDefault:"db.json"`
	DatabaseURL string `env:"DATABASE_URL"`

	// OpenAI
	OpenAIBaseURL  string        `env:"OPENAI_BASE_URL"`
	DefaultModel   string        `env:"DEFAULT_MODEL" envDefault:"gpt-4o-mini"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"0s"`
	ModelsCacheTTL time.Duration `env:"MODELS_CACHE_TTL" envDefault:"1h"`

	// Browser UI
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:"127.0.0.1:8501"`
	OpenBrowser bool   `env:"OPEN_BROWSER" envDefault:"false"`

	// Telegram front-end
	BotToken           string `env:"BOT_TOKEN"`
	DropPendingUpdates bool   `env:"BOT_DROP_PENDING_UPDATES" envDefault:"false"`
	BotRateLimit       int    `env:"BOT_RATE_LIMIT" envDefault:"20"` // messages per minute per chat
	BotRateBurst       int    `env:"BOT_RATE_BURST" envDefault:"5"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
	LogFile   string `env:"LOG_FILE"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints that struct tags cannot express.
func (c *Config) Validate() error {
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	switch c.StoreDriver {
	case StoreDriverJSON:
		if c.StorePath == "" {
			return fmt.Errorf("STORE_PATH is required for the json store")
		}
	case StoreDriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q (supported: json, postgres)", c.StoreDriver)
	}
	if !IsKnownModel(c.DefaultModel) {
		return fmt.Errorf("DEFAULT_MODEL %q is not a supported model", c.DefaultModel)
	}
	return nil
}
