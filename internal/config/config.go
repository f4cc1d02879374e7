package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the runtime configuration, read from HOUSY_* environment variables.
type Config struct {
	Port            string        `env:"HOUSY_PORT" envDefault:"8080"`
	DBPath          string        `env:"HOUSY_DB_PATH" envDefault:"housy.db"`
	LogLevel        string        `env:"HOUSY_LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"HOUSY_LOG_FORMAT" envDefault:"text"`
	BaseURL         string        `env:"HOUSY_BASE_URL" envDefault:"http://localhost:8080"`
	Timezone        string        `env:"HOUSY_TIMEZONE" envDefault:"Europe/Rome"`
	SessionTTL      time.Duration `env:"HOUSY_SESSION_TTL" envDefault:"720h"`
	PostmarkToken   string        `env:"HOUSY_POSTMARK_TOKEN"`
	FromEmail       string        `env:"HOUSY_FROM_EMAIL" envDefault:"noreply@housy.app"`
	VAPIDPublicKey  string        `env:"HOUSY_VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string        `env:"HOUSY_VAPID_PRIVATE_KEY"`
	ReminderEvery   time.Duration `env:"HOUSY_REMINDER_INTERVAL" envDefault:"1m"`
	AllowedOrigins  []string      `env:"HOUSY_ALLOWED_ORIGINS" envSeparator:","`
	SecureCookie    bool          `env:"HOUSY_SECURE_COOKIE" envDefault:"false"`
}

// Load reads an optional .env file and then parses the environment.
// Variables already present in the environment win over the file.
func Load(dotenvPaths ...string) (*Config, error) {
	if len(dotenvPaths) == 0 {
		dotenvPaths = []string{".env"}
	}
	for _, p := range dotenvPaths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", p, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

// Location resolves the configured timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// PushEnabled reports whether both VAPID keys are configured.
func (c *Config) PushEnabled() bool {
	return c.VAPIDPublicKey != "" && c.VAPIDPrivateKey != ""
}
