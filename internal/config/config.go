package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppName string `env:"APP_NAME" envDefault:"Subscribely"`
	Port    string `env:"PORT" envDefault:"8000"`

	PostgresURL   string `env:"POSTGRES_URL"`
	DBAutoMigrate bool   `env:"DB_AUTO_MIGRATE" envDefault:"false"`

	JWTSecret string `env:"JWT_SECRET"`

	RazorpayKeyID         string        `env:"RAZORPAY_KEY_ID"`
	RazorpayKeySecret     string        `env:"RAZORPAY_KEY_SECRET"`
	RazorpayWebhookSecret string        `env:"RAZORPAY_WEBHOOK_SECRET"`
	Currency              string        `env:"CURRENCY" envDefault:"INR"`
	GatewayTimeout        time.Duration `env:"GATEWAY_TIMEOUT" envDefault:"10s"`

	// Empty RedisURL keeps webhook delivery claims in process memory.
	RedisURL        string        `env:"REDIS_URL"`
	WebhookDedupTTL time.Duration `env:"WEBHOOK_DEDUP_TTL" envDefault:"5m"`

	EnableDevEndpoints bool `env:"ENABLE_DEV_ENDPOINTS" envDefault:"false"`
}

var ErrMissingSetting = errors.New("missing required setting")

// Load reads an optional .env file and then the process environment.
func Load(files ...string) (Config, error) {
	// the .env file is optional; a missing file is not an error
	_ = godotenv.Load(files...)

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if cfg.RazorpayWebhookSecret == "" {
		cfg.RazorpayWebhookSecret = cfg.RazorpayKeySecret
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Validate checks the settings the HTTP server cannot start without.
func (c Config) Validate() error {
	switch {
	case c.PostgresURL == "":
		return fmt.Errorf("%w: POSTGRES_URL", ErrMissingSetting)
	case c.JWTSecret == "":
		return fmt.Errorf("%w: JWT_SECRET", ErrMissingSetting)
	case c.RazorpayKeyID == "" || c.RazorpayKeySecret == "":
		return fmt.Errorf("%w: RAZORPAY_KEY_ID / RAZORPAY_KEY_SECRET", ErrMissingSetting)
	case c.RazorpayWebhookSecret == "":
		return fmt.Errorf("%w: RAZORPAY_WEBHOOK_SECRET", ErrMissingSetting)
	}
	if c.IsProduction() && c.EnableDevEndpoints {
		return errors.New("ENABLE_DEV_ENDPOINTS must be false in production")
	}
	return nil
}
