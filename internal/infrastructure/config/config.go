package config

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// AppBaseURL is the public URL invite links and checkout redirects point at.
	AppBaseURL string `env:"APP_BASE_URL, default=http://localhost:8080"`

	AccessTokenSecret  string `env:"ACCESS_TOKEN_SECRET"`
	RefreshTokenSecret string `env:"REFRESH_TOKEN_SECRET"`

	StripeSecretKey     string `env:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`

	// ResendAPIKey is optional: without it outbound email is disabled.
	ResendAPIKey string `env:"RESEND_API_KEY"`
	EmailFrom    string `env:"EMAIL_FROM, default=Assessly <no-reply@assessly.dev>"`

	Mongo MongoConfig
	Redis RedisConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=assessly"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig and
// validates it.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MustLoad is Load for main: configuration problems are fatal at startup.
func MustLoad(ctx context.Context) *Config {
	cfg, err := Load(ctx)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Validate enforces the required secrets. The process must not come up
// partially configured: a missing token secret would break every login and a
// missing webhook secret would silently drop billing events.
func (c *Config) Validate() error {
	var missing []string
	for name, v := range map[string]string{
		"ACCESS_TOKEN_SECRET":   c.AccessTokenSecret,
		"REFRESH_TOKEN_SECRET":  c.RefreshTokenSecret,
		"STRIPE_SECRET_KEY":     c.StripeSecretKey,
		"STRIPE_WEBHOOK_SECRET": c.StripeWebhookSecret,
	} {
		if v == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return errors.New("config: missing required environment variables: " + strings.Join(missing, ", "))
	}
	return nil
}

// EmailEnabled reports whether an outbound email provider is configured.
func (c *Config) EmailEnabled() bool {
	return c.ResendAPIKey != ""
}
