package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the full server configuration, populated from the environment.
// A .env file in the working directory is loaded first when present (dev
// convenience); real deployments set the variables directly.
type Config struct {
	HTTPAddr string `env:"CAMREVIEW_HTTP_ADDR" envDefault:":8080"`
	Env      string `env:"CAMREVIEW_ENV" envDefault:"dev"` // "dev" | "prod"
	DBPath   string `env:"CAMREVIEW_DB_PATH" envDefault:"./data/camreview.db"`

	// Identity of the caller arrives in this trusted header, installed by
	// the fronting auth proxy.
	IdentityHeader string `env:"CAMREVIEW_IDENTITY_HEADER" envDefault:"X-Authenticated-User"`

	// Notification transport.  Empty NATSURL means log-only notifications.
	NATSURL       string `env:"CAMREVIEW_NATS_URL"`
	NotifySubject string `env:"CAMREVIEW_NOTIFY_SUBJECT" envDefault:"camreview.notifications"`

	// BaseURL is the externally reachable root of the hosting UI, used for
	// deep links in notifications.
	BaseURL string `env:"CAMREVIEW_BASE_URL"`

	// DisplayTimezone controls how projected timestamps are rendered.
	DisplayTimezone string `env:"CAMREVIEW_DISPLAY_TZ" envDefault:"Asia/Taipei"`

	// JanitorInterval is how often expired cache entries are swept.
	JanitorInterval time.Duration `env:"CAMREVIEW_JANITOR_INTERVAL" envDefault:"10m"`
}

// Load reads .env (if present) and then the process environment.
func Load() (Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return Config{}, fmt.Errorf("load .env: %w", err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if cfg.Env != "dev" && cfg.Env != "prod" {
		// fail-soft: treat unknown as dev
		cfg.Env = "dev"
	}
	return cfg, nil
}
