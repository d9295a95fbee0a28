package accounts

import (
	"time"

	"github.com/caarlos0/env/v11"
	goerrors "github.com/goliatone/go-errors"
)

// Config carries every service knob. Values come from the environment;
// only the signing secret has no default.
type Config struct {
	Addr   string `env:"ACCOUNTS_ADDR" envDefault:":3030"`
	Issuer string `env:"ACCOUNTS_TOKEN_ISSUER" envDefault:"accounts"`

	SigningSecret string        `env:"ACCOUNTS_SIGNING_SECRET"`
	AccessTTL     time.Duration `env:"ACCOUNTS_ACCESS_TTL" envDefault:"1h"`
	RefreshTTL    time.Duration `env:"ACCOUNTS_REFRESH_TTL" envDefault:"24h"`

	DatabaseDSN string `env:"ACCOUNTS_DATABASE_DSN" envDefault:"file:accounts.db?cache=shared"`

	RedisAddr     string        `env:"ACCOUNTS_REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string        `env:"ACCOUNTS_REDIS_PASSWORD"`
	RedisDB       int           `env:"ACCOUNTS_REDIS_DB" envDefault:"0"`
	StoreTimeout  time.Duration `env:"ACCOUNTS_STORE_TIMEOUT" envDefault:"3s"`

	SweepInterval  time.Duration `env:"ACCOUNTS_SWEEP_INTERVAL" envDefault:"24h"`
	DormancyMonths int           `env:"ACCOUNTS_DORMANCY_MONTHS" envDefault:"6"`

	GoogleClientID     string `env:"ACCOUNTS_GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"ACCOUNTS_GOOGLE_CLIENT_SECRET"`
	GoogleCallbackURL  string `env:"ACCOUNTS_GOOGLE_CALLBACK_URL"`

	BcryptCost int `env:"ACCOUNTS_BCRYPT_COST" envDefault:"10"`
}

// LoadConfig reads the configuration from the environment.
func LoadConfig() (*Config, error) {
	cfg := new(Config)
	if err := env.Parse(cfg); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse environment")
	}

	if cfg.SigningSecret == "" {
		return nil, goerrors.New("ACCOUNTS_SIGNING_SECRET is required", goerrors.CategoryBadInput)
	}

	return cfg, nil
}

// GoogleEnabled reports whether the OAuth credentials are configured.
func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != "" && c.GoogleCallbackURL != ""
}
