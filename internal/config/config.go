package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Supported durable store drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverBadger   = "badger"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName   string `env:"APP_NAME" envDefault:"UCID"`
	AppEnv    string `env:"APP_ENV" envDefault:"development"`
	Port      string `env:"PORT" envDefault:"8080"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	Namespace string `env:"UCID_NAMESPACE" envDefault:"ucid"`

	StoreDriver string `env:"STORE_DRIVER" envDefault:"sqlite"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"ucid.db"`
	BadgerDir   string `env:"BADGER_DIR" envDefault:"ucid-badger"`
	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`

	ShutdownPeriod time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"24h"`

	ActionTokenSecret string        `env:"ACTION_TOKEN_SECRET"`
	ActionTokenTTL    time.Duration `env:"ACTION_TOKEN_TTL" envDefault:"2m"`

	NotificationTTL         time.Duration `env:"NOTIFICATION_TTL" envDefault:"3s"`
	VerifyAttemptsPerMinute int           `env:"VERIFY_ATTEMPTS_PER_MINUTE" envDefault:"5"`
	DebugEndpoints          bool          `env:"DEBUG_ENDPOINTS" envDefault:"false"`

	FaceScanSuccessRate float64       `env:"FACE_SCAN_SUCCESS_RATE" envDefault:"0.8"`
	FaceScanDelay       time.Duration `env:"FACE_SCAN_DELAY" envDefault:"2s"`
	InstalledProviders  []string      `env:"INSTALLED_PROVIDERS" envSeparator:","`
}

// Load reads configuration values from the environment and populates a Config instance.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks driver requirements and numeric bounds.
func (c Config) Validate() error {
	switch c.StoreDriver {
	case DriverMemory:
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH must be set when STORE_DRIVER=%s", c.StoreDriver)
		}
	case DriverBadger:
		if c.BadgerDir == "" {
			return fmt.Errorf("BADGER_DIR must be set when STORE_DRIVER=%s", c.StoreDriver)
		}
	case DriverRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL must be set when STORE_DRIVER=%s", c.StoreDriver)
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL must be set when STORE_DRIVER=%s", c.StoreDriver)
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}

	if c.Namespace == "" {
		return fmt.Errorf("UCID_NAMESPACE must not be empty")
	}
	if c.FaceScanSuccessRate < 0 || c.FaceScanSuccessRate > 1 {
		return fmt.Errorf("invalid FACE_SCAN_SUCCESS_RATE: %v", c.FaceScanSuccessRate)
	}
	if c.ActionTokenTTL <= 0 {
		return fmt.Errorf("invalid ACTION_TOKEN_TTL: %s", c.ActionTokenTTL)
	}
	if !c.IsDev() && c.ActionTokenSecret == "" {
		return fmt.Errorf("ACTION_TOKEN_SECRET must be set when APP_ENV=%s", c.AppEnv)
	}
	return nil
}

// IsDev reports whether the app runs in a local development environment.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}
