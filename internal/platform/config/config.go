// Package config loads service configuration from the environment.
//
// Values come from process environment variables, optionally seeded from
// .env files. Every key has a development default so the service starts with
// no configuration at all (mock D&B mode, in-memory stores).
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	pkgstrings "partnersearch/pkg/platform/strings"
)

const (
	DNBModeMock = "mock"
	DNBModeLive = "live"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string        `env:"ADDR" envDefault:":8001"`
	CORSOrigins   string        `env:"CORS_ORIGINS" envDefault:"http://localhost:3000"`
	ShutdownGrace time.Duration `env:"SHUTDOWN_GRACE" envDefault:"10s"`
}

// AllowedOrigins returns the distinct CORS origins.
func (s Server) AllowedOrigins() []string {
	return pkgstrings.SplitList(s.CORSOrigins)
}

type Logging struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type Auth struct {
	JWTSigningKey string        `env:"JWT_SIGNING_KEY" envDefault:"dev-secret-key-change-in-production"`
	JWTExpiry     time.Duration `env:"JWT_EXPIRY" envDefault:"480m"`
	AdminUsername string        `env:"ADMIN_USERNAME" envDefault:"admin"`
	AdminPassword string        `env:"ADMIN_PASSWORD" envDefault:"D&B2025Secure!"`
	AdminEmail    string        `env:"ADMIN_EMAIL" envDefault:"admin@dnb.com"`
}

// DNB configures the D&B Direct Plus client.
type DNB struct {
	Mode      string        `env:"DNB_MODE" envDefault:"mock"`
	APIKey    string        `env:"DNB_API_KEY"`
	APISecret string        `env:"DNB_API_SECRET"`
	BaseURL   string        `env:"DNB_BASE_URL" envDefault:"https://plus.dnb.com"`
	Timeout   time.Duration `env:"DNB_TIMEOUT" envDefault:"30s"`
}

// RedisConfig holds Redis connection settings. An empty URL disables Redis.
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

type Cache struct {
	HierarchyTTL  time.Duration `env:"HIERARCHY_CACHE_TTL" envDefault:"15m"`
	ExportLinkTTL time.Duration `env:"EXPORT_LINK_TTL" envDefault:"5m"`
}

type Database struct {
	URL string `env:"DATABASE_URL"`
}

type Kafka struct {
	Brokers    string `env:"KAFKA_BROKERS"`
	AuditTopic string `env:"KAFKA_AUDIT_TOPIC" envDefault:"partnersearch.exports"`
}

// BrokerList returns the configured seed brokers.
func (k Kafka) BrokerList() []string {
	return pkgstrings.SplitList(k.Brokers)
}

// RateLimit caps requests per client IP. A zero limit disables that class.
type RateLimit struct {
	Disabled    bool          `env:"RATE_LIMIT_DISABLED" envDefault:"false"`
	Window      time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
	LoginLimit  int           `env:"RATE_LIMIT_LOGIN" envDefault:"10"`
	ExportLimit int           `env:"RATE_LIMIT_EXPORT" envDefault:"30"`
}

type Metrics struct {
	Enabled bool `env:"METRICS_ENABLED" envDefault:"true"`
}

// Config is the full service configuration.
type Config struct {
	Server    Server
	Logging   Logging
	Auth      Auth
	DNB       DNB
	Redis     RedisConfig
	Cache     Cache
	Database  Database
	Kafka     Kafka
	RateLimit RateLimit
	Metrics   Metrics
}

// Load reads the given .env files (missing files are skipped) and parses the
// environment into a validated Config.
func Load(envFiles ...string) (Config, error) {
	if err := loadEnvFiles(envFiles); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromEnv is Load with the conventional .env files.
func FromEnv() (Config, error) {
	return Load(".env", ".env.local")
}

func loadEnvFiles(files []string) error {
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("load env files: %w", err)
	}
	return nil
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	var errs []error
	switch c.DNB.Mode {
	case DNBModeMock:
	case DNBModeLive:
		if c.DNB.APIKey == "" || c.DNB.APISecret == "" {
			errs = append(errs, errors.New("DNB_API_KEY and DNB_API_SECRET are required when DNB_MODE=live"))
		}
	default:
		errs = append(errs, fmt.Errorf("DNB_MODE must be %q or %q, got %q", DNBModeMock, DNBModeLive, c.DNB.Mode))
	}
	if c.Auth.JWTExpiry <= 0 {
		errs = append(errs, fmt.Errorf("JWT_EXPIRY must be positive, got %s", c.Auth.JWTExpiry))
	}
	if c.Auth.JWTSigningKey == "" {
		errs = append(errs, errors.New("JWT_SIGNING_KEY is required"))
	}
	if c.Cache.HierarchyTTL < 0 || c.Cache.ExportLinkTTL <= 0 {
		errs = append(errs, errors.New("HIERARCHY_CACHE_TTL must be non-negative and EXPORT_LINK_TTL positive"))
	}
	if c.RateLimit.Window <= 0 || c.RateLimit.LoginLimit < 0 || c.RateLimit.ExportLimit < 0 {
		errs = append(errs, errors.New("RATE_LIMIT_WINDOW must be positive and RATE_LIMIT_* limits non-negative"))
	}
	return errors.Join(errs...)
}
