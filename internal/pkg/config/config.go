package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Token store backends.
const (
	StoreRedis  = "redis"
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Backend BackendConfig
	Session SessionConfig
	Cache   CacheConfig
	HTTP    HTTPConfig

	Mongo MongoConfig
	Redis RedisConfig
}

type BackendConfig struct {
	BaseURL string `env:"BACKEND_BASE_URL, default=http://localhost:8000"`
	// Timeout of one backend request. Zero leaves requests bounded only by
	// the caller.
	Timeout time.Duration `env:"BACKEND_TIMEOUT, default=0s"`
}

type SessionConfig struct {
	Store  string `env:"SESSION_STORE,  default=redis"`
	Cookie string `env:"SESSION_COOKIE, default=dash_sid"`
	// TTL caps how long a token is kept; tokens with an earlier exp claim
	// are dropped sooner.
	TTL time.Duration `env:"SESSION_TTL,      default=24h"`
	// IdleTTL evicts in-memory workspaces nobody has touched.
	IdleTTL time.Duration `env:"SESSION_IDLE_TTL, default=30m"`
}

type CacheConfig struct {
	StaleAfter     time.Duration `env:"CACHE_STALE_AFTER, default=30s"`
	RefreshWorkers int           `env:"REFRESH_WORKERS,   default=4"`
}

type HTTPConfig struct {
	LoginRatePerMinute int      `env:"LOGIN_RATE_PER_MINUTE, default=10"`
	LoginRateBurst     int      `env:"LOGIN_RATE_BURST,      default=5"`
	CORSOrigins        []string `env:"CORS_ORIGINS,          default=*"`
	// TrustedProxies are CIDRs allowed to set X-Forwarded-For.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=dashboard"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// IsProduction reports whether the gateway runs with ENV=production.
func (c *Config) IsProduction() bool { return c.Env == "production" }

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadFrom(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadFrom reads configuration from l and validates it.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("BACKEND_BASE_URL %q is not an absolute URL", c.Backend.BaseURL)
	}
	switch c.Session.Store {
	case StoreRedis, StoreMongo, StoreMemory:
	default:
		return fmt.Errorf("SESSION_STORE %q: want redis, mongo or memory", c.Session.Store)
	}
	if c.Session.Cookie == "" {
		return errors.New("SESSION_COOKIE must not be empty")
	}
	if c.Backend.Timeout < 0 {
		return errors.New("BACKEND_TIMEOUT must not be negative")
	}
	if c.Cache.RefreshWorkers < 1 {
		return errors.New("REFRESH_WORKERS must be at least 1")
	}
	if c.HTTP.LoginRatePerMinute < 1 || c.HTTP.LoginRateBurst < 1 {
		return errors.New("login rate and burst must be positive")
	}
	return nil
}
