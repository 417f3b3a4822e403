package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Backend BackendConfig
	Storage StorageConfig
	Session SessionConfig
	Guard   GuardConfig
	Redis   RedisConfig
	Mongo   MongoConfig
}

type BackendConfig struct {
	BaseURL string        `env:"BACKEND_BASE_URL, default=http://localhost:9000/api/v1"`
	Timeout time.Duration `env:"BACKEND_TIMEOUT,  default=10s"`
}

// StorageConfig selects the durable client storage driver. "disabled"
// models a non-interactive context where persistence is a no-op.
type StorageConfig struct {
	Driver string `env:"STORAGE_DRIVER, default=redis"`
}

type SessionConfig struct {
	CookieName string        `env:"SESSION_COOKIE, default=tb_session"`
	TTL        time.Duration `env:"SESSION_TTL,    default=720h"`
}

// GuardConfig tunes the route guards. The grace window bounds how long a
// guard waits for a pending token verification before deciding on the
// state it has.
type GuardConfig struct {
	GraceWindow  time.Duration `env:"GUARD_GRACE_WINDOW, default=1s"`
	LoginRoute   string        `env:"GUARD_LOGIN_ROUTE,  default=/login"`
	LandingRoute string        `env:"GUARD_LANDING_ROUTE, default=/dashboard"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=talent_marketplace"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
