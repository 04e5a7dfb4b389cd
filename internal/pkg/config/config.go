package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Credential backends.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendMemory = "memory"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth       AuthConfig
	API        APIConfig
	Routes     RoutesConfig
	Credential CredentialConfig
	Mongo      MongoConfig
	Redis      RedisConfig
}

type AuthConfig struct {
	BaseURL         string        `env:"AUTH_BASE_URL,    default=http://localhost:8081"`
	ValidateTimeout time.Duration `env:"VALIDATE_TIMEOUT, default=10s"`
	ValidateRetries int           `env:"VALIDATE_RETRIES, default=0"`
}

type APIConfig struct {
	BaseURL        string        `env:"API_BASE_URL,    default=http://localhost:8080"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT, default=15s"`
}

type RoutesConfig struct {
	SignIn  string `env:"SIGNIN_PATH,  default=/login"`
	Landing string `env:"LANDING_PATH, default=/dashboard"`
}

type CredentialConfig struct {
	Backend string `env:"CREDENTIAL_BACKEND, default=file"`
	File    string `env:"CREDENTIAL_FILE,    default=.carddemo/session.json"`
	Profile string `env:"CREDENTIAL_PROFILE, default=default"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=carddemo_portal"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration through l; tests pass an envconfig.MapLookuper.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// IsDevelopment reports whether the portal runs with developer ergonomics
// (console logging).
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

func (c *Config) validate() error {
	switch c.Credential.Backend {
	case BackendFile, BackendRedis, BackendMongo, BackendMemory:
	default:
		return fmt.Errorf("CREDENTIAL_BACKEND must be one of file, redis, mongo, memory (got %q)", c.Credential.Backend)
	}
	if c.Credential.Backend == BackendFile && c.Credential.File == "" {
		return fmt.Errorf("CREDENTIAL_FILE is required for the file backend")
	}
	if !strings.HasPrefix(c.Routes.SignIn, "/") || !strings.HasPrefix(c.Routes.Landing, "/") {
		return fmt.Errorf("SIGNIN_PATH and LANDING_PATH must be absolute paths")
	}
	if c.Routes.SignIn == c.Routes.Landing {
		return fmt.Errorf("SIGNIN_PATH and LANDING_PATH must differ")
	}
	if c.Auth.ValidateRetries < 0 {
		return fmt.Errorf("VALIDATE_RETRIES must not be negative")
	}
	return nil
}
