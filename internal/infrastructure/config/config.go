package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Env       string `env:"VB_ENV,        default=development"`
	LogLevel  string `env:"VB_LOG_LEVEL,  default=info"`
	LogPretty bool   `env:"VB_LOG_PRETTY, default=true"`

	Server   ServerConfig
	Auth     AuthConfig
	Firebase FirebaseConfig
	EventLog EventLogConfig
	Redis    RedisConfig
	Mongo    MongoConfig
	Serve    ServeConfig
}

// ServerConfig points at the remote Vice Bank API. An empty BaseURL yields
// relative request paths.
type ServerConfig struct {
	BaseURL string        `env:"VB_SERVER_BASE_API_URL"`
	Timeout time.Duration `env:"VB_HTTP_TIMEOUT, default=0s"`
}

// AuthConfig selects the token source: a verbatim token wins over a
// locally signed one.
type AuthConfig struct {
	Token         string        `env:"VB_AUTH_TOKEN"`
	SigningSecret string        `env:"VB_AUTH_SIGNING_SECRET"`
	Subject       string        `env:"VB_AUTH_SUBJECT"`
	TokenTTL      time.Duration `env:"VB_AUTH_TOKEN_TTL, default=1h"`
}

// FirebaseConfig carries the web-app identity settings. They are passed
// through to whatever obtains VB_AUTH_TOKEN and are not used for signing.
type FirebaseConfig struct {
	APIKey            string `env:"VB_FIREBASE_API_KEY"`
	AuthDomain        string `env:"VB_FIREBASE_AUTH_DOMAIN"`
	ProjectID         string `env:"VB_FIREBASE_PROJECT_ID"`
	StorageBucket     string `env:"VB_FIREBASE_STORAGE_BUCKET"`
	MessagingSenderID string `env:"VB_FIREBASE_MESSAGING_SENDER_ID"`
	AppID             string `env:"VB_FIREBASE_APP_ID"`
}

type EventLogConfig struct {
	Path          string        `env:"VB_LOG_DB_PATH,        default=./data/logging.db"`
	PruneInterval time.Duration `env:"VB_LOG_PRUNE_INTERVAL, default=24h"`
}

// RedisConfig enables the shared session store when Addr is set.
type RedisConfig struct {
	Addr       string        `env:"VB_REDIS_ADDR"`
	DB         int           `env:"VB_REDIS_DB,    default=0"`
	SessionTTL time.Duration `env:"VB_SESSION_TTL, default=720h"`
}

// MongoConfig enables the log archive when URI is set.
type MongoConfig struct {
	URI        string `env:"VB_MONGO_URI"`
	Database   string `env:"VB_MONGO_DB,         default=vice_bank"`
	Collection string `env:"VB_MONGO_COLLECTION, default=log_events"`
}

type ServeConfig struct {
	Port      string `env:"VB_SERVE_PORT,       default=8080"`
	JWTSecret string `env:"VB_SERVE_JWT_SECRET"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration through lookuper.
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	return &cfg, nil
}

// IsProduction reports whether VB_ENV selects production behaviour (JSON
// logs, no swagger UI).
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
