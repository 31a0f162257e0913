package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Store"`
		Port int    `envconfig:"PORT" default:"8080"`
		Env  string `envconfig:"APP_ENV" default:"development"`
	}

	DB struct {
		Host         string        `envconfig:"DB_HOST" default:"localhost"`
		Port         int           `envconfig:"DB_PORT" default:"5432"`
		User         string        `envconfig:"DB_USER" default:"postgres"`
		Password     string        `envconfig:"DB_PASSWORD" default:""`
		Name         string        `envconfig:"DB_NAME" default:"store"`
		MaxOpenConns int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
		LockTimeout  time.Duration `envconfig:"DB_LOCK_TIMEOUT" default:"5s"`
	}

	Server struct {
		Timeout   time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		RateLimit int           `envconfig:"SERVER_RATE_LIMIT" default:"120"` // requests per minute per IP
	}

	Log struct {
		Format string `envconfig:"LOG_FORMAT" default:"text"`
		Level  string `envconfig:"LOG_LEVEL" default:"info"`
	}

	Redis struct {
		Addr     string        `envconfig:"REDIS_ADDR" default:""`
		CacheTTL time.Duration `envconfig:"REDIS_CACHE_TTL" default:"1m"`
	}

	Ledger struct {
		LowStockThreshold int    `envconfig:"LEDGER_LOW_STOCK_THRESHOLD" default:"10"`
		ReconcileCron     string `envconfig:"LEDGER_RECONCILE_CRON" default:"0 3 * * *"`
	}

	Worker struct {
		Concurrency int    `envconfig:"WORKER_CONCURRENCY" default:"2"`
		MetricsAddr string `envconfig:"WORKER_METRICS_ADDR" default:":9091"`
	}

	CORS struct {
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.App.Env, "production")
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

// NewLogger returns a text or JSON logger depending on LOG_FORMAT.
func NewLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Log.Level)}

	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}

	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}

	return level
}
