package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"github.com/jess-lam/joby-interview/internal/utils"
)

// MemoryURL selects the in-process store instead of Postgres.
const MemoryURL = "memory://"

// durationSeconds parses env as time.Duration: "10s", "5m" or bare number = seconds (e.g. "10" -> 10s).
type durationSeconds time.Duration

// SetValue implements cleanenv.Setter.
func (d *durationSeconds) SetValue(data string) error {
	v, err := utils.ParseDurationEnv(data)
	if err != nil {
		return err
	}
	*d = durationSeconds(v)
	return nil
}

func (d durationSeconds) Duration() time.Duration { return time.Duration(d) }

type Config struct {
	App  AppConfig
	HTTP HTTPConfig
	DB   DBConfig
	CORS CORSConfig
	Log  LogConfig
}

type AppConfig struct {
	Env     string `env:"ENVIRONMENT" env-default:"development"`
	Version string `env:"VERSION" env-default:"dev"`
}

// IsDevelopment reports whether the service runs in the development environment.
func (a AppConfig) IsDevelopment() bool { return a.Env == "development" }

type HTTPConfig struct {
	Port string `env:"HTTP_PORT" env-default:"8000"`

	// "10s", "5m" or a bare number of seconds.
	ReadTimeout  durationSeconds `env:"HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout durationSeconds `env:"HTTP_WRITE_TIMEOUT" env-default:"10s"`
	IdleTimeout  durationSeconds `env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

type DBConfig struct {
	URL         string `env:"DATABASE_URL" env-required:"true"`
	MaxConns    int32  `env:"DB_MAX_CONNS" env-default:"10"`
	AutoMigrate bool   `env:"DB_AUTO_MIGRATE" env-default:"true"`
}

// InMemory reports whether URL selects the in-process store.
func (d DBConfig) InMemory() bool { return strings.HasPrefix(d.URL, MemoryURL) }

type CORSConfig struct {
	Origins []string `env:"CORS_ORIGINS" env-separator:"," env-default:"http://localhost:5173,http://localhost:3000"`
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL" env-default:"info"`
	Format string `env:"LOG_FORMAT" env-default:""`
}

// Load reads an optional .env file from the working directory, then the
// process environment. Real environment variables win over .env entries.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("read .env: %w", err)
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}

	cfg.DB.URL = strings.TrimSpace(cfg.DB.URL)
	if cfg.DB.URL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.DB.MaxConns <= 0 {
		return Config{}, fmt.Errorf("DB_MAX_CONNS must be positive, got %d", cfg.DB.MaxConns)
	}
	cfg.CORS.Origins = utils.SplitList(cfg.CORS.Origins)

	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
		if cfg.App.IsDevelopment() {
			cfg.Log.Format = "console"
		}
	}
	return cfg, nil
}
