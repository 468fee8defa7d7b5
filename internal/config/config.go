package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StorageSQLite = "sqlite"
	StorageFile   = "file"

	NotifyTelegram = "telegram"
	NotifyRedis    = "redis"
)

var (
	ErrEmptyToken = errors.New(
		"error getting DW_TELEGRAM_TOKEN: variable not specified or contains an empty string",
	)
	ErrUnknownBackend = errors.New("unknown backend")
	ErrInvalidValue   = errors.New("invalid value")
)

type Config struct {
	Env     string // Env is the current environment: local, development, production.
	BaseURL string // BaseURL is the marketplace origin used for search pages and links.
	Storage Storage
	Cycle   Cycle
	Notify  string // Notify selects the push sink: telegram or redis.
	Tg      Telegram
	Redis   Redis
}

type Storage struct {
	Backend string // Backend is sqlite or file.
	Path    string // Path is the SQLite file or the data directory.
}

type Cycle struct {
	Interval        time.Duration
	MaxPages        int
	HTTPTimeout     time.Duration
	LedgerRetention time.Duration
}

type Telegram struct {
	Token   string        // Token is an unique telgram bot token.
	Timeout time.Duration // Timeout is a poller timeout duration.
}

type Redis struct {
	Addr   string
	DB     int
	Stream string
}

// Load reads the optional dotenv file, then the DW_* environment variables.
// Variables already present in the environment win over the file.
func Load(dotenv string) (*Config, error) {
	if dotenv != "" {
		if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", dotenv, err)
		}
	}

	v := viper.New()
	// Automatically binds environment variables to config keys
	v.SetEnvPrefix("DW")
	v.AutomaticEnv()

	// optional args
	v.SetDefault("ENV", "production")
	v.SetDefault("BASE_URL", "https://www.carousell.sg")
	v.SetDefault("STORAGE_BACKEND", StorageSQLite)
	v.SetDefault("STORAGE_PATH", "data/dealwatch.db")
	v.SetDefault("CYCLE_INTERVAL", "30s")
	v.SetDefault("MAX_PAGES", 1)
	v.SetDefault("HTTP_TIMEOUT", "20s")
	v.SetDefault("LEDGER_RETENTION", "24h")
	v.SetDefault("NOTIFY_BACKEND", NotifyTelegram)
	v.SetDefault("TELEGRAM_TIMEOUT", "15s")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_STREAM", "dealwatch:obligations")

	cfg := &Config{
		Env:     v.GetString("ENV"),
		BaseURL: v.GetString("BASE_URL"),
		Storage: Storage{
			Backend: v.GetString("STORAGE_BACKEND"),
			Path:    v.GetString("STORAGE_PATH"),
		},
		Cycle: Cycle{
			Interval:        v.GetDuration("CYCLE_INTERVAL"),
			MaxPages:        v.GetInt("MAX_PAGES"),
			HTTPTimeout:     v.GetDuration("HTTP_TIMEOUT"),
			LedgerRetention: v.GetDuration("LEDGER_RETENTION"),
		},
		Notify: v.GetString("NOTIFY_BACKEND"),
		Tg: Telegram{
			Token:   v.GetString("TELEGRAM_TOKEN"),
			Timeout: v.GetDuration("TELEGRAM_TIMEOUT"),
		},
		Redis: Redis{
			Addr:   v.GetString("REDIS_ADDR"),
			DB:     v.GetInt("REDIS_DB"),
			Stream: v.GetString("REDIS_STREAM"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case StorageSQLite, StorageFile:
	default:
		return fmt.Errorf("%w: DW_STORAGE_BACKEND=%q", ErrUnknownBackend, c.Storage.Backend)
	}

	switch c.Notify {
	case NotifyTelegram:
		if c.Tg.Token == "" {
			return ErrEmptyToken
		}
	case NotifyRedis:
	default:
		return fmt.Errorf("%w: DW_NOTIFY_BACKEND=%q", ErrUnknownBackend, c.Notify)
	}

	if c.Cycle.Interval <= 0 {
		return fmt.Errorf("%w: DW_CYCLE_INTERVAL must be positive", ErrInvalidValue)
	}
	if c.Cycle.MaxPages < 1 {
		return fmt.Errorf("%w: DW_MAX_PAGES must be at least 1", ErrInvalidValue)
	}

	return nil
}
