// Package config loads the bot configuration from defaults, an optional
// YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/RoyXiang/posterbot/cache"
	"github.com/RoyXiang/posterbot/common"
)

const (
	DefaultSearchURL = "https://tmdbapi-eight.vercel.app/api/movie-posters"
	DefaultRedisURL  = "redis://localhost:6379/0"
)

type Config struct {
	BotToken       string        `mapstructure:"bot_token"`
	TelegramAPIURL string        `mapstructure:"telegram_api_url"`
	TelegramRate   float64       `mapstructure:"telegram_rate"`
	ListenAddr     string        `mapstructure:"listen_addr"`
	WebhookPath    string        `mapstructure:"webhook_path"`
	Workers        int           `mapstructure:"workers"`
	SearchURL      string        `mapstructure:"search_url"`
	SearchTimeout  time.Duration `mapstructure:"search_timeout"`
	RequireYear    bool          `mapstructure:"require_year"`
	CacheBackend   string        `mapstructure:"cache_backend"`
	CacheTTL       time.Duration `mapstructure:"cache_ttl"`
	RedisURL       string        `mapstructure:"redis_url"`
	BadgerPath     string        `mapstructure:"badger_path"`
	GridPageSize   int           `mapstructure:"grid_page_size"`
	GridColumns    int           `mapstructure:"grid_columns"`
	LogLevel       string        `mapstructure:"log_level"`
	LogFormat      string        `mapstructure:"log_format"`
	LogFile        string        `mapstructure:"log_file"`
}

var defaults = map[string]interface{}{
	"bot_token":        "",
	"telegram_api_url": "https://api.telegram.org",
	"telegram_rate":    1.0,
	"listen_addr":      ":5000",
	"webhook_path":     "/webhook",
	"workers":          16,
	"search_url":       DefaultSearchURL,
	"search_timeout":   15 * time.Second,
	"require_year":     true,
	"cache_backend":    cache.BackendRedis,
	"cache_ttl":        time.Hour,
	"redis_url":        DefaultRedisURL,
	"badger_path":      "",
	"grid_page_size":   20,
	"grid_columns":     5,
	"log_level":        "info",
	"log_format":       common.FormatText,
	"log_file":         "",
}

// LoadDotEnv copies the variables of a .env file into the environment. A
// missing file is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error reading %s: %w", path, err)
	}
	return nil
}

// Load reads the configuration. path may be empty, in which case only
// defaults and environment variables are used. Environment variables win
// over the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.BotToken) == "" {
		errs = append(errs, errors.New("BOT_TOKEN is required"))
	}
	switch c.CacheBackend {
	case cache.BackendMemory, cache.BackendBadger:
	case cache.BackendRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required for the redis cache backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown CACHE_BACKEND %q", c.CacheBackend))
	}
	if c.CacheTTL <= 0 {
		errs = append(errs, errors.New("CACHE_TTL must be positive"))
	}
	if c.SearchTimeout <= 0 {
		errs = append(errs, errors.New("SEARCH_TIMEOUT must be positive"))
	}
	if c.GridPageSize <= 0 || c.GridColumns <= 0 {
		errs = append(errs, errors.New("GRID_PAGE_SIZE and GRID_COLUMNS must be positive"))
	}
	if c.Workers <= 0 {
		errs = append(errs, errors.New("WORKERS must be positive"))
	}
	if c.TelegramRate <= 0 {
		errs = append(errs, errors.New("TELEGRAM_RATE must be positive"))
	}
	if !strings.HasPrefix(c.WebhookPath, "/") {
		errs = append(errs, errors.New("WEBHOOK_PATH must start with /"))
	}
	if _, err := common.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.LogFormat) {
	case common.FormatJSON, common.FormatText:
	default:
		errs = append(errs, fmt.Errorf("unknown LOG_FORMAT %q", c.LogFormat))
	}
	return errors.Join(errs...)
}
