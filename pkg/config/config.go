package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration loaded from environment variables or config files.
type Config struct {
	AppEnv          string        `mapstructure:"APP_ENV" validate:"required,oneof=development staging production test"`
	HTTPAddr        string        `mapstructure:"HTTP_ADDR" validate:"required,hostname_port"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT" validate:"required"`

	// Inbound per-IP rate limit.
	HTTPRateLimit float64 `mapstructure:"HTTP_RATE_LIMIT" validate:"gt=0,lte=100000"`
	HTTPRateBurst int     `mapstructure:"HTTP_RATE_BURST" validate:"gte=1,lte=100000"`

	LogLevel  string `mapstructure:"LOG_LEVEL" validate:"required,oneof=debug info warn error dpanic panic fatal"`
	LogFormat string `mapstructure:"LOG_FORMAT" validate:"required,oneof=json console"`

	// Remote provisioning service.
	BackendURL     string        `mapstructure:"BACKEND_URL" validate:"required,url"`
	BackendToken   string        `mapstructure:"BACKEND_TOKEN"`
	BackendTimeout time.Duration `mapstructure:"BACKEND_TIMEOUT" validate:"required"`
	BackendRPS     float64       `mapstructure:"BACKEND_RPS" validate:"gte=0,lte=10000"`

	CacheBackend string        `mapstructure:"CACHE_BACKEND" validate:"required,oneof=memory redis"`
	CacheSize    int           `mapstructure:"CACHE_SIZE" validate:"gte=1,lte=1000000"`
	CacheTTL     time.Duration `mapstructure:"CACHE_TTL" validate:"required"`

	RedisAddr     string `mapstructure:"REDIS_ADDR" validate:"required_if=CacheBackend redis"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`

	SessionTTL  time.Duration `mapstructure:"SESSION_TTL" validate:"required"`
	MaxSessions int           `mapstructure:"MAX_SESSIONS" validate:"gte=1,lte=100000"`
}

var (
	cfg      *Config
	validate = validator.New(validator.WithRequiredStructEnabled())
)

var durationKeys = []string{"SHUTDOWN_TIMEOUT", "BACKEND_TIMEOUT", "CACHE_TTL", "SESSION_TTL"}

// Load initializes configuration using Viper. It loads from .env if present,
// applies defaults, binds env vars, and validates the result.
func Load() (*Config, error) {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("HTTP_ADDR", "0.0.0.0:8080")
	v.SetDefault("SHUTDOWN_TIMEOUT", "15s")
	v.SetDefault("HTTP_RATE_LIMIT", 10)
	v.SetDefault("HTTP_RATE_BURST", 20)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("BACKEND_TIMEOUT", "30s")
	v.SetDefault("BACKEND_RPS", 20)
	v.SetDefault("CACHE_BACKEND", "memory")
	v.SetDefault("CACHE_SIZE", 1024)
	v.SetDefault("CACHE_TTL", "5m")
	v.SetDefault("SESSION_TTL", "30m")
	v.SetDefault("MAX_SESSIONS", 512)

	// Optional config file
	_ = v.ReadInConfig()

	keys := []string{
		"APP_ENV",
		"HTTP_ADDR",
		"SHUTDOWN_TIMEOUT",
		"HTTP_RATE_LIMIT",
		"HTTP_RATE_BURST",
		"LOG_LEVEL",
		"LOG_FORMAT",
		"BACKEND_URL",
		"BACKEND_TOKEN",
		"BACKEND_TIMEOUT",
		"BACKEND_RPS",
		"CACHE_BACKEND",
		"CACHE_SIZE",
		"CACHE_TTL",
		"REDIS_ADDR",
		"REDIS_PASSWORD",
		"SESSION_TTL",
		"MAX_SESSIONS",
	}
	for _, key := range keys {
		_ = v.BindEnv(key)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("config unmarshal error: %w", err)
	}

	// Durations may come in as plain strings from the environment.
	for _, key := range durationKeys {
		s := v.GetString(key)
		if s == "" {
			continue
		}
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", key, err)
		}
		switch key {
		case "SHUTDOWN_TIMEOUT":
			c.ShutdownTimeout = d
		case "BACKEND_TIMEOUT":
			c.BackendTimeout = d
		case "CACHE_TTL":
			c.CacheTTL = d
		case "SESSION_TTL":
			c.SessionTTL = d
		}
	}

	if err := validate.Struct(&c); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cfg = &c
	return cfg, nil
}

// MustLoad loads configuration or exits the process on failure.
func MustLoad() *Config {
	c, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	return c
}

// Get returns the loaded configuration. Panics if not loaded.
func Get() *Config {
	if cfg == nil {
		panic("config not loaded: call config.Load or config.MustLoad first")
	}
	return cfg
}
