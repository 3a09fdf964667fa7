package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Engine    EngineConfig
	Worker    WorkerConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// EngineConfig holds execution engine configuration.
type EngineConfig struct {
	// Locator selects and parametrizes the engine, e.g. "goja:",
	// "starlark:" or "goja:https://host/prelude.js".
	Locator       string        `envconfig:"ENGINE_LOCATOR" default:"goja:"`
	Timeout       time.Duration `envconfig:"ENGINE_TIMEOUT" default:"5s"`
	MaxMemoryMB   int64         `envconfig:"ENGINE_MAX_MEMORY_MB" default:"50"`
	PoolSize      int           `envconfig:"ENGINE_POOL_SIZE" default:"4"`
	EnableConsole bool          `envconfig:"ENGINE_CONSOLE" default:"true"`
}

// WorkerConfig holds isolation channel configuration.
type WorkerConfig struct {
	Isolated    bool          `envconfig:"WORKER_ISOLATED" default:"true"`
	WallTimeout time.Duration `envconfig:"WORKER_WALL_TIMEOUT" default:"10s"`
	QueueSize   int           `envconfig:"WORKER_QUEUE_SIZE" default:"16"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
		},
		Engine: EngineConfig{
			Locator:       "goja:",
			Timeout:       5 * time.Second,
			MaxMemoryMB:   50,
			PoolSize:      4,
			EnableConsole: true,
		},
		Worker: WorkerConfig{
			Isolated:    true,
			WallTimeout: 10 * time.Second,
			QueueSize:   16,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}
