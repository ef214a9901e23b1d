package config

import (
	"time"

	"github.com/vietddude/authkit/internal/infra/authapi"
	redisclient "github.com/vietddude/authkit/internal/infra/redis"
	"github.com/vietddude/authkit/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	API      authapi.Config     `yaml:"api"`
	Retry    RetryConfig        `yaml:"retry"`
	Redis    redisclient.Config `yaml:"redis"`
	Database postgres.Config    `yaml:"database"`
	Monitor  MonitorConfig      `yaml:"monitor"`
	Logging  LoggingConfig      `yaml:"logging"`
}

// RetryConfig holds the client retry policy.
type RetryConfig struct {
	MaxRetries *int          `yaml:"max_retries"` // nil = default, 0 = never retry
	BaseDelay  time.Duration `yaml:"base_delay"`
}

// MonitorConfig holds health monitor settings.
type MonitorConfig struct {
	Port     int           `yaml:"port"`
	Interval time.Duration `yaml:"interval"`
	Timeout  time.Duration `yaml:"timeout"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}
