// Package config defines the service configuration and how it is layered:
// defaults, then an optional YAML file, then FARMOPS_ environment variables,
// then explicit command-line flags.
package config

import (
	"time"
)

const (
	// DefaultPort is the default HTTP server port.
	DefaultPort = "8080"

	// DefaultDatabaseURL is empty; must be provided via flag or environment.
	DefaultDatabaseURL = ""
)

// Recalculation dispatch modes.
const (
	RecalcModeInline = "inline"
	RecalcModeQueue  = "queue"
	RecalcModeKafka  = "kafka"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the slog handler: json or text.
	LogFormat string `koanf:"log_format"`

	Port        string `koanf:"port"`
	DatabaseURL string `koanf:"database_url"`

	DB     DBConfig     `koanf:"db"`
	Report ReportConfig `koanf:"report"`
	Recalc RecalcConfig `koanf:"recalc"`
}

// DBConfig sizes the PostgreSQL connection pool.
type DBConfig struct {
	MaxConns int32 `koanf:"max_conns"`
	MinConns int32 `koanf:"min_conns"`
}

// ReportConfig bounds report paging.
type ReportConfig struct {
	// DefaultPageSize applies when a request carries no size.
	DefaultPageSize int `koanf:"default_page_size"`

	// MaxPageSize caps the size a request may ask for.
	MaxPageSize int `koanf:"max_page_size"`
}

// RecalcConfig controls how efficiency recalculation jobs are dispatched.
type RecalcConfig struct {
	// Mode is one of inline, queue or kafka.
	Mode string `koanf:"mode"`

	QueueSize  int           `koanf:"queue_size"`
	Workers    int           `koanf:"workers"`
	MaxRetries int           `koanf:"max_retries"`
	RetryBase  time.Duration `koanf:"retry_base"`

	KafkaBrokers   []string      `koanf:"kafka_brokers"`
	KafkaTopic     string        `koanf:"kafka_topic"`
	KafkaGroup     string        `koanf:"kafka_group"`
	PublishTimeout time.Duration `koanf:"publish_timeout"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "json",
		Port:      DefaultPort,
		DB: DBConfig{
			MaxConns: 10,
			MinConns: 2,
		},
		Report: ReportConfig{
			DefaultPageSize: 20,
			MaxPageSize:     100,
		},
		Recalc: RecalcConfig{
			Mode:           RecalcModeInline,
			QueueSize:      1024,
			Workers:        4,
			MaxRetries:     3,
			RetryBase:      100 * time.Millisecond,
			KafkaTopic:     "farmops.recalc",
			KafkaGroup:     "farmops-recalc",
			PublishTimeout: 2 * time.Second,
		},
	}
}
