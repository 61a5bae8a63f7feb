package config

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix  = "FARMOPS_"
	envFileVar = envPrefix + "CONFIG"
)

// Load builds a Config by layering, from low to high precedence:
//  1. defaults (New)
//  2. YAML file at path, or at FARMOPS_CONFIG when path is empty
//  3. env vars with prefix FARMOPS_; a double underscore separates nested keys,
//     e.g. FARMOPS_RECALC__QUEUE_SIZE -> recalc.queue_size
//  4. overrides, keyed by dotted koanf path
func Load(path string, overrides map[string]any) (*Config, error) {
	k := koanf.New(".")

	if path == "" {
		path = os.Getenv(envFileVar)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: file %s: %w", ErrLoadConfig, path, err)
		}
	}

	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, envPrefix)
		return strings.ReplaceAll(strings.ToLower(s), "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}
	// FARMOPS_CONFIG names the file, not a setting.
	k.Delete("config")

	for key, value := range overrides {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("%w: override %s: %w", ErrLoadConfig, key, err)
		}
	}

	cfg := New()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("%w: port must not be empty", ErrInvalidConfig)
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("%w: database_url must not be empty", ErrInvalidConfig)
	}
	if c.DB.MaxConns <= 0 || c.DB.MinConns < 0 || c.DB.MinConns > c.DB.MaxConns {
		return fmt.Errorf("%w: db pool bounds %d..%d", ErrInvalidConfig, c.DB.MinConns, c.DB.MaxConns)
	}
	if c.Report.DefaultPageSize <= 0 || c.Report.MaxPageSize < c.Report.DefaultPageSize {
		return fmt.Errorf("%w: report page size default %d, max %d",
			ErrInvalidConfig, c.Report.DefaultPageSize, c.Report.MaxPageSize)
	}

	modes := []string{RecalcModeInline, RecalcModeQueue, RecalcModeKafka}
	if !slices.Contains(modes, c.Recalc.Mode) {
		return fmt.Errorf("%w: recalc mode %q, expected one of %s",
			ErrInvalidConfig, c.Recalc.Mode, strings.Join(modes, ", "))
	}
	if c.Recalc.Mode != RecalcModeInline && c.Recalc.Workers <= 0 {
		return fmt.Errorf("%w: recalc workers must be positive", ErrInvalidConfig)
	}
	if c.Recalc.Mode == RecalcModeQueue && c.Recalc.QueueSize <= 0 {
		return fmt.Errorf("%w: recalc queue_size must be positive", ErrInvalidConfig)
	}
	if c.Recalc.Mode == RecalcModeKafka {
		if len(c.Recalc.KafkaBrokers) == 0 || c.Recalc.KafkaTopic == "" {
			return fmt.Errorf("%w: kafka mode needs brokers and a topic", ErrInvalidConfig)
		}
	}
	return nil
}
