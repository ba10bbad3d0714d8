// Package config loads registryctl settings from an optional config file and
// REGISTRY_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "REGISTRY"

type Config struct {
	Log    LogConfig `mapstructure:"log"`
	Output string    `mapstructure:"output"` // table, json
	// Strict turns operations on unknown ids into ErrNotFound errors.
	Strict bool        `mapstructure:"strict"`
	Bank   BankConfig  `mapstructure:"bank"`
	Kafka  KafkaConfig `mapstructure:"kafka"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // text, json
}

type BankConfig struct {
	Name string `mapstructure:"name"`
}

// KafkaConfig enables change-event publishing when Brokers is non-empty.
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
	GroupID string   `mapstructure:"group_id"`
	// BufferSize is the publish and consume queue length.
	BufferSize   int           `mapstructure:"buffer_size"`
	FlushTimeout time.Duration `mapstructure:"flush_timeout"`
}

func (k KafkaConfig) Enabled() bool { return len(k.Brokers) > 0 }

// New returns a viper instance with defaults and environment binding set
// up. Flags may be bound to it before Load is called.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("output", "table")
	v.SetDefault("strict", false)
	v.SetDefault("bank.name", "XYZ Bank")
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "registry.changes")
	v.SetDefault("kafka.group_id", "registryctl")
	v.SetDefault("kafka.buffer_size", 1024)
	v.SetDefault("kafka.flush_timeout", "5s")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads path (if given) into v and decodes the result. A missing path
// is not an error; an unreadable or malformed file is.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Output {
	case "table", "json":
	default:
		return fmt.Errorf("invalid output %q: want table or json", c.Output)
	}
	if c.Kafka.Enabled() && c.Kafka.Topic == "" {
		return errors.New("kafka topic is required when brokers are set")
	}
	if c.Kafka.BufferSize <= 0 {
		return fmt.Errorf("invalid kafka buffer size %d: must be positive", c.Kafka.BufferSize)
	}
	if c.Kafka.FlushTimeout <= 0 {
		return fmt.Errorf("invalid kafka flush timeout %s: must be positive", c.Kafka.FlushTimeout)
	}
	return nil
}
