// Package config holds the configuration surface a host hands to
// pipemode, loaded from the environment.
package config

import (
	"fmt"

	"github.com/GriffinCanCode/pipemode/internal/framing"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all pipemode configuration.
type Config struct {
	Channel Channel
	Logging LogConfig
	Metrics MetricsConfig
}

// Channel describes one pipe-mode input channel.
type Channel struct {
	Name             string `envconfig:"CHANNEL" default:"training"`
	ChannelDirectory string `envconfig:"CHANNEL_DIR" default:"/opt/ml/input/data"`
	StateDirectory   string `envconfig:"STATE_DIR" default:"/opt/ml/input/state"`
	RecordFormat     string `envconfig:"RECORD_FORMAT" default:"TFRecord"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// MetricsConfig holds the optional Prometheus listener address.
type MetricsConfig struct {
	Addr string `envconfig:"METRICS_ADDR" default:""`
}

// Load loads configuration from PIPEMODE_* environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("pipemode", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from the environment or returns the
// defaults.
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
		Channel: Channel{
			Name:             "training",
			ChannelDirectory: "/opt/ml/input/data",
			StateDirectory:   "/opt/ml/input/state",
			RecordFormat:     "TFRecord",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
	}
}

// Validate rejects configurations no dataset can be built from. An
// unknown record format fails here, before any pipe is opened.
func (c *Config) Validate() error {
	if _, err := framing.ParseFormat(c.Channel.RecordFormat); err != nil {
		return err
	}
	if c.Channel.Name == "" {
		return fmt.Errorf("channel name must not be empty")
	}
	return nil
}
