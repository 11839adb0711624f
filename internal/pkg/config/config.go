// Package config holds the pipeline configuration. The binary reads the
// embedded default.yaml; there are no flags or environment overrides.
package config

import (
	_ "embed"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

type Config struct {
	Pipeline Pipeline `yaml:"pipeline"`
	Log      Log      `yaml:"log"`
	Infra    Infra    `yaml:"infra"`
}

// Pipeline carries the stage count and timing constants.
type Pipeline struct {
	OrderCount        int           `yaml:"order_count"`
	Catalog           []string      `yaml:"catalog"`
	GenerationDelay   time.Duration `yaml:"generation_delay"`
	ProcessingDelay   time.Duration `yaml:"processing_delay"`
	NotificationDelay time.Duration `yaml:"notification_delay"`
	// IdleTimeout is the fallback end-of-stream signal for consuming stages.
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console | json
}

type Infra struct {
	Jaeger struct {
		Endpoint string `yaml:"endpoint"`
	} `yaml:"jaeger"`
	Kafka struct {
		Brokers []string `yaml:"brokers"`
		Topic   string   `yaml:"topic"`
	} `yaml:"kafka"`
	// Pushgateway receives the run's metrics once the pipeline finishes.
	Pushgateway struct {
		Endpoint string `yaml:"endpoint"`
	} `yaml:"pushgateway"`
}

// Default returns the embedded configuration.
func Default() (*Config, error) {
	return Load(defaultYAML)
}

// Load decodes and validates a YAML document. Durations use Go syntax ("500ms").
func Load(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "config: decode yaml")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	p := c.Pipeline
	switch {
	case p.OrderCount < 0:
		return errors.Errorf("config: order_count must not be negative, got %d", p.OrderCount)
	case len(p.Catalog) == 0:
		return errors.New("config: catalog must not be empty")
	case p.GenerationDelay < 0, p.ProcessingDelay < 0, p.NotificationDelay < 0:
		return errors.New("config: stage delays must not be negative")
	case p.IdleTimeout <= 0:
		return errors.Errorf("config: idle_timeout must be positive, got %s", p.IdleTimeout)
	}

	switch c.Log.Format {
	case "", "console", "json":
	default:
		return errors.Errorf("config: unknown log format %q", c.Log.Format)
	}
	return nil
}

// KafkaEnabled reports whether notifications should be published to Kafka.
func (c *Config) KafkaEnabled() bool {
	return len(c.Infra.Kafka.Brokers) > 0
}

// PushgatewayEnabled reports whether metrics should be pushed after a run.
func (c *Config) PushgatewayEnabled() bool {
	return c.Infra.Pushgateway.Endpoint != ""
}
