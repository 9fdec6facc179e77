package protocol

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus"
)

const ConfigPrefix = "BRIDGELINK"

type Config struct {
	DefaultProvenance     Provenance `envconfig:"DEFAULT_PROVENANCE" default:"client"`
	MaxFrameLength        uint32     `envconfig:"MAX_FRAME_LENGTH" default:"1048576"`
	UnverifiedShipActions bool       `envconfig:"UNVERIFIED_SHIP_ACTIONS" default:"false"`
	MetricsNamespace      string     `envconfig:"METRICS_NAMESPACE" default:"bridgelink"`
}

// LoadConfig reads BRIDGELINK_* environment variables.
func LoadConfig() (*Config, error) {
	config := new(Config)
	if err := envconfig.Process(ConfigPrefix, config); err != nil {
		return nil, fmt.Errorf("could not process config: %w", err)
	}
	return config, nil
}

// Options turns config into codec options. registerer may be nil.
func (c *Config) Options(registerer prometheus.Registerer) []Option {
	return []Option{
		WithRegistry(NewRegistry(WithUnverifiedShipActions(c.UnverifiedShipActions))),
		WithDefaultProvenance(c.DefaultProvenance),
		WithMaxFrameLength(c.MaxFrameLength),
		WithMetrics(c.MetricsNamespace, registerer),
	}
}
