package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/resellkit/pricing/pkg/pricing"
	"go.opentelemetry.io/otel/attribute"
)

// Config holds all configuration for the service.
type Config struct {
	// Server
	Port     int    `envconfig:"PORT" default:"80"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Catalog
	CatalogPath string `envconfig:"CATALOG_PATH" default:"catalog.json"`

	// Pricing defaults, applied when a request leaves them unset.
	TargetMargin      float64 `envconfig:"TARGET_MARGIN" default:"0.15"`
	PriceIncrementUSD float64 `envconfig:"PRICE_INCREMENT_USD" default:"5"`
	VolumetricDivisor float64 `envconfig:"VOLUMETRIC_DIVISOR" default:"5000"`

	// Zone classification thresholds
	ExcellentMargin   float64 `envconfig:"EXCELLENT_MARGIN" default:"0.20"`
	AcceptableMargin  float64 `envconfig:"ACCEPTABLE_MARGIN" default:"0.10"`
	ExcellentROI      float64 `envconfig:"EXCELLENT_ROI" default:"0.50"`
	GoodROI           float64 `envconfig:"GOOD_ROI" default:"0.30"`
	AcceptableROI     float64 `envconfig:"ACCEPTABLE_ROI" default:"0.20"`
	ProfitFloorOrigin float64 `envconfig:"PROFIT_FLOOR_ORIGIN" default:"3000"`

	// Telemetry
	OTELEnabled  bool   `envconfig:"OTEL_ENABLED" default:"true"`
	OTELEndpoint string `envconfig:"OTEL_ENDPOINT" default:"http://jaeger-collector.claude.svc.cluster.local:4318"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"relist-pricing"`
	Version      string `envconfig:"SERVICE_VERSION" default:"0.0.1"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &cfg, nil
}

// EngineOptions maps the configured defaults onto engine tunables.
func (c *Config) EngineOptions() pricing.Options {
	return pricing.Options{
		PriceIncrementUSD:        c.PriceIncrementUSD,
		DefaultVolumetricDivisor: c.VolumetricDivisor,
		Classifier:               c.ClassifierConfig(c.TargetMargin),
	}
}

// ClassifierConfig builds the tier thresholds for a given target margin.
func (c *Config) ClassifierConfig(targetMargin float64) pricing.ClassifierConfig {
	return pricing.ClassifierConfig{
		TargetMargin:      targetMargin,
		ExcellentMargin:   c.ExcellentMargin,
		AcceptableMargin:  c.AcceptableMargin,
		ExcellentROI:      c.ExcellentROI,
		GoodROI:           c.GoodROI,
		AcceptableROI:     c.AcceptableROI,
		ProfitFloorOrigin: c.ProfitFloorOrigin,
	}
}

// Attributes returns OpenTelemetry attributes for this configuration.
func (c *Config) Attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("service.name", c.ServiceName),
		attribute.String("service.version", c.Version),
		attribute.String("catalog.path", c.CatalogPath),
		attribute.Float64("pricing.target_margin", c.TargetMargin),
	}
}
