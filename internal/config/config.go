package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config is the server configuration, read from the environment. CLI flags
// override individual fields.
type Config struct {
	// GA4 measurement id. Empty disables the Google Analytics backend.
	MeasurementID string `env:"GA_MEASUREMENT_ID"`
	APISecret     string `env:"GA_API_SECRET"`
	GAEndpoint    string `env:"GA_ENDPOINT" envDefault:"https://www.google-analytics.com"`

	Port         int    `env:"LANDING_PORT" envDefault:"8080"`
	DBPath       string `env:"LANDING_DB_PATH" envDefault:"./apilon.db"`
	LogLevel     string `env:"LANDING_LOG_LEVEL" envDefault:"info"`
	LogFormat    string `env:"LANDING_LOG_FORMAT" envDefault:"text"`
	RecordEvents bool   `env:"LANDING_RECORD_EVENTS" envDefault:"true"`

	BeaconRPS   float64 `env:"LANDING_BEACON_RPS" envDefault:"50"`
	BeaconBurst int     `env:"LANDING_BEACON_BURST" envDefault:"100"`
}

// Load reads Config from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// GAEnabled reports whether events should be sent to Google Analytics.
func (c Config) GAEnabled() bool {
	return c.MeasurementID != ""
}
