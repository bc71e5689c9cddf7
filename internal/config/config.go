// Package config defines process configuration and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers defaults, an optional YAML file and GETAWAY_* env vars.
// - Errors wrap this package's sentinel kinds.
package config

import (
	"fmt"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// DataFile is the CSV destination table loaded at startup.
	DataFile string `koanf:"data_file"`

	// TopK is the number of recommendations printed per query.
	TopK int `koanf:"top_k"`

	// RadiusKm is the inclusive search radius around the source city.
	RadiusKm float64 `koanf:"radius_km"`

	// EarthRadiusKm is the sphere radius used for great-circle distances.
	EarthRadiusKm float64 `koanf:"earth_radius_km"`

	// RatingWeight and ProximityWeight weight the composite rank.
	RatingWeight    float64 `koanf:"rating_weight"`
	ProximityWeight float64 `koanf:"proximity_weight"`

	// CacheTTLSeconds bounds how long a query result is reused. 0 disables caching.
	CacheTTLSeconds int `koanf:"cache_ttl_seconds"`

	// MetricsFile, when set, receives a Prometheus text dump at shutdown.
	MetricsFile string `koanf:"metrics_file"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		DataFile:        "final_data_with_coords.csv",
		TopK:            5,
		RadiusKm:        250,
		EarthRadiusKm:   6371,
		RatingWeight:    0.7,
		ProximityWeight: 0.3,
		CacheTTLSeconds: 300,
	}
}

// CacheTTL returns the cache lifetime as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// Validate reports the first invalid field, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case c.DataFile == "":
		return fmt.Errorf("%w: data_file must not be empty", ErrInvalidConfig)
	case c.TopK < 1:
		return fmt.Errorf("%w: top_k must be at least 1", ErrInvalidConfig)
	case c.RadiusKm <= 0:
		return fmt.Errorf("%w: radius_km must be positive", ErrInvalidConfig)
	case c.EarthRadiusKm <= 0:
		return fmt.Errorf("%w: earth_radius_km must be positive", ErrInvalidConfig)
	case c.RatingWeight < 0 || c.ProximityWeight < 0:
		return fmt.Errorf("%w: weights must not be negative", ErrInvalidConfig)
	case c.CacheTTLSeconds < 0:
		return fmt.Errorf("%w: cache_ttl_seconds must not be negative", ErrInvalidConfig)
	}
	return nil
}
