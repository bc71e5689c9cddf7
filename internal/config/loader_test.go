package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/getaway/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.DataFile, convey.ShouldEqual, "final_data_with_coords.csv")
				convey.So(cfg.TopK, convey.ShouldEqual, 5)
				convey.So(cfg.RadiusKm, convey.ShouldEqual, 250.0)
				convey.So(cfg.RatingWeight, convey.ShouldEqual, 0.7)
				convey.So(cfg.ProximityWeight, convey.ShouldEqual, 0.3)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("GETAWAY_DATA_FILE", "/srv/cities.csv")
			_ = os.Setenv("GETAWAY_TOP_K", "10")
			_ = os.Setenv("GETAWAY_RADIUS_KM", "120.5")
			_ = os.Setenv("GETAWAY_RATING_WEIGHT", "0.6")
			_ = os.Setenv("GETAWAY_PROXIMITY_WEIGHT", "0.4")
			_ = os.Setenv("GETAWAY_LOG_LEVEL", "debug")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.DataFile, convey.ShouldEqual, "/srv/cities.csv")
				convey.So(cfg.TopK, convey.ShouldEqual, 10)
				convey.So(cfg.RadiusKm, convey.ShouldEqual, 120.5)
				convey.So(cfg.RatingWeight, convey.ShouldEqual, 0.6)
				convey.So(cfg.ProximityWeight, convey.ShouldEqual, 0.4)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
data_file: "/data/india.csv"
top_k: 8
radius_km: 300
cache_ttl_seconds: 0
metrics_file: "/tmp/getaway.prom"
`
			tmpFile := createTempConfigFile(t, yamlContent)
			_ = os.Setenv("GETAWAY_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.DataFile, convey.ShouldEqual, "/data/india.csv")
				convey.So(cfg.TopK, convey.ShouldEqual, 8)
				convey.So(cfg.RadiusKm, convey.ShouldEqual, 300.0)
				convey.So(cfg.CacheTTLSeconds, convey.ShouldEqual, 0)
				convey.So(cfg.MetricsFile, convey.ShouldEqual, "/tmp/getaway.prom")
				convey.So(cfg.EarthRadiusKm, convey.ShouldEqual, 6371.0) // From defaults
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
data_file: "/data/india.csv"
top_k: 8
`
			tmpFile := createTempConfigFile(t, yamlContent)
			_ = os.Setenv("GETAWAY_CONFIG", tmpFile)
			_ = os.Setenv("GETAWAY_TOP_K", "3")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.TopK, convey.ShouldEqual, 3)                    // Overridden by env
				convey.So(cfg.DataFile, convey.ShouldEqual, "/data/india.csv") // From file
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(t, `invalid: yaml: content: [`)
			_ = os.Setenv("GETAWAY_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("GETAWAY_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with a dotenv file", func() {
			dotenv := createTempConfigFile(t, "GETAWAY_TOP_K=7\nGETAWAY_DATA_FILE=/data/dotenv.csv\n")
			_ = os.Setenv("GETAWAY_ENV_FILE", dotenv)
			_ = os.Setenv("GETAWAY_TOP_K", "2")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then unset variables should come from the file and set ones should win", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.DataFile, convey.ShouldEqual, "/data/dotenv.csv")
				convey.So(cfg.TopK, convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When the dotenv file does not exist", func() {
			_ = os.Setenv("GETAWAY_ENV_FILE", "/non/existent/.env")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("GETAWAY_TOP_K", "many")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with a zero top_k", func() {
			_ = os.Setenv("GETAWAY_TOP_K", "0")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "top_k")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with YAML file containing an empty data file", func() {
			tmpFile := createTempConfigFile(t, "data_file: \"\"\n")
			_ = os.Setenv("GETAWAY_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return validation error for empty data_file", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "data_file must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"GETAWAY_CONFIG",
		"GETAWAY_ENV_FILE",
		"GETAWAY_DATA_FILE",
		"GETAWAY_TOP_K",
		"GETAWAY_RADIUS_KM",
		"GETAWAY_RATING_WEIGHT",
		"GETAWAY_PROXIMITY_WEIGHT",
		"GETAWAY_LOG_LEVEL",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	tmpFile, err := os.CreateTemp(t.TempDir(), "getaway-config-*.yaml")
	if err != nil {
		t.Fatalf("create temp config: %v", err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	if err := tmpFile.Close(); err != nil {
		t.Fatalf("close temp config: %v", err)
	}
	return tmpFile.Name()
}
