package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	app "github.com/okian/getaway/internal/app"
	"github.com/okian/getaway/internal/config"
	"github.com/okian/getaway/internal/prompt"
	"github.com/okian/getaway/pkg/logger"
	"github.com/okian/getaway/pkg/metrics"
)

const usage = `Weekend Getaway Recommender
===========================

Suggests highly rated destinations within driving distance of a city.

Usage:
  getaway [options]

Options:
  -data string
        Destination CSV file (overrides data_file / GETAWAY_DATA_FILE)
  -help
        Show this help message

Configuration:
  GETAWAY_CONFIG             Optional YAML config file
  GETAWAY_ENV_FILE           Optional dotenv file merged into the environment
  GETAWAY_LOG_LEVEL          debug, info, warn or error (default info)
  GETAWAY_LOG_FORMAT         text or json (default text)
  GETAWAY_DATA_FILE          Destination CSV (default final_data_with_coords.csv)
  GETAWAY_TOP_K              Rows per answer (default 5)
  GETAWAY_RADIUS_KM          Search radius in km (default 250)
  GETAWAY_RATING_WEIGHT      Weight of the review rating (default 0.7)
  GETAWAY_PROXIMITY_WEIGHT   Weight of proximity (default 0.3)
  GETAWAY_CACHE_TTL_SECONDS  Result cache lifetime, 0 disables (default 300)
  GETAWAY_METRICS_FILE       Write Prometheus metrics here on exit

Type a city name at the prompt; q, quit or exit leaves.
`

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		stop()
		os.Exit(1)
	}
}

// run wires configuration, the service and the prompt loop, and blocks until the loop ends.
func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("getaway", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var (
		dataFile = fs.String("data", "", "Destination CSV file")
		help     = fs.Bool("help", false, "Show help")
	)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			_, _ = io.WriteString(stdout, usage)
			return nil
		}
		return fmt.Errorf("parse flags: %w", err)
	}
	if *help {
		_, _ = io.WriteString(stdout, usage)
		return nil
	}

	// Initialize logging
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if *dataFile != "" {
		cfg.DataFile = *dataFile
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	loggerInstance := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Create and start the service with configuration options
	svc := app.New(
		app.WithLogger(loggerInstance.Named("service")),
		app.WithDataFile(cfg.DataFile),
		app.WithTopK(cfg.TopK),
		app.WithRadius(cfg.RadiusKm),
		app.WithEarthRadius(cfg.EarthRadiusKm),
		app.WithWeights(cfg.RatingWeight, cfg.ProximityWeight),
		app.WithCacheTTL(cfg.CacheTTL()),
	)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}
	defer svc.Stop()

	defer writeMetrics(ctx, loggerInstance, cfg.MetricsFile)

	loop := prompt.New(svc, stdin, stdout, prompt.WithLogger(loggerInstance.Named("prompt")))
	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("prompt: %w", err)
	}

	loggerInstance.Info(ctx, "getaway stopped", logger.Any("stats", svc.GetStats()))
	return nil
}

// writeMetrics dumps the process metrics to path when one is configured.
func writeMetrics(ctx context.Context, log logger.Logger, path string) {
	if path == "" {
		return
	}
	if err := metrics.Default().WriteTextfile(path); err != nil {
		log.Error(ctx, "failed to write metrics", logger.String("file", path), logger.Error(err))
		return
	}
	log.Info(ctx, "metrics written", logger.String("file", path))
}
