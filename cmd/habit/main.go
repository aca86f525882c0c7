package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"habit-tracker/internal/cli"
	"habit-tracker/internal/config"
	"habit-tracker/internal/logging"
	"habit-tracker/internal/repository/sqlite"
	"habit-tracker/internal/services"
	"habit-tracker/internal/telemetry"
)

func main() {
	cfg, err := config.NewLoader().Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	env := config.GetEnvironment()
	logging.Debugln("environment:", env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	root := cli.NewRootCommand(newServiceBuilder(env), cfg)
	err = root.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newServiceBuilder wires logging, telemetry and the store behind the habit
// service. It runs after command-line flags have been applied to cfg.
func newServiceBuilder(env config.Environment) cli.ServiceBuilder {
	return func(cfg *config.Config) (services.HabitService, func(), error) {
		logger, logCloser, err := logging.New(cfg.Logging)
		if err != nil {
			return nil, nil, fmt.Errorf("create logger: %w", err)
		}

		provider, err := telemetry.Init(context.Background(), telemetry.Config{
			Enabled:     cfg.Telemetry.Enabled,
			Exporter:    cfg.Telemetry.Exporter,
			Endpoint:    cfg.Telemetry.Endpoint,
			ServiceName: cfg.Telemetry.ServiceName,
			SampleRate:  cfg.Telemetry.SampleRate,
		})
		if err != nil {
			logger.Warn("telemetry disabled", "error", err)
			provider = telemetry.Noop()
		}
		metrics, err := telemetry.NewStoreMetrics(provider.Meter)
		if err != nil {
			logger.Warn("store metrics disabled", "error", err)
		}

		factory := config.NewStoreFactory(cfg, env)
		logging.Debugf("store path: %s\n", factory.StorePath())

		open := func(ctx context.Context) (*sqlite.Store, error) {
			return factory.Open(ctx,
				sqlite.WithLogger(logger),
				sqlite.WithTracer(provider.Tracer),
				sqlite.WithMetrics(metrics),
			)
		}
		service := services.NewHabitService(
			services.SQLiteOpener(open, logger),
			services.WithLogger(logger),
			services.WithConfig(cfg),
		)

		cleanup := func() {
			if err := service.Close(); err != nil {
				logger.Warn("close store", "error", err)
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := provider.Shutdown(shutdownCtx); err != nil {
				logger.Warn("telemetry shutdown", "error", err)
			}
			logCloser.Close()
		}
		return service, cleanup, nil
	}
}
