package main

import (
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/benmeehan/fleet-monitor/internal/dispatcher"
	"github.com/benmeehan/fleet-monitor/internal/display"
	"github.com/benmeehan/fleet-monitor/internal/reconciler"
	"github.com/benmeehan/fleet-monitor/internal/service_registry"
	"github.com/benmeehan/fleet-monitor/internal/utils"
	"github.com/benmeehan/fleet-monitor/pkg/file"
	"github.com/benmeehan/fleet-monitor/pkg/fleetapi"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

func main() {
	configPath := pflag.StringP("config", "c", "configs/config.yaml", "path to the configuration file")
	pflag.Parse()

	// Set up structured logging with JSON output until the configured format is known.
	// Logs go to stderr, stdout is reserved for the terminal view.
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	// Initialize file operations handler
	fileClient := file.NewFileService()

	// Load configuration from file
	config, err := utils.LoadConfig(*configPath, fileClient)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger = newLogger(config, os.Stderr)

	fleetClient := fleetapi.NewClient(config.Server.BaseURL, config.Server.RequestTimeout)
	commandDispatcher := dispatcher.NewDispatcher(
		fleetClient,
		config.Server.ContainerCommandPath,
		config.Server.DeviceCommandPath,
		logger.With().Str("component", "dispatcher").Logger(),
	)

	store := display.NewStore(logger.With().Str("component", "display").Logger())
	telemetryReconciler := reconciler.NewReconciler(
		store,
		config.Reconciler.Workers,
		config.Reconciler.TrackDeviceOnline,
		logger.With().Str("component", "reconciler").Logger(),
	)
	defer telemetryReconciler.Close()

	// Create a new service registry to manage services
	serviceRegistry := service_registry.NewServiceRegistry(store, telemetryReconciler, commandDispatcher, fleetClient, fileClient, os.Stdout, logger)
	defer serviceRegistry.Close()

	// Register all services based on the configuration
	if err := serviceRegistry.RegisterServices(config); err != nil {
		logger.Fatal().Err(err).Msg("Failed to register services")
	}

	// Start all registered services in the registry
	if err := serviceRegistry.StartServices(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start services")
	}
	logger.Info().Msg("All services started successfully")

	// Handle graceful shutdown
	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
	<-stopCh

	logger.Info().Msg("Shutting down gracefully...")
	if err := serviceRegistry.StopServices(); err != nil {
		logger.Error().Err(err).Msg("Failed to stop services cleanly")
	}
}

func newLogger(config *utils.Config, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(config.Logging.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	if config.Logging.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Str("app", "fleet-monitor").Logger()
}
