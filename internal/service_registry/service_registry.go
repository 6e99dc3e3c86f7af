package service_registry

import (
	"errors"
	"fmt"
	"io"

	"github.com/benmeehan/fleet-monitor/internal/api"
	"github.com/benmeehan/fleet-monitor/internal/dispatcher"
	"github.com/benmeehan/fleet-monitor/internal/display"
	"github.com/benmeehan/fleet-monitor/internal/metrics_collectors"
	"github.com/benmeehan/fleet-monitor/internal/reconciler"
	"github.com/benmeehan/fleet-monitor/internal/registry"
	"github.com/benmeehan/fleet-monitor/internal/services"
	"github.com/benmeehan/fleet-monitor/internal/utils"
	"github.com/benmeehan/fleet-monitor/pkg/file"
	"github.com/benmeehan/fleet-monitor/pkg/fleetapi"
	"github.com/benmeehan/fleet-monitor/pkg/mqtt"
	"github.com/rs/zerolog"
)

// ServiceRegistry manages the lifecycle of various services in the system.
type ServiceRegistry struct {
	services    map[string]registry.Service // Stores registered services
	serviceKeys []string                    // Maintains order of service registration

	store       *display.Store
	reconciler  *reconciler.Reconciler
	dispatcher  *dispatcher.Dispatcher
	fleetClient *fleetapi.Client
	fileClient  file.FileOperations
	mqttClient  *mqtt.MqttService // set when the mqtt transport is used
	renderOut   io.Writer
	Logger      zerolog.Logger
}

// NewServiceRegistry initializes a new service registry with dependencies.
func NewServiceRegistry(store *display.Store, reconciler *reconciler.Reconciler, dispatcher *dispatcher.Dispatcher,
	fleetClient *fleetapi.Client, fileClient file.FileOperations, renderOut io.Writer, logger zerolog.Logger) *ServiceRegistry {
	return &ServiceRegistry{
		services:    make(map[string]registry.Service),
		store:       store,
		reconciler:  reconciler,
		dispatcher:  dispatcher,
		fleetClient: fleetClient,
		fileClient:  fileClient,
		renderOut:   renderOut,
		Logger:      logger,
	}
}

// RegisterService adds a new service to the registry.
func (sr *ServiceRegistry) RegisterService(name string, svc registry.Service) {
	if _, exists := sr.services[name]; exists {
		sr.Logger.Warn().Msgf("Service %s is already registered", name)
		return
	}
	sr.services[name] = svc
	sr.serviceKeys = append(sr.serviceKeys, name)
	sr.Logger.Info().Msgf("Registered service: %s", name)
}

// StartServices initiates all registered services in order.
// If a service fails to start, it stops already started services.
func (sr *ServiceRegistry) StartServices() error {
	startedServices := []string{}

	for _, name := range sr.serviceKeys {
		svc := sr.services[name]
		sr.Logger.Info().Msgf("Starting service: %s", name)
		if err := svc.Start(); err != nil {
			sr.Logger.Error().Err(err).Msgf("Failed to start service: %s", name)

			// Stop already started services before returning
			sr.Logger.Warn().Msg("Stopping already started services due to startup failure...")
			for i := len(startedServices) - 1; i >= 0; i-- {
				_ = sr.services[startedServices[i]].Stop()
			}
			return err
		}
		startedServices = append(startedServices, name)
	}

	return nil
}

// StopServices stops all services in reverse order.
func (sr *ServiceRegistry) StopServices() error {
	var stopErrors []error
	for i := len(sr.serviceKeys) - 1; i >= 0; i-- {
		name := sr.serviceKeys[i]
		if err := sr.services[name].Stop(); err != nil {
			stopErrors = append(stopErrors, fmt.Errorf("failed to stop %s: %w", name, err))
		}
	}
	if len(stopErrors) > 0 {
		for _, e := range stopErrors {
			sr.Logger.Error().Err(e).Msg("Service stop failure")
		}
		return errors.Join(stopErrors...)
	}
	return nil
}

// Close releases the connections opened while registering services.
func (sr *ServiceRegistry) Close() {
	if sr.mqttClient != nil {
		sr.mqttClient.Disconnect(250)
		sr.mqttClient = nil
	}
}

// RegisterServices initializes and registers enabled services based on configuration.
func (sr *ServiceRegistry) RegisterServices(config *utils.Config) error {
	// Ordered service definitions with inline constructors
	servicesInOrder := []struct {
		name        string
		enabled     bool
		constructor func() (registry.Service, error)
	}{
		{
			name:    "stream",
			enabled: true,
			constructor: func() (registry.Service, error) {
				source, err := sr.newSource(config)
				if err != nil {
					return nil, err
				}

				var fetcher services.FleetFetcher
				if config.Stream.Bootstrap {
					fetcher = sr.fleetClient
				}
				return services.NewStreamService(
					source,
					sr.reconciler,
					sr.store,
					fetcher,
					config.Server.FleetPath,
					config.Stream.EventName,
					config.Server.RequestTimeout,
					sr.Logger,
				), nil
			},
		},
		{
			name:    "render",
			enabled: config.Services.Render.Enabled,
			constructor: func() (registry.Service, error) {
				return services.NewRenderService(
					config.Services.Render.Interval,
					sr.store,
					sr.renderOut,
					sr.Logger,
				), nil
			},
		},
		{
			name:    "api",
			enabled: config.Services.API.Enabled,
			constructor: func() (registry.Service, error) {
				return services.NewAPIService(
					config.Services.API.ListenAddress,
					api.NewRouter(sr.store, sr.dispatcher, sr.newMetricsRegistry(), sr.Logger),
					sr.Logger,
				), nil
			},
		},
	}

	// Register services in the predefined order
	registeredServices := []string{}
	for _, svc := range servicesInOrder {
		if svc.enabled {
			serviceInstance, err := svc.constructor()
			if err != nil {
				sr.Logger.Error().Err(err).Msgf("Failed to create %s service", svc.name)
				return err
			}
			sr.RegisterService(svc.name, serviceInstance)
			registeredServices = append(registeredServices, svc.name)
		}
	}

	sr.Logger.Info().Msgf("Registered services in order: %v", registeredServices)
	return nil
}

// newMetricsRegistry registers the self-monitoring collectors served on /healthz.
func (sr *ServiceRegistry) newMetricsRegistry() *metrics_collectors.MetricsRegistry {
	metrics := metrics_collectors.NewMetricsRegistry()
	metrics.Register(&metrics_collectors.GoroutineMetricCollector{Logger: sr.Logger})
	metrics.Register(&metrics_collectors.ProcessMetricCollector{Logger: sr.Logger})
	metrics.Register(&metrics_collectors.DisplayMetricCollector{Display: sr.store})
	return metrics
}
