package dispatcher

import (
	"context"
	"errors"

	"github.com/benmeehan/fleet-monitor/internal/constants"
	"github.com/benmeehan/fleet-monitor/internal/models"
	"github.com/benmeehan/fleet-monitor/pkg/fleetapi"
	"github.com/rs/zerolog"
)

// ErrUnknownEndpoint is reported when a command targets a channel the dispatcher has no path for.
var ErrUnknownEndpoint = errors.New("unknown command endpoint")

// Endpoint names a logical command channel on the server.
type Endpoint string

const (
	ContainerCommand Endpoint = constants.EndpointContainerCommand
	DeviceCommand    Endpoint = constants.EndpointDeviceCommand
)

// Poster issues a single JSON POST request.
type Poster interface {
	PostJSON(ctx context.Context, path string, body any) (*fleetapi.Response, error)
}

// Result is the outcome of a dispatched command. Err is set when the request
// could not be delivered; Response is nil in that case.
type Result struct {
	Endpoint Endpoint
	Payload  models.CommandPayload
	Response *fleetapi.Response
	Err      error
}

// OK reports whether the command was delivered.
func (r Result) OK() bool {
	return r.Err == nil
}

// Dispatcher sends operator commands to the control-plane server.
// Each call issues exactly one request: no retries, queueing or de-duplication.
type Dispatcher struct {
	poster Poster
	paths  map[Endpoint]string
	logger zerolog.Logger
}

// NewDispatcher creates a Dispatcher posting container commands to containerPath
// and device commands to devicePath.
func NewDispatcher(poster Poster, containerPath, devicePath string, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		poster: poster,
		paths: map[Endpoint]string{
			ContainerCommand: containerPath,
			DeviceCommand:    devicePath,
		},
		logger: logger,
	}
}

// Dispatch sends payload to endpoint. Delivery failures are logged and reported in
// the returned Result; they are never returned as an error or raised to the caller.
func (d *Dispatcher) Dispatch(ctx context.Context, endpoint Endpoint, payload models.CommandPayload) Result {
	result := Result{Endpoint: endpoint, Payload: payload}

	path, ok := d.paths[endpoint]
	if !ok || path == "" {
		result.Err = ErrUnknownEndpoint
		d.logger.Error().Err(result.Err).Str("endpoint", string(endpoint)).Str("command", payload.Command).Msg("Failed to dispatch command")
		return result
	}

	resp, err := d.poster.PostJSON(ctx, path, payload)
	if err != nil {
		result.Err = err
		d.logger.Error().Err(err).
			Str("endpoint", string(endpoint)).
			Str("command", payload.Command).
			Str("device_id", payload.ID).
			Msg("Failed to dispatch command")
		return result
	}

	result.Response = resp
	d.logger.Info().
		Str("endpoint", string(endpoint)).
		Str("command", payload.Command).
		Str("device_id", payload.ID).
		Str("container", payload.ContainerName).
		Int("status", resp.StatusCode).
		Str("request_id", resp.RequestID).
		Msg("Command dispatched")
	return result
}

// UpdateContainer asks the device to pull and restart a container on a newer image.
func (d *Dispatcher) UpdateContainer(ctx context.Context, deviceID, containerName string) Result {
	return d.containerCommand(ctx, constants.CommandUpdateContainer, deviceID, containerName)
}

// StartContainer asks the device to start a container.
func (d *Dispatcher) StartContainer(ctx context.Context, deviceID, containerName string) Result {
	return d.containerCommand(ctx, constants.CommandStartContainer, deviceID, containerName)
}

// StopContainer asks the device to stop a container.
func (d *Dispatcher) StopContainer(ctx context.Context, deviceID, containerName string) Result {
	return d.containerCommand(ctx, constants.CommandStopContainer, deviceID, containerName)
}

// RemoveDevice asks the server to forget a device.
func (d *Dispatcher) RemoveDevice(ctx context.Context, deviceID string) Result {
	return d.Dispatch(ctx, DeviceCommand, models.CommandPayload{
		Command: constants.CommandRemoveDevice,
		ID:      deviceID,
	})
}

func (d *Dispatcher) containerCommand(ctx context.Context, command, deviceID, containerName string) Result {
	return d.Dispatch(ctx, ContainerCommand, models.CommandPayload{
		Command:       command,
		ID:            deviceID,
		ContainerName: containerName,
	})
}
