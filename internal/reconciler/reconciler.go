package reconciler

import (
	"fmt"
	"sync"

	"github.com/benmeehan/fleet-monitor/internal/display"
	"github.com/benmeehan/fleet-monitor/internal/models"
	"github.com/benmeehan/fleet-monitor/internal/utils"
	"github.com/rs/zerolog"
)

// Reconciler applies fleet snapshots to a Display, writing only what changed.
type Reconciler struct {
	display           display.Display
	workerPool        *utils.WorkerPool
	trackDeviceOnline bool
	logger            zerolog.Logger

	// one snapshot at a time
	mu sync.Mutex
}

// NewReconciler creates a Reconciler that updates up to workers containers of a device concurrently.
// When trackDeviceOnline is set, the device status indicator follows the snapshot's "online" field.
func NewReconciler(d display.Display, workers int, trackDeviceOnline bool, logger zerolog.Logger) *Reconciler {
	return &Reconciler{
		display:           d,
		workerPool:        utils.NewWorkerPool(workers),
		trackDeviceOnline: trackDeviceOnline,
		logger:            logger,
	}
}

// Reconcile updates the display from snapshot. Devices missing from the snapshot are
// left untouched. It returns once every write of the snapshot has been issued.
func (r *Reconciler) Reconcile(snapshot models.FleetSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, deviceID := range snapshot.DeviceIDs() {
		r.reconcileDevice(deviceID, snapshot[deviceID])
	}
	r.logger.Debug().Int("devices", len(snapshot)).Msg("Snapshot reconciled")
}

// Close stops the worker pool.
func (r *Reconciler) Close() {
	r.workerPool.Shutdown()
}

func (r *Reconciler) reconcileDevice(deviceID string, device models.DeviceState) {
	defer r.recoverEntity("device", deviceID)

	telemetry := device.Telemetry
	r.display.SetText(display.Key{Kind: display.DeviceLastUpdated, ID: deviceID}, telemetry.Timestamp.String())
	r.display.SetText(display.Key{Kind: display.DeviceCPU, ID: deviceID}, telemetry.CPULoad.String())
	r.display.SetText(display.Key{Kind: display.DeviceMemory, ID: deviceID}, telemetry.MemoryUsage.String())

	if r.trackDeviceOnline && device.Online != nil {
		r.updateIndicator(display.Key{Kind: display.DeviceStatusIndicator, ID: deviceID}, *device.Online, func(online bool) string {
			_, label := display.OnlineIndicator(online)
			return label
		})
	}

	tasks := make([]func(), 0, len(telemetry.Containers))
	for _, containerID := range telemetry.Containers.IDs() {
		container := telemetry.Containers[containerID]
		tasks = append(tasks, func() {
			r.reconcileContainer(containerID, container)
		})
	}
	r.workerPool.RunAll(tasks...)
}

func (r *Reconciler) reconcileContainer(containerID string, container models.ContainerState) {
	defer r.recoverEntity("container", containerID)

	healthy := display.StatusClass(container.Status) == display.ClassSuccess
	if r.updateIndicator(display.Key{Kind: display.ContainerStatusIndicator, ID: containerID}, healthy, func(bool) string {
		return container.Status
	}) {
		r.logger.Info().Str("container", containerID).Str("status", container.Status).Msg("Container status changed")
	}

	class, label := display.UpdateBadge(container.UpdateAvailable)
	r.display.SetBadge(display.Key{Kind: display.ContainerUpdateStatus, ID: containerID}, class, label)
}

// updateIndicator flips an indicator only on an edge: danger to success when the new value
// is healthy, success to danger when it is not. The text is written with the flip or not at all.
func (r *Reconciler) updateIndicator(key display.Key, healthy bool, text func(bool) string) bool {
	if healthy {
		return r.display.SwapIndicator(key, display.ClassDanger, display.ClassSuccess, text(true))
	}
	return r.display.SwapIndicator(key, display.ClassSuccess, display.ClassDanger, text(false))
}

func (r *Reconciler) recoverEntity(kind, id string) {
	if p := recover(); p != nil {
		r.logger.Error().Err(fmt.Errorf("panic: %v", p)).Str(kind, id).Msgf("Failed to reconcile %s", kind)
	}
}
