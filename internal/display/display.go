package display

import (
	"github.com/benmeehan/fleet-monitor/internal/constants"
	"github.com/benmeehan/fleet-monitor/internal/models"
)

// Class is the visual class of an indicator or badge slot.
type Class string

const (
	ClassSuccess   Class = "bg-success"
	ClassDanger    Class = "bg-danger"
	ClassWarning   Class = "bg-warning"
	ClassSecondary Class = "bg-secondary"
)

// SlotKind names a visual slot of a device or container.
type SlotKind string

const (
	DeviceLastUpdated        SlotKind = "device-last-updated"
	DeviceCPU                SlotKind = "device-cpu"
	DeviceMemory             SlotKind = "device-memory"
	DeviceStatusIndicator    SlotKind = "device-status-indicator"
	ContainerStatusIndicator SlotKind = "container-status-indicator"
	ContainerUpdateStatus    SlotKind = "container-update-status"
)

// Key addresses a single slot of one entity.
type Key struct {
	Kind SlotKind
	ID   string
}

// String returns the slot address, e.g. "device-cpu-a1b2c3".
func (k Key) String() string {
	return string(k.Kind) + "-" + k.ID
}

// Display is the rendering surface the reconciler writes to.
// Writes are idempotent, and writing to a slot that does not exist is a no-op.
// Every method reports whether the slot changed.
type Display interface {
	SetText(key Key, text string) bool
	SetBadge(key Key, class Class, text string) bool
	// SwapIndicator sets class to and text together, only if the slot currently has class from.
	SwapIndicator(key Key, from, to Class, text string) bool
}

// StatusClass maps a container status to its indicator class.
func StatusClass(status string) Class {
	if status == constants.StatusRunning {
		return ClassSuccess
	}
	return ClassDanger
}

// OnlineIndicator maps a device online flag to its indicator class and label.
func OnlineIndicator(online bool) (Class, string) {
	if online {
		return ClassSuccess, constants.LabelOnline
	}
	return ClassDanger, constants.LabelOffline
}

// UpdateBadge maps update availability to its badge class and label.
func UpdateBadge(status models.UpdateStatus) (Class, string) {
	switch status {
	case models.UpdateAvailable:
		return ClassWarning, constants.LabelNewVersionAvailable
	case models.UpToDate:
		return ClassSuccess, constants.LabelUpToDate
	default:
		return ClassSecondary, constants.LabelNoInformation
	}
}
