package models

import (
	"encoding/json"
	"fmt"
	"sort"
)

// FleetSnapshot maps device IDs to their state at a point in time.
// A snapshot delivered by the event stream may carry only the devices that changed.
type FleetSnapshot map[string]DeviceState

// DeviceIDs returns the device IDs of the snapshot in sorted order.
func (s FleetSnapshot) DeviceIDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// DeviceState is the state of a single device as reported by the server.
type DeviceState struct {
	LastSeen     Timestamp `json:"last_updated"`
	Online       *bool     `json:"online,omitempty"`
	PushInterval *float64  `json:"push_interval,omitempty"`
	Telemetry    Telemetry `json:"telemetry"`
}

// Telemetry is the latest telemetry post of a device.
type Telemetry struct {
	Timestamp   Timestamp  `json:"timestamp"`
	CPULoad     Percent    `json:"cpu_load"`
	MemoryUsage Percent    `json:"memory_usage"`
	Containers  Containers `json:"containers"`
}

// ContainerState is the reported state of one managed container.
type ContainerState struct {
	ID              string       `json:"id"`
	Name            string       `json:"name,omitempty"`
	Status          string       `json:"status"`
	UpdateAvailable UpdateStatus `json:"update_available"`
}

// Containers maps container IDs to their state.
type Containers map[string]ContainerState

// IDs returns the container IDs in sorted order.
func (c Containers) IDs() []string {
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// UnmarshalJSON accepts either an object of containers or an array of containers.
// Entries are keyed by their "id" field. In an object the key stands in for a missing
// "id"; in an array entries without one are dropped.
func (c *Containers) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = nil
		return nil
	}

	var keyed map[string]ContainerState
	if err := json.Unmarshal(data, &keyed); err == nil {
		out := make(Containers, len(keyed))
		for key, container := range keyed {
			if container.ID == "" {
				container.ID = key
			}
			out[container.ID] = container
		}
		*c = out
		return nil
	}

	var list []ContainerState
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("containers must be an object or an array: %w", err)
	}

	out := make(Containers, len(list))
	for _, container := range list {
		if container.ID == "" {
			continue
		}
		out[container.ID] = container
	}
	*c = out
	return nil
}

// DecodeSnapshot parses a fleet snapshot from its JSON encoding.
func DecodeSnapshot(data []byte) (FleetSnapshot, error) {
	var snapshot FleetSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode fleet snapshot: %w", err)
	}
	return snapshot, nil
}
