package models

import "encoding/json"

// UpdateStatus is the tri-state update availability of a container.
// The zero value is UpdateUnknown.
type UpdateStatus int

const (
	UpdateUnknown UpdateStatus = iota
	UpdateAvailable
	UpToDate
)

func (u UpdateStatus) String() string {
	switch u {
	case UpdateAvailable:
		return "available"
	case UpToDate:
		return "up_to_date"
	default:
		return "unknown"
	}
}

// UpdateStatusOf converts an optional boolean into an UpdateStatus.
func UpdateStatusOf(available *bool) UpdateStatus {
	switch {
	case available == nil:
		return UpdateUnknown
	case *available:
		return UpdateAvailable
	default:
		return UpToDate
	}
}

// MarshalJSON encodes the status as true, false or null.
func (u UpdateStatus) MarshalJSON() ([]byte, error) {
	switch u {
	case UpdateAvailable:
		return []byte("true"), nil
	case UpToDate:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes true, false or null. null maps to UpdateUnknown, never to false.
// Any other value is treated as unknown rather than failing the whole snapshot.
func (u *UpdateStatus) UnmarshalJSON(data []byte) error {
	var available *bool
	if err := json.Unmarshal(data, &available); err != nil {
		*u = UpdateUnknown
		return nil
	}
	*u = UpdateStatusOf(available)
	return nil
}
