package display

import (
	"sort"
	"sync"

	"github.com/benmeehan/fleet-monitor/internal/models"
	"github.com/benmeehan/fleet-monitor/internal/utils"
	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/rs/zerolog"
)

// Slot is a copy of the last value written to a visual slot.
type Slot struct {
	Key      string `json:"key"`
	Class    Class  `json:"class,omitempty"`
	Text     string `json:"text"`
	Revision uint64 `json:"revision"` // Number of effective changes since the slot was created
}

type slot struct {
	mu       sync.Mutex
	key      string
	class    Class
	text     string
	revision uint64
}

func (s *slot) snapshot() Slot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Slot{Key: s.key, Class: s.class, Text: s.text, Revision: s.revision}
}

// Store holds the displayed state of every known slot. It implements Display.
// Each slot is locked on its own, so an indicator check and its text write happen as one unit.
type Store struct {
	slots   cmap.ConcurrentMap[string, *slot]
	devices cmap.ConcurrentMap[string, []string] // device ID -> container IDs
	logger  zerolog.Logger
}

var _ Display = (*Store)(nil)

// NewStore creates an empty Store.
func NewStore(logger zerolog.Logger) *Store {
	return &Store{
		slots:   cmap.New[*slot](),
		devices: cmap.New[[]string](),
		logger:  logger,
	}
}

// Bootstrap creates the slots of every device and container in the snapshot, initialised
// from the snapshot values. Slots that already exist are left as they are.
func (s *Store) Bootstrap(snapshot models.FleetSnapshot) {
	for _, deviceID := range snapshot.DeviceIDs() {
		device := snapshot[deviceID]

		s.register(Key{DeviceLastUpdated, deviceID}, "", device.Telemetry.Timestamp.String())
		s.register(Key{DeviceCPU, deviceID}, "", device.Telemetry.CPULoad.String())
		s.register(Key{DeviceMemory, deviceID}, "", device.Telemetry.MemoryUsage.String())

		class, label := OnlineIndicator(device.Online != nil && *device.Online)
		s.register(Key{DeviceStatusIndicator, deviceID}, class, label)

		containerIDs := device.Telemetry.Containers.IDs()
		for _, containerID := range containerIDs {
			container := device.Telemetry.Containers[containerID]
			s.register(Key{ContainerStatusIndicator, containerID}, StatusClass(container.Status), container.Status)

			badgeClass, badgeText := UpdateBadge(container.UpdateAvailable)
			s.register(Key{ContainerUpdateStatus, containerID}, badgeClass, badgeText)
		}

		s.devices.Upsert(deviceID, containerIDs, func(exist bool, known []string, added []string) []string {
			if !exist {
				return added
			}
			return mergeIDs(known, added)
		})
	}

	s.logger.Info().Int("devices", s.devices.Count()).Int("slots", s.slots.Count()).Msg("Display bootstrapped")
}

func (s *Store) register(key Key, class Class, text string) {
	s.slots.SetIfAbsent(key.String(), &slot{key: key.String(), class: class, text: text})
}

func (s *Store) lookup(key Key) (*slot, bool) {
	sl, ok := s.slots.Get(key.String())
	if !ok {
		s.logger.Debug().Str("slot", key.String()).Msg("Slot not found, skipping write")
	}
	return sl, ok
}

// SetText writes the text of a slot.
func (s *Store) SetText(key Key, text string) bool {
	sl, ok := s.lookup(key)
	if !ok {
		return false
	}

	sl.mu.Lock()
	defer sl.mu.Unlock()
	if sl.text == text {
		return false
	}
	sl.text = text
	sl.revision++
	return true
}

// SetBadge writes the class and text of a slot.
func (s *Store) SetBadge(key Key, class Class, text string) bool {
	sl, ok := s.lookup(key)
	if !ok {
		return false
	}

	sl.mu.Lock()
	defer sl.mu.Unlock()
	if sl.class == class && sl.text == text {
		return false
	}
	sl.class = class
	sl.text = text
	sl.revision++
	return true
}

// SwapIndicator moves a slot from class from to class to and writes text with it.
// Nothing is written unless the slot currently has class from.
func (s *Store) SwapIndicator(key Key, from, to Class, text string) bool {
	sl, ok := s.lookup(key)
	if !ok {
		return false
	}

	sl.mu.Lock()
	defer sl.mu.Unlock()
	if sl.class != from || from == to {
		return false
	}
	sl.class = to
	sl.text = text
	sl.revision++
	return true
}

// Get returns a copy of a slot.
func (s *Store) Get(key Key) (Slot, bool) {
	sl, ok := s.slots.Get(key.String())
	if !ok {
		return Slot{}, false
	}
	return sl.snapshot(), true
}

// Slots returns a copy of every slot, sorted by key.
func (s *Store) Slots() []Slot {
	out := make([]Slot, 0, s.slots.Count())
	for item := range s.slots.IterBuffered() {
		out = append(out, item.Val.snapshot())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Counts returns the number of known devices and slots.
func (s *Store) Counts() (devices, slots int) {
	return s.devices.Count(), s.slots.Count()
}

// DeviceView groups the slots of one device for rendering.
type DeviceView struct {
	ID          string          `json:"id"`
	LastUpdated Slot            `json:"last_updated"`
	CPU         Slot            `json:"cpu"`
	Memory      Slot            `json:"memory"`
	Status      Slot            `json:"status"`
	Containers  []ContainerView `json:"containers"`
}

// ContainerView groups the slots of one container for rendering.
type ContainerView struct {
	ID     string `json:"id"`
	Status Slot   `json:"status"`
	Update Slot   `json:"update"`
}

// Devices returns the current view of every bootstrapped device, sorted by ID.
func (s *Store) Devices() []DeviceView {
	ids := s.devices.Keys()
	sort.Strings(ids)

	views := make([]DeviceView, 0, len(ids))
	for _, id := range ids {
		containerIDs, _ := s.devices.Get(id)

		view := DeviceView{
			ID:          id,
			LastUpdated: s.slotOrEmpty(Key{DeviceLastUpdated, id}),
			CPU:         s.slotOrEmpty(Key{DeviceCPU, id}),
			Memory:      s.slotOrEmpty(Key{DeviceMemory, id}),
			Status:      s.slotOrEmpty(Key{DeviceStatusIndicator, id}),
			Containers:  make([]ContainerView, 0, len(containerIDs)),
		}
		for _, containerID := range containerIDs {
			view.Containers = append(view.Containers, ContainerView{
				ID:     containerID,
				Status: s.slotOrEmpty(Key{ContainerStatusIndicator, containerID}),
				Update: s.slotOrEmpty(Key{ContainerUpdateStatus, containerID}),
			})
		}
		views = append(views, view)
	}
	return views
}

func (s *Store) slotOrEmpty(key Key) Slot {
	sl, ok := s.Get(key)
	if !ok {
		return Slot{Key: key.String()}
	}
	return sl
}

func mergeIDs(known, added []string) []string {
	seen := utils.SliceToSet(known)
	merged := append([]string(nil), known...)
	for _, id := range added {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		merged = append(merged, id)
	}
	sort.Strings(merged)
	return merged
}
