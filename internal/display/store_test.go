package display_test

import (
	"bytes"
	"testing"

	"github.com/benmeehan/fleet-monitor/internal/display"
	"github.com/benmeehan/fleet-monitor/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func testSnapshot() models.FleetSnapshot {
	return models.FleetSnapshot{
		"dev-1": {
			Online: boolPtr(true),
			Telemetry: models.Telemetry{
				Timestamp:   models.Timestamp{Raw: "2024/03/01 10:14:59"},
				CPULoad:     models.NewPercent(12.5),
				MemoryUsage: models.NewPercent(40),
				Containers: models.Containers{
					"c1": {ID: "c1", Status: "running", UpdateAvailable: models.UpToDate},
					"c2": {ID: "c2", Status: "exited"},
				},
			},
		},
	}
}

// TestStore_Bootstrap tests that bootstrap renders the initial state of every slot.
func TestStore_Bootstrap(t *testing.T) {
	// Setup
	store := display.NewStore(zerolog.Nop())

	// Execute
	store.Bootstrap(testSnapshot())

	// Assert
	slot, ok := store.Get(display.Key{Kind: display.DeviceCPU, ID: "dev-1"})
	require.True(t, ok)
	assert.Equal(t, "12.5 %", slot.Text)
	assert.Equal(t, "device-cpu-dev-1", slot.Key)

	slot, _ = store.Get(display.Key{Kind: display.DeviceStatusIndicator, ID: "dev-1"})
	assert.Equal(t, display.ClassSuccess, slot.Class)
	assert.Equal(t, "online", slot.Text)

	slot, _ = store.Get(display.Key{Kind: display.ContainerStatusIndicator, ID: "c2"})
	assert.Equal(t, display.ClassDanger, slot.Class)
	assert.Equal(t, "exited", slot.Text)

	slot, _ = store.Get(display.Key{Kind: display.ContainerUpdateStatus, ID: "c2"})
	assert.Equal(t, display.ClassSecondary, slot.Class)
	assert.Equal(t, "No information", slot.Text)

	assert.Len(t, store.Slots(), 8)
	for _, s := range store.Slots() {
		assert.Zero(t, s.Revision, s.Key)
	}
}

// TestStore_BootstrapKeepsExistingSlots tests that a second bootstrap only adds new entities.
func TestStore_BootstrapKeepsExistingSlots(t *testing.T) {
	// Setup
	store := display.NewStore(zerolog.Nop())
	store.Bootstrap(testSnapshot())
	store.SetText(display.Key{Kind: display.DeviceCPU, ID: "dev-1"}, "99 %")

	next := testSnapshot()
	device := next["dev-1"]
	device.Telemetry.Containers["c3"] = models.ContainerState{ID: "c3", Status: "running"}
	next["dev-1"] = device

	// Execute
	store.Bootstrap(next)

	// Assert
	slot, _ := store.Get(display.Key{Kind: display.DeviceCPU, ID: "dev-1"})
	assert.Equal(t, "99 %", slot.Text)

	_, ok := store.Get(display.Key{Kind: display.ContainerStatusIndicator, ID: "c3"})
	assert.True(t, ok)

	views := store.Devices()
	require.Len(t, views, 1)
	require.Len(t, views[0].Containers, 3)
	assert.Equal(t, "c3", views[0].Containers[2].ID)
}

// TestStore_WritesAreIdempotent tests that writing the same value twice changes nothing the second time.
func TestStore_WritesAreIdempotent(t *testing.T) {
	// Setup
	store := display.NewStore(zerolog.Nop())
	store.Bootstrap(testSnapshot())
	key := display.Key{Kind: display.ContainerUpdateStatus, ID: "c1"}

	// Execute & Assert
	assert.True(t, store.SetBadge(key, display.ClassWarning, "New version available"))
	assert.False(t, store.SetBadge(key, display.ClassWarning, "New version available"))

	slot, _ := store.Get(key)
	assert.Equal(t, uint64(1), slot.Revision)
}

// TestStore_SwapIndicator tests that an indicator only moves from the expected class.
func TestStore_SwapIndicator(t *testing.T) {
	// Setup
	store := display.NewStore(zerolog.Nop())
	store.Bootstrap(testSnapshot())
	key := display.Key{Kind: display.ContainerStatusIndicator, ID: "c1"}

	// Execute & Assert
	assert.False(t, store.SwapIndicator(key, display.ClassDanger, display.ClassSuccess, "running"))

	assert.True(t, store.SwapIndicator(key, display.ClassSuccess, display.ClassDanger, "stopped"))
	slot, _ := store.Get(key)
	assert.Equal(t, display.ClassDanger, slot.Class)
	assert.Equal(t, "stopped", slot.Text)

	assert.False(t, store.SwapIndicator(key, display.ClassSuccess, display.ClassDanger, "exited"))
	slot, _ = store.Get(key)
	assert.Equal(t, "stopped", slot.Text, "text is only written with a transition")
}

// TestStore_MissingSlot tests that writes to unknown slots are harmless no-ops.
func TestStore_MissingSlot(t *testing.T) {
	// Setup
	store := display.NewStore(zerolog.Nop())
	key := display.Key{Kind: display.DeviceCPU, ID: "ghost"}

	// Execute & Assert
	assert.False(t, store.SetText(key, "1 %"))
	assert.False(t, store.SetBadge(key, display.ClassSuccess, "x"))
	assert.False(t, store.SwapIndicator(key, display.ClassDanger, display.ClassSuccess, "x"))
	_, ok := store.Get(key)
	assert.False(t, ok)
	assert.Empty(t, store.Slots())
}

// TestUpdateBadge tests the three badge outcomes.
func TestUpdateBadge(t *testing.T) {
	cases := []struct {
		status models.UpdateStatus
		class  display.Class
		label  string
	}{
		{models.UpdateAvailable, display.ClassWarning, "New version available"},
		{models.UpToDate, display.ClassSuccess, "Up to date"},
		{models.UpdateUnknown, display.ClassSecondary, "No information"},
	}

	for _, tc := range cases {
		class, label := display.UpdateBadge(tc.status)
		assert.Equal(t, tc.class, class, tc.status.String())
		assert.Equal(t, tc.label, label, tc.status.String())
	}
}

// TestRender tests that the terminal view lists every device and container.
func TestRender(t *testing.T) {
	// Setup
	store := display.NewStore(zerolog.Nop())
	store.Bootstrap(testSnapshot())
	var out bytes.Buffer

	// Execute
	err := display.Render(&out, store)

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out.String(), "dev-1")
	assert.Contains(t, out.String(), "12.5 %")
	assert.Contains(t, out.String(), "c1")
	assert.Contains(t, out.String(), "exited")
	assert.Contains(t, out.String(), "Up to date")
}
