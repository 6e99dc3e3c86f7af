package metrics_collectors

import (
	"context"
)

// DisplayCounter reports the size of the displayed state.
type DisplayCounter interface {
	Counts() (devices, slots int)
}

// DisplayMetrics is the size of the displayed state.
type DisplayMetrics struct {
	Devices int `json:"devices"`
	Slots   int `json:"slots"`
}

// DisplayMetricCollector reports how many devices and slots are being displayed.
type DisplayMetricCollector struct {
	Display DisplayCounter
}

func (d *DisplayMetricCollector) Name() string {
	return "display"
}

func (d *DisplayMetricCollector) Collect(_ context.Context) any {
	devices, slots := d.Display.Counts()
	return &DisplayMetrics{Devices: devices, Slots: slots}
}

func (d *DisplayMetricCollector) Unit() string {
	return "count"
}
