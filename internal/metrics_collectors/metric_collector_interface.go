package metrics_collectors

import (
	"context"
)

// MetricCollector defines the interface for collecting a specific self-monitoring metric.
type MetricCollector interface {
	Name() string                    // Name of the metric (e.g., "goroutines", "process")
	Collect(ctx context.Context) any // Collect the metric data, nil when unavailable
	Unit() string                    // Unit of the metric (e.g., "count", "bytes")
}
