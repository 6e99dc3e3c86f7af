package metrics_collectors

import (
	"context"
	"sync"
)

// Metric is one collected value together with its unit.
type Metric struct {
	Value any    `json:"value"`
	Unit  string `json:"unit"`
}

// MetricsRegistry manages the metric collectors reported by the health endpoint.
type MetricsRegistry struct {
	mu         sync.RWMutex
	collectors map[string]MetricCollector
}

// NewMetricsRegistry creates a new MetricsRegistry instance.
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		collectors: make(map[string]MetricCollector),
	}
}

// Register adds a new metric collector to the registry.
func (r *MetricsRegistry) Register(collector MetricCollector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.collectors[collector.Name()] = collector
}

// GetCollectors returns all the metric collectors registered in the registry.
func (r *MetricsRegistry) GetCollectors() map[string]MetricCollector {
	r.mu.RLock()
	defer r.mu.RUnlock()

	collectors := make(map[string]MetricCollector, len(r.collectors))
	for name, c := range r.collectors {
		collectors[name] = c
	}
	return collectors
}

// CollectAll runs every collector concurrently and returns the values by metric name.
// Collectors returning nil are left out.
func (r *MetricsRegistry) CollectAll(ctx context.Context) map[string]Metric {
	collectors := r.GetCollectors()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		metrics = make(map[string]Metric, len(collectors))
	)
	for name, collector := range collectors {
		wg.Add(1)
		go func(name string, collector MetricCollector) {
			defer wg.Done()
			value := collector.Collect(ctx)
			if value == nil {
				return
			}
			mu.Lock()
			metrics[name] = Metric{Value: value, Unit: collector.Unit()}
			mu.Unlock()
		}(name, collector)
	}
	wg.Wait()

	return metrics
}
