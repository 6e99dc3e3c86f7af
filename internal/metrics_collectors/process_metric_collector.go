package metrics_collectors

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/process"
)

// ProcessMetrics holds resource usage of the monitor process.
type ProcessMetrics struct {
	CPUUsage float64 `json:"cpu_usage"`
	Memory   uint64  `json:"memory_rss"`
	Threads  int32   `json:"threads"`
}

// ProcessMetricCollector collects CPU, memory and thread usage of the monitor's own process.
type ProcessMetricCollector struct {
	Logger zerolog.Logger
}

func (p *ProcessMetricCollector) Name() string {
	return "process"
}

func (p *ProcessMetricCollector) Collect(_ context.Context) any {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		p.Logger.Error().Err(err).Msg("Failed to open own process")
		return nil
	}

	metrics := &ProcessMetrics{}
	if cpuPercent, err := proc.CPUPercent(); err == nil {
		metrics.CPUUsage = cpuPercent
	} else {
		p.Logger.Warn().Err(err).Int32("pid", proc.Pid).Msg("Failed to get CPU usage")
	}
	if memInfo, err := proc.MemoryInfo(); err == nil {
		metrics.Memory = memInfo.RSS
	} else {
		p.Logger.Warn().Err(err).Int32("pid", proc.Pid).Msg("Failed to get memory information")
	}
	if threads, err := proc.NumThreads(); err == nil {
		metrics.Threads = threads
	} else {
		p.Logger.Warn().Err(err).Int32("pid", proc.Pid).Msg("Failed to get thread count")
	}

	p.Logger.Debug().Float64("cpu", metrics.CPUUsage).Uint64("rss", metrics.Memory).Msg("Process metrics collected")
	return metrics
}

func (p *ProcessMetricCollector) Unit() string {
	return "varied (CPU: %, Memory: bytes, Threads: count)"
}
