package metrics

import (
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// HealthSnapshot is the payload served at /health: a quick picture of
// process and host resource usage, gathered with gopsutil the way
// go-server/internal/metrics/system.go does for its runtime metrics.
type HealthSnapshot struct {
	Status              string  `json:"status"`
	UptimeSeconds        float64 `json:"uptime_seconds"`
	ActiveSubscriptions  int     `json:"active_subscriptions"`
	GoroutineCount       int     `json:"goroutines"`
	HostCPUPercent       float64 `json:"host_cpu_percent"`
	HostMemoryUsedPercent float64 `json:"host_memory_used_percent"`
}

// HealthReporter computes HealthSnapshot values relative to its own start
// time. A single instance should be created at process startup.
type HealthReporter struct {
	startedAt time.Time
}

// NewHealthReporter creates a reporter whose uptime baseline is now.
func NewHealthReporter() *HealthReporter {
	return &HealthReporter{startedAt: time.Now()}
}

// Snapshot gathers a HealthSnapshot. CPU sampling blocks for up to
// 200 ms; errors reading host stats are tolerated and surface as zero
// values rather than failing the health check.
func (h *HealthReporter) Snapshot(activeSubscriptions int) HealthSnapshot {
	snap := HealthSnapshot{
		Status:              "healthy",
		UptimeSeconds:       time.Since(h.startedAt).Seconds(),
		ActiveSubscriptions: activeSubscriptions,
		GoroutineCount:      runtime.NumGoroutine(),
	}

	if percents, err := cpu.Percent(200*time.Millisecond, false); err == nil && len(percents) > 0 {
		snap.HostCPUPercent = percents[0]
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		snap.HostMemoryUsedPercent = vm.UsedPercent
	}

	return snap
}
