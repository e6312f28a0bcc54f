package telemetry

import (
	"context"
	"log/slog"
	"runtime"

	"github.com/shirou/gopsutil/v4/cpu"
	"go.opentelemetry.io/otel"
)

var meter = otel.Meter("go.perf_stats")
var cpuGauge, _ = meter.Float64Gauge("cpu_usage")
var memoryGauge, _ = meter.Int64Gauge("allocated_mb")
var liveObjectsGauge, _ = meter.Int64Gauge("live_objects")
var goroutineGauge, _ = meter.Int64Gauge("goroutine_count")

// PerfStats is a single sample of process resource usage.
type PerfStats struct {
	CpuPercent  float64
	AllocatedMb int64
	LiveObjects int64
	Goroutines  int64
}

// RecordPerfStats takes one sample of cpu, heap and goroutine usage and
// records it on the perf_stats gauges. Batch commands call it once before
// exiting instead of running a ticker.
func RecordPerfStats(ctx context.Context) PerfStats {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	stats := PerfStats{
		AllocatedMb: int64(memStats.Alloc / 1_000_000),
		LiveObjects: int64(memStats.Mallocs) - int64(memStats.Frees),
		Goroutines:  int64(runtime.NumGoroutine()),
	}

	// interval 0 compares against the previous call (or boot), so this
	// does not block
	cpuUsage, err := cpu.PercentWithContext(ctx, 0, false)
	if err == nil && len(cpuUsage) > 0 {
		stats.CpuPercent = cpuUsage[0]
		cpuGauge.Record(ctx, stats.CpuPercent)
	} else if err != nil {
		slog.DebugContext(ctx, "failed to read cpu usage", "err", err)
	}

	memoryGauge.Record(ctx, stats.AllocatedMb)
	liveObjectsGauge.Record(ctx, stats.LiveObjects)
	goroutineGauge.Record(ctx, stats.Goroutines)

	slog.DebugContext(
		ctx, "perf stats",
		"cpu_percent", stats.CpuPercent,
		"allocated_mb", stats.AllocatedMb,
		"live_objects", stats.LiveObjects,
		"goroutines", stats.Goroutines,
	)
	return stats
}
