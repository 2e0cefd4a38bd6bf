package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/nadmax/tasktracker/internal/dashboard"
	"github.com/nadmax/tasktracker/internal/metrics"
)

const gaugeInterval = 10 * time.Second

// startMetricsCollector refreshes the task gauges from the dashboard until
// ctx is cancelled. Reads go through the cache, so a tick inside the TTL
// costs one Redis GET.
func startMetricsCollector(ctx context.Context, provider dashboard.MetricsProvider, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	updateTaskMetrics(ctx, provider)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateTaskMetrics(ctx, provider)
		}
	}
}

func updateTaskMetrics(ctx context.Context, provider dashboard.MetricsProvider) {
	snapshot, err := provider.GetMetrics(ctx)
	if err != nil {
		if ctx.Err() == nil {
			slog.Warn("Failed to get dashboard metrics for gauges", "error", err)
		}
		return
	}

	metrics.UpdateTaskGauges(snapshot.StatusCounts.ByStatus())
	metrics.UpdateOverdueTasks(snapshot.OverdueTaskCount)
	metrics.UpdateEmployees(snapshot.EmployeeCount)
}
