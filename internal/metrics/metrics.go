// Package metrics provides Prometheus metrics for monitoring the task tracker.
package metrics

import (
	"time"

	"github.com/nadmax/tasktracker/internal/task"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TaskMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasktracker_task_mutations_total",
			Help: "Total number of successful task writes by operation",
		},
		[]string{"operation"},
	)
	DashboardCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasktracker_dashboard_cache_requests_total",
			Help: "Dashboard metrics cache lookups by result",
		},
		[]string{"result"},
	)
	DashboardCacheInvalidations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tasktracker_dashboard_cache_invalidations_total",
			Help: "Total number of dashboard metrics cache invalidations",
		},
	)
	DashboardComputeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tasktracker_dashboard_compute_duration_seconds",
			Help:    "Time spent recomputing the dashboard metrics snapshot",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"outcome"},
	)
	TasksByStatus = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tasktracker_tasks",
			Help: "Current number of tasks by status",
		},
		[]string{"status"},
	)
	OverdueTasks = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tasktracker_overdue_tasks",
			Help: "Current number of overdue tasks",
		},
	)
	Employees = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tasktracker_employees",
			Help: "Current number of employees",
		},
	)
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasktracker_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tasktracker_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
)

func RecordTaskMutation(operation string) {
	TaskMutations.WithLabelValues(operation).Inc()
}

func RecordCacheHit() {
	DashboardCacheRequests.WithLabelValues("hit").Inc()
}

func RecordCacheMiss() {
	DashboardCacheRequests.WithLabelValues("miss").Inc()
}

func RecordCacheInvalidation() {
	DashboardCacheInvalidations.Inc()
}

func RecordDashboardCompute(duration time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}

	DashboardComputeDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

func UpdateTaskGauges(countsByStatus map[task.TaskStatus]int) {
	TasksByStatus.Reset()
	for status, count := range countsByStatus {
		TasksByStatus.WithLabelValues(string(status)).Set(float64(count))
	}
}

func UpdateOverdueTasks(count int) {
	OverdueTasks.Set(float64(count))
}

func UpdateEmployees(count int) {
	Employees.Set(float64(count))
}

func RecordHTTPRequest(method, endpoint, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
