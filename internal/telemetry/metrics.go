// Package telemetry provides application-level observability for the backend.
//
// All metrics are registered against the default Prometheus registry and are
// served on the side-channel HTTP server started by main.go:
//
//	GET http://<host>:<SVB_TELEMETRY_METRICS_PROMETHEUS_PORT>/metrics
//
// Default port: 9090. The endpoint is NOT served by the Gin router, so it is
// unreachable through the public API ingress and invisible to the audit
// pipeline's route classifier.
//
// HTTP metrics use c.FullPath() (route template such as /clientes/:id) rather
// than the raw request URL to prevent unbounded label cardinality from
// user-supplied path segments.
package telemetry

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics — labelled by method, route template, and status code.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed, by method, route template, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, by method and route template.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)
)

// Audit pipeline metrics — recorded by the capture middleware and the
// retention sweeper.
//
// AuditEntriesCapturedTotal counts successfully persisted audit entries, by
// action kind and by which writer persisted them ("primary" or "fallback").
// An alert on a sustained fallback rate is recommended: it means the primary
// audit store handle is failing while raw inserts still succeed.
//
// AuditCaptureFailuresTotal counts capture attempts that were absorbed after
// both writers failed, labelled by the stage that failed ("resolve", "write").
// These entries are lost by design (best-effort capture); the counter is the
// only durable trace besides the log line.
//
// AuditRetentionDeletedTotal counts rows removed by the retention sweeper.
var (
	AuditEntriesCapturedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_entries_captured_total",
			Help: "Total number of audit entries persisted, by action kind and writer path.",
		},
		[]string{"action", "writer"},
	)

	AuditCaptureFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_capture_failures_total",
			Help: "Total number of audit capture attempts absorbed after failure, by stage.",
		},
		[]string{"stage"},
	)

	AuditRetentionDeletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "audit_retention_deleted_total",
			Help: "Total number of audit entries deleted by the retention sweeper.",
		},
	)
)

// DBOpenConnections is a gauge of the sql.DB pool's open connections, sampled
// every 30 seconds by StartDBStatsCollector.
var DBOpenConnections = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "db_open_connections",
		Help: "Current number of open database connections in the pool.",
	},
)

// StartDBStatsCollector launches a background goroutine that samples sql.DB
// connection pool statistics every 30 seconds and updates the
// DBOpenConnections gauge. The goroutine exits when the database becomes
// unreachable, which happens when the application shuts down and defers
// db.Close().
func StartDBStatsCollector(db *sql.DB) {
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			if err := db.Ping(); err != nil {
				slog.Warn("db stats collector: database unreachable, stopping collector", "error", err)
				return
			}
			DBOpenConnections.Set(float64(db.Stats().OpenConnections))
		}
	}()
}
