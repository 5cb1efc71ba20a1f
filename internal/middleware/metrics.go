// Package middleware provides the Gin HTTP middleware for the sales backend:
// request identification, identity extraction, rate limiting, request
// metrics, and the audit capture interceptor.
//
// Middleware ordering matters and is enforced in router.go:
//
//	Recovery → RequestID → Metrics → RateLimit → Identity → AuditCapture → Handler
//
// Identity runs before audit capture so captured entries carry the actor;
// capture runs last so it observes the final response status of the handler
// chain.
package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/AfonsoScheufele/sistema-vendas-backend-sub001/internal/telemetry"
)

// Metrics records two Prometheus series per request:
//
//   - http_requests_total{method, path, status}    — CounterVec
//   - http_request_duration_seconds{method, path}  — HistogramVec
//
// The path label comes from c.FullPath(), the matched route template
// (e.g. /clientes/:id), not the raw URL, so IDs do not explode label
// cardinality. Unmatched requests (404/405) are labelled "<no-route>".
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "<no-route>"
		}

		telemetry.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method, path, fmt.Sprintf("%d", c.Writer.Status())).Inc()
		telemetry.HTTPRequestDuration.WithLabelValues(
			c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
