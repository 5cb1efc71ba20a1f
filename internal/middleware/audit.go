// audit.go implements the audit capture interceptor: Gin middleware that
// observes every request, decides whether it is audit-worthy, derives a
// sanitized record of what happened, and persists it asynchronously through a
// primary/fallback writer pair. Nothing on this path may ever slow down or
// fail the request being observed.
package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AfonsoScheufele/sistema-vendas-backend-sub001/internal/audit"
	"github.com/AfonsoScheufele/sistema-vendas-backend-sub001/internal/db/models"
	"github.com/AfonsoScheufele/sistema-vendas-backend-sub001/internal/safego"
	"github.com/AfonsoScheufele/sistema-vendas-backend-sub001/internal/telemetry"
)

const (
	// auditOptionsKey carries per-route audit.Options set by Annotate.
	auditOptionsKey = "audit_options"
	// auditBeforeKey carries the prior-state hint set by SetAuditBefore.
	auditBeforeKey = "audit_before"

	// maxResolveAttempts bounds how many times primary-writer resolution is
	// retried across separate requests before capture is permanently degraded
	// to the fallback writer.
	maxResolveAttempts = 3

	// maxSnapshotBytes caps how large a request body may be to still be
	// captured as an after-state snapshot. Larger bodies are passed through
	// to the handler untouched and simply not snapshotted.
	maxSnapshotBytes = 64 * 1024

	// writeTimeout bounds one asynchronous persistence attempt. The
	// originating request has already been answered by then, so this timeout
	// protects the worker pool, not request latency.
	writeTimeout = 5 * time.Second
)

// Annotate returns route middleware that attaches per-route audit metadata.
// Feature modules use it to override inference or opt a route out:
//
//	r.POST("/auth/login", middleware.Annotate(audit.Options{Action: audit.ActionLogin}), h.Login)
func Annotate(opts audit.Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(auditOptionsKey, opts)
		c.Next()
	}
}

// SkipAudit marks a route as non-auditable regardless of any other rule.
func SkipAudit() gin.HandlerFunc {
	return Annotate(audit.Options{OptOut: true})
}

// SetAuditBefore stashes the resource state as it was before the handler
// mutated it, so update/delete entries carry a before-state snapshot.
// Handlers call it after loading the row and before writing.
func SetAuditBefore(c *gin.Context, state any) {
	c.Set(auditBeforeKey, state)
}

// AuditCapture is the capture interceptor. The primary writer is looked up
// lazily through resolve because the audit store may finish initialising
// after the router starts serving; resolution is retried across requests up
// to maxResolveAttempts and then abandoned for the process lifetime. When the
// primary writer is missing or its write fails, the fallback writer (a raw
// insert handle) is tried; if that also fails the entry is logged and
// dropped.
//
// Resolution state is per-instance, not process-global, so independent
// instances can coexist in tests. The mutex only guards resolution
// bookkeeping; concurrent captures share the resolved writer freely.
type AuditCapture struct {
	resolve      func() audit.Writer
	fallback     audit.Writer
	tenantHeader string

	mu       sync.Mutex
	primary  audit.Writer
	attempts int
	disabled bool
}

// NewAuditCapture creates the interceptor. resolve may return nil until the
// primary store is ready; fallback may be nil when no raw handle exists.
func NewAuditCapture(resolve func() audit.Writer, fallback audit.Writer, tenantHeader string) *AuditCapture {
	if tenantHeader == "" {
		tenantHeader = "X-Tenant-ID"
	}
	return &AuditCapture{
		resolve:      resolve,
		fallback:     fallback,
		tenantHeader: tenantHeader,
	}
}

// Handler returns the Gin middleware. The request body is teed before the
// handler runs so mutating requests can be snapshotted; everything else
// happens after c.Next(), and persistence runs on a recovered background
// goroutine so the caller never waits on an audit write. Once started, a
// write always runs to completion or failure; cancellation of the original
// request's connection is not propagated.
func (a *AuditCapture) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body any
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			body = teeRequestBody(c)
		}

		c.Next()

		opts := routeOptions(c)
		if !audit.ShouldAudit(c.Request.Method, c.Request.URL.Path, opts.OptOut) {
			return
		}

		// The gin context is recycled once this handler returns, so the
		// entry is fully materialised here and only persistence is deferred.
		entry := a.buildEntry(c, opts, body)
		safego.Go(func() {
			a.persist(entry)
		})
	}
}

// buildEntry assembles one audit record from the request. Every field has a
// safe default; this never fails.
func (a *AuditCapture) buildEntry(c *gin.Context, opts audit.Options, body any) *models.AuditLog {
	method := c.Request.Method
	path := c.Request.URL.Path

	tenantID := c.GetString("tenant_id")
	if tenantID == "" {
		tenantID = c.GetHeader(a.tenantHeader)
	}
	if tenantID == "" {
		tenantID = audit.DefaultTenant
	}

	entry := &models.AuditLog{
		TenantID:   tenantID,
		Endpoint:   strPtr(path),
		HTTPMethod: strPtr(method),
	}

	if ip := c.ClientIP(); ip != "" {
		entry.IPAddress = strPtr(ip)
	}
	if ua := c.Request.UserAgent(); ua != "" {
		entry.UserAgent = strPtr(ua)
	}

	if actorID := c.GetString("user_id"); actorID != "" {
		entry.ActorID = strPtr(actorID)
		if actorName := c.GetString("user_name"); actorName != "" {
			entry.ActorName = strPtr(actorName)
		}
	} else {
		entry.ActorName = strPtr(audit.SystemActor)
	}

	action := audit.InferAction(method, opts.Action)
	entry.Action = string(action)

	entity := opts.Entity
	if entity == "" {
		entity = audit.InferEntity(path)
	}
	entry.Entity = entity

	entityID := c.Param("id")
	if entityID == "" {
		entityID = idFromBody(body)
	}
	if entityID != "" {
		entry.EntityID = strPtr(entityID)
	}

	if opts.Description != "" {
		entry.Description = opts.Description
	} else {
		entry.Description = audit.Describe(action, entity, entityID)
	}

	switch method {
	case http.MethodPut, http.MethodPatch, http.MethodDelete:
		if before, ok := c.Get(auditBeforeKey); ok {
			entry.BeforeState = audit.Sanitize(normalizeState(before))
		}
	}
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		if body != nil {
			entry.AfterState = audit.Sanitize(body)
		}
	}

	return entry
}

// persist writes the entry through the primary writer, falling back to the
// raw writer on failure. Every error is logged and absorbed.
func (a *AuditCapture) persist(entry *models.AuditLog) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if primary := a.resolvePrimary(); primary != nil {
		if err := primary.Write(ctx, entry); err == nil {
			telemetry.AuditEntriesCapturedTotal.WithLabelValues(entry.Action, "primary").Inc()
			return
		} else {
			slog.Error("audit: primary write failed, trying fallback",
				"entity", entry.Entity, "action", entry.Action, "error", err)
		}
	}

	if a.fallback != nil {
		if err := a.fallback.Write(ctx, entry); err == nil {
			telemetry.AuditEntriesCapturedTotal.WithLabelValues(entry.Action, "fallback").Inc()
			return
		} else {
			slog.Error("audit: fallback write failed, entry dropped",
				"entity", entry.Entity, "action", entry.Action, "error", err)
		}
	}

	telemetry.AuditCaptureFailuresTotal.WithLabelValues("write").Inc()
}

// resolvePrimary returns the primary writer, attempting lazy resolution while
// attempts remain. After maxResolveAttempts failed resolutions the primary
// path is abandoned for the rest of the process lifetime. Two continuations
// racing here may both attempt resolution; the bound is monotonic, not exact,
// which is acceptable for a best-effort path.
func (a *AuditCapture) resolvePrimary() audit.Writer {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.primary != nil {
		return a.primary
	}
	if a.disabled {
		return nil
	}

	a.attempts++
	if a.attempts > maxResolveAttempts {
		a.disabled = true
		slog.Warn("audit: primary store unavailable after repeated resolution attempts; "+
			"capture degraded to fallback writes for the remainder of this process",
			"attempts", maxResolveAttempts)
		telemetry.AuditCaptureFailuresTotal.WithLabelValues("resolve").Inc()
		return nil
	}

	if a.resolve != nil {
		if w := a.resolve(); w != nil {
			a.primary = w
			return w
		}
	}
	slog.Warn("audit: primary store not yet available", "attempt", a.attempts)
	return nil
}

// routeOptions returns the per-route metadata, or zero Options.
func routeOptions(c *gin.Context) audit.Options {
	if v, ok := c.Get(auditOptionsKey); ok {
		if opts, ok := v.(audit.Options); ok {
			return opts
		}
	}
	return audit.Options{}
}

// teeRequestBody reads the request body, restores it for the handler, and
// returns the decoded JSON payload when it is small enough to snapshot.
// Any read or decode problem yields nil; the handler always sees the body it
// would have seen without auditing.
func teeRequestBody(c *gin.Context) any {
	if c.Request.Body == nil {
		return nil
	}
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.Request.Body = io.NopCloser(bytes.NewReader(nil))
		return nil
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(data))

	if len(data) == 0 || len(data) > maxSnapshotBytes {
		return nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil
	}
	return v
}

// idFromBody extracts an "id" field from a decoded request body, if any.
func idFromBody(body any) string {
	m, ok := body.(map[string]any)
	if !ok {
		return ""
	}
	switch id := m["id"].(type) {
	case string:
		return id
	case float64:
		return fmt.Sprintf("%.0f", id)
	default:
		return ""
	}
}

// normalizeState converts an arbitrary value (usually a model struct) into
// the generic JSON shape the sanitizer operates on.
func normalizeState(v any) any {
	if v == nil {
		return nil
	}
	if m, ok := v.(map[string]any); ok {
		return m
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}

func strPtr(s string) *string { return &s }
