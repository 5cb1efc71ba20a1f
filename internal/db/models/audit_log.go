// Package models - audit_log.go defines the AuditLog model: one immutable
// record of an observed action, capturing tenant, actor, action, affected
// entity, sanitized before/after snapshots, and request provenance.
package models

import "time"

// AuditLog represents one captured action. Rows are append-only: the ID is
// assigned by the database at insert, OccurredAt is set at insert time, and a
// row is never updated afterwards — only the retention sweeper deletes.
type AuditLog struct {
	ID          int64     `db:"id" json:"id"`
	TenantID    string    `db:"tenant_id" json:"tenantId"`
	ActorID     *string   `db:"actor_id" json:"actorId,omitempty"` // nil for system actions
	ActorName   *string   `db:"actor_name" json:"actorName,omitempty"`
	Action      string    `db:"action" json:"actionKind"` // CREATE, UPDATE, DELETE, VIEW, LOGIN, LOGOUT or custom
	Entity      string    `db:"entity" json:"entityName"` // "Clientes", "Pedidos", ...
	EntityID    *string   `db:"entity_id" json:"entityId,omitempty"`
	Description string    `db:"description" json:"description"`
	BeforeState any       `db:"-" json:"beforeState,omitempty"` // sanitized snapshot, stored as JSONB
	AfterState  any       `db:"-" json:"afterState,omitempty"`  // sanitized snapshot, stored as JSONB
	IPAddress   *string   `db:"ip_address" json:"ipAddress,omitempty"`
	UserAgent   *string   `db:"user_agent" json:"userAgent,omitempty"`
	Endpoint    *string   `db:"endpoint" json:"endpoint,omitempty"`
	HTTPMethod  *string   `db:"http_method" json:"httpMethod,omitempty"`
	OccurredAt  time.Time `db:"occurred_at" json:"occurredAt"`
}
