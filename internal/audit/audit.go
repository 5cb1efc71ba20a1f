// Package audit contains the decision core of the audit trail pipeline: the
// route classifier that decides whether a request is audit-worthy, the
// entity/action inferencer that derives a human-readable record from the HTTP
// method and path, and the sanitizer that redacts credential-shaped fields
// from captured payloads. Audit records are intentionally separate from
// application logs because they have different consumers and retention
// requirements — application logs are ephemeral debug output consumed by
// on-call engineers, while audit records are immutable rows consumed by
// operators and subject to a configurable retention horizon.
//
// Everything in this package is pure and side-effect free. Persistence lives
// behind the Writer interface so the capture middleware can try a primary
// store-backed writer and fall back to a raw database insert without either
// path knowing about the other.
package audit

// Action classifies what an audited request did to its target entity.
// Beyond the predeclared constants, feature modules may supply any custom
// string through route annotation.
type Action string

const (
	ActionCreate Action = "CREATE"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
	ActionView   Action = "VIEW"
	ActionLogin  Action = "LOGIN"
	ActionLogout Action = "LOGOUT"
)

// DefaultTenant is recorded when a request carries no tenant identifier.
const DefaultTenant = "default-tenant"

// SystemActor is the actor name attributed to requests with no authenticated
// identity.
const SystemActor = "Sistema"

// Options is the per-route metadata a feature module may attach to override
// inference or opt the route out of auditing entirely.
type Options struct {
	// Action overrides the HTTP-method-based action inference.
	Action Action
	// Entity overrides the path-based entity name inference.
	Entity string
	// Description overrides the generated description sentence.
	Description string
	// OptOut excludes the route from auditing regardless of any other rule.
	OptOut bool
}
