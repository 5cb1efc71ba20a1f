package audit

// Redacted replaces the value of every sensitive field captured in a
// before/after snapshot.
const Redacted = "***"

// sensitiveFields is the fixed set of credential-shaped field names that must
// never appear un-redacted in a persisted snapshot. Matching is exact and
// case-sensitive, mirroring the JSON field names the API actually uses.
var sensitiveFields = map[string]struct{}{
	"senha":        {},
	"password":     {},
	"token":        {},
	"refreshToken": {},
	"accessToken":  {},
}

// Sanitize returns a copy of v with every top-level sensitive field replaced
// by "***". Non-map input (including nil) is returned unchanged. The input is
// never mutated.
//
// Redaction is deliberately shallow: only top-level credential-shaped fields
// are replaced. Nested objects are carried through as-is, which is a
// documented limitation of the capture pipeline, not a bug — request bodies
// in this API keep credentials at the top level.
func Sanitize(v any) any {
	m, ok := v.(map[string]any)
	if !ok {
		return v
	}
	out := make(map[string]any, len(m))
	for k, val := range m {
		if _, sensitive := sensitiveFields[k]; sensitive {
			out[k] = Redacted
			continue
		}
		out[k] = val
	}
	return out
}
