package audit

import (
	"net/http"
	"strings"
)

// denySubstrings excludes infrastructure endpoints from auditing wherever they
// appear in the path: health probes, statistics endpoints, the notification
// unread counter, and the audit trail's own read surface (auditing reads of
// the audit trail would make every operator query generate a new row).
var denySubstrings = []string{
	"/health",
	"/auditoria",
	"/estatisticas",
	"/notificacoes/nao-lidas",
}

// denyGetSuffixes excludes aggregate/lookup GET endpoints that are queried by
// dashboards on every page load and carry no per-record meaning.
var denyGetSuffixes = []string{
	"/stats",
	"/tipos",
	"/categorias",
	"/novos",
	"/pipeline/snapshot",
}

// denyFragments excludes document generation and configuration reads for all
// methods.
var denyFragments = []string{
	"/pdf",
	"/download",
	"/export",
	"/config",
}

// ShouldAudit decides whether a request with the given method and path should
// produce an audit record. It is the sole gate on the capture path: when it
// returns false no entry is ever written.
//
// The checks short-circuit in a fixed order: explicit opt-out, then the
// infrastructure denylist, then the GET-specific noise heuristics, then the
// document/config fragments. The GET heuristic treats shallow collection
// reads (at most two path segments with a non-numeric final segment) as list
// noise rather than single-resource views. That boundary misclassifies
// single-resource GETs whose identifier is non-numeric (UUID path segments);
// feature modules have come to depend on the exact boundary, so it is kept
// as is.
func ShouldAudit(method, path string, optOut bool) bool {
	if optOut {
		return false
	}
	for _, s := range denySubstrings {
		if strings.Contains(path, s) {
			return false
		}
	}
	if method == http.MethodGet {
		for _, suffix := range denyGetSuffixes {
			if strings.HasSuffix(path, suffix) {
				return false
			}
		}
		segments := splitPath(path)
		if len(segments) <= 2 {
			if len(segments) == 0 || !isNumeric(segments[len(segments)-1]) {
				return false
			}
		}
	}
	for _, s := range denyFragments {
		if strings.Contains(path, s) {
			return false
		}
	}
	return true
}

// splitPath returns the non-empty segments of a URL path, query string
// excluded.
func splitPath(path string) []string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	var segments []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

// isNumeric reports whether s is a non-empty string of ASCII digits.
func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
