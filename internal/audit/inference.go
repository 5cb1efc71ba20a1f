package audit

import (
	"fmt"
	"net/http"
	"strings"
)

// UnknownEntity is returned when no meaningful path segment remains after
// filtering.
const UnknownEntity = "Desconhecido"

// verbs maps each predeclared action to the Portuguese verb used when
// generating descriptions.
var verbs = map[Action]string{
	ActionCreate: "Criou",
	ActionUpdate: "Atualizou",
	ActionDelete: "Excluiu",
	ActionView:   "Visualizou",
	ActionLogin:  "Fez login",
	ActionLogout: "Fez logout",
}

// InferAction maps an HTTP method to an action kind. An explicit non-empty
// action always wins over inference.
func InferAction(method string, explicit Action) Action {
	if explicit != "" {
		return explicit
	}
	switch method {
	case http.MethodPost:
		return ActionCreate
	case http.MethodPut, http.MethodPatch:
		return ActionUpdate
	case http.MethodDelete:
		return ActionDelete
	default:
		return ActionView
	}
}

// InferEntity derives a human-readable entity name from a request path. Empty
// segments, purely numeric segments (record identifiers), and the literal
// "api" prefix are dropped; the last remaining segment is converted from
// kebab-case to Title Case words. "/api/notas-fiscais/12" → "Notas Fiscais".
func InferEntity(path string) string {
	var candidates []string
	for _, s := range splitPath(path) {
		if s == "api" || isNumeric(s) {
			continue
		}
		candidates = append(candidates, s)
	}
	if len(candidates) == 0 {
		return UnknownEntity
	}
	words := strings.Split(candidates[len(candidates)-1], "-")
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}

// Describe generates the default description sentence for an audit record,
// e.g. "Atualizou Clientes #42".
func Describe(action Action, entity, entityID string) string {
	verb := verbs[action]
	if verb == "" {
		verb = string(action)
	}
	if entityID != "" {
		return fmt.Sprintf("%s %s #%s", verb, entity, entityID)
	}
	return fmt.Sprintf("%s %s", verb, entity)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
