package audit

import (
	"reflect"
	"testing"
)

func TestSanitizeRedactsSensitiveFields(t *testing.T) {
	in := map[string]any{
		"nome":         "Maria",
		"senha":        "segredo",
		"password":     "hunter2",
		"token":        "abc",
		"refreshToken": "def",
		"accessToken":  "ghi",
	}

	got, ok := Sanitize(in).(map[string]any)
	if !ok {
		t.Fatalf("Sanitize returned %T, want map[string]any", Sanitize(in))
	}

	for _, key := range []string{"senha", "password", "token", "refreshToken", "accessToken"} {
		if got[key] != Redacted {
			t.Errorf("field %q = %v, want %q", key, got[key], Redacted)
		}
	}
	if got["nome"] != "Maria" {
		t.Errorf("non-sensitive field altered: nome = %v", got["nome"])
	}
}

func TestSanitizeDoesNotMutateInput(t *testing.T) {
	in := map[string]any{"senha": "segredo", "nome": "Maria"}
	Sanitize(in)
	if in["senha"] != "segredo" {
		t.Errorf("input mutated: senha = %v", in["senha"])
	}
}

func TestSanitizeNonMapUnchanged(t *testing.T) {
	inputs := []any{nil, "texto", 42, []any{"senha"}, map[int]string{1: "x"}}
	for _, in := range inputs {
		if got := Sanitize(in); !reflect.DeepEqual(got, in) {
			t.Errorf("Sanitize(%v) = %v, want unchanged", in, got)
		}
	}
}

func TestSanitizeIsShallow(t *testing.T) {
	nested := map[string]any{"senha": "segredo"}
	in := map[string]any{"credenciais": nested}

	got := Sanitize(in).(map[string]any)
	inner, ok := got["credenciais"].(map[string]any)
	if !ok {
		t.Fatalf("nested value type changed: %T", got["credenciais"])
	}
	if inner["senha"] != "segredo" {
		t.Errorf("nested senha = %v, want untouched (redaction is shallow)", inner["senha"])
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	in := map[string]any{"senha": "segredo", "nome": "Maria"}
	once := Sanitize(in)
	twice := Sanitize(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Sanitize not idempotent: %v != %v", once, twice)
	}
}

func TestSanitizeCaseSensitive(t *testing.T) {
	// Matching is exact: differently-cased keys pass through.
	in := map[string]any{"Senha": "segredo", "PASSWORD": "hunter2"}
	got := Sanitize(in).(map[string]any)
	if got["Senha"] != "segredo" || got["PASSWORD"] != "hunter2" {
		t.Errorf("case-variant keys were redacted: %v", got)
	}
}
