package auth

import (
	"testing"
	"time"
)

const testSecret = "test-jwt-secret-that-is-32-chars!!"

func TestGenerateAndValidate(t *testing.T) {
	svc := NewTokenService(testSecret)

	token, err := svc.Generate("u-9", "Joana", "loja-1", time.Hour)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	claims, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.UserID != "u-9" {
		t.Errorf("UserID = %q", claims.UserID)
	}
	if claims.UserName != "Joana" {
		t.Errorf("UserName = %q", claims.UserName)
	}
	if claims.TenantID != "loja-1" {
		t.Errorf("TenantID = %q", claims.TenantID)
	}
	if claims.Issuer != "sistema-vendas" {
		t.Errorf("Issuer = %q", claims.Issuer)
	}
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	svc := NewTokenService(testSecret)

	token, err := svc.Generate("u-9", "Joana", "loja-1", -time.Minute)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := svc.Validate(token); err == nil {
		t.Error("expired token validated")
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, err := NewTokenService(testSecret).Generate("u-9", "Joana", "loja-1", time.Hour)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := NewTokenService("other-secret-of-sufficient-length").Validate(token); err == nil {
		t.Error("token signed with a different secret validated")
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	svc := NewTokenService(testSecret)
	if _, err := svc.Validate("not-a-token"); err == nil {
		t.Error("garbage token validated")
	}
}

func TestEmptySecretRejectsEverything(t *testing.T) {
	svc := NewTokenService("")
	if _, err := svc.Generate("u", "n", "t", time.Hour); err == nil {
		t.Error("Generate should fail without a secret")
	}
	if _, err := svc.Validate("anything"); err == nil {
		t.Error("Validate should fail without a secret")
	}
}
