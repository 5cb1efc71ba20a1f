package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AfonsoScheufele/sistema-vendas-backend-sub001/internal/audit"
	"github.com/AfonsoScheufele/sistema-vendas-backend-sub001/internal/auth"
)

const testSecret = "test-jwt-secret-that-is-32-chars!!"

func identityRouter(tokens *auth.TokenService) *gin.Engine {
	r := gin.New()
	r.Use(Identity(tokens, "X-Tenant-ID"))
	r.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"userId":   c.GetString("user_id"),
			"userName": c.GetString("user_name"),
			"tenantId": c.GetString("tenant_id"),
		})
	})
	r.GET("/protegido", RequireAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestIdentityWithValidToken(t *testing.T) {
	tokens := auth.NewTokenService(testSecret)
	token, err := tokens.Generate("u-9", "Joana", "loja-1", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	identityRouter(tokens).ServeHTTP(rec, req)

	body := rec.Body.String()
	for _, want := range []string{`"userId":"u-9"`, `"userName":"Joana"`, `"tenantId":"loja-1"`} {
		if !strings.Contains(body, want) {
			t.Errorf("body %s missing %s", body, want)
		}
	}
}

func TestIdentityAnonymousDefaultsTenant(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	rec := httptest.NewRecorder()
	identityRouter(auth.NewTokenService(testSecret)).ServeHTTP(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, `"userId":""`) {
		t.Errorf("anonymous request should carry no user: %s", body)
	}
	if !strings.Contains(body, `"tenantId":"`+audit.DefaultTenant+`"`) {
		t.Errorf("missing default tenant: %s", body)
	}
}

func TestIdentityTenantHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("X-Tenant-ID", "loja-7")
	rec := httptest.NewRecorder()
	identityRouter(auth.NewTokenService(testSecret)).ServeHTTP(rec, req)

	if !strings.Contains(rec.Body.String(), `"tenantId":"loja-7"`) {
		t.Errorf("tenant header ignored: %s", rec.Body.String())
	}
}

func TestIdentityTokenTenantWinsOverHeader(t *testing.T) {
	tokens := auth.NewTokenService(testSecret)
	token, err := tokens.Generate("u-9", "Joana", "loja-1", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Tenant-ID", "loja-7")
	rec := httptest.NewRecorder()
	identityRouter(tokens).ServeHTTP(rec, req)

	if !strings.Contains(rec.Body.String(), `"tenantId":"loja-1"`) {
		t.Errorf("token tenant should win: %s", rec.Body.String())
	}
}

func TestIdentityInvalidTokenIsAnonymous(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer invalid")
	rec := httptest.NewRecorder()
	identityRouter(auth.NewTokenService(testSecret)).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("invalid token should not block the request: %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"userId":""`) {
		t.Errorf("invalid token must not resolve an identity: %s", rec.Body.String())
	}
}

func TestRequireAuth(t *testing.T) {
	tokens := auth.NewTokenService(testSecret)
	router := identityRouter(tokens)

	req := httptest.NewRequest(http.MethodGet, "/protegido", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous = %d, want 401", rec.Code)
	}

	token, err := tokens.Generate("u-9", "Joana", "loja-1", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	req = httptest.NewRequest(http.MethodGet, "/protegido", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("authenticated = %d, want 200", rec.Code)
	}
}
