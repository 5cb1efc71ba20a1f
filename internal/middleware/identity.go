// identity.go extracts the caller's identity from a bearer token and the
// tenant from the configured header, making both available to handlers and
// to the audit capture interceptor through the gin context.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/AfonsoScheufele/sistema-vendas-backend-sub001/internal/audit"
	"github.com/AfonsoScheufele/sistema-vendas-backend-sub001/internal/auth"
)

// Identity resolves the caller without requiring authentication. A valid
// bearer token sets user_id, user_name and tenant_id on the context; an
// absent or invalid token leaves the request anonymous, which the audit
// pipeline attributes to the system actor. Route protection is RequireAuth's
// job, not this middleware's.
func Identity(tokens *auth.TokenService, tenantHeader string) gin.HandlerFunc {
	if tenantHeader == "" {
		tenantHeader = "X-Tenant-ID"
	}
	return func(c *gin.Context) {
		if tenant := c.GetHeader(tenantHeader); tenant != "" {
			c.Set("tenant_id", tenant)
		}

		if token := bearerToken(c); token != "" {
			if claims, err := tokens.Validate(token); err == nil {
				c.Set("user_id", claims.UserID)
				c.Set("user_name", claims.UserName)
				// A tenant baked into the token wins over the header.
				if claims.TenantID != "" {
					c.Set("tenant_id", claims.TenantID)
				}
			}
		}

		if c.GetString("tenant_id") == "" {
			c.Set("tenant_id", audit.DefaultTenant)
		}

		c.Next()
	}
}

// RequireAuth aborts with 401 unless Identity resolved an authenticated user.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("user_id") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"erro": "autenticacao necessaria",
			})
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}
