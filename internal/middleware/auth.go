package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/autostock/backend/internal/models"
	"github.com/autostock/backend/internal/scope"
	"github.com/autostock/backend/pkg/response"
)

// ContextPrincipal is the gin context key for the authenticated principal.
const ContextPrincipal = scope.ContextPrincipal

// UserLoader fetches the user row behind a token. The row is reloaded per
// request so deactivation takes effect immediately, not at token expiry.
type UserLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// TokenValidator resolves a bearer token to the user ID it was issued for.
type TokenValidator func(token string) (uuid.UUID, error)

// Auth validates the bearer token, reloads the principal, and rejects
// inactive accounts. Handlers downstream read the principal with Principal.
func Auth(validate TokenValidator, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}
		userID, err := validate(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}

		u, err := users.GetByID(c.Request.Context(), userID)
		if err != nil || u == nil || !u.Active {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(ContextPrincipal, scope.PrincipalFromUser(u))
		c.Next()
	}
}

// Principal returns the authenticated principal set by Auth.
func Principal(c *gin.Context) scope.Principal {
	p, _ := c.MustGet(ContextPrincipal).(scope.Principal)
	return p
}

// RequireRole allows only the given roles. Finer tenant checks stay with the
// scope guard in handlers; this just gates route groups.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		p := Principal(c)
		if _, ok := allowed[p.Role]; !ok {
			response.Forbidden(c, "insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}
