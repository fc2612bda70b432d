package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/exstem-online/internal/model"
	"github.com/stemsi/exstem-online/internal/response"
)

// ContextKeyIdentity is the Gin context key for the current identity.
const ContextKeyIdentity = "identity"

// IdentityLoader resolves the identity bound to a login scope.
type IdentityLoader interface {
	GetCurrentIdentity(ctx context.Context, scope string) (*model.Identity, error)
}

// LoadIdentity resolves the identity stored under the token's scope. A valid
// token whose scope was logged out is rejected.
func LoadIdentity(ids IdentityLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		identity, err := ids.GetCurrentIdentity(c.Request.Context(), claims.Scope())
		if err != nil {
			response.AbortFail(c, http.StatusInternalServerError, response.ErrInternal)
			return
		}
		if identity == nil || identity.Role != claims.Role || identity.ID != claims.Subject {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrSessionInvalidated)
			return
		}

		c.Set(ContextKeyIdentity, identity)
		c.Next()
	}
}

// GetIdentity retrieves the current identity from the Gin context.
func GetIdentity(c *gin.Context) *model.Identity {
	val, exists := c.Get(ContextKeyIdentity)
	if !exists {
		return nil
	}
	identity, ok := val.(*model.Identity)
	if !ok {
		return nil
	}
	return identity
}
