package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/exstem-online/internal/model"
	"github.com/stemsi/exstem-online/internal/response"
	"github.com/stemsi/exstem-online/internal/service"
)

const (
	// ContextKeyClaims is the Gin context key for JWT claims.
	ContextKeyClaims = "claims"
)

var errTokenMissing = errors.New("authorization header or token query required")

// TokenValidator parses login tokens.
type TokenValidator interface {
	ValidateToken(token string) (*service.Claims, error)
}

// RequireStudentJWT validates a student JWT from the Authorization header.
func RequireStudentJWT(auth TokenValidator) gin.HandlerFunc {
	return requireRole(auth, model.RoleStudent, response.ErrStudentAccessOnly)
}

// RequireAdminJWT validates an admin JWT from the Authorization header.
func RequireAdminJWT(auth TokenValidator) gin.HandlerFunc {
	return requireRole(auth, model.RoleAdmin, response.ErrAdminAccessOnly)
}

// RequireAnyJWT validates a token of either role.
func RequireAnyJWT(auth TokenValidator) gin.HandlerFunc {
	return requireRole(auth, "", "")
}

func requireRole(auth TokenValidator, role model.Role, denied response.ErrCode) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := extractAndValidateClaims(c, auth)
		if err != nil {
			if errors.Is(err, errTokenMissing) {
				response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
				return
			}
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
			return
		}

		if role != "" && claims.Role != role {
			response.AbortFail(c, http.StatusForbidden, denied)
			return
		}

		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

// GetClaims retrieves the JWT claims from the Gin context.
func GetClaims(c *gin.Context) *service.Claims {
	val, exists := c.Get(ContextKeyClaims)
	if !exists {
		return nil
	}
	claims, ok := val.(*service.Claims)
	if !ok {
		return nil
	}
	return claims
}

func extractAndValidateClaims(c *gin.Context, auth TokenValidator) (*service.Claims, error) {
	tokenStr := ""

	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			tokenStr = parts[1]
		}
	}

	// Browsers cannot set headers on WebSocket upgrades.
	if tokenStr == "" {
		tokenStr = c.Query("token")
	}

	if tokenStr == "" {
		return nil, errTokenMissing
	}

	return auth.ValidateToken(tokenStr)
}
