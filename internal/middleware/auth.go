package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tikaparse/internal/auth"
	"tikaparse/internal/domain"
)

const (
	ContextKeyClient = "client"
	ContextKeyClaims = "claims"
)

// TokenValidator validates bearer tokens.
type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// AuthMiddleware returns Gin middleware that validates JWT tokens and injects
// the calling client into the context.
func AuthMiddleware(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "UNAUTHORIZED", "message": "missing or invalid authorization header"},
			})
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := tokens.Validate(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "UNAUTHORIZED", "message": "invalid or expired token"},
			})
			return
		}

		c.Set(ContextKeyClient, claims.Client)
		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

// GetClient extracts the authenticated client name from the Gin context.
func GetClient(c *gin.Context) (string, error) {
	val, exists := c.Get(ContextKeyClient)
	if !exists {
		return "", domain.ErrUnauthorized
	}
	return val.(string), nil
}
