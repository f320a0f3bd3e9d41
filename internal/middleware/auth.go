package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/frontdesk/pkg/auth"
	"github.com/jwalitptl/frontdesk/pkg/httputil"
)

const ContextStaffID = "staffID"

// AuthMiddleware accepts HS256 bearer tokens signed with the shared secret.
type AuthMiddleware struct {
	tokens auth.JWTService
}

func NewAuthMiddleware(secret string) *AuthMiddleware {
	return &AuthMiddleware{tokens: auth.NewJWTService(secret)}
}

// Authenticate verifies the JWT token and sets the staff member in context
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, httputil.NewErrorResponse("missing authorization header"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, httputil.NewErrorResponse("invalid authorization format"))
			return
		}

		claims, err := m.tokens.ValidateToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, httputil.NewErrorResponse("invalid token"))
			return
		}

		c.Set(ContextStaffID, claims.Subject)
		c.Next()
	}
}
