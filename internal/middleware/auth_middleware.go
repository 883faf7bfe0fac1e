package middleware

import (
	"errors"
	"net/http"
	"strings"

	"masar-finance/internal/auth"
	"masar-finance/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware validates the bearer token and exposes user_id,
// organization_id and role on the gin context.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found {
			tokenString = ""
		}

		if tokenString == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				tokenString = cookie
			}
		}

		if tokenString == "" {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Token not found", nil)
			c.Abort()
			return
		}

		claims, err := auth.Parse(secret, tokenString)
		if err != nil {
			code, message := "INVALID_TOKEN", "Invalid token"
			switch {
			case errors.Is(err, auth.ErrTokenExpired):
				code, message = "TOKEN_EXPIRED", "Token has expired"
			case errors.Is(err, auth.ErrMissingClaim):
				message = err.Error()
			}
			response.Error(c, http.StatusUnauthorized, code, message, nil)
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("organization_id", claims.OrganizationID)
		c.Set("role", claims.Role)

		c.Next()
	}
}
