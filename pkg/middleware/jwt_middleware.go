package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tripsync/pkg/utils"
)

// OperatorGuard protects the diagnostic routes. It expects a bearer token
// issued by utils.CreateOperatorToken.
func OperatorGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			utils.RespondError(c, http.StatusUnauthorized, "Authorization header missing or invalid")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := utils.ValidateToken(tokenString)
		if err != nil {
			utils.RespondError(c, http.StatusUnauthorized, "Invalid or expired token")
			c.Abort()
			return
		}
		if claims.Role != "operator" {
			utils.RespondError(c, http.StatusForbidden, "Forbidden: insufficient permissions")
			c.Abort()
			return
		}

		c.Set("operator", claims.Subject)
		c.Next()
	}
}
