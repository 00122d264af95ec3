package middleware

import (
	"net/http"
	"strings"

	"consultly/utils"

	"github.com/gin-gonic/gin"
)

// JWTAuthMiddleware resolves the caller from the bearer token issued by
// the external auth service and stores the identity on the request
// context. The engine trusts this input; it never issues tokens itself.
func JWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Insufficient authorization",
			})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Insufficient authorization",
			})
			return
		}

		callerID, role, err := utils.ExtractCallerFromToken(tokenString)
		if err != nil || callerID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Insufficient authorization",
			})
			return
		}

		c.Set("callerID", callerID)
		c.Set("callerRole", role)
		c.Next()
	}
}
