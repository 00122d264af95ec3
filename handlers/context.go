package handlers

import "github.com/gin-gonic/gin"

// Context keys set by the auth middleware.
const (
	ContextCallerID   = "callerID"
	ContextCallerRole = "callerRole"
)

// CallerID returns the authenticated caller's id, resolved by the auth
// middleware from the bearer token.
func CallerID(c *gin.Context) string {
	return c.GetString(ContextCallerID)
}
