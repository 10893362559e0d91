package middleware

import (
	"net/http"

	"fitnessbooking/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// RequireRole ensures that the authenticated caller has the specified role
func RequireRole(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ctxRole)
		if role == "" {
			response.Abort(c, http.StatusUnauthorized, response.CodeUnauthorized, "Role not found in token")
			return
		}

		if role != requiredRole {
			response.Abort(c, http.StatusForbidden, response.CodeForbidden, "Access denied: insufficient permissions")
			return
		}

		c.Next()
	}
}
