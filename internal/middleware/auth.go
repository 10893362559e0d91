package middleware

import (
	"net/http"
	"strings"

	"fitnessbooking/internal/pkg/jwt"
	"fitnessbooking/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	ctxSubject = "staff_subject"
	ctxRole    = "role"
)

// JWTAuth validates the bearer token and stores its subject and role on the
// context.
func JWTAuth(tokens *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" {
			response.Abort(c, http.StatusUnauthorized, response.CodeUnauthorized, "Authorization header is required")
			return
		}

		if !strings.HasPrefix(h, "Bearer ") {
			response.Abort(c, http.StatusUnauthorized, response.CodeUnauthorized, "Invalid Authorization header")
			return
		}

		tokenStr := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
		if tokenStr == "" {
			response.Abort(c, http.StatusUnauthorized, response.CodeUnauthorized, "Empty token")
			return
		}

		claims, err := tokens.ValidateToken(tokenStr)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, response.CodeUnauthorized, "Invalid token")
			return
		}

		c.Set(ctxSubject, claims.Subject)
		c.Set(ctxRole, claims.Role)

		c.Next()
	}
}

// StaffOnly chains token validation with the staff role check.
func StaffOnly(tokens *jwt.Service) []gin.HandlerFunc {
	return []gin.HandlerFunc{JWTAuth(tokens), RequireRole(jwt.RoleStaff)}
}
