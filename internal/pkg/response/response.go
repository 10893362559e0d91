// Package response writes the JSON envelope shared by every endpoint:
// {"success": true, "data": ...} or {"success": false, "error": {...}}.
package response

import "github.com/gin-gonic/gin"

const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeInvalidTime  = "INVALID_TIME"
	CodeNotFound     = "NOT_FOUND"
	CodeDuplicate    = "DUPLICATE_BOOKING"
	CodeNoCapacity   = "NO_CAPACITY"
	CodeClassStarted = "CLASS_STARTED"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeRateLimited  = "RATE_LIMITED"
	CodeInternal     = "INTERNAL_ERROR"
)

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, errorBody(code, message, nil))
}

func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, errorBody(code, message, details))
}

// Abort writes an error envelope and stops the handler chain.
func Abort(c *gin.Context, statusCode int, code string, message string) {
	c.AbortWithStatusJSON(statusCode, errorBody(code, message, nil))
}

func errorBody(code, message string, details any) gin.H {
	body := gin.H{
		"code":    code,
		"message": message,
	}
	if details != nil {
		body["details"] = details
	}
	return gin.H{
		"success": false,
		"error":   body,
	}
}
