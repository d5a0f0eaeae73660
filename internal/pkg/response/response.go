package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Envelope helpers shared by all handlers. Error codes are stable strings
// clients can switch on (NOT_FOUND, STORAGE_ERROR, ...), independent of the
// human-readable message.

func Success(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, "NOT_FOUND", message)
}
