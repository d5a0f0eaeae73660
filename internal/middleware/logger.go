package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"staffdocs/internal/logger"
)

// RequestLogger logs every request with structured fields and recovers
// from handler panics, turning them into a JSON 500.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		defer func() {
			if recovered := recover(); recovered != nil {
				err := fmt.Errorf("%v", recovered)
				requestEntry(c, start).WithFields(logrus.Fields{
					"type":  "panic",
					"error": err.Error(),
					"stack": string(debug.Stack()),
				}).Error("request panicked")

				c.JSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "INTERNAL_SERVER_ERROR",
						"message": "Internal Server Error",
					},
				})
				c.Abort()
				return
			}

			entry := requestEntry(c, start)
			for _, err := range c.Errors {
				entry.WithField("error", err.Error()).Error("request error")
			}

			status := c.Writer.Status()
			switch {
			case status >= http.StatusInternalServerError:
				entry.Error("request failed")
			case status >= http.StatusBadRequest:
				entry.Warn("request rejected")
			default:
				entry.Info("request")
			}
		}()

		c.Next()
	}
}

func requestEntry(c *gin.Context, start time.Time) *logrus.Entry {
	return logger.WithFields(logrus.Fields{
		"status":     c.Writer.Status(),
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"client_ip":  c.ClientIP(),
		"subject":    c.GetString("subject"),
		"latency":    time.Since(start).String(),
		"request_id": requestID(c),
	})
}

func requestID(c *gin.Context) string {
	id := c.GetHeader("X-Request-ID")
	if id == "" {
		id = c.GetHeader("X-Request-Id")
	}
	return id
}
