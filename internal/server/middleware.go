package server

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// recovery turns handler panics into a 500 carrying a correlation ID.
// The full stack trace is only logged server-side.
func (s *Server) recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				correlationID := uuid.NewString()

				s.logger.WithFields(logrus.Fields{
					"correlation_id": correlationID,
					"panic":          fmt.Sprintf("%v", r),
					"path":           c.Request.URL.Path,
					"stack":          string(debug.Stack()),
				}).Error("handler panic")

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": fmt.Sprintf("internal error (correlation_id: %s)", correlationID),
				})
			}
		}()
		c.Next()
	}
}

// requestLogger logs every request at debug level.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
		}).Debug("request handled")
	}
}
