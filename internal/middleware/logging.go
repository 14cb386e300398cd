package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RequestLogger logs each handled request with method, path, status, and
// latency. Streaming endpoints log once the stream finishes.
func RequestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.FullPath(),
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}
		if len(c.Errors) > 0 {
			logger.WithFields(fields).WithField("errors", c.Errors.String()).Warn("Request completed with errors")
			return
		}
		logger.WithFields(fields).Info("Request completed")
	}
}
