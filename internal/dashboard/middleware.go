package dashboard

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDKey = "request_id"

// requestLogger tags each request with an X-Request-ID and logs it once
// the handler returns.
func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header("X-Request-ID", id)

		c.Next()

		log.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"request_id", id,
		)
	}
}

// simulatedLatency holds every request for d before handling it. A request
// cancelled while waiting is dropped without a response.
func simulatedLatency(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if hold(c, d) {
			c.Next()
		}
	}
}

// hold waits d and reports whether the request is still wanted.
func hold(c *gin.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-c.Request.Context().Done():
		c.Abort()
		return false
	}
}
