package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/account-service/internal/logger"
)

// Logging logs every HTTP request and its result.
type Logging struct {
	logger *logger.Logger
}

// NewLogging creates a new Logging middleware.
func NewLogging(logger *logger.Logger) *Logging {
	return &Logging{logger: logger}
}

// Handle logs method, path, status, duration and client IP for each request.
func (l *Logging) Handle(c *gin.Context) {
	start := time.Now()
	path := c.Request.URL.Path

	c.Next()

	duration := time.Since(start)
	status := c.Writer.Status()

	l.logger.Info("HTTP request completed",
		"method", c.Request.Method,
		"path", path,
		"status", status,
		"duration_ms", duration.Milliseconds(),
		"ip", c.ClientIP())

	if len(c.Errors) > 0 && status >= 500 {
		l.logger.Error("HTTP request failed",
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"error", c.Errors.Last().Error())
	}
}
