package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xyzhospital/frontdesk/util"
)

// RequestLogger records each HTTP request as an audit event. It relies on
// DatabaseMiddleware having set the store handle and util.SetAuditLoggerDB
// having been called during startup so events reach the audit_logs table.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		status := c.Writer.Status()

		details := map[string]interface{}{
			"method":      c.Request.Method,
			"path":        c.FullPath(),
			"raw_path":    c.Request.URL.Path,
			"status":      status,
			"duration_ms": duration.Milliseconds(),
			"query":       c.Request.URL.RawQuery,
		}

		var userID string
		if identity, ok := GetSessionUser(c); ok {
			userID = identity.UserID
			details["role"] = identity.Role
		}

		util.LogAuditEvent(util.AuditEvent{
			EventType: util.EventEndpointCall,
			UserID:    userID,
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
			Message:   fmt.Sprintf("%s %s -> %d", c.Request.Method, c.Request.URL.Path, status),
			Details:   details,
		})
	}
}
