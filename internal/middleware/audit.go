package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-api/internal/models"
)

// Audit logs a structured entry for generate/save/export requests after the
// handler completes. The teacher persisted audit rows to a dedicated table;
// this domain has no equivalent audit_logs table, so entries go to the
// structured logger instead, tagged the same way the teacher tagged its rows.
func Audit(logger *zap.Logger, action, resource string) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		start := time.Now().UTC()
		c.Next()

		if c.Writer.Status() >= 400 {
			return
		}

		actorID := "anonymous"
		if claimsValue, ok := c.Get(ContextUserKey); ok {
			if claims, ok := claimsValue.(*models.AccessClaims); ok {
				actorID = claims.Subject
			}
		}

		logger.Sugar().Infow("audit",
			"action", action,
			"resource", resource,
			"actor_id", actorID,
			"path", c.FullPath(),
			"method", c.Request.Method,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"ip", c.ClientIP(),
		)
	}
}
