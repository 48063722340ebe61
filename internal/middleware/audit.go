package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/vgp-compliance-api/internal/models"
	"github.com/noah-isme/vgp-compliance-api/pkg/middleware/requestid"
)

type auditWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type requestTrace struct {
	Route     string `json:"route"`
	Method    string `json:"method"`
	Status    int    `json:"status"`
	LatencyMS int64  `json:"latency_ms"`
	RequestID string `json:"request_id,omitempty"`
}

// Audit appends an audit entry for every request that ends below 400. The
// affected resource id is read from the idParam route parameter. A failed
// write never changes the response; it is attached to the gin errors so the
// request logger reports it.
func Audit(repo auditWriter, action, resource, idParam string) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()

		status := c.Writer.Status()
		if repo == nil || status >= http.StatusBadRequest {
			return
		}

		entry := &models.AuditLog{
			Action:    action,
			Resource:  resource,
			IPAddress: c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}
		if claims := CurrentUser(c); claims != nil {
			entry.UserID = &claims.UserID
		}
		if id := c.Param(idParam); id != "" {
			entry.ResourceID = &id
		}
		entry.NewValues, _ = json.Marshal(requestTrace{
			Route:     c.FullPath(),
			Method:    c.Request.Method,
			Status:    status,
			LatencyMS: time.Since(started).Milliseconds(),
			RequestID: requestid.Value(c),
		})

		if err := repo.CreateAuditLog(c.Request.Context(), entry); err != nil {
			_ = c.Error(fmt.Errorf("audit %s: %w", action, err))
		}
	}
}
