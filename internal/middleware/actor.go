package middleware

import (
	"net/http"
	"strings"

	"github.com/dariast03/reparo-sys-sub001/internal/dto"
	"github.com/dariast03/reparo-sys-sub001/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	HeaderActorID        = "X-Actor-ID"
	HeaderIdempotencyKey = "Idempotency-Key"

	CtxActorID = "actor_id"
)

// Actor reads the acting user set by the upstream gateway and attaches it to
// the request context. Requests without the header pass through; write
// operations reject them in the service layer.
func Actor(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(HeaderActorID))
		if raw == "" {
			c.Next()
			return
		}
		id, err := uuid.Parse(raw)
		if err != nil || id == uuid.Nil {
			log.Warn("invalid actor header", zap.String("value", raw))
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewUnauthorizedError("invalid "+HeaderActorID+" header"))
			return
		}
		c.Set(CtxActorID, id.String())
		c.Request = c.Request.WithContext(service.WithActor(c.Request.Context(), id))
		c.Next()
	}
}

// IdempotencyKey returns the trimmed client key, empty when absent.
func IdempotencyKey(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader(HeaderIdempotencyKey))
}
