package server

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tiffinlabs/dabba/pkg/subscriberctx"
	"go.uber.org/zap"
)

const (
	HeaderSubscriber = "X-Subscriber-ID"
	HeaderRequestID  = "X-Request-ID"
)

// RequestID generates or propagates a request id for correlation.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := strings.TrimSpace(c.GetHeader(HeaderRequestID))
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Header(HeaderRequestID, rid)
		c.Set("request_id", rid)
		c.Next()
	}
}

// AccessLog writes one structured log line per request.
func AccessLog(logger *zap.Logger) gin.HandlerFunc {
	accessLog := logger.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		accessLog.Info("request",
			zap.String("request_id", c.GetString("request_id")),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// SubscriberRequired parses the gateway-verified subscriber header into the
// request context. Identity verification itself happens upstream.
func SubscriberRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(HeaderSubscriber))
		if raw == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		subscriberID, err := snowflake.ParseString(raw)
		if err != nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		ctx := subscriberctx.WithSubscriberID(c.Request.Context(), subscriberID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
