package httpapi

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// RequestIDHeader carries the request identifier in requests and responses.
	RequestIDHeader     = "X-Request-ID"
	requestIDContextKey = "request_id"
	requestIDMaxLength  = 64
)

func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(context *gin.Context) {
		start := time.Now()
		context.Next()
		logger.Info("http",
			zap.String("method", context.Request.Method),
			zap.String("path", context.Request.URL.Path),
			zap.Int("status", context.Writer.Status()),
			zap.Duration("dur", time.Since(start)),
			zap.String("ip", context.ClientIP()),
			zap.String("ua", context.Request.UserAgent()),
			zap.String("request_id", context.GetString(requestIDContextKey)),
		)
	}
}

// RequestID propagates a caller supplied request identifier or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(context *gin.Context) {
		requestID := strings.TrimSpace(context.GetHeader(RequestIDHeader))
		if requestID == "" || len(requestID) > requestIDMaxLength {
			requestID = uuid.NewString()
		}
		context.Set(requestIDContextKey, requestID)
		context.Header(RequestIDHeader, requestID)
		context.Next()
	}
}
