package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Request-scoped keys and headers.
const (
	requestIDHeader = "X-Request-ID"
	loggerCtxKey    = "logger"
	maxRequestIDLen = 128
)

// requestID assigns every request an ID, honoring a caller-supplied one,
// and stores a logger carrying it.
func requestID(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)
		c.Set(loggerCtxKey, base.With(zap.String("request_id", id)))
		c.Next()
	}
}

// requestLogger returns the logger set by requestID.
func requestLogger(c *gin.Context) *zap.Logger {
	if v, ok := c.Get(loggerCtxKey); ok {
		if l, ok := v.(*zap.Logger); ok {
			return l
		}
	}
	return zap.NewNop()
}

// accessLog logs one line when a request starts and one when it finishes.
func accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		logger := requestLogger(c)
		logger.Debug("request started",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		)

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.Int("bytes", c.Writer.Size()),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Warn("request finished", fields...)
			return
		}
		logger.Info("request finished", fields...)
	}
}

// recovery turns a handler panic into a logged 500.
func recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, err any) {
		requestLogger(c).Error("panic recovered",
			zap.Any("panic", err),
			zap.Stack("stack"),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody{Error: "Internal server error"})
	})
}
