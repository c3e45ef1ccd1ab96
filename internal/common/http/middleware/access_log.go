package middleware

import (
	"net/http"
	"time"

	"geoatlas/pkg/errors"
	"geoatlas/pkg/utils/logger"
	"geoatlas/pkg/utils/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AccessLogMiddleware logs one line per request after the handler chain ran.
func AccessLogMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			log.Warn(c.Request.Context(), "request completed", fields...)
			return
		}
		log.Debug(c.Request.Context(), "request completed", fields...)
	}
}

// RecoveryMiddleware turns a handler panic into an InternalServerError envelope.
func RecoveryMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error(c.Request.Context(), "handler panic", zap.Any("panic", r), zap.Stack("stack"))
				response.AbortWithError(c, errors.New(errors.InternalServerError))
			}
		}()
		c.Next()
	}
}
