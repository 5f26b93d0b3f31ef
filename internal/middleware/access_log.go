package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", c.GetString(ContextRequestIDKey)),
			zap.String("user_id", c.GetString(ContextUserIDKey)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		log := logutil.GetLogger(c.Request.Context())
		switch {
		case c.Writer.Status() >= 500:
			log.Error("request served", fields...)
		case c.Writer.Status() >= 400:
			log.Warn("request served", fields...)
		default:
			log.Info("request served", fields...)
		}
	}
}
