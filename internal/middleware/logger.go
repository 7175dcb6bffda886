package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// RequestIDHeader 請求 ID 的標頭名稱
	RequestIDHeader = "X-Request-ID"
	// RequestIDKey 請求 ID 在 gin.Context 中的鍵
	RequestIDKey = "requestID"
)

// RequestID 沿用客戶端帶入的 X-Request-ID，沒有時產生新的 UUID
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// Logger 在請求結束後記錄一筆存取日誌
func Logger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		entry := log.WithFields(logrus.Fields{
			"request_id": c.GetString(RequestIDKey),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"route":      c.FullPath(),
			"status":     status,
			"latency":    time.Since(start).String(),
			"client_ip":  c.ClientIP(),
		})
		if status >= http.StatusInternalServerError {
			entry.Error("request failed")
			return
		}
		entry.Info("request handled")
	}
}

// Recovery 攔截 panic，記錄後回應 500
func Recovery(log logrus.FieldLogger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.WithFields(logrus.Fields{
			"request_id": c.GetString(RequestIDKey),
			"panic":      recovered,
		}).Error("panic recovered")
		c.AbortWithStatus(http.StatusInternalServerError)
	})
}
