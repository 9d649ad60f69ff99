package middleware

import (
	"github.com/gin-gonic/gin"

	"storyreel/internal/pkg/id"
)

// RequestID 请求ID中间件
// 沿用请求头中的 X-Request-ID，没有时生成一个，并写回响应头
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = id.New()
		}

		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)

		c.Next()
	}
}
