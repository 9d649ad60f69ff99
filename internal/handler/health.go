package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler 健康检查处理器
// readyCheck 在就绪检查时探测依赖（MongoDB），nil 时视为始终就绪
type HealthHandler struct {
	readyCheck func(ctx context.Context) error
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(readyCheck func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{readyCheck: readyCheck}
}

// Health 健康检查
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Ready 就绪检查，依赖不可用时返回503
func (h *HealthHandler) Ready(c *gin.Context) {
	if h.readyCheck != nil {
		if err := h.readyCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}
