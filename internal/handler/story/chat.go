package story

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storyreel/internal/ai"
)

// ChatRequest 故事创作对话请求
type ChatRequest struct {
	Messages []ai.Message `json:"messages" binding:"required,min=1,dive"` // 对话历史（必填，按时间升序）
}

// Chat 故事创作对话
// @Summary      故事创作对话
// @Description  与故事创作导师对话打磨旁白脚本，返回助手的回复文本。
// @Tags         对话
// @Accept       json
// @Produce      json
// @Param        request  body      ChatRequest  true  "对话请求"
// @Success      200      {object}  map[string]interface{}  "成功响应"
// @Failure      400      {object}  ErrorResponse  "请求参数错误"
// @Failure      500      {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/chat [post]
func (h *Handler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid request body",
			Detail:  err.Error(),
		})
		return
	}

	response, err := h.storyService.Chat(c.Request.Context(), req.Messages)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "获取成功",
		"data":    gin.H{"response": response},
	})
}
