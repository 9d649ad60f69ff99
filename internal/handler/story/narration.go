package story

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GenerateNarrationRequest 旁白合成请求
type GenerateNarrationRequest struct {
	VoiceID string `json:"voice_id" binding:"required"` // 音色ID（必填）
	Text    string `json:"text"`                        // 合成文本（可选，默认使用项目定稿脚本）
}

// GenerateNarration 合成旁白音频
// @Summary      合成旁白音频
// @Description  调用语音合成生成旁白音频，估算时长并回写项目。
// @Tags         旁白
// @Accept       json
// @Produce      json
// @Param        project_id  path      string                    true  "项目ID"
// @Param        request     body      GenerateNarrationRequest  true  "旁白合成请求"
// @Success      200         {object}  map[string]interface{}  "成功响应"
// @Failure      400         {object}  ErrorResponse  "请求参数错误"
// @Failure      404         {object}  ErrorResponse  "项目不存在"
// @Failure      500         {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/projects/{project_id}/narration [post]
func (h *Handler) GenerateNarration(c *gin.Context) {
	projectID := c.Param("project_id")

	var req GenerateNarrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid request body",
			Detail:  err.Error(),
		})
		return
	}

	result, err := h.storyService.GenerateNarration(c.Request.Context(), projectID, req.VoiceID, req.Text)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "旁白合成成功",
		"data":    result,
	})
}

// ListVoices 获取可用音色列表
// @Summary      获取可用音色列表
// @Description  获取语音合成服务的可用音色，结果缓存1小时。
// @Tags         旁白
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "成功响应"
// @Failure      500  {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/voices [get]
func (h *Handler) ListVoices(c *gin.Context) {
	voices, err := h.storyService.ListVoices(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "获取成功",
		"data":    voices,
	})
}
