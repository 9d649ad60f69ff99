package story

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// StartVideoRequest 视频生成请求
type StartVideoRequest struct {
	Prompt string `json:"prompt"` // 视频提示词（可选，默认依次使用 video_prompt、image_prompt）
}

// StartVideo 提交视频生成任务
// @Summary      提交视频生成任务
// @Description  以分镜图片为首帧提交图生视频任务，立即返回任务ID并在后台轮询状态。
// @Tags         视频
// @Accept       json
// @Produce      json
// @Param        slot_id  path      string             true   "分镜ID"
// @Param        request  body      StartVideoRequest  false  "视频生成请求"
// @Success      200      {object}  map[string]interface{}  "成功响应"
// @Failure      400      {object}  ErrorResponse  "分镜缺少图片"
// @Failure      404      {object}  ErrorResponse  "分镜不存在"
// @Failure      500      {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/slots/{slot_id}/video [post]
func (h *Handler) StartVideo(c *gin.Context) {
	slotID := c.Param("slot_id")

	var req StartVideoRequest
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Code:    40001,
				Message: "Invalid request body",
				Detail:  err.Error(),
			})
			return
		}
	}

	result, err := h.storyService.StartVideo(c.Request.Context(), slotID, req.Prompt)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "视频任务已提交",
		"data":    result,
	})
}

// VideoStatus 查询视频任务状态
// @Summary      查询视频任务状态
// @Description  按任务ID查询视频生成进度，分镜通过任务ID定位；终态时顺带落库。
// @Tags         视频
// @Produce      json
// @Param        job_id  path      string  true  "任务ID"
// @Success      200     {object}  map[string]interface{}  "成功响应"
// @Failure      404     {object}  ErrorResponse  "任务不存在"
// @Failure      500     {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/videos/{job_id} [get]
func (h *Handler) VideoStatus(c *gin.Context) {
	jobID := c.Param("job_id")
	if jobID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "job_id is required",
		})
		return
	}

	status, err := h.storyService.VideoStatus(c.Request.Context(), jobID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "获取成功",
		"data":    status,
	})
}
