package story

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ExpandPrompts 扩写图片提示词
// @Summary      扩写图片提示词
// @Description  为项目全部分镜扩写独立完整的图片提示词；任一条目不合法则整体失败，不产生部分写入。
// @Tags         提示词
// @Accept       json
// @Produce      json
// @Param        project_id  path      string  true  "项目ID"
// @Success      200         {object}  map[string]interface{}  "成功响应"
// @Failure      400         {object}  ErrorResponse  "风格未确认、无分镜或扩写结果不合法"
// @Failure      404         {object}  ErrorResponse  "项目不存在"
// @Failure      500         {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/projects/{project_id}/prompts [post]
func (h *Handler) ExpandPrompts(c *gin.Context) {
	projectID := c.Param("project_id")
	if projectID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "project_id is required",
		})
		return
	}

	prompts, err := h.storyService.ExpandPrompts(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "提示词扩写成功",
		"data":    gin.H{"prompts": prompts},
	})
}
