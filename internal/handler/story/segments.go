package story

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SegmentScript 切分脚本
// @Summary      切分脚本为分镜
// @Description  按旁白音频时长将定稿脚本切分为若干带时间戳的分镜，整体替换项目现有分镜。
// @Tags         分镜
// @Accept       json
// @Produce      json
// @Param        project_id  path      string  true  "项目ID"
// @Success      200         {object}  map[string]interface{}  "成功响应"
// @Failure      400         {object}  ErrorResponse  "项目缺少旁白音频或切分结果不合法"
// @Failure      404         {object}  ErrorResponse  "项目不存在"
// @Failure      500         {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/projects/{project_id}/segments [post]
func (h *Handler) SegmentScript(c *gin.Context) {
	projectID := c.Param("project_id")
	if projectID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "project_id is required",
		})
		return
	}

	detail, err := h.storyService.SegmentScript(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "切分成功",
		"data":    detail,
	})
}

// GetSegments 获取项目分镜
// @Summary      获取项目分镜
// @Description  获取项目及其全部分镜，分镜按 index 升序排列。
// @Tags         分镜
// @Produce      json
// @Param        project_id  path      string  true  "项目ID"
// @Success      200         {object}  map[string]interface{}  "成功响应"
// @Failure      404         {object}  ErrorResponse  "项目不存在"
// @Failure      500         {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/projects/{project_id}/segments [get]
func (h *Handler) GetSegments(c *gin.Context) {
	projectID := c.Param("project_id")

	detail, err := h.storyService.GetProject(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "获取成功",
		"data":    detail,
	})
}
