package story

import (
	"net/http"

	"github.com/gin-gonic/gin"

	storysvc "storyreel/internal/service/story"
)

// StyleSampleRequest 风格样片请求
type StyleSampleRequest struct {
	StylePrompt      string `json:"style_prompt" binding:"required"` // 风格描述（必填）
	AspectRatio      string `json:"aspect_ratio"`                    // 宽高比（不在允许列表时回退 1:1）
	SegmentText      string `json:"segment_text"`                    // 参考分段文本（可选）
	SceneDescription string `json:"scene_description"`               // 参考场景描述（可选）
}

// GenerateStyleSample 生成风格样片
// @Summary      生成风格样片
// @Description  用候选风格生成一张样片，记录样片指纹供确认时校验；不写入正式风格字段。
// @Tags         风格
// @Accept       json
// @Produce      json
// @Param        project_id  path      string              true  "项目ID"
// @Param        request     body      StyleSampleRequest  true  "风格样片请求"
// @Success      200         {object}  map[string]interface{}  "成功响应"
// @Failure      400         {object}  ErrorResponse  "请求参数错误"
// @Failure      404         {object}  ErrorResponse  "项目不存在"
// @Failure      500         {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/projects/{project_id}/style/sample [post]
func (h *Handler) GenerateStyleSample(c *gin.Context) {
	projectID := c.Param("project_id")

	var req StyleSampleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid request body",
			Detail:  err.Error(),
		})
		return
	}

	imageURL, err := h.storyService.GenerateStyleSample(c.Request.Context(), projectID, &storysvc.StyleSampleRequest{
		StylePrompt:      req.StylePrompt,
		AspectRatio:      req.AspectRatio,
		SegmentText:      req.SegmentText,
		SceneDescription: req.SceneDescription,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "样片生成成功",
		"data":    gin.H{"image_url": imageURL},
	})
}

// ApproveStyleRequest 确认风格请求
type ApproveStyleRequest struct {
	StylePrompt string `json:"style_prompt" binding:"required"` // 风格描述（必填，须与最近样片一致）
	AspectRatio string `json:"aspect_ratio"`                    // 宽高比（须与最近样片一致）
}

// ApproveStyle 确认风格
// @Summary      确认风格
// @Description  将样片对应的风格写入项目；请求与最近一次样片不一致时返回409，需重新出样片。
// @Tags         风格
// @Accept       json
// @Produce      json
// @Param        project_id  path      string               true  "项目ID"
// @Param        request     body      ApproveStyleRequest  true  "确认风格请求"
// @Success      200         {object}  map[string]interface{}  "成功响应"
// @Failure      400         {object}  ErrorResponse  "请求参数错误"
// @Failure      404         {object}  ErrorResponse  "项目不存在"
// @Failure      409         {object}  ErrorResponse  "样片已过期"
// @Failure      500         {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/projects/{project_id}/style/approve [post]
func (h *Handler) ApproveStyle(c *gin.Context) {
	projectID := c.Param("project_id")

	var req ApproveStyleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid request body",
			Detail:  err.Error(),
		})
		return
	}

	project, err := h.storyService.ApproveStyle(c.Request.Context(), projectID, req.StylePrompt, req.AspectRatio)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "风格确认成功",
		"data":    project,
	})
}
