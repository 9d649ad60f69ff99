package story

import (
	"net/http"

	"github.com/gin-gonic/gin"

	storysvc "storyreel/internal/service/story"
)

// CreateProjectRequest 创建项目请求
type CreateProjectRequest struct {
	FinalScript string `json:"final_script" binding:"required"` // 定稿旁白脚本（必填）
}

// CreateProject 创建项目
// @Summary      创建项目
// @Description  以定稿旁白脚本创建一个新项目，脚本创建后不可修改。
// @Tags         项目管理
// @Accept       json
// @Produce      json
// @Param        request  body      CreateProjectRequest  true  "创建项目请求"
// @Success      200      {object}  map[string]interface{}  "成功响应"
// @Failure      400      {object}  ErrorResponse  "请求参数错误"
// @Failure      500      {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/projects [post]
func (h *Handler) CreateProject(c *gin.Context) {
	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid request body",
			Detail:  err.Error(),
		})
		return
	}

	project, err := h.storyService.CreateProject(c.Request.Context(), req.FinalScript)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "项目创建成功",
		"data":    project,
	})
}

// GetProject 获取项目详情
// @Summary      获取项目详情
// @Description  获取项目及其全部分镜，分镜按 index 升序排列。
// @Tags         项目管理
// @Accept       json
// @Produce      json
// @Param        project_id  path      string  true  "项目ID"
// @Success      200         {object}  map[string]interface{}  "成功响应"
// @Failure      404         {object}  ErrorResponse  "项目不存在"
// @Failure      500         {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/projects/{project_id} [get]
func (h *Handler) GetProject(c *gin.Context) {
	projectID := c.Param("project_id")
	if projectID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "project_id is required",
		})
		return
	}

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

// UpdateProjectRequest 更新项目请求（提供哪个字段就更新哪个）
type UpdateProjectRequest struct {
	StylePrompt     *string `json:"style_prompt,omitempty"`      // 风格描述
	AspectRatio     *string `json:"aspect_ratio,omitempty"`      // 宽高比
	StylePreviewURL *string `json:"style_preview_url,omitempty"` // 风格样片URL
}

// UpdateProject 更新项目
// @Summary      更新项目
// @Description  按提供的字段部分更新项目，未提供的字段保持不变。
// @Tags         项目管理
// @Accept       json
// @Produce      json
// @Param        project_id  path      string                true  "项目ID"
// @Param        request     body      UpdateProjectRequest  true  "更新项目请求"
// @Success      200         {object}  map[string]interface{}  "成功响应"
// @Failure      400         {object}  ErrorResponse  "请求参数错误"
// @Failure      404         {object}  ErrorResponse  "项目不存在"
// @Failure      500         {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/projects/{project_id} [patch]
func (h *Handler) UpdateProject(c *gin.Context) {
	projectID := c.Param("project_id")

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid request body",
			Detail:  err.Error(),
		})
		return
	}

	patch := &storysvc.ProjectPatch{
		StylePrompt:     req.StylePrompt,
		AspectRatio:     req.AspectRatio,
		StylePreviewURL: req.StylePreviewURL,
	}
	detail, err := h.storyService.UpdateProject(c.Request.Context(), projectID, patch)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "更新成功",
		"data":    detail,
	})
}
