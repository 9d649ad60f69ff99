package story

import (
	"net/http"

	"github.com/gin-gonic/gin"

	storysvc "storyreel/internal/service/story"
)

// GenerateAllImages 批量生成分镜图片
// @Summary      批量生成分镜图片
// @Description  为项目全部分镜生成图片；缺少扩写提示词时先整体扩写一次。单个分镜失败不中断其余分镜，返回成功/失败计数。
// @Tags         图片
// @Accept       json
// @Produce      json
// @Param        project_id  path      string  true  "项目ID"
// @Success      200         {object}  map[string]interface{}  "成功响应"
// @Failure      400         {object}  ErrorResponse  "风格未确认或无分镜"
// @Failure      404         {object}  ErrorResponse  "项目不存在"
// @Failure      500         {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/projects/{project_id}/images [post]
func (h *Handler) GenerateAllImages(c *gin.Context) {
	projectID := c.Param("project_id")
	if projectID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "project_id is required",
		})
		return
	}

	result, err := h.storyService.GenerateAllImages(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "批量出图完成",
		"data":    result,
	})
}

// GenerateSlotImageRequest 单分镜出图请求
type GenerateSlotImageRequest struct {
	ImagePrompt string `json:"image_prompt"` // 新的图片提示词（可选，提供时先更新再出图）
}

// GenerateSlotImage 生成单个分镜图片
// @Summary      生成单个分镜图片
// @Description  为单个分镜生成或重新生成图片，可选地先更新该分镜的提示词；不影响其他分镜。
// @Tags         图片
// @Accept       json
// @Produce      json
// @Param        slot_id  path      string                    true   "分镜ID"
// @Param        request  body      GenerateSlotImageRequest  false  "单分镜出图请求"
// @Success      200      {object}  map[string]interface{}  "成功响应"
// @Failure      400      {object}  ErrorResponse  "风格未确认"
// @Failure      404      {object}  ErrorResponse  "分镜不存在"
// @Failure      500      {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/slots/{slot_id}/image [post]
func (h *Handler) GenerateSlotImage(c *gin.Context) {
	slotID := c.Param("slot_id")

	var req GenerateSlotImageRequest
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

	imageURL, err := h.storyService.GenerateSlotImage(c.Request.Context(), slotID, req.ImagePrompt)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "出图成功",
		"data":    gin.H{"image_url": imageURL},
	})
}

// UpdateSlotRequest 更新分镜请求（提供哪个字段就更新哪个）
type UpdateSlotRequest struct {
	ImagePrompt *string `json:"image_prompt,omitempty"` // 图片提示词
	ImageURL    *string `json:"image_url,omitempty"`    // 图片URL
	VideoPrompt *string `json:"video_prompt,omitempty"` // 视频提示词
}

// UpdateSlot 更新分镜
// @Summary      更新分镜
// @Description  按提供的字段部分更新单个分镜，未提供的字段保持不变。
// @Tags         分镜
// @Accept       json
// @Produce      json
// @Param        slot_id  path      string             true  "分镜ID"
// @Param        request  body      UpdateSlotRequest  true  "更新分镜请求"
// @Success      200      {object}  map[string]interface{}  "成功响应"
// @Failure      400      {object}  ErrorResponse  "请求参数错误"
// @Failure      404      {object}  ErrorResponse  "分镜不存在"
// @Failure      500      {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/slots/{slot_id} [patch]
func (h *Handler) UpdateSlot(c *gin.Context) {
	slotID := c.Param("slot_id")

	var req UpdateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid request body",
			Detail:  err.Error(),
		})
		return
	}

	slot, err := h.storyService.UpdateSlot(c.Request.Context(), slotID, &storysvc.SlotPatch{
		ImagePrompt: req.ImagePrompt,
		ImageURL:    req.ImageURL,
		VideoPrompt: req.VideoPrompt,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "更新成功",
		"data":    slot,
	})
}
