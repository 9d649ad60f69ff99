package story

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	httputil "storyreel/internal/pkg/http"
	storysvc "storyreel/internal/service/story"
)

// ErrorResponse 错误响应类型别名（使用共用的 http.ErrorResponse）
type ErrorResponse = httputil.ErrorResponse

// Handler 故事流水线处理器
// 所有story相关的Handler方法都通过这个结构体访问Service
type Handler struct {
	storyService *storysvc.StoryService
}

// NewHandler 创建故事处理器
func NewHandler(storyService *storysvc.StoryService) *Handler {
	return &Handler{
		storyService: storyService,
	}
}

// respondError 将Service层错误映射为HTTP响应
func respondError(c *gin.Context, err error) {
	code := http.StatusInternalServerError
	errorCode := 50001

	switch {
	case errors.Is(err, storysvc.ErrProjectNotFound),
		errors.Is(err, storysvc.ErrSlotNotFound),
		errors.Is(err, storysvc.ErrJobNotFound):
		code = http.StatusNotFound
		errorCode = 40401
	case errors.Is(err, storysvc.ErrStaleSample):
		code = http.StatusConflict
		errorCode = 40901
	case errors.Is(err, storysvc.ErrNoAudioDuration),
		errors.Is(err, storysvc.ErrStyleNotSet),
		errors.Is(err, storysvc.ErrNoSlots),
		errors.Is(err, storysvc.ErrNoImage):
		code = http.StatusBadRequest
		errorCode = 40002
	}

	c.JSON(code, ErrorResponse{
		Code:    errorCode,
		Message: err.Error(),
	})
}
