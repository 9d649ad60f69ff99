package providers

import (
	"context"
	"fmt"

	"storyreel/internal/config"
	"storyreel/internal/pkg/storage"
)

// JobState 异步任务的归一化状态
type JobState string

const (
	JobStateProcessing JobState = "processing"
	JobStateSucceeded  JobState = "succeeded"
	JobStateFailed     JobState = "failed"
)

// JobStatus 视频生成任务状态
type JobStatus struct {
	State     JobState
	OutputURL string
	Err       string
}

// ImageGenerator 图片生成接口
// 返回可直接访问的图片URL
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string, aspectRatio string) (string, error)
}

// VideoGenerator 视频生成接口（异步）
// Submit 提交任务返回供应商侧的任务ID，GetStatus 按任务ID查询进度
type VideoGenerator interface {
	Submit(ctx context.Context, prompt string, firstFrameImage string) (string, error)
	GetStatus(ctx context.Context, jobID string) (*JobStatus, error)
}

// NewImageGenerator 根据配置创建图片生成器
func NewImageGenerator(cfg *config.ImageConfig, store storage.Storage) (ImageGenerator, error) {
	switch cfg.Provider {
	case "replicate":
		return NewReplicateImageProvider(cfg)
	case "ark":
		return NewArkImageProvider(cfg, store)
	default:
		return nil, fmt.Errorf("unsupported image provider: %s", cfg.Provider)
	}
}

// NewVideoGenerator 根据配置创建视频生成器
func NewVideoGenerator(cfg *config.VideoConfig) (VideoGenerator, error) {
	switch cfg.Provider {
	case "replicate":
		return NewReplicateVideoProvider(cfg)
	case "ark":
		return NewArkVideoProvider(cfg)
	default:
		return nil, fmt.Errorf("unsupported video provider: %s", cfg.Provider)
	}
}
