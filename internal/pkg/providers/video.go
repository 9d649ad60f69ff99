package providers

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"storyreel/internal/config"
	"storyreel/internal/pkg/ark"
	"storyreel/internal/pkg/replicate"
)

// ReplicateVideoProvider 基于 Replicate 的图生视频
type ReplicateVideoProvider struct {
	client *replicate.Client
	model  string
}

// NewReplicateVideoProvider 创建 Replicate 视频生成器
func NewReplicateVideoProvider(cfg *config.VideoConfig) (*ReplicateVideoProvider, error) {
	client, err := replicate.New(cfg.APIKey, cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("create replicate client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = "minimax/video-01"
	}

	return &ReplicateVideoProvider{
		client: client,
		model:  model,
	}, nil
}

// Submit 提交图生视频任务，返回供应商侧任务ID
func (p *ReplicateVideoProvider) Submit(ctx context.Context, prompt string, firstFrameImage string) (string, error) {
	input := map[string]interface{}{
		"prompt":            prompt,
		"first_frame_image": firstFrameImage,
		"prompt_optimizer":  true,
	}

	prediction, err := p.client.CreatePrediction(ctx, p.model, input)
	if err != nil {
		return "", fmt.Errorf("create video prediction: %w", err)
	}

	log.Info().
		Str("prediction_id", prediction.ID).
		Str("model", p.model).
		Msg("video prediction submitted")

	return prediction.ID, nil
}

// GetStatus 查询任务状态
func (p *ReplicateVideoProvider) GetStatus(ctx context.Context, jobID string) (*JobStatus, error) {
	prediction, err := p.client.GetPrediction(ctx, jobID)
	if err != nil {
		return nil, err
	}

	switch prediction.Status {
	case "succeeded":
		url, err := prediction.OutputURL()
		if err != nil {
			return &JobStatus{State: JobStateFailed, Err: err.Error()}, nil
		}
		return &JobStatus{State: JobStateSucceeded, OutputURL: url}, nil
	case "failed", "canceled":
		return &JobStatus{State: JobStateFailed, Err: prediction.Error}, nil
	default:
		return &JobStatus{State: JobStateProcessing}, nil
	}
}

// ArkVideoProvider 基于火山引擎 Ark 的图生视频
type ArkVideoProvider struct {
	client *ark.ArkVideoClient
}

// NewArkVideoProvider 创建 Ark 视频生成器
func NewArkVideoProvider(cfg *config.VideoConfig) (*ArkVideoProvider, error) {
	client, err := ark.NewArkVideoClient(&ark.ArkVideoConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("create ark video client: %w", err)
	}

	return &ArkVideoProvider{client: client}, nil
}

// Submit 提交图生视频任务
func (p *ArkVideoProvider) Submit(ctx context.Context, prompt string, firstFrameImage string) (string, error) {
	taskID, err := p.client.SubmitTask(ctx, prompt, firstFrameImage, "adaptive", 5)
	if err != nil {
		return "", fmt.Errorf("submit ark video task: %w", err)
	}

	log.Info().Str("task_id", taskID).Msg("ark video task submitted")
	return taskID, nil
}

// GetStatus 查询任务状态
func (p *ArkVideoProvider) GetStatus(ctx context.Context, jobID string) (*JobStatus, error) {
	task, err := p.client.GetTask(ctx, jobID)
	if err != nil {
		return nil, err
	}

	switch task.Status {
	case "succeeded", "completed":
		return &JobStatus{State: JobStateSucceeded, OutputURL: task.VideoURL}, nil
	case "failed", "cancelled":
		return &JobStatus{State: JobStateFailed, Err: fmt.Sprintf("ark task %s %s", task.ID, task.Status)}, nil
	default:
		return &JobStatus{State: JobStateProcessing}, nil
	}
}
