package story

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"

	storymodel "storyreel/internal/model/story"
	"storyreel/internal/pkg/providers"
)

// VideoJobResult 视频任务提交结果
type VideoJobResult struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// StartVideo 为分镜提交图生视频任务并启动后台轮询
// prompt 为空时依次退回 video_prompt、image_prompt
// 同一分镜重复提交会先取消上一个任务的轮询
func (s *StoryService) StartVideo(ctx context.Context, slotID, prompt string) (*VideoJobResult, error) {
	slot, err := s.slotRepo.FindByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}
	if slot.ImageURL == "" {
		return nil, ErrNoImage
	}

	if strings.TrimSpace(prompt) == "" {
		prompt = slot.VideoPrompt
	}
	if strings.TrimSpace(prompt) == "" {
		prompt = slot.ImagePrompt
	}
	if strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("video prompt is required")
	}

	jobID, err := s.videoGen.Submit(ctx, prompt, slot.ImageURL)
	if err != nil {
		return nil, fmt.Errorf("submit video job: %w", err)
	}

	if err := s.slotRepo.Update(ctx, slotID, map[string]interface{}{
		"video_status": storymodel.VideoStatusProcessing,
		"video_prompt": prompt,
		"video_job_id": jobID,
	}); err != nil {
		return nil, fmt.Errorf("persist video job: %w", err)
	}

	s.startPoller(slotID, jobID)

	log.Info().
		Str("slot_id", slotID).
		Str("job_id", jobID).
		Msg("video job started")

	return &VideoJobResult{JobID: jobID, Status: storymodel.VideoStatusProcessing.String()}, nil
}

// VideoJobStatus 视频任务状态查询结果
type VideoJobStatus struct {
	JobID  string `json:"job_id"`
	SlotID string `json:"slot_id,omitempty"`
	Status string `json:"status"`
	Output string `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

// VideoStatus 按任务ID查询视频生成进度
// 分镜通过 video_job_id 定位；终态时顺带落库，轮询器随后自行退出
func (s *StoryService) VideoStatus(ctx context.Context, jobID string) (*VideoJobStatus, error) {
	slot, err := s.slotRepo.FindByVideoJobID(ctx, jobID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}

	status, err := s.videoGen.GetStatus(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("get video job status: %w", err)
	}

	result := &VideoJobStatus{JobID: jobID, SlotID: slot.ID}
	switch status.State {
	case providers.JobStateSucceeded:
		if err := s.completeVideo(ctx, slot.ID, status.OutputURL); err != nil {
			return nil, err
		}
		result.Status = "succeeded"
		result.Output = status.OutputURL
	case providers.JobStateFailed:
		if err := s.failVideo(ctx, slot.ID); err != nil {
			return nil, err
		}
		result.Status = "failed"
		result.Error = status.Err
	default:
		result.Status = string(status.State)
	}

	return result, nil
}

func (s *StoryService) completeVideo(ctx context.Context, slotID, videoURL string) error {
	return s.slotRepo.Update(ctx, slotID, map[string]interface{}{
		"video_url":    videoURL,
		"video_status": storymodel.VideoStatusCompleted,
	})
}

func (s *StoryService) failVideo(ctx context.Context, slotID string) error {
	return s.slotRepo.Update(ctx, slotID, map[string]interface{}{
		"video_status": storymodel.VideoStatusFailed,
	})
}
