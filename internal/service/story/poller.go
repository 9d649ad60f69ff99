package story

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"storyreel/internal/pkg/providers"
)

// startPoller 为分镜启动一个独立的后台轮询器
// 同一分镜的旧轮询器先被取消，保证每个分镜最多一个在途任务被跟踪
func (s *StoryService) startPoller(slotID, jobID string) {
	ctx, cancel := context.WithCancel(context.Background())

	s.pollMu.Lock()
	if prev, ok := s.pollers[slotID]; ok {
		prev.cancel()
	}
	s.pollers[slotID] = &pollHandle{jobID: jobID, cancel: cancel}
	s.pollMu.Unlock()

	s.wg.Add(1)
	go s.pollVideoJob(ctx, slotID, jobID)
}

// stopPoller 注销分镜的轮询器
// 按 jobID 比对，避免旧轮询器退出时误杀同分镜的新任务
func (s *StoryService) stopPoller(slotID, jobID string) {
	s.pollMu.Lock()
	if h, ok := s.pollers[slotID]; ok && h.jobID == jobID {
		h.cancel()
		delete(s.pollers, slotID)
	}
	s.pollMu.Unlock()
}

// pollVideoJob 固定间隔轮询任务直到终态或被取消
// 成功 → video_url + COMPLETED；失败或查询出错 → FAILED；取消则静默退出
func (s *StoryService) pollVideoJob(ctx context.Context, slotID, jobID string) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("slot_id", slotID).Str("job_id", jobID).Msg("video poller cancelled")
			return
		case <-ticker.C:
		}

		status, err := s.videoGen.GetStatus(ctx, jobID)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error().Err(err).Str("slot_id", slotID).Str("job_id", jobID).Msg("video status poll failed")
			s.markVideoFailed(slotID, jobID)
			return
		}

		switch status.State {
		case providers.JobStateSucceeded:
			if err := s.completeVideo(context.Background(), slotID, status.OutputURL); err != nil {
				log.Error().Err(err).Str("slot_id", slotID).Msg("failed to persist completed video")
			} else {
				log.Info().Str("slot_id", slotID).Str("job_id", jobID).Msg("video job completed")
			}
			s.stopPoller(slotID, jobID)
			return
		case providers.JobStateFailed:
			log.Warn().Str("slot_id", slotID).Str("job_id", jobID).Str("error", status.Err).Msg("video job failed")
			s.markVideoFailed(slotID, jobID)
			return
		}
	}
}

func (s *StoryService) markVideoFailed(slotID, jobID string) {
	if err := s.failVideo(context.Background(), slotID); err != nil {
		log.Error().Err(err).Str("slot_id", slotID).Msg("failed to persist failed video status")
	}
	s.stopPoller(slotID, jobID)
}
