package story

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"

	storymodel "storyreel/internal/model/story"
	"storyreel/internal/pkg/cache"
	"storyreel/internal/pkg/elevenlabs"
	"storyreel/internal/pkg/id"
)

// CreateProject 创建项目（定稿脚本创建后不可变）
func (s *StoryService) CreateProject(ctx context.Context, finalScript string) (*storymodel.Project, error) {
	finalScript = strings.TrimSpace(finalScript)
	if finalScript == "" {
		return nil, fmt.Errorf("final script is required")
	}

	now := time.Now()
	project := &storymodel.Project{
		ID:          id.New(),
		FinalScript: finalScript,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	log.Info().Str("project_id", project.ID).Int("script_len", len(finalScript)).Msg("project created")
	return project, nil
}

// GetProject 获取项目及其全部分镜（按 index 升序）
func (s *StoryService) GetProject(ctx context.Context, projectID string) (*ProjectDetail, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}

	slots, err := s.slotRepo.FindByProjectID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	return &ProjectDetail{Project: project, Slots: slots}, nil
}

// ProjectPatch 项目可选字段更新
type ProjectPatch struct {
	StylePrompt     *string
	AspectRatio     *string
	StylePreviewURL *string
}

// UpdateProject 按提供的字段更新项目
func (s *StoryService) UpdateProject(ctx context.Context, projectID string, patch *ProjectPatch) (*ProjectDetail, error) {
	updates := map[string]interface{}{}
	if patch.StylePrompt != nil {
		updates["style_prompt"] = *patch.StylePrompt
	}
	if patch.AspectRatio != nil {
		updates["aspect_ratio"] = *patch.AspectRatio
	}
	if patch.StylePreviewURL != nil {
		updates["style_preview_url"] = *patch.StylePreviewURL
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}

	if err := s.projectRepo.Update(ctx, projectID, updates); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}

	return s.GetProject(ctx, projectID)
}

// NarrationResult 旁白合成结果
type NarrationResult struct {
	AudioURL      string  `json:"audio_url"`
	AudioDuration float64 `json:"audio_duration"`
}

// GenerateNarration 合成旁白音频并回写项目
// text 为空时默认使用项目的定稿脚本
func (s *StoryService) GenerateNarration(ctx context.Context, projectID, voiceID, text string) (*NarrationResult, error) {
	if voiceID == "" {
		return nil, fmt.Errorf("voice id is required")
	}

	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}

	if strings.TrimSpace(text) == "" {
		text = project.FinalScript
	}

	audioData, err := s.tts.Synthesize(ctx, text, voiceID)
	if err != nil {
		return nil, fmt.Errorf("synthesize narration: %w", err)
	}

	duration := elevenlabs.EstimateDuration(audioData)

	key := fmt.Sprintf("projects/%s/narration-%d.mp3", projectID, time.Now().UnixMilli())
	audioURL, err := s.storage.Upload(ctx, key, bytes.NewReader(audioData), "audio/mpeg")
	if err != nil {
		return nil, fmt.Errorf("upload narration audio: %w", err)
	}

	if err := s.projectRepo.Update(ctx, projectID, map[string]interface{}{
		"tts_audio_url":  audioURL,
		"audio_duration": duration,
	}); err != nil {
		return nil, fmt.Errorf("persist narration: %w", err)
	}

	log.Info().
		Str("project_id", projectID).
		Str("voice_id", voiceID).
		Float64("audio_duration", duration).
		Int("audio_bytes", len(audioData)).
		Msg("narration generated")

	return &NarrationResult{AudioURL: audioURL, AudioDuration: duration}, nil
}

// ListVoices 获取可用的旁白音色列表
// 配置了 redis 时缓存 1 小时
func (s *StoryService) ListVoices(ctx context.Context) ([]elevenlabs.Voice, error) {
	if s.cache != nil {
		var cached []elevenlabs.Voice
		if err := s.cache.Get(ctx, cache.VoicesCacheKey, &cached); err == nil && len(cached) > 0 {
			return cached, nil
		}
	}

	voices, err := s.tts.Voices(ctx)
	if err != nil {
		return nil, fmt.Errorf("list voices: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cache.VoicesCacheKey, voices, cache.VoicesCacheTTL); err != nil {
			log.Warn().Err(err).Msg("failed to cache voices")
		}
	}

	return voices, nil
}
