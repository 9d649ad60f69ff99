package story

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"

	storymodel "storyreel/internal/model/story"
	"storyreel/internal/pkg/storytools"
)

// StyleSampleRequest 风格样片请求
// SegmentText/SceneDescription 可选；同时提供时样片使用与正式出图一致的完整提示词
type StyleSampleRequest struct {
	StylePrompt      string
	AspectRatio      string
	SegmentText      string
	SceneDescription string
}

// GenerateStyleSample 生成一张风格样片并记录样片指纹
// 不写入正式的 style_prompt/aspect_ratio，确认前可反复试
func (s *StoryService) GenerateStyleSample(ctx context.Context, projectID string, req *StyleSampleRequest) (string, error) {
	if strings.TrimSpace(req.StylePrompt) == "" {
		return "", fmt.Errorf("style prompt is required")
	}

	if _, err := s.projectRepo.FindByID(ctx, projectID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", ErrProjectNotFound
		}
		return "", err
	}

	ratio := storytools.NormalizeAspectRatio(req.AspectRatio)

	var fullPrompt string
	if req.SegmentText != "" && req.SceneDescription != "" {
		fullPrompt = storytools.BuildImagePrompt(req.SceneDescription, req.SegmentText, req.StylePrompt, ratio)
	} else {
		fullPrompt = storytools.BuildStylePrompt(req.StylePrompt, ratio)
	}

	imageURL, err := s.imageGen.Generate(ctx, fullPrompt, ratio)
	if err != nil {
		return "", fmt.Errorf("generate style sample: %w", err)
	}

	if err := s.projectRepo.Update(ctx, projectID, map[string]interface{}{
		"style_preview_url":   imageURL,
		"sample_style_prompt": req.StylePrompt,
		"sample_aspect_ratio": ratio,
	}); err != nil {
		return "", fmt.Errorf("persist style sample: %w", err)
	}

	log.Info().
		Str("project_id", projectID).
		Str("aspect_ratio", ratio).
		Msg("style sample generated")

	return imageURL, nil
}

// ApproveStyle 确认风格，写入正式的 style_prompt 与 aspect_ratio
// 请求必须与最近一次样片的指纹一致；改过提示词或比例后必须重新出样片
func (s *StoryService) ApproveStyle(ctx context.Context, projectID, stylePrompt, aspectRatio string) (*storymodel.Project, error) {
	if strings.TrimSpace(stylePrompt) == "" {
		return nil, fmt.Errorf("style prompt is required")
	}

	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}

	ratio := storytools.NormalizeAspectRatio(aspectRatio)
	if project.SampleStylePrompt != stylePrompt || project.SampleAspectRatio != ratio {
		return nil, ErrStaleSample
	}

	if err := s.projectRepo.Update(ctx, projectID, map[string]interface{}{
		"style_prompt": stylePrompt,
		"aspect_ratio": ratio,
	}); err != nil {
		return nil, fmt.Errorf("persist approved style: %w", err)
	}

	log.Info().
		Str("project_id", projectID).
		Str("aspect_ratio", ratio).
		Msg("style approved")

	return s.projectRepo.FindByID(ctx, projectID)
}
