package story

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"

	storymodel "storyreel/internal/model/story"
	"storyreel/internal/pkg/storytools"
)

// slotImagePrompt 组装分镜的完整出图提示词
// 扩写过的 image_prompt 优先作为场景描述，未扩写时退回切分产出的 scene_description
func slotImagePrompt(slot *storymodel.Slot, stylePrompt, ratio string) string {
	scene := slot.ImagePrompt
	if scene == "" {
		scene = slot.SceneDescription
	}
	return storytools.BuildImagePrompt(scene, slot.TextSegment, stylePrompt, ratio)
}

// GenerateSlotImage 为单个分镜生成图片
// newPrompt 非空时先更新该分镜的 image_prompt，再用更新后的值出图；不影响其他分镜
func (s *StoryService) GenerateSlotImage(ctx context.Context, slotID, newPrompt string) (string, error) {
	slot, err := s.slotRepo.FindByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", ErrSlotNotFound
		}
		return "", err
	}

	project, err := s.projectRepo.FindByID(ctx, slot.ProjectID)
	if err != nil {
		return "", err
	}
	if project.StylePrompt == "" || project.AspectRatio == "" {
		return "", ErrStyleNotSet
	}

	if strings.TrimSpace(newPrompt) != "" {
		if err := s.slotRepo.Update(ctx, slotID, map[string]interface{}{"image_prompt": newPrompt}); err != nil {
			return "", fmt.Errorf("update image prompt: %w", err)
		}
		slot.ImagePrompt = newPrompt
	}

	return s.generateImageForSlot(ctx, slot, project)
}

// generateImageForSlot 出图并回写 image_url
func (s *StoryService) generateImageForSlot(ctx context.Context, slot *storymodel.Slot, project *storymodel.Project) (string, error) {
	ratio := storytools.NormalizeAspectRatio(project.AspectRatio)
	fullPrompt := slotImagePrompt(slot, project.StylePrompt, ratio)

	imageURL, err := s.imageGen.Generate(ctx, fullPrompt, ratio)
	if err != nil {
		return "", fmt.Errorf("generate image: %w", err)
	}

	if err := s.slotRepo.Update(ctx, slot.ID, map[string]interface{}{"image_url": imageURL}); err != nil {
		return "", fmt.Errorf("persist image url: %w", err)
	}

	log.Info().
		Str("slot_id", slot.ID).
		Int("index", slot.Index).
		Str("aspect_ratio", ratio).
		Msg("slot image generated")

	return imageURL, nil
}

// SlotImageError 批量出图中单个分镜的失败记录
type SlotImageError struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

// BulkImageResult 批量出图结果
// 单个分镜失败不影响其余分镜，部分完成是可接受的终态
type BulkImageResult struct {
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
	Errors    []SlotImageError `json:"errors,omitempty"`
}

// GenerateAllImages 为项目全部分镜生成图片
// 任何分镜缺少扩写提示词时先整体跑一次提示词扩写
// 默认逐个顺序执行，image.max_concurrency 大于 1 时并发执行
func (s *StoryService) GenerateAllImages(ctx context.Context, projectID string) (*BulkImageResult, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	if project.StylePrompt == "" || project.AspectRatio == "" {
		return nil, ErrStyleNotSet
	}

	slots, err := s.slotRepo.FindByProjectID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if len(slots) == 0 {
		return nil, ErrNoSlots
	}

	needsExpansion := false
	for _, slot := range slots {
		if slot.ImagePrompt == "" {
			needsExpansion = true
			break
		}
	}
	if needsExpansion {
		if _, err := s.ExpandPrompts(ctx, projectID); err != nil {
			return nil, fmt.Errorf("expand prompts before bulk generation: %w", err)
		}
		slots, err = s.slotRepo.FindByProjectID(ctx, projectID)
		if err != nil {
			return nil, err
		}
	}

	result := &BulkImageResult{}
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, s.imageConcurrency)

	for _, slot := range slots {
		wg.Add(1)
		sem <- struct{}{}
		go func(slot *storymodel.Slot) {
			defer wg.Done()
			defer func() { <-sem }()

			_, err := s.generateImageForSlot(ctx, slot, project)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Warn().Err(err).Str("slot_id", slot.ID).Int("index", slot.Index).Msg("slot image generation failed")
				result.Failed++
				result.Errors = append(result.Errors, SlotImageError{Index: slot.Index, Error: err.Error()})
			} else {
				result.Succeeded++
			}
		}(slot)
	}
	wg.Wait()

	log.Info().
		Str("project_id", projectID).
		Int("succeeded", result.Succeeded).
		Int("failed", result.Failed).
		Msg("bulk image generation finished")

	return result, nil
}
