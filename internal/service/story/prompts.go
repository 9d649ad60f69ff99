package story

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"

	"storyreel/internal/ai"
	storymodel "storyreel/internal/model/story"
	"storyreel/internal/pkg/storytools"
	storyrepo "storyreel/internal/repository/story"
)

const promptEngineerSystemPrompt = `You are a master cinematographer and visual storyteller. Your task is to create detailed, standalone scene descriptions for EVERY segment in the story. You must generate exactly one prompt for each segment provided, maintaining the same order.

CRITICAL REQUIREMENTS:
1. Generate EXACTLY one prompt for EACH segment in the input
2. Each prompt must be completely self-contained
3. Never use pronouns without clear antecedents
4. Always introduce subjects and settings as if for the first time
5. Include complete visual context in every scene

SCENE DESCRIPTION STRUCTURE:
1. COMPLETE SETTING ESTABLISHMENT
   - Time of day, weather, location
   - Full environmental context
   - Atmosphere and mood

2. SUBJECT INTRODUCTION
   - Introduce every subject as if for the first time
   - Include all identifying characteristics
   - Describe their current state and actions

3. VISUAL DETAILS
   - Lighting conditions
   - Camera angle and framing
   - Color palette and tone
   - Textures and materials
   - Depth and perspective

4. TECHNICAL SPECIFICATIONS
   - Composition guidelines for the specified aspect ratio
   - Key focal points
   - Depth of field

BAD EXAMPLE:
"The tiger continues hunting in the snow" (lacks context, uses pronouns without antecedents)

GOOD EXAMPLE:
"A massive Canadian Snow Tiger, its white fur shimmering with subtle black stripes, stalks through a pristine snow-covered pine forest at dawn. The tiger's distinctive features - crystalline blue eyes and powerful, muscular frame - stand out against the misty winter landscape. Golden morning light filters through frost-laden branches, creating a dramatic rim lighting effect on the tiger's fur. Shot from a low angle, the tiger's powerful form dominates the right third of the frame while snow-covered pines recede into the misty distance, creating depth."

OUTPUT FORMAT:
You MUST return a JSON object with this EXACT structure:
{
  "prompts": [
    {
      "sceneIndex": number (matching the input segment's index),
      "prompt": string (the complete scene description),
      "visualContinuity": {
        "elementsToMaintain": string[],
        "elementsToEvolve": string[]
      }
    }
    // EXACTLY one entry for EACH input segment
  ]
}

CRITICAL REMINDERS:
1. You MUST generate EXACTLY one prompt for EACH segment
2. NEVER skip any segments
3. NEVER combine segments
4. NEVER use pronouns without clear antecedents
5. ALWAYS describe the complete setting
6. ALWAYS introduce subjects as if for the first time
7. ALWAYS include full visual context`

// GeneratedPrompt 扩写产出的单条场景提示词
type GeneratedPrompt struct {
	SceneIndex       int                            `json:"sceneIndex"`
	Prompt           string                         `json:"prompt"`
	VisualContinuity *storymodel.ContinuityMetadata `json:"visualContinuity"`
}

type promptGenerationResponse struct {
	Prompts []GeneratedPrompt `json:"prompts"`
}

// promptRequest 发送给 LLM 的完整上下文
type promptRequest struct {
	Story struct {
		FullScript string              `json:"fullScript"`
		Segments   []promptRequestSlot `json:"segments"`
	} `json:"story"`
	Style struct {
		DesiredStyle string `json:"desiredStyle"`
		AspectRatio  string `json:"aspectRatio"`
	} `json:"style"`
}

type promptRequestSlot struct {
	Index       int    `json:"index"`
	Text        string `json:"text"`
	Description string `json:"description"`
	Timestamp   string `json:"timestamp"`
}

// ExpandPrompts 为项目全部分镜扩写图片提示词
// 全有或全无：任一条目不合法则整个阶段失败，所有写入走单个事务
func (s *StoryService) ExpandPrompts(ctx context.Context, projectID string) ([]GeneratedPrompt, error) {
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

	var req promptRequest
	req.Story.FullScript = project.FinalScript
	req.Story.Segments = make([]promptRequestSlot, len(slots))
	for i, slot := range slots {
		req.Story.Segments[i] = promptRequestSlot{
			Index:       slot.Index,
			Text:        slot.TextSegment,
			Description: slot.SceneDescription,
			Timestamp:   slot.Timestamp,
		}
	}
	req.Style.DesiredStyle = project.StylePrompt
	req.Style.AspectRatio = project.AspectRatio

	reqJSON, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal prompt request: %w", err)
	}

	response, err := s.llm.Complete(ctx, []ai.Message{
		{Role: ai.RoleSystem, Content: promptEngineerSystemPrompt},
		{Role: ai.RoleUser, Content: string(reqJSON)},
	})
	if err != nil {
		return nil, fmt.Errorf("prompt expansion completion: %w", err)
	}

	prompts, err := parseGeneratedPrompts(response, len(slots))
	if err != nil {
		log.Error().Err(err).Str("project_id", projectID).Msg("prompt expansion response rejected")
		return nil, err
	}

	updates := make([]storyrepo.SlotUpdate, len(prompts))
	for i, p := range prompts {
		updates[i] = storyrepo.SlotUpdate{
			SlotID: slots[p.SceneIndex].ID,
			Fields: map[string]interface{}{
				"image_prompt":        p.Prompt,
				"continuity_metadata": p.VisualContinuity,
			},
		}
	}

	if err := s.slotRepo.BatchUpdate(ctx, updates); err != nil {
		return nil, fmt.Errorf("persist expanded prompts: %w", err)
	}

	log.Info().
		Str("project_id", projectID).
		Int("prompts", len(prompts)).
		Msg("image prompts expanded")

	return prompts, nil
}

// parseGeneratedPrompts 解析并校验扩写结果，返回按 sceneIndex 升序的条目
// 数量不符、prompt 为空、sceneIndex 越界或重复都视为整体失败
func parseGeneratedPrompts(response string, slotCount int) ([]GeneratedPrompt, error) {
	cleaned := storytools.CleanJSONContent(response)

	var result promptGenerationResponse
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return nil, fmt.Errorf("failed to parse prompt generation response: %w", err)
	}

	if len(result.Prompts) != slotCount {
		return nil, fmt.Errorf("expected %d prompts but got %d", slotCount, len(result.Prompts))
	}

	seen := make(map[int]bool, slotCount)
	for i, p := range result.Prompts {
		if strings.TrimSpace(p.Prompt) == "" {
			return nil, fmt.Errorf("invalid prompt at index %d", i)
		}
		if p.SceneIndex < 0 || p.SceneIndex >= slotCount {
			return nil, fmt.Errorf("invalid scene index %d at prompt %d", p.SceneIndex, i)
		}
		if seen[p.SceneIndex] {
			return nil, fmt.Errorf("duplicate scene index %d at prompt %d", p.SceneIndex, i)
		}
		seen[p.SceneIndex] = true
	}

	sort.Slice(result.Prompts, func(a, b int) bool {
		return result.Prompts[a].SceneIndex < result.Prompts[b].SceneIndex
	})

	return result.Prompts, nil
}
