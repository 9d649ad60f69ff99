package story

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"

	"storyreel/internal/ai"
	storymodel "storyreel/internal/model/story"
	"storyreel/internal/pkg/id"
	"storyreel/internal/pkg/storytools"
)

const segmentationSystemPrompt = "You are a script segmentation expert. Always respond with valid JSON that matches the requested format exactly."

// llmSegment LLM 返回的单个分段
type llmSegment struct {
	SegmentNumber    int    `json:"segment_number"`
	Text             string `json:"text"`
	SceneDescription string `json:"scene_description"`
	Timestamp        string `json:"timestamp"`
}

type llmSegmentation struct {
	Segments []llmSegment `json:"segments"`
}

// buildSegmentationPrompt 构造切分提示词
func buildSegmentationPrompt(script string, numberOfSegments int, audioDuration float64) string {
	return fmt.Sprintf(`You are a professional script segmentation expert. I need you to divide the following script into exactly %d segments.

Requirements:
1. Each segment should be a coherent scene or moment
2. Maintain narrative flow and context
3. Segments should be roughly equal in length/timing
4. Include a brief scene description for each segment

Format your response as follows (maintain exact JSON structure):
{
  "segments": [
    {
      "segment_number": 1,
      "text": "The actual script segment text",
      "scene_description": "Brief description of the scene",
      "timestamp": "0-5s"
    }
    // ... more segments
  ]
}

Script to segment:
%s

Remember:
- Create exactly %d segments
- Keep segments balanced in length
- Ensure each segment can be visualized
- Calculate timestamps based on %g total seconds`, numberOfSegments, script, numberOfSegments, audioDuration)
}

// SegmentScript 将定稿脚本切分为带时间戳的分镜
// 全量替换项目下的分镜；LLM 返回不合法时整个阶段失败，不写入任何数据
func (s *StoryService) SegmentScript(ctx context.Context, projectID string) (*ProjectDetail, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	if project.AudioDuration <= 0 {
		return nil, ErrNoAudioDuration
	}

	numberOfSegments := storytools.SegmentCount(project.AudioDuration)

	response, err := s.llm.Complete(ctx, []ai.Message{
		{Role: ai.RoleSystem, Content: segmentationSystemPrompt},
		{Role: ai.RoleUser, Content: buildSegmentationPrompt(project.FinalScript, numberOfSegments, project.AudioDuration)},
	})
	if err != nil {
		return nil, fmt.Errorf("segmentation completion: %w", err)
	}

	segments, err := parseSegmentation(response, numberOfSegments)
	if err != nil {
		log.Error().Err(err).Str("project_id", projectID).Msg("segmentation response rejected")
		return nil, err
	}

	// 时间戳一律服务端重算，不信任模型给出的值
	now := time.Now()
	slots := make([]*storymodel.Slot, len(segments))
	for i, seg := range segments {
		slots[i] = &storymodel.Slot{
			ID:               id.New(),
			ProjectID:        projectID,
			Index:            seg.SegmentNumber - 1,
			TextSegment:      seg.Text,
			SceneDescription: seg.SceneDescription,
			Timestamp:        storytools.SegmentTimestamp(seg.SegmentNumber-1, numberOfSegments, project.AudioDuration),
			CreatedAt:        now,
			UpdatedAt:        now,
		}
	}

	if err := s.slotRepo.ReplaceByProjectID(ctx, projectID, slots); err != nil {
		return nil, fmt.Errorf("replace slots: %w", err)
	}

	log.Info().
		Str("project_id", projectID).
		Int("segments", numberOfSegments).
		Float64("audio_duration", project.AudioDuration).
		Msg("script segmented")

	return s.GetProject(ctx, projectID)
}

// parseSegmentation 解析并校验 LLM 的切分结果
// 数量不符、字段缺失、编号重复或越界都视为整体失败
func parseSegmentation(response string, expected int) ([]llmSegment, error) {
	cleaned := storytools.CleanJSONContent(response)

	var result llmSegmentation
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return nil, fmt.Errorf("failed to parse segmentation result: %w", err)
	}

	if len(result.Segments) != expected {
		return nil, fmt.Errorf("expected %d segments but got %d", expected, len(result.Segments))
	}

	seen := make(map[int]bool, expected)
	for i, seg := range result.Segments {
		if strings.TrimSpace(seg.Text) == "" || strings.TrimSpace(seg.SceneDescription) == "" {
			return nil, fmt.Errorf("invalid segment data at index %d", i)
		}
		if seg.SegmentNumber < 1 || seg.SegmentNumber > expected {
			return nil, fmt.Errorf("segment number %d out of range at index %d", seg.SegmentNumber, i)
		}
		if seen[seg.SegmentNumber] {
			return nil, fmt.Errorf("duplicate segment number %d at index %d", seg.SegmentNumber, i)
		}
		seen[seg.SegmentNumber] = true
	}

	return result.Segments, nil
}
