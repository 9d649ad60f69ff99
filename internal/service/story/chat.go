package story

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"storyreel/internal/ai"
	storymodel "storyreel/internal/model/story"
)

const storyMentorSystemPrompt = `You are a story-writing mentor helping users develop short stories for narration. Your role is to guide the user through a structured story development process.

INITIAL CONVERSATION:
When starting a new conversation, always ask about:
1. Genre preferences (e.g., horror, fantasy, drama)
2. Desired tone (e.g., dark, lighthearted, mysterious)
3. Target length (2-5 minutes when narrated)
4. Any specific themes or elements they want to include

ONGOING CONVERSATION:
For each user message:
1. Acknowledge their input
2. Ask 1-2 specific questions about unclear elements
3. Provide constructive suggestions for improvement
4. Keep track of established story elements

STORY ELEMENTS TO TRACK:
- Genre and tone
- Main characters
- Setting
- Core conflict
- Plot points
- Desired ending type

WHEN USER IS SATISFIED:
1. Confirm they want the final version
2. Provide a polished, well-structured draft
3. Remind them to copy it to the "Final Script" box

Keep responses concise and focused. Use a friendly, encouraging tone while maintaining professional guidance.

Example first response:
"I'm excited to help you develop your story! Let's start with some key elements:
1. What genre interests you?
2. Are you looking for a particular tone or mood?
3. How long would you like the narrated story to be (2-5 minutes)?
4. Do you have any specific themes or elements in mind?"

Remember to maintain story coherence and pacing suitable for narration.`

// Chat 故事创作对话
// 首条消息时注入创作导师系统提示词，其后原样透传历史
func (s *StoryService) Chat(ctx context.Context, messages []ai.Message) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("messages is required")
	}

	full := messages
	if len(messages) == 1 {
		full = append([]ai.Message{{Role: ai.RoleSystem, Content: storyMentorSystemPrompt}}, messages...)
	}

	response, err := s.llm.Complete(ctx, full)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	return response, nil
}

// SlotPatch 分镜可选字段更新
type SlotPatch struct {
	ImagePrompt *string
	ImageURL    *string
	VideoPrompt *string
}

// UpdateSlot 按提供的字段更新单个分镜
func (s *StoryService) UpdateSlot(ctx context.Context, slotID string, patch *SlotPatch) (*storymodel.Slot, error) {
	updates := map[string]interface{}{}
	if patch.ImagePrompt != nil {
		updates["image_prompt"] = *patch.ImagePrompt
	}
	if patch.ImageURL != nil {
		updates["image_url"] = *patch.ImageURL
	}
	if patch.VideoPrompt != nil {
		updates["video_prompt"] = *patch.VideoPrompt
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}

	if err := s.slotRepo.Update(ctx, slotID, updates); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}

	slot, err := s.slotRepo.FindByID(ctx, slotID)
	if err != nil {
		return nil, err
	}
	return slot, nil
}
