package ai

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"storyreel/internal/ai/component"
	"storyreel/internal/config"
)

// 消息角色
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message 一条对话消息
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client AI 能力层客户端
// 职责: 封装 LLM 调用，提供统一接口
type Client struct {
	cfg       *config.AIConfig
	chatModel model.ChatModel
}

// NewClient 创建 AI 客户端
func NewClient(ctx context.Context, cfg *config.AIConfig) (*Client, error) {
	chatModel, err := component.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	return &Client{
		cfg:       cfg,
		chatModel: chatModel,
	}, nil
}

// Complete 同步对话补全，返回模型输出文本
func (c *Client) Complete(ctx context.Context, messages []Message) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("messages is empty")
	}

	input := make([]*schema.Message, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			input = append(input, schema.SystemMessage(m.Content))
		case RoleAssistant:
			input = append(input, schema.AssistantMessage(m.Content, nil))
		case RoleUser:
			input = append(input, schema.UserMessage(m.Content))
		default:
			return "", fmt.Errorf("unknown message role: %s", m.Role)
		}
	}

	output, err := c.chatModel.Generate(ctx, input)
	if err != nil {
		return "", fmt.Errorf("chat model generate: %w", err)
	}

	return output.Content, nil
}
