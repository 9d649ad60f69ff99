package ark

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/volcengine/volcengine-go-sdk/service/arkruntime"
	"github.com/volcengine/volcengine-go-sdk/service/arkruntime/model"
)

// ArkImageConfig Ark 图片生成配置
type ArkImageConfig struct {
	APIKey  string // API Key（必需）
	BaseURL string // API 基础 URL（可选，默认: https://ark.cn-beijing.volces.com/api/v3）
	Model   string // 模型名称（可选，默认: doubao-seedream-3-0-t2i-250415）
}

func (c *ArkImageConfig) applyDefaults() {
	if c.Model == "" {
		c.Model = "doubao-seedream-3-0-t2i-250415"
	}
	if c.BaseURL == "" {
		c.BaseURL = "https://ark.cn-beijing.volces.com/api/v3"
	}
}

// ArkImageClient Ark 图片生成客户端
// 用于调用火山引擎的 Ark API 生成图片
type ArkImageClient struct {
	client *arkruntime.Client
	model  string
}

// NewArkImageClient 创建 Ark 图片生成客户端
func NewArkImageClient(config *ArkImageConfig) (*ArkImageClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("ark api key is required")
	}
	config.applyDefaults()

	var opts []arkruntime.ConfigOption
	if config.BaseURL != "" {
		opts = append(opts, arkruntime.WithBaseUrl(config.BaseURL))
	}

	arkClient := arkruntime.NewClientWithApiKey(config.APIKey, opts...)

	return &ArkImageClient{
		client: arkClient,
		model:  config.Model,
	}, nil
}

// GenerateImage 生成图片（同步接口），返回解码后的图片字节
// size 为像素尺寸，如 "1024x1024"
func (c *ArkImageClient) GenerateImage(ctx context.Context, prompt string, size string, watermark bool) ([]byte, error) {
	if size == "" {
		size = "1024x1024"
	}

	responseFormat := "b64_json"

	input := model.GenerateImagesRequest{
		Model:          c.model,
		Prompt:         prompt,
		Size:           &size,
		ResponseFormat: &responseFormat,
		Watermark:      &watermark,
	}

	output, err := c.client.GenerateImages(ctx, input)
	if err != nil {
		log.Error().Err(err).Msg("failed to call Ark GenerateImages API")
		return nil, fmt.Errorf("Ark GenerateImages API call failed: %w", err)
	}

	if len(output.Data) == 0 {
		return nil, fmt.Errorf("no image data in response")
	}

	firstImage := output.Data[0]
	if firstImage.B64Json == nil {
		return nil, fmt.Errorf("no b64_json in response data")
	}

	imageData, err := base64.StdEncoding.DecodeString(*firstImage.B64Json)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 image data: %w", err)
	}

	return imageData, nil
}
