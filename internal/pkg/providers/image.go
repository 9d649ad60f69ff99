package providers

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"storyreel/internal/config"
	"storyreel/internal/pkg/ark"
	"storyreel/internal/pkg/id"
	"storyreel/internal/pkg/replicate"
	"storyreel/internal/pkg/storage"
)

const defaultNegativePrompt = "blurry, low quality, distorted, deformed"

// ReplicateImageProvider 基于 Replicate flux 的图片生成
type ReplicateImageProvider struct {
	client *replicate.Client
	model  string
}

// NewReplicateImageProvider 创建 Replicate 图片生成器
func NewReplicateImageProvider(cfg *config.ImageConfig) (*ReplicateImageProvider, error) {
	client, err := replicate.New(cfg.APIKey, cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("create replicate client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = "black-forest-labs/flux-1.1-pro"
	}

	return &ReplicateImageProvider{
		client: client,
		model:  model,
	}, nil
}

// Generate 生成一张图片并返回托管URL（同步语义，内部轮询等待）
func (p *ReplicateImageProvider) Generate(ctx context.Context, prompt string, aspectRatio string) (string, error) {
	input := map[string]interface{}{
		"prompt":              prompt,
		"aspect_ratio":        aspectRatio,
		"prompt_upsampling":   true,
		"num_inference_steps": 50,
		"guidance_scale":      7.5,
		"negative_prompt":     defaultNegativePrompt,
		"output_format":       "png",
		"output_quality":      100,
	}

	prediction, err := p.client.CreatePrediction(ctx, p.model, input)
	if err != nil {
		return "", fmt.Errorf("create image prediction: %w", err)
	}

	log.Debug().
		Str("prediction_id", prediction.ID).
		Str("model", p.model).
		Str("aspect_ratio", aspectRatio).
		Msg("image prediction submitted")

	final, err := p.client.Wait(ctx, prediction.ID, 2*time.Second, 5*time.Minute)
	if err != nil {
		return "", fmt.Errorf("wait for image prediction: %w", err)
	}
	if final.Status != "succeeded" {
		return "", fmt.Errorf("image prediction %s ended with status %s: %s", final.ID, final.Status, final.Error)
	}

	return final.OutputURL()
}

// arkImageSizes 宽高比到 Ark 像素尺寸的映射
var arkImageSizes = map[string]string{
	"1:1":  "1024x1024",
	"16:9": "1280x720",
	"9:16": "720x1280",
	"3:2":  "1248x832",
	"2:3":  "832x1248",
	"4:5":  "912x1140",
	"5:4":  "1140x912",
	"3:4":  "864x1152",
	"4:3":  "1152x864",
}

// ArkImageProvider 基于火山引擎 Ark 的图片生成
// Ark 返回图片字节，落到对象存储后以存储URL对外
type ArkImageProvider struct {
	client *ark.ArkImageClient
	store  storage.Storage
}

// NewArkImageProvider 创建 Ark 图片生成器
func NewArkImageProvider(cfg *config.ImageConfig, store storage.Storage) (*ArkImageProvider, error) {
	client, err := ark.NewArkImageClient(&ark.ArkImageConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("create ark image client: %w", err)
	}
	if store == nil {
		return nil, fmt.Errorf("ark image provider requires storage")
	}

	return &ArkImageProvider{
		client: client,
		store:  store,
	}, nil
}

// Generate 生成一张图片，上传到存储并返回URL
func (p *ArkImageProvider) Generate(ctx context.Context, prompt string, aspectRatio string) (string, error) {
	size, ok := arkImageSizes[aspectRatio]
	if !ok {
		size = arkImageSizes["1:1"]
	}

	data, err := p.client.GenerateImage(ctx, prompt, size, false)
	if err != nil {
		return "", fmt.Errorf("ark generate image: %w", err)
	}

	key := fmt.Sprintf("images/%s.png", id.New())
	url, err := p.store.Upload(ctx, key, bytes.NewReader(data), "image/png")
	if err != nil {
		return "", fmt.Errorf("upload image to storage: %w", err)
	}

	log.Debug().
		Str("key", key).
		Int("size_bytes", len(data)).
		Msg("ark image uploaded")

	return url, nil
}
