package ark

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// ArkVideoConfig Ark 视频生成配置
type ArkVideoConfig struct {
	APIKey  string // API Key（必需）
	BaseURL string // API 基础 URL（可选，默认: https://ark.cn-beijing.volces.com/api/v3）
	Model   string // 模型名称（可选，默认: doubao-seedance-1-0-lite-i2v-250428）
}

func (c *ArkVideoConfig) applyDefaults() {
	if c.Model == "" {
		c.Model = "doubao-seedance-1-0-lite-i2v-250428"
	}
	if c.BaseURL == "" {
		c.BaseURL = "https://ark.cn-beijing.volces.com/api/v3"
	}
}

// VideoTask 视频生成任务状态
type VideoTask struct {
	ID       string
	Status   string // queued, running, succeeded, failed, cancelled
	VideoURL string
}

// ArkVideoClient Ark 视频生成客户端（image-to-video）
// content_generation.tasks 接口 Go SDK 未覆盖，直接走 HTTP
// 参考官方文档: https://www.volcengine.com/docs/82379/1520757
type ArkVideoClient struct {
	model      string
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewArkVideoClient 创建 Ark 视频生成客户端
func NewArkVideoClient(config *ArkVideoConfig) (*ArkVideoClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("ark api key is required")
	}
	config.applyDefaults()

	return &ArkVideoClient{
		model:      config.Model,
		baseURL:    strings.TrimSuffix(config.BaseURL, "/"),
		apiKey:     config.APIKey,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// SubmitTask 提交视频生成任务（异步，立即返回 task_id）
// imageURL 为首帧图片地址，ratio 如 "9:16" 或 "adaptive"
func (c *ArkVideoClient) SubmitTask(ctx context.Context, prompt string, imageURL string, ratio string, duration int) (string, error) {
	if ratio == "" {
		ratio = "adaptive"
	}

	requestBody := map[string]interface{}{
		"model": c.model,
		"content": []map[string]interface{}{
			{
				"type": "text",
				"text": prompt,
			},
			{
				"type": "image_url",
				"image_url": map[string]interface{}{
					"url": imageURL,
				},
			},
		},
		"ratio":     ratio,
		"duration":  duration,
		"watermark": false,
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("marshal request body: %w", err)
	}

	apiURL := fmt.Sprintf("%s/contents/generations/tasks", c.baseURL)

	log.Debug().
		Str("api_url", apiURL).
		Str("model", c.model).
		Str("ratio", ratio).
		Msg("creating Ark video generation task")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		log.Error().
			Int("status_code", resp.StatusCode).
			Str("url", apiURL).
			Str("response_body", string(body)).
			Msg("Ark create video task failed")
		return "", fmt.Errorf("API request failed: status %d, body: %s", resp.StatusCode, string(body))
	}

	var apiResp struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if apiResp.ID == "" {
		return "", fmt.Errorf("task ID is empty in response")
	}

	return apiResp.ID, nil
}

// GetTask 查询视频生成任务状态
// 参考官方文档: https://www.volcengine.com/docs/82379/1521309
func (c *ArkVideoClient) GetTask(ctx context.Context, taskID string) (*VideoTask, error) {
	apiURL := fmt.Sprintf("%s/contents/generations/tasks/%s", c.baseURL, taskID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		log.Error().
			Int("status_code", resp.StatusCode).
			Str("url", apiURL).
			Str("task_id", taskID).
			Str("response_body", string(body)).
			Msg("Ark get video task failed")
		return nil, fmt.Errorf("API request failed: status %d, body: %s", resp.StatusCode, string(body))
	}

	var apiResp struct {
		ID      string `json:"id"`
		Status  string `json:"status"`
		Content struct {
			VideoURL string `json:"video_url"`
		} `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &VideoTask{
		ID:       taskID,
		Status:   apiResp.Status,
		VideoURL: apiResp.Content.VideoURL,
	}, nil
}
