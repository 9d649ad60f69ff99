package replicate

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

const defaultBaseURL = "https://api.replicate.com/v1"

// Prediction 一次推理任务
// Output 的具体形态因模型而异（字符串或字符串数组），用 RawMessage 延迟解析
type Prediction struct {
	ID     string          `json:"id"`
	Status string          `json:"status"` // starting, processing, succeeded, failed, canceled
	Output json.RawMessage `json:"output,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// Terminal 任务是否已到终态
func (p *Prediction) Terminal() bool {
	switch p.Status {
	case "succeeded", "failed", "canceled":
		return true
	}
	return false
}

// OutputURL 提取输出URL
// flux 返回单个字符串，部分模型返回字符串数组（取第一个）
func (p *Prediction) OutputURL() (string, error) {
	if len(p.Output) == 0 {
		return "", fmt.Errorf("prediction %s has no output", p.ID)
	}

	var single string
	if err := json.Unmarshal(p.Output, &single); err == nil && single != "" {
		return single, nil
	}

	var many []string
	if err := json.Unmarshal(p.Output, &many); err == nil && len(many) > 0 {
		return many[0], nil
	}

	return "", fmt.Errorf("prediction %s: unrecognized output shape: %s", p.ID, string(p.Output))
}

// Client Replicate 客户端封装
// 参考: https://replicate.com/docs/reference/http
type Client struct {
	apiToken   string
	baseURL    string
	httpClient *http.Client
}

// New 创建 Replicate 客户端
func New(apiToken, baseURL string) (*Client, error) {
	if apiToken == "" {
		return nil, fmt.Errorf("Replicate API token is required")
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		apiToken:   apiToken,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// CreatePrediction 提交推理任务（非阻塞，立即返回任务ID与初始状态）
// model 形如 "black-forest-labs/flux-1.1-pro"
func (c *Client) CreatePrediction(ctx context.Context, model string, input map[string]interface{}) (*Prediction, error) {
	requestBody := map[string]interface{}{
		"input": input,
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}

	// 按模型名提交: POST /models/{owner}/{name}/predictions
	apiURL := fmt.Sprintf("%s/models/%s/predictions", c.baseURL, model)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		log.Error().
			Int("status_code", resp.StatusCode).
			Str("model", model).
			Str("response_body", string(body)).
			Msg("Replicate create prediction failed")
		return nil, fmt.Errorf("create prediction failed: status %d, body: %s", resp.StatusCode, string(body))
	}

	var prediction Prediction
	if err := json.NewDecoder(resp.Body).Decode(&prediction); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if prediction.ID == "" {
		return nil, fmt.Errorf("prediction id is empty in response")
	}

	return &prediction, nil
}

// GetPrediction 查询任务状态
func (c *Client) GetPrediction(ctx context.Context, predictionID string) (*Prediction, error) {
	apiURL := fmt.Sprintf("%s/predictions/%s", c.baseURL, predictionID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("get prediction failed: status %d, body: %s", resp.StatusCode, string(body))
	}

	var prediction Prediction
	if err := json.NewDecoder(resp.Body).Decode(&prediction); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &prediction, nil
}

// Wait 阻塞等待任务到达终态
// 图片生成走同步语义时使用；视频等长任务应改用 GetPrediction 自行轮询
func (c *Client) Wait(ctx context.Context, predictionID string, pollInterval, maxWait time.Duration) (*Prediction, error) {
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	start := time.Now()

	for {
		if maxWait > 0 && time.Since(start) > maxWait {
			return nil, fmt.Errorf("prediction %s timeout after %v", predictionID, maxWait)
		}

		prediction, err := c.GetPrediction(ctx, predictionID)
		if err != nil {
			return nil, err
		}
		if prediction.Terminal() {
			return prediction, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}
