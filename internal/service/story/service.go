package story

import (
	"context"
	"errors"
	"sync"
	"time"

	"storyreel/internal/ai"
	"storyreel/internal/config"
	storymodel "storyreel/internal/model/story"
	"storyreel/internal/pkg/cache"
	"storyreel/internal/pkg/elevenlabs"
	"storyreel/internal/pkg/providers"
	"storyreel/internal/pkg/storage"
	storyrepo "storyreel/internal/repository/story"
)

// 业务错误，由 handler 映射为对应的 HTTP 状态码
var (
	ErrProjectNotFound = errors.New("project not found")
	ErrSlotNotFound    = errors.New("slot not found")
	ErrJobNotFound     = errors.New("video job not found")
	ErrNoAudioDuration = errors.New("project has no narration audio, run narration first")
	ErrStyleNotSet     = errors.New("project style not approved, approve a style first")
	ErrNoSlots         = errors.New("project has no slots, run segmentation first")
	ErrNoImage         = errors.New("slot has no image, generate an image first")
	ErrStaleSample     = errors.New("style sample is stale, generate a new sample before approving")
)

// TextGenerator LLM 文本生成接口（对话、切分、提示词扩写共用）
type TextGenerator interface {
	Complete(ctx context.Context, messages []ai.Message) (string, error)
}

// SpeechSynthesizer 语音合成接口
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text, voiceID string) ([]byte, error)
	Voices(ctx context.Context) ([]elevenlabs.Voice, error)
}

// ProjectDetail 项目及其全部分镜（按 index 升序）
type ProjectDetail struct {
	Project *storymodel.Project `json:"project"`
	Slots   []*storymodel.Slot  `json:"slots"`
}

// StoryService 故事视频流水线服务
// 职责：项目、旁白、切分、风格、提示词、图片、视频各阶段的业务编排
type StoryService struct {
	projectRepo storyrepo.ProjectRepository
	slotRepo    storyrepo.SlotRepository

	llm      TextGenerator
	tts      SpeechSynthesizer
	imageGen providers.ImageGenerator
	videoGen providers.VideoGenerator
	storage  storage.Storage
	cache    *cache.RedisCache // 可选，nil 时直连上游

	imageConcurrency int
	pollInterval     time.Duration

	// 视频轮询器登记表：slotID -> 在途任务
	pollMu  sync.Mutex
	pollers map[string]*pollHandle
	wg      sync.WaitGroup
}

// pollHandle 一个在途视频任务的轮询句柄
type pollHandle struct {
	jobID  string
	cancel context.CancelFunc
}

// NewStoryService 创建故事服务
func NewStoryService(
	projectRepo storyrepo.ProjectRepository,
	slotRepo storyrepo.SlotRepository,
	llm TextGenerator,
	tts SpeechSynthesizer,
	imageGen providers.ImageGenerator,
	videoGen providers.VideoGenerator,
	store storage.Storage,
	redisCache *cache.RedisCache,
	imageCfg *config.ImageConfig,
	videoCfg *config.VideoConfig,
) *StoryService {
	imageConcurrency := 1
	if imageCfg != nil && imageCfg.MaxConcurrency > 1 {
		imageConcurrency = imageCfg.MaxConcurrency
	}
	pollInterval := 5 * time.Second
	if videoCfg != nil && videoCfg.PollInterval > 0 {
		pollInterval = videoCfg.PollInterval
	}

	return &StoryService{
		projectRepo:      projectRepo,
		slotRepo:         slotRepo,
		llm:              llm,
		tts:              tts,
		imageGen:         imageGen,
		videoGen:         videoGen,
		storage:          store,
		cache:            redisCache,
		imageConcurrency: imageConcurrency,
		pollInterval:     pollInterval,
		pollers:          make(map[string]*pollHandle),
	}
}

// Close 停止所有在途的视频轮询器并等待退出
func (s *StoryService) Close() {
	s.pollMu.Lock()
	for slotID, h := range s.pollers {
		h.cancel()
		delete(s.pollers, slotID)
	}
	s.pollMu.Unlock()
	s.wg.Wait()
}
