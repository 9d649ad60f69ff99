package story

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"storyreel/internal/ai"
	"storyreel/internal/config"
	storymodel "storyreel/internal/model/story"
	"storyreel/internal/pkg/elevenlabs"
	"storyreel/internal/pkg/providers"
	"storyreel/internal/pkg/storage"
	storyrepo "storyreel/internal/repository/story"
)

// 内存版仓库与供应商替身，行为对齐 mongo 实现：
// 未命中返回 mongo.ErrNoDocuments，BatchUpdate 全部成功或全部不写

type fakeProjectRepo struct {
	mu       sync.Mutex
	projects map[string]*storymodel.Project
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{projects: make(map[string]*storymodel.Project)}
}

func (r *fakeProjectRepo) Create(ctx context.Context, project *storymodel.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.projects[project.ID] = project
	return nil
}

func (r *fakeProjectRepo) FindByID(ctx context.Context, id string) (*storymodel.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *p
	return &copied, nil
}

func (r *fakeProjectRepo) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	for key, value := range updates {
		applyProjectField(p, key, value)
	}
	p.UpdatedAt = time.Now()
	return nil
}

func applyProjectField(p *storymodel.Project, key string, value interface{}) {
	switch key {
	case "tts_audio_url":
		p.TTSAudioURL = value.(string)
	case "audio_duration":
		p.AudioDuration = value.(float64)
	case "style_prompt":
		p.StylePrompt = value.(string)
	case "aspect_ratio":
		p.AspectRatio = value.(string)
	case "style_preview_url":
		p.StylePreviewURL = value.(string)
	case "sample_style_prompt":
		p.SampleStylePrompt = value.(string)
	case "sample_aspect_ratio":
		p.SampleAspectRatio = value.(string)
	}
}

type fakeSlotRepo struct {
	mu    sync.Mutex
	slots map[string]*storymodel.Slot

	// 非空时 BatchUpdate 在该分镜上强制失败，模拟事务整体回滚
	batchFailOnSlotID string
}

func newFakeSlotRepo() *fakeSlotRepo {
	return &fakeSlotRepo{slots: make(map[string]*storymodel.Slot)}
}

func (r *fakeSlotRepo) insert(slot *storymodel.Slot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slots[slot.ID] = slot
}

func (r *fakeSlotRepo) FindByID(ctx context.Context, id string) (*storymodel.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *s
	return &copied, nil
}

func (r *fakeSlotRepo) FindByProjectID(ctx context.Context, projectID string) ([]*storymodel.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*storymodel.Slot
	for _, s := range r.slots {
		if s.ProjectID == projectID {
			copied := *s
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(a, b int) bool { return result[a].Index < result[b].Index })
	return result, nil
}

func (r *fakeSlotRepo) FindByVideoJobID(ctx context.Context, jobID string) (*storymodel.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.slots {
		if s.VideoJobID == jobID {
			copied := *s
			return &copied, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *fakeSlotRepo) ReplaceByProjectID(ctx context.Context, projectID string, slots []*storymodel.Slot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.slots {
		if s.ProjectID == projectID {
			delete(r.slots, id)
		}
	}
	for _, s := range slots {
		copied := *s
		r.slots[s.ID] = &copied
	}
	return nil
}

func (r *fakeSlotRepo) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	for key, value := range updates {
		applySlotField(s, key, value)
	}
	s.UpdatedAt = time.Now()
	return nil
}

func (r *fakeSlotRepo) BatchUpdate(ctx context.Context, updates []storyrepo.SlotUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	// 先整体校验，任一条失败则不落任何写入
	for _, u := range updates {
		if _, ok := r.slots[u.SlotID]; !ok {
			return mongo.ErrNoDocuments
		}
		if r.batchFailOnSlotID != "" && u.SlotID == r.batchFailOnSlotID {
			return fmt.Errorf("forced batch failure on slot %s", u.SlotID)
		}
	}
	for _, u := range updates {
		s := r.slots[u.SlotID]
		for key, value := range u.Fields {
			applySlotField(s, key, value)
		}
		s.UpdatedAt = time.Now()
	}
	return nil
}

func applySlotField(s *storymodel.Slot, key string, value interface{}) {
	switch key {
	case "image_prompt":
		s.ImagePrompt = value.(string)
	case "continuity_metadata":
		if value == nil {
			s.ContinuityMetadata = nil
		} else {
			s.ContinuityMetadata = value.(*storymodel.ContinuityMetadata)
		}
	case "image_url":
		s.ImageURL = value.(string)
	case "video_prompt":
		s.VideoPrompt = value.(string)
	case "video_url":
		s.VideoURL = value.(string)
	case "video_status":
		s.VideoStatus = value.(storymodel.VideoStatus)
	case "video_job_id":
		s.VideoJobID = value.(string)
	}
}

// fakeLLM 按调用顺序返回预设的回复
type fakeLLM struct {
	mu        sync.Mutex
	responses []string
	err       error
	calls     [][]ai.Message
}

func (f *fakeLLM) Complete(ctx context.Context, messages []ai.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, messages)
	if f.err != nil {
		return "", f.err
	}
	if len(f.responses) == 0 {
		return "", fmt.Errorf("fakeLLM: no response configured")
	}
	response := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	return response, nil
}

type fakeTTS struct {
	audio  []byte
	voices []elevenlabs.Voice
	err    error
}

func (f *fakeTTS) Synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.audio, nil
}

func (f *fakeTTS) Voices(ctx context.Context) ([]elevenlabs.Voice, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.voices, nil
}

// fakeImageGen 按调用序号出图，failOn 指定的调用序号（从 1 开始）返回错误
type fakeImageGen struct {
	mu      sync.Mutex
	calls   int
	prompts []string
	failOn  map[int]bool
}

func (f *fakeImageGen) Generate(ctx context.Context, prompt string, aspectRatio string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.prompts = append(f.prompts, prompt)
	if f.failOn[f.calls] {
		return "", fmt.Errorf("image provider unavailable")
	}
	return fmt.Sprintf("https://img.test/%d.png", f.calls), nil
}

// fakeVideoGen 为每个任务按顺序消费预设的状态序列，末项重复返回
type fakeVideoGen struct {
	mu        sync.Mutex
	submitted int
	submitErr error
	statusErr error
	statuses  map[string][]*providers.JobStatus
}

func newFakeVideoGen() *fakeVideoGen {
	return &fakeVideoGen{statuses: make(map[string][]*providers.JobStatus)}
}

func (f *fakeVideoGen) Submit(ctx context.Context, prompt string, firstFrameImage string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return "", f.submitErr
	}
	f.submitted++
	return fmt.Sprintf("job-%d", f.submitted), nil
}

func (f *fakeVideoGen) GetStatus(ctx context.Context, jobID string) (*providers.JobStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	queue, ok := f.statuses[jobID]
	if !ok || len(queue) == 0 {
		return &providers.JobStatus{State: providers.JobStateProcessing}, nil
	}
	status := queue[0]
	if len(queue) > 1 {
		f.statuses[jobID] = queue[1:]
	}
	return status, nil
}

// fakeStorage 只记录上传，URL 为固定前缀加 key
type fakeStorage struct {
	mu       sync.Mutex
	uploaded map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{uploaded: make(map[string][]byte)}
}

func (f *fakeStorage) Upload(ctx context.Context, key string, data io.Reader, contentType string) (string, error) {
	content, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploaded[key] = content
	return "https://cdn.test/" + key, nil
}

func (f *fakeStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	return nil, fmt.Errorf("not implemented")
}

func (f *fakeStorage) GetPresignedUploadURL(ctx context.Context, key string, contentType string, expiresIn time.Duration) (string, error) {
	return "", fmt.Errorf("not implemented")
}

func (f *fakeStorage) GetPresignedDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error) {
	return "", fmt.Errorf("not implemented")
}

func (f *fakeStorage) Delete(ctx context.Context, key string) error {
	return nil
}

func (f *fakeStorage) Exists(ctx context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.uploaded[key]
	return ok, nil
}

func (f *fakeStorage) GetFileInfo(ctx context.Context, key string) (*storage.FileInfo, error) {
	return nil, fmt.Errorf("not implemented")
}

func (f *fakeStorage) GetStorageType() string {
	return "fake"
}

// testEnv 服务测试装配
type testEnv struct {
	svc         *StoryService
	projectRepo *fakeProjectRepo
	slotRepo    *fakeSlotRepo
	llm         *fakeLLM
	tts         *fakeTTS
	imageGen    *fakeImageGen
	videoGen    *fakeVideoGen
	storage     *fakeStorage
}

func newTestEnv() *testEnv {
	env := &testEnv{
		projectRepo: newFakeProjectRepo(),
		slotRepo:    newFakeSlotRepo(),
		llm:         &fakeLLM{},
		tts:         &fakeTTS{},
		imageGen:    &fakeImageGen{failOn: make(map[int]bool)},
		videoGen:    newFakeVideoGen(),
		storage:     newFakeStorage(),
	}
	env.svc = NewStoryService(
		env.projectRepo,
		env.slotRepo,
		env.llm,
		env.tts,
		env.imageGen,
		env.videoGen,
		env.storage,
		nil,
		&config.ImageConfig{MaxConcurrency: 1},
		&config.VideoConfig{PollInterval: 10 * time.Millisecond},
	)
	return env
}

func (env *testEnv) seedProject(p *storymodel.Project) *storymodel.Project {
	if p.ID == "" {
		p.ID = "proj-1"
	}
	env.projectRepo.projects[p.ID] = p
	return p
}

func (env *testEnv) seedSlots(projectID string, count int) []*storymodel.Slot {
	slots := make([]*storymodel.Slot, count)
	for i := 0; i < count; i++ {
		slots[i] = &storymodel.Slot{
			ID:               fmt.Sprintf("slot-%d", i),
			ProjectID:        projectID,
			Index:            i,
			TextSegment:      fmt.Sprintf("segment text %d", i),
			SceneDescription: fmt.Sprintf("scene description %d", i),
			Timestamp:        fmt.Sprintf("%d-%ds", i*6, (i+1)*6),
		}
		env.slotRepo.insert(slots[i])
	}
	return slots
}
