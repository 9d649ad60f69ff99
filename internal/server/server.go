package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"storyreel/internal/ai"
	"storyreel/internal/config"
	"storyreel/internal/handler"
	storyHandler "storyreel/internal/handler/story"
	"storyreel/internal/pkg/cache"
	"storyreel/internal/pkg/elevenlabs"
	"storyreel/internal/pkg/mongodb"
	"storyreel/internal/pkg/providers"
	"storyreel/internal/pkg/storagefactory"
	storyRepo "storyreel/internal/repository/story"
	"storyreel/internal/server/middleware"
	storySvc "storyreel/internal/service/story"
)

// Server HTTP 服务器
type Server struct {
	cfg      *config.Config
	engine   *gin.Engine
	mongo    *mongodb.Client
	redis    *cache.RedisCache
	storySvc *storySvc.StoryService
}

// New 创建服务器实例
// MongoDB、存储与各外部服务凭证缺失时直接报错，不降级启动
func New(cfg *config.Config) (*Server, error) {
	// 设置 Gin 模式
	switch cfg.Server.Mode {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建 Gin 引擎
	engine := gin.New()

	ctx := context.Background()

	// 初始化 MongoDB（必需）
	mongoClient, err := mongodb.New(&cfg.Mongo)
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to MongoDB")

	if err := mongodb.EnsureIndexes(mongoClient.Database()); err != nil {
		log.Warn().Err(err).Msg("failed to ensure indexes")
	}

	// 初始化 Redis (可选)
	var redisCache *cache.RedisCache
	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedisCache(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to Redis, continuing without it")
		} else {
			redisCache = rc
			log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to Redis")
		}
	}

	// 初始化存储（必需，旁白音频与 ark 图片落盘依赖它）
	store, err := storagefactory.NewStorage(ctx, &cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("create storage: %w", err)
	}
	log.Info().Str("type", store.GetStorageType()).Msg("storage initialized")

	// 初始化外部服务客户端
	aiClient, err := ai.NewClient(ctx, &cfg.AI)
	if err != nil {
		return nil, fmt.Errorf("create AI client: %w", err)
	}

	ttsClient, err := elevenlabs.NewClient(&cfg.TTS)
	if err != nil {
		return nil, fmt.Errorf("create TTS client: %w", err)
	}

	imageGen, err := providers.NewImageGenerator(&cfg.Image, store)
	if err != nil {
		return nil, fmt.Errorf("create image generator: %w", err)
	}

	videoGen, err := providers.NewVideoGenerator(&cfg.Video)
	if err != nil {
		return nil, fmt.Errorf("create video generator: %w", err)
	}

	// 组装服务
	projectRepo := storyRepo.NewProjectRepo(mongoClient.Database())
	slotRepo := storyRepo.NewSlotRepo(mongoClient.Database())

	svc := storySvc.NewStoryService(
		projectRepo,
		slotRepo,
		aiClient,
		ttsClient,
		imageGen,
		videoGen,
		store,
		redisCache,
		&cfg.Image,
		&cfg.Video,
	)

	srv := &Server{
		cfg:      cfg,
		engine:   engine,
		mongo:    mongoClient,
		redis:    redisCache,
		storySvc: svc,
	}

	// 设置路由
	srv.setupRoutes()

	return srv, nil
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() {
	// 全局中间件
	s.engine.Use(middleware.Recovery())
	s.engine.Use(middleware.RequestID())
	s.engine.Use(middleware.Logger())
	s.engine.Use(middleware.CORS())

	// 健康检查，就绪检查探测 MongoDB
	healthHandler := handler.NewHealthHandler(s.mongo.Ping)
	s.engine.GET("/health", healthHandler.Health)
	s.engine.GET("/ready", healthHandler.Ready)

	// Swagger 文档
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 本地存储时直接对外提供文件访问
	if s.cfg.Storage.Type == "local" && s.cfg.Storage.Local != nil {
		s.engine.Static("/uploads", s.cfg.Storage.Local.BasePath)
	}

	storyHdl := storyHandler.NewHandler(s.storySvc)

	// API v1
	v1 := s.engine.Group("/api/v1")
	{
		v1.POST("/projects", storyHdl.CreateProject)
		v1.GET("/projects/:project_id", storyHdl.GetProject)
		v1.PATCH("/projects/:project_id", storyHdl.UpdateProject)

		v1.POST("/projects/:project_id/narration", storyHdl.GenerateNarration)
		v1.POST("/projects/:project_id/segments", storyHdl.SegmentScript)
		v1.GET("/projects/:project_id/segments", storyHdl.GetSegments)
		v1.POST("/projects/:project_id/prompts", storyHdl.ExpandPrompts)
		v1.POST("/projects/:project_id/style/sample", storyHdl.GenerateStyleSample)
		v1.POST("/projects/:project_id/style/approve", storyHdl.ApproveStyle)
		v1.POST("/projects/:project_id/images", storyHdl.GenerateAllImages)

		v1.POST("/slots/:slot_id/image", storyHdl.GenerateSlotImage)
		v1.PATCH("/slots/:slot_id", storyHdl.UpdateSlot)
		v1.POST("/slots/:slot_id/video", storyHdl.StartVideo)
		v1.GET("/videos/:job_id", storyHdl.VideoStatus)

		v1.POST("/chat", storyHdl.Chat)
		v1.GET("/voices", storyHdl.ListVoices)
	}
}

// Run 启动服务器
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	// 启动服务器
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 等待关闭信号或错误
	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down server...")

		// 停掉在途的视频轮询器
		s.storySvc.Close()

		// 关闭连接
		if s.mongo != nil {
			if err := s.mongo.Close(context.Background()); err != nil {
				log.Error().Err(err).Msg("failed to close MongoDB connection")
			}
		}
		if s.redis != nil {
			if err := s.redis.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close Redis connection")
			}
		}

		return srv.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}

// Engine 获取 Gin 引擎 (用于测试)
func (s *Server) Engine() *gin.Engine {
	return s.engine
}
