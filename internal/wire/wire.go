// Package wire 提供手工装配的依赖注入
package wire

import (
	"context"
	"fmt"

	einoembedding "github.com/cloudwego/eino/components/embedding"
	einomodel "github.com/cloudwego/eino/components/model"

	"scholar-sync-api/internal/application/docs"
	"scholar-sync-api/internal/application/extract"
	"scholar-sync-api/internal/application/ingest"
	"scholar-sync-api/internal/application/notify"
	"scholar-sync-api/internal/application/retrieval"
	"scholar-sync-api/internal/config"
	infraembedding "scholar-sync-api/internal/infrastructure/embedding"
	"scholar-sync-api/internal/infrastructure/llm"
	"scholar-sync-api/internal/infrastructure/messaging"
	"scholar-sync-api/internal/infrastructure/persistence/milvus"
	"scholar-sync-api/internal/infrastructure/persistence/postgres"
	"scholar-sync-api/internal/infrastructure/persistence/redis"
	"scholar-sync-api/internal/infrastructure/storage"
	"scholar-sync-api/internal/interfaces/http/handler"
	"scholar-sync-api/internal/interfaces/http/middleware"
	"scholar-sync-api/internal/interfaces/http/router"
	"scholar-sync-api/pkg/logger"
)

// DataLayer 数据层依赖容器
type DataLayer struct {
	// PostgreSQL
	PgClient         *postgres.Client
	TxManager        *postgres.TxManager
	DocumentRepo     *postgres.DocumentRepository
	GroupRepo        *postgres.DocumentGroupRepository
	ChunkRepo        *postgres.ChunkRepository
	NotificationRepo *postgres.NotificationRepository
	ProfileRepo      *postgres.ProfileRepository

	// Redis
	RedisClient *redis.Client
	Cache       *redis.Cache
	RateLimiter *redis.RateLimiter

	// Messaging
	Producer *messaging.Producer

	// Milvus（可选，不可达时为 nil，向量能力降级）
	MilvusClient *milvus.Client
	VectorRepo   *milvus.Repository
}

// InitializeDataLayer 初始化数据层
func InitializeDataLayer(ctx context.Context, cfg *config.Config) (*DataLayer, func(), error) {
	pgClient, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init postgres: %w", err)
	}

	redisClient, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		pgClient.Close()
		return nil, nil, fmt.Errorf("failed to init redis: %w", err)
	}

	dl := &DataLayer{
		PgClient:         pgClient,
		TxManager:        postgres.NewTxManager(pgClient),
		DocumentRepo:     postgres.NewDocumentRepository(pgClient),
		GroupRepo:        postgres.NewDocumentGroupRepository(pgClient),
		ChunkRepo:        postgres.NewChunkRepository(pgClient),
		NotificationRepo: postgres.NewNotificationRepository(pgClient),
		ProfileRepo:      postgres.NewProfileRepository(pgClient),
		RedisClient:      redisClient,
		Cache:            redis.NewCache(redisClient),
		RateLimiter:      redis.NewRateLimiter(redisClient),
		Producer:         messaging.NewProducer(redisClient.Redis(), int64(cfg.Messaging.RedisStream.MaxLen)),
	}

	// Milvus 不可达时只降级，不阻塞启动
	milvusClient, err := milvus.NewClient(ctx, &cfg.Vector.Milvus)
	if err != nil {
		logger.Warn(ctx, "milvus not available, vector features disabled", "error", err.Error())
	} else {
		dl.MilvusClient = milvusClient
		dl.VectorRepo = milvus.NewRepository(milvusClient)
	}

	cleanup := func() {
		if dl.MilvusClient != nil {
			_ = dl.MilvusClient.Close()
		}
		_ = redisClient.Close()
		pgClient.Close()
	}
	return dl, cleanup, nil
}

// InitializeApp 初始化 API 服务（路由器及其全部依赖）
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	dl, cleanup, err := InitializeDataLayer(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	embedder := provideEmbedderOptional(ctx, cfg)
	chatModel := provideChatModelOptional(ctx, cfg)

	var vectorStore retrieval.VectorStore
	if dl.VectorRepo != nil {
		vectorStore = milvus.NewRetrievalVectorStore(dl.VectorRepo)
	}

	engine := retrieval.NewEngine(retrieval.EngineConfig{
		Phrases:    retrieval.NewPhraseGenerator(chatModel, cfg.LLM.DefaultProvider, defaultModelName(cfg), cfg.Search.HydePhrases),
		Embedder:   embedder,
		Vector:     vectorStore,
		Groups:     dl.GroupRepo,
		Docs:       dl.DocumentRepo,
		Chunks:     dl.ChunkRepo,
		Cache:      dl.Cache,
		SummaryTTL: cfg.Search.SummaryTTL,
	})

	blob := storage.NewClient(cfg.Storage)
	docsSvc := docs.NewService(dl.DocumentRepo, dl.GroupRepo, blob, dl.TxManager, dl.Cache)
	notifySvc := notify.NewService(dl.NotificationRepo, dl.Producer)

	handlers := router.Handlers{
		Health:       handler.NewHealthHandler(dl.PgClient, dl.RedisClient, dl.MilvusClient),
		Document:     handler.NewDocumentHandler(docsSvc),
		Group:        handler.NewGroupHandler(docsSvc),
		Search:       handler.NewSearchHandler(engine, cfg.Search.MaxQueryChars),
		Notification: handler.NewNotificationHandler(notifySvc),
		Profile:      handler.NewProfileHandler(dl.ProfileRepo),
	}

	searchRateLimit := middleware.RateLimitWindow(
		cfg.Search.RateLimit,
		cfg.Search.RateWindow,
		"ratelimit:search",
		dl.RateLimiter,
	)

	r := router.New(cfg, handlers, provideAuthConfig(cfg), searchRateLimit)
	return r, cleanup, nil
}

// InitializeWorker 初始化摄取调度器。
// 与 API 服务不同，worker 的向量与嵌入依赖是硬性的。
func InitializeWorker(ctx context.Context, cfg *config.Config) (*ingest.Scheduler, func(), error) {
	dl, cleanup, err := InitializeDataLayer(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if dl.VectorRepo == nil {
		cleanup()
		return nil, nil, fmt.Errorf("milvus is required for the ingest worker")
	}

	embedder, err := infraembedding.NewEinoEmbedder(ctx, &cfg.Embedding)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to init embedder: %w", err)
	}

	if err := dl.VectorRepo.EnsureChunkEmbeddingsCollection(ctx); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to ensure vector collection: %w", err)
	}

	chatModel := provideChatModelOptional(ctx, cfg)
	notifySvc := notify.NewService(dl.NotificationRepo, dl.Producer)

	pipeline := ingest.NewPipeline(ingest.PipelineConfig{
		Docs:         dl.DocumentRepo,
		Groups:       dl.GroupRepo,
		Chunks:       dl.ChunkRepo,
		Blob:         storage.NewClient(cfg.Storage),
		Extractor:    extract.NewExtractor(),
		Describer:    ingest.NewDescriptionGenerator(chatModel, cfg.LLM.DefaultProvider, defaultModelName(cfg)),
		Embedder:     embedder,
		Vector:       milvus.NewIngestVectorWriter(dl.VectorRepo),
		Notifier:     notifySvc,
		EmbedModel:   cfg.Embedding.Model,
		ChunkSize:    cfg.Ingest.ChunkSize,
		ChunkOverlap: cfg.Ingest.ChunkOverlap,
	})

	scheduler := ingest.NewScheduler(dl.DocumentRepo, pipeline, cfg.Ingest.PollInterval)
	return scheduler, cleanup, nil
}

// provideEmbedderOptional 提供可选 Embedder，不可用时禁用向量检索
func provideEmbedderOptional(ctx context.Context, cfg *config.Config) einoembedding.Embedder {
	embedder, err := infraembedding.NewEinoEmbedder(ctx, &cfg.Embedding)
	if err != nil {
		logger.Warn(ctx, "embedding not available, vector features disabled", "error", err.Error())
		return nil
	}
	return embedder
}

// provideChatModelOptional 提供可选 ChatModel，不可用时描述生成与 HyDE 扩展降级
func provideChatModelOptional(ctx context.Context, cfg *config.Config) einomodel.BaseChatModel {
	factory := llm.NewEinoFactory(cfg)
	chatModel, err := factory.Default(ctx)
	if err != nil {
		logger.Warn(ctx, "chat model not available, generation features disabled", "error", err.Error())
		return nil
	}
	return chatModel
}

func defaultModelName(cfg *config.Config) string {
	if provider, ok := cfg.LLM.Providers[cfg.LLM.DefaultProvider]; ok {
		return provider.Model
	}
	return ""
}

// provideAuthConfig 提供认证配置
func provideAuthConfig(cfg *config.Config) middleware.AuthConfig {
	return middleware.AuthConfig{
		Secret:    cfg.Security.JWT.Secret,
		Issuer:    cfg.Security.JWT.Issuer,
		SkipPaths: middleware.DefaultSkipPaths,
		Enabled:   true,
	}
}
