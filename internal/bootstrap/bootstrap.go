package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kirillkom/context-store/internal/config"
	"github.com/kirillkom/context-store/internal/core/ports"
	"github.com/kirillkom/context-store/internal/core/usecase"
	"github.com/kirillkom/context-store/internal/infrastructure/chunking"
	"github.com/kirillkom/context-store/internal/infrastructure/embedding"
	"github.com/kirillkom/context-store/internal/infrastructure/extractor"
	"github.com/kirillkom/context-store/internal/infrastructure/extractor/pdf"
	"github.com/kirillkom/context-store/internal/infrastructure/extractor/plaintext"
	"github.com/kirillkom/context-store/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/context-store/internal/infrastructure/queue/nats"
	"github.com/kirillkom/context-store/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/context-store/internal/infrastructure/resilience"
	"github.com/kirillkom/context-store/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/context-store/internal/infrastructure/vector/pgvector"
	"github.com/kirillkom/context-store/internal/infrastructure/vector/qdrant"
)

type App struct {
	Config config.Config
	Logger *slog.Logger

	Queue *nats.Queue

	Items    ports.ItemService
	Projects ports.ProjectService
	Search   ports.SearchService
	Stats    ports.StatsService
	Transfer ports.TransferService
	Upload   ports.UploadService
	Reindex  ports.ReindexService

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	itemRepo := postgres.NewItemRepository(db)
	projectRepo := postgres.NewProjectRepository(db)

	executor := resilience.NewExecutor(resilienceConfig(cfg), logger)

	embedder, model, err := newEmbedder(cfg, executor)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	index, vectorBackend, collection, err := newVectorIndex(ctx, cfg, db, executor)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSReindexSubject, nats.Options{
		ResilienceExecutor: executor,
		Logger:             logger,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init reindex queue: %w", err)
	}

	items := usecase.NewItemUseCase(itemRepo, index, embedder, queue, logger)
	projects := usecase.NewProjectUseCase(projectRepo)
	search := usecase.NewSearchUseCase(
		usecase.NewSemanticStage(embedder, index, itemRepo),
		usecase.NewKeywordStage(itemRepo),
		usecase.ParseSearchErrorPolicy(cfg.SearchErrorPolicy),
		logger,
	)
	stats := usecase.NewStatsUseCase(itemRepo, projectRepo, embedder, usecase.BackendInfo{
		Backend:          "postgres",
		VectorBackend:    vectorBackend,
		VectorCollection: collection,
		EmbeddingModel:   model,
	})
	transfer := usecase.NewTransferUseCase(itemRepo, projectRepo, index, items, logger)
	upload := usecase.NewUploadUseCase(
		storage,
		extractor.NewRouter(plaintext.NewExtractor(storage), pdf.NewExtractor(storage)),
		chunking.NewSplitter(cfg.UploadChunkSize, cfg.UploadChunkOverlap),
		items,
	)
	reindex := usecase.NewReindexUseCase(itemRepo, index, embedder, queue)

	logger.Info("app_initialized",
		"embedding_provider", cfg.EmbeddingProvider,
		"embedding_model", model,
		"embedding_dimension", embedder.Dimension(),
		"vector_backend", vectorBackend,
		"search_error_policy", string(usecase.ParseSearchErrorPolicy(cfg.SearchErrorPolicy)),
	)

	return &App{
		Config: cfg,
		Logger: logger,
		Queue:  queue,

		Items:    items,
		Projects: projects,
		Search:   search,
		Stats:    stats,
		Transfer: transfer,
		Upload:   upload,
		Reindex:  reindex,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

func resilienceConfig(cfg config.Config) resilience.Config {
	out := resilience.DefaultConfig()
	out.RetryMaxAttempts = cfg.ResilienceRetryMaxAttempts
	out.RetryInitialBackoff = time.Duration(cfg.ResilienceRetryInitialBackoffMS) * time.Millisecond
	out.RetryMaxBackoff = time.Duration(cfg.ResilienceRetryMaxBackoffMS) * time.Millisecond
	out.BreakerEnabled = cfg.ResilienceBreakerEnabled
	out.BreakerOpenTimeout = time.Duration(cfg.ResilienceBreakerOpenSeconds) * time.Second
	return out
}

// newEmbedder returns the configured embedder behind an LRU cache and the
// model name reported by database info.
func newEmbedder(cfg config.Config, executor *resilience.Executor) (ports.Embedder, string, error) {
	if cfg.EmbeddingDimension <= 0 {
		return nil, "", fmt.Errorf("embedding dimension must be positive, got %d", cfg.EmbeddingDimension)
	}

	var (
		base  ports.Embedder
		model string
	)
	switch strings.ToLower(strings.TrimSpace(cfg.EmbeddingProvider)) {
	case "hash":
		base = embedding.NewHashEmbedder(cfg.EmbeddingDimension)
		model = fmt.Sprintf("hash-%d", cfg.EmbeddingDimension)
	case "", "ollama":
		client := ollama.New(cfg.OllamaURL, cfg.OllamaEmbedModel, executor)
		base = ollama.NewEmbedder(client, cfg.EmbeddingDimension)
		model = client.Model()
	default:
		return nil, "", fmt.Errorf("unsupported embedding provider %q", cfg.EmbeddingProvider)
	}

	if cfg.EmbeddingCacheSize <= 0 {
		return base, model, nil
	}
	cached, err := embedding.NewCachedEmbedder(base, cfg.EmbeddingCacheSize)
	if err != nil {
		return nil, "", fmt.Errorf("init embedding cache: %w", err)
	}
	return cached, model, nil
}

func newVectorIndex(
	ctx context.Context,
	cfg config.Config,
	db *sql.DB,
	executor *resilience.Executor,
) (ports.VectorIndex, string, string, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.VectorBackend)) {
	case "pgvector":
		store := pgvector.New(db, cfg.EmbeddingDimension)
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, "", "", fmt.Errorf("ensure pgvector schema: %w", err)
		}
		return store, "pgvector", pgvector.TableName, nil
	case "", "qdrant":
		client := qdrant.New(cfg.QdrantURL, cfg.QdrantCollection, executor)
		return client, "qdrant", client.Collection(), nil
	default:
		return nil, "", "", fmt.Errorf("unsupported vector backend %q", cfg.VectorBackend)
	}
}
