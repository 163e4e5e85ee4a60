package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cobalt-labs/tubechat-core/internal/adapters/driven/ai"
	"github.com/cobalt-labs/tubechat-core/internal/adapters/driven/auth"
	"github.com/cobalt-labs/tubechat-core/internal/adapters/driven/postgres"
	redisqueue "github.com/cobalt-labs/tubechat-core/internal/adapters/driven/queue/redis"
	redisadapter "github.com/cobalt-labs/tubechat-core/internal/adapters/driven/redis"
	"github.com/cobalt-labs/tubechat-core/internal/adapters/driven/sqlite"
	"github.com/cobalt-labs/tubechat-core/internal/adapters/driven/youtube"
	"github.com/cobalt-labs/tubechat-core/internal/adapters/driving/http"
	"github.com/cobalt-labs/tubechat-core/internal/core/domain"
	"github.com/cobalt-labs/tubechat-core/internal/core/ports/driven"
	"github.com/cobalt-labs/tubechat-core/internal/core/ports/driving"
	"github.com/cobalt-labs/tubechat-core/internal/core/services"
	"github.com/cobalt-labs/tubechat-core/internal/postprocessors"
	"github.com/cobalt-labs/tubechat-core/internal/runtime"
	"github.com/cobalt-labs/tubechat-core/internal/worker"
)

var version = "dev"

const (
	defaultEmbeddingModel = "text-embedding-3-small"
	defaultLLMModel       = "gpt-4o-mini"
)

func main() {
	// Get run mode from environment (RUN_MODE) or command line arg
	mode := getEnv("RUN_MODE", "all")
	args := os.Args[1:]
	if len(args) > 0 {
		mode = args[0]
		args = args[1:]
	}

	switch mode {
	case "api", "worker", "all":
		runService(mode)
	case "index":
		runIndex(args)
	case "ask":
		runAsk(args)
	case "inspect":
		runInspect()
	default:
		log.Fatalf("Unknown mode: %s (use: api, worker, all, index, ask, or inspect)", mode)
	}
}

// runService runs the long-lived modes: the HTTP API, the task worker, or both.
func runService(mode string) {
	log.Printf("tubechat-core %s starting in %s mode", version, mode)

	apiPassword := getEnv("API_PASSWORD", "")
	if apiPassword == "" {
		log.Fatal("API_PASSWORD must be set")
	}
	jwtSecret := getEnv("JWT_SECRET", "development-secret-change-in-production")
	redisURL := getEnv("REDIS_URL", "redis://localhost:6379")
	port := getEnvInt("PORT", 8080)

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Shutdown signal received, stopping...")
		cancel()
	}()

	// ===== Vector store (SQLite or Postgres) =====
	store, storePinger, err := openVectorStore(ctx)
	if err != nil {
		log.Fatalf("Failed to open vector store: %v", err)
	}
	defer store.Close()

	// ===== Redis (task queue + distributed lock) =====
	log.Println("Connecting to Redis...")
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Fatalf("Failed to parse Redis URL: %v", err)
	}
	redisClient := redis.NewClient(opts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Redis connected")

	taskQueue, err := redisqueue.NewQueue(redisClient, fmt.Sprintf("worker-%d", os.Getpid()))
	if err != nil {
		log.Fatalf("Failed to create task queue: %v", err)
	}
	distributedLock := redisadapter.NewLock(redisClient)

	// ===== AI services =====
	runtimeServices := newRuntimeServices(ctx, "redis")
	defer runtimeServices.Close()

	// ===== Services (core business logic) =====
	indexingService := newIndexingService(store, runtimeServices)
	retriever := services.NewRetriever(store, runtimeServices)
	chatService := services.NewChatService(retriever, runtimeServices, slog.Default())
	authService, err := services.NewAuthService(apiPassword, auth.NewAdapter(jwtSecret))
	if err != nil {
		log.Fatalf("Failed to create auth service: %v", err)
	}

	cfg := runtimeServices.Config()
	log.Printf("Runtime config: queue_backend=%s, embedding=%t, llm=%t",
		cfg.QueueBackend, cfg.EmbeddingAvailable(), cfg.LLMAvailable())

	switch mode {
	case "api":
		runAPI(port, authService, chatService, indexingService, taskQueue, storePinger, taskQueue)

	case "worker":
		runWorkerMode(ctx, taskQueue, indexingService, distributedLock)

	case "all":
		// Start worker in background, run API in foreground (blocks)
		go runWorkerMode(ctx, taskQueue, indexingService, distributedLock)
		runAPI(port, authService, chatService, indexingService, taskQueue, storePinger, taskQueue)
	}
}

func runAPI(
	port int,
	authService driving.AuthService,
	chatService driving.ChatService,
	indexingService driving.IndexingService,
	taskQueue driven.TaskQueue,
	storePinger http.Pinger,
	queuePinger http.Pinger,
) {
	cfg := http.DefaultConfig()
	cfg.Port = port
	cfg.Version = version

	server := http.NewServer(
		cfg,
		slog.Default(),
		authService,
		chatService,
		indexingService,
		taskQueue,
		storePinger,
		queuePinger,
	)

	log.Printf("API server starting on :%d", port)
	if err := server.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// runWorkerMode starts the task worker and blocks until the context is
// cancelled. The worker processes index_channel tasks from the queue.
func runWorkerMode(
	ctx context.Context,
	taskQueue driven.TaskQueue,
	indexingService driving.IndexingService,
	distributedLock driven.DistributedLock,
) {
	log.Println("Starting worker mode...")

	w := worker.NewWorker(worker.Config{
		TaskQueue:      taskQueue,
		Indexing:       indexingService,
		Lock:           distributedLock,
		Logger:         slog.Default(),
		Concurrency:    getEnvInt("WORKER_CONCURRENCY", 1),
		DequeueTimeout: getEnvInt("WORKER_DEQUEUE_TIMEOUT", 5),
	})

	if err := w.Start(ctx); err != nil {
		log.Fatalf("Failed to start worker: %v", err)
	}
	log.Println("Worker started, processing index_channel tasks...")

	<-ctx.Done()

	log.Println("Stopping worker...")
	w.Stop()
	log.Println("Worker stopped")
}

// runIndex indexes a channel synchronously from the command line.
func runIndex(args []string) {
	if len(args) < 1 || strings.HasPrefix(args[0], "-") {
		log.Fatal("Usage: tubechat-core index <channel-handle> [--max-videos N] [--clear]")
	}
	handle := args[0]

	fs := flag.NewFlagSet("index", flag.ExitOnError)
	maxVideos := fs.Int("max-videos", domain.DefaultIndexOptions().MaxVideos, "maximum number of videos to index")
	clear := fs.Bool("clear", false, "clear the index before indexing")
	if err := fs.Parse(args[1:]); err != nil {
		log.Fatalf("Failed to parse flags: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, _, err := openVectorStore(ctx)
	if err != nil {
		log.Fatalf("Failed to open vector store: %v", err)
	}
	defer store.Close()

	runtimeServices := newRuntimeServices(ctx, "none")
	defer runtimeServices.Close()
	if runtimeServices.EmbeddingService() == nil {
		log.Fatal("Embedding service is required for indexing (set EMBEDDING_PROVIDER and EMBEDDING_API_KEY)")
	}

	indexingService := newIndexingService(store, runtimeServices)

	log.Printf("Indexing channel %s (max_videos=%d, clear=%t)...", handle, *maxVideos, *clear)
	start := time.Now()
	stats, err := indexingService.IndexChannel(ctx, handle, domain.IndexOptions{
		MaxVideos: *maxVideos,
		Clear:     *clear,
	})
	if err != nil {
		log.Fatalf("Indexing failed: %v", err)
	}

	fmt.Printf("Indexed %s (%s) in %s\n", stats.ChannelName, stats.ChannelID, time.Since(start).Round(time.Second))
	fmt.Printf("  videos indexed: %d\n", stats.VideosIndexed)
	fmt.Printf("  videos skipped: %d\n", stats.VideosSkipped)
	fmt.Printf("  chunks stored:  %d\n", stats.TotalChunks)
}

// runAsk answers a single question from the command line.
func runAsk(args []string) {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	topK := fs.Int("top-k", domain.DefaultAskOptions().TopK, "number of chunks to retrieve")
	channelID := fs.String("channel", "", "restrict retrieval to one channel ID")
	if err := fs.Parse(args); err != nil {
		log.Fatalf("Failed to parse flags: %v", err)
	}

	question := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if question == "" {
		log.Fatal("Usage: tubechat-core ask [--top-k N] [--channel ID] <question>")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, _, err := openVectorStore(ctx)
	if err != nil {
		log.Fatalf("Failed to open vector store: %v", err)
	}
	defer store.Close()

	runtimeServices := newRuntimeServices(ctx, "none")
	defer runtimeServices.Close()

	retriever := services.NewRetriever(store, runtimeServices)
	chatService := services.NewChatService(retriever, runtimeServices, slog.Default())

	result, err := chatService.Ask(ctx, question, domain.AskOptions{
		TopK:      *topK,
		ChannelID: *channelID,
	})
	if err != nil {
		log.Fatalf("Ask failed: %v", err)
	}

	fmt.Println(result.Answer)
	if len(result.Sources) > 0 {
		fmt.Println("\nSources:")
		for _, src := range result.Sources {
			fmt.Printf("  [%.3f] %s (%s, chunk %d)\n", src.Score, src.VideoTitle, src.VideoID, src.Position)
		}
	}
}

// runInspect prints what is currently indexed.
func runInspect() {
	ctx := context.Background()

	store, _, err := openVectorStore(ctx)
	if err != nil {
		log.Fatalf("Failed to open vector store: %v", err)
	}
	defer store.Close()

	summary, err := store.Summary(ctx)
	if err != nil {
		log.Fatalf("Failed to read index summary: %v", err)
	}

	fmt.Printf("Chunks:    %d\n", summary.TotalChunks)
	fmt.Printf("Dimension: %d\n", summary.Dimension)
	if summary.Model != "" {
		fmt.Printf("Model:     %s\n", summary.Model)
	}
	if len(summary.Videos) == 0 {
		fmt.Println("No videos indexed.")
		return
	}
	fmt.Printf("Videos:    %d\n", len(summary.Videos))
	for _, v := range summary.Videos {
		fmt.Printf("  %-12s %4d chunks  %s\n", v.VideoID, v.ChunkCount, v.VideoTitle)
	}
}

// openVectorStore selects the vector store backend. Setting DATABASE_URL
// switches to Postgres with pgvector; the default is a local SQLite file.
// The second return value is the backend to ping for readiness checks
// (nil for SQLite, which has no connection to lose).
func openVectorStore(ctx context.Context) (driven.VectorStore, http.Pinger, error) {
	model := getEnv("EMBEDDING_MODEL", defaultEmbeddingModel)

	if databaseURL := getEnv("DATABASE_URL", ""); databaseURL != "" {
		cfg := postgres.DefaultConfig(databaseURL)
		cfg.MaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", cfg.MaxOpenConns)
		cfg.MaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", cfg.MaxIdleConns)

		db, err := postgres.Connect(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		if err := db.InitSchema(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to initialize schema: %w", err)
		}
		log.Println("Using PostgreSQL vector store")
		return postgres.NewVectorStore(db, model), db, nil
	}

	path := getEnv("SQLITE_PATH", "tubechat.db")
	store, err := sqlite.NewStore(path, model)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open sqlite store: %w", err)
	}
	log.Printf("Using SQLite vector store at %s", path)
	return store, nil, nil
}

// newRuntimeServices builds the runtime service registry and wires the
// configured AI providers into it. A failed health check leaves the service
// unset so dependent operations report unavailability instead of failing
// mid-pipeline.
func newRuntimeServices(ctx context.Context, queueBackend string) *runtime.Services {
	runtimeServices := runtime.NewServices(domain.NewRuntimeConfig(queueBackend))
	factory := ai.NewFactory()

	embedder, err := factory.CreateEmbeddingService(embeddingSettingsFromEnv())
	if err != nil {
		log.Fatalf("Failed to create embedding service: %v", err)
	}
	if embedder != nil {
		if err := runtimeServices.ValidateAndSetEmbedding(ctx, embedder); err != nil {
			log.Printf("Warning: embedding service health check failed: %v", err)
		}
	}

	llm, err := factory.CreateLLMService(llmSettingsFromEnv())
	if err != nil {
		log.Fatalf("Failed to create LLM service: %v", err)
	}
	if llm != nil {
		if err := runtimeServices.ValidateAndSetLLM(ctx, llm); err != nil {
			log.Printf("Warning: LLM service health check failed: %v", err)
		}
	}

	return runtimeServices
}

func newIndexingService(store driven.VectorStore, runtimeServices *runtime.Services) driving.IndexingService {
	apiKey := getEnv("YOUTUBE_API_KEY", "")
	if apiKey == "" {
		log.Fatal("YOUTUBE_API_KEY must be set")
	}
	channels, err := youtube.NewClient(apiKey)
	if err != nil {
		log.Fatalf("Failed to create YouTube client: %v", err)
	}

	return services.NewIndexingService(services.IndexingServiceConfig{
		Channels:    channels,
		Transcripts: youtube.NewTranscriptClient(),
		Store:       store,
		Pipeline:    newPipeline(),
		Services:    runtimeServices,
		Logger:      slog.Default(),
	})
}

func newPipeline() *postprocessors.Pipeline {
	settings := domain.ChunkSettings{
		Size:    getEnvInt("CHUNK_SIZE", domain.DefaultChunkSettings().Size),
		Overlap: getEnvInt("CHUNK_OVERLAP", domain.DefaultChunkSettings().Overlap),
	}
	if !settings.Valid() {
		log.Printf("Warning: invalid chunk settings (size=%d, overlap=%d), using defaults", settings.Size, settings.Overlap)
		settings = domain.DefaultChunkSettings()
	}
	return postprocessors.DefaultPipeline(settings)
}

func embeddingSettingsFromEnv() *domain.EmbeddingSettings {
	return &domain.EmbeddingSettings{
		Provider: domain.AIProvider(getEnv("EMBEDDING_PROVIDER", string(domain.AIProviderOpenAI))),
		Model:    getEnv("EMBEDDING_MODEL", defaultEmbeddingModel),
		APIKey:   getEnv("EMBEDDING_API_KEY", getEnv("OPENAI_API_KEY", "")),
		BaseURL:  getEnv("EMBEDDING_BASE_URL", ""),
	}
}

func llmSettingsFromEnv() *domain.LLMSettings {
	return &domain.LLMSettings{
		Provider: domain.AIProvider(getEnv("LLM_PROVIDER", string(domain.AIProviderOpenAI))),
		Model:    getEnv("LLM_MODEL", defaultLLMModel),
		APIKey:   getEnv("LLM_API_KEY", getEnv("OPENAI_API_KEY", "")),
		BaseURL:  getEnv("LLM_BASE_URL", ""),
	}
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
