package server

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"jarvis-assistant/config"
	"jarvis-assistant/internal/db"
	"jarvis-assistant/internal/handlers"
	"jarvis-assistant/internal/models"
	"jarvis-assistant/internal/repositories"
	"jarvis-assistant/internal/routes"
	"jarvis-assistant/internal/services"
	"jarvis-assistant/internal/workers"

	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"
)

// corsMiddleware adds CORS headers to all responses
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		// Handle preflight requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func NewServer() *http.Server {
	logger := log.New(os.Stdout, "[SERVER] ", log.LstdFlags)

	// Storage backends: Redis and ChromaDB when reachable, in-memory otherwise
	embedder := initializeEmbedder(logger)
	vectorIndex := initializeVectorIndex(embedder.Dimension(), logger)
	sessionRepo, fileRepo := initializeRepositories(logger)

	// Service layer
	chunker := services.NewSentenceChunker(
		envInt("CHUNK_SENTENCES", services.DefaultSentencesPerChunk),
		envInt("CHUNK_OVERLAP", services.DefaultSentenceOverlap),
	)
	ingestionService := services.NewIngestionService(chunker, embedder, vectorIndex, fileRepo, logger)
	retrievalService := services.NewRetrievalService(embedder, vectorIndex, logger)
	generationService := services.NewGenerationService(initializeCompletionClient(logger), logger)

	genTimeout := time.Duration(envInt("GENERATION_TIMEOUT_SECONDS", 0)) * time.Second
	assistantService := services.NewAssistantService(sessionRepo, retrievalService, generationService, genTimeout, logger)

	// Background ingestion worker
	ingestWorker := workers.NewIngestWorker(workers.IngestWorkerConfig{
		WorkerConfig: workers.DefaultWorkerConfig("ingest-worker"),
		QueueSize:    envInt("INGEST_QUEUE_SIZE", workers.DefaultQueueSize),
		Ingestor:     ingestionService,
		Logger:       &workerLogger{logger: logger},
	})
	if err := ingestWorker.Start(context.Background()); err != nil {
		logger.Printf("Failed to start ingest worker: %v", err)
	}

	if os.Getenv("SEED_CORPUS") == "1" || os.Getenv("SEED_CORPUS") == "true" {
		go seedCorpus(ingestionService, fileRepo, vectorIndex, logger)
	}

	h := &routes.Handlers{
		Chat:     handlers.NewChatHandler(assistantService, logger),
		Session:  handlers.NewSessionHandler(sessionRepo, logger),
		Document: handlers.NewDocumentHandler(fileRepo, ingestionService, retrievalService, ingestWorker, logger),
	}

	router := mux.NewRouter()
	routes.RegisterRoutes(router, h)

	// Add Swagger endpoints
	router.PathPrefix("/swagger/").Handler(httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("none"),
		httpSwagger.DomID("swagger-ui"),
	))

	addr := ":" + envString("PORT", "8080")
	return &http.Server{
		Addr:    addr,
		Handler: corsMiddleware(router),
	}
}

// initializeEmbedder picks the HTTP embedder when an endpoint is
// configured, the local hashing embedder otherwise.
func initializeEmbedder(logger *log.Logger) services.Embedder {
	dimension := envInt("EMBEDDING_DIMENSION", services.DefaultEmbeddingDimension)

	baseURL := os.Getenv("EMBEDDING_URL")
	if baseURL == "" {
		logger.Printf("No EMBEDDING_URL configured, using local hashing embedder (dim %d)", dimension)
		return services.NewHashingEmbedder(dimension)
	}

	embedder := services.NewHTTPEmbedder(baseURL, os.Getenv("EMBEDDING_MODEL"), dimension)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := embedder.HealthCheck(ctx); err != nil {
		logger.Printf("Embedding endpoint unreachable (%v), falling back to local hashing embedder", err)
		return services.NewHashingEmbedder(dimension)
	}

	logger.Printf("Using embedding endpoint %s (dim %d)", baseURL, dimension)
	return embedder
}

// initializeCompletionClient picks the HTTP completion backend when an
// endpoint is configured, the local extractive backend otherwise.
func initializeCompletionClient(logger *log.Logger) services.CompletionClient {
	baseURL := os.Getenv("LLM_BASE_URL")
	if baseURL == "" {
		logger.Printf("No LLM_BASE_URL configured, using local extractive answers")
		return services.NewExtractiveClient()
	}

	client := services.NewHTTPCompletionClient(baseURL, os.Getenv("LLM_MODEL"))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.HealthCheck(ctx); err != nil {
		logger.Printf("Completion endpoint unreachable (%v), falling back to local extractive answers", err)
		return services.NewExtractiveClient()
	}

	logger.Printf("Using completion endpoint %s", baseURL)
	return client
}

// initializeVectorIndex connects to ChromaDB when configured, falling
// back to the in-memory index.
func initializeVectorIndex(dimension int, logger *log.Logger) repositories.VectorIndex {
	if os.Getenv("CHROMA_HOST") == "" {
		logger.Printf("No CHROMA_HOST configured, using in-memory vector index")
		return repositories.NewMemoryVectorIndex(dimension)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	chromaConfig := getChromaConfig()
	logger.Printf("Connecting to ChromaDB: %s:%d", chromaConfig.Host, chromaConfig.Port)

	chromaClient := db.NewChromaDBClient(chromaConfig)
	if err := chromaClient.Heartbeat(ctx); err != nil {
		logger.Printf("ChromaDB connection failed (%v), using in-memory vector index", err)
		logger.Println("Hint: ensure ChromaDB is running (docker run -d -p 8000:8000 chromadb/chroma)")
		return repositories.NewMemoryVectorIndex(dimension)
	}

	index, err := repositories.NewChromaVectorIndex(ctx, chromaClient, os.Getenv("CHROMA_COLLECTION"), dimension)
	if err != nil {
		logger.Printf("Failed to open ChromaDB collection (%v), using in-memory vector index", err)
		return repositories.NewMemoryVectorIndex(dimension)
	}

	logger.Println("ChromaDB connected successfully")
	return index
}

// initializeRepositories connects sessions and the file registry to
// Redis when reachable, falling back to in-memory implementations.
func initializeRepositories(logger *log.Logger) (repositories.SessionRepository, repositories.FileRepository) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	redisConfig := getRedisConfig()
	logger.Printf("Connecting to Redis: %s:%d (DB: %d)", redisConfig.Host, redisConfig.Port, redisConfig.DB)

	redisClient, err := db.NewRedisClient(redisConfig)
	if err == nil {
		err = redisClient.Ping(ctx)
	}
	if err != nil {
		logger.Printf("Redis connection failed (%v), using in-memory session and file stores", err)
		logger.Println("Hint: ensure Redis is running (docker run -d -p 6379:6379 redis:7-alpine)")
		return repositories.NewMemorySessionRepository(), repositories.NewMemoryFileRepository()
	}

	logger.Println("Redis connected successfully")
	return repositories.NewRedisSessionRepository(redisClient.GetClient()),
		repositories.NewRedisFileRepository(redisClient.GetClient())
}

// seedCorpus loads a small starter corpus when the index is empty
func seedCorpus(ingestion *services.IngestionService, files repositories.FileRepository, index repositories.VectorIndex, logger *log.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count, err := index.Count(ctx)
	if err != nil {
		logger.Printf("Seed skipped, cannot read index size: %v", err)
		return
	}
	if count > 0 {
		logger.Printf("Seed skipped, index already holds %d vectors", count)
		return
	}

	samples := defaultSeedPassages()
	if path := os.Getenv("SEED_FILE"); path != "" {
		loaded, err := config.LoadSeedPassages(path)
		if err != nil {
			logger.Printf("Failed to load seed file %s (%v), using built-in samples", path, err)
		} else {
			samples = loaded
		}
	}

	logger.Printf("Seeding knowledge base with %d sample documents", len(samples))
	for i, sample := range samples {
		file := &repositories.UploadedFile{
			ID:           "seed-" + strconv.Itoa(i),
			Name:         sample.Name,
			SizeBytes:    int64(len(sample.Text)),
			MimeType:     "text/plain",
			IngestStatus: repositories.IngestStatusPending,
		}
		if err := files.Register(ctx, file); err != nil {
			logger.Printf("Seed register failed for %s: %v", sample.Name, err)
			continue
		}
		if err := ingestion.Ingest(ctx, file.ID, sample.Text); err != nil {
			logger.Printf("Seed ingest failed for %s: %v", sample.Name, err)
		}
	}
}

func defaultSeedPassages() []models.UploadPassage {
	return []models.UploadPassage{
		{Name: "support-contact", Text: "Our company offers 24/7 customer support via email at support@company.com and live chat on our website."},
		{Name: "refund-policy", Text: "We provide a 30-day money-back guarantee on all products. No questions asked."},
		{Name: "premium-plan", Text: "Our premium plan includes unlimited API calls, priority support, advanced analytics, and dedicated account manager."},
		{Name: "security-compliance", Text: "Data security is our top priority. We use end-to-end encryption, regular security audits, and comply with SOC 2 and GDPR standards."},
	}
}

// getRedisConfig reads Redis configuration from environment variables
func getRedisConfig() db.RedisConfig {
	config := db.DefaultRedisConfig()

	if host := os.Getenv("REDIS_HOST"); host != "" {
		config.Host = host
	}
	if portStr := os.Getenv("REDIS_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			config.Port = port
		}
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		config.Password = password
	}
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if dbNum, err := strconv.Atoi(dbStr); err == nil {
			config.DB = dbNum
		}
	}
	if poolSizeStr := os.Getenv("REDIS_POOL_SIZE"); poolSizeStr != "" {
		if poolSize, err := strconv.Atoi(poolSizeStr); err == nil {
			config.PoolSize = poolSize
		}
	}

	return config
}

// getChromaConfig reads ChromaDB configuration from environment variables
func getChromaConfig() db.ChromaDBConfig {
	config := db.ChromaDBConfig{
		Host:     "localhost",
		Port:     8000,
		Tenant:   "default_tenant",
		Database: "default_database",
		Timeout:  30 * time.Second,
	}

	if host := os.Getenv("CHROMA_HOST"); host != "" {
		config.Host = host
	}
	if portStr := os.Getenv("CHROMA_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			config.Port = port
		}
	}
	if tenant := os.Getenv("CHROMA_TENANT"); tenant != "" {
		config.Tenant = tenant
	}
	if database := os.Getenv("CHROMA_DATABASE"); database != "" {
		config.Database = database
	}

	return config
}

// envString reads an environment variable with a default
func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// envInt reads an integer environment variable with a default
func envInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

// workerLogger wraps log.Logger to implement workers.Logger interface
type workerLogger struct {
	logger *log.Logger
}

func (l *workerLogger) Info(msg string, args ...interface{}) {
	l.logger.Printf("[INFO] "+msg, args...)
}

func (l *workerLogger) Error(msg string, args ...interface{}) {
	l.logger.Printf("[ERROR] "+msg, args...)
}

func (l *workerLogger) Warn(msg string, args ...interface{}) {
	l.logger.Printf("[WARN] "+msg, args...)
}

func (l *workerLogger) Debug(msg string, args ...interface{}) {
	l.logger.Printf("[DEBUG] "+msg, args...)
}
