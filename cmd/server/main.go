package main

import (
	"context"
	"log"
	"time"

	"formreview-backend/config"
	"formreview-backend/handlers"
	"formreview-backend/reasoning"
	"formreview-backend/repository"
	"formreview-backend/service"
	"formreview-backend/session"
	"formreview-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	gin.SetMode(cfg.App.GinMode)

	// Initialize database connection
	db := initPostgres(cfg.Database.URL)
	if db != nil {
		defer db.Close()
	}

	// Initialize storage
	fileStorage, err := initStorage(cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	log.Println("Storage initialized")

	// Initialize repositories
	historyRepo := repository.NewHistoryRepository(db)
	knowledgeBase := repository.NewKnowledgeBaseRepository(cfg.Documents.KnowledgeBasePath)

	// Initialize reasoning client
	completer, closeCompleter := initCompleter(cfg.LLM)
	defer closeCompleter()
	reasoner := reasoning.NewService(completer,
		reasoning.WithJudgeOptions(reasoning.Options{MaxTokens: cfg.LLM.JudgeMaxTokens}),
		reasoning.WithConverseOptions(reasoning.Options{
			MaxTokens:   cfg.LLM.ChatMaxTokens,
			Temperature: float32(cfg.LLM.ChatTemperature),
		}),
	)

	// Initialize services
	historyService := service.NewHistoryService(historyRepo)

	documentService := service.NewDocumentService(
		service.DocumentWithStorage(fileStorage),
		service.DocumentWithValidator(service.NewFieldValidator(reasoner)),
		service.DocumentWithKnowledgeBase(knowledgeBase),
	)

	chatService := service.NewChatService(
		service.ChatWithSessionStore(session.NewMemoryStore()),
		service.ChatWithConversant(reasoner),
		service.ChatWithKnowledgeBase(knowledgeBase),
		service.ChatWithHistory(historyService, cfg.History.Username),
	)

	// Initialize handlers
	documentHandler := handlers.NewDocumentHandler(fileStorage, documentService, handlers.DocumentHandlerConfig{
		MaxFileSize:         cfg.App.MaxUploadBytes,
		OutputDir:           cfg.Documents.OutputDir,
		DefaultDocumentPath: cfg.Documents.DefaultDocumentPath,
		DefaultOutputPath:   cfg.Documents.DefaultOutputPath,
	})
	chatHandler := handlers.NewChatHandler(chatService)
	historyHandler := handlers.NewHistoryHandler(historyService, cfg.History.Username)

	// Setup Gin router
	r := gin.Default()
	handlers.RegisterRoutes(r, documentHandler, chatHandler, historyHandler)

	// Start server
	log.Printf("Server starting on port %s", cfg.App.Port)
	if err := r.Run(cfg.HTTPAddr()); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// initPostgres returns nil when the connection string is unusable; a bad or
// unreachable database only fails the history endpoints
func initPostgres(connString string) *pgxpool.Pool {
	pool, err := pgxpool.New(context.Background(), connString)
	if err != nil {
		log.Printf("Warning: Failed to initialize Postgres: %v", err)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		log.Printf("Warning: Postgres is not reachable: %v", err)
		return pool
	}

	log.Println("Postgres connection established")
	return pool
}

func initStorage(cfg config.StorageConfig) (storage.Storage, error) {
	fileStorage, err := storage.NewStorage(storage.StorageConfig{
		Type:         storage.StorageType(cfg.Type),
		LocalPath:    cfg.LocalPath,
		S3Bucket:     cfg.Bucket,
		S3Region:     cfg.Region,
		S3Endpoint:   cfg.Endpoint,
		UsePathStyle: cfg.UsePathStyle,
		AWSAccessKey: cfg.AccessKey,
		AWSSecretKey: cfg.SecretKey,
	})
	if err != nil {
		return nil, err
	}

	if s3Storage, ok := fileStorage.(*storage.S3Storage); ok {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s3Storage.EnsureBucket(ctx); err != nil {
			log.Printf("Warning: Failed to ensure bucket %s: %v", cfg.Bucket, err)
		} else {
			log.Printf("Bucket %s is ready", cfg.Bucket)
		}
	}

	return fileStorage, nil
}

func initCompleter(cfg config.LLMConfig) (reasoning.Completer, func()) {
	switch cfg.Provider {
	case config.ProviderGemini:
		completer := reasoning.NewGeminiCompleter(cfg.APIKey, cfg.Model)
		log.Printf("Gemini completer initialized (model %s)", cfg.Model)
		return completer, func() {
			if err := completer.Close(); err != nil {
				log.Printf("Warning: Failed to close Gemini client: %v", err)
			}
		}
	default:
		if cfg.APIKey == "" {
			log.Println("Warning: OPENAI_API_KEY not set")
		}
		completer := reasoning.NewOpenAICompleter(reasoning.OpenAIConfig{
			BaseURL: cfg.BaseURL,
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		})
		log.Printf("OpenAI completer initialized (model %s)", cfg.Model)
		return completer, func() {}
	}
}
