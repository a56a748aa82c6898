package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"promptops/internal/config"
	"promptops/internal/handlers"
	"promptops/internal/repositories"
	"promptops/internal/services"
	"promptops/internal/storage"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Println("✅ Config loaded successfully")

	// Initialize document store
	var store storage.DocumentStore
	if cfg.Database.Enabled {
		db, err := config.InitDatabase(cfg)
		if err != nil {
			log.Fatalf("❌ Failed to initialize database: %v", err)
		}
		store = storage.NewGormStore(db)
		log.Println("✅ Using Postgres document store")
	} else {
		fileStore := storage.NewFileStore(cfg.Storage.DataDir)
		if err := fileStore.EnsureDataDir(); err != nil {
			log.Fatalf("❌ Failed to create data directory: %v", err)
		}
		store = fileStore
		log.Println("✅ Using file document store")
	}

	// Initialize repositories
	migrationRepo := repositories.NewMigrationRepository(store)
	evalRepo := repositories.NewEvaluationRepository(store)
	log.Println("✅ Repositories initialized successfully")

	// Initialize upload storage and PDF parsing for prompt imports
	storageService := services.NewStorageService(cfg.Storage.UploadPath)
	if err := storageService.EnsureUploadDir(); err != nil {
		log.Fatalf("❌ Failed to create upload directory: %v", err)
	}
	pdfParser := services.NewPDFParserService()
	log.Println("✅ Services initialized successfully")

	// Initialize the prompt engines. Gemini is opt-in; the simulated
	// engines stand in for real model calls by default.
	rewriter := services.NewSimulatedRewriter()
	scorer := services.NewSimulatedScorer(time.Now().UnixNano())
	var geminiService services.GeminiService
	if cfg.Gemini.APIKey != "" {
		var err error
		geminiService, err = services.NewGeminiService(cfg.Gemini.APIKey)
		if err != nil {
			log.Fatalf("❌ Failed to initialize Gemini AI: %v", err)
		}
		rewriter = services.NewGeminiRewriter(geminiService, cfg.Gemini.RetryMaxAttempts)
		scorer = services.NewGeminiScorer(geminiService, cfg.Gemini.RetryMaxAttempts)
		log.Println("✅ Gemini AI initialized successfully")
	} else {
		log.Println("ℹ️  GEMINI_API_KEY not set, using simulated prompt engines")
	}

	// Initialize the prompt similarity index (needs Qdrant and Gemini)
	var promptIndex services.PromptIndex
	if cfg.Qdrant.Enabled && geminiService != nil {
		var err error
		promptIndex, err = services.NewPromptIndex(
			cfg.Qdrant.URL,
			cfg.Qdrant.APIKey,
			cfg.Qdrant.Collection,
			geminiService,
		)
		if err != nil {
			log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
		}
		if err := promptIndex.InitCollection(); err != nil {
			log.Fatalf("❌ Failed to initialize Qdrant collection: %v", err)
		}
		log.Println("✅ Prompt index initialized successfully")
	}

	// Initialize worker
	worker := services.NewWorker(
		migrationRepo,
		evalRepo,
		cfg.Worker.Concurrency,
		cfg.Worker.PollInterval,
	)
	log.Println("✅ Worker initialized successfully")

	// Initialize lifecycle services
	migratorService := services.NewMigratorService(
		migrationRepo,
		worker,
		rewriter,
		promptIndex,
		cfg.Worker.MigrationDelay,
	)
	evaluatorService := services.NewEvaluatorService(
		evalRepo,
		worker,
		scorer,
		cfg.Worker.EvalDelayMin,
		cfg.Worker.EvalDelayMax,
	)
	log.Println("✅ Lifecycle services initialized")

	// Start worker
	ctx := context.Background()
	worker.Start(ctx, services.NewJobRouter(migratorService, evaluatorService))

	// Initialize handlers
	migrationHandler := handlers.NewMigrationHandler(
		migratorService,
		storageService,
		pdfParser,
		cfg.Storage.MaxFileSize,
	)
	evaluationHandler := handlers.NewEvaluationHandler(evaluatorService)
	promptHandler := handlers.NewPromptHandler(promptIndex)
	log.Println("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Prompt Ops Dashboard API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize),
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Routes
	api := app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	// Migrations
	api.Get("/migrations", migrationHandler.HandleList)
	api.Post("/migrations", migrationHandler.HandleCreate)
	api.Post("/migrations/import", migrationHandler.HandleImport)
	api.Get("/migrations/:id", migrationHandler.HandleGet)
	api.Delete("/migrations/:id", migrationHandler.HandleDelete)
	api.Post("/migrations/:id/start", migrationHandler.HandleStart)

	// Evaluations
	api.Get("/evaluations", evaluationHandler.HandleList)
	api.Post("/evaluations", evaluationHandler.HandleCreate)
	api.Get("/evaluations/:id", evaluationHandler.HandleGet)
	api.Delete("/evaluations/:id", evaluationHandler.HandleDelete)
	api.Post("/evaluations/:id/run", evaluationHandler.HandleRun)

	// Prompt similarity search
	api.Get("/prompts/similar", promptHandler.HandleSearchSimilar)

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Prompt Ops Dashboard API",
			"version": "1.0.0",
			"endpoints": []string{
				"GET /api/v1/migrations",
				"POST /api/v1/migrations",
				"POST /api/v1/migrations/import",
				"GET /api/v1/migrations/:id",
				"DELETE /api/v1/migrations/:id",
				"POST /api/v1/migrations/:id/start",
				"GET /api/v1/evaluations",
				"POST /api/v1/evaluations",
				"GET /api/v1/evaluations/:id",
				"DELETE /api/v1/evaluations/:id",
				"POST /api/v1/evaluations/:id/run",
				"GET /api/v1/prompts/similar",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		worker.Stop()
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
