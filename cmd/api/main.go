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

	"complyforge/internal/config"
	"complyforge/internal/corpus"
	"complyforge/internal/handlers"
	"complyforge/internal/repositories"
	"complyforge/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Println("✅ Config loaded successfully")

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	// Initialize repositories
	assessmentRepo := repositories.NewAssessmentRepository(db)
	log.Println("✅ Repositories initialized successfully")

	// Load the embedded framework corpus
	store, err := corpus.NewStore()
	if err != nil {
		log.Fatalf("❌ Failed to load framework corpus: %v", err)
	}
	log.Println("✅ Framework corpus loaded")

	// Initialize Gemini
	geminiClient, err := services.NewGeminiClient(
		cfg.Oracle.APIKey,
		cfg.Oracle.Model,
		cfg.Oracle.EmbedModel,
		cfg.Oracle.RequestTimeout,
	)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini: %v", err)
	}
	log.Println("✅ Gemini initialized successfully")

	oracleClient := services.NewOracleClient(
		geminiClient,
		cfg.Oracle.MaxAttempts,
		cfg.Oracle.RetryBaseDelay,
	)

	// Supplemental retrieval is optional: the deterministic corpus filter is
	// the correctness path, Qdrant only enriches prompts.
	retrieval := services.NewNoopRetrieval()
	if cfg.Qdrant.Enabled {
		qdrantService, err := services.NewQdrantService(
			cfg.Qdrant.URL,
			cfg.Qdrant.APIKey,
			cfg.Qdrant.Collection,
		)
		if err != nil {
			log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
		}
		if err := qdrantService.InitCollection(); err != nil {
			log.Fatalf("❌ Failed to initialize Qdrant collection: %v", err)
		}
		retrieval = services.NewRetrievalService(geminiClient, qdrantService)
		log.Println("✅ Qdrant initialized successfully")
	} else {
		log.Println("ℹ️  Qdrant disabled, supplemental retrieval off")
	}

	// Initialize pipeline services
	scoring := services.NewScoringEngine(cfg.Scoring)
	assessor := services.NewAssessorService(
		assessmentRepo,
		oracleClient,
		store,
		retrieval,
		scoring,
	)
	reportService := services.NewReportService()
	log.Println("✅ Assessor service initialized")

	// Initialize and start worker
	worker := services.NewWorker(
		assessmentRepo,
		assessor,
		cfg.Worker.Concurrency,
		cfg.Worker.PollInterval,
	)
	ctx := context.Background()
	worker.Start(ctx)
	log.Println("✅ Worker started successfully")

	// Initialize handlers
	assessmentHandler := handlers.NewAssessmentHandler(assessmentRepo, worker, reportService)
	questionsHandler := handlers.NewQuestionsHandler()
	log.Println("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "ComplyForge API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
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

	// API endpoints
	api.Get("/questions", questionsHandler.HandleGetQuestions)
	api.Post("/assessments", assessmentHandler.HandleSubmit)
	api.Get("/assessments", assessmentHandler.HandleList)
	api.Get("/assessments/:id/status", assessmentHandler.HandleGetStatus)
	api.Get("/assessments/:id/report", assessmentHandler.HandleGetReport)
	api.Get("/assessments/:id", assessmentHandler.HandleGetResult)

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "ComplyForge API",
			"version": "1.0.0",
			"endpoints": []string{
				"GET /api/v1/questions",
				"POST /api/v1/assessments",
				"GET /api/v1/assessments",
				"GET /api/v1/assessments/:id",
				"GET /api/v1/assessments/:id/status",
				"GET /api/v1/assessments/:id/report",
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
