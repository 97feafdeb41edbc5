package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"misswong/essay-grader/internal/config"
	"misswong/essay-grader/internal/handlers"
	"misswong/essay-grader/internal/models"
	"misswong/essay-grader/internal/repositories"
	"misswong/essay-grader/internal/services"
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
	historyRepo := repositories.NewHistoryRepository(db)
	settingsRepo := repositories.NewSettingsRepository(db)
	log.Println("✅ Repositories initialized successfully")

	// Seed the API key from the environment on first boot
	if cfg.Gemini.APIKey != "" && settingsRepo.Get(models.SettingAPIKey, "") == "" {
		settingsRepo.Set(models.SettingAPIKey, cfg.Gemini.APIKey)
	}

	// Initialize services
	storageService := services.NewStorageService(cfg.Storage.UploadPath)
	if err := storageService.EnsureUploadDir(); err != nil {
		log.Fatalf("❌ Failed to create upload directory: %v", err)
	}

	normalizer := services.NewImageNormalizer()
	requestClient := services.NewRetryClient(
		&http.Client{Timeout: 90 * time.Second},
		cfg.Retry.MaxRetries,
		cfg.Retry.InitialBackoff,
	)
	geminiService := services.NewGeminiService(cfg.Gemini.BaseURL, requestClient)
	grader := services.NewEssayGrader(normalizer, geminiService)
	log.Println("✅ Services initialized successfully")

	// Initialize batch session and runner
	session := services.NewBatchSession()
	runner := services.NewBatchRunner(
		session,
		grader,
		settingsRepo,
		historyRepo,
		cfg.Gemini.DefaultLevel,
		cfg.Gemini.DefaultModel,
	)

	ctx := context.Background()
	runner.Start(ctx)
	log.Println("✅ Batch runner started successfully")

	// Initialize handlers
	uploadHandler := handlers.NewUploadHandler(session, storageService, settingsRepo, cfg.Storage.MaxFileSize)
	batchHandler := handlers.NewBatchHandler(session, runner, settingsRepo)
	historyHandler := handlers.NewHistoryHandler(historyRepo)
	settingsHandler := handlers.NewSettingsHandler(settingsRepo, cfg.Gemini.DefaultLevel, cfg.Gemini.DefaultModel)
	log.Println("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Essay Grader API",
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

	// API endpoints
	api.Post("/uploads", uploadHandler.HandleUpload)
	api.Delete("/uploads/:id", uploadHandler.HandleRemoveUpload)
	api.Get("/batch", batchHandler.HandleGetBatch)
	api.Post("/batch/analyze", batchHandler.HandleAnalyze)
	api.Get("/batch/items/:id", batchHandler.HandleGetItem)
	api.Get("/history", historyHandler.HandleList)
	api.Get("/history/export", historyHandler.HandleExport)
	api.Post("/history/import", historyHandler.HandleImport)
	api.Get("/history/:id", historyHandler.HandleGet)
	api.Post("/history/:id/complete", historyHandler.HandleComplete)
	api.Delete("/history", historyHandler.HandleClear)
	api.Get("/settings", settingsHandler.HandleGet)
	api.Put("/settings", settingsHandler.HandleUpdate)

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Essay Grader API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/uploads",
				"POST /api/v1/batch/analyze",
				"GET /api/v1/batch",
				"GET /api/v1/history",
				"GET /api/v1/history/export",
				"POST /api/v1/history/import",
				"GET /api/v1/settings",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		runner.Stop()
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
