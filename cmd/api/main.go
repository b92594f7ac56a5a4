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

	"talenthub/matching-engine/internal/config"
	"talenthub/matching-engine/internal/handlers"
	"talenthub/matching-engine/internal/repositories"
	"talenthub/matching-engine/internal/services"
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
	entityRepo := repositories.NewEntityRepository(db)
	feedbackRepo := repositories.NewFeedbackRepository(db)
	prefRepo := repositories.NewPreferenceRepository(db)
	log.Println("✅ Repositories initialized successfully")

	// Initialize embedding service
	embeddingService, err := services.NewEmbeddingService(cfg.Embedding.APIKey, cfg.Embedding.Dimension)
	if err != nil {
		log.Fatalf("❌ Failed to initialize embedding service: %v", err)
	}
	log.Println("✅ Embedding service initialized successfully")

	// Initialize Qdrant and verify the index descriptors
	qdrantService, err := services.NewQdrantService(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.CollectionPrefix,
		uint64(cfg.Embedding.Dimension),
		cfg.Qdrant.SearchTimeout,
	)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
	}

	if err := qdrantService.InitCollections(context.Background()); err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant collections: %v", err)
	}
	log.Println("✅ Qdrant initialized successfully")

	// Vector search: indexed primary with brute-force fallback
	counters := services.NewDegradedCounters()
	searcher := services.NewFailoverSearcher(
		qdrantService,
		services.NewBruteForceSearcher(),
		counters,
	)

	// Initialize scoring and matching services
	scoringConfig := services.DefaultScoringConfig()
	scoringConfig.NotableThreshold = cfg.Matching.NotableThreshold
	scoringConfig.PartialMatchWeight = cfg.Matching.PartialMatchWeight
	scoringConfig.LocationRadiusKm = cfg.Matching.LocationRadiusKm
	scoringService := services.NewScoringService(scoringConfig)

	skillGapService := services.NewSkillGapService(scoringConfig.Synonyms)
	feedbackService := services.NewFeedbackService(feedbackRepo, entityRepo)

	recommenderService := services.NewRecommenderService(
		services.RecommenderConfig{
			DefaultLimit:       cfg.Matching.DefaultLimit,
			MaxLimit:           cfg.Matching.MaxLimit,
			ScoringConcurrency: cfg.Matching.ScoringConcurrency,
		},
		entityRepo,
		prefRepo,
		scoringService,
		searcher,
		embeddingService,
		counters,
	)
	log.Println("✅ Matching services initialized")

	// Initialize resume upload support
	storageService := services.NewStorageService(cfg.Storage.UploadPath)
	if err := storageService.EnsureUploadDir(); err != nil {
		log.Fatalf("❌ Failed to create upload directory: %v", err)
	}
	resumeParser := services.NewResumeParserService()

	// Start preference tuner
	tuner := services.NewPreferenceTuner(
		feedbackRepo,
		prefRepo,
		feedbackService,
		cfg.Worker.Concurrency,
		cfg.Worker.PollInterval,
		cfg.Worker.FeedbackWindow,
	)
	tuner.Start(context.Background())
	log.Println("✅ Preference tuner started successfully")

	// Initialize handlers
	recommendationHandler := handlers.NewRecommendationHandler(
		recommenderService,
		storageService,
		resumeParser,
		embeddingService,
		cfg.Storage.MaxFileSize,
	)
	skillGapHandler := handlers.NewSkillGapHandler(entityRepo, skillGapService)
	feedbackHandler := handlers.NewFeedbackHandler(feedbackService)
	preferenceHandler := handlers.NewPreferenceHandler(prefRepo)
	log.Println("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Talent Matching Engine API",
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

	// Health check with degraded-mode counters
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
			"degraded_mode": fiber.Map{
				"brute_force_searches":  counters.BruteForceSearches(),
				"attribute_only_scores": counters.AttributeOnlyScores(),
			},
		})
	})

	// API endpoints
	api.Post("/recommendations", recommendationHandler.HandleRecommend)
	api.Post("/recommendations/by-resume", recommendationHandler.HandleMatchByResume)
	api.Get("/similar/:id", recommendationHandler.HandleSimilar)
	api.Post("/talent-search", recommendationHandler.HandleTalentSearch)
	api.Post("/skill-gap", skillGapHandler.HandleSkillGap)
	api.Post("/feedback", feedbackHandler.HandleSubmit)
	api.Get("/feedback/summary", feedbackHandler.HandleSummary)
	api.Get("/preferences/:userID", preferenceHandler.HandleGet)
	api.Put("/preferences/:userID", preferenceHandler.HandleUpdate)

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Talent Matching Engine API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/recommendations",
				"POST /api/v1/recommendations/by-resume",
				"GET /api/v1/similar/:id",
				"POST /api/v1/talent-search",
				"POST /api/v1/skill-gap",
				"POST /api/v1/feedback",
				"GET /api/v1/feedback/summary",
				"GET /api/v1/preferences/:userID",
				"PUT /api/v1/preferences/:userID",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		tuner.Stop()
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
