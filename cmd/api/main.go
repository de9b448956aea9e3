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

	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pkgvalidator "github.com/harulab/interp-practice/pkg/validator"

	"github.com/harulab/interp-practice/internal/adapter/handler"
	"github.com/harulab/interp-practice/internal/adapter/repository"
	"github.com/harulab/interp-practice/internal/domain/repositories"
	"github.com/harulab/interp-practice/internal/infrastructure/cache"
	"github.com/harulab/interp-practice/internal/infrastructure/database"
	"github.com/harulab/interp-practice/internal/infrastructure/external/extractor"
	"github.com/harulab/interp-practice/internal/infrastructure/external/media"
	"github.com/harulab/interp-practice/internal/infrastructure/storage"
	"github.com/harulab/interp-practice/internal/usecase/pipeline"
	"github.com/harulab/interp-practice/pkg/config"
	"github.com/harulab/interp-practice/pkg/speech"
)

// @title           Interpretation Practice API
// @version         1.0
// @description     API for turning online videos into timed transcripts for language interpretation practice

// @host      localhost:8080
// @BasePath  /v1

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Echo instance
	e := echo.New()

	// Register validator for request validation
	e.Validator = pkgvalidator.New()

	// Configure Echo
	e.HideBanner = true
	e.HidePort = false

	// Custom logger format
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))

	// Recover from panics
	e.Use(middleware.Recover())

	// CORS middleware
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	log.Println("🔧 Initializing dependencies...")

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize transcript persistence (optional)
	var transcriptRepo repositories.TranscriptRepository
	if cfg.Database.Enabled {
		log.Println("📦 Connecting to database...")
		db, err := database.NewPostgresDB(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer database.CloseDB(db)

		// Run migrations only when explicitly enabled in config.
		// Production deployments should manage schema via sql-migrate.
		if cfg.Database.AutoMigrate {
			if cfg.Server.Environment == "production" {
				log.Fatalf("AutoMigrate is enabled in production. Disable DB_AUTO_MIGRATE or manage schema with sql-migrate.")
			}
			if err := database.AutoMigrate(db); err != nil {
				log.Fatalf("Failed to run migrations: %v", err)
			}
		} else {
			log.Println("🔄 Skipping migrations; use sql-migrate for schema migrations in CI/CD/production")
		}

		transcriptRepo = repository.NewTranscriptRepository(db)
	} else {
		log.Println("⚠️  Database disabled, transcript history unavailable")
	}

	// Initialize session store: Redis when enabled, otherwise in-memory
	var sessionStore repositories.SessionStore
	if cfg.Redis.Enabled {
		log.Println("📦 Connecting to Redis...")
		redisClient, err := cache.NewRedisClient(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		sessionStore = cache.NewRedisSessionStore(redisClient, 2*time.Hour)
	} else {
		log.Println("📦 Using in-memory session store")
		sessionStore = cache.NewMemorySessionStore(2 * time.Hour)
	}

	// Initialize artifact storage (optional)
	var artifactStore *storage.ArtifactStore
	if cfg.Storage.Enabled {
		log.Println("📦 Connecting to object storage...")
		artifactStore, err = storage.NewArtifactStore(&cfg.Storage)
		if err != nil {
			log.Fatalf("Failed to connect to object storage: %v", err)
		}
	} else {
		log.Println("⚠️  Object storage disabled, artifact downloads unavailable")
	}

	// Initialize pipeline collaborators
	log.Println("🎬 Initializing media pipeline...")
	extractorClient := extractor.NewClient(&cfg.Extractor, logger)
	mediaToolkit := media.NewToolkit(&cfg.Extractor, logger)
	speechClient := speech.NewClient(cfg)
	if !speechClient.IsConfigured() {
		log.Println("⚠️  Speech backend not configured, only caption-backed sources will work")
	}

	pipelineService := pipeline.NewService(
		sessionStore,
		transcriptRepo,
		extractorClient,
		mediaToolkit,
		speechClient,
		artifactStore,
		cfg,
		logger,
	)

	// Setup router with handlers
	log.Println("🛣️  Setting up routes...")
	videoController := handler.NewVideoController(pipelineService, logger)
	router := handler.NewRouter(cfg, videoController)
	router.Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("🚀 Starting server on %s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		log.Printf("🔗 Health check: http://%s/health", addr)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}
