package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"gorm.io/gorm/logger"

	"github.com/staffgraph/staffgraph/internal/cache"
	"github.com/staffgraph/staffgraph/internal/config"
	"github.com/staffgraph/staffgraph/internal/database"
	"github.com/staffgraph/staffgraph/internal/handlers"
	"github.com/staffgraph/staffgraph/internal/jobs"
	"github.com/staffgraph/staffgraph/internal/middleware"
	"github.com/staffgraph/staffgraph/internal/orgs"
	"github.com/staffgraph/staffgraph/internal/services"
	"github.com/staffgraph/staffgraph/internal/sources"
)

func main() {
	// Load .env file if it exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found or error loading it (this is fine if using environment variables): %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting staffgraph...")

	engineCfg, err := config.LoadEngineConfig(cfg.EngineConfigPath)
	if err != nil {
		log.Fatalf("Failed to load engine configuration: %v", err)
	}

	// Authentication
	if cfg.AuthEnabled && cfg.AdminPassword == "" {
		log.Fatalf("ADMIN_PASSWORD is not set")
	}
	passwordHash := ""
	if cfg.AdminPassword != "" {
		passwordHash, err = middleware.HashPassword(cfg.AdminPassword)
		if err != nil {
			log.Fatalf("Failed to hash admin password: %v", err)
		}
	}

	jwtAuthMiddleware := middleware.NewJWTAuthMiddleware(&middleware.JWTAuthConfig{
		Enabled:           cfg.AuthEnabled,
		AdminUsername:     cfg.AdminUsername,
		AdminPasswordHash: passwordHash,
		JWTSecret:         cfg.JWTSecret,
		JWTExpiryHours:    cfg.JWTExpiryHours,
		SkipPaths: []string{
			"/health",
			"/auth/login",
		},
	})
	if cfg.AuthEnabled {
		log.Printf("JWT authentication enabled for user: %s", cfg.AdminUsername)
	} else {
		log.Printf("JWT authentication DISABLED")
	}

	// Database
	db, err := database.Connect(cfg.DatabaseURL, logger.Warn)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Printf("Database connection established")

	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}
	if _, err := database.GetOrCreateScoringSettings(db); err != nil {
		log.Fatalf("Failed to initialize scoring settings: %v", err)
	}

	// Engine components
	normalizer := orgs.NewNormalizer(engineCfg.OrgAliases)
	var resolver orgs.Resolver = orgs.LenientResolver{}
	if engineCfg.OrgMatching == "strict" {
		resolver = orgs.StrictResolver{}
	}
	log.Printf("Organization matching mode: %s", orElse(engineCfg.OrgMatching, "lenient"))

	ttlOverrides, err := engineCfg.TTLOverrides()
	if err != nil {
		log.Fatalf("Invalid cache TTL configuration: %v", err)
	}
	cacheStore := cache.NewStore(db, ttlOverrides)

	// Services
	personService := services.NewPersonService(db)
	relService := services.NewRelationshipService(db, resolver)
	importService := services.NewImportService(db, personService, normalizer, sources.NewRegistry(), cacheStore)

	// Rebuild progress over websocket
	progressHandler := handlers.NewProgressWSHandler()
	relService.SetNotifier(progressHandler)

	// Periodic rebuild job
	rebuildJob := jobs.NewRebuildJob(db, relService)
	stopJob := make(chan struct{})
	go rebuildJob.Start(stopJob)
	log.Printf("Rebuild job started")

	// HTTP surface
	mux := http.NewServeMux()
	handlers.NewHTTPHandler(db).SetupRoutes(mux)
	handlers.NewAuthHandler(jwtAuthMiddleware).SetupRoutes(mux)
	handlers.NewAPIHandler(db, personService, relService, importService).SetupRoutes(mux)
	progressHandler.SetupRoutes(mux)

	// CORS first, then JWT authentication, then request IDs
	corsMiddleware := middleware.NewCORSMiddleware()
	handler := corsMiddleware.Wrap(jwtAuthMiddleware.Wrap(middleware.RequestIDMiddleware(mux)))

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: handler,
	}

	go func() {
		log.Printf("Starting HTTP server on port %d", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	log.Printf("Health check endpoint: http://localhost:%d/health", cfg.HTTPPort)
	log.Printf("API base URL: http://localhost:%d/api", cfg.HTTPPort)
	log.Printf("Rebuild progress websocket: ws://localhost:%d/ws/progress", cfg.HTTPPort)

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Received shutdown signal, cleaning up...")
	close(stopJob)
	if err := httpServer.Close(); err != nil {
		log.Printf("Error shutting down HTTP server: %v", err)
	}
	if err := database.Close(db); err != nil {
		log.Printf("Error closing database: %v", err)
	}
	log.Println("Shutdown complete")
}

func orElse(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
