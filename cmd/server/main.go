package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"photovault-backend/internal/config"
	"photovault-backend/internal/database"
	"photovault-backend/internal/handlers"
	"photovault-backend/internal/middleware"
	"photovault-backend/internal/photo"
	"photovault-backend/internal/supabase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	migrator, err := database.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize migrator: %v", err)
	}
	if err := migrator.Run(); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	migrator.Close()
	log.Println("Migrations completed successfully")

	dbClient, err := supabase.NewDatabaseClient(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize database client: %v", err)
	}
	defer dbClient.Close()

	storageClient, err := supabase.NewStorageClient(cfg.SupabaseURL, cfg.SupabaseServiceRoleKey, cfg.SupabaseStorageBucket)
	if err != nil {
		log.Fatalf("Failed to initialize storage client: %v", err)
	}

	authClient, err := supabase.NewAuthClient(cfg.SupabaseURL, cfg.SupabaseServiceRoleKey)
	if err != nil {
		log.Fatalf("Failed to initialize auth client: %v", err)
	}

	photoService := photo.NewService(dbClient, storageClient)

	if cfg.ReconcileOnStart {
		reconciler := photo.NewReconciler(dbClient, storageClient, cfg.ReconcileStaleAfter)
		go func() {
			report, err := reconciler.Run()
			if err != nil {
				log.Printf("Reconciliation sweep failed: %v", err)
				return
			}
			log.Printf("Reconciliation sweep done: %d stale rows, %d orphaned blobs removed",
				report.StaleRowsRemoved, report.BlobsRemoved)
		}()
	}

	photosHandler := handlers.NewPhotosHandler(photoService, cfg.MaxUploadBytes)
	authHandler := handlers.NewAuthHandler(authClient, dbClient)

	router := gin.Default()

	router.GET("/health", handlers.HealthHandler)

	api := router.Group("/api/v1")

	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.GET("/auth/me", middleware.AuthMiddleware(cfg), authHandler.Me)

	photos := api.Group("/photos")
	photos.Use(middleware.AuthMiddleware(cfg))
	photos.POST("/upload", photosHandler.Upload)
	photos.GET("", photosHandler.List)
	photos.GET("/:id", photosHandler.Get)
	photos.GET("/:id/thumbnail", photosHandler.Thumbnail)
	photos.DELETE("/:id", photosHandler.Delete)

	log.Printf("Server starting on port %s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
