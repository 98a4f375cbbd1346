package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"hospital-capacity-backend/internal/config"
	"hospital-capacity-backend/internal/database"
	"hospital-capacity-backend/internal/events"
	"hospital-capacity-backend/internal/handler"
	"hospital-capacity-backend/internal/middleware"
	"hospital-capacity-backend/internal/observability"
	"hospital-capacity-backend/internal/repository"
	"hospital-capacity-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// 1. Load configuration
	cfg := config.LoadConfig()
	log.Println("Configuration loaded successfully")

	// 2. Initialize database connection and schema
	db := database.Connect(cfg)
	database.Migrate(db)

	// 3. Metrics registry shared by both ingress paths
	metrics := observability.NewMetrics()

	// 4. Connect NATS and ensure the stream exists
	natsClient, err := events.Connect(cfg)
	if err != nil {
		if cfg.NATS.Required {
			log.Fatalf("Failed to connect to NATS: %v", err)
		}
		log.Printf("Warning: NATS unavailable, events will be dropped: %v", err)
		natsClient = nil
	}
	publisher := events.NewPublisher(natsClient)

	// 5. Initialize repositories
	store := repository.NewStore(db)
	hospitalRepo := repository.NewHospitalRepo(db)
	capacityRepo := repository.NewCapacityRepo(db)

	// 6. Initialize services
	ingestionService := service.NewIngestionService(store, publisher, metrics)
	recommendationService := service.NewRecommendationService(
		hospitalRepo,
		clockwork.NewRealClock(),
		cfg.Capacity.StaleThreshold,
		metrics,
	)
	hospitalService := service.NewHospitalService(hospitalRepo, capacityRepo)

	// 7. Start the stream consumer in a background goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.NATS.ConsumerEnabled && natsClient != nil {
		consumer := events.NewConsumer(natsClient, cfg.NATS.Durable, ingestionService, metrics)
		go func() {
			if err := consumer.Run(ctx); err != nil {
				log.Printf("Consumer stopped with error: %v", err)
			}
		}()
	} else {
		log.Println("NATS consumer disabled")
	}

	// 8. Setup Gin router
	gin.SetMode(cfg.Server.GinMode)
	r := gin.Default()
	r.Use(middleware.CORS(cfg))

	// 9. Register handlers
	capacityHandler := handler.NewCapacityHandler(ingestionService)
	recommendationHandler := handler.NewRecommendationHandler(recommendationService)
	hospitalHandler := handler.NewHospitalHandler(hospitalService)
	healthHandler := handler.NewHealthHandler(db, natsClient, cfg.NATS.Required)

	// 10. Define routes
	r.GET("/health", healthHandler.Health)
	r.GET("/ready", healthHandler.Ready)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/hospitals", hospitalHandler.ListHospitals)
	r.GET("/hospitals/:id", hospitalHandler.GetHospital)

	capacity := r.Group("/capacity")
	{
		capacity.GET("/recommendation", recommendationHandler.GetRecommendations)
		capacity.POST("/update", middleware.APIKeyAuth(cfg), capacityHandler.UpdateCapacity)
	}

	// 11. Start server with graceful shutdown
	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		if err := r.Run(":" + cfg.Server.Port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Stop the consumer, drain NATS, close the pool
	cancel()
	natsClient.Close()
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Println("Server exited")
}
