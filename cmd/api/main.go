package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/scandoo/scandoo/internal/cache"
	"github.com/scandoo/scandoo/internal/config"
	"github.com/scandoo/scandoo/internal/database"
	"github.com/scandoo/scandoo/internal/handler"
	"github.com/scandoo/scandoo/internal/middleware"
	"github.com/scandoo/scandoo/internal/repository"
	"github.com/scandoo/scandoo/internal/service"
)

const productsCollection = "products"

// main is the application entrypoint for the scandoo product API.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting scandoo api")

	// 3. Connect record store
	client, err := database.Connect(&cfg.Mongo)
	if err != nil {
		log.Error().Err(err).Msg("mongodb connection failed")
		fmt.Fprintf(os.Stderr, "mongodb connection failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(ctx)
	}()
	log.Info().Str("database", cfg.Mongo.Database).Msg("mongodb connected successfully")

	store := database.NewCollectionStore(client.Database(cfg.Mongo.Database).Collection(productsCollection))

	// 4. Initialize repository
	productRepo := repository.NewProductRepository(store)

	// 5. Initialize service, with the lookup cache when Redis is configured
	var productSvc *service.ProductService
	if cfg.CacheEnabled() {
		redisClient, err := cache.NewRedisClient(&cfg.Redis)
		if err != nil {
			log.Error().Err(err).Msg("redis connection failed")
			fmt.Fprintf(os.Stderr, "redis connection failed: %v\n", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		log.Info().Msg("redis connected successfully, lookup cache enabled")

		productCache := cache.NewProductCache(redisClient, cfg.Cache.TTL)
		productSvc = service.NewProductServiceWithCache(productRepo, productCache)
	} else {
		productSvc = service.NewProductService(productRepo)
	}

	// 6. Initialize handlers
	handlers := &Handlers{
		Health:  handler.NewHealthHandler(client),
		Product: handler.NewProductHandler(productSvc),
	}

	// 7. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.LoggingMiddleware())
	setupRoutes(router, handlers)

	// 8. Start HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 9. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 10. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health  *handler.HealthHandler
	Product *handler.ProductHandler
}

// setupRoutes registers all routes.
func setupRoutes(router *gin.Engine, handlers *Handlers) {
	router.GET("/health", handlers.Health.GetHealth)

	// Bare /products GET hits the same handler with an empty code so the
	// missing-code case answers 400 instead of a router 404.
	router.GET("/products", handlers.Product.GetProduct)
	router.GET("/products/:code", handlers.Product.GetProduct)
	router.POST("/products", handlers.Product.CreateProduct)
	router.PUT("/products/:code", handlers.Product.UpdateProduct)
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
