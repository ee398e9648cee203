package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"socialnet/backend/internal/config"
	"socialnet/backend/internal/database"
	"socialnet/backend/internal/handler"
	"socialnet/backend/internal/hub"
	"socialnet/backend/internal/intimate"
	"socialnet/backend/internal/kafka"
	"socialnet/backend/internal/ratelimit"
	"socialnet/backend/internal/storage"
	"socialnet/backend/internal/telemetry"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	// Swagger imports
	_ "socialnet/backend/docs" // This is important for swag to find the generated docs

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func init() {
	config.LoadConfig()
}

// @title           Socialnet API
// @version         1.0
// @description     This is the API for the Socialnet service.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.AppConfig
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.OTELEndpoint != "" {
		shutdown, err := telemetry.Init(ctx, cfg.OTELEndpoint, cfg.OTELServiceName, cfg.Env)
		if err != nil {
			log.Printf("Warning: tracing disabled: %v", err)
		} else {
			defer shutdown(context.Background())
		}
	}

	// Connect to the database
	database.Connect(cfg.DatabaseURL)

	// Intimate events go to every open event stream and, when configured, kafka.
	publishers := intimate.Publishers{hub.GlobalHub}
	if cfg.KafkaBrokers != "" {
		w := kafka.NewWriter(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer w.Close()
		publishers = append(publishers, w)
	}
	manager := intimate.NewManager(intimate.NewRepository(database.DB), intimate.WithPublisher(publishers))

	deps := handler.Deps{
		Intimates:     manager,
		Hub:           hub.GlobalHub,
		RequestLimit:  cfg.RequestRateLimit,
		RequestWindow: cfg.RequestRateWindow,
	}
	if cfg.RedisAddr != "" {
		deps.Limiter = ratelimit.NewFromAddr(cfg.RedisAddr)
	}
	if cfg.MinioEndpoint != "" {
		store, err := storage.New(storage.Config{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			UseSSL:    cfg.MinioUseSSL,
			Bucket:    cfg.MinioBucket,
		})
		if err != nil {
			log.Fatalf("Failed to create minio client: %v", err)
		}
		if err := store.EnsureBucket(ctx); err != nil {
			log.Printf("Warning: bucket %s not ready: %v", cfg.MinioBucket, err)
		}
		deps.Images = store
	}

	router := gin.Default()

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	handler.RegisterRoutes(router.Group("/api/v1"), deps)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           otelhttp.NewHandler(router, cfg.OTELServiceName),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		fmt.Printf("Server is running on :%s\n", cfg.Port)
		fmt.Printf("Swagger UI is available at http://localhost:%s/swagger/index.html\n", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
}
