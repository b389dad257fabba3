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
	"go.uber.org/zap"

	"growth-graph/backend/internal/api"
	"growth-graph/backend/internal/auth"
	"growth-graph/backend/internal/bootstrap"
	"growth-graph/backend/internal/media"
	"growth-graph/backend/internal/service"
	"growth-graph/backend/pkg/config"
	"growth-graph/backend/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	// Initialize logger
	if err := logger.Init(cfg.Env, cfg.LogLevel); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting HTTP API server...", zap.String("store", cfg.StoreDriver))

	ctx := context.Background()
	st, err := bootstrap.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to open store", zap.Error(err))
	}
	defer st.Close(context.Background())

	// Initialize dependencies
	tokens := auth.NewTokens([]byte(cfg.JWTSecret), cfg.TokenTTL)
	svc := service.New(st, tokens, auth.NewPasswords(cfg.BcryptCost))

	opts := api.Options{
		ClientURL:      cfg.ClientURL,
		RequestTimeout: cfg.RequestTimeout,
		Logger:         logger.Named("http"),
	}
	if cfg.PhotoUploadsEnabled() {
		photos, err := media.NewPhotos(ctx, media.Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PublicURL: cfg.S3PublicURL,
			Expiry:    cfg.S3PresignTTL,
		})
		if err != nil {
			log.Fatal("Failed to configure photo uploads", zap.Error(err))
		}
		opts.Photos = photos
		log.Info("Profile photo uploads enabled", zap.String("bucket", cfg.S3Bucket))
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(svc, tokens, opts)

	// Start server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started", zap.String("port", cfg.Port))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

