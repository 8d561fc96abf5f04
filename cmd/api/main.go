package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-matching-backend/config"
	v1 "go-matching-backend/internal/delivery/http/v1"
	"go-matching-backend/internal/domain"
	"go-matching-backend/internal/repository/postgres"
	"go-matching-backend/internal/usecase"
	"go-matching-backend/pkg/analysis"
	"go-matching-backend/pkg/database"
	"go-matching-backend/pkg/geocoder"
	"go-matching-backend/pkg/logger"
	"go-matching-backend/pkg/redis"
	"go-matching-backend/pkg/security"
	"go-matching-backend/pkg/storage"

	"github.com/go-playground/validator/v10"
)

func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Loggers
	logger.Init()
	logger.Log.Info("Starting matching backend", "port", cfg.Port)

	auditLogger := security.InitAuditLogger("matching-backend")
	defer auditLogger.Sync()

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// 4. Setup Redis (rate limiting; the app runs without it)
	if cfg.RedisURL != "" {
		if err := redis.Initialize(redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword}); err != nil {
			logger.Log.Warn("Redis unavailable, rate limiting falls back to in-memory", "error", err)
		} else {
			defer redis.Close()
		}
	}

	// 5. Setup File Storage
	var fileStore domain.FileStore
	var localStore *storage.LocalStore
	if cfg.StorageBackend == "s3" {
		s3Store, err := storage.NewS3Store(context.Background(), storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
		if err != nil {
			logger.Log.Error("Failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
		fileStore = s3Store
	} else {
		localStore, err = storage.NewLocalStore(cfg.MediaDir, cfg.MediaPublicPrefix)
		if err != nil {
			logger.Log.Error("Failed to initialize local storage", "error", err)
			os.Exit(1)
		}
		fileStore = localStore
	}

	// 6. Setup External Collaborators
	analysisClient := analysis.NewClient(cfg.AIServerURL)

	var geo domain.Geocoder
	kakao := geocoder.NewClient(cfg.KakaoRestAPIKey, cfg.Coord2AddressURL)
	if kakao.IsConfigured() {
		geo = kakao
	} else {
		logger.Log.Warn("Kakao geocoder not configured - profiles keep an empty location label")
	}

	// 7. Setup Repositories
	userRepo := postgres.NewUserRepository(dbPool)
	recommendationRepo := postgres.NewRecommendationRepository(dbPool)
	chatRepo := postgres.NewChatRepository(dbPool)
	txManager := database.NewTxManager(dbPool)

	// 8. Setup UseCases
	validate := validator.New()
	onboardingUC := usecase.NewOnboardingUsecase(userRepo, fileStore, analysisClient, geo, usecase.OnboardingConfig{
		StartingBalance: cfg.StartingBalance,
		PollInterval:    cfg.PollInterval,
		PollMaxAttempts: cfg.PollMaxAttempts,
	})
	pointLedger := usecase.NewPointLedger(userRepo)
	recommendationUC := usecase.NewRecommendationUsecase(userRepo, recommendationRepo, usecase.RecommendationConfig{
		DailyLimit: cfg.DailyRecommendationLimit,
		RadiusKm:   cfg.RecommendationRadiusKm,
		PoolSize:   cfg.CandidatePoolSize,
	})
	chatUC := usecase.NewChatUsecase(chatRepo, userRepo, validate)
	purchaseUC := usecase.NewPurchaseUsecase(txManager, pointLedger, recommendationUC, chatUC, usecase.PurchaseConfig{
		PointsPerExtraPick: cfg.PointsPerExtraPick,
		PointsPerContact:   cfg.PointsPerContact,
	})

	// 9. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		UserUC:           onboardingUC,
		RecommendationUC: recommendationUC,
		PurchaseUC:       purchaseUC,
		ChatUC:           chatUC,
		Config:           cfg,
	})

	// Uploads are served straight from disk when storage is local.
	if localStore != nil {
		router.Static(cfg.MediaPublicPrefix, localStore.Dir())
	}

	// 10. Start Server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
