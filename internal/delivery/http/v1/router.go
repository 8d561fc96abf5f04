package v1

import (
	"net/http"
	"time"

	"go-matching-backend/config"
	"go-matching-backend/internal/delivery/http/middleware"
	"go-matching-backend/internal/delivery/http/response"
	"go-matching-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type RouterDeps struct {
	UserUC           domain.UserUsecase
	RecommendationUC domain.RecommendationUsecase
	PurchaseUC       domain.PurchaseUsecase
	ChatUC           domain.ChatUsecase
	Config           *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	window := time.Duration(deps.Config.RateLimitWindowSeconds) * time.Second

	// Global Middlewares
	r.Use(middleware.CORSMiddleware()) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimitMiddleware(
		middleware.GlobalRateLimitConfig(deps.Config.RateLimitGlobalThreshold, window)))

	v1 := r.Group("/v1")

	// Health Check
	v1.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, "System operational", nil)
	})

	uploadLimiter := middleware.RateLimitMiddleware(middleware.UploadRateLimitConfig())
	purchaseLimiter := middleware.RateLimitMiddleware(
		middleware.PurchaseRateLimitConfig(deps.Config.RateLimitPurchaseThreshold, window))

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.Identity())
	{
		NewUserHandler(v1, protected, deps.UserUC, deps.Config.MaxVideoUploadBytes, uploadLimiter)
		NewRecommendationHandler(protected, deps.RecommendationUC, deps.PurchaseUC, purchaseLimiter)
		NewChatHandler(protected, deps.ChatUC)
	}

	return r
}
