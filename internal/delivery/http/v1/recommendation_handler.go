package v1

import (
	"net/http"
	"strconv"

	"go-matching-backend/internal/delivery/http/middleware"
	"go-matching-backend/internal/delivery/http/response"
	"go-matching-backend/internal/domain"
	"go-matching-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type RecommendationHandler struct {
	recommendationUC domain.RecommendationUsecase
	purchaseUC       domain.PurchaseUsecase
}

// BuyAdditionalRequest is the body of a paid extra-picks purchase.
type BuyAdditionalRequest struct {
	Count int `json:"count" binding:"required,min=1,max=10"`
}

func NewRecommendationHandler(r *gin.RouterGroup, recommendationUC domain.RecommendationUsecase, purchaseUC domain.PurchaseUsecase, purchaseLimiter gin.HandlerFunc) {
	handler := &RecommendationHandler{
		recommendationUC: recommendationUC,
		purchaseUC:       purchaseUC,
	}

	recommendations := r.Group("/recommendations")
	{
		recommendations.GET("", handler.GetDaily)
		recommendations.POST("/additional", purchaseLimiter, handler.BuyAdditional)
		recommendations.POST("/:targetUserId/contact", purchaseLimiter, handler.InitiateContact)
	}
}

func (h *RecommendationHandler) GetDaily(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.Error(apperror.Unauthorized("User not authenticated"))
		return
	}

	users, err := h.recommendationUC.GetDaily(c, userID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Daily recommendations", projectUsers(users))
}

func (h *RecommendationHandler) BuyAdditional(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.Error(apperror.Unauthorized("User not authenticated"))
		return
	}

	var req BuyAdditionalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("count must be between 1 and 10"))
		return
	}

	users, err := h.purchaseUC.BuyAdditional(c, userID, req.Count)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Additional recommendations", projectUsers(users))
}

func (h *RecommendationHandler) InitiateContact(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.Error(apperror.Unauthorized("User not authenticated"))
		return
	}

	targetID, err := strconv.ParseInt(c.Param("targetUserId"), 10, 64)
	if err != nil || targetID <= 0 {
		c.Error(apperror.BadRequest("Invalid target user id"))
		return
	}

	room, err := h.purchaseUC.InitiateContact(c, userID, targetID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Conversation opened", room)
}

func projectUsers(users []domain.User) []domain.RecommendedUser {
	projected := make([]domain.RecommendedUser, 0, len(users))
	for _, u := range users {
		projected = append(projected, domain.NewRecommendedUser(u))
	}
	return projected
}
