package v1_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-matching-backend/internal/delivery/http/middleware"
	v1 "go-matching-backend/internal/delivery/http/v1"
	"go-matching-backend/internal/domain"
	"go-matching-backend/pkg/apperror"
	"go-matching-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init()
}

type MockRecommendationUC struct {
	mock.Mock
}

func (m *MockRecommendationUC) GetDaily(ctx context.Context, userID int64) ([]domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockRecommendationUC) GetAdditional(ctx context.Context, userID int64, count int) ([]domain.User, error) {
	args := m.Called(ctx, userID, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

type MockPurchaseUC struct {
	mock.Mock
}

func (m *MockPurchaseUC) BuyAdditional(ctx context.Context, userID int64, count int) ([]domain.User, error) {
	args := m.Called(ctx, userID, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockPurchaseUC) InitiateContact(ctx context.Context, userID, targetID int64) (*domain.Room, error) {
	args := m.Called(ctx, userID, targetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Room), args.Error(1)
}

func noLimit() gin.HandlerFunc {
	return func(c *gin.Context) { c.Next() }
}

func newTestRouter(recUC domain.RecommendationUsecase, purchaseUC domain.PurchaseUsecase) *gin.Engine {
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	protected := r.Group("/v1")
	protected.Use(middleware.Identity())
	v1.NewRecommendationHandler(protected, recUC, purchaseUC, noLimit())
	return r
}

func TestGetDailyEndpoint(t *testing.T) {
	t.Run("Projects profiles for the client", func(t *testing.T) {
		mockRec := new(MockRecommendationUC)
		mockRec.On("GetDaily", mock.Anything, int64(1)).Return([]domain.User{
			{ID: 2, Name: "김철수", Point: 80, VideoURL: "/media/v.mp4"},
		}, nil)

		router := newTestRouter(mockRec, new(MockPurchaseUC))
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/recommendations", nil)
		req.Header.Set("X-User-Id", "1")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"user_id":2`)
		assert.Contains(t, w.Body.String(), "김철수")
		// Point balances are private, never part of the projection.
		assert.NotContains(t, w.Body.String(), `"point"`)
	})

	t.Run("Requires an identity", func(t *testing.T) {
		router := newTestRouter(new(MockRecommendationUC), new(MockPurchaseUC))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/recommendations", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestBuyAdditionalEndpoint(t *testing.T) {
	t.Run("Valid purchase returns the fresh picks", func(t *testing.T) {
		mockPurchase := new(MockPurchaseUC)
		mockPurchase.On("BuyAdditional", mock.Anything, int64(1), 2).
			Return([]domain.User{{ID: 5}, {ID: 6}}, nil)

		router := newTestRouter(new(MockRecommendationUC), mockPurchase)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/recommendations/additional",
			strings.NewReader(`{"count": 2}`))
		req.Header.Set("X-User-Id", "1")
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockPurchase.AssertExpectations(t)
	})

	t.Run("Count outside 1..10 is rejected before the usecase", func(t *testing.T) {
		mockPurchase := new(MockPurchaseUC)
		router := newTestRouter(new(MockRecommendationUC), mockPurchase)

		for _, body := range []string{`{"count": 0}`, `{"count": 11}`, `{}`} {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/v1/recommendations/additional",
				strings.NewReader(body))
			req.Header.Set("X-User-Id", "1")
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code, body)
		}
		mockPurchase.AssertNotCalled(t, "BuyAdditional", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Insufficient points surface as a client error", func(t *testing.T) {
		mockPurchase := new(MockPurchaseUC)
		mockPurchase.On("BuyAdditional", mock.Anything, int64(1), 3).
			Return(nil, apperror.InsufficientFunds("Not enough points"))

		router := newTestRouter(new(MockRecommendationUC), mockPurchase)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/recommendations/additional",
			strings.NewReader(`{"count": 3}`))
		req.Header.Set("X-User-Id", "1")
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Not enough points")
	})
}

func TestInitiateContactEndpoint(t *testing.T) {
	t.Run("Opens a conversation with the target", func(t *testing.T) {
		mockPurchase := new(MockPurchaseUC)
		mockPurchase.On("InitiateContact", mock.Anything, int64(1), int64(2)).
			Return(&domain.Room{ID: 3, LastMessage: "영상이 도착했습니다."}, nil)

		router := newTestRouter(new(MockRecommendationUC), mockPurchase)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/recommendations/2/contact", nil)
		req.Header.Set("X-User-Id", "1")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"id":3`)
	})

	t.Run("Non-numeric target id is a bad request", func(t *testing.T) {
		router := newTestRouter(new(MockRecommendationUC), new(MockPurchaseUC))
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/recommendations/abc/contact", nil)
		req.Header.Set("X-User-Id", "1")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
