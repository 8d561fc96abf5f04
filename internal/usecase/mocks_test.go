package usecase_test

import (
	"context"
	"io"
	"time"

	"go-matching-backend/internal/domain"
	"go-matching-backend/pkg/logger"

	"github.com/stretchr/testify/mock"
)

func init() {
	logger.Init()
}

// Mock Repositories

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) GetByIDs(ctx context.Context, ids []int64) ([]domain.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserRepo) UpdateFromAnalysis(ctx context.Context, user *domain.User) (bool, error) {
	args := m.Called(ctx, user)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepo) MarkAnalysisFailed(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockUserRepo) FindNearby(ctx context.Context, lat, lon, radiusKm float64, excludeIDs []int64, limit int) ([]domain.User, error) {
	args := m.Called(ctx, lat, lon, radiusKm, excludeIDs, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserRepo) DebitPoints(ctx context.Context, id int64, amount int) error {
	return m.Called(ctx, id, amount).Error(0)
}

type MockRecommendationRepo struct {
	mock.Mock
}

func (m *MockRecommendationRepo) Create(ctx context.Context, rec *domain.Recommendation) error {
	return m.Called(ctx, rec).Error(0)
}

func (m *MockRecommendationRepo) ListRecommendedIDs(ctx context.Context, userID int64, date time.Time) ([]int64, error) {
	args := m.Called(ctx, userID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

type MockChatRepo struct {
	mock.Mock
}

func (m *MockChatRepo) CreateRoom(ctx context.Context, room *domain.Room) error {
	return m.Called(ctx, room).Error(0)
}

func (m *MockChatRepo) GetRoom(ctx context.Context, id int64) (*domain.Room, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Room), args.Error(1)
}

func (m *MockChatRepo) AddParticipant(ctx context.Context, roomID, userID int64) error {
	return m.Called(ctx, roomID, userID).Error(0)
}

func (m *MockChatRepo) CreateMessage(ctx context.Context, msg *domain.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *MockChatRepo) SetLastMessage(ctx context.Context, roomID int64, text string) error {
	return m.Called(ctx, roomID, text).Error(0)
}

func (m *MockChatRepo) ListMessages(ctx context.Context, roomID int64) ([]domain.Message, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Message), args.Error(1)
}

func (m *MockChatRepo) ListRoomsWithOpponent(ctx context.Context, userID int64) ([]domain.ChatRoomSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ChatRoomSummary), args.Error(1)
}

// Mock Collaborators

type MockFileStore struct {
	mock.Mock
}

func (m *MockFileStore) Store(ctx context.Context, filename string, r io.Reader) (string, error) {
	args := m.Called(ctx, filename, r)
	return args.String(0), args.Error(1)
}

func (m *MockFileStore) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

type MockAnalysisClient struct {
	mock.Mock
}

func (m *MockAnalysisClient) Submit(ctx context.Context, filename string, video io.Reader) (string, error) {
	args := m.Called(ctx, filename, video)
	return args.String(0), args.Error(1)
}

func (m *MockAnalysisClient) Poll(ctx context.Context, taskID string) (*domain.AnalysisOutcome, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AnalysisOutcome), args.Error(1)
}

type MockGeocoder struct {
	mock.Mock
}

func (m *MockGeocoder) ReverseGeocode(ctx context.Context, lat, lon float64) (string, error) {
	args := m.Called(ctx, lat, lon)
	return args.String(0), args.Error(1)
}

type MockPointLedger struct {
	mock.Mock
}

func (m *MockPointLedger) Debit(ctx context.Context, userID int64, amount int) error {
	return m.Called(ctx, userID, amount).Error(0)
}

type MockRecommendationEngine struct {
	mock.Mock
}

func (m *MockRecommendationEngine) GetDaily(ctx context.Context, userID int64) ([]domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockRecommendationEngine) GetAdditional(ctx context.Context, userID int64, count int) ([]domain.User, error) {
	args := m.Called(ctx, userID, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

type MockChatUsecase struct {
	mock.Mock
}

func (m *MockChatUsecase) CreateConversation(ctx context.Context, userID, targetID int64) (*domain.Room, error) {
	args := m.Called(ctx, userID, targetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Room), args.Error(1)
}

func (m *MockChatUsecase) ListRooms(ctx context.Context, userID int64) ([]domain.ChatRoomSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ChatRoomSummary), args.Error(1)
}

func (m *MockChatUsecase) ListMessages(ctx context.Context, roomID int64) ([]domain.Message, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Message), args.Error(1)
}

func (m *MockChatUsecase) SendMessage(ctx context.Context, roomID, senderID int64, req *domain.SendMessageRequest) ([]domain.Message, error) {
	args := m.Called(ctx, roomID, senderID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Message), args.Error(1)
}

// passTxRunner runs the unit of work directly, with no real transaction.
type passTxRunner struct{}

func (passTxRunner) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
