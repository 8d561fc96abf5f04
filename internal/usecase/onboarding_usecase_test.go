package usecase_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"go-matching-backend/internal/domain"
	"go-matching-backend/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func strPtr(s string) *string { return &s }

func newOnboardingUC(users *MockUserRepo, store *MockFileStore, client *MockAnalysisClient, geo *MockGeocoder, attempts int) *usecase.OnboardingUsecase {
	var geocoder domain.Geocoder
	if geo != nil {
		geocoder = geo
	}
	return usecase.NewOnboardingUsecase(users, store, client, geocoder, usecase.OnboardingConfig{
		StartingBalance: 100,
		PollInterval:    0, // no sleeping in tests
		PollMaxAttempts: attempts,
	})
}

func TestOnboard(t *testing.T) {
	ctx := context.Background()

	t.Run("Should create a PROCESSING profile with the starting balance and return immediately", func(t *testing.T) {
		mockUsers := new(MockUserRepo)
		mockStore := new(MockFileStore)
		mockClient := new(MockAnalysisClient)
		uc := newOnboardingUC(mockUsers, mockStore, mockClient, nil, 1)

		mockStore.On("Store", ctx, "intro.mp4", mock.Anything).Return("/media/abc_intro.mp4", nil)
		mockUsers.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(nil).Run(func(args mock.Arguments) {
			u := args.Get(1).(*domain.User)
			assert.Equal(t, domain.StatusProcessing, u.Status)
			assert.Equal(t, 100, u.Point)
			assert.Equal(t, "/media/abc_intro.mp4", u.VideoURL)
			u.ID = 7
		})
		// The detached task loads the profile again; returning nothing ends it.
		mockUsers.On("GetByID", mock.Anything, int64(7)).Return(nil, nil).Maybe()

		user, err := uc.Onboard(ctx, &domain.OnboardingInput{
			VideoName: "intro.mp4",
			Video:     strings.NewReader("video-bytes"),
		})

		assert.NoError(t, err)
		assert.Equal(t, int64(7), user.ID)
		assert.Equal(t, domain.StatusProcessing, user.Status)

		time.Sleep(20 * time.Millisecond) // let the detached task drain
	})

	t.Run("Should reject a missing video", func(t *testing.T) {
		uc := newOnboardingUC(new(MockUserRepo), new(MockFileStore), new(MockAnalysisClient), nil, 1)

		_, err := uc.Onboard(ctx, &domain.OnboardingInput{})

		assert.Error(t, err)
	})

	t.Run("Should store the optional photo alongside the video", func(t *testing.T) {
		mockUsers := new(MockUserRepo)
		mockStore := new(MockFileStore)
		uc := newOnboardingUC(mockUsers, mockStore, new(MockAnalysisClient), nil, 1)

		mockStore.On("Store", ctx, "intro.mp4", mock.Anything).Return("/media/v", nil)
		mockStore.On("Store", ctx, "face.jpg", mock.Anything).Return("/media/p", nil)
		mockUsers.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(nil).Run(func(args mock.Arguments) {
			u := args.Get(1).(*domain.User)
			assert.Equal(t, "/media/p", u.ProfileURL)
			u.ID = 8
		})
		mockUsers.On("GetByID", mock.Anything, int64(8)).Return(nil, nil).Maybe()

		_, err := uc.Onboard(ctx, &domain.OnboardingInput{
			VideoName: "intro.mp4",
			Video:     strings.NewReader("v"),
			PhotoName: "face.jpg",
			Photo:     strings.NewReader("p"),
		})

		assert.NoError(t, err)
		time.Sleep(20 * time.Millisecond)
	})
}

func TestProcessAnalysis(t *testing.T) {
	ctx := context.Background()
	processing := func() *domain.User {
		return &domain.User{ID: 7, VideoURL: "/media/abc_intro.mp4", Status: domain.StatusProcessing}
	}

	t.Run("Pending until the last attempt still completes the profile", func(t *testing.T) {
		mockUsers := new(MockUserRepo)
		mockStore := new(MockFileStore)
		mockClient := new(MockAnalysisClient)
		uc := newOnboardingUC(mockUsers, mockStore, mockClient, nil, 60)

		mockUsers.On("GetByID", ctx, int64(7)).Return(processing(), nil)
		mockStore.On("Open", ctx, "/media/abc_intro.mp4").
			Return(io.NopCloser(strings.NewReader("video")), nil)
		mockClient.On("Submit", ctx, "abc_intro.mp4", mock.Anything).Return("task-1", nil)

		mockClient.On("Poll", ctx, "task-1").Return(nil, nil).Times(59)
		mockClient.On("Poll", ctx, "task-1").Return(&domain.AnalysisOutcome{
			Name:         strPtr("김철수"),
			Age:          strPtr("60대 후반"),
			Hobbies:      `["등산", "바둑"]`,
			Gender:       strPtr("M"),
			Introduction: strPtr("안녕하세요"),
		}, nil).Once()

		mockUsers.On("UpdateFromAnalysis", ctx, mock.AnythingOfType("*domain.User")).
			Return(true, nil).Run(func(args mock.Arguments) {
			u := args.Get(1).(*domain.User)
			assert.Equal(t, "김철수", u.Name)
			assert.Equal(t, "60대 후반", u.Age)
			assert.Equal(t, []string{"등산", "바둑"}, u.HobbyList())
			assert.NotNil(t, u.Gender)
			assert.Equal(t, domain.GenderMale, *u.Gender)
			assert.Equal(t, "안녕하세요", u.Introduction)
		})

		uc.ProcessAnalysis(ctx, 7)

		mockClient.AssertExpectations(t)
		mockUsers.AssertNotCalled(t, "MarkAnalysisFailed", mock.Anything, mock.Anything)
	})

	t.Run("Missing fields fall back to defaults", func(t *testing.T) {
		mockUsers := new(MockUserRepo)
		mockStore := new(MockFileStore)
		mockClient := new(MockAnalysisClient)
		uc := newOnboardingUC(mockUsers, mockStore, mockClient, nil, 3)

		mockUsers.On("GetByID", ctx, int64(7)).Return(processing(), nil)
		mockStore.On("Open", ctx, mock.Anything).
			Return(io.NopCloser(strings.NewReader("video")), nil)
		mockClient.On("Submit", ctx, mock.Anything, mock.Anything).Return("task-1", nil)
		mockClient.On("Poll", ctx, "task-1").Return(&domain.AnalysisOutcome{
			Gender: strPtr("???"),
		}, nil)

		mockUsers.On("UpdateFromAnalysis", ctx, mock.AnythingOfType("*domain.User")).
			Return(true, nil).Run(func(args mock.Arguments) {
			u := args.Get(1).(*domain.User)
			assert.Equal(t, "미상", u.Name)
			assert.Equal(t, "미상", u.Age)
			assert.Equal(t, "새로운 인연을 원하는 시니어입니다.", u.Introduction)
			assert.Nil(t, u.Gender) // unrecognized token stays unset
		})

		uc.ProcessAnalysis(ctx, 7)

		mockUsers.AssertExpectations(t)
	})

	t.Run("Exhausted poll budget fails the profile", func(t *testing.T) {
		mockUsers := new(MockUserRepo)
		mockStore := new(MockFileStore)
		mockClient := new(MockAnalysisClient)
		uc := newOnboardingUC(mockUsers, mockStore, mockClient, nil, 3)

		mockUsers.On("GetByID", ctx, int64(7)).Return(processing(), nil)
		mockStore.On("Open", ctx, mock.Anything).
			Return(io.NopCloser(strings.NewReader("video")), nil)
		mockClient.On("Submit", ctx, mock.Anything, mock.Anything).Return("task-1", nil)
		mockClient.On("Poll", ctx, "task-1").Return(nil, nil).Times(3)
		mockUsers.On("MarkAnalysisFailed", ctx, int64(7)).Return(nil)

		uc.ProcessAnalysis(ctx, 7)

		mockClient.AssertExpectations(t)
		mockUsers.AssertCalled(t, "MarkAnalysisFailed", ctx, int64(7))
		mockUsers.AssertNotCalled(t, "UpdateFromAnalysis", mock.Anything, mock.Anything)
	})

	t.Run("Submit failure fails the profile without polling", func(t *testing.T) {
		mockUsers := new(MockUserRepo)
		mockStore := new(MockFileStore)
		mockClient := new(MockAnalysisClient)
		uc := newOnboardingUC(mockUsers, mockStore, mockClient, nil, 3)

		mockUsers.On("GetByID", ctx, int64(7)).Return(processing(), nil)
		mockStore.On("Open", ctx, mock.Anything).
			Return(io.NopCloser(strings.NewReader("video")), nil)
		mockClient.On("Submit", ctx, mock.Anything, mock.Anything).
			Return("", errors.New("connection refused"))
		mockUsers.On("MarkAnalysisFailed", ctx, int64(7)).Return(nil)

		uc.ProcessAnalysis(ctx, 7)

		mockUsers.AssertCalled(t, "MarkAnalysisFailed", ctx, int64(7))
		mockClient.AssertNotCalled(t, "Poll", mock.Anything, mock.Anything)
	})

	t.Run("A transient poll error burns an attempt instead of aborting", func(t *testing.T) {
		mockUsers := new(MockUserRepo)
		mockStore := new(MockFileStore)
		mockClient := new(MockAnalysisClient)
		uc := newOnboardingUC(mockUsers, mockStore, mockClient, nil, 3)

		mockUsers.On("GetByID", ctx, int64(7)).Return(processing(), nil)
		mockStore.On("Open", ctx, mock.Anything).
			Return(io.NopCloser(strings.NewReader("video")), nil)
		mockClient.On("Submit", ctx, mock.Anything, mock.Anything).Return("task-1", nil)
		mockClient.On("Poll", ctx, "task-1").Return(nil, errors.New("worker hiccup")).Once()
		mockClient.On("Poll", ctx, "task-1").Return(&domain.AnalysisOutcome{
			Name: strPtr("김철수"),
		}, nil).Once()
		mockUsers.On("UpdateFromAnalysis", ctx, mock.Anything).Return(true, nil)

		uc.ProcessAnalysis(ctx, 7)

		mockUsers.AssertNotCalled(t, "MarkAnalysisFailed", mock.Anything, mock.Anything)
	})

	t.Run("A late outcome for a terminal profile is dropped", func(t *testing.T) {
		mockUsers := new(MockUserRepo)
		mockStore := new(MockFileStore)
		mockClient := new(MockAnalysisClient)
		uc := newOnboardingUC(mockUsers, mockStore, mockClient, nil, 3)

		mockUsers.On("GetByID", ctx, int64(7)).Return(processing(), nil)
		mockStore.On("Open", ctx, mock.Anything).
			Return(io.NopCloser(strings.NewReader("video")), nil)
		mockClient.On("Submit", ctx, mock.Anything, mock.Anything).Return("task-1", nil)
		mockClient.On("Poll", ctx, "task-1").Return(&domain.AnalysisOutcome{}, nil)
		mockUsers.On("UpdateFromAnalysis", ctx, mock.Anything).Return(false, nil)

		uc.ProcessAnalysis(ctx, 7)

		mockUsers.AssertNotCalled(t, "MarkAnalysisFailed", mock.Anything, mock.Anything)
	})

	t.Run("Geocoded label is persisted with the outcome", func(t *testing.T) {
		mockUsers := new(MockUserRepo)
		mockStore := new(MockFileStore)
		mockClient := new(MockAnalysisClient)
		mockGeo := new(MockGeocoder)
		uc := newOnboardingUC(mockUsers, mockStore, mockClient, mockGeo, 3)

		lat, lon := 37.5665, 126.978
		located := processing()
		located.Latitude, located.Longitude = &lat, &lon

		mockUsers.On("GetByID", ctx, int64(7)).Return(located, nil)
		mockGeo.On("ReverseGeocode", ctx, lat, lon).Return("서울특별시 중구", nil)
		mockStore.On("Open", ctx, mock.Anything).
			Return(io.NopCloser(strings.NewReader("video")), nil)
		mockClient.On("Submit", ctx, mock.Anything, mock.Anything).Return("task-1", nil)
		mockClient.On("Poll", ctx, "task-1").Return(&domain.AnalysisOutcome{}, nil)
		mockUsers.On("UpdateFromAnalysis", ctx, mock.Anything).
			Return(true, nil).Run(func(args mock.Arguments) {
			u := args.Get(1).(*domain.User)
			assert.Equal(t, "서울특별시 중구", u.Location)
		})

		uc.ProcessAnalysis(ctx, 7)

		mockUsers.AssertExpectations(t)
	})
}
