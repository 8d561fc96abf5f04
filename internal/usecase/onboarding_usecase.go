package usecase

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"go-matching-backend/internal/domain"
	"go-matching-backend/pkg/apperror"
	"go-matching-backend/pkg/logger"
)

const (
	// Fallbacks merged into a profile when the worker leaves a field empty.
	unknownField        = "미상"
	defaultIntroduction = "새로운 인연을 원하는 시니어입니다."
)

// OnboardingConfig tunes the background analysis flow. The poll budget is
// interval x attempts; a task still pending after the last attempt fails
// the profile.
type OnboardingConfig struct {
	StartingBalance int
	PollInterval    time.Duration
	PollMaxAttempts int
}

// OnboardingUsecase stores the upload, creates the PROCESSING profile and
// drives the analysis task to a terminal state in a detached goroutine.
type OnboardingUsecase struct {
	users    domain.UserRepository
	store    domain.FileStore
	analysis domain.AnalysisClient
	geocoder domain.Geocoder
	cfg      OnboardingConfig
}

func NewOnboardingUsecase(
	users domain.UserRepository,
	store domain.FileStore,
	analysis domain.AnalysisClient,
	geocoder domain.Geocoder,
	cfg OnboardingConfig,
) *OnboardingUsecase {
	return &OnboardingUsecase{
		users:    users,
		store:    store,
		analysis: analysis,
		geocoder: geocoder,
		cfg:      cfg,
	}
}

func (u *OnboardingUsecase) Onboard(ctx context.Context, in *domain.OnboardingInput) (*domain.User, error) {
	if in.Video == nil {
		return nil, apperror.BadRequest("Introduction video is required")
	}

	videoRef, err := u.store.Store(ctx, in.VideoName, in.Video)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("store video: %w", err))
	}

	var photoRef string
	if in.Photo != nil {
		photoRef, err = u.store.Store(ctx, in.PhotoName, in.Photo)
		if err != nil {
			return nil, apperror.Internal(fmt.Errorf("store photo: %w", err))
		}
	}

	user := &domain.User{
		VideoURL:   videoRef,
		ProfileURL: photoRef,
		Latitude:   in.Latitude,
		Longitude:  in.Longitude,
		Point:      u.cfg.StartingBalance,
		Status:     domain.StatusProcessing,
	}
	if err := u.users.Create(ctx, user); err != nil {
		return nil, err
	}

	// The request returns now; analysis continues on a fresh context so it
	// outlives the HTTP request.
	go u.ProcessAnalysis(context.Background(), user.ID)

	return user, nil
}

func (u *OnboardingUsecase) GetProfile(ctx context.Context, id int64) (*domain.User, error) {
	user, err := u.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NotFound(fmt.Sprintf("User not found with id: %d", id))
	}
	return user, nil
}

// ProcessAnalysis submits the stored video to the analysis worker and polls
// until the task finishes or the attempt budget runs out. Every exit path
// leaves the profile in a terminal state.
func (u *OnboardingUsecase) ProcessAnalysis(ctx context.Context, userID int64) {
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Error("analysis task panicked", "user_id", userID, "panic", r)
			u.markFailed(ctx, userID)
		}
	}()

	user, err := u.users.GetByID(ctx, userID)
	if err != nil || user == nil {
		logger.Log.Error("analysis task could not load profile", "user_id", userID, "error", err)
		return
	}

	location := u.resolveLocation(ctx, user)

	video, err := u.store.Open(ctx, user.VideoURL)
	if err != nil {
		logger.Log.Error("analysis task could not open video", "user_id", userID, "error", err)
		u.markFailed(ctx, userID)
		return
	}

	taskID, err := u.analysis.Submit(ctx, path.Base(user.VideoURL), video)
	video.Close()
	if err != nil {
		logger.Log.Error("analysis submit failed", "user_id", userID, "error", err)
		u.markFailed(ctx, userID)
		return
	}
	logger.Log.Info("analysis task submitted", "user_id", userID, "task_id", taskID)

	for attempt := 1; attempt <= u.cfg.PollMaxAttempts; attempt++ {
		time.Sleep(u.cfg.PollInterval)

		outcome, err := u.analysis.Poll(ctx, taskID)
		if err != nil {
			// Transient worker trouble burns an attempt instead of aborting.
			logger.Log.Warn("analysis poll failed", "user_id", userID, "task_id", taskID,
				"attempt", attempt, "error", err)
			continue
		}
		if outcome == nil {
			continue
		}

		u.completeAnalysis(ctx, user, outcome, location)
		return
	}

	logger.Log.Error("analysis task timed out", "user_id", userID, "task_id", taskID,
		"attempts", u.cfg.PollMaxAttempts)
	u.markFailed(ctx, userID)
}

// resolveLocation is best-effort: no coordinates, no geocoder or an upstream
// error all degrade to an empty label.
func (u *OnboardingUsecase) resolveLocation(ctx context.Context, user *domain.User) string {
	if u.geocoder == nil || !user.HasLocation() {
		return ""
	}
	label, err := u.geocoder.ReverseGeocode(ctx, *user.Latitude, *user.Longitude)
	if err != nil {
		logger.Log.Warn("reverse geocoding failed", "user_id", user.ID, "error", err)
		return ""
	}
	return label
}

func (u *OnboardingUsecase) completeAnalysis(ctx context.Context, user *domain.User, outcome *domain.AnalysisOutcome, location string) {
	user.Name = valueOr(outcome.Name, unknownField)
	user.Age = valueOr(outcome.Age, unknownField)
	user.Hobbies = outcome.Hobbies
	user.Introduction = valueOr(outcome.Introduction, defaultIntroduction)
	user.Location = location

	if outcome.Gender != nil && *outcome.Gender != "" {
		raw := strings.ToUpper(strings.TrimSpace(*outcome.Gender))
		if g, ok := domain.ParseGender(raw); ok {
			user.Gender = &g
		} else {
			logger.Log.Warn("unrecognized gender from analysis worker",
				"user_id", user.ID, "value", *outcome.Gender)
		}
	}

	updated, err := u.users.UpdateFromAnalysis(ctx, user)
	if err != nil {
		logger.Log.Error("persisting analysis outcome failed", "user_id", user.ID, "error", err)
		u.markFailed(ctx, user.ID)
		return
	}
	if !updated {
		// Profile already left PROCESSING; the late outcome is dropped.
		logger.Log.Warn("analysis outcome dropped, profile no longer processing", "user_id", user.ID)
		return
	}
	logger.Log.Info("analysis complete", "user_id", user.ID)
}

func (u *OnboardingUsecase) markFailed(ctx context.Context, userID int64) {
	if err := u.users.MarkAnalysisFailed(ctx, userID); err != nil {
		logger.Log.Error("marking analysis failed errored", "user_id", userID, "error", err)
	}
}

func valueOr(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}
