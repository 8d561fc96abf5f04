package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go-matching-backend/internal/domain"
	"go-matching-backend/pkg/apperror"
)

// RecommendationConfig tunes the matching engine. RadiusKm bounds the
// candidate search; PoolSize caps how many nearby profiles are ranked for
// the free daily picks.
type RecommendationConfig struct {
	DailyLimit int
	RadiusKm   float64
	PoolSize   int
}

type recommendationUsecase struct {
	users domain.UserRepository
	recs  domain.RecommendationRepository
	cfg   RecommendationConfig
	now   func() time.Time
}

func NewRecommendationUsecase(
	users domain.UserRepository,
	recs domain.RecommendationRepository,
	cfg RecommendationConfig,
) domain.RecommendationUsecase {
	return &recommendationUsecase{
		users: users,
		recs:  recs,
		cfg:   cfg,
		now:   time.Now,
	}
}

func (u *recommendationUsecase) GetDaily(ctx context.Context, userID int64) ([]domain.User, error) {
	user, err := u.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NotFound(fmt.Sprintf("User not found with id: %d", userID))
	}

	today := dateOf(u.now())
	shownIDs, err := u.recs.ListRecommendedIDs(ctx, userID, today)
	if err != nil {
		return nil, err
	}

	// Quota already spent: the call is idempotent for the rest of the day.
	if len(shownIDs) >= u.cfg.DailyLimit {
		return u.users.GetByIDs(ctx, shownIDs)
	}

	var fresh []domain.User
	if user.HasLocation() {
		exclude := append([]int64{userID}, shownIDs...)
		pool, err := u.users.FindNearby(ctx, *user.Latitude, *user.Longitude,
			u.cfg.RadiusKm, exclude, u.cfg.PoolSize)
		if err != nil {
			return nil, err
		}

		rankByHobbyOverlap(user, pool)
		needed := u.cfg.DailyLimit - len(shownIDs)
		if len(pool) > needed {
			pool = pool[:needed]
		}
		fresh = pool
	}

	for i := range fresh {
		rec := &domain.Recommendation{
			UserID:            userID,
			RecommendedUserID: fresh[i].ID,
			Date:              today,
		}
		if err := u.recs.Create(ctx, rec); err != nil {
			return nil, err
		}
	}

	shown, err := u.users.GetByIDs(ctx, shownIDs)
	if err != nil {
		return nil, err
	}
	return append(shown, fresh...), nil
}

func (u *recommendationUsecase) GetAdditional(ctx context.Context, userID int64, count int) ([]domain.User, error) {
	if count <= 0 {
		return []domain.User{}, nil
	}

	user, err := u.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NotFound(fmt.Sprintf("User not found with id: %d", userID))
	}
	if !user.HasLocation() {
		return []domain.User{}, nil
	}

	today := dateOf(u.now())
	shownIDs, err := u.recs.ListRecommendedIDs(ctx, userID, today)
	if err != nil {
		return nil, err
	}

	exclude := append([]int64{userID}, shownIDs...)
	candidates, err := u.users.FindNearby(ctx, *user.Latitude, *user.Longitude,
		u.cfg.RadiusKm, exclude, count)
	if err != nil {
		return nil, err
	}

	for i := range candidates {
		rec := &domain.Recommendation{
			UserID:            userID,
			RecommendedUserID: candidates[i].ID,
			Date:              today,
		}
		if err := u.recs.Create(ctx, rec); err != nil {
			return nil, err
		}
	}

	if candidates == nil {
		candidates = []domain.User{}
	}
	return candidates, nil
}

// rankByHobbyOverlap orders candidates by shared hobby count, descending.
// The sort is stable so equal scores keep the repository's deterministic
// order, which keeps same-day reruns consistent.
func rankByHobbyOverlap(caller *domain.User, candidates []domain.User) {
	mine := make(map[string]struct{})
	for _, h := range caller.HobbyList() {
		mine[h] = struct{}{}
	}

	score := func(u *domain.User) int {
		n := 0
		for _, h := range u.HobbyList() {
			if _, ok := mine[h]; ok {
				n++
			}
		}
		return n
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return score(&candidates[i]) > score(&candidates[j])
	})
}

// dateOf truncates a timestamp to its calendar date in server-local time.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
