package usecase

import (
	"context"
	"fmt"

	"go-matching-backend/internal/domain"
	"go-matching-backend/pkg/apperror"
)

type pointsUsecase struct {
	users domain.UserRepository
}

// NewPointLedger returns the only legal gateway for spending points.
func NewPointLedger(users domain.UserRepository) domain.PointLedger {
	return &pointsUsecase{users: users}
}

func (u *pointsUsecase) Debit(ctx context.Context, userID int64, amount int) error {
	if amount < 0 {
		return apperror.BadRequest("Debit amount must not be negative")
	}

	// A zero-amount debit is a no-op but still checks the user exists.
	if amount == 0 {
		user, err := u.users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return apperror.NotFound(fmt.Sprintf("User not found with id: %d", userID))
		}
		return nil
	}

	return u.users.DebitPoints(ctx, userID, amount)
}
