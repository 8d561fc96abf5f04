package usecase

import (
	"context"

	"go-matching-backend/internal/domain"
	"go-matching-backend/pkg/apperror"
)

// PurchaseConfig holds the point price list.
type PurchaseConfig struct {
	PointsPerExtraPick int
	PointsPerContact   int
}

type purchaseUsecase struct {
	tx     domain.TxRunner
	ledger domain.PointLedger
	engine domain.RecommendationUsecase
	chat   domain.ChatUsecase
	cfg    PurchaseConfig
}

// NewPurchaseUsecase wires paid actions: each one debits the ledger and
// applies its effect inside a single unit of work, so a failure on either
// side rolls back both.
func NewPurchaseUsecase(
	tx domain.TxRunner,
	ledger domain.PointLedger,
	engine domain.RecommendationUsecase,
	chat domain.ChatUsecase,
	cfg PurchaseConfig,
) domain.PurchaseUsecase {
	return &purchaseUsecase{
		tx:     tx,
		ledger: ledger,
		engine: engine,
		chat:   chat,
		cfg:    cfg,
	}
}

func (u *purchaseUsecase) BuyAdditional(ctx context.Context, userID int64, count int) ([]domain.User, error) {
	if count <= 0 {
		return nil, apperror.BadRequest("Count must be positive")
	}

	cost := count * u.cfg.PointsPerExtraPick

	var picks []domain.User
	err := u.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := u.ledger.Debit(ctx, userID, cost); err != nil {
			return err
		}
		var err error
		picks, err = u.engine.GetAdditional(ctx, userID, count)
		return err
	})
	if err != nil {
		return nil, err
	}
	return picks, nil
}

func (u *purchaseUsecase) InitiateContact(ctx context.Context, userID, targetID int64) (*domain.Room, error) {
	if userID == targetID {
		return nil, apperror.BadRequest("Cannot contact yourself")
	}

	var room *domain.Room
	err := u.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := u.ledger.Debit(ctx, userID, u.cfg.PointsPerContact); err != nil {
			return err
		}
		var err error
		room, err = u.chat.CreateConversation(ctx, userID, targetID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return room, nil
}
