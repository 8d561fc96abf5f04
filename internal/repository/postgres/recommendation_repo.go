package postgres

import (
	"context"
	"time"

	"go-matching-backend/internal/domain"
	"go-matching-backend/pkg/apperror"

	"github.com/jackc/pgx/v5/pgxpool"
)

type recommendationRepo struct {
	db *pgxpool.Pool
}

func NewRecommendationRepository(db *pgxpool.Pool) domain.RecommendationRepository {
	return &recommendationRepo{db: db}
}

func (r *recommendationRepo) Create(ctx context.Context, rec *domain.Recommendation) error {
	query := `INSERT INTO recommendations (user_id, recommended_user_id, date)
		VALUES ($1, $2, $3)
		RETURNING id`

	err := q(ctx, r.db).QueryRow(ctx, query,
		rec.UserID, rec.RecommendedUserID, rec.Date,
	).Scan(&rec.ID)
	if err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (r *recommendationRepo) ListRecommendedIDs(ctx context.Context, userID int64, date time.Time) ([]int64, error) {
	// id order = insertion order = the order candidates were shown
	query := `SELECT recommended_user_id FROM recommendations
		WHERE user_id = $1 AND date = $2
		ORDER BY id`

	rows, err := q(ctx, r.db).Query(ctx, query, userID, date)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, apperror.Internal(err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Internal(err)
	}
	return ids, nil
}
