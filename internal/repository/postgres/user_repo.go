package postgres

import (
	"context"
	"errors"
	"fmt"

	"go-matching-backend/internal/domain"
	"go-matching-backend/pkg/apperror"
	"go-matching-backend/pkg/database"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

const userColumns = `id, name, age, hobbies, gender, video_url, profile_url, location,
	latitude, longitude, point, status, introduction, created_at, updated_at`

type userRepo struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) domain.UserRepository {
	return &userRepo{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	var gender *string
	err := row.Scan(
		&u.ID, &u.Name, &u.Age, &u.Hobbies, &gender, &u.VideoURL, &u.ProfileURL,
		&u.Location, &u.Latitude, &u.Longitude, &u.Point, &u.Status,
		&u.Introduction, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if gender != nil {
		g := domain.Gender(*gender)
		u.Gender = &g
	}
	return &u, nil
}

func genderArg(g *domain.Gender) *string {
	if g == nil {
		return nil
	}
	s := string(*g)
	return &s
}

func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	query := `INSERT INTO users (name, age, hobbies, gender, video_url, profile_url,
			location, latitude, longitude, point, status, introduction)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at`

	err := q(ctx, r.db).QueryRow(ctx, query,
		user.Name, user.Age, user.Hobbies, genderArg(user.Gender), user.VideoURL,
		user.ProfileURL, user.Location, user.Latitude, user.Longitude,
		user.Point, user.Status, user.Introduction,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(q(ctx, r.db).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperror.Internal(err)
	}
	return user, nil
}

func (r *userRepo) GetByIDs(ctx context.Context, ids []int64) ([]domain.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id = ANY($1)`

	rows, err := q(ctx, r.db).Query(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, apperror.Internal(err)
	}
	defer rows.Close()

	byID := make(map[int64]domain.User, len(ids))
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		byID[user.ID] = *user
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Internal(err)
	}

	// preserve the caller's order
	users := make([]domain.User, 0, len(byID))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}

func (r *userRepo) UpdateFromAnalysis(ctx context.Context, user *domain.User) (bool, error) {
	// Guarded on status so a terminal profile is never resurrected.
	query := `UPDATE users
		SET name = $2, age = $3, hobbies = $4, gender = $5, introduction = $6,
			location = $7, status = $8, updated_at = now()
		WHERE id = $1 AND status = $9`

	tag, err := q(ctx, r.db).Exec(ctx, query,
		user.ID, user.Name, user.Age, user.Hobbies, genderArg(user.Gender),
		user.Introduction, user.Location, domain.StatusComplete, domain.StatusProcessing,
	)
	if err != nil {
		return false, apperror.Internal(err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *userRepo) MarkAnalysisFailed(ctx context.Context, id int64) error {
	query := `UPDATE users SET status = $2, updated_at = now()
		WHERE id = $1 AND status = $3`

	_, err := q(ctx, r.db).Exec(ctx, query, id, domain.StatusFailed, domain.StatusProcessing)
	if err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (r *userRepo) FindNearby(ctx context.Context, lat, lon, radiusKm float64, excludeIDs []int64, limit int) ([]domain.User, error) {
	// Great-circle distance in km (haversine over a 6371km sphere), same
	// formula the mobile clients use. Only COMPLETE profiles have analyzed
	// fields worth showing.
	query := `SELECT ` + userColumns + ` FROM users u
		WHERE u.id <> ALL($4)
		  AND u.status = $5
		  AND u.latitude IS NOT NULL AND u.longitude IS NOT NULL
		  AND (6371 * acos(
				cos(radians($1)) * cos(radians(u.latitude)) *
				cos(radians(u.longitude) - radians($2)) +
				sin(radians($1)) * sin(radians(u.latitude)))) < $3
		ORDER BY u.id
		LIMIT $6`

	if excludeIDs == nil {
		excludeIDs = []int64{}
	}

	rows, err := q(ctx, r.db).Query(ctx, query,
		lat, lon, radiusKm, pq.Array(excludeIDs), domain.StatusComplete, limit,
	)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Internal(err)
	}
	return users, nil
}

func (r *userRepo) DebitPoints(ctx context.Context, id int64, amount int) error {
	// Single-row read-modify-write under a row lock so concurrent debits
	// serialize and the balance can never go negative.
	debit := func(ctx context.Context) error {
		var balance int
		err := q(ctx, r.db).QueryRow(ctx,
			`SELECT point FROM users WHERE id = $1 FOR UPDATE`, id,
		).Scan(&balance)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperror.NotFound(fmt.Sprintf("User not found with id: %d", id))
		}
		if err != nil {
			return apperror.Internal(err)
		}

		if balance < amount {
			return apperror.InsufficientFunds("Not enough points")
		}

		_, err = q(ctx, r.db).Exec(ctx,
			`UPDATE users SET point = point - $2, updated_at = now() WHERE id = $1`,
			id, amount,
		)
		if err != nil {
			return apperror.Internal(err)
		}
		return nil
	}

	return database.WithTx(ctx, r.db, debit)
}
