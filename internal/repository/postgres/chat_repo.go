package postgres

import (
	"context"
	"errors"

	"go-matching-backend/internal/domain"
	"go-matching-backend/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type chatRepo struct {
	db *pgxpool.Pool
}

func NewChatRepository(db *pgxpool.Pool) domain.ChatRepository {
	return &chatRepo{db: db}
}

func (r *chatRepo) CreateRoom(ctx context.Context, room *domain.Room) error {
	query := `INSERT INTO rooms (last_message) VALUES ($1)
		RETURNING id, created_at`

	err := q(ctx, r.db).QueryRow(ctx, query, room.LastMessage).
		Scan(&room.ID, &room.CreatedAt)
	if err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (r *chatRepo) GetRoom(ctx context.Context, id int64) (*domain.Room, error) {
	query := `SELECT id, last_message, created_at FROM rooms WHERE id = $1`

	var room domain.Room
	err := q(ctx, r.db).QueryRow(ctx, query, id).
		Scan(&room.ID, &room.LastMessage, &room.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperror.Internal(err)
	}
	return &room, nil
}

func (r *chatRepo) AddParticipant(ctx context.Context, roomID, userID int64) error {
	query := `INSERT INTO participants (room_id, user_id) VALUES ($1, $2)`

	_, err := q(ctx, r.db).Exec(ctx, query, roomID, userID)
	if err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (r *chatRepo) CreateMessage(ctx context.Context, msg *domain.Message) error {
	query := `INSERT INTO messages (room_id, sender_id, message_content, message_type)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := q(ctx, r.db).QueryRow(ctx, query,
		msg.RoomID, msg.SenderID, msg.MessageContent, msg.MessageType,
	).Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (r *chatRepo) SetLastMessage(ctx context.Context, roomID int64, text string) error {
	query := `UPDATE rooms SET last_message = $2 WHERE id = $1`

	_, err := q(ctx, r.db).Exec(ctx, query, roomID, text)
	if err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (r *chatRepo) ListMessages(ctx context.Context, roomID int64) ([]domain.Message, error) {
	query := `SELECT id, room_id, sender_id, message_content, message_type, created_at
		FROM messages WHERE room_id = $1 ORDER BY id`

	rows, err := q(ctx, r.db).Query(ctx, query, roomID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.RoomID, &m.SenderID, &m.MessageContent, &m.MessageType, &m.CreatedAt); err != nil {
			return nil, apperror.Internal(err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Internal(err)
	}
	return messages, nil
}

func (r *chatRepo) ListRoomsWithOpponent(ctx context.Context, userID int64) ([]domain.ChatRoomSummary, error) {
	// One row per room the user participates in, joined with the other
	// participant's profile.
	query := `SELECT rm.id, rm.last_message,
			u.id, u.name, u.age, u.hobbies, u.location, u.video_url
		FROM participants mine
		JOIN rooms rm ON rm.id = mine.room_id
		JOIN participants theirs ON theirs.room_id = rm.id AND theirs.user_id <> mine.user_id
		JOIN users u ON u.id = theirs.user_id
		WHERE mine.user_id = $1
		ORDER BY rm.id`

	rows, err := q(ctx, r.db).Query(ctx, query, userID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	defer rows.Close()

	var summaries []domain.ChatRoomSummary
	for rows.Next() {
		var s domain.ChatRoomSummary
		if err := rows.Scan(
			&s.RoomID, &s.LastMessage,
			&s.Opponent.UserID, &s.Opponent.Name, &s.Opponent.Age,
			&s.Opponent.Hobbies, &s.Opponent.Location, &s.Opponent.VideoURL,
		); err != nil {
			return nil, apperror.Internal(err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Internal(err)
	}
	return summaries, nil
}
