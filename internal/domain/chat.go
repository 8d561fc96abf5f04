package domain

import (
	"context"
	"time"
)

type MessageType string

const (
	MessageText  MessageType = "TEXT"
	MessageVideo MessageType = "VIDEO"
)

type Room struct {
	ID          int64     `json:"id"`
	LastMessage string    `json:"last_message,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type Message struct {
	ID             int64       `json:"id"`
	RoomID         int64       `json:"room_id"`
	SenderID       int64       `json:"sender_id"`
	MessageContent string      `json:"message_content"`
	MessageType    MessageType `json:"message_type"`
	CreatedAt      time.Time   `json:"created_at"`
}

// ChatRoomSummary is a room as seen from one participant's side.
type ChatRoomSummary struct {
	RoomID      int64           `json:"room_id"`
	LastMessage string          `json:"last_message,omitempty"`
	Opponent    RecommendedUser `json:"opponent"`
}

type SendMessageRequest struct {
	MessageContent string      `json:"message_content" validate:"required"`
	MessageType    MessageType `json:"message_type" validate:"required,oneof=TEXT VIDEO"`
}

type ChatRepository interface {
	CreateRoom(ctx context.Context, room *Room) error
	GetRoom(ctx context.Context, id int64) (*Room, error)
	AddParticipant(ctx context.Context, roomID, userID int64) error
	CreateMessage(ctx context.Context, msg *Message) error
	SetLastMessage(ctx context.Context, roomID int64, text string) error
	ListMessages(ctx context.Context, roomID int64) ([]Message, error)
	// ListRoomsWithOpponent returns every room userID participates in,
	// paired with the other participant's profile.
	ListRoomsWithOpponent(ctx context.Context, userID int64) ([]ChatRoomSummary, error)
}

type ChatUsecase interface {
	// CreateConversation opens a room between the two users and sends the
	// caller's introduction video as the first message.
	CreateConversation(ctx context.Context, userID, targetID int64) (*Room, error)
	ListRooms(ctx context.Context, userID int64) ([]ChatRoomSummary, error)
	ListMessages(ctx context.Context, roomID int64) ([]Message, error)
	SendMessage(ctx context.Context, roomID, senderID int64, req *SendMessageRequest) ([]Message, error)
}
