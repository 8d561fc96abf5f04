package usecase

import (
	"context"
	"fmt"

	"go-matching-backend/internal/domain"
	"go-matching-backend/pkg/apperror"

	"github.com/go-playground/validator/v10"
)

// videoArrivedText is shown in room previews instead of a raw video URL.
const videoArrivedText = "영상이 도착했습니다."

type chatUsecase struct {
	rooms    domain.ChatRepository
	users    domain.UserRepository
	validate *validator.Validate
}

func NewChatUsecase(rooms domain.ChatRepository, users domain.UserRepository, validate *validator.Validate) domain.ChatUsecase {
	return &chatUsecase{
		rooms:    rooms,
		users:    users,
		validate: validate,
	}
}

func (u *chatUsecase) CreateConversation(ctx context.Context, userID, targetID int64) (*domain.Room, error) {
	current, err := u.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, apperror.NotFound(fmt.Sprintf("User not found with id: %d", userID))
	}

	target, err := u.users.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, apperror.NotFound(fmt.Sprintf("Target user not found with id: %d", targetID))
	}

	room := &domain.Room{}
	if err := u.rooms.CreateRoom(ctx, room); err != nil {
		return nil, err
	}
	if err := u.rooms.AddParticipant(ctx, room.ID, userID); err != nil {
		return nil, err
	}
	if err := u.rooms.AddParticipant(ctx, room.ID, targetID); err != nil {
		return nil, err
	}

	// The conversation opens with the initiator's introduction video.
	msg := &domain.Message{
		RoomID:         room.ID,
		SenderID:       userID,
		MessageContent: current.VideoURL,
		MessageType:    domain.MessageVideo,
	}
	if err := u.rooms.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}
	if err := u.rooms.SetLastMessage(ctx, room.ID, videoArrivedText); err != nil {
		return nil, err
	}
	room.LastMessage = videoArrivedText

	return room, nil
}

func (u *chatUsecase) ListRooms(ctx context.Context, userID int64) ([]domain.ChatRoomSummary, error) {
	return u.rooms.ListRoomsWithOpponent(ctx, userID)
}

func (u *chatUsecase) ListMessages(ctx context.Context, roomID int64) ([]domain.Message, error) {
	room, err := u.rooms.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, apperror.NotFound(fmt.Sprintf("Room not found with id: %d", roomID))
	}
	return u.rooms.ListMessages(ctx, roomID)
}

func (u *chatUsecase) SendMessage(ctx context.Context, roomID, senderID int64, req *domain.SendMessageRequest) ([]domain.Message, error) {
	if err := u.validate.Struct(req); err != nil {
		return nil, apperror.BadRequest(err.Error())
	}

	room, err := u.rooms.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, apperror.NotFound(fmt.Sprintf("Room not found with id: %d", roomID))
	}

	msg := &domain.Message{
		RoomID:         roomID,
		SenderID:       senderID,
		MessageContent: req.MessageContent,
		MessageType:    req.MessageType,
	}
	if err := u.rooms.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}

	preview := req.MessageContent
	if req.MessageType == domain.MessageVideo {
		preview = videoArrivedText
	}
	if err := u.rooms.SetLastMessage(ctx, roomID, preview); err != nil {
		return nil, err
	}

	return u.rooms.ListMessages(ctx, roomID)
}
