package v1

import (
	"net/http"
	"strconv"

	"go-matching-backend/internal/delivery/http/middleware"
	"go-matching-backend/internal/delivery/http/response"
	"go-matching-backend/internal/domain"
	"go-matching-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	chatUC domain.ChatUsecase
}

func NewChatHandler(r *gin.RouterGroup, chatUC domain.ChatUsecase) {
	handler := &ChatHandler{chatUC: chatUC}

	chats := r.Group("/chats")
	{
		chats.GET("", handler.ListRooms)
		chats.GET("/:chatId/messages", handler.ListMessages)
		chats.POST("/:chatId/message", handler.SendMessage)
	}
}

func (h *ChatHandler) ListRooms(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.Error(apperror.Unauthorized("User not authenticated"))
		return
	}

	rooms, err := h.chatUC.ListRooms(c, userID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Chat rooms", rooms)
}

func (h *ChatHandler) ListMessages(c *gin.Context) {
	roomID, ok := chatID(c)
	if !ok {
		return
	}

	messages, err := h.chatUC.ListMessages(c, roomID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Messages", messages)
}

func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.Error(apperror.Unauthorized("User not authenticated"))
		return
	}

	roomID, ok := chatID(c)
	if !ok {
		return
	}

	var req domain.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid message payload"))
		return
	}

	messages, err := h.chatUC.SendMessage(c, roomID, userID, &req)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Message sent", messages)
}

func chatID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("chatId"), 10, 64)
	if err != nil || id <= 0 {
		c.Error(apperror.BadRequest("Invalid chat id"))
		return 0, false
	}
	return id, true
}
