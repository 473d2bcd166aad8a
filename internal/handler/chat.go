package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vitalog/backend/internal/service"
	"github.com/vitalog/backend/pkg/api"
	"go.uber.org/zap"
)

// ChatHandler implements the consultation chat API endpoints
type ChatHandler struct {
	service *service.ChatService
	logger  *zap.Logger
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(service *service.ChatService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		service: service,
		logger:  logger,
	}
}

// GetSession establishes the user's consultation session and returns it
// with its full history. If the stored session reference is unusable, a
// fresh session is created transparently.
func (h *ChatHandler) GetSession(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "user_id query parameter is required",
		})
		return
	}

	session, messages, err := h.service.EnsureSession(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("failed to establish session",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		writeServiceError(c, err, "Failed to establish consultation session")
		return
	}

	resp := api.ChatSessionResponse{
		SessionID: session.ID,
		Messages:  make([]api.ChatMessage, 0, len(messages)),
	}
	for _, msg := range messages {
		resp.Messages = append(resp.Messages, toAPIMessage(msg))
	}

	c.JSON(http.StatusOK, resp)
}

// SendMessage sends a consultation message and returns both the stored
// user message and the assistant's reply.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req api.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("invalid request body", zap.Error(err))
		writeBindError(c, err)
		return
	}

	result, err := h.service.SendMessage(c.Request.Context(), req.UserID, req.Content)
	if err != nil {
		h.logger.Error("failed to send message",
			zap.Error(err),
			zap.String("user_id", req.UserID),
		)
		writeServiceError(c, err, "Failed to send message")
		return
	}

	c.JSON(http.StatusOK, api.SendMessageResponse{
		UserMessage:      toAPIMessage(result.UserMessage),
		AssistantMessage: toAPIMessage(result.AssistantMessage),
	})
}

// DeleteSession removes the user's consultation session and history
func (h *ChatHandler) DeleteSession(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "user_id query parameter is required",
		})
		return
	}

	if err := h.service.DeleteSession(c.Request.Context(), userID); err != nil {
		h.logger.Error("failed to delete session",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		writeServiceError(c, err, "Failed to delete consultation session")
		return
	}

	c.Status(http.StatusNoContent)
}
