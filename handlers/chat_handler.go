package handlers

import (
	"errors"
	"log"
	"net/http"

	"formreview-backend/service"

	"github.com/gin-gonic/gin"
)

// ChatHandler handles HTTP requests for chat sessions
type ChatHandler struct {
	chatService *service.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// ChatRequest represents the request body for a chat turn
type ChatRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	UserQuery string `json:"user_query" binding:"required"`
}

// Chat handles POST /chat
func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	reply, err := h.chatService.Respond(c.Request.Context(), req.SessionID, req.UserQuery)
	if err != nil {
		if errors.Is(err, service.ErrEmptySession) || errors.Is(err, service.ErrEmptyQuery) {
			abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
			return
		}
		log.Printf("Error in chat session '%s': %v", req.SessionID, err)
		abortWithError(c, http.StatusInternalServerError, "CHAT_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"response": reply,
	})
}
