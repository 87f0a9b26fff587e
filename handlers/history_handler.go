package handlers

import (
	"log"
	"net/http"

	"formreview-backend/models"
	"formreview-backend/service"

	"github.com/gin-gonic/gin"
)

// HistoryHandler lists the chats of the configured user
type HistoryHandler struct {
	historyService *service.HistoryService
	username       string
}

func NewHistoryHandler(historyService *service.HistoryService, username string) *HistoryHandler {
	return &HistoryHandler{
		historyService: historyService,
		username:       username,
	}
}

// GetChatHistory handles GET /chat_history
func (h *HistoryHandler) GetChatHistory(c *gin.Context) {
	entries, err := h.historyService.List(c.Request.Context(), h.username)
	if err != nil {
		log.Printf("Error fetching chat history for %s: %v", h.username, err)
		abortWithError(c, http.StatusInternalServerError, "HISTORY_FAILED", err.Error())
		return
	}
	if entries == nil {
		entries = []*models.HistoryEntry{}
	}

	c.JSON(http.StatusOK, entries)
}
