package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the public endpoints on r
func RegisterRoutes(r *gin.Engine, documents *DocumentHandler, chat *ChatHandler, history *HistoryHandler) {
	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	r.GET("/chat_history", history.GetChatHistory)
	r.POST("/upload_pdfs", documents.UploadPDFs)
	r.POST("/process_pdf", documents.ProcessPDF)
	r.GET("/get_processed_doc", documents.GetProcessedDoc)
	r.POST("/chat", chat.Chat)
}
