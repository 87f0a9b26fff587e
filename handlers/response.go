package handlers

import (
	"github.com/gin-gonic/gin"
)

// abortWithError writes the error envelope shared by all endpoints
func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}
