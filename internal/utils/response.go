package utils

import "github.com/gin-gonic/gin"

// ErrorResponse writes a JSON {"error": ...} body with the given status.
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{"error": message})
}

// MessageResponse writes a JSON {"message": ...} body with the given
// status.
func MessageResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{"message": message})
}
