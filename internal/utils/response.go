package utils

import "github.com/gin-gonic/gin"

// Error writes the standard error body: {"error": "<message>"}.
// Success responses carry the record itself, not an envelope, so only the
// error shape needs a helper.
func Error(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"error": message})
}
