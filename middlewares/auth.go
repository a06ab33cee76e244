package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"rsvpapp/utils"
)

// Authenticate verifies the request's JWT and stores userId and role in the
// context. "Bearer " prefixes are accepted but not required.
func Authenticate(c *gin.Context) {
	token := c.GetHeader("Authorization")
	token = strings.TrimPrefix(token, "Bearer ")
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error":   "unauthorized",
			"message": "Authentication required.",
		})
		return
	}

	userID, role, err := utils.VerifyToken(token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error":   "unauthorized",
			"message": "Invalid or expired token.",
		})
		return
	}

	c.Set("userId", userID)
	c.Set("role", role)
	c.Next()
}
