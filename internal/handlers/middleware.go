package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const authUserKey = "userId"

// userIdMiddleware guards the versioned API: every control and journal route
// requires a valid Bearer token, whatever device the operator connects from.
// On success the user id is stored in the request context under authUserKey.
func (h *Handler) userIdMiddleware(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "missing Authorization header",
		})
		return
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid Authorization header format",
		})
		return
	}

	userId, err := h.services.ParseToken(parts[1])
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid or expired token",
		})
		return
	}

	c.Set(authUserKey, userId)
	c.Next()
}
