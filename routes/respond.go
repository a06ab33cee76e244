package routes

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"rsvpapp/models"
)

// respondError maps the error taxonomy onto HTTP statuses with a
// machine-readable kind. Storage failures leak no internal detail.
func respondError(c *gin.Context, err error) {
	var vErr *models.ValidationError
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": vErr.Error()})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "Resource not found."})
	case errors.Is(err, models.ErrInvalidState):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_state", "message": "Event is not active."})
	case errors.Is(err, models.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden", "message": "Not authorized to perform this action."})
	case errors.Is(err, models.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": "conflict", "message": "Username or email already taken."})
	case errors.Is(err, models.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "Invalid credentials."})
	default:
		log.Printf("request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error", "message": "Internal server error."})
	}
}

func respondBadJSON(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": "Could not parse request data."})
}

// pageParams reads ?page and ?limit, clamped to sane bounds.
func pageParams(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

// idParam parses a positive integer path parameter.
func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": "Invalid " + name + "."})
		return 0, false
	}
	return id, true
}
