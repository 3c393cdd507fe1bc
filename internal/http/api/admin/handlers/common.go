// Package handlers contains the gin handlers behind the admin API.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vudara/aiconfig/internal/apperr"
)

// respondError maps store errors onto HTTP statuses. Validation failures
// surface their message; anything unexpected gets a generic body.
func respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
