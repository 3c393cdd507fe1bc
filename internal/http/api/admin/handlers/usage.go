package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vudara/aiconfig/internal/ledger"
)

// UsageHandler serves usage reporting endpoints.
type UsageHandler struct {
	usage *ledger.Ledger
}

// NewUsageHandler constructs a UsageHandler.
func NewUsageHandler(usage *ledger.Ledger) *UsageHandler {
	return &UsageHandler{usage: usage}
}

// Stats returns aggregate usage for a user over an optional RFC 3339 window.
func (h *UsageHandler) Stats(c *gin.Context) {
	userID := strings.TrimSpace(c.Query("user_id"))
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing user_id"})
		return
	}

	from, errFrom := parseTimeQuery(c.Query("from"))
	if errFrom != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from timestamp"})
		return
	}
	to, errTo := parseTimeQuery(c.Query("to"))
	if errTo != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to timestamp"})
		return
	}

	summary, errAggregate := h.usage.Aggregate(c.Request.Context(), userID, from, to)
	if errAggregate != nil {
		respondError(c, errAggregate, "aggregate usage failed")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// List returns a user's most recent usage log rows.
func (h *UsageHandler) List(c *gin.Context) {
	userID := strings.TrimSpace(c.Query("user_id"))
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing user_id"})
		return
	}
	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		parsed, errParse := strconv.Atoi(raw)
		if errParse != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	rows, errList := h.usage.ListRecent(c.Request.Context(), userID, limit)
	if errList != nil {
		respondError(c, errList, "list usage failed")
		return
	}
	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		out = append(out, gin.H{
			"id":            row.ID,
			"user_id":       row.UserID,
			"project_id":    row.ProjectID,
			"session_id":    row.SessionID,
			"provider_id":   row.ProviderID,
			"model_id":      row.ModelID,
			"credential_id": row.CredentialID,
			"template_id":   row.TemplateID,
			"tokens_used":   row.TokensUsed,
			"cost":          row.Cost,
			"response_time": row.ResponseTime,
			"success":       row.Success,
			"error_message": row.ErrorMessage,
			"created_at":    row.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"usage": out})
}

func parseTimeQuery(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parsed, errParse := time.Parse(time.RFC3339, raw)
	if errParse != nil {
		return nil, errParse
	}
	return &parsed, nil
}
