package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vudara/aiconfig/internal/apperr"
	"github.com/vudara/aiconfig/internal/ledger"
)

// UsageFrontHandler accepts usage reports from feature-request services.
type UsageFrontHandler struct {
	usage *ledger.Ledger
}

// NewUsageFrontHandler constructs a UsageFrontHandler.
func NewUsageFrontHandler(usage *ledger.Ledger) *UsageFrontHandler {
	return &UsageFrontHandler{usage: usage}
}

// usageReport defines the request body for a usage report.
type usageReport struct {
	UserID       string  `json:"user_id"`
	ProjectID    string  `json:"project_id"`
	SessionID    string  `json:"session_id"`
	ProviderID   uint64  `json:"provider_id"`
	ModelID      uint64  `json:"model_id"`
	CredentialID uint64  `json:"credential_id"`
	TemplateID   *uint64 `json:"template_id"`
	TokensUsed   int     `json:"tokens_used"`
	Cost         int     `json:"cost"`
	ResponseTime int     `json:"response_time"`
	Success      bool    `json:"success"`
	ErrorMessage string  `json:"error_message"`
}

// Report records one completed AI invocation.
func (h *UsageFrontHandler) Report(c *gin.Context) {
	var body usageReport
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	row, errRecord := h.usage.Record(c.Request.Context(), ledger.Entry{
		UserID:       body.UserID,
		ProjectID:    body.ProjectID,
		SessionID:    body.SessionID,
		ProviderID:   body.ProviderID,
		ModelID:      body.ModelID,
		CredentialID: body.CredentialID,
		TemplateID:   body.TemplateID,
		TokensUsed:   body.TokensUsed,
		Cost:         body.Cost,
		ResponseTime: body.ResponseTime,
		Success:      body.Success,
		ErrorMessage: body.ErrorMessage,
	})
	if errRecord != nil {
		switch {
		case errors.Is(errRecord, apperr.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": errRecord.Error()})
		case errors.Is(errRecord, apperr.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": errRecord.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "record usage failed"})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": row.ID})
}
