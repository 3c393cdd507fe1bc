package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/vudara/aiconfig/internal/catalog"
	"github.com/vudara/aiconfig/internal/models"
)

// ProviderHandler manages the provider and model catalog endpoints.
type ProviderHandler struct {
	catalog *catalog.Store
}

// NewProviderHandler constructs a ProviderHandler.
func NewProviderHandler(cat *catalog.Store) *ProviderHandler {
	return &ProviderHandler{catalog: cat}
}

// createProviderRequest defines the request body for provider creation.
type createProviderRequest struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	BaseURL     string `json:"base_url"`
}

// Create registers a new provider.
func (h *ProviderHandler) Create(c *gin.Context) {
	var body createProviderRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	provider, errCreate := h.catalog.CreateProvider(c.Request.Context(), catalog.CreateProviderParams{
		Name:        body.Name,
		DisplayName: body.DisplayName,
		BaseURL:     body.BaseURL,
	})
	if errCreate != nil {
		respondError(c, errCreate, "create provider failed")
		return
	}
	c.JSON(http.StatusCreated, providerJSON(provider))
}

// List returns the active providers.
func (h *ProviderHandler) List(c *gin.Context) {
	providers, errList := h.catalog.ListActiveProviders(c.Request.Context())
	if errList != nil {
		respondError(c, errList, "list providers failed")
		return
	}
	out := make([]gin.H, 0, len(providers))
	for i := range providers {
		out = append(out, providerJSON(&providers[i]))
	}
	c.JSON(http.StatusOK, gin.H{"providers": out})
}

// Disable deactivates a provider; resolution stops using it immediately.
func (h *ProviderHandler) Disable(c *gin.Context) {
	id, errParse := strconv.ParseUint(c.Param("id"), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if errDisable := h.catalog.DeactivateProvider(c.Request.Context(), id); errDisable != nil {
		respondError(c, errDisable, "disable provider failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// createModelRequest defines the request body for model creation.
type createModelRequest struct {
	Name              string `json:"name"`
	DisplayName       string `json:"display_name"`
	MaxTokens         int    `json:"max_tokens"`
	SupportsStreaming bool   `json:"supports_streaming"`
	CostPer1kTokens   int    `json:"cost_per_1k_tokens"`
}

// CreateModel registers a model under a provider.
func (h *ProviderHandler) CreateModel(c *gin.Context) {
	providerID, errParse := strconv.ParseUint(c.Param("id"), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid provider id"})
		return
	}
	var body createModelRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	model, errCreate := h.catalog.CreateModel(c.Request.Context(), catalog.CreateModelParams{
		ProviderID:        providerID,
		Name:              body.Name,
		DisplayName:       body.DisplayName,
		MaxTokens:         body.MaxTokens,
		SupportsStreaming: body.SupportsStreaming,
		CostPer1kTokens:   body.CostPer1kTokens,
	})
	if errCreate != nil {
		respondError(c, errCreate, "create model failed")
		return
	}
	c.JSON(http.StatusCreated, modelJSON(model))
}

// ListModels returns a provider's active models.
func (h *ProviderHandler) ListModels(c *gin.Context) {
	providerID, errParse := strconv.ParseUint(c.Param("id"), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid provider id"})
		return
	}
	rows, errList := h.catalog.ListActiveModels(c.Request.Context(), providerID)
	if errList != nil {
		respondError(c, errList, "list models failed")
		return
	}
	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		out = append(out, modelJSON(&rows[i]))
	}
	c.JSON(http.StatusOK, gin.H{"models": out})
}

// DisableModel deactivates a model.
func (h *ProviderHandler) DisableModel(c *gin.Context) {
	id, errParse := strconv.ParseUint(c.Param("id"), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if errDisable := h.catalog.DeactivateModel(c.Request.Context(), id); errDisable != nil {
		respondError(c, errDisable, "disable model failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func providerJSON(provider *models.Provider) gin.H {
	return gin.H{
		"id":           provider.ID,
		"name":         provider.Name,
		"display_name": provider.DisplayName,
		"base_url":     provider.BaseURL,
		"is_active":    provider.IsActive,
		"created_at":   provider.CreatedAt,
		"updated_at":   provider.UpdatedAt,
	}
}

func modelJSON(model *models.Model) gin.H {
	return gin.H{
		"id":                 model.ID,
		"provider_id":        model.ProviderID,
		"name":               model.Name,
		"display_name":       model.DisplayName,
		"max_tokens":         model.MaxTokens,
		"supports_streaming": model.SupportsStreaming,
		"cost_per_1k_tokens": model.CostPer1kTokens,
		"is_active":          model.IsActive,
		"created_at":         model.CreatedAt,
	}
}
