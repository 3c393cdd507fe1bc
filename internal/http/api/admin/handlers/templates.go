package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/vudara/aiconfig/internal/models"
	"github.com/vudara/aiconfig/internal/promptstore"
	"github.com/vudara/aiconfig/internal/scope"
	"gorm.io/datatypes"
)

// TemplateHandler manages prompt template endpoints.
type TemplateHandler struct {
	templates *promptstore.Store
}

// NewTemplateHandler constructs a TemplateHandler.
func NewTemplateHandler(templates *promptstore.Store) *TemplateHandler {
	return &TemplateHandler{templates: templates}
}

// createTemplateRequest defines the request body for template creation.
type createTemplateRequest struct {
	Name               string          `json:"name"`
	Description        string          `json:"description"`
	FeatureType        string          `json:"feature_type"`
	Phase              string          `json:"phase"`
	SystemPrompt       string          `json:"system_prompt"`
	UserPromptTemplate string          `json:"user_prompt_template"`
	ModelConfig        json.RawMessage `json:"model_config"`
	ScopeType          string          `json:"scope_type"`
	ScopeID            string          `json:"scope_id"`
	IsDefault          bool            `json:"is_default"`
}

// Create persists a new prompt template.
func (h *TemplateHandler) Create(c *gin.Context) {
	var body createTemplateRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	sc, errScope := scope.Parse(body.ScopeType, body.ScopeID)
	if errScope != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errScope.Error()})
		return
	}

	template, errCreate := h.templates.Create(c.Request.Context(), promptstore.CreateParams{
		Name:               body.Name,
		Description:        body.Description,
		FeatureType:        body.FeatureType,
		Phase:              models.Phase(body.Phase),
		SystemPrompt:       body.SystemPrompt,
		UserPromptTemplate: body.UserPromptTemplate,
		ModelConfig:        datatypes.JSON(body.ModelConfig),
		Scope:              sc,
		IsDefault:          body.IsDefault,
		CreatedBy:          adminActor(c),
	})
	if errCreate != nil {
		respondError(c, errCreate, "create template failed")
		return
	}
	c.JSON(http.StatusCreated, templateJSON(template))
}

// List returns active templates for a phase and scope, newest first.
func (h *TemplateHandler) List(c *gin.Context) {
	sc, errScope := scope.Parse(c.Query("scope_type"), c.Query("scope_id"))
	if errScope != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errScope.Error()})
		return
	}
	phase := models.Phase(c.Query("phase"))
	if phase != "" && !models.ValidPhase(phase) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown phase"})
		return
	}
	rows, errList := h.templates.ListForPhase(c.Request.Context(), phase, sc)
	if errList != nil {
		respondError(c, errList, "list templates failed")
		return
	}
	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		out = append(out, templateJSON(&rows[i]))
	}
	c.JSON(http.StatusOK, gin.H{"templates": out})
}

// SetDefault makes a template the default for its feature type and scope.
func (h *TemplateHandler) SetDefault(c *gin.Context) {
	id, errParse := strconv.ParseUint(c.Param("id"), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if errSet := h.templates.SetDefault(c.Request.Context(), id); errSet != nil {
		respondError(c, errSet, "set default failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Disable retires a template from listings and resolution.
func (h *TemplateHandler) Disable(c *gin.Context) {
	id, errParse := strconv.ParseUint(c.Param("id"), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if errDisable := h.templates.Deactivate(c.Request.Context(), id); errDisable != nil {
		respondError(c, errDisable, "disable template failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func templateJSON(template *models.PromptTemplate) gin.H {
	return gin.H{
		"id":                   template.ID,
		"name":                 template.Name,
		"description":          template.Description,
		"feature_type":         template.FeatureType,
		"phase":                template.Phase,
		"system_prompt":        template.SystemPrompt,
		"user_prompt_template": template.UserPromptTemplate,
		"model_config":         json.RawMessage(template.ModelConfig),
		"scope_type":           template.ScopeType,
		"scope_id":             template.ScopeID,
		"is_default":           template.IsDefault,
		"is_active":            template.IsActive,
		"created_by":           template.CreatedBy,
		"created_at":           template.CreatedAt,
	}
}
