package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/vudara/aiconfig/internal/auth"
	"github.com/vudara/aiconfig/internal/credstore"
	"github.com/vudara/aiconfig/internal/models"
	"github.com/vudara/aiconfig/internal/scope"
)

// CredentialHandler manages provider credential endpoints. Secrets go in
// on create and never come back out; responses carry metadata only.
type CredentialHandler struct {
	credentials *credstore.Store
}

// NewCredentialHandler constructs a CredentialHandler.
func NewCredentialHandler(credentials *credstore.Store) *CredentialHandler {
	return &CredentialHandler{credentials: credentials}
}

// createCredentialRequest defines the request body for credential creation.
type createCredentialRequest struct {
	ProviderID uint64 `json:"provider_id"`
	ScopeType  string `json:"scope_type"`
	ScopeID    string `json:"scope_id"`
	KeyName    string `json:"key_name"`
	Secret     string `json:"secret"`
	IsDefault  bool   `json:"is_default"`
}

// Create stores a new encrypted credential. Rotation is create-new, not
// update-in-place.
func (h *CredentialHandler) Create(c *gin.Context) {
	var body createCredentialRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	sc, errScope := scope.Parse(body.ScopeType, body.ScopeID)
	if errScope != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errScope.Error()})
		return
	}

	credential, errCreate := h.credentials.Create(c.Request.Context(), credstore.CreateParams{
		ProviderID: body.ProviderID,
		Scope:      sc,
		KeyName:    body.KeyName,
		Secret:     body.Secret,
		IsDefault:  body.IsDefault,
		CreatedBy:  adminActor(c),
	})
	if errCreate != nil {
		respondError(c, errCreate, "create credential failed")
		return
	}
	c.JSON(http.StatusCreated, credentialJSON(credential))
}

// List returns active credentials for a scope, newest first.
func (h *CredentialHandler) List(c *gin.Context) {
	sc, errScope := scope.Parse(c.Query("scope_type"), c.Query("scope_id"))
	if errScope != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errScope.Error()})
		return
	}
	rows, errList := h.credentials.ListActive(c.Request.Context(), sc)
	if errList != nil {
		respondError(c, errList, "list credentials failed")
		return
	}
	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		out = append(out, credentialJSON(&rows[i]))
	}
	c.JSON(http.StatusOK, gin.H{"credentials": out})
}

// SetDefault makes a credential the default within its provider and scope.
func (h *CredentialHandler) SetDefault(c *gin.Context) {
	id, errParse := strconv.ParseUint(c.Param("id"), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if errSet := h.credentials.SetDefault(c.Request.Context(), id); errSet != nil {
		respondError(c, errSet, "set default failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Disable revokes a credential; it disappears from listings and resolution.
func (h *CredentialHandler) Disable(c *gin.Context) {
	id, errParse := strconv.ParseUint(c.Param("id"), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if errDisable := h.credentials.Deactivate(c.Request.Context(), id); errDisable != nil {
		respondError(c, errDisable, "disable credential failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func credentialJSON(credential *models.Credential) gin.H {
	return gin.H{
		"id":           credential.ID,
		"provider_id":  credential.ProviderID,
		"scope_type":   credential.ScopeType,
		"scope_id":     credential.ScopeID,
		"key_name":     credential.KeyName,
		"is_default":   credential.IsDefault,
		"is_active":    credential.IsActive,
		"usage_count":  credential.UsageCount,
		"last_used_at": credential.LastUsedAt,
		"created_by":   credential.CreatedBy,
		"created_at":   credential.CreatedAt,
	}
}

// adminActor names the authenticated admin for audit fields.
func adminActor(c *gin.Context) string {
	if id := c.GetUint64(auth.ContextAdminID); id != 0 {
		return "admin:" + strconv.FormatUint(id, 10)
	}
	return "admin"
}
