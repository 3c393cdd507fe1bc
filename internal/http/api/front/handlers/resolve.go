// Package handlers contains the gin handlers behind the runtime API used
// by feature-request services.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/vudara/aiconfig/internal/models"
	"github.com/vudara/aiconfig/internal/resolver"

	log "github.com/sirupsen/logrus"
)

// ResolveHandler serves configuration resolution for feature invocations.
type ResolveHandler struct {
	resolver *resolver.Resolver
}

// NewResolveHandler constructs a ResolveHandler.
func NewResolveHandler(res *resolver.Resolver) *ResolveHandler {
	return &ResolveHandler{resolver: res}
}

// resolveRequest defines the request body for resolution.
type resolveRequest struct {
	FeatureType string `json:"feature_type"`
	UserID      string `json:"user_id"`
	TeamID      string `json:"team_id"`
	Phase       string `json:"phase"`
}

// Resolve returns the invocation configuration for a feature request, or
// 404 when no configuration is available for the requester.
func (h *ResolveHandler) Resolve(c *gin.Context) {
	var body resolveRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(body.FeatureType) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing feature_type"})
		return
	}

	cfg, errResolve := h.resolver.Resolve(c.Request.Context(), resolver.Request{
		FeatureType: body.FeatureType,
		UserID:      body.UserID,
		TeamID:      body.TeamID,
		Phase:       models.Phase(body.Phase),
	})
	if errResolve != nil {
		log.WithError(errResolve).WithField("feature_type", body.FeatureType).
			Error("resolve request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "resolve failed"})
		return
	}
	if cfg == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no configuration available"})
		return
	}
	c.JSON(http.StatusOK, cfg)
}
