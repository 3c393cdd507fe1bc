// Package admin wires the authenticated administration API.
package admin

import (
	"github.com/gin-gonic/gin"
	"github.com/vudara/aiconfig/internal/auth"
	"github.com/vudara/aiconfig/internal/catalog"
	"github.com/vudara/aiconfig/internal/config"
	"github.com/vudara/aiconfig/internal/credstore"
	handlers "github.com/vudara/aiconfig/internal/http/api/admin/handlers"
	"github.com/vudara/aiconfig/internal/ledger"
	"github.com/vudara/aiconfig/internal/promptstore"
	"gorm.io/gorm"
)

// Dependencies carries the stores the admin API operates on.
type Dependencies struct {
	DB          *gorm.DB
	JWT         config.JWTConfig
	Catalog     *catalog.Store
	Credentials *credstore.Store
	Templates   *promptstore.Store
	Usage       *ledger.Ledger
}

// RegisterAdminRoutes registers admin routes, middleware, and handlers.
func RegisterAdminRoutes(r *gin.Engine, deps Dependencies) {
	if r == nil || deps.DB == nil {
		return
	}

	healthHandler := handlers.NewHealthHandler(deps.DB)
	r.GET("/healthz", healthHandler.Healthz)

	adminGroup := r.Group("/v0/admin")

	authHandler := handlers.NewAuthHandler(deps.DB, deps.JWT)
	adminGroup.POST("/login", authHandler.Login)

	authed := adminGroup.Group("")
	authed.Use(auth.AdminMiddleware(deps.DB, deps.JWT))

	providerHandler := handlers.NewProviderHandler(deps.Catalog)
	authed.POST("/providers", providerHandler.Create)
	authed.GET("/providers", providerHandler.List)
	authed.POST("/providers/:id/disable", providerHandler.Disable)
	authed.POST("/providers/:id/models", providerHandler.CreateModel)
	authed.GET("/providers/:id/models", providerHandler.ListModels)
	authed.POST("/models/:id/disable", providerHandler.DisableModel)

	credentialHandler := handlers.NewCredentialHandler(deps.Credentials)
	authed.POST("/credentials", credentialHandler.Create)
	authed.GET("/credentials", credentialHandler.List)
	authed.POST("/credentials/:id/default", credentialHandler.SetDefault)
	authed.POST("/credentials/:id/disable", credentialHandler.Disable)

	templateHandler := handlers.NewTemplateHandler(deps.Templates)
	authed.POST("/templates", templateHandler.Create)
	authed.GET("/templates", templateHandler.List)
	authed.POST("/templates/:id/default", templateHandler.SetDefault)
	authed.POST("/templates/:id/disable", templateHandler.Disable)

	usageHandler := handlers.NewUsageHandler(deps.Usage)
	authed.GET("/usage", usageHandler.List)
	authed.GET("/usage/stats", usageHandler.Stats)

	adminHandler := handlers.NewAdminHandler(deps.DB)
	authed.POST("/admins", adminHandler.Create)
	authed.GET("/admins", adminHandler.List)
	authed.PUT("/admins/:id/password", adminHandler.ChangePassword)
	authed.POST("/admins/:id/disable", adminHandler.Disable)
	authed.POST("/admins/:id/enable", adminHandler.Enable)
}
