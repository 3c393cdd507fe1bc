// Package front wires the runtime API consumed by feature-request
// services inside the platform network.
package front

import (
	"github.com/gin-gonic/gin"
	handlers "github.com/vudara/aiconfig/internal/http/api/front/handlers"
	"github.com/vudara/aiconfig/internal/ledger"
	"github.com/vudara/aiconfig/internal/resolver"
)

// RegisterFrontRoutes registers the resolve and usage-report endpoints.
func RegisterFrontRoutes(r *gin.Engine, res *resolver.Resolver, usage *ledger.Ledger) {
	if r == nil {
		return
	}

	resolveHandler := handlers.NewResolveHandler(res)
	r.POST("/v0/resolve", resolveHandler.Resolve)

	usageHandler := handlers.NewUsageFrontHandler(usage)
	r.POST("/v0/usage", usageHandler.Report)
}
