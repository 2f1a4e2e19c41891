package v1

import (
	"github.com/gin-gonic/gin"
)

// SampleRouteHandler defines the interface for the sample inventory handler.
type SampleRouteHandler interface {
	ListSampleKinds(c *gin.Context)
	GetSample(c *gin.Context)
	CreateSample(c *gin.Context)
	ClearTray(c *gin.Context)
}

// HealthRouteHandler defines the interface for probe handlers.
type HealthRouteHandler interface {
	Live(c *gin.Context)
	Ready(c *gin.Context)
}

// RegisterSampleRoutes registers the inventory routes on an API group.
//
// Usage:
//
//	repo, _ := cooling_repo.NewSampleRepo(txManager)
//	RegisterSampleRoutes(router.Group("/api/v1"), handlers.NewSampleHandler(repo))
func RegisterSampleRoutes(group *gin.RouterGroup, handler SampleRouteHandler) {
	group.GET("/sample-kinds", handler.ListSampleKinds)
	group.GET("/samples/:id", handler.GetSample)
	group.POST("/samples", handler.CreateSample)
	group.DELETE("/trays/:id/samples", handler.ClearTray)
}

// RegisterHealthRoutes registers liveness and readiness probes.
func RegisterHealthRoutes(group *gin.RouterGroup, handler HealthRouteHandler) {
	group.GET("/live", handler.Live)
	group.GET("/ready", handler.Ready)
}
