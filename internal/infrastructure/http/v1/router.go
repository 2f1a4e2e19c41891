// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"coolstore/internal/domain/cooling"
	"coolstore/internal/infrastructure/http/v1/handlers"
	"coolstore/internal/infrastructure/http/v1/middleware"
	"coolstore/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Repository serves the inventory endpoints
	Repository cooling.Repository

	// Database is pinged by the readiness probe
	Database handlers.Pinger

	// Logger for request logging
	Logger *logger.Logger

	// Development enables gin debug mode
	Development bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Development {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	RegisterHealthRoutes(router.Group("/health"), handlers.NewHealthHandler(cfg.Database))
	RegisterSampleRoutes(router.Group("/api/v1"), handlers.NewSampleHandler(cfg.Repository))

	return router
}
