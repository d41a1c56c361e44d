package http

import (
	"github.com/gin-gonic/gin"

	"github.com/partbridge/partbridge/internal/database"
	"github.com/partbridge/partbridge/internal/database/runs"
)

// RouterConfig bundles the router dependencies, keeping construction
// testable without the full application wiring.
type RouterConfig struct {
	Pipeline        PipelineService
	Runs            *runs.Repository
	DB              *database.Database
	Version         string
	DefaultCurrency string
	DefaultCountry  string
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	healthController := NewHealthController(cfg.DB, cfg.Version, cfg.DefaultCurrency, cfg.DefaultCountry)
	importerController := NewImporterController(cfg.Pipeline)
	runsController := NewRunsController(cfg.Runs)

	api := router.Group("/api")
	api.GET("/health", healthController.Status)
	api.POST("/preview", importerController.Preview)
	api.POST("/import", importerController.Import)
	api.GET("/runs", runsController.List)

	return router
}
