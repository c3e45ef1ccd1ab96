package controller

import (
	"geoatlas/internal/geo/service"
	"geoatlas/pkg/utils/logger"
	"geoatlas/pkg/utils/response"

	"github.com/gin-gonic/gin"
)

// Dependencies wires the controllers to their services.
type Dependencies struct {
	Query    *service.QueryService
	Command  *service.CommandService
	Database Pinger
	Cache    Pinger
	Logger   *logger.Logger
}

type resource interface {
	List(c *gin.Context)
	Names(c *gin.Context)
	GetByName(c *gin.Context)
	Get(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

// RegisterRoutes mounts the geo API under /api/v1 and the health check at /healthz.
func RegisterRoutes(router gin.IRouter, deps Dependencies) {
	api := router.Group("/api/v1")
	mount(api.Group("/continents"), NewContinentController(deps.Query, deps.Command, deps.Logger))
	mount(api.Group("/countries"), NewCountryController(deps.Query, deps.Command, deps.Logger))
	mount(api.Group("/provinces"), NewProvinceController(deps.Query, deps.Command, deps.Logger))
	mount(api.Group("/cities"), NewCityController(deps.Query, deps.Command, deps.Logger))

	health := NewHealthController(deps.Database, deps.Cache, deps.Logger)
	router.GET("/healthz", health.Check)

	if engine, ok := router.(*gin.Engine); ok {
		engine.NoRoute(func(c *gin.Context) {
			response.NotFound(c, "route not found")
		})
	}
}

func mount(group *gin.RouterGroup, r resource) {
	group.GET("", r.List)
	group.GET("/names", r.Names)
	group.GET("/by-name/:name", r.GetByName)
	group.GET("/:id", r.Get)
	group.POST("", r.Create)
	group.PUT("/:id", r.Update)
	group.DELETE("/:id", r.Delete)
}
