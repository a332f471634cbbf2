package routes

import (
	"github.com/gin-gonic/gin"

	"trackiq_agent/internal/controllers"
)

func LocationRoutes(r *gin.Engine, api *controllers.API) {
	locations := r.Group("/locations")
	{
		locations.GET("", api.ListLocations)
		locations.GET("/export", api.ExportGeoJSON)
		locations.POST("/reset", api.ResetLocations)
	}
}
