package routes

import (
	"github.com/gin-gonic/gin"

	"trackiq_agent/internal/controllers"
)

func WebSocketRoutes(r *gin.Engine, api *controllers.API) {
	wsRoutes := r.Group("/ws")
	{
		wsRoutes.GET("/locations", api.HandleLocationFeed)
	}
}
