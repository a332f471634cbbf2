package routes

import (
	"github.com/gin-gonic/gin"

	"trackiq_agent/internal/controllers"
)

func StatusRoutes(r *gin.Engine, api *controllers.API) {
	r.GET("/status", api.GetStatus)
	r.POST("/sync", api.SyncNow)
}
