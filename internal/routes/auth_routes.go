package routes

import (
	"github.com/gin-gonic/gin"

	"trackiq_agent/internal/controllers"
)

func AuthRoutes(r *gin.Engine, api *controllers.API) {
	auth := r.Group("/auth")
	{
		auth.POST("/login", api.Login)
		auth.POST("/logout", api.Logout)
	}
}
