package routes

import (
	ginlog "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"

	"trackiq_agent/internal/controllers"
)

// SetupRouter wires the agent's local control API.
func SetupRouter(api *controllers.API) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(ginlog.SetLogger())

	AuthRoutes(r, api)
	LocationRoutes(r, api)
	StatusRoutes(r, api)
	WebSocketRoutes(r, api)

	return r
}
