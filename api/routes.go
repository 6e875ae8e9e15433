package api

import (
	"github.com/gin-gonic/gin"

	"github.com/river2spring/monad-agent-dating-app/api/handlers"
)

// SetupRoutes initializes all API endpoints
func SetupRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		api.POST("/agents", handlers.RegisterAgent)
		api.GET("/agents", handlers.GetAgents)
		api.GET("/agents/:agentID", handlers.GetAgent)
		api.GET("/bonds", handlers.GetBonds)
		api.GET("/bonds/:bondID", handlers.GetBond)
		api.GET("/history", handlers.GetHistory)
		api.GET("/stats", handlers.GetStats)
		api.POST("/rounds", handlers.RunRound)
	}
	router.GET("/ws", handlers.HandleWebSocket)
}
