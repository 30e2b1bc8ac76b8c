package routes

import (
	"github.com/SuperB747/emotion-notepad-sub000/middleware"
	"github.com/SuperB747/emotion-notepad-sub000/services"

	"github.com/gin-gonic/gin"
)

func RegisterWebSocketRoutes(router *gin.Engine, authService services.AuthServiceInterface, wsService services.WebSocketServiceInterface) {
	router.GET("/api/v1/ws",
		middleware.WebSocketAuthMiddleware(authService),
		func(c *gin.Context) { wsService.HandleConnection(c) },
	)
}
