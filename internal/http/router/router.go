package router

import (
	"github.com/gin-gonic/gin"

	"github.com/youngsunson/updatev2/internal/http/handler"
	"github.com/youngsunson/updatev2/internal/service"
)

func SetupRoutes(router *gin.Engine, services *service.Services) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		sessionHandler := handler.NewSessionHandler(services.Sessions())
		SessionRouter(v1.Group("/sessions"), sessionHandler)

		settingsHandler := handler.NewSettingsHandler(services.Settings())
		SettingsRouter(v1.Group("/settings"), settingsHandler)
	}
}
