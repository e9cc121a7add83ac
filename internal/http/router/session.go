package router

import (
	"github.com/gin-gonic/gin"

	"github.com/youngsunson/updatev2/internal/http/handler"
)

func SessionRouter(rg *gin.RouterGroup, h *handler.SessionHandler) {
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.DELETE("/:id", h.Delete)
	rg.PUT("/:id/document", h.UpdateDocument)
	rg.POST("/:id/check", h.Check)
	rg.POST("/:id/accept", h.Accept)
	rg.POST("/:id/dismiss", h.Dismiss)
	rg.GET("/:id/runs", h.Runs)
}
