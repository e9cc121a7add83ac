package router

import (
	"github.com/gin-gonic/gin"

	"github.com/youngsunson/updatev2/internal/http/handler"
)

func SettingsRouter(rg *gin.RouterGroup, h *handler.SettingsHandler) {
	rg.GET("", h.Get)
	rg.PUT("", h.Update)
}
