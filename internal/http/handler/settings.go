package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/youngsunson/updatev2/internal/http/dto"
	"github.com/youngsunson/updatev2/internal/service"
)

type SettingsHandler struct {
	settings service.SettingsService
}

func NewSettingsHandler(settings service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

func (h *SettingsHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, dto.ToSettingsResponse(h.settings.Get(c.Request.Context())))
}

func (h *SettingsHandler) Update(c *gin.Context) {
	var req dto.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	saved, err := h.settings.Update(c.Request.Context(), req.Settings())
	if err != nil {
		writeError(c, "update settings", err)
		return
	}
	c.JSON(http.StatusOK, dto.ToSettingsResponse(saved))
}
