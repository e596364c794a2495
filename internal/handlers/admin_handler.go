package handlers

import (
	"net/http"

	"topicbrief_backend/internal/middleware"
	"topicbrief_backend/internal/services"
	"topicbrief_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

// AdminHandler - системные настройки, доступные только администраторам
type AdminHandler struct {
	*BaseHandler
	settingService services.SettingService
}

func NewAdminHandler(base *BaseHandler, settingService services.SettingService) *AdminHandler {
	return &AdminHandler{
		BaseHandler:    base,
		settingService: settingService,
	}
}

func (h *AdminHandler) RegisterRoutes(rg *gin.RouterGroup) {
	admin := rg.Group("/admin")
	admin.Use(middleware.RequireAuth(), middleware.RequireAdmin())
	{
		admin.GET("/settings", h.ListSettings)
		admin.PUT("/settings/:key", h.SetSetting)
	}
}

func (h *AdminHandler) ListSettings(c *gin.Context) {
	db := h.GetDB(c)

	settings, err := h.settingService.List(db)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, settings)
}

func (h *AdminHandler) SetSetting(c *gin.Context) {
	var req dto.SetSettingRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	setting, err := h.settingService.Set(db, c.Param("key"), req.Value)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"setting": setting,
	})
}
