package handlers

import (
	"net/http"

	"topicbrief_backend/internal/middleware"
	"topicbrief_backend/internal/models"
	"topicbrief_backend/internal/services"
	"topicbrief_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	*BaseHandler
	userService services.UserService
	authService services.AuthService
}

func NewProfileHandler(base *BaseHandler, userService services.UserService, authService services.AuthService) *ProfileHandler {
	return &ProfileHandler{
		BaseHandler: base,
		userService: userService,
		authService: authService,
	}
}

func (h *ProfileHandler) RegisterRoutes(rg *gin.RouterGroup) {
	profile := rg.Group("/profile")
	profile.Use(middleware.RequireAuth())
	{
		profile.PATCH("/name", h.UpdateName)
		profile.PATCH("/password", h.ChangePassword)
	}
}

// UpdateName меняет имя и обновляет снапшот в живых сессиях
// самого пользователя
func (h *ProfileHandler) UpdateName(c *gin.Context) {
	snapshot, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	var req dto.UpdateNameRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	user, err := h.userService.UpdateName(db, snapshot.ID, req.FirstName, req.LastName)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	fresh := models.SnapshotFromUser(user)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    fresh,
	})
}

// ChangePassword меняет пароль после проверки текущего.
// Прочие сессии пользователя остаются живыми.
func (h *ProfileHandler) ChangePassword(c *gin.Context) {
	snapshot, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	if err := h.authService.ChangePassword(db, snapshot.ID, req.CurrentPassword, req.NewPassword); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
