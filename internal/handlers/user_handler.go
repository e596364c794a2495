package handlers

import (
	"net/http"

	"topicbrief_backend/internal/middleware"
	"topicbrief_backend/internal/services"
	"topicbrief_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

// UserHandler - админское управление пользователями
type UserHandler struct {
	*BaseHandler
	userService services.UserService
}

func NewUserHandler(base *BaseHandler, userService services.UserService) *UserHandler {
	return &UserHandler{
		BaseHandler: base,
		userService: userService,
	}
}

func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	users.Use(middleware.RequireAuth(), middleware.RequireAdmin())
	{
		users.GET("", h.ListUsers)
		users.PATCH("/:id/role", h.SetRole)
		users.DELETE("/:id", h.DeleteUser)
	}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	db := h.GetDB(c)

	users, err := h.userService.ListUsers(db)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

// SetRole меняет роль пользователя. Живая сессия цели при этом
// сохраняет прежнюю роль до следующего логина.
func (h *UserHandler) SetRole(c *gin.Context) {
	snapshot, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	var req dto.SetRoleRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	if err := h.userService.SetRole(db, snapshot.ID, c.Param("id"), req.Role); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	snapshot, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	db := h.GetDB(c)

	if err := h.userService.DeleteUser(db, snapshot.ID, c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
