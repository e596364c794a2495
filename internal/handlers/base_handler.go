package handlers

import (
	"fmt"

	"topicbrief_backend/internal/logger"
	"topicbrief_backend/internal/models"
	"topicbrief_backend/internal/validator"
	"topicbrief_backend/pkg/apperrors"
	"topicbrief_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type BaseHandler struct {
	validator *validator.Validator
}

func NewBaseHandler(v *validator.Validator) *BaseHandler {
	return &BaseHandler{
		validator: v,
	}
}

// GetDB извлекает *gorm.DB (пул или транзакцию) из gin.Context.
// Вызывается в каждом хендлере, который обращается к сервисам.
func (h *BaseHandler) GetDB(c *gin.Context) *gorm.DB {
	dbKey := string(contextkeys.DBContextKey)

	val, ok := c.Get(dbKey)
	if !ok {
		logger.CtxError(c.Request.Context(), "critical error: db key not found in context", "key", dbKey)
		// Паника уместна: приложение неверно сконфигурировано
		panic("critical error: DBMiddleware did not set the db key")
	}

	db, ok := val.(*gorm.DB)
	if !ok {
		logger.CtxError(c.Request.Context(), "critical error: db in context is not *gorm.DB", "key", dbKey, "type", fmt.Sprintf("%T", val))
		panic("critical error: db in context has incorrect type")
	}

	return db
}

func (h *BaseHandler) BindAndValidate_JSON(c *gin.Context, obj interface{}) bool {
	ctx := c.Request.Context()

	if err := c.ShouldBind(obj); err != nil {
		logger.CtxWithError(ctx, "Failed to bind JSON body", err, "path", c.Request.URL.Path)
		apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid request body: "+err.Error()))
		return false
	}

	if err := h.validator.Validate(obj); err != nil {
		if vErr, ok := err.(*validator.ValidationError); ok {
			logger.CtxWarn(ctx, "Validation failed", "errors", vErr.Errors, "path", c.Request.URL.Path)
			apperrors.HandleError(c, apperrors.ValidationError(vErr.Errors))
		} else {
			logger.CtxWithError(ctx, "Internal validator error", err, "path", c.Request.URL.Path)
			apperrors.HandleError(c, apperrors.InternalError(err))
		}
		return false
	}
	return true
}

func (h *BaseHandler) HandleServiceError(c *gin.Context, err error) {
	ctx := c.Request.Context()

	var appErr *apperrors.AppError
	if apperrors.As(err, &appErr) {
		logger.CtxWarn(ctx, "Service error",
			"error", appErr.Message,
			"details", appErr.Details,
			"path", c.Request.URL.Path,
		)
		apperrors.HandleError(c, appErr)
	} else {
		logger.CtxWithError(ctx, "Internal server error", err, "path", c.Request.URL.Path)
		apperrors.HandleError(c, apperrors.InternalError(err))
	}
}

// CurrentUser возвращает снапшот пользователя текущей сессии.
// На маршрутах за RequireAuth снапшот присутствует всегда.
func (h *BaseHandler) CurrentUser(c *gin.Context) (*models.UserSnapshot, bool) {
	val, exists := c.Get(contextkeys.SessionUserKey)
	if !exists {
		apperrors.HandleError(c, apperrors.NewUnauthorizedError("Требуется аутентификация"))
		return nil, false
	}

	snapshot, ok := val.(*models.UserSnapshot)
	if !ok {
		logger.CtxError(c.Request.Context(), "session user in context has incorrect type", "type", fmt.Sprintf("%T", val))
		apperrors.HandleError(c, apperrors.NewUnauthorizedError("Требуется аутентификация"))
		return nil, false
	}
	return snapshot, true
}

// SessionToken возвращает токен текущей сессии, если он есть
func (h *BaseHandler) SessionToken(c *gin.Context) (string, bool) {
	val, exists := c.Get(contextkeys.SessionTokenKey)
	if !exists {
		return "", false
	}
	token, ok := val.(string)
	return token, ok && token != ""
}
