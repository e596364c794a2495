package middleware

import (
	"net/http"

	"topicbrief_backend/internal/logger"
	"topicbrief_backend/internal/models"
	"topicbrief_backend/internal/services"
	"topicbrief_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SessionMiddleware резолвит cookie сессии в снапшот пользователя.
// Без cookie или с мертвой сессией запрос идет дальше анонимным;
// отказ отдают RequireAuth/RequireAdmin на защищенных маршрутах.
func SessionMiddleware(cookieName string, sessionService services.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err != nil || token == "" {
			c.Next()
			return
		}

		dbVal, ok := c.Get(string(contextkeys.DBContextKey))
		if !ok {
			logger.CtxError(c.Request.Context(), "session middleware: db not found in context")
			c.Next()
			return
		}
		db := dbVal.(*gorm.DB)

		snapshot, err := sessionService.Load(db, token)
		if err != nil {
			// Просроченная или отозванная сессия равна отсутствию сессии
			c.Next()
			return
		}

		ctx := logger.WithUserID(c.Request.Context(), snapshot.ID)
		c.Request = c.Request.WithContext(ctx)
		c.Set(contextkeys.SessionUserKey, snapshot)
		c.Set(contextkeys.SessionTokenKey, token)
		c.Next()
	}
}

// RequireAuth пропускает только запросы с живой сессией
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(contextkeys.SessionUserKey); !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Требуется аутентификация"})
			return
		}
		c.Next()
	}
}

// RequireAdmin проверяет роль из снапшота сессии, не из БД:
// роль, измененная админом, доедет до пользователя только
// со следующим логином.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		val, exists := c.Get(contextkeys.SessionUserKey)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Требуется аутентификация"})
			return
		}

		snapshot, ok := val.(*models.UserSnapshot)
		if !ok || snapshot.Role != models.UserRoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Недостаточно прав"})
			return
		}
		c.Next()
	}
}
