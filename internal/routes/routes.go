package routes

import (
	"net/http"

	"topicbrief_backend/internal/handlers"
	"topicbrief_backend/internal/logger"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все HTTP маршруты приложения.
// Маршруты монтируются в корень: фронтенд ходит по тем же путям.
//
// Парольная и SSO модели входа взаимоисключимы: когда SSOHandler
// присутствует, маршруты регистрации/логина по паролю не поднимаются.
func RegisterRoutes(ginRouter *gin.Engine, appHandlers *handlers.AppHandlers) {
	root := ginRouter.Group("")
	{
		if appHandlers.SSOHandler != nil {
			appHandlers.SSOHandler.RegisterRoutes(root)
			logger.Info("SSO login routes registered, password auth disabled")
		} else {
			appHandlers.AuthHandler.RegisterRoutes(root)
		}
		appHandlers.AuthHandler.RegisterSessionRoutes(root)

		appHandlers.ProfileHandler.RegisterRoutes(root)
		appHandlers.UserHandler.RegisterRoutes(root)
		appHandlers.TopicHandler.RegisterRoutes(root)
		appHandlers.AdminHandler.RegisterRoutes(root)
	}

	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
