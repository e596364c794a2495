package app

import (
	"context"
	"fmt"
	"time"

	"topicbrief_backend/database"
	"topicbrief_backend/internal/config"
	"topicbrief_backend/internal/email"
	"topicbrief_backend/internal/handlers"
	"topicbrief_backend/internal/logger"
	"topicbrief_backend/internal/middleware"
	"topicbrief_backend/internal/repositories"
	"topicbrief_backend/internal/routes"
	"topicbrief_backend/internal/services"
	"topicbrief_backend/internal/validator"
	"topicbrief_backend/internal/workers"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Run() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", "error", err)
	}

	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	logger.Info("Connecting to database...")
	gormDB, err := database.Connect(cfg.Database.DSN)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if err := database.AutoMigrate(gormDB); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}
	logger.Info("Migrations applied")

	ginRouter := SetupRouter(cfg, gormDB)

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()
	cleanupWorker := workers.NewCleanupWorker(gormDB, repositories.NewSessionRepository())
	cleanupWorker.Start(workerCtx)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Server starting", "address", address)
	if err := ginRouter.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

// SetupRouter собирает gin.Engine со всеми сервисами и маршрутами.
// Вынесено из Run, чтобы интеграционные тесты могли поднять роутер
// поверх своего соединения с БД.
func SetupRouter(cfg *config.Config, gormDB *gorm.DB) *gin.Engine {
	emailProvider := initEmailProvider(cfg)

	serviceContainer := services.NewServiceContainer(cfg, emailProvider)
	appHandlers := initializeHandlers(cfg, serviceContainer)

	ginRouter := initializeGinRouter(gormDB, cfg, serviceContainer.SessionService)
	routes.RegisterRoutes(ginRouter, appHandlers)

	return ginRouter
}

// initEmailProvider возвращает nil, когда почта не настроена:
// приложение работает в degraded mode без верификации email
func initEmailProvider(cfg *config.Config) email.Provider {
	if !cfg.IsMailConfigured() {
		logger.Warn("SMTP is not configured, email verification disabled")
		return nil
	}

	provider, err := email.NewSMTPProvider(&email.SMTPConfig{
		Host:      cfg.Email.SMTPHost,
		Port:      cfg.Email.SMTPPort,
		Username:  cfg.Email.SMTPUsername,
		Password:  cfg.Email.SMTPPassword,
		FromEmail: cfg.Email.FromEmail,
		FromName:  cfg.Email.FromName,
		BaseURL:   cfg.Email.BaseURL,
	})
	if err != nil {
		logger.Fatal("Failed to initialize SMTP provider", "error", err)
	}
	logger.Info("SMTP provider initialized", "host", cfg.Email.SMTPHost)
	return provider
}

func initializeHandlers(cfg *config.Config, container *services.ServiceContainer) *handlers.AppHandlers {
	customValidator := validator.New()
	baseHandler := handlers.NewBaseHandler(customValidator)

	cookie := handlers.SessionCookie{
		Name:   cfg.Session.CookieName,
		MaxAge: int((time.Duration(cfg.Session.TTLHours) * time.Hour).Seconds()),
		Secure: cfg.Session.Secure,
	}

	appHandlers := &handlers.AppHandlers{
		AuthHandler:    handlers.NewAuthHandler(baseHandler, container.AuthService, container.SessionService, cookie),
		ProfileHandler: handlers.NewProfileHandler(baseHandler, container.UserService, container.AuthService),
		UserHandler:    handlers.NewUserHandler(baseHandler, container.UserService),
		TopicHandler:   handlers.NewTopicHandler(baseHandler, container.TopicService),
		AdminHandler:   handlers.NewAdminHandler(baseHandler, container.SettingService),
	}

	if container.SSOService != nil {
		appHandlers.SSOHandler = handlers.NewSSOHandler(baseHandler, container.SSOService, container.SessionService, cookie)
	}

	return appHandlers
}

func initializeGinRouter(db *gorm.DB, cfg *config.Config, sessionService services.SessionService) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	router.Use(middleware.DBMiddleware(db))
	router.Use(middleware.SessionMiddleware(cfg.Session.CookieName, sessionService))
	return router
}
