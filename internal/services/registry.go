package services

import (
	"time"

	"topicbrief_backend/internal/config"
	"topicbrief_backend/internal/email"
	"topicbrief_backend/internal/repositories"
)

// ServiceContainer содержит все сервисы приложения.
type ServiceContainer struct {
	AuthService    AuthService
	SessionService SessionService
	UserService    UserService
	TopicService   TopicService
	SettingService SettingService
	// SSOService == nil, когда SSO не сконфигурирован
	SSOService    SSOService
	EmailProvider email.Provider
}

// NewServiceContainer собирает сервисы поверх stateless-репозиториев.
// emailProvider может быть nil (degraded mode без почты).
func NewServiceContainer(cfg *config.Config, emailProvider email.Provider) *ServiceContainer {
	userRepo := repositories.NewUserRepository()
	tokenRepo := repositories.NewTokenRepository()
	sessionRepo := repositories.NewSessionRepository()
	domainRepo := repositories.NewAllowedDomainRepository()
	topicRepo := repositories.NewTopicRepository()
	settingRepo := repositories.NewSettingRepository()

	sessionService := NewSessionService(sessionRepo, time.Duration(cfg.Session.TTLHours)*time.Hour)

	container := &ServiceContainer{
		AuthService:    NewAuthService(userRepo, tokenRepo, emailProvider, cfg.Admin.BootstrapEmail),
		SessionService: sessionService,
		UserService:    NewUserService(userRepo, sessionService),
		TopicService:   NewTopicService(topicRepo),
		SettingService: NewSettingService(settingRepo),
		EmailProvider:  emailProvider,
	}

	if cfg.IsSSOConfigured() {
		container.SSOService = NewSSOService(
			cfg.SSO.ClientID,
			cfg.SSO.ClientSecret,
			cfg.SSO.TenantID,
			cfg.SSO.RedirectURL,
			userRepo,
			domainRepo,
			cfg.Admin.BootstrapEmail,
		)
	}

	return container
}
