package handlers

// AppHandlers содержит все хэндлеры приложения.
type AppHandlers struct {
	AuthHandler    *AuthHandler
	ProfileHandler *ProfileHandler
	UserHandler    *UserHandler
	TopicHandler   *TopicHandler
	AdminHandler   *AdminHandler
	// SSOHandler == nil, когда SSO не сконфигурирован
	SSOHandler *SSOHandler
}
