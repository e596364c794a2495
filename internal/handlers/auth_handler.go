package handlers

import (
	"net/http"
	"net/url"

	"topicbrief_backend/internal/middleware"
	"topicbrief_backend/internal/services"
	"topicbrief_backend/internal/services/dto"
	"topicbrief_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// SessionCookie - параметры cookie сессии
type SessionCookie struct {
	Name   string
	MaxAge int
	Secure bool
}

type AuthHandler struct {
	*BaseHandler
	authService    services.AuthService
	sessionService services.SessionService
	cookie         SessionCookie
}

func NewAuthHandler(base *BaseHandler, authService services.AuthService, sessionService services.SessionService, cookie SessionCookie) *AuthHandler {
	return &AuthHandler{
		BaseHandler:    base,
		authService:    authService,
		sessionService: sessionService,
		cookie:         cookie,
	}
}

// RegisterRoutes регистрирует маршруты парольной модели входа.
// В режиме SSO эти маршруты не поднимаются.
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/register", h.Register)
	rg.GET("/verify-email", h.VerifyEmail)
	rg.POST("/login", h.Login)
	rg.POST("/forgot-password", h.ForgotPassword)
	rg.GET("/reset-password/verify", h.VerifyResetToken)
	rg.POST("/reset-password", h.ResetPassword)
}

// RegisterSessionRoutes регистрирует маршруты, общие для обеих
// моделей входа
func (h *AuthHandler) RegisterSessionRoutes(rg *gin.RouterGroup) {
	authed := rg.Group("")
	authed.Use(middleware.RequireAuth())
	{
		authed.POST("/logout", h.Logout)
		authed.GET("/me", h.Me)
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	if err := h.authService.Register(db, &req); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Регистрация прошла успешно. Проверьте почту для подтверждения аккаунта.",
	})
}

// VerifyEmail подтверждает email по ссылке из письма и уводит
// пользователя на страницу логина
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.Redirect(http.StatusFound, "/login?verified=false&error="+url.QueryEscape("Отсутствует токен"))
		return
	}

	db := h.GetDB(c)

	if err := h.authService.VerifyEmailToken(db, token); err != nil {
		message := "Не удалось подтвердить email"
		if appErr, ok := apperrors.AsAppError(err); ok {
			message = appErr.Message
		}
		c.Redirect(http.StatusFound, "/login?verified=false&error="+url.QueryEscape(message))
		return
	}

	c.Redirect(http.StatusFound, "/login?verified=true")
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	snapshot, err := h.authService.Login(db, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	token, err := h.sessionService.Create(db, snapshot)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.setSessionCookie(c, token)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    snapshot,
	})
}

// Logout уничтожает сессию и стирает cookie
func (h *AuthHandler) Logout(c *gin.Context) {
	db := h.GetDB(c)

	if token, ok := h.SessionToken(c); ok {
		if err := h.sessionService.Destroy(db, token); err != nil {
			h.HandleServiceError(c, err)
			return
		}
	}

	h.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Me возвращает снапшот пользователя текущей сессии
func (h *AuthHandler) Me(c *gin.Context) {
	snapshot, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// ForgotPassword всегда отвечает одинаково: существование аккаунта
// по ответу не определить
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	if err := h.authService.RequestPasswordReset(db, req.Email); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Если аккаунт существует, письмо со ссылкой для сброса пароля отправлено.",
	})
}

// VerifyResetToken - read-only проверка токена сброса перед показом
// формы нового пароля
func (h *AuthHandler) VerifyResetToken(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		h.HandleServiceError(c, apperrors.ErrInvalidToken)
		return
	}

	db := h.GetDB(c)

	emailAddr, err := h.authService.VerifyPasswordResetToken(db, token)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"email":   emailAddr,
	})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	if err := h.authService.ResetPasswordWithToken(db, req.Token, req.NewPassword); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Пароль изменен. Теперь вы можете войти с новым паролем.",
	})
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, token, h.cookie.MaxAge, "/", "", h.cookie.Secure, true)
}

func (h *AuthHandler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
}
