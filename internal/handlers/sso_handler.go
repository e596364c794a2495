package handlers

import (
	"net/http"
	"net/url"

	"topicbrief_backend/internal/auth"
	"topicbrief_backend/internal/middleware"
	"topicbrief_backend/internal/models"
	"topicbrief_backend/internal/services"
	"topicbrief_backend/internal/services/dto"
	"topicbrief_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

const ssoStateCookie = "sso_state"

// SSOHandler - маршруты legacy SSO модели входа.
// Регистрируется только когда SSO сконфигурирован; парольные
// маршруты в этом режиме не поднимаются.
type SSOHandler struct {
	*BaseHandler
	ssoService     services.SSOService
	sessionService services.SessionService
	cookie         SessionCookie
}

func NewSSOHandler(base *BaseHandler, ssoService services.SSOService, sessionService services.SessionService, cookie SessionCookie) *SSOHandler {
	return &SSOHandler{
		BaseHandler:    base,
		ssoService:     ssoService,
		sessionService: sessionService,
		cookie:         cookie,
	}
}

func (h *SSOHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sso := rg.Group("/auth/sso")
	{
		sso.GET("/login", h.Login)
		sso.GET("/callback", h.Callback)
	}

	domains := rg.Group("/admin/domains")
	domains.Use(middleware.RequireAuth(), middleware.RequireAdmin())
	{
		domains.GET("", h.ListDomains)
		domains.POST("", h.AddDomain)
		domains.DELETE("/:id", h.RemoveDomain)
	}
}

// Login уводит пользователя на страницу входа Microsoft.
// State записывается в короткоживущую cookie против CSRF.
func (h *SSOHandler) Login(c *gin.Context) {
	state, err := auth.NewRandomToken()
	if err != nil {
		h.HandleServiceError(c, apperrors.InternalError(err))
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(ssoStateCookie, state, 600, "/", "", h.cookie.Secure, true)
	c.Redirect(http.StatusFound, h.ssoService.AuthCodeURL(state))
}

// Callback завершает OAuth-обмен и создает сессию
func (h *SSOHandler) Callback(c *gin.Context) {
	expectedState, err := c.Cookie(ssoStateCookie)
	if err != nil || expectedState == "" || c.Query("state") != expectedState {
		h.redirectWithError(c, "Недействительный state параметр")
		return
	}
	c.SetCookie(ssoStateCookie, "", -1, "/", "", h.cookie.Secure, true)

	code := c.Query("code")
	if code == "" {
		h.redirectWithError(c, "Отсутствует код авторизации")
		return
	}

	profile, err := h.ssoService.Exchange(c.Request.Context(), code)
	if err != nil {
		h.redirectWithError(c, "Не удалось выполнить вход через Microsoft")
		return
	}

	db := h.GetDB(c)

	user, err := h.ssoService.GetOrCreateUser(db, profile)
	if err != nil {
		message := "Не удалось выполнить вход"
		if appErr, ok := apperrors.AsAppError(err); ok {
			message = appErr.Message
		}
		h.redirectWithError(c, message)
		return
	}

	snapshot := models.SnapshotFromUser(user)
	token, err := h.sessionService.Create(db, &snapshot)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, token, h.cookie.MaxAge, "/", "", h.cookie.Secure, true)
	c.Redirect(http.StatusFound, "/")
}

func (h *SSOHandler) redirectWithError(c *gin.Context, message string) {
	c.Redirect(http.StatusFound, "/login?error="+url.QueryEscape(message))
}

func (h *SSOHandler) ListDomains(c *gin.Context) {
	db := h.GetDB(c)

	domains, err := h.ssoService.ListDomains(db)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, domains)
}

func (h *SSOHandler) AddDomain(c *gin.Context) {
	snapshot, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	var req dto.AddDomainRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	domain, err := h.ssoService.AddDomain(db, snapshot.ID, req.Domain)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"domain":  domain,
	})
}

func (h *SSOHandler) RemoveDomain(c *gin.Context) {
	db := h.GetDB(c)

	if err := h.ssoService.RemoveDomain(db, c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
