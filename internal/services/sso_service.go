package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"topicbrief_backend/internal/logger"
	"topicbrief_backend/internal/models"
	"topicbrief_backend/internal/repositories"
	"topicbrief_backend/internal/services/dto"
	"topicbrief_backend/pkg/apperrors"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/microsoft"
	"gorm.io/gorm"
)

const graphProfileURL = "https://graph.microsoft.com/v1.0/me"

// domainPattern - консервативная проверка доменного имени:
// буквы/цифры/дефисы, хотя бы одна точка, TLD от двух букв
var domainPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?(\.[a-z0-9]([a-z0-9-]*[a-z0-9])?)*\.[a-z]{2,}$`)

// ExternalProfile - профиль пользователя из Microsoft Graph
type ExternalProfile struct {
	ID                string `json:"id"`
	Mail              string `json:"mail"`
	UserPrincipalName string `json:"userPrincipalName"`
	GivenName         string `json:"givenName"`
	Surname           string `json:"surname"`
	DisplayName       string `json:"displayName"`
}

// Email возвращает предпочтительный адрес профиля:
// mail, если заполнен, иначе userPrincipalName
func (p *ExternalProfile) Email() string {
	if p.Mail != "" {
		return p.Mail
	}
	return p.UserPrincipalName
}

// SSOService - альтернативная (legacy) модель входа через Microsoft SSO.
// Включается конфигурацией и взаимоисключима с парольной моделью.
type SSOService interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*ExternalProfile, error)
	GetOrCreateUser(db *gorm.DB, profile *ExternalProfile) (*models.User, error)

	ListDomains(db *gorm.DB) ([]dto.DomainItem, error)
	AddDomain(db *gorm.DB, actingUserID, domain string) (*dto.DomainItem, error)
	RemoveDomain(db *gorm.DB, id string) error
}

type SSOServiceImpl struct {
	oauthConfig *oauth2.Config
	userRepo    repositories.UserRepository
	domainRepo  repositories.AllowedDomainRepository
	// bootstrapAdminEmail допускается мимо белого списка
	// и получает роль admin при первом входе
	bootstrapAdminEmail string
	httpClient          *http.Client
}

func NewSSOService(
	clientID, clientSecret, tenantID, redirectURL string,
	userRepo repositories.UserRepository,
	domainRepo repositories.AllowedDomainRepository,
	bootstrapAdminEmail string,
) SSOService {
	return &SSOServiceImpl{
		oauthConfig: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "profile", "email", "User.Read"},
			Endpoint:     microsoft.AzureADEndpoint(tenantID),
		},
		userRepo:            userRepo,
		domainRepo:          domainRepo,
		bootstrapAdminEmail: strings.ToLower(strings.TrimSpace(bootstrapAdminEmail)),
		httpClient:          &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *SSOServiceImpl) AuthCodeURL(state string) string {
	return s.oauthConfig.AuthCodeURL(state)
}

// Exchange обменивает authorization code на токен и забирает профиль
// пользователя из Microsoft Graph
func (s *SSOServiceImpl) Exchange(ctx context.Context, code string) (*ExternalProfile, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)

	token, err := s.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInvalidToken, "sso", "Не удалось обменять код авторизации", http.StatusUnauthorized)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, graphProfileURL, nil)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, apperrors.InternalError(fmt.Errorf("graph profile request failed: %d %s", resp.StatusCode, body))
	}

	var profile ExternalProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &profile, nil
}

// GetOrCreateUser - машина состояний провижининга:
//  1. по microsoftId -> существующий пользователь (ReturningUser)
//  2. по email -> привязка microsoftId к существующему аккаунту (LinkedUser)
//  3. домен в белом списке или bootstrap admin -> новый пользователь (NewUser)
//  4. иначе DomainNotAllowed
func (s *SSOServiceImpl) GetOrCreateUser(db *gorm.DB, profile *ExternalProfile) (*models.User, error) {
	emailAddr := NormalizeEmail(profile.Email())

	// 1. Возвращающийся пользователь
	user, err := s.userRepo.FindByMicrosoftID(db, profile.ID)
	if err == nil {
		if err := s.userRepo.UpdateLastLogin(db, user.ID); err != nil {
			logger.Warn("failed to update last login", "user_id", user.ID, "error", err)
		}
		return user, nil
	}
	if !apperrors.Is(err, repositories.ErrUserNotFound) {
		return nil, apperrors.InternalError(err)
	}

	// 2. Привязка к существующему аккаунту с тем же email
	user, err = s.userRepo.FindByEmail(db, emailAddr)
	if err == nil {
		if err := s.userRepo.SetMicrosoftID(db, user.ID, profile.ID); err != nil {
			return nil, apperrors.InternalError(err)
		}
		if err := s.userRepo.UpdateLastLogin(db, user.ID); err != nil {
			logger.Warn("failed to update last login", "user_id", user.ID, "error", err)
		}
		user.MicrosoftID = profile.ID
		return user, nil
	}
	if !apperrors.Is(err, repositories.ErrUserNotFound) {
		return nil, apperrors.InternalError(err)
	}

	// 3. Политика допуска
	isBootstrapAdmin := s.bootstrapAdminEmail != "" && emailAddr == s.bootstrapAdminEmail
	if !isBootstrapAdmin {
		allowed, err := s.emailDomainAllowed(db, emailAddr)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, apperrors.ErrDomainNotAllowed
		}
	}

	role := models.UserRoleUser
	if isBootstrapAdmin {
		role = models.UserRoleAdmin
	}

	firstName := strings.TrimSpace(profile.GivenName)
	lastName := strings.TrimSpace(profile.Surname)
	displayName := strings.TrimSpace(profile.DisplayName)
	if displayName == "" {
		displayName = strings.TrimSpace(firstName + " " + lastName)
	}

	now := time.Now()
	user = &models.User{
		Email:       emailAddr,
		FirstName:   firstName,
		LastName:    lastName,
		DisplayName: displayName,
		Role:        role,
		// SSO-аккаунт считается верифицированным: email подтвержден
		// провайдером идентичности
		IsVerified:  true,
		MicrosoftID: profile.ID,
		LastLoginAt: &now,
	}
	if err := s.userRepo.Create(db, user); err != nil {
		if apperrors.Is(err, repositories.ErrUserAlreadyExists) {
			// Гонка двух параллельных первых входов
			return nil, apperrors.ErrEmailAlreadyExists
		}
		return nil, apperrors.InternalError(err)
	}
	return user, nil
}

// emailDomainAllowed проверяет домен email по белому списку.
// Email без @ не имеет домена и всегда отклоняется.
func (s *SSOServiceImpl) emailDomainAllowed(db *gorm.DB, emailAddr string) (bool, error) {
	at := strings.LastIndex(emailAddr, "@")
	if at < 0 || at == len(emailAddr)-1 {
		return false, nil
	}
	domain := emailAddr[at+1:]

	exists, err := s.domainRepo.Exists(db, domain)
	if err != nil {
		return false, apperrors.InternalError(err)
	}
	return exists, nil
}

func (s *SSOServiceImpl) ListDomains(db *gorm.DB) ([]dto.DomainItem, error) {
	domains, err := s.domainRepo.FindAll(db)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	items := make([]dto.DomainItem, 0, len(domains))
	for _, d := range domains {
		items = append(items, dto.DomainItem{ID: d.ID, Domain: d.Domain, AddedBy: d.AddedBy})
	}
	return items, nil
}

// AddDomain добавляет домен в белый список после проверки формата
func (s *SSOServiceImpl) AddDomain(db *gorm.DB, actingUserID, domain string) (*dto.DomainItem, error) {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if !domainPattern.MatchString(domain) || !strings.Contains(domain, ".") {
		return nil, apperrors.ErrInvalidDomain
	}

	record := &models.AllowedDomain{
		Domain:  domain,
		AddedBy: actingUserID,
	}
	if err := s.domainRepo.Create(db, record); err != nil {
		if apperrors.Is(err, repositories.ErrDomainAlreadyExists) {
			return nil, apperrors.ErrDomainAlreadyExists
		}
		return nil, apperrors.InternalError(err)
	}
	return &dto.DomainItem{ID: record.ID, Domain: record.Domain, AddedBy: record.AddedBy}, nil
}

func (s *SSOServiceImpl) RemoveDomain(db *gorm.DB, id string) error {
	if err := s.domainRepo.Delete(db, id); err != nil {
		if apperrors.Is(err, repositories.ErrDomainNotFound) {
			return apperrors.NewBadRequestError("Домен не найден")
		}
		return apperrors.InternalError(err)
	}
	return nil
}
