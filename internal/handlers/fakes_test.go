package handlers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"topicbrief_backend/internal/models"
	"topicbrief_backend/internal/repositories"
	"topicbrief_backend/internal/services"
	"topicbrief_backend/internal/services/dto"
	"topicbrief_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// Фейки сервисов для HTTP-тестов. Поведение повторяет контракты
// сервисов ровно настолько, насколько нужно маршрутам; сама
// бизнес-логика тестируется в пакете services.

type authRecord struct {
	password string
	verified bool
	snapshot models.UserSnapshot
}

type fakeAuthService struct {
	mu         sync.Mutex
	nextID     int
	users      map[string]*authRecord // email -> record
	verifyTok  map[string]string      // token -> email
	resetTok   map[string]string      // token -> email
	mailEnable bool
}

func newFakeAuthService(mailEnabled bool) *fakeAuthService {
	return &fakeAuthService{
		users:      make(map[string]*authRecord),
		verifyTok:  make(map[string]string),
		resetTok:   make(map[string]string),
		mailEnable: mailEnabled,
	}
}

func (s *fakeAuthService) Register(_ *gorm.DB, req *dto.RegisterRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	emailAddr := services.NormalizeEmail(req.Email)
	if _, ok := s.users[emailAddr]; ok {
		return apperrors.ErrEmailAlreadyExists
	}
	if len(req.Password) < 8 {
		return apperrors.ErrWeakPassword
	}
	s.nextID++
	record := &authRecord{
		password: req.Password,
		verified: !s.mailEnable,
		snapshot: models.UserSnapshot{
			ID:          fmt.Sprintf("user-%d", s.nextID),
			Email:       emailAddr,
			FirstName:   req.FirstName,
			LastName:    req.LastName,
			DisplayName: req.FirstName + " " + req.LastName,
			Role:        models.UserRoleUser,
			IsVerified:  !s.mailEnable,
		},
	}
	s.users[emailAddr] = record
	if s.mailEnable {
		s.verifyTok["verify-"+emailAddr] = emailAddr
	}
	return nil
}

func (s *fakeAuthService) VerifyEmailToken(_ *gorm.DB, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	emailAddr, ok := s.verifyTok[token]
	if !ok {
		return apperrors.ErrInvalidToken
	}
	delete(s.verifyTok, token)
	s.users[emailAddr].verified = true
	s.users[emailAddr].snapshot.IsVerified = true
	return nil
}

func (s *fakeAuthService) Login(_ *gorm.DB, req *dto.LoginRequest) (*models.UserSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.users[services.NormalizeEmail(req.Email)]
	if !ok || record.password != req.Password {
		return nil, apperrors.ErrInvalidCredentials
	}
	if !record.verified {
		return nil, apperrors.ErrEmailNotVerified
	}
	snapshot := record.snapshot
	return &snapshot, nil
}

func (s *fakeAuthService) RequestPasswordReset(_ *gorm.DB, emailAddr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	emailAddr = services.NormalizeEmail(emailAddr)
	if _, ok := s.users[emailAddr]; ok {
		s.resetTok["reset-"+emailAddr] = emailAddr
	}
	// Существование аккаунта не раскрывается
	return nil
}

func (s *fakeAuthService) CreatePasswordResetToken(_ *gorm.DB, emailAddr string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	emailAddr = services.NormalizeEmail(emailAddr)
	if _, ok := s.users[emailAddr]; !ok {
		return "", nil
	}
	token := "reset-" + emailAddr
	s.resetTok[token] = emailAddr
	return token, nil
}

func (s *fakeAuthService) VerifyPasswordResetToken(_ *gorm.DB, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	emailAddr, ok := s.resetTok[token]
	if !ok {
		return "", apperrors.ErrInvalidToken
	}
	return emailAddr, nil
}

func (s *fakeAuthService) ResetPasswordWithToken(_ *gorm.DB, token, newPassword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	emailAddr, ok := s.resetTok[token]
	if !ok {
		return apperrors.ErrInvalidToken
	}
	if len(newPassword) < 8 {
		return apperrors.ErrWeakPassword
	}
	delete(s.resetTok, token)
	s.users[emailAddr].password = newPassword
	return nil
}

func (s *fakeAuthService) ChangePassword(_ *gorm.DB, userID, currentPassword, newPassword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, record := range s.users {
		if record.snapshot.ID != userID {
			continue
		}
		if record.password != currentPassword {
			return apperrors.ErrInvalidCurrentPassword
		}
		if len(newPassword) < 8 {
			return apperrors.ErrWeakPassword
		}
		record.password = newPassword
		return nil
	}
	return apperrors.ErrUserNotFound
}

type fakeSessionService struct {
	mu       sync.Mutex
	nextID   int
	sessions map[string]models.UserSnapshot
}

func newFakeSessionService() *fakeSessionService {
	return &fakeSessionService{sessions: make(map[string]models.UserSnapshot)}
}

func (s *fakeSessionService) Create(_ *gorm.DB, snapshot *models.UserSnapshot) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	token := fmt.Sprintf("session-token-%d", s.nextID)
	s.sessions[token] = *snapshot
	return token, nil
}

func (s *fakeSessionService) Load(_ *gorm.DB, token string) (*models.UserSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot, ok := s.sessions[token]
	if !ok {
		return nil, repositories.ErrSessionNotFound
	}
	return &snapshot, nil
}

func (s *fakeSessionService) Destroy(_ *gorm.DB, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

func (s *fakeSessionService) RefreshUserSnapshot(_ *gorm.DB, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, snapshot := range s.sessions {
		if snapshot.ID == user.ID {
			s.sessions[token] = models.SnapshotFromUser(user)
		}
	}
	return nil
}

func (s *fakeSessionService) TTL() time.Duration { return time.Hour }

type fakeUserService struct {
	mu    sync.Mutex
	users map[string]*models.User // id -> user
}

func newFakeUserService() *fakeUserService {
	return &fakeUserService{users: make(map[string]*models.User)}
}

func (s *fakeUserService) seed(user *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
}

func (s *fakeUserService) ListUsers(_ *gorm.DB) ([]dto.UserListItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]dto.UserListItem, 0, len(s.users))
	for _, u := range s.users {
		items = append(items, dto.UserListItem{
			ID:            u.ID,
			Email:         u.Email,
			Role:          string(u.Role),
			EmailVerified: u.IsVerified,
		})
	}
	return items, nil
}

func (s *fakeUserService) SetRole(_ *gorm.DB, actingUserID, targetUserID, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if actingUserID == targetUserID {
		return apperrors.ErrCannotModifySelf
	}
	userRole := models.UserRole(role)
	if !models.ValidRole(userRole) {
		return apperrors.ErrInvalidRole
	}
	user, ok := s.users[targetUserID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	user.Role = userRole
	return nil
}

func (s *fakeUserService) DeleteUser(_ *gorm.DB, actingUserID, targetUserID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if actingUserID == targetUserID {
		return apperrors.ErrCannotModifySelf
	}
	if _, ok := s.users[targetUserID]; !ok {
		return apperrors.ErrUserNotFound
	}
	delete(s.users, targetUserID)
	return nil
}

func (s *fakeUserService) UpdateName(_ *gorm.DB, userID, firstName, lastName string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	user.FirstName = firstName
	user.LastName = lastName
	user.DisplayName = firstName + " " + lastName
	return user, nil
}

func (s *fakeUserService) GetByID(_ *gorm.DB, userID string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return user, nil
}

type fakeTopicService struct {
	mu     sync.Mutex
	nextID int
	topics map[string]map[string]string // userID -> topicID -> name
}

func newFakeTopicService() *fakeTopicService {
	return &fakeTopicService{topics: make(map[string]map[string]string)}
}

func (s *fakeTopicService) List(_ *gorm.DB, userID string) ([]dto.TopicItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]dto.TopicItem, 0)
	for id, name := range s.topics[userID] {
		items = append(items, dto.TopicItem{ID: id, Name: name})
	}
	return items, nil
}

func (s *fakeTopicService) Create(_ *gorm.DB, userID, name string) (*dto.TopicItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.topics[userID] == nil {
		s.topics[userID] = make(map[string]string)
	}
	s.nextID++
	id := fmt.Sprintf("topic-%d", s.nextID)
	s.topics[userID][id] = name
	return &dto.TopicItem{ID: id, Name: name}, nil
}

func (s *fakeTopicService) Delete(_ *gorm.DB, userID, topicID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.topics[userID][topicID]; !ok {
		return apperrors.ErrTopicNotFound
	}
	delete(s.topics[userID], topicID)
	return nil
}

type fakeSettingService struct {
	mu       sync.Mutex
	settings map[string]string
}

func newFakeSettingService() *fakeSettingService {
	return &fakeSettingService{settings: make(map[string]string)}
}

func (s *fakeSettingService) List(_ *gorm.DB) ([]dto.SettingItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]dto.SettingItem, 0, len(s.settings))
	for key, value := range s.settings {
		items = append(items, dto.SettingItem{Key: key, Value: value})
	}
	return items, nil
}

func (s *fakeSettingService) Set(_ *gorm.DB, key, value string) (*dto.SettingItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[key] = value
	return &dto.SettingItem{Key: key, Value: value}, nil
}

type fakeSSOService struct {
	mu      sync.Mutex
	domains map[string]string // id -> domain
}

func newFakeSSOService() *fakeSSOService {
	return &fakeSSOService{domains: make(map[string]string)}
}

func (s *fakeSSOService) AuthCodeURL(state string) string {
	return "https://login.microsoftonline.com/common/oauth2/v2.0/authorize?state=" + state
}

func (s *fakeSSOService) Exchange(_ context.Context, code string) (*services.ExternalProfile, error) {
	if code != "good-code" {
		return nil, apperrors.NewUnauthorizedError("Не удалось обменять код авторизации")
	}
	return &services.ExternalProfile{
		ID:        "ms-1",
		Mail:      "sso@corp.example.com",
		GivenName: "Петр",
		Surname:   "Иванов",
	}, nil
}

func (s *fakeSSOService) GetOrCreateUser(_ *gorm.DB, profile *services.ExternalProfile) (*models.User, error) {
	user := &models.User{
		Email:      profile.Email(),
		FirstName:  profile.GivenName,
		LastName:   profile.Surname,
		Role:       models.UserRoleUser,
		IsVerified: true,
	}
	user.ID = "sso-user-1"
	return user, nil
}

func (s *fakeSSOService) ListDomains(_ *gorm.DB) ([]dto.DomainItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]dto.DomainItem, 0, len(s.domains))
	for id, domain := range s.domains {
		items = append(items, dto.DomainItem{ID: id, Domain: domain})
	}
	return items, nil
}

func (s *fakeSSOService) AddDomain(_ *gorm.DB, actingUserID, domain string) (*dto.DomainItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := fmt.Sprintf("domain-%d", len(s.domains)+1)
	s.domains[id] = domain
	return &dto.DomainItem{ID: id, Domain: domain, AddedBy: actingUserID}, nil
}

func (s *fakeSSOService) RemoveDomain(_ *gorm.DB, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.domains, id)
	return nil
}
