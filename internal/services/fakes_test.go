package services

import (
	"fmt"
	"sync"
	"time"

	"topicbrief_backend/internal/email"
	"topicbrief_backend/internal/models"
	"topicbrief_backend/internal/repositories"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// In-memory фейки репозиториев. Аргумент db игнорируется:
// сервисы тестируются без настоящей БД.

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int
	users  map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (r *fakeUserRepo) FindByID(_ *gorm.DB, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) FindByEmail(_ *gorm.DB, emailAddr string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == emailAddr {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) FindByMicrosoftID(_ *gorm.DB, microsoftID string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.MicrosoftID != "" && u.MicrosoftID == microsoftID {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) Create(_ *gorm.DB, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return repositories.ErrUserAlreadyExists
		}
	}
	r.nextID++
	user.ID = fmt.Sprintf("user-%d", r.nextID)
	user.CreatedAt = time.Now()
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ *gorm.DB, userID, passwordHash string) error {
	return r.update(userID, func(u *models.User) { u.PasswordHash = passwordHash })
}

func (r *fakeUserRepo) UpdateName(_ *gorm.DB, userID, firstName, lastName, displayName string) error {
	return r.update(userID, func(u *models.User) {
		u.FirstName = firstName
		u.LastName = lastName
		u.DisplayName = displayName
	})
}

func (r *fakeUserRepo) UpdateRole(_ *gorm.DB, userID string, role models.UserRole) error {
	return r.update(userID, func(u *models.User) { u.Role = role })
}

func (r *fakeUserRepo) SetMicrosoftID(_ *gorm.DB, userID, microsoftID string) error {
	return r.update(userID, func(u *models.User) { u.MicrosoftID = microsoftID })
}

func (r *fakeUserRepo) MarkVerified(_ *gorm.DB, userID string) error {
	return r.update(userID, func(u *models.User) { u.IsVerified = true })
}

func (r *fakeUserRepo) UpdateLastLogin(_ *gorm.DB, userID string) error {
	now := time.Now()
	return r.update(userID, func(u *models.User) { u.LastLoginAt = &now })
}

func (r *fakeUserRepo) Delete(_ *gorm.DB, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[userID]; !ok {
		return repositories.ErrUserNotFound
	}
	delete(r.users, userID)
	return nil
}

func (r *fakeUserRepo) FindAll(_ *gorm.DB) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, *u)
	}
	return users, nil
}

func (r *fakeUserRepo) update(userID string, fn func(*models.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	fn(u)
	return nil
}

type fakeTokenRepo struct {
	mu            sync.Mutex
	verifications map[string]*models.VerificationToken
	resets        map[string]*models.PasswordResetToken
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{
		verifications: make(map[string]*models.VerificationToken),
		resets:        make(map[string]*models.PasswordResetToken),
	}
}

func (r *fakeTokenRepo) CreateVerification(_ *gorm.DB, token *models.VerificationToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *token
	r.verifications[token.Token] = &copied
	return nil
}

func (r *fakeTokenRepo) ConsumeVerification(_ *gorm.DB, tokenString string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	token, ok := r.verifications[tokenString]
	if !ok || token.ExpiresAt.Before(time.Now()) {
		return "", repositories.ErrTokenNotFound
	}
	delete(r.verifications, tokenString)
	return token.UserID, nil
}

func (r *fakeTokenRepo) CreateReset(_ *gorm.DB, token *models.PasswordResetToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *token
	r.resets[token.Token] = &copied
	return nil
}

func (r *fakeTokenRepo) FindReset(_ *gorm.DB, tokenString string) (*models.PasswordResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	token, ok := r.resets[tokenString]
	if !ok || token.ExpiresAt.Before(time.Now()) {
		return nil, repositories.ErrTokenNotFound
	}
	copied := *token
	return &copied, nil
}

func (r *fakeTokenRepo) ConsumeReset(_ *gorm.DB, tokenString string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	token, ok := r.resets[tokenString]
	if !ok || token.ExpiresAt.Before(time.Now()) {
		return "", repositories.ErrTokenNotFound
	}
	delete(r.resets, tokenString)
	return token.UserID, nil
}

func (r *fakeTokenRepo) DeleteResetByUserID(_ *gorm.DB, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, token := range r.resets {
		if token.UserID == userID {
			delete(r.resets, key)
		}
	}
	return nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*models.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*models.Session)}
}

func (r *fakeSessionRepo) Create(_ *gorm.DB, session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *session
	r.sessions[session.Token] = &copied
	return nil
}

func (r *fakeSessionRepo) FindByToken(_ *gorm.DB, tokenString string) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[tokenString]
	if !ok || session.ExpiresAt.Before(time.Now()) {
		return nil, repositories.ErrSessionNotFound
	}
	copied := *session
	return &copied, nil
}

func (r *fakeSessionRepo) DeleteByToken(_ *gorm.DB, tokenString string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[tokenString]; !ok {
		return repositories.ErrSessionNotFound
	}
	delete(r.sessions, tokenString)
	return nil
}

func (r *fakeSessionRepo) DeleteByUserID(_ *gorm.DB, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, session := range r.sessions {
		if session.UserID == userID {
			delete(r.sessions, key)
		}
	}
	return nil
}

func (r *fakeSessionRepo) UpdateSnapshotByUserID(_ *gorm.DB, userID string, snapshot datatypes.JSON) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, session := range r.sessions {
		if session.UserID == userID {
			session.Snapshot = snapshot
		}
	}
	return nil
}

func (r *fakeSessionRepo) CleanExpired(_ *gorm.DB) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, session := range r.sessions {
		if session.ExpiresAt.Before(time.Now()) {
			delete(r.sessions, key)
		}
	}
	return nil
}

type fakeDomainRepo struct {
	mu      sync.Mutex
	nextID  int
	domains map[string]*models.AllowedDomain
}

func newFakeDomainRepo() *fakeDomainRepo {
	return &fakeDomainRepo{domains: make(map[string]*models.AllowedDomain)}
}

func (r *fakeDomainRepo) Create(_ *gorm.DB, domain *models.AllowedDomain) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.domains {
		if d.Domain == domain.Domain {
			return repositories.ErrDomainAlreadyExists
		}
	}
	r.nextID++
	domain.ID = fmt.Sprintf("domain-%d", r.nextID)
	copied := *domain
	r.domains[domain.ID] = &copied
	return nil
}

func (r *fakeDomainRepo) Delete(_ *gorm.DB, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.domains[id]; !ok {
		return repositories.ErrDomainNotFound
	}
	delete(r.domains, id)
	return nil
}

func (r *fakeDomainRepo) FindAll(_ *gorm.DB) ([]models.AllowedDomain, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	domains := make([]models.AllowedDomain, 0, len(r.domains))
	for _, d := range r.domains {
		domains = append(domains, *d)
	}
	return domains, nil
}

func (r *fakeDomainRepo) Exists(_ *gorm.DB, domain string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.domains {
		if d.Domain == domain {
			return true, nil
		}
	}
	return false, nil
}

type fakeTopicRepo struct {
	mu     sync.Mutex
	nextID int
	topics map[string]*models.Topic
}

func newFakeTopicRepo() *fakeTopicRepo {
	return &fakeTopicRepo{topics: make(map[string]*models.Topic)}
}

func (r *fakeTopicRepo) Create(_ *gorm.DB, topic *models.Topic) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	topic.ID = fmt.Sprintf("topic-%d", r.nextID)
	topic.CreatedAt = time.Now()
	copied := *topic
	r.topics[topic.ID] = &copied
	return nil
}

func (r *fakeTopicRepo) FindByUserID(_ *gorm.DB, userID string) ([]models.Topic, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	topics := make([]models.Topic, 0)
	for _, t := range r.topics {
		if t.UserID == userID {
			topics = append(topics, *t)
		}
	}
	return topics, nil
}

func (r *fakeTopicRepo) DeleteOwned(_ *gorm.DB, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	topic, ok := r.topics[id]
	if !ok || topic.UserID != userID {
		return repositories.ErrTopicNotFound
	}
	delete(r.topics, id)
	return nil
}

type fakeSettingRepo struct {
	mu       sync.Mutex
	settings map[string]string
}

func newFakeSettingRepo() *fakeSettingRepo {
	return &fakeSettingRepo{settings: make(map[string]string)}
}

func (r *fakeSettingRepo) Get(_ *gorm.DB, key string) (*models.Setting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	value, ok := r.settings[key]
	if !ok {
		return nil, repositories.ErrSettingNotFound
	}
	return &models.Setting{Key: key, Value: value}, nil
}

func (r *fakeSettingRepo) Set(_ *gorm.DB, setting *models.Setting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings[setting.Key] = setting.Value
	return nil
}

func (r *fakeSettingRepo) FindAll(_ *gorm.DB) ([]models.Setting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	settings := make([]models.Setting, 0, len(r.settings))
	for key, value := range r.settings {
		settings = append(settings, models.Setting{Key: key, Value: value})
	}
	return settings, nil
}

// fakeEmailProvider фиксирует отправленные письма
type fakeEmailProvider struct {
	mu                 sync.Mutex
	sentVerifications  map[string]string // email -> token
	sentPasswordResets map[string]string
	failNext           error
}

func newFakeEmailProvider() *fakeEmailProvider {
	return &fakeEmailProvider{
		sentVerifications:  make(map[string]string),
		sentPasswordResets: make(map[string]string),
	}
}

func (p *fakeEmailProvider) Send(_ *email.Email) error { return p.fail() }

func (p *fakeEmailProvider) SendVerification(to string, token string) error {
	if err := p.fail(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sentVerifications[to] = token
	return nil
}

func (p *fakeEmailProvider) SendPasswordReset(to string, token string) error {
	if err := p.fail(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sentPasswordResets[to] = token
	return nil
}

func (p *fakeEmailProvider) Close() error { return nil }

func (p *fakeEmailProvider) fail() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	err := p.failNext
	p.failNext = nil
	return err
}
