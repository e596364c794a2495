package services

import (
	"encoding/json"
	"time"

	"topicbrief_backend/internal/auth"
	"topicbrief_backend/internal/models"
	"topicbrief_backend/internal/repositories"
	"topicbrief_backend/pkg/apperrors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SessionService управляет серверными сессиями. Клиент держит только
// непрозрачный токен в cookie; снапшот пользователя лежит в БД.
type SessionService interface {
	Create(db *gorm.DB, snapshot *models.UserSnapshot) (string, error)
	Load(db *gorm.DB, token string) (*models.UserSnapshot, error)
	Destroy(db *gorm.DB, token string) error
	RefreshUserSnapshot(db *gorm.DB, user *models.User) error
	TTL() time.Duration
}

type SessionServiceImpl struct {
	sessionRepo repositories.SessionRepository
	ttl         time.Duration
}

func NewSessionService(sessionRepo repositories.SessionRepository, ttl time.Duration) SessionService {
	return &SessionServiceImpl{
		sessionRepo: sessionRepo,
		ttl:         ttl,
	}
}

func (s *SessionServiceImpl) TTL() time.Duration {
	return s.ttl
}

// Create создает сессию и возвращает токен для cookie
func (s *SessionServiceImpl) Create(db *gorm.DB, snapshot *models.UserSnapshot) (string, error) {
	token, err := auth.NewRandomToken()
	if err != nil {
		return "", apperrors.InternalError(err)
	}

	raw, err := json.Marshal(snapshot)
	if err != nil {
		return "", apperrors.InternalError(err)
	}

	session := &models.Session{
		UserID:    snapshot.ID,
		Token:     token,
		Snapshot:  datatypes.JSON(raw),
		ExpiresAt: time.Now().Add(s.ttl),
	}
	if err := s.sessionRepo.Create(db, session); err != nil {
		return "", apperrors.InternalError(err)
	}
	return token, nil
}

// Load возвращает снапшот пользователя по токену сессии.
// Истекшие сессии никогда не матчатся.
func (s *SessionServiceImpl) Load(db *gorm.DB, token string) (*models.UserSnapshot, error) {
	session, err := s.sessionRepo.FindByToken(db, token)
	if err != nil {
		if apperrors.Is(err, repositories.ErrSessionNotFound) {
			return nil, repositories.ErrSessionNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	var snapshot models.UserSnapshot
	if err := json.Unmarshal(session.Snapshot, &snapshot); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &snapshot, nil
}

// Destroy уничтожает сессию (logout). Отсутствие сессии не ошибка:
// logout идемпотентен.
func (s *SessionServiceImpl) Destroy(db *gorm.DB, token string) error {
	if err := s.sessionRepo.DeleteByToken(db, token); err != nil {
		if apperrors.Is(err, repositories.ErrSessionNotFound) {
			return nil
		}
		return apperrors.InternalError(err)
	}
	return nil
}

// RefreshUserSnapshot перезаписывает снапшот во всех живых сессиях
// пользователя. Вызывается при смене имени самим пользователем;
// смена роли админом чужие сессии НЕ трогает - роль остается
// устаревшей до следующего логина.
func (s *SessionServiceImpl) RefreshUserSnapshot(db *gorm.DB, user *models.User) error {
	snapshot := models.SnapshotFromUser(user)
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if err := s.sessionRepo.UpdateSnapshotByUserID(db, user.ID, datatypes.JSON(raw)); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}
