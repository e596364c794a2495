package repositories

import (
	"errors"
	"time"

	"topicbrief_backend/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrSessionNotFound = errors.New("session not found")
)

// SessionRepository определяет интерфейс для серверных сессий
type SessionRepository interface {
	Create(db *gorm.DB, session *models.Session) error
	// FindByToken находит живую (не истекшую) сессию
	FindByToken(db *gorm.DB, tokenString string) (*models.Session, error)
	DeleteByToken(db *gorm.DB, tokenString string) error
	DeleteByUserID(db *gorm.DB, userID string) error
	// UpdateSnapshotByUserID заменяет снапшот во всех живых сессиях
	// пользователя (вызывается при изменении его собственных полей)
	UpdateSnapshotByUserID(db *gorm.DB, userID string, snapshot datatypes.JSON) error
	CleanExpired(db *gorm.DB) error
}

type sessionRepository struct{}

// NewSessionRepository создает новый экземпляр SessionRepository
func NewSessionRepository() SessionRepository {
	return &sessionRepository{}
}

func (r *sessionRepository) Create(db *gorm.DB, session *models.Session) error {
	return db.Create(session).Error
}

func (r *sessionRepository) FindByToken(db *gorm.DB, tokenString string) (*models.Session, error) {
	var session models.Session
	if err := db.Where("token = ? AND expires_at > ?", tokenString, time.Now()).
		First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) DeleteByToken(db *gorm.DB, tokenString string) error {
	result := db.Where("token = ?", tokenString).Delete(&models.Session{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (r *sessionRepository) DeleteByUserID(db *gorm.DB, userID string) error {
	return db.Where("user_id = ?", userID).Delete(&models.Session{}).Error
}

func (r *sessionRepository) UpdateSnapshotByUserID(db *gorm.DB, userID string, snapshot datatypes.JSON) error {
	return db.Model(&models.Session{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"snapshot":   snapshot,
			"updated_at": time.Now(),
		}).Error
}

func (r *sessionRepository) CleanExpired(db *gorm.DB) error {
	return db.Where("expires_at < ?", time.Now()).Delete(&models.Session{}).Error
}
