package repositories

import (
	"errors"
	"time"

	"topicbrief_backend/internal/models"

	"gorm.io/gorm"
)

var (
	// ErrTokenNotFound возвращается для несуществующих, чужих
	// и просроченных токенов одинаково
	ErrTokenNotFound = errors.New("token not found or expired")
)

// TokenRepository определяет интерфейс для одноразовых токенов
// верификации email и сброса пароля.
//
// Просроченные токены никогда не находятся (lazy expiry);
// физически их подчищает фоновый CleanupWorker.
type TokenRepository interface {
	CreateVerification(db *gorm.DB, token *models.VerificationToken) error
	// ConsumeVerification атомарно находит живой токен и удаляет его,
	// возвращая ID владельца. Повторный вызов с тем же токеном вернет
	// ErrTokenNotFound.
	ConsumeVerification(db *gorm.DB, tokenString string) (userID string, err error)

	CreateReset(db *gorm.DB, token *models.PasswordResetToken) error
	// FindReset - read-only проверка reset-токена без потребления
	FindReset(db *gorm.DB, tokenString string) (*models.PasswordResetToken, error)
	// ConsumeReset - атомарный check-then-delete для reset-токена
	ConsumeReset(db *gorm.DB, tokenString string) (userID string, err error)
	// DeleteResetByUserID удаляет все reset-токены пользователя.
	// Вызывается перед созданием нового: живой reset-токен всегда один.
	DeleteResetByUserID(db *gorm.DB, userID string) error
}

type tokenRepository struct{}

// NewTokenRepository создает новый экземпляр TokenRepository
func NewTokenRepository() TokenRepository {
	return &tokenRepository{}
}

func (r *tokenRepository) CreateVerification(db *gorm.DB, token *models.VerificationToken) error {
	return db.Create(token).Error
}

func (r *tokenRepository) ConsumeVerification(db *gorm.DB, tokenString string) (string, error) {
	var userID string
	err := db.Transaction(func(tx *gorm.DB) error {
		var token models.VerificationToken
		if err := tx.Where("token = ? AND expires_at > ?", tokenString, time.Now()).
			First(&token).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTokenNotFound
			}
			return err
		}

		// DELETE с проверкой RowsAffected: из двух конкурентных
		// потреблений одного токена выигрывает ровно одно
		result := tx.Where("id = ?", token.ID).Delete(&models.VerificationToken{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrTokenNotFound
		}

		userID = token.UserID
		return nil
	})
	if err != nil {
		return "", err
	}
	return userID, nil
}

func (r *tokenRepository) CreateReset(db *gorm.DB, token *models.PasswordResetToken) error {
	return db.Create(token).Error
}

func (r *tokenRepository) FindReset(db *gorm.DB, tokenString string) (*models.PasswordResetToken, error) {
	var token models.PasswordResetToken
	if err := db.Where("token = ? AND expires_at > ?", tokenString, time.Now()).
		First(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	return &token, nil
}

func (r *tokenRepository) ConsumeReset(db *gorm.DB, tokenString string) (string, error) {
	var userID string
	err := db.Transaction(func(tx *gorm.DB) error {
		var token models.PasswordResetToken
		if err := tx.Where("token = ? AND expires_at > ?", tokenString, time.Now()).
			First(&token).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTokenNotFound
			}
			return err
		}

		result := tx.Where("id = ?", token.ID).Delete(&models.PasswordResetToken{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrTokenNotFound
		}

		userID = token.UserID
		return nil
	})
	if err != nil {
		return "", err
	}
	return userID, nil
}

func (r *tokenRepository) DeleteResetByUserID(db *gorm.DB, userID string) error {
	return db.Where("user_id = ?", userID).Delete(&models.PasswordResetToken{}).Error
}
