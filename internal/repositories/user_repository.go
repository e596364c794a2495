package repositories

import (
	"errors"
	"time"

	"topicbrief_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
)

// UserRepository определяет интерфейс для операций с пользователями
type UserRepository interface {
	FindByID(db *gorm.DB, id string) (*models.User, error)
	FindByEmail(db *gorm.DB, email string) (*models.User, error)
	FindByMicrosoftID(db *gorm.DB, microsoftID string) (*models.User, error)
	Create(db *gorm.DB, user *models.User) error
	UpdatePassword(db *gorm.DB, userID, passwordHash string) error
	UpdateName(db *gorm.DB, userID, firstName, lastName, displayName string) error
	UpdateRole(db *gorm.DB, userID string, role models.UserRole) error
	SetMicrosoftID(db *gorm.DB, userID, microsoftID string) error
	MarkVerified(db *gorm.DB, userID string) error
	UpdateLastLogin(db *gorm.DB, userID string) error
	Delete(db *gorm.DB, userID string) error
	FindAll(db *gorm.DB) ([]models.User, error)
}

type userRepository struct{}

// NewUserRepository создает новый экземпляр UserRepository
func NewUserRepository() UserRepository {
	return &userRepository{}
}

func (r *userRepository) FindByID(db *gorm.DB, id string) (*models.User, error) {
	var user models.User
	if err := db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindByEmail ищет пользователя по email. Email должен быть
// нормализован (lowercase) до вызова.
func (r *userRepository) FindByEmail(db *gorm.DB, email string) (*models.User, error) {
	var user models.User
	if err := db.First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByMicrosoftID(db *gorm.DB, microsoftID string) (*models.User, error) {
	var user models.User
	if err := db.First(&user, "microsoft_id = ?", microsoftID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Create создает пользователя. Гонка двух одновременных регистраций
// с одним email разрешается уникальным индексом в БД.
func (r *userRepository) Create(db *gorm.DB, user *models.User) error {
	if err := db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrUserAlreadyExists
		}
		return err
	}
	return nil
}

func (r *userRepository) UpdatePassword(db *gorm.DB, userID, passwordHash string) error {
	return r.updates(db, userID, map[string]interface{}{
		"password_hash": passwordHash,
	})
}

func (r *userRepository) UpdateName(db *gorm.DB, userID, firstName, lastName, displayName string) error {
	return r.updates(db, userID, map[string]interface{}{
		"first_name":   firstName,
		"last_name":    lastName,
		"display_name": displayName,
	})
}

func (r *userRepository) UpdateRole(db *gorm.DB, userID string, role models.UserRole) error {
	return r.updates(db, userID, map[string]interface{}{
		"role": role,
	})
}

func (r *userRepository) SetMicrosoftID(db *gorm.DB, userID, microsoftID string) error {
	return r.updates(db, userID, map[string]interface{}{
		"microsoft_id": microsoftID,
	})
}

func (r *userRepository) MarkVerified(db *gorm.DB, userID string) error {
	return r.updates(db, userID, map[string]interface{}{
		"is_verified": true,
	})
}

func (r *userRepository) UpdateLastLogin(db *gorm.DB, userID string) error {
	return r.updates(db, userID, map[string]interface{}{
		"last_login_at": time.Now(),
	})
}

// Delete удаляет пользователя и связанные с ним данные одной транзакцией
func (r *userRepository) Delete(db *gorm.DB, userID string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		// Токены и сессии удаляются первыми
		if err := tx.Where("user_id = ?", userID).Delete(&models.VerificationToken{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.PasswordResetToken{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Session{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Topic{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ?", userID).Delete(&models.User{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return nil
	})
}

func (r *userRepository) FindAll(db *gorm.DB) ([]models.User, error) {
	var users []models.User
	err := db.Order("created_at ASC").Find(&users).Error
	return users, err
}

func (r *userRepository) updates(db *gorm.DB, userID string, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now()
	result := db.Model(&models.User{}).Where("id = ?", userID).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
