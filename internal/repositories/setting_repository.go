package repositories

import (
	"errors"

	"topicbrief_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrSettingNotFound = errors.New("setting not found")
)

// SettingRepository - системные настройки (key-value)
type SettingRepository interface {
	Get(db *gorm.DB, key string) (*models.Setting, error)
	// Set создает или обновляет настройку (upsert)
	Set(db *gorm.DB, setting *models.Setting) error
	FindAll(db *gorm.DB) ([]models.Setting, error)
}

type settingRepository struct{}

// NewSettingRepository создает новый экземпляр SettingRepository
func NewSettingRepository() SettingRepository {
	return &settingRepository{}
}

func (r *settingRepository) Get(db *gorm.DB, key string) (*models.Setting, error) {
	var setting models.Setting
	if err := db.First(&setting, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSettingNotFound
		}
		return nil, err
	}
	return &setting, nil
}

func (r *settingRepository) Set(db *gorm.DB, setting *models.Setting) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(setting).Error
}

func (r *settingRepository) FindAll(db *gorm.DB) ([]models.Setting, error) {
	var settings []models.Setting
	err := db.Order("key ASC").Find(&settings).Error
	return settings, err
}
