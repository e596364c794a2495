package services

import (
	"topicbrief_backend/internal/models"
	"topicbrief_backend/internal/repositories"
	"topicbrief_backend/internal/services/dto"
	"topicbrief_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// SettingService - системные настройки в виде key/value, доступны
// только администраторам
type SettingService interface {
	List(db *gorm.DB) ([]dto.SettingItem, error)
	Set(db *gorm.DB, key, value string) (*dto.SettingItem, error)
}

type SettingServiceImpl struct {
	settingRepo repositories.SettingRepository
}

func NewSettingService(settingRepo repositories.SettingRepository) SettingService {
	return &SettingServiceImpl{settingRepo: settingRepo}
}

func (s *SettingServiceImpl) List(db *gorm.DB) ([]dto.SettingItem, error) {
	settings, err := s.settingRepo.FindAll(db)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	items := make([]dto.SettingItem, 0, len(settings))
	for _, st := range settings {
		items = append(items, dto.SettingItem{Key: st.Key, Value: st.Value})
	}
	return items, nil
}

// Set создает или перезаписывает настройку (upsert по ключу)
func (s *SettingServiceImpl) Set(db *gorm.DB, key, value string) (*dto.SettingItem, error) {
	setting := &models.Setting{Key: key, Value: value}
	if err := s.settingRepo.Set(db, setting); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &dto.SettingItem{Key: setting.Key, Value: setting.Value}, nil
}
