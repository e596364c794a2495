package repositories

import (
	"errors"

	"topicbrief_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrDomainNotFound      = errors.New("domain not found")
	ErrDomainAlreadyExists = errors.New("domain already exists")
)

// AllowedDomainRepository - белый список доменов для legacy SSO модели
type AllowedDomainRepository interface {
	Create(db *gorm.DB, domain *models.AllowedDomain) error
	Delete(db *gorm.DB, id string) error
	FindAll(db *gorm.DB) ([]models.AllowedDomain, error)
	// Exists проверяет, есть ли домен в белом списке.
	// Домен должен быть нормализован (lowercase) до вызова.
	Exists(db *gorm.DB, domain string) (bool, error)
}

type allowedDomainRepository struct{}

// NewAllowedDomainRepository создает новый экземпляр AllowedDomainRepository
func NewAllowedDomainRepository() AllowedDomainRepository {
	return &allowedDomainRepository{}
}

func (r *allowedDomainRepository) Create(db *gorm.DB, domain *models.AllowedDomain) error {
	if err := db.Create(domain).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDomainAlreadyExists
		}
		return err
	}
	return nil
}

func (r *allowedDomainRepository) Delete(db *gorm.DB, id string) error {
	result := db.Where("id = ?", id).Delete(&models.AllowedDomain{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDomainNotFound
	}
	return nil
}

func (r *allowedDomainRepository) FindAll(db *gorm.DB) ([]models.AllowedDomain, error) {
	var domains []models.AllowedDomain
	err := db.Order("domain ASC").Find(&domains).Error
	return domains, err
}

func (r *allowedDomainRepository) Exists(db *gorm.DB, domain string) (bool, error) {
	var count int64
	err := db.Model(&models.AllowedDomain{}).Where("domain = ?", domain).Count(&count).Error
	return count > 0, err
}
