package repositories

import (
	"errors"

	"topicbrief_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrTopicNotFound = errors.New("topic not found")
)

// TopicRepository - персональный список тем пользователя
type TopicRepository interface {
	Create(db *gorm.DB, topic *models.Topic) error
	FindByUserID(db *gorm.DB, userID string) ([]models.Topic, error)
	// DeleteOwned удаляет топик только если он принадлежит userID
	DeleteOwned(db *gorm.DB, id, userID string) error
}

type topicRepository struct{}

// NewTopicRepository создает новый экземпляр TopicRepository
func NewTopicRepository() TopicRepository {
	return &topicRepository{}
}

func (r *topicRepository) Create(db *gorm.DB, topic *models.Topic) error {
	return db.Create(topic).Error
}

func (r *topicRepository) FindByUserID(db *gorm.DB, userID string) ([]models.Topic, error) {
	var topics []models.Topic
	err := db.Where("user_id = ?", userID).Order("created_at ASC").Find(&topics).Error
	return topics, err
}

func (r *topicRepository) DeleteOwned(db *gorm.DB, id, userID string) error {
	result := db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Topic{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Чужой и несуществующий топик неотличимы для клиента
		return ErrTopicNotFound
	}
	return nil
}
