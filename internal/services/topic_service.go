package services

import (
	"strings"
	"time"

	"topicbrief_backend/internal/models"
	"topicbrief_backend/internal/repositories"
	"topicbrief_backend/internal/services/dto"
	"topicbrief_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// TopicService - подписки пользователя на темы дайджеста.
// Пользователь видит и удаляет только собственные темы.
type TopicService interface {
	List(db *gorm.DB, userID string) ([]dto.TopicItem, error)
	Create(db *gorm.DB, userID, name string) (*dto.TopicItem, error)
	Delete(db *gorm.DB, userID, topicID string) error
}

type TopicServiceImpl struct {
	topicRepo repositories.TopicRepository
}

func NewTopicService(topicRepo repositories.TopicRepository) TopicService {
	return &TopicServiceImpl{topicRepo: topicRepo}
}

func (s *TopicServiceImpl) List(db *gorm.DB, userID string) ([]dto.TopicItem, error) {
	topics, err := s.topicRepo.FindByUserID(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	items := make([]dto.TopicItem, 0, len(topics))
	for _, t := range topics {
		items = append(items, topicToItem(&t))
	}
	return items, nil
}

func (s *TopicServiceImpl) Create(db *gorm.DB, userID, name string) (*dto.TopicItem, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewBadRequestError("Название темы не может быть пустым")
	}

	topic := &models.Topic{
		UserID: userID,
		Name:   name,
	}
	if err := s.topicRepo.Create(db, topic); err != nil {
		return nil, apperrors.InternalError(err)
	}
	item := topicToItem(topic)
	return &item, nil
}

// Delete удаляет тему только если она принадлежит пользователю.
// Чужая тема неотличима от несуществующей.
func (s *TopicServiceImpl) Delete(db *gorm.DB, userID, topicID string) error {
	if err := s.topicRepo.DeleteOwned(db, topicID, userID); err != nil {
		if apperrors.Is(err, repositories.ErrTopicNotFound) {
			return apperrors.ErrTopicNotFound
		}
		return apperrors.InternalError(err)
	}
	return nil
}

func topicToItem(t *models.Topic) dto.TopicItem {
	return dto.TopicItem{
		ID:        t.ID,
		Name:      t.Name,
		CreatedAt: t.CreatedAt.Format(time.RFC3339),
	}
}
