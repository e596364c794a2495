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

// UserService - администрирование пользователей и self-service профиля.
// Запреты "сам себе" (удаление, смена роли) живут здесь, а не в роутах:
// actingUserID сравнивается с целью в каждом админском методе.
type UserService interface {
	ListUsers(db *gorm.DB) ([]dto.UserListItem, error)
	SetRole(db *gorm.DB, actingUserID, targetUserID, role string) error
	DeleteUser(db *gorm.DB, actingUserID, targetUserID string) error
	UpdateName(db *gorm.DB, userID, firstName, lastName string) (*models.User, error)
	GetByID(db *gorm.DB, userID string) (*models.User, error)
}

type UserServiceImpl struct {
	userRepo       repositories.UserRepository
	sessionService SessionService
}

func NewUserService(userRepo repositories.UserRepository, sessionService SessionService) UserService {
	return &UserServiceImpl{
		userRepo:       userRepo,
		sessionService: sessionService,
	}
}

// ListUsers возвращает публичные поля всех пользователей.
// Хеши паролей наружу не выходят.
func (s *UserServiceImpl) ListUsers(db *gorm.DB) ([]dto.UserListItem, error) {
	users, err := s.userRepo.FindAll(db)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	items := make([]dto.UserListItem, 0, len(users))
	for i := range users {
		items = append(items, userToListItem(&users[i]))
	}
	return items, nil
}

func userToListItem(u *models.User) dto.UserListItem {
	item := dto.UserListItem{
		ID:            u.ID,
		Email:         u.Email,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		DisplayName:   u.DisplayName,
		Role:          string(u.Role),
		EmailVerified: u.IsVerified,
		CreatedAt:     u.CreatedAt.Format(time.RFC3339),
	}
	if u.LastLoginAt != nil {
		formatted := u.LastLoginAt.Format(time.RFC3339)
		item.LastLoginAt = &formatted
	}
	return item
}

// SetRole назначает роль пользователю. Смена собственной роли запрещена.
// Живые сессии цели не обновляются: прежняя роль остается в сессии
// до следующего логина.
func (s *UserServiceImpl) SetRole(db *gorm.DB, actingUserID, targetUserID, role string) error {
	if actingUserID == targetUserID {
		return apperrors.ErrCannotModifySelf
	}

	userRole := models.UserRole(role)
	if !models.ValidRole(userRole) {
		return apperrors.ErrInvalidRole
	}

	if err := s.userRepo.UpdateRole(db, targetUserID, userRole); err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.ErrUserNotFound
		}
		return apperrors.InternalError(err)
	}
	return nil
}

// DeleteUser удаляет пользователя вместе с токенами, сессиями и темами.
// Удаление самого себя запрещено.
func (s *UserServiceImpl) DeleteUser(db *gorm.DB, actingUserID, targetUserID string) error {
	if actingUserID == targetUserID {
		return apperrors.ErrCannotModifySelf
	}

	if err := s.userRepo.Delete(db, targetUserID); err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.ErrUserNotFound
		}
		return apperrors.InternalError(err)
	}
	return nil
}

// UpdateName обновляет имя и пересчитывает displayName.
// Живые сессии пользователя получают свежий снапшот.
func (s *UserServiceImpl) UpdateName(db *gorm.DB, userID, firstName, lastName string) (*models.User, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if firstName == "" || lastName == "" {
		return nil, apperrors.ErrInvalidName
	}

	displayName := firstName + " " + lastName
	if err := s.userRepo.UpdateName(db, userID, firstName, lastName, displayName); err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	if err := s.sessionService.RefreshUserSnapshot(db, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserServiceImpl) GetByID(db *gorm.DB, userID string) (*models.User, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	return user, nil
}
