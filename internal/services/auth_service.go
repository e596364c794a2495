package services

import (
	"strings"
	"time"

	"topicbrief_backend/internal/auth"
	"topicbrief_backend/internal/email"
	"topicbrief_backend/internal/logger"
	"topicbrief_backend/internal/models"
	"topicbrief_backend/internal/repositories"
	"topicbrief_backend/internal/services/dto"
	"topicbrief_backend/pkg/apperrors"

	"gorm.io/gorm"
)

const (
	verificationTokenTTL = 24 * time.Hour
	resetTokenTTL        = time.Hour
)

type AuthService interface {
	Register(db *gorm.DB, req *dto.RegisterRequest) error
	VerifyEmailToken(db *gorm.DB, token string) error
	Login(db *gorm.DB, req *dto.LoginRequest) (*models.UserSnapshot, error)
	RequestPasswordReset(db *gorm.DB, emailAddr string) error
	CreatePasswordResetToken(db *gorm.DB, emailAddr string) (string, error)
	VerifyPasswordResetToken(db *gorm.DB, token string) (string, error)
	ResetPasswordWithToken(db *gorm.DB, token, newPassword string) error
	ChangePassword(db *gorm.DB, userID, currentPassword, newPassword string) error
}

type AuthServiceImpl struct {
	userRepo  repositories.UserRepository
	tokenRepo repositories.TokenRepository
	// emailProvider == nil означает degraded mode:
	// верификация email пропускается целиком
	emailProvider email.Provider
	// bootstrapAdminEmail при первом появлении получает роль admin
	bootstrapAdminEmail string
}

func NewAuthService(
	userRepo repositories.UserRepository,
	tokenRepo repositories.TokenRepository,
	emailProvider email.Provider,
	bootstrapAdminEmail string,
) AuthService {
	return &AuthServiceImpl{
		userRepo:            userRepo,
		tokenRepo:           tokenRepo,
		emailProvider:       emailProvider,
		bootstrapAdminEmail: strings.ToLower(strings.TrimSpace(bootstrapAdminEmail)),
	}
}

// NormalizeEmail приводит email к канонической форме (lowercase).
// Все поиски по email работают только с нормализованной формой.
func NormalizeEmail(emailAddr string) string {
	return strings.ToLower(strings.TrimSpace(emailAddr))
}

// Register - регистрация нового пользователя.
// Если почта настроена, регистрация атомарна относительно письма
// верификации: при ошибке отправки созданный пользователь удаляется.
func (s *AuthServiceImpl) Register(db *gorm.DB, req *dto.RegisterRequest) error {
	emailAddr := NormalizeEmail(req.Email)
	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)

	if firstName == "" || lastName == "" {
		return apperrors.ErrInvalidName
	}
	if !auth.ValidatePassword(req.Password) {
		return apperrors.ErrWeakPassword
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return apperrors.InternalError(err)
	}

	role := models.UserRoleUser
	if s.bootstrapAdminEmail != "" && emailAddr == s.bootstrapAdminEmail {
		role = models.UserRoleAdmin
	}

	mailConfigured := s.emailProvider != nil

	user := &models.User{
		Email:        emailAddr,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
		DisplayName:  firstName + " " + lastName,
		Role:         role,
		// Без настроенной почты верификация пропускается
		IsVerified: !mailConfigured,
	}

	if err := s.userRepo.Create(db, user); err != nil {
		if apperrors.Is(err, repositories.ErrUserAlreadyExists) {
			return apperrors.ErrEmailAlreadyExists
		}
		return apperrors.InternalError(err)
	}

	if !mailConfigured {
		logger.Info("user registered without email verification (mail not configured)", "email", emailAddr)
		return nil
	}

	token, err := auth.NewRandomToken()
	if err != nil {
		s.rollbackUser(db, user.ID)
		return apperrors.InternalError(err)
	}

	verification := &models.VerificationToken{
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: time.Now().Add(verificationTokenTTL),
	}
	if err := s.tokenRepo.CreateVerification(db, verification); err != nil {
		s.rollbackUser(db, user.ID)
		return apperrors.InternalError(err)
	}

	// Отправка синхронная: регистрация либо завершается с письмом,
	// либо не завершается вовсе
	if err := s.emailProvider.SendVerification(user.Email, token); err != nil {
		logger.Error("verification email send failed, rolling back registration", "email", emailAddr, "error", err)
		s.rollbackUser(db, user.ID)
		return apperrors.ErrEmailDeliveryFailed
	}

	return nil
}

// rollbackUser удаляет частично созданного пользователя.
// Ошибка отката только логируется: исходная ошибка важнее.
func (s *AuthServiceImpl) rollbackUser(db *gorm.DB, userID string) {
	if err := s.userRepo.Delete(db, userID); err != nil {
		logger.Error("failed to roll back partially created user", "user_id", userID, "error", err)
	}
}

// VerifyEmailToken подтверждает email по токену из письма.
// Токен одноразовый: повторное использование вернет ошибку.
func (s *AuthServiceImpl) VerifyEmailToken(db *gorm.DB, token string) error {
	userID, err := s.tokenRepo.ConsumeVerification(db, token)
	if err != nil {
		if apperrors.Is(err, repositories.ErrTokenNotFound) {
			return apperrors.ErrInvalidToken
		}
		return apperrors.InternalError(err)
	}

	if err := s.userRepo.MarkVerified(db, userID); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

// Login - аутентификация по email и паролю.
// Несуществующий аккаунт и неверный пароль неразличимы для клиента.
func (s *AuthServiceImpl) Login(db *gorm.DB, req *dto.LoginRequest) (*models.UserSnapshot, error) {
	user, err := s.userRepo.FindByEmail(db, NormalizeEmail(req.Email))
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.InternalError(err)
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}

	if !user.IsVerified {
		return nil, apperrors.ErrEmailNotVerified
	}

	if err := s.userRepo.UpdateLastLogin(db, user.ID); err != nil {
		logger.Warn("failed to update last login", "user_id", user.ID, "error", err)
	}

	snapshot := models.SnapshotFromUser(user)
	return &snapshot, nil
}

// RequestPasswordReset - запрос сброса пароля.
// Ответ одинаков независимо от существования аккаунта.
func (s *AuthServiceImpl) RequestPasswordReset(db *gorm.DB, emailAddr string) error {
	token, err := s.CreatePasswordResetToken(db, emailAddr)
	if err != nil {
		return err
	}
	if token == "" {
		// Аккаунта нет - молча успех, существование не раскрываем
		return nil
	}

	if s.emailProvider == nil {
		logger.Warn("password reset requested but mail is not configured", "email", NormalizeEmail(emailAddr))
		return nil
	}

	if err := s.emailProvider.SendPasswordReset(NormalizeEmail(emailAddr), token); err != nil {
		logger.Error("password reset email send failed", "error", err)
		return apperrors.ErrEmailDeliveryFailed
	}
	return nil
}

// CreatePasswordResetToken создает токен сброса для пользователя.
// Возвращает пустую строку без ошибки, если аккаунта нет.
// Прежние токены сброса этого пользователя удаляются.
func (s *AuthServiceImpl) CreatePasswordResetToken(db *gorm.DB, emailAddr string) (string, error) {
	user, err := s.userRepo.FindByEmail(db, NormalizeEmail(emailAddr))
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return "", nil
		}
		return "", apperrors.InternalError(err)
	}

	if err := s.tokenRepo.DeleteResetByUserID(db, user.ID); err != nil {
		return "", apperrors.InternalError(err)
	}

	token, err := auth.NewRandomToken()
	if err != nil {
		return "", apperrors.InternalError(err)
	}

	reset := &models.PasswordResetToken{
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: time.Now().Add(resetTokenTTL),
	}
	if err := s.tokenRepo.CreateReset(db, reset); err != nil {
		return "", apperrors.InternalError(err)
	}
	return token, nil
}

// VerifyPasswordResetToken - read-only проверка токена.
// Возвращает email владельца; токен при этом не расходуется.
func (s *AuthServiceImpl) VerifyPasswordResetToken(db *gorm.DB, token string) (string, error) {
	reset, err := s.tokenRepo.FindReset(db, token)
	if err != nil {
		if apperrors.Is(err, repositories.ErrTokenNotFound) {
			return "", apperrors.ErrInvalidToken
		}
		return "", apperrors.InternalError(err)
	}

	user, err := s.userRepo.FindByID(db, reset.UserID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return "", apperrors.ErrInvalidToken
		}
		return "", apperrors.InternalError(err)
	}
	return user.Email, nil
}

// ResetPasswordWithToken завершает сброс пароля.
// Токен расходуется атомарно только после валидации нового пароля:
// слабый пароль не сжигает токен.
func (s *AuthServiceImpl) ResetPasswordWithToken(db *gorm.DB, token, newPassword string) error {
	if _, err := s.tokenRepo.FindReset(db, token); err != nil {
		if apperrors.Is(err, repositories.ErrTokenNotFound) {
			return apperrors.ErrInvalidToken
		}
		return apperrors.InternalError(err)
	}

	if !auth.ValidatePassword(newPassword) {
		return apperrors.ErrWeakPassword
	}

	userID, err := s.tokenRepo.ConsumeReset(db, token)
	if err != nil {
		if apperrors.Is(err, repositories.ErrTokenNotFound) {
			// Параллельный запрос успел израсходовать токен
			return apperrors.ErrInvalidToken
		}
		return apperrors.InternalError(err)
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return apperrors.InternalError(err)
	}

	if err := s.userRepo.UpdatePassword(db, userID, hash); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

// ChangePassword - самостоятельная смена пароля из профиля.
// Другие сессии пользователя при этом не инвалидируются.
func (s *AuthServiceImpl) ChangePassword(db *gorm.DB, userID, currentPassword, newPassword string) error {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.ErrUserNotFound
		}
		return apperrors.InternalError(err)
	}

	if !auth.CheckPasswordHash(currentPassword, user.PasswordHash) {
		return apperrors.ErrInvalidCurrentPassword
	}

	if !auth.ValidatePassword(newPassword) {
		return apperrors.ErrWeakPassword
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return apperrors.InternalError(err)
	}

	if err := s.userRepo.UpdatePassword(db, userID, hash); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}
