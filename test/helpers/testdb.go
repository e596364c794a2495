package helpers

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"topicbrief_backend/internal/auth"
	"topicbrief_backend/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// CreateUser создает пользователя в транзакции. Сырой пароль в поле
// PasswordHash хешируется автоматически.
func CreateUser(t *testing.T, tx *gorm.DB, user *models.User) {
	if user.PasswordHash != "" && !strings.HasPrefix(user.PasswordHash, "$2a$") {
		hash, err := auth.HashPassword(user.PasswordHash)
		require.NoError(t, err, "Не удалось хешировать пароль")
		user.PasswordHash = hash
	}
	if user.Role == "" {
		user.Role = models.UserRoleUser
	}
	if user.DisplayName == "" {
		user.DisplayName = user.FirstName + " " + user.LastName
	}
	user.IsVerified = true

	require.NoError(t, tx.Create(user).Error, "Не удалось создать пользователя %s", user.Email)
}

// CreateAndLoginUser создает верифицированного пользователя и логинит
// его через API. Возвращает сессионный токен из куки.
func CreateAndLoginUser(t *testing.T, ts *TestServer, tx *gorm.DB, firstName, lastName, email, password string, role models.UserRole) (string, *models.User) {
	user := &models.User{
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		PasswordHash: password, // сырой, CreateUser захеширует
		Role:         role,
	}
	CreateUser(t, tx, user)

	loginBody := map[string]interface{}{
		"email":    email,
		"password": password,
	}
	rec, bodyStr := ts.SendRequest(t, tx, http.MethodPost, "/login", "", loginBody)
	require.Equal(t, http.StatusOK, rec.Code, "Логин должен быть успешным. Ответ: "+bodyStr)

	token := ts.SessionCookie(rec)
	require.NotEmpty(t, token, "Сессионная кука не должна быть пустой")

	return token, user
}

// CreateAndLoginAdmin создает администратора с уникальным email
func CreateAndLoginAdmin(t *testing.T, ts *TestServer, tx *gorm.DB) (string, *models.User) {
	email := fmt.Sprintf("admin_%d@test.com", time.Now().UnixNano())
	return CreateAndLoginUser(t, ts, tx, "Админ", "Тестовый", email, "password123", models.UserRoleAdmin)
}

// CreateAndLoginMember создает обычного пользователя с уникальным email
func CreateAndLoginMember(t *testing.T, ts *TestServer, tx *gorm.DB) (string, *models.User) {
	email := fmt.Sprintf("user_%d@test.com", time.Now().UnixNano())
	return CreateAndLoginUser(t, ts, tx, "Пользователь", "Тестовый", email, "password123", models.UserRoleUser)
}
