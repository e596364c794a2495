package integration_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"topicbrief_backend/internal/models"
	"topicbrief_backend/test/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAuthFlow - регистрация, логин и /me в degraded mode (без SMTP)
func TestAuthFlow(t *testing.T) {
	t.Parallel()

	// 1. Подготовка (Arrange)
	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	email := fmt.Sprintf("flow_%d@test.com", time.Now().UnixNano())
	registerBody := map[string]interface{}{
		"firstName": "Интеграция",
		"lastName":  "Тестова",
		"email":     email,
		"password":  "super_password123",
	}

	// 2. Действие: регистрация (Act)
	regRec, regBody := ts.SendRequest(t, tx, http.MethodPost, "/register", "", registerBody)

	// 3. Проверка (Assert): без SMTP аккаунт сразу верифицирован
	require.Equal(t, http.StatusOK, regRec.Code, "Ответ: "+regBody)

	// Логин
	loginBody := map[string]interface{}{
		"email":    email,
		"password": "super_password123",
	}
	loginRec, loginRespBody := ts.SendRequest(t, tx, http.MethodPost, "/login", "", loginBody)
	require.Equal(t, http.StatusOK, loginRec.Code, "Ответ: "+loginRespBody)

	token := ts.SessionCookie(loginRec)
	require.NotEmpty(t, token)

	// /me видит свежую сессию
	meRec, meBody := ts.SendRequest(t, tx, http.MethodGet, "/me", token, nil)
	assert.Equal(t, http.StatusOK, meRec.Code)
	assert.Contains(t, meBody, email)
	assert.Contains(t, meBody, "Интеграция Тестова")
}

// TestLogin_WrongPassword - одинаковая ошибка для неверного пароля
// и несуществующего аккаунта
func TestLogin_WrongPassword(t *testing.T) {
	t.Parallel()

	// 1. Подготовка
	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	_, user := helpers.CreateAndLoginMember(t, ts, tx)

	// 2. Действие
	wrongRec, wrongBody := ts.SendRequest(t, tx, http.MethodPost, "/login", "", map[string]interface{}{
		"email":    user.Email,
		"password": "not-the-password",
	})
	ghostRec, ghostBody := ts.SendRequest(t, tx, http.MethodPost, "/login", "", map[string]interface{}{
		"email":    "ghost@test.com",
		"password": "whatever123",
	})

	// 3. Проверка: тела ответов неотличимы
	assert.Equal(t, http.StatusUnauthorized, wrongRec.Code)
	assert.Equal(t, http.StatusUnauthorized, ghostRec.Code)
	assert.JSONEq(t, wrongBody, ghostBody)
}

// TestLogout_KillsSession - после logout кука мертва
func TestLogout_KillsSession(t *testing.T) {
	t.Parallel()

	// 1. Подготовка
	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	token, _ := helpers.CreateAndLoginMember(t, ts, tx)

	// 2. Действие
	outRec, _ := ts.SendRequest(t, tx, http.MethodPost, "/logout", token, nil)
	require.Equal(t, http.StatusOK, outRec.Code)

	// 3. Проверка: старая кука больше не работает
	meRec, _ := ts.SendRequest(t, tx, http.MethodGet, "/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, meRec.Code)
}

// TestChangePassword_Flow - смена пароля: старый умирает, новый работает
func TestChangePassword_Flow(t *testing.T) {
	t.Parallel()

	// 1. Подготовка
	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	token, user := helpers.CreateAndLoginMember(t, ts, tx)

	// 2. Действие
	chRec, chBody := ts.SendRequest(t, tx, http.MethodPatch, "/profile/password", token, map[string]interface{}{
		"currentPassword": "password123",
		"newPassword":     "brand_new_secret1",
	})
	require.Equal(t, http.StatusOK, chRec.Code, "Ответ: "+chBody)

	// 3. Проверка
	oldRec, _ := ts.SendRequest(t, tx, http.MethodPost, "/login", "", map[string]interface{}{
		"email":    user.Email,
		"password": "password123",
	})
	assert.Equal(t, http.StatusUnauthorized, oldRec.Code)

	newRec, _ := ts.SendRequest(t, tx, http.MethodPost, "/login", "", map[string]interface{}{
		"email":    user.Email,
		"password": "brand_new_secret1",
	})
	assert.Equal(t, http.StatusOK, newRec.Code)
}

// TestUpdateName_RefreshesSnapshot - смена имени видна в /me без релогина
func TestUpdateName_RefreshesSnapshot(t *testing.T) {
	t.Parallel()

	// 1. Подготовка
	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	token, _ := helpers.CreateAndLoginMember(t, ts, tx)

	// 2. Действие
	upRec, upBody := ts.SendRequest(t, tx, http.MethodPatch, "/profile/name", token, map[string]interface{}{
		"firstName": "Новое",
		"lastName":  "Имя",
	})
	require.Equal(t, http.StatusOK, upRec.Code, "Ответ: "+upBody)

	// 3. Проверка
	meRec, meBody := ts.SendRequest(t, tx, http.MethodGet, "/me", token, nil)
	assert.Equal(t, http.StatusOK, meRec.Code)
	assert.Contains(t, meBody, "Новое Имя")
}

// TestRegister_DuplicateEmail - повторная регистрация отклоняется
func TestRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()

	// 1. Подготовка
	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	_, user := helpers.CreateAndLoginMember(t, ts, tx)

	// 2. Действие: тот же email в другом регистре
	rec, body := ts.SendRequest(t, tx, http.MethodPost, "/register", "", map[string]interface{}{
		"firstName": "Дубль",
		"lastName":  "Дублев",
		"email":     "USER_" + user.Email[5:], // верхний регистр префикса
		"password":  "password123",
	})

	// 3. Проверка: конфликт email отдается как 400
	assert.Equal(t, http.StatusBadRequest, rec.Code, "Ответ: "+body)
}

// TestBootstrapAdmin_Unclaimed - без BOOTSTRAP_ADMIN_EMAIL все получают role=user
func TestBootstrapAdmin_Unclaimed(t *testing.T) {
	t.Parallel()

	// 1. Подготовка
	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	email := fmt.Sprintf("plain_%d@test.com", time.Now().UnixNano())

	// 2. Действие
	rec, _ := ts.SendRequest(t, tx, http.MethodPost, "/register", "", map[string]interface{}{
		"firstName": "Обычный",
		"lastName":  "Юзер",
		"email":     email,
		"password":  "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// 3. Проверка
	var created models.User
	require.NoError(t, tx.Where("email = ?", email).First(&created).Error)
	assert.Equal(t, models.UserRoleUser, created.Role)
}
