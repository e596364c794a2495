package helpers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"topicbrief_backend/database"
	"topicbrief_backend/internal/app"
	"topicbrief_backend/internal/config"
	"topicbrief_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TestServer - приложение, поднятое поверх тестовой БД.
// Запросы отправляются напрямую в роутер (без TCP), чтобы каждый тест
// мог подложить свою транзакцию в context запроса и откатить ее в конце.
type TestServer struct {
	Router     *gin.Engine
	DB         *gorm.DB
	CookieName string
}

// NewTestServer подключается к БД из TEST_DATABASE_URL, прогоняет
// миграции и собирает роутер. Без переменной окружения тест пропускается.
func NewTestServer(t *testing.T) *TestServer {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL не задан, интеграционные тесты пропущены")
	}

	gin.SetMode(gin.TestMode)

	db, err := database.Connect(dsn)
	if err != nil {
		t.Fatalf("Не удалось подключиться к тестовой БД (%s): %v", dsn, err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Не удалось выполнить миграции тестовой БД: %v", err)
	}

	// SMTP и SSO не настроены: degraded mode, парольные маршруты
	cfg := &config.Config{}
	cfg.Server.Env = "test"
	cfg.Database.DSN = dsn
	cfg.Session.CookieName = "session_token"
	cfg.Session.TTLHours = 24

	return &TestServer{
		Router:     app.SetupRouter(cfg, db),
		DB:         db,
		CookieName: cfg.Session.CookieName,
	}
}

func (ts *TestServer) Close() {
	sqlDB, err := ts.DB.DB()
	if err == nil {
		sqlDB.Close()
	}
}

// BeginTransaction открывает транзакцию для изоляции теста
func (ts *TestServer) BeginTransaction(t *testing.T) *gorm.DB {
	tx := ts.DB.Begin()
	if tx.Error != nil {
		t.Fatalf("Не удалось открыть транзакцию: %v", tx.Error)
	}
	return tx
}

// RollbackTransaction откатывает все изменения теста
func (ts *TestServer) RollbackTransaction(t *testing.T, tx *gorm.DB) {
	if err := tx.Rollback().Error; err != nil {
		t.Logf("Откат транзакции: %v", err)
	}
}

// SendRequest выполняет HTTP-запрос через роутер. Транзакция tx
// подкладывается в context запроса, DBMiddleware подхватит ее вместо
// основного соединения.
func (ts *TestServer) SendRequest(t *testing.T, tx *gorm.DB, method, path, sessionToken string, body interface{}) (*httptest.ResponseRecorder, string) {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Ошибка кодирования JSON для запроса: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req := httptest.NewRequest(method, path, reqBody)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sessionToken != "" {
		req.AddCookie(&http.Cookie{Name: ts.CookieName, Value: sessionToken})
	}
	if tx != nil {
		ctx := context.WithValue(req.Context(), contextkeys.DBContextKey, tx)
		req = req.WithContext(ctx)
	}

	rec := httptest.NewRecorder()
	ts.Router.ServeHTTP(rec, req)
	return rec, rec.Body.String()
}

// SessionCookie достает значение сессионной куки из ответа.
// Возвращает пустую строку, если кука не выставлялась.
func (ts *TestServer) SessionCookie(rec *httptest.ResponseRecorder) string {
	res := rec.Result()
	for _, c := range res.Cookies() {
		if c.Name == ts.CookieName {
			return c.Value
		}
	}
	return ""
}
