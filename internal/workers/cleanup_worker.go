package workers

import (
	"context"
	"time"

	"topicbrief_backend/internal/logger"
	"topicbrief_backend/internal/models"
	"topicbrief_backend/internal/repositories"

	"gorm.io/gorm"
)

// CleanupWorker периодически удаляет протухшие строки: истекшие сессии
// и просроченные одноразовые токены. Репозитории и так не отдают
// просроченные записи (lazy expiry), воркер только не дает таблицам
// расти бесконечно.
type CleanupWorker struct {
	db          *gorm.DB
	sessionRepo repositories.SessionRepository
	interval    time.Duration
}

func NewCleanupWorker(db *gorm.DB, sessionRepo repositories.SessionRepository) *CleanupWorker {
	return &CleanupWorker{
		db:          db,
		sessionRepo: sessionRepo,
		interval:    time.Hour,
	}
}

// Start запускает фоновую очистку. Останавливается через отмену контекста.
func (w *CleanupWorker) Start(ctx context.Context) {
	go w.run(ctx)
}

func (w *CleanupWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Cleanup worker stopped")
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *CleanupWorker) sweep() {
	if err := w.sessionRepo.CleanExpired(w.db); err != nil {
		logger.Error("Failed to clean expired sessions", "error", err)
	}

	now := time.Now()
	if err := w.db.Where("expires_at <= ?", now).
		Delete(&models.VerificationToken{}).Error; err != nil {
		logger.Error("Failed to clean expired verification tokens", "error", err)
	}
	if err := w.db.Where("expires_at <= ?", now).
		Delete(&models.PasswordResetToken{}).Error; err != nil {
		logger.Error("Failed to clean expired password reset tokens", "error", err)
	}
}
