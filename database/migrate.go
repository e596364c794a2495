package database

import (
	"fmt"

	"topicbrief_backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect открывает соединение с Postgres через GORM.
// TranslateError включен: нарушения уникальных индексов приходят
// как gorm.ErrDuplicatedKey, на этом держится разрешение гонок
// регистрации.
func Connect(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to GORM: %w", err)
	}
	return db, nil
}

// AutoMigrate выполняет миграцию всех моделей
func AutoMigrate(db *gorm.DB) error {
	// uuid_generate_v4() для первичных ключей
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return fmt.Errorf("failed to create uuid-ossp extension: %w", err)
	}

	return db.AutoMigrate(
		&models.User{},
		&models.VerificationToken{},
		&models.PasswordResetToken{},
		&models.Session{},
		&models.AllowedDomain{},
		&models.Topic{},
		&models.Setting{},
	)
}
