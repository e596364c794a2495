package models

import (
	"time"

	"gorm.io/datatypes"
)

// Session - серверная сессия. Клиенту выдается только непрозрачный Token
// в cookie; снапшот пользователя хранится на сервере.
type Session struct {
	BaseModel
	UserID    string         `gorm:"not null;index"`
	Token     string         `gorm:"not null;uniqueIndex"`
	Snapshot  datatypes.JSON `gorm:"not null"`
	ExpiresAt time.Time      `gorm:"not null"`
}

// UserSnapshot - явный, неизменяемый тип снапшота пользователя в сессии.
// Все поля перечислены; снапшот обновляется только целиком.
// Роль кэшируется до следующего логина: изменение роли админом не
// отражается в чужой живой сессии (задокументированное поведение).
type UserSnapshot struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	FirstName   string   `json:"firstName"`
	LastName    string   `json:"lastName"`
	DisplayName string   `json:"displayName"`
	Role        UserRole `json:"role"`
	IsVerified  bool     `json:"emailVerified"`
}

// SnapshotFromUser строит снапшот публичных полей пользователя.
// Хеш пароля в снапшот не попадает никогда.
func SnapshotFromUser(u *User) UserSnapshot {
	return UserSnapshot{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		DisplayName: u.DisplayName,
		Role:        u.Role,
		IsVerified:  u.IsVerified,
	}
}
