package models

import "time"

type User struct {
	BaseModel
	Email string `gorm:"uniqueIndex;not null"`
	// PasswordHash пустой для аккаунтов, созданных через SSO
	PasswordHash string
	FirstName    string `gorm:"not null"`
	LastName     string `gorm:"not null"`
	// DisplayName фиксируется при последнем обновлении имени
	// и не пересчитывается другими путями
	DisplayName string
	Role        UserRole `gorm:"type:varchar(20);not null;default:'user'"`
	IsVerified  bool     `gorm:"default:false"`
	// MicrosoftID заполняется только в legacy SSO модели
	MicrosoftID string `gorm:"index"`
	LastLoginAt *time.Time

	// Relations
	VerificationTokens  []VerificationToken  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	PasswordResetTokens []PasswordResetToken `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Sessions            []Session            `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Topics              []Topic              `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

type VerificationToken struct {
	BaseModel
	UserID    string    `gorm:"not null;index"`
	Token     string    `gorm:"not null;uniqueIndex"`
	ExpiresAt time.Time `gorm:"not null"`
}

type PasswordResetToken struct {
	BaseModel
	UserID    string    `gorm:"not null;index"`
	Token     string    `gorm:"not null;uniqueIndex"`
	ExpiresAt time.Time `gorm:"not null"`
}

// AllowedDomain - белый список доменов для legacy SSO модели
type AllowedDomain struct {
	BaseModel
	Domain  string `gorm:"not null;uniqueIndex"`
	AddedBy string `gorm:"not null"`
}
