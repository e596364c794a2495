package models

// Topic - элемент персонального списка тем пользователя
type Topic struct {
	BaseModel
	UserID string `gorm:"not null;index"`
	Name   string `gorm:"not null"`
}

// Setting - системная настройка (key-value), управляется админом
type Setting struct {
	Key   string `gorm:"primaryKey"`
	Value string `gorm:"not null"`
}
