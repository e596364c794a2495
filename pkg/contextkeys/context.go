package contextkeys

// Используем кастомный тип, чтобы избежать коллизий
type contextKey string

// DBContextKey - это ключ, по которому мы храним *gorm.DB в context
const DBContextKey = contextKey("db")

// SessionUserKey - ключ gin.Context со снапшотом текущего пользователя
const SessionUserKey = "sessionUser"

// SessionTokenKey - ключ gin.Context с токеном текущей сессии
const SessionTokenKey = "sessionToken"
