package models

type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

// ValidRole проверяет, что роль входит в множество {user, admin}
func ValidRole(r UserRole) bool {
	return r == UserRoleUser || r == UserRoleAdmin
}
