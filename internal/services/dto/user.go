package dto

// UpdateNameRequest — смена имени текущего пользователя.
type UpdateNameRequest struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
}

// SetRoleRequest — назначение роли администратором.
type SetRoleRequest struct {
	Role string `json:"role" validate:"required,is-user-role"`
}

// UserListItem — строка списка пользователей для админки.
type UserListItem struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	DisplayName   string `json:"displayName"`
	Role          string `json:"role"`
	EmailVerified bool   `json:"emailVerified"`
	CreatedAt     string `json:"createdAt"`
	LastLoginAt   *string `json:"lastLoginAt,omitempty"`
}

type AddDomainRequest struct {
	Domain string `json:"domain" validate:"required,max=255"`
}

type DomainItem struct {
	ID      string `json:"id"`
	Domain  string `json:"domain"`
	AddedBy string `json:"addedBy"`
}
