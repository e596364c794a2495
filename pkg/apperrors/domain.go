package apperrors

import (
	"net/http"
)

/*
Этот файл содержит предопределенные переменные
для ошибок бизнес-логики аутентификации и администрирования.
*/

// --- Auth ---

// ErrWeakPassword - пароль короче 8 символов.
var ErrWeakPassword = New(
	CodeValidationFailed,
	"validation",
	"Password is too weak. Minimum 8 characters required.",
	http.StatusBadRequest,
)

// ErrInvalidName - имя или фамилия пустые после trim.
var ErrInvalidName = New(
	CodeValidationFailed,
	"validation",
	"First name and last name must not be empty",
	http.StatusBadRequest,
)

// ErrEmailAlreadyExists - email уже используется.
var ErrEmailAlreadyExists = New(
	CodeAlreadyExists,
	"auth",
	"Email already in use",
	http.StatusBadRequest,
)

// ErrInvalidCredentials - неверный email или пароль.
// Одна и та же ошибка для "нет такого пользователя" и "неверный пароль",
// чтобы не раскрывать существование аккаунта.
var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid email or password",
	http.StatusUnauthorized,
)

// ErrEmailNotVerified - email не подтвержден, вход запрещен.
var ErrEmailNotVerified = New(
	CodeEmailNotVerified,
	"auth",
	"Email is not verified. Please check your inbox.",
	http.StatusUnauthorized,
)

// ErrInvalidToken - неверный или просроченный токен (verify, reset, session).
var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid or expired token",
	http.StatusBadRequest,
)

// ErrInvalidCurrentPassword - текущий пароль не подошел при смене пароля.
var ErrInvalidCurrentPassword = New(
	CodeInvalidCredentials,
	"auth",
	"Current password is incorrect",
	http.StatusBadRequest,
)

// ErrEmailDeliveryFailed - письмо не отправилось; регистрация откатывается.
var ErrEmailDeliveryFailed = New(
	CodeExternalServiceError,
	"email",
	"Failed to send verification email",
	http.StatusInternalServerError,
)

// --- Admin ---

// ErrUserNotFound - пользователь не найден.
var ErrUserNotFound = New(
	CodeNotFound,
	"users",
	"User not found",
	http.StatusNotFound,
)

// ErrInvalidRole - роль не входит в {user, admin}.
var ErrInvalidRole = New(
	CodeValidationFailed,
	"users",
	"Invalid role. Allowed roles: user, admin",
	http.StatusBadRequest,
)

// ErrCannotModifySelf - админ пытается удалить или понизить сам себя.
var ErrCannotModifySelf = New(
	CodeInvalidOperation,
	"users",
	"Operation on own account is not allowed",
	http.StatusBadRequest,
)

// --- SSO ---

// ErrDomainNotAllowed - домен email не в белом списке.
var ErrDomainNotAllowed = New(
	CodeDomainNotAllowed,
	"sso",
	"Email domain is not allowed",
	http.StatusForbidden,
)

// ErrInvalidDomain - строка домена не похожа на hostname.
var ErrInvalidDomain = New(
	CodeValidationFailed,
	"sso",
	"Invalid domain format",
	http.StatusBadRequest,
)

// ErrDomainAlreadyExists - домен уже в белом списке.
var ErrDomainAlreadyExists = New(
	CodeAlreadyExists,
	"sso",
	"Domain already in whitelist",
	http.StatusBadRequest,
)

// --- Topics ---

// ErrTopicNotFound - топик не найден или принадлежит другому пользователю.
var ErrTopicNotFound = New(
	CodeNotFound,
	"topics",
	"Topic not found",
	http.StatusNotFound,
)
