package email

import "errors"

var (
	ErrNoSMTPHost  = errors.New("smtp host is not configured")
	ErrNoFromEmail = errors.New("from email is not configured")
)

// Provider определяет интерфейс для отправки email.
//
// Сервисы получают nil Provider, когда почта не настроена -
// это и есть "degraded mode": верификация email пропускается.
type Provider interface {
	// Send отправляет простое email сообщение
	Send(email *Email) error

	// SendVerification отправляет письмо верификации.
	// Ошибка отправки критична: регистрация на нее откатывается.
	SendVerification(to string, token string) error

	// SendPasswordReset отправляет ссылку для сброса пароля
	SendPasswordReset(to string, token string) error

	// Close закрывает соединение с провайдером
	Close() error
}
