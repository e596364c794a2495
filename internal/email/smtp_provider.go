package email

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// SMTPProvider реализует Provider поверх gomail
type SMTPProvider struct {
	config   *SMTPConfig
	dialer   *gomail.Dialer
	renderer *TemplateManager
}

// NewSMTPProvider создает новый SMTP провайдер
func NewSMTPProvider(config *SMTPConfig) (*SMTPProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid email config: %w", err)
	}

	port := config.Port
	if port == 0 {
		port = 587
	}

	return &SMTPProvider{
		config:   config,
		dialer:   gomail.NewDialer(config.Host, port, config.Username, config.Password),
		renderer: NewTemplateManager(),
	}, nil
}

// Send отправляет email сообщение
func (p *SMTPProvider) Send(email *Email) error {
	if len(email.To) == 0 {
		return fmt.Errorf("no recipients specified")
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", p.config.FromEmail, p.config.FromName)
	m.SetHeader("To", email.To...)
	m.SetHeader("Subject", email.Subject)
	if email.Body != "" {
		m.SetBody("text/plain", email.Body)
	}
	if email.HTMLBody != "" {
		if email.Body != "" {
			m.AddAlternative("text/html", email.HTMLBody)
		} else {
			m.SetBody("text/html", email.HTMLBody)
		}
	}

	if err := p.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// SendVerification отправляет письмо с токеном верификации
func (p *SMTPProvider) SendVerification(to string, token string) error {
	htmlBody, err := p.renderer.Render("verification", TemplateData{
		ActionURL:  fmt.Sprintf("%s/verify-email?token=%s", p.config.BaseURL, token),
		ActionText: "Подтвердить email",
		FromName:   p.config.FromName,
	})
	if err != nil {
		return err
	}

	return p.Send(&Email{
		To:       []string{to},
		Subject:  "Подтверждение email",
		HTMLBody: htmlBody,
	})
}

// SendPasswordReset отправляет ссылку для сброса пароля
func (p *SMTPProvider) SendPasswordReset(to string, token string) error {
	htmlBody, err := p.renderer.Render("password_reset", TemplateData{
		ActionURL:  fmt.Sprintf("%s/reset-password?token=%s", p.config.BaseURL, token),
		ActionText: "Сбросить пароль",
		FromName:   p.config.FromName,
	})
	if err != nil {
		return err
	}

	return p.Send(&Email{
		To:       []string{to},
		Subject:  "Сброс пароля",
		HTMLBody: htmlBody,
	})
}

// Close закрывает провайдер. Gomail открывает соединение на каждую
// отправку, поэтому здесь нечего закрывать.
func (p *SMTPProvider) Close() error {
	return nil
}
