package email

// Email представляет структуру email сообщения
type Email struct {
	To       []string
	Subject  string
	Body     string
	HTMLBody string
}

// TemplateData базовая структура для данных шаблонов
type TemplateData struct {
	UserName   string
	ActionURL  string
	ActionText string
	FromName   string
}

// SMTPConfig конфигурация SMTP провайдера
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
	// BaseURL - база для ссылок верификации/сброса в письмах
	BaseURL string
}

// Validate проверяет минимально необходимую конфигурацию
func (c *SMTPConfig) Validate() error {
	if c.Host == "" {
		return ErrNoSMTPHost
	}
	if c.FromEmail == "" {
		return ErrNoFromEmail
	}
	return nil
}
