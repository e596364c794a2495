package email

import (
	"fmt"
	"html/template"
	"strings"
	"sync"
)

// TemplateManager хранит и рендерит html-шаблоны писем
type TemplateManager struct {
	templates map[string]*template.Template
	mutex     sync.RWMutex
}

// NewTemplateManager создает менеджер с встроенными шаблонами
func NewTemplateManager() *TemplateManager {
	tm := &TemplateManager{
		templates: make(map[string]*template.Template),
	}

	// Встроенные шаблоны; ошибки здесь невозможны, шаблоны статичны
	_ = tm.AddTemplate("verification", verificationTemplate)
	_ = tm.AddTemplate("password_reset", passwordResetTemplate)

	return tm
}

// Render рендерит шаблон с данными
func (tm *TemplateManager) Render(templateName string, data TemplateData) (string, error) {
	tm.mutex.RLock()
	tpl, exists := tm.templates[templateName]
	tm.mutex.RUnlock()

	if !exists {
		return "", fmt.Errorf("template not found: %s", templateName)
	}

	var buf strings.Builder
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

// AddTemplate добавляет шаблон в менеджер
func (tm *TemplateManager) AddTemplate(name string, templateStr string) error {
	tpl, err := template.New(name).Parse(templateStr)
	if err != nil {
		return fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	tm.mutex.Lock()
	tm.templates[name] = tpl
	tm.mutex.Unlock()

	return nil
}

const verificationTemplate = `
<html>
<body>
  <h2>Подтвердите ваш email</h2>
  <p>Здравствуйте{{if .UserName}}, {{.UserName}}{{end}}!</p>
  <p>Чтобы завершить регистрацию, перейдите по ссылке (действует 24 часа):</p>
  <p><a href="{{.ActionURL}}">{{.ActionText}}</a></p>
  <p>Если вы не регистрировались, просто проигнорируйте это письмо.</p>
  <p>— {{.FromName}}</p>
</body>
</html>`

const passwordResetTemplate = `
<html>
<body>
  <h2>Сброс пароля</h2>
  <p>Здравствуйте{{if .UserName}}, {{.UserName}}{{end}}!</p>
  <p>Мы получили запрос на сброс пароля. Ссылка действует 1 час:</p>
  <p><a href="{{.ActionURL}}">{{.ActionText}}</a></p>
  <p>Если вы не запрашивали сброс, проигнорируйте это письмо.</p>
  <p>— {{.FromName}}</p>
</body>
</html>`
