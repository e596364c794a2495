package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v2"
)

// Config - конфигурация всего приложения.
// Создается один раз при старте и передается по ссылке в конструкторы
// сервисов и middleware. Глобального синглтона нет.
type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Env  string `yaml:"env"`
	} `yaml:"server"`

	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`

	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUsername string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
		FromName     string `yaml:"from_name"`
		BaseURL      string `yaml:"base_url"` // база для ссылок в письмах
	} `yaml:"email"`

	Session struct {
		CookieName string `yaml:"cookie_name"`
		TTLHours   int    `yaml:"ttl_hours"`
		Secure     bool   `yaml:"secure"`
	} `yaml:"session"`

	CORS struct {
		// AllowedOrigins - белый список Origin для кросс-доменных
		// запросов с credentials. Пустой список запрещает CORS.
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"cors"`

	Admin struct {
		// BootstrapEmail - единственный email, который получает роль admin
		// автоматически при первом успешном создании аккаунта
		BootstrapEmail string `yaml:"bootstrap_email"`
	} `yaml:"admin"`

	SSO struct {
		ClientID     string `yaml:"client_id"`
		ClientSecret string `yaml:"client_secret"`
		TenantID     string `yaml:"tenant_id"`
		RedirectURL  string `yaml:"redirect_url"`
	} `yaml:"sso"`
}

// Load загружает конфигурацию: сначала config.yaml (если есть),
// потом переменные окружения поверх него.
func Load() (*Config, error) {
	cfg := &Config{}

	configPath := getenv("CONFIG_PATH", "config/config.yaml")
	if f, err := os.Open(configPath); err == nil {
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
		}
	}

	// Переменные окружения имеют приоритет над yaml
	cfg.Server.Host = getenv("SERVER_HOST", cfg.Server.Host)
	cfg.Server.Port = getint("SERVER_PORT", cfg.Server.Port)
	cfg.Server.Env = getenv("SERVER_ENV", cfg.Server.Env)
	cfg.Database.DSN = getenv("DATABASE_URL", cfg.Database.DSN)

	cfg.Email.SMTPHost = getenv("SMTP_HOST", cfg.Email.SMTPHost)
	cfg.Email.SMTPPort = getint("SMTP_PORT", cfg.Email.SMTPPort)
	cfg.Email.SMTPUsername = getenv("SMTP_USER", cfg.Email.SMTPUsername)
	cfg.Email.SMTPPassword = getenv("SMTP_PASSWORD", cfg.Email.SMTPPassword)
	cfg.Email.FromEmail = getenv("SMTP_FROM_EMAIL", cfg.Email.FromEmail)
	cfg.Email.FromName = getenv("SMTP_FROM_NAME", cfg.Email.FromName)
	cfg.Email.BaseURL = getenv("EMAIL_BASE_URL", cfg.Email.BaseURL)

	cfg.Session.CookieName = getenv("SESSION_COOKIE_NAME", cfg.Session.CookieName)
	cfg.Session.TTLHours = getint("SESSION_TTL_HOURS", cfg.Session.TTLHours)
	cfg.Session.Secure = getbool("SESSION_SECURE", cfg.Session.Secure)

	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.CORS.AllowedOrigins = nil
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.CORS.AllowedOrigins = append(cfg.CORS.AllowedOrigins, origin)
			}
		}
	}

	cfg.Admin.BootstrapEmail = getenv("BOOTSTRAP_ADMIN_EMAIL", cfg.Admin.BootstrapEmail)

	cfg.SSO.ClientID = getenv("SSO_CLIENT_ID", cfg.SSO.ClientID)
	cfg.SSO.ClientSecret = getenv("SSO_CLIENT_SECRET", cfg.SSO.ClientSecret)
	cfg.SSO.TenantID = getenv("SSO_TENANT_ID", cfg.SSO.TenantID)
	cfg.SSO.RedirectURL = getenv("SSO_REDIRECT_URL", cfg.SSO.RedirectURL)

	// Дефолты
	if cfg.Server.Env == "" {
		cfg.Server.Env = "development"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 4000
	}
	if cfg.Session.CookieName == "" {
		cfg.Session.CookieName = "session_token"
	}
	if cfg.Session.TTLHours == 0 {
		cfg.Session.TTLHours = 7 * 24
	}
	if cfg.Email.BaseURL == "" {
		cfg.Email.BaseURL = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	}

	if cfg.Database.DSN == "" {
		return nil, fmt.Errorf("database DSN is not configured (DATABASE_URL or config.yaml)")
	}

	return cfg, nil
}

// IsMailConfigured сообщает, настроена ли исходящая почта.
// Отсутствие почты включает "degraded mode": email-верификация пропускается.
func (c *Config) IsMailConfigured() bool {
	return c.Email.SMTPHost != "" && c.Email.FromEmail != ""
}

// IsSSOConfigured сообщает, выбрана ли legacy SSO модель идентичности.
// SSO и парольная модель взаимоисключающие: маршруты регистрируются
// только для одной из них.
func (c *Config) IsSSOConfigured() bool {
	return c.SSO.ClientID != "" && c.SSO.ClientSecret != "" && c.SSO.TenantID != ""
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getint(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getbool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
