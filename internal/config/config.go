package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	Addr     string
	DBDSN    string
	LogLevel string

	JWTSecret string
	TokenTTL  time.Duration

	AllowedOrigins []string

	UploadDir      string
	UploadMaxBytes int64

	SMTPHost      string
	SMTPPort      int
	SMTPUsername  string
	SMTPPassword  string
	SMTPTLSMode   string
	EmailFrom     string
	EmailFromName string

	ResetBaseURL string
	StudioEmail  string

	AdminBootstrapEmail    string
	AdminBootstrapName     string
	AdminBootstrapPassword string
}

// Load reads .env (if present, without overriding the real environment)
// and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return LoadFromEnv(os.Getenv)
}

func LoadFromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		Env:       getenv("APP_ENV"),
		Addr:      getenv("APP_ADDR"),
		DBDSN:     getenv("APP_DB_DSN"),
		LogLevel:  getenv("APP_LOG_LEVEL"),
		JWTSecret: getenv("APP_JWT_SECRET"),

		UploadDir: getenv("APP_UPLOAD_DIR"),

		SMTPHost:      getenv("APP_SMTP_HOST"),
		SMTPUsername:  getenv("APP_SMTP_USERNAME"),
		SMTPPassword:  getenv("APP_SMTP_PASSWORD"),
		SMTPTLSMode:   getenv("APP_SMTP_TLS_MODE"),
		EmailFrom:     getenv("APP_EMAIL_FROM"),
		EmailFromName: getenv("APP_EMAIL_FROM_NAME"),

		ResetBaseURL: getenv("APP_RESET_BASE_URL"),
		StudioEmail:  getenv("APP_STUDIO_EMAIL"),
	}

	if cfg.Env == "" {
		cfg.Env = "dev"
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:4000"
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = "uploads"
	}
	if cfg.EmailFromName == "" {
		cfg.EmailFromName = "LunaStudios"
	}
	if cfg.ResetBaseURL == "" {
		cfg.ResetBaseURL = "http://localhost:5173/reset-password"
	}
	if cfg.StudioEmail == "" {
		cfg.StudioEmail = cfg.EmailFrom
	}

	switch cfg.Env {
	case "dev", "prod", "test":
	default:
		return Config{}, errors.New("APP_ENV: must be one of dev, test, prod")
	}

	ttlRaw := getenv("APP_TOKEN_TTL")
	if ttlRaw == "" {
		cfg.TokenTTL = 24 * time.Hour
	} else {
		ttl, err := time.ParseDuration(ttlRaw)
		if err != nil {
			return Config{}, fmt.Errorf("APP_TOKEN_TTL: %w", err)
		}
		if ttl <= 0 {
			return Config{}, errors.New("APP_TOKEN_TTL: must be > 0")
		}
		cfg.TokenTTL = ttl
	}

	maxRaw := getenv("APP_UPLOAD_MAX_BYTES")
	if maxRaw == "" {
		cfg.UploadMaxBytes = 100 << 20
	} else {
		n, err := strconv.ParseInt(maxRaw, 10, 64)
		if err != nil || n <= 0 {
			return Config{}, errors.New("APP_UPLOAD_MAX_BYTES: must be a positive integer")
		}
		cfg.UploadMaxBytes = n
	}

	portRaw := getenv("APP_SMTP_PORT")
	if portRaw == "" {
		cfg.SMTPPort = 587
	} else {
		n, err := strconv.Atoi(portRaw)
		if err != nil || n <= 0 || n > 65535 {
			return Config{}, errors.New("APP_SMTP_PORT: must be a valid port")
		}
		cfg.SMTPPort = n
	}

	cfg.AllowedOrigins = parseCSV(getenv("APP_ALLOWED_ORIGINS"))

	cfg.AdminBootstrapEmail = strings.TrimSpace(strings.ToLower(getenv("APP_ADMIN_BOOTSTRAP_EMAIL")))
	cfg.AdminBootstrapName = strings.TrimSpace(getenv("APP_ADMIN_BOOTSTRAP_NAME"))
	cfg.AdminBootstrapPassword = getenv("APP_ADMIN_BOOTSTRAP_PASSWORD")
	if cfg.AdminBootstrapPassword != "" && cfg.AdminBootstrapEmail == "" {
		return Config{}, errors.New("APP_ADMIN_BOOTSTRAP_EMAIL: required when APP_ADMIN_BOOTSTRAP_PASSWORD is set")
	}
	if cfg.AdminBootstrapPassword != "" && cfg.AdminBootstrapName == "" {
		cfg.AdminBootstrapName = "Administrador"
	}

	if cfg.IsProd() {
		if cfg.DBDSN == "" {
			return Config{}, errors.New("APP_DB_DSN: required in prod")
		}
		if len(cfg.JWTSecret) < 32 {
			return Config{}, errors.New("APP_JWT_SECRET: must be at least 32 bytes in prod")
		}
	}

	return cfg, nil
}

func (c Config) IsProd() bool { return c.Env == "prod" }

func parseCSV(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]bool, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
