package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	env := map[string]string{}
	cfg, err := LoadFromEnv(func(k string) string { return env[k] })
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}

	if cfg.Env != "dev" {
		t.Fatalf("Env: got %q", cfg.Env)
	}
	if cfg.Addr != "127.0.0.1:4000" {
		t.Fatalf("Addr: got %q", cfg.Addr)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Fatalf("TokenTTL: got %v", cfg.TokenTTL)
	}
	if cfg.UploadDir != "uploads" {
		t.Fatalf("UploadDir: got %q", cfg.UploadDir)
	}
	if cfg.UploadMaxBytes != 100<<20 {
		t.Fatalf("UploadMaxBytes: got %d", cfg.UploadMaxBytes)
	}
	if cfg.SMTPPort != 587 {
		t.Fatalf("SMTPPort: got %d", cfg.SMTPPort)
	}
}

func TestLoadRejectsBadEnv(t *testing.T) {
	env := map[string]string{"APP_ENV": "staging"}
	if _, err := LoadFromEnv(func(k string) string { return env[k] }); err == nil {
		t.Fatalf("expected error for APP_ENV=staging")
	}
}

func TestLoadProdRequiresSecrets(t *testing.T) {
	env := map[string]string{
		"APP_ENV":    "prod",
		"APP_DB_DSN": "postgres://localhost/lunastudios",
	}
	if _, err := LoadFromEnv(func(k string) string { return env[k] }); err == nil {
		t.Fatalf("expected error for short APP_JWT_SECRET in prod")
	}

	env["APP_JWT_SECRET"] = "0123456789abcdef0123456789abcdef"
	if _, err := LoadFromEnv(func(k string) string { return env[k] }); err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
}

func TestLoadParsesOrigins(t *testing.T) {
	env := map[string]string{
		"APP_ALLOWED_ORIGINS": "http://localhost:5173, https://studio.example.com ,http://localhost:5173",
	}
	cfg, err := LoadFromEnv(func(k string) string { return env[k] })
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	want := []string{"http://localhost:5173", "https://studio.example.com"}
	if len(cfg.AllowedOrigins) != len(want) {
		t.Fatalf("AllowedOrigins: got %v", cfg.AllowedOrigins)
	}
	for i := range want {
		if cfg.AllowedOrigins[i] != want[i] {
			t.Fatalf("AllowedOrigins[%d]: got %q want %q", i, cfg.AllowedOrigins[i], want[i])
		}
	}
}

func TestLoadBootstrapRequiresEmail(t *testing.T) {
	env := map[string]string{"APP_ADMIN_BOOTSTRAP_PASSWORD": "correct-horse-battery"}
	if _, err := LoadFromEnv(func(k string) string { return env[k] }); err == nil {
		t.Fatalf("expected error when bootstrap password set without email")
	}
}
