package config

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func setFullEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APPS_SCRIPT_URL", "https://script.google.com/macros/s/abc/exec")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_PORT", "465")
	t.Setenv("SMTP_USER", "mailer")
	t.Setenv("SMTP_PASS", "secret")
	t.Setenv("MAIL_FROM", "noreply@example.com")
	t.Setenv("MAIL_TO", "sales@example.com")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("EMAIL_PROVIDER", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.EmailProvider != ProviderSMTP {
		t.Fatalf("expected smtp provider by default, got %s", cfg.EmailProvider)
	}
	if cfg.StoreTimeout != 8*time.Second {
		t.Fatalf("expected 8s store timeout, got %s", cfg.StoreTimeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("EMAIL_PROVIDER", "SendGrid")
	t.Setenv("STORE_TIMEOUT", "3s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.EmailProvider != ProviderSendGrid {
		t.Fatalf("expected normalized provider, got %s", cfg.EmailProvider)
	}
	if cfg.StoreTimeout != 3*time.Second {
		t.Fatalf("expected timeout override, got %s", cfg.StoreTimeout)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example.com" {
		t.Fatalf("expected trimmed origins, got %v", cfg.CORSAllowedOrigins)
	}
}

func TestValidateCollectsAllMissingKeys(t *testing.T) {
	cfg := &Config{EmailProvider: ProviderSMTP}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for empty config")
	}

	var missing *MissingKeysError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingKeysError, got %T", err)
	}

	want := []string{"APPS_SCRIPT_URL", "MAIL_FROM", "MAIL_TO", "SMTP_HOST", "SMTP_PORT", "SMTP_USER", "SMTP_PASS"}
	if len(missing.Keys) != len(want) {
		t.Fatalf("expected %d missing keys, got %v", len(want), missing.Keys)
	}
	for _, key := range want {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("expected error to name %s, got %q", key, err.Error())
		}
	}
}

func TestValidatePartialMissing(t *testing.T) {
	setFullEnv(t)
	t.Setenv("SMTP_USER", "")
	t.Setenv("MAIL_TO", "")
	cfg := Load()

	err := cfg.Validate()
	var missing *MissingKeysError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingKeysError, got %v", err)
	}
	if len(missing.Keys) != 2 {
		t.Fatalf("expected both missing keys reported, got %v", missing.Keys)
	}
}

func TestValidateRejectsInsecureScheme(t *testing.T) {
	setFullEnv(t)
	t.Setenv("APPS_SCRIPT_URL", "http://script.google.com/macros/s/abc/exec")
	cfg := Load()

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "https://") {
		t.Fatalf("expected https scheme rejection, got %v", err)
	}
}

func TestValidateOK(t *testing.T) {
	setFullEnv(t)
	cfg := Load()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateSendGridProvider(t *testing.T) {
	setFullEnv(t)
	t.Setenv("EMAIL_PROVIDER", "sendgrid")
	t.Setenv("SMTP_HOST", "")
	t.Setenv("SMTP_PORT", "")
	t.Setenv("SMTP_USER", "")
	t.Setenv("SMTP_PASS", "")
	cfg := Load()

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected missing SENDGRID_API_KEY")
	}

	t.Setenv("SENDGRID_API_KEY", "SG.key")
	cfg = Load()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
