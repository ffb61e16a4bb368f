// Package config loads and validates process-wide configuration.
//
// Configuration is read from the environment exactly once at startup and
// passed explicitly to the components that need it; nothing in the request
// path reads os.Getenv.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Email provider selection values.
const (
	ProviderSMTP     = "smtp"
	ProviderSendGrid = "sendgrid"
	ProviderSES      = "ses"
	ProviderStub     = "stub"
)

// Config holds application configuration
type Config struct {
	Port               string
	Env                string
	LogLevel           string
	CORSAllowedOrigins []string

	// Lead store (Google Apps Script webhook backing the spreadsheet)
	AppsScriptURL string
	StoreTimeout  time.Duration

	// Mail transport
	EmailProvider string
	SMTPHost      string
	SMTPPort      int
	SMTPUser      string
	SMTPPass      string
	MailFrom      string
	MailFromName  string
	MailTo        string

	// SendGrid Email Configuration
	SendGridAPIKey string

	// AWS SES Configuration
	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: splitAndTrim(getEnv("CORS_ALLOWED_ORIGINS", "")),

		AppsScriptURL: getEnv("APPS_SCRIPT_URL", ""),
		StoreTimeout:  getEnvAsDuration("STORE_TIMEOUT", 8*time.Second),

		EmailProvider: strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", ProviderSMTP))),
		SMTPHost:      getEnv("SMTP_HOST", ""),
		SMTPPort:      getEnvAsInt("SMTP_PORT", 0),
		SMTPUser:      getEnv("SMTP_USER", ""),
		SMTPPass:      getEnv("SMTP_PASS", ""),
		MailFrom:      getEnv("MAIL_FROM", ""),
		MailFromName:  getEnv("MAIL_FROM_NAME", "Sprachraum"),
		MailTo:        getEnv("MAIL_TO", ""),

		SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),

		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
	}
}

// MissingKeysError reports every required configuration key that is absent.
type MissingKeysError struct {
	Keys []string
}

func (e *MissingKeysError) Error() string {
	return fmt.Sprintf("Missing env vars: %s", strings.Join(e.Keys, ", "))
}

type requiredKey struct {
	key   string
	value string
}

// Validate checks that every required key is present and that the store URL
// uses https. All missing keys are collected into a single error rather than
// failing on the first one. The check is read-only and safe to run per
// request.
func (c *Config) Validate() error {
	required := []requiredKey{
		{"APPS_SCRIPT_URL", c.AppsScriptURL},
		{"MAIL_FROM", c.MailFrom},
		{"MAIL_TO", c.MailTo},
	}

	switch c.EmailProvider {
	case ProviderSendGrid:
		required = append(required, requiredKey{"SENDGRID_API_KEY", c.SendGridAPIKey})
	case ProviderSES, ProviderStub:
		// SES resolves credentials through the SDK chain; the stub needs nothing.
	default:
		required = append(required,
			requiredKey{"SMTP_HOST", c.SMTPHost},
			requiredKey{"SMTP_PORT", portString(c.SMTPPort)},
			requiredKey{"SMTP_USER", c.SMTPUser},
			requiredKey{"SMTP_PASS", c.SMTPPass},
		)
	}

	var missing []string
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.key)
		}
	}
	if len(missing) > 0 {
		return &MissingKeysError{Keys: missing}
	}

	u, err := url.Parse(c.AppsScriptURL)
	if err != nil {
		return fmt.Errorf("Invalid APPS_SCRIPT_URL: %v", err)
	}
	if u.Scheme != "https" {
		return fmt.Errorf("APPS_SCRIPT_URL must start with https://")
	}

	return nil
}

func portString(port int) string {
	if port == 0 {
		return ""
	}
	return strconv.Itoa(port)
}

func splitAndTrim(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
