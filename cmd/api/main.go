package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sprachraum/lead-platform/cmd/mainconfig"
	"github.com/sprachraum/lead-platform/internal/api/router"
	appconfig "github.com/sprachraum/lead-platform/internal/config"
	"github.com/sprachraum/lead-platform/internal/notify"
	"github.com/sprachraum/lead-platform/internal/observability/metrics"
	"github.com/sprachraum/lead-platform/internal/sheets"
	"github.com/sprachraum/lead-platform/internal/submit"
	"github.com/sprachraum/lead-platform/pkg/logging"
)

func main() {
	// Load .env if present; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting lead-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"email_provider", cfg.EmailProvider,
	)

	// Configuration is validated again on every request; this early check
	// just surfaces misconfiguration at boot instead of on the first lead.
	if err := cfg.Validate(); err != nil {
		logger.Warn("configuration incomplete, submissions will fail", "error", err)
	}

	sender := buildEmailSender(cfg, logger)

	store := sheets.NewClient(cfg.AppsScriptURL,
		sheets.WithTimeout(cfg.StoreTimeout),
		sheets.WithLogger(logger),
	)
	notifier := notify.NewService(sender, cfg.MailTo, logger)
	submissionMetrics := metrics.NewSubmissionMetrics(nil)

	submitHandler := submit.NewHandler(cfg, store, notifier, submissionMetrics, logger)

	r := router.New(&router.Config{
		Logger:             logger,
		SubmitHandler:      submitHandler,
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// buildEmailSender selects the mail transport from configuration. SMTP is
// the default; SendGrid and SES are drop-in alternatives behind the same
// interface.
func buildEmailSender(cfg *appconfig.Config, logger *logging.Logger) notify.EmailSender {
	switch cfg.EmailProvider {
	case appconfig.ProviderSendGrid:
		if sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.MailFrom,
			FromName:  cfg.MailFromName,
		}, logger); sender != nil {
			return sender
		}
	case appconfig.ProviderSES:
		awsCfg, err := mainconfig.LoadAWSConfig(context.Background(), cfg)
		if err != nil {
			logger.Error("failed to load AWS config, falling back to stub sender", "error", err)
			break
		}
		if sender := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.MailFrom,
			FromName:  cfg.MailFromName,
		}, logger); sender != nil {
			return sender
		}
	case appconfig.ProviderStub:
		return notify.NewStubEmailSender(logger)
	default:
		if sender := notify.NewSMTPSender(notify.SMTPConfig{
			Host:      cfg.SMTPHost,
			Port:      cfg.SMTPPort,
			Username:  cfg.SMTPUser,
			Password:  cfg.SMTPPass,
			FromEmail: cfg.MailFrom,
			FromName:  cfg.MailFromName,
		}, logger); sender != nil {
			return sender
		}
	}

	logger.Warn("email provider not fully configured, using stub sender", "provider", cfg.EmailProvider)
	return notify.NewStubEmailSender(logger)
}
