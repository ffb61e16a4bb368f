package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sprachraum/lead-platform/internal/config"
	"github.com/sprachraum/lead-platform/internal/leads"
	"github.com/sprachraum/lead-platform/internal/submit"
)

type okStore struct{ calls int }

func (s *okStore) Store(ctx context.Context, record *leads.LeadRecord) error {
	s.calls++
	return nil
}

type okNotifier struct{ calls int }

func (n *okNotifier) Notify(ctx context.Context, record *leads.LeadRecord) error {
	n.calls++
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		EmailProvider: config.ProviderSMTP,
		AppsScriptURL: "https://script.google.com/macros/s/abc/exec",
		SMTPHost:      "smtp.example.com",
		SMTPPort:      587,
		SMTPUser:      "mailer",
		SMTPPass:      "secret",
		MailFrom:      "noreply@example.com",
		MailTo:        "sales@example.com",
	}
}

func newTestRouter(store *okStore, notifier *okNotifier) http.Handler {
	handler := submit.NewHandler(testConfig(), store, notifier, nil, nil)
	return New(&Config{SubmitHandler: handler})
}

func TestRouterHealth(t *testing.T) {
	r := newTestRouter(&okStore{}, &okNotifier{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRouterSubmitFlow(t *testing.T) {
	store := &okStore{}
	notifier := &okNotifier{}
	r := newTestRouter(store, notifier)

	body, _ := json.Marshal(leads.SubmitRequest{
		FirstName: "Ana", LastName: "Lee", Phone: "+491701234567",
		Email: "a@b.com", StartDate: "2025-12-01", City: "Berlin",
		Goals: "conversation practice", Consent: "true",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/submit", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if store.calls != 1 || notifier.calls != 1 {
		t.Errorf("expected one store and one notify call, got %d/%d", store.calls, notifier.calls)
	}
}

func TestRouterMethodNotAllowedReachesHandler(t *testing.T) {
	r := newTestRouter(&okStore{}, &okNotifier{})

	req := httptest.NewRequest(http.MethodGet, "/api/submit", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); allow != http.MethodPost {
		t.Errorf("expected Allow: POST, got %q", allow)
	}
}
