package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sprachraum/lead-platform/internal/config"
	"github.com/sprachraum/lead-platform/internal/leads"
	"github.com/sprachraum/lead-platform/internal/sheets"
)

type mockStore struct {
	calls   int
	err     error
	stored  *leads.LeadRecord
	panicky bool
}

func (m *mockStore) Store(ctx context.Context, record *leads.LeadRecord) error {
	m.calls++
	if m.panicky {
		panic("store exploded")
	}
	if m.err != nil {
		return m.err
	}
	m.stored = record
	return nil
}

type mockNotifier struct {
	calls int
	err   error
}

func (m *mockNotifier) Notify(ctx context.Context, record *leads.LeadRecord) error {
	m.calls++
	return m.err
}

func validConfig() *config.Config {
	return &config.Config{
		EmailProvider: config.ProviderSMTP,
		AppsScriptURL: "https://script.google.com/macros/s/abc/exec",
		SMTPHost:      "smtp.example.com",
		SMTPPort:      465,
		SMTPUser:      "mailer",
		SMTPPass:      "secret",
		MailFrom:      "noreply@example.com",
		MailTo:        "sales@example.com",
	}
}

func validBody() []byte {
	body, _ := json.Marshal(leads.SubmitRequest{
		FirstName: "Ana",
		LastName:  "Lee",
		Phone:     "+491701234567",
		Email:     "a@b.com",
		StartDate: "2025-12-01",
		City:      "Berlin",
		Goals:     "conversation practice",
		Consent:   "true",
	})
	return body
}

func newTestHandler(store *mockStore, notifier *mockNotifier) *Handler {
	h := NewHandler(validConfig(), store, notifier, nil, nil)
	h.now = func() time.Time { return time.Date(2025, 11, 20, 10, 30, 0, 0, time.UTC) }
	return h
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestSubmitSuccess(t *testing.T) {
	store := &mockStore{}
	notifier := &mockNotifier{}
	handler := newTestHandler(store, notifier)

	req := httptest.NewRequest(http.MethodPost, "/api/submit", bytes.NewReader(validBody()))
	w := httptest.NewRecorder()
	handler.Submit(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, SuccessMessage, decodeBody(t, w)["message"])
	assert.Equal(t, 1, store.calls)
	assert.Equal(t, 1, notifier.calls)
	require.NotNil(t, store.stored)
	assert.False(t, store.stored.SubmittedAt.IsZero(), "server adds the timestamp")
	assert.True(t, store.stored.ConsentGiven)
}

func TestSubmitWrongMethod(t *testing.T) {
	store := &mockStore{}
	notifier := &mockNotifier{}
	handler := newTestHandler(store, notifier)

	req := httptest.NewRequest(http.MethodGet, "/api/submit", nil)
	w := httptest.NewRecorder()
	handler.Submit(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, http.MethodPost, w.Header().Get("Allow"))
	assert.Zero(t, store.calls)
	assert.Zero(t, notifier.calls)
}

func TestSubmitConfigFault(t *testing.T) {
	store := &mockStore{}
	notifier := &mockNotifier{}
	cfg := validConfig()
	cfg.SMTPUser = ""
	cfg.MailTo = ""
	handler := NewHandler(cfg, store, notifier, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/submit", bytes.NewReader(validBody()))
	w := httptest.NewRecorder()
	handler.Submit(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeBody(t, w)
	assert.Contains(t, body["error"], "SMTP_USER")
	assert.Contains(t, body["error"], "MAIL_TO")
	assert.Zero(t, store.calls, "store must not run on config fault")
	assert.Zero(t, notifier.calls, "notify must not run on config fault")
}

func TestSubmitStoreFailureSkipsNotify(t *testing.T) {
	store := &mockStore{err: &sheets.StatusError{Code: 500, Body: "quota exceeded"}}
	notifier := &mockNotifier{}
	handler := newTestHandler(store, notifier)

	req := httptest.NewRequest(http.MethodPost, "/api/submit", bytes.NewReader(validBody()))
	w := httptest.NewRecorder()
	handler.Submit(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, decodeBody(t, w)["error"], "Google Sheets error")
	assert.Zero(t, notifier.calls, "no email after a failed store")
}

func TestSubmitStoreTimeoutSkipsNotify(t *testing.T) {
	store := &mockStore{err: sheets.ErrTimeout}
	notifier := &mockNotifier{}
	handler := newTestHandler(store, notifier)

	req := httptest.NewRequest(http.MethodPost, "/api/submit", bytes.NewReader(validBody()))
	w := httptest.NewRecorder()
	handler.Submit(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Zero(t, notifier.calls)
}

func TestSubmitNotifyFailureStillFails(t *testing.T) {
	store := &mockStore{}
	notifier := &mockNotifier{err: errors.New("notify: internal alert email failed: 550 rejected")}
	handler := newTestHandler(store, notifier)

	req := httptest.NewRequest(http.MethodPost, "/api/submit", bytes.NewReader(validBody()))
	w := httptest.NewRecorder()
	handler.Submit(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code, "stored but not notified is still a failure")
	assert.Equal(t, 1, store.calls, "the record was stored before notify failed")
	assert.Empty(t, decodeBody(t, w)["message"], "success must never be reported when notification fails")
}

func TestSubmitInvalidJSON(t *testing.T) {
	handler := newTestHandler(&mockStore{}, &mockNotifier{})

	req := httptest.NewRequest(http.MethodPost, "/api/submit", strings.NewReader("{"))
	w := httptest.NewRecorder()
	handler.Submit(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitConsentRequired(t *testing.T) {
	store := &mockStore{}
	notifier := &mockNotifier{}
	handler := newTestHandler(store, notifier)

	payload, _ := json.Marshal(leads.SubmitRequest{
		FirstName: "Ana", LastName: "Lee", Phone: "+491701234567",
		Email: "a@b.com", StartDate: "2025-12-01", City: "Berlin",
		Consent: "false",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/submit", bytes.NewReader(payload))
	w := httptest.NewRecorder()
	handler.Submit(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, store.calls)
	assert.Zero(t, notifier.calls)
}

func TestSubmitHoneypotDropsSilently(t *testing.T) {
	store := &mockStore{}
	notifier := &mockNotifier{}
	handler := newTestHandler(store, notifier)

	payload, _ := json.Marshal(leads.SubmitRequest{
		FirstName: "Bot", LastName: "Net", Phone: "+491701234567",
		Email: "bot@spam.example", StartDate: "2025-12-01", City: "Berlin",
		Consent: "true", Website: "http://spam.example",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/submit", bytes.NewReader(payload))
	w := httptest.NewRecorder()
	handler.Submit(w, req)

	assert.Equal(t, http.StatusOK, w.Code, "bots get the success shape")
	assert.Zero(t, store.calls)
	assert.Zero(t, notifier.calls)
}

func TestSubmitPanicBecomesFailureOutcome(t *testing.T) {
	store := &mockStore{panicky: true}
	notifier := &mockNotifier{}
	handler := newTestHandler(store, notifier)

	req := httptest.NewRequest(http.MethodPost, "/api/submit", bytes.NewReader(validBody()))
	w := httptest.NewRecorder()
	handler.Submit(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotEmpty(t, decodeBody(t, w)["error"])
	assert.Zero(t, notifier.calls)
}

func TestHealthCheck(t *testing.T) {
	handler := newTestHandler(&mockStore{}, &mockNotifier{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	handler.HealthCheck(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
