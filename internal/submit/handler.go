// Package submit orchestrates a lead submission: validate configuration,
// store the record, then send the notification pair, mapping every outcome
// to a JSON response.
package submit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sprachraum/lead-platform/internal/config"
	"github.com/sprachraum/lead-platform/internal/leads"
	"github.com/sprachraum/lead-platform/internal/observability/metrics"
	"github.com/sprachraum/lead-platform/pkg/logging"
)

// SuccessMessage is the body text clients key navigation off.
const SuccessMessage = "Emails sent and data stored successfully"

// storeErrorPrefix marks storage failures so operators can tell them apart
// from notification failures in responses and logs.
const storeErrorPrefix = "Google Sheets error"

// Store records a lead durably. Implemented by sheets.Client.
type Store interface {
	Store(ctx context.Context, record *leads.LeadRecord) error
}

// Notifier dispatches the submission email pair. Implemented by
// notify.Service.
type Notifier interface {
	Notify(ctx context.Context, record *leads.LeadRecord) error
}

// Handler handles HTTP requests for lead submission
type Handler struct {
	cfg      *config.Config
	store    Store
	notifier Notifier
	metrics  *metrics.SubmissionMetrics
	logger   *logging.Logger
	now      func() time.Time
}

// NewHandler creates a new submission handler
func NewHandler(cfg *config.Config, store Store, notifier Notifier, m *metrics.SubmissionMetrics, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		cfg:      cfg,
		store:    store,
		notifier: notifier,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

// Submit handles /api/submit for every method. The handler owns method
// validation so that non-POST requests get an Allow header, and it
// guarantees a response on every path, converting panics from either
// adapter into a failure outcome.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("panic during submission", "panic", rec, "path", r.URL.Path)
			h.metrics.ObserveSubmission("panic")
			h.writeError(w, http.StatusInternalServerError, "Unknown error")
		}
	}()

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		h.writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}

	if err := h.cfg.Validate(); err != nil {
		h.logger.Error("configuration invalid", "error", err)
		h.metrics.ObserveSubmission("config_error")
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var req leads.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode request", "error", err)
		h.metrics.ObserveSubmission("bad_request")
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// A populated decoy field means a bot filled the form. Answer with the
	// success shape so the bot learns nothing, but store and send nothing.
	if req.Website != "" {
		h.logger.Warn("honeypot field populated, dropping submission", "remote_ip", r.RemoteAddr)
		h.metrics.ObserveSubmission("honeypot")
		h.writeJSON(w, http.StatusOK, map[string]string{"message": SuccessMessage})
		return
	}

	if !req.ConsentGiven() {
		h.metrics.ObserveSubmission("no_consent")
		h.writeError(w, http.StatusBadRequest, "Consent is required")
		return
	}

	record := req.Record(h.now().UTC())

	// Durable record first: no email may claim "we received your request"
	// before the lead exists in the store.
	start := time.Now()
	err := h.store.Store(r.Context(), record)
	h.metrics.ObserveStoreLatency(time.Since(start).Seconds())
	if err != nil {
		h.logger.Error("lead store failed", "error", err, "email", record.Email)
		h.metrics.ObserveSubmission("store_error")
		h.writeError(w, http.StatusInternalServerError, fmt.Sprintf("%s: %v", storeErrorPrefix, err))
		return
	}

	// The record is durable now. A notification failure still fails the
	// request; the stored-but-not-notified gap is deliberate and surfaces
	// in the error message, not in a compensation step.
	if err := h.notifier.Notify(r.Context(), record); err != nil {
		h.logger.Error("notification failed after store", "error", err, "email", record.Email)
		h.metrics.ObserveSubmission("notify_error")
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.metrics.ObserveEmailSent("lead")
	h.metrics.ObserveEmailSent("internal")
	h.metrics.ObserveSubmission("success")
	h.logger.Info("lead submitted", "email", record.Email, "city", record.City)
	h.writeJSON(w, http.StatusOK, map[string]string{"message": SuccessMessage})
}

// HealthCheck reports service liveness.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}
