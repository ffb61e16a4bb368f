package form

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sprachraum/lead-platform/internal/leads"
	"github.com/sprachraum/lead-platform/pkg/logging"
)

// HTTPSubmitter posts the form payload to the submission endpoint.
type HTTPSubmitter struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// SubmitterOption is a functional option for configuring the HTTPSubmitter.
type SubmitterOption func(*HTTPSubmitter)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) SubmitterOption {
	return func(s *HTTPSubmitter) {
		s.httpClient = client
	}
}

// WithSubmitterLogger sets a custom logger.
func WithSubmitterLogger(logger *logging.Logger) SubmitterOption {
	return func(s *HTTPSubmitter) {
		s.logger = logger
	}
}

// NewHTTPSubmitter creates a submitter for the API at baseURL.
func NewHTTPSubmitter(baseURL string, opts ...SubmitterOption) *HTTPSubmitter {
	s := &HTTPSubmitter{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logging.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// submitResponse mirrors the endpoint's success and failure shapes.
type submitResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Submit performs exactly one POST of the payload and maps the reply to a
// SubmissionOutcome. Transport and decode faults are returned as errors;
// everything else is an outcome.
func (s *HTTPSubmitter) Submit(ctx context.Context, req *leads.SubmitRequest) (*SubmissionOutcome, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("form: marshal payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/submit", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("form: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("form: request failed: %w", err)
	}
	defer resp.Body.Close()

	var parsed submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("form: decode response: %w", err)
	}

	if resp.StatusCode == http.StatusOK && parsed.Message != "" {
		s.logger.Info("submission accepted", "message", parsed.Message)
		return &SubmissionOutcome{OK: true, Message: parsed.Message}, nil
	}

	return &SubmissionOutcome{OK: false, Reason: parsed.Error}, nil
}

// Ensure interface compliance
var _ Submitter = (*HTTPSubmitter)(nil)
