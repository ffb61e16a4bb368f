// Package sheets pushes lead records to the spreadsheet-backed Apps Script
// webhook that acts as the system of record.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sprachraum/lead-platform/internal/leads"
	"github.com/sprachraum/lead-platform/pkg/logging"
)

// statusSuccess is the literal token the Apps Script returns on a durable write.
const statusSuccess = "success"

// DefaultTimeout bounds a single store call.
const DefaultTimeout = 8 * time.Second

// Client posts lead records to the configured webhook URL. One call per
// record, no retries; retry policy belongs to the caller.
type Client struct {
	url        string
	timeout    time.Duration
	httpClient *http.Client
	logger     *logging.Logger
}

// ClientOption is a functional option for configuring the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout overrides the per-call deadline.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *logging.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a store client for the given webhook URL.
func NewClient(url string, opts ...ClientOption) *Client {
	c := &Client{
		url:        url,
		timeout:    DefaultTimeout,
		httpClient: &http.Client{},
		logger:     logging.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// storeResponse is the expected webhook reply shape.
type storeResponse struct {
	Status string `json:"status"`
}

// Store serializes the record and issues a single request/response call to
// the webhook. The call is aborted once the deadline passes; the deadline
// timer is released on every path.
func (c *Client) Store(ctx context.Context, record *leads.LeadRecord) error {
	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("sheets: marshal record: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("sheets: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			c.logger.Error("store call timed out", "url", c.url, "timeout", c.timeout)
			return ErrTimeout
		}
		return fmt.Errorf("sheets: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Error("store returned error status", "status", resp.StatusCode)
		return &StatusError{Code: resp.StatusCode, Body: string(text)}
	}

	var result storeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return ErrMalformedResponse
	}

	if result.Status != statusSuccess {
		return ErrRemoteRejected
	}

	c.logger.Info("lead stored", "email", record.Email, "city", record.City)
	return nil
}
