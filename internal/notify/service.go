// Package notify dispatches the submission emails: a confirmation to the
// lead and an alert to the internal sales inbox.
package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sprachraum/lead-platform/internal/leads"
	"github.com/sprachraum/lead-platform/pkg/logging"
)

// ErrTransportUnavailable is returned when the credential handshake fails;
// no message has been attempted when it is reported.
var ErrTransportUnavailable = errors.New("notify: mail transport unavailable")

// SendError reports which of the pair of messages failed. Delivery of the
// other message does not soften it: the pair either fully succeeds or the
// submission counts as failed.
type SendError struct {
	Which string // "confirmation" or "internal alert"
	Err   error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("notify: %s email failed: %v", e.Which, e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}

// Service builds and sends the two submission emails.
type Service struct {
	sender     EmailSender
	internalTo string
	logger     *logging.Logger
}

// NewService creates a notification service. internalTo is the fixed sales
// inbox that receives the lead alert.
func NewService(sender EmailSender, internalTo string, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		sender:     sender,
		internalTo: internalTo,
		logger:     logger,
	}
}

// Notify verifies the transport, then sends the confirmation and internal
// alert concurrently. Both sends must succeed; either failure fails the
// pair.
func (s *Service) Notify(ctx context.Context, record *leads.LeadRecord) error {
	if s.sender == nil {
		return fmt.Errorf("notify: email sender not configured")
	}

	if verifier, ok := s.sender.(TransportVerifier); ok {
		if err := verifier.Verify(ctx); err != nil {
			s.logger.Error("mail transport verification failed", "error", err)
			return fmt.Errorf("%w: %v", ErrTransportUnavailable, err)
		}
	}

	pair := []struct {
		which string
		msg   EmailMessage
	}{
		{"confirmation", s.confirmationMessage(record)},
		{"internal alert", s.alertMessage(record)},
	}

	errs := make([]error, len(pair))
	var wg sync.WaitGroup
	for i := range pair {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.sender.Send(ctx, pair[i].msg)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return &SendError{Which: pair[i].which, Err: err}
		}
	}

	s.logger.Info("submission emails sent", "lead", record.Email, "internal", s.internalTo)
	return nil
}

// confirmationMessage is the email the lead receives.
func (s *Service) confirmationMessage(record *leads.LeadRecord) EmailMessage {
	name := record.FullName()
	body := fmt.Sprintf(`Thank you for contacting us, %s!

We'll contact you shortly regarding your goal of %s.`, name, record.Goals)

	html := fmt.Sprintf(`<h1>Thank you for contacting us, %s!</h1>
<p>We&rsquo;ll contact you shortly regarding your goal of %s.</p>`, name, record.Goals)

	if record.CountryCode != "" {
		body += fmt.Sprintf("\n\nCode: %s", record.CountryCode)
		html += fmt.Sprintf("\n<p>Code: %s</p>", record.CountryCode)
	}

	return EmailMessage{
		To:      record.Email,
		ToName:  name,
		Subject: "We received your request",
		Body:    body,
		HTML:    html,
	}
}

// alertMessage is the email the internal sales inbox receives.
func (s *Service) alertMessage(record *leads.LeadRecord) EmailMessage {
	name := record.FullName()

	body := fmt.Sprintf(`New Submission

Name: %s
Email: %s
Phone: %s
Goal: %s
Start Date: %s
City: %s
Code: %s
Consent: %t
Submitted At: %s`,
		name, record.Email, record.Phone, record.Goals,
		record.StartDate, record.City, record.CountryCode,
		record.ConsentGiven, record.SubmittedAt.Format("2006-01-02 15:04:05 MST"))

	html := fmt.Sprintf(`<h2>New Submission</h2>
<p>Name: %s</p>
<p>Email: %s</p>
<p>Phone: %s</p>
<p>Goal: %s</p>
<p>Start Date: %s</p>
<p>City: %s</p>
<p>Code: %s</p>
<p>Consent: %t</p>
<p>Submitted At: %s</p>`,
		name, record.Email, record.Phone, record.Goals,
		record.StartDate, record.City, record.CountryCode,
		record.ConsentGiven, record.SubmittedAt.Format("2006-01-02 15:04:05 MST"))

	return EmailMessage{
		To:      s.internalTo,
		Subject: fmt.Sprintf("New Lead: %s - %s", name, record.Goals),
		Body:    body,
		HTML:    html,
	}
}
