// Package form owns the lead form state: field values, derived validation
// errors, touched tracking, and the submission flow against the API.
package form

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"

	"github.com/sprachraum/lead-platform/internal/leads"
	"github.com/sprachraum/lead-platform/pkg/logging"
)

// Field keys, matching the wire names of the submission payload.
const (
	FieldFirstName = "firstName"
	FieldLastName  = "lastName"
	FieldPhone     = "phone"
	FieldEmail     = "email"
	FieldStartDate = "startDate"
	FieldCity      = "city"
	FieldGoals     = "goals"
	FieldConsent   = "consent"
)

var (
	// ErrConsentRequired blocks submission until consent is affirmed. It is
	// surfaced as its own message, not through the field error set.
	ErrConsentRequired = errors.New("Please agree to be contacted regarding courses and offers.")

	// ErrInvalidFields aborts submission silently; the field errors became
	// visible when the attempt marked every field touched.
	ErrInvalidFields = errors.New("form has validation errors")

	// ErrBusy rejects a submission attempt while one is already in flight.
	ErrBusy = errors.New("submission already in progress")

	// ErrNetwork is wrapped around transport-level submission failures.
	ErrNetwork = errors.New("Network error. Please try again.")
)

// fallbackReason is shown when the server rejects without a usable message.
const fallbackReason = "Something went wrong. Please try again."

var (
	phonePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
	emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)
)

// Fields holds the raw form values.
type Fields struct {
	FirstName string
	LastName  string
	Phone     string
	Email     string
	StartDate string
	City      string
	Goals     string
	Consent   bool
}

// Validate derives the error set from the current field values. It is a
// pure function: same fields, same errors.
func Validate(f Fields) map[string]string {
	e := map[string]string{}
	if f.FirstName == "" {
		e[FieldFirstName] = "Required"
	}
	if f.LastName == "" {
		e[FieldLastName] = "Required"
	}
	if !phonePattern.MatchString(f.Phone) {
		e[FieldPhone] = "Enter a valid phone"
	}
	if !emailPattern.MatchString(f.Email) {
		e[FieldEmail] = "Enter a valid email"
	}
	if f.StartDate == "" {
		e[FieldStartDate] = "Select a date"
	}
	if f.City == "" {
		e[FieldCity] = "Enter your city"
	}
	if !f.Consent {
		e[FieldConsent] = "Please accept the consent"
	}
	return e
}

// SubmissionOutcome is the server's answer to a submission attempt.
type SubmissionOutcome struct {
	OK      bool
	Message string // success message when OK
	Reason  string // server-provided reason when not OK
}

// Submitter performs the network submission. Implemented by HTTPSubmitter.
type Submitter interface {
	Submit(ctx context.Context, req *leads.SubmitRequest) (*SubmissionOutcome, error)
}

// SubmissionError carries a user-facing reason from a rejected submission.
type SubmissionError struct {
	Reason string
}

func (e *SubmissionError) Error() string {
	return e.Reason
}

// Form is the lead form state machine.
type Form struct {
	fields    Fields
	touched   map[string]bool
	submitter Submitter
	onSuccess func()
	logger    *logging.Logger

	mu   sync.Mutex
	busy bool
}

// Option is a functional option for configuring the Form.
type Option func(*Form)

// WithSuccessHandler registers the navigation intent fired after a
// successful submission.
func WithSuccessHandler(fn func()) Option {
	return func(f *Form) {
		f.onSuccess = fn
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *logging.Logger) Option {
	return func(f *Form) {
		f.logger = logger
	}
}

// New creates an empty form bound to a submitter.
func New(submitter Submitter, opts ...Option) *Form {
	f := &Form{
		touched:   map[string]bool{},
		submitter: submitter,
		logger:    logging.Default(),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fields returns a copy of the current field values.
func (f *Form) Fields() Fields {
	return f.fields
}

// SetField replaces exactly one field value, leaving the others untouched.
// It does not mark the field as touched. Consent takes a bool, everything
// else a string; mismatched types are ignored.
func (f *Form) SetField(key string, value any) {
	if key == FieldConsent {
		if b, ok := value.(bool); ok {
			f.fields.Consent = b
		}
		return
	}

	s, ok := value.(string)
	if !ok {
		return
	}
	switch key {
	case FieldFirstName:
		f.fields.FirstName = s
	case FieldLastName:
		f.fields.LastName = s
	case FieldPhone:
		f.fields.Phone = s
	case FieldEmail:
		f.fields.Email = s
	case FieldStartDate:
		f.fields.StartDate = s
	case FieldCity:
		f.fields.City = s
	case FieldGoals:
		f.fields.Goals = s
	}
}

// Touch marks a field as visited by the user.
func (f *Form) Touch(key string) {
	f.touched[key] = true
}

// Touched reports whether a field has been visited or force-marked by a
// submission attempt.
func (f *Form) Touched(key string) bool {
	return f.touched[key]
}

// Errors returns the full derived error set for the current values.
func (f *Form) Errors() map[string]string {
	return Validate(f.fields)
}

// ErrorFor returns a field's error only once the field is touched; errors
// for not-yet-visited fields stay suppressed.
func (f *Form) ErrorFor(key string) (string, bool) {
	if !f.touched[key] {
		return "", false
	}
	msg, ok := Validate(f.fields)[key]
	return msg, ok
}

// Busy reports whether a submission is in flight.
func (f *Form) Busy() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.busy
}

// Reset restores the initial empty values and clears the touched set.
func (f *Form) Reset() {
	f.fields = Fields{}
	f.touched = map[string]bool{}
}

func (f *Form) touchAll() {
	for _, key := range []string{
		FieldFirstName, FieldLastName, FieldPhone, FieldEmail,
		FieldStartDate, FieldCity, FieldGoals, FieldConsent,
	} {
		f.touched[key] = true
	}
}

// payload assembles the wire request: consent coerced to the string "true"
// and the decoy website field always empty.
func (f *Form) payload() *leads.SubmitRequest {
	consent := "false"
	if f.fields.Consent {
		consent = "true"
	}
	return &leads.SubmitRequest{
		FirstName: f.fields.FirstName,
		LastName:  f.fields.LastName,
		Phone:     f.fields.Phone,
		Email:     f.fields.Email,
		StartDate: f.fields.StartDate,
		City:      f.fields.City,
		Goals:     f.fields.Goals,
		Consent:   consent,
		Website:   "",
	}
}

// Submit runs one submission attempt. The busy flag is claimed in the same
// critical section as the re-entry check, so concurrent attempts see at
// most one winner; it is cleared on every exit path. Every field is marked
// touched so previously hidden errors become visible. Consent is checked
// before the general error set and reported through its own blocking
// message. On success the form resets and the navigation intent fires; on
// any failure the entered values are preserved for retry.
func (f *Form) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.busy {
		f.mu.Unlock()
		return ErrBusy
	}
	f.busy = true
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.busy = false
		f.mu.Unlock()
	}()

	f.touchAll()

	if !f.fields.Consent {
		return ErrConsentRequired
	}
	if len(Validate(f.fields)) > 0 {
		return ErrInvalidFields
	}

	outcome, err := f.submitter.Submit(ctx, f.payload())
	if err != nil {
		f.logger.Error("submission transport failed", "error", err)
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	if !outcome.OK {
		reason := outcome.Reason
		if reason == "" {
			reason = fallbackReason
		}
		f.logger.Warn("submission rejected", "reason", reason)
		return &SubmissionError{Reason: reason}
	}

	f.Reset()
	if f.onSuccess != nil {
		f.onSuccess()
	}
	return nil
}
