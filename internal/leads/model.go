// Package leads defines the lead record and its wire shapes.
package leads

import "time"

// LeadRecord is the durable record of a course-interest submission. It is
// built once on the server from an accepted SubmitRequest and never mutated
// afterwards.
type LeadRecord struct {
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email"`
	StartDate    string    `json:"startDate"`
	City         string    `json:"city"`
	Goals        string    `json:"goals"`
	ConsentGiven bool      `json:"consentGiven"`
	Honeypot     string    `json:"honeypot"`
	CountryCode  string    `json:"countryCode,omitempty"`
	SubmittedAt  time.Time `json:"submittedAt"`
}

// FullName joins the decomposed name fields for display and email subjects.
func (r *LeadRecord) FullName() string {
	if r.FirstName == "" {
		return r.LastName
	}
	if r.LastName == "" {
		return r.FirstName
	}
	return r.FirstName + " " + r.LastName
}

// SubmitRequest is the flat JSON object accepted by the submission endpoint
// and produced by the form client. Consent travels as the string "true" or
// "false"; Website is the honeypot and must stay empty for human
// submissions.
type SubmitRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	StartDate   string `json:"startDate"`
	City        string `json:"city"`
	Goals       string `json:"goals"`
	Consent     string `json:"consent"`
	CountryCode string `json:"countryCode,omitempty"`
	Website     string `json:"website"`
}

// ConsentGiven reports whether the submitter affirmed consent.
func (r *SubmitRequest) ConsentGiven() bool {
	return r.Consent == "true"
}

// Record builds the immutable LeadRecord, stamping the server-side
// submission time.
func (r *SubmitRequest) Record(submittedAt time.Time) *LeadRecord {
	return &LeadRecord{
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		Phone:        r.Phone,
		Email:        r.Email,
		StartDate:    r.StartDate,
		City:         r.City,
		Goals:        r.Goals,
		ConsentGiven: r.ConsentGiven(),
		Honeypot:     r.Website,
		CountryCode:  r.CountryCode,
		SubmittedAt:  submittedAt,
	}
}
