package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Submission is a vendor onboarding request as received from the intake form.
// Immutable once created; analyzers only ever read it.
type Submission struct {
	ID                  string    `json:"request_id"`
	VendorName          string    `json:"vendor_name"`
	ContactEmail        string    `json:"contact_email"`
	BusinessDescription string    `json:"business_description"`
	TaxID               string    `json:"tax_id"`
	SourceIP            string    `json:"source_ip"`
	SubmittedAt         time.Time `json:"submitted_at"`
}

// ErrInvalidSubmission is returned when a submission is missing required fields
var ErrInvalidSubmission = errors.New("invalid submission")

// Validate checks that all required fields are present.
// A submission failing validation is rejected before any analyzer runs.
func (s *Submission) Validate() error {
	var missing []string

	if strings.TrimSpace(s.ID) == "" {
		missing = append(missing, "request_id")
	}
	if strings.TrimSpace(s.VendorName) == "" {
		missing = append(missing, "vendor_name")
	}
	if strings.TrimSpace(s.ContactEmail) == "" {
		missing = append(missing, "contact_email")
	}
	if strings.TrimSpace(s.BusinessDescription) == "" {
		missing = append(missing, "business_description")
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: missing fields: %s", ErrInvalidSubmission, strings.Join(missing, ", "))
	}

	if !strings.Contains(s.ContactEmail, "@") {
		return fmt.Errorf("%w: contact_email is not an email address", ErrInvalidSubmission)
	}

	return nil
}

// EmailDomain returns the domain part of the contact email, lowercased.
// Empty string when the email is malformed.
func (s *Submission) EmailDomain() string {
	at := strings.LastIndex(s.ContactEmail, "@")
	if at < 0 || at == len(s.ContactEmail)-1 {
		return ""
	}
	return strings.ToLower(s.ContactEmail[at+1:])
}

// CombinedText returns name and description joined, lowercased, for keyword scans
func (s *Submission) CombinedText() string {
	return strings.ToLower(s.VendorName + " " + s.BusinessDescription)
}
