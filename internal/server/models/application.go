package models

import "time"

// Application statuses accepted by the API.
const (
	StatusApplied      = "applied"
	StatusInterviewing = "interviewing"
	StatusOffer        = "offer"
	StatusRejected     = "rejected"
)

// ValidStatus reports whether s is one of the allowed application statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusApplied, StatusInterviewing, StatusOffer, StatusRejected:
		return true
	}
	return false
}

// Application is a tracked job application.
type Application struct {
	ID     string
	UserID string

	Company        string
	JobTitle       string
	JobDescription string
	Status         string

	// ResumeID / CVID optionally reference stored files. Empty means unset.
	ResumeID string
	CVID     string

	// AppliedDate is the calendar date of the application, if provided.
	AppliedDate *time.Time

	CreatedAt time.Time
}
