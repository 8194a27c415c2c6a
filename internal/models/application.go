// internal/models/application.go
package models

import "time"

// Application is one candidate's submission against exactly one Job.
// It is never updated after creation.
type Application struct {
	ID            int64     `json:"id"`
	JobID         int64     `json:"jobId"`
	ApplicantName string    `json:"applicantName"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	ResumeLocator *string   `json:"resumeLocator,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// HasResume reports whether a resume was stored with the application.
func (a *Application) HasResume() bool {
	return a.ResumeLocator != nil && *a.ResumeLocator != ""
}

// ApplicationWithJobTitle is the listing row: the application joined with its job title.
type ApplicationWithJobTitle struct {
	Application
	JobTitle string `json:"jobTitle"`
}

// ApplicationFilter is the structured listing filter. Nil fields impose no
// restriction; set fields are combined with AND.
type ApplicationFilter struct {
	JobID *int64 `json:"jobId,omitempty"`
	// CreatedFrom is an inclusive lower bound on created_at.
	CreatedFrom *time.Time `json:"createdFrom,omitempty"`
	// CreatedBefore is an exclusive upper bound on created_at.
	CreatedBefore *time.Time `json:"createdBefore,omitempty"`
}

// IsEmpty reports whether the filter selects every application.
func (f ApplicationFilter) IsEmpty() bool {
	return f.JobID == nil && f.CreatedFrom == nil && f.CreatedBefore == nil
}
