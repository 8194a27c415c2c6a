package jobcatalog

import (
	"strings"

	apperrors "hr-backoffice/internal/common/errors"
)

// Input carries the four mutable job fields for create and update.
type Input struct {
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
	Location    string `json:"location" form:"location"`
	JobType     string `json:"job_type" form:"job_type"`
}

// DeleteOutput reports what a job deletion removed.
type DeleteOutput struct {
	JobID               int64 `json:"jobId"`
	ApplicationsRemoved int64 `json:"applicationsRemoved"`
	ResumesRemoved      int   `json:"resumesRemoved"`
}

func (in *Input) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Location = strings.TrimSpace(in.Location)
	in.JobType = strings.TrimSpace(in.JobType)
}

// validate reports every missing field at once.
func (in *Input) validate() error {
	var fields []apperrors.FieldError
	for _, f := range []struct{ name, value string }{
		{"title", in.Title},
		{"description", in.Description},
		{"location", in.Location},
		{"job_type", in.JobType},
	} {
		if f.value == "" {
			fields = append(fields, apperrors.FieldError{
				Field:   f.name,
				Code:    apperrors.FieldCodeRequired,
				Message: f.name + " is required",
			})
		}
	}
	if len(fields) > 0 {
		return apperrors.NewValidationError(fields...)
	}
	return nil
}
