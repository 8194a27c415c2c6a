package models

import (
	"strconv"
	"time"
)

// ApplicationDocument is the search index representation of an application.
type ApplicationDocument struct {
	ID            int64     `json:"id"`
	JobID         int64     `json:"job_id"`
	JobTitle      string    `json:"job_title"`
	ApplicantName string    `json:"applicant_name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	CreatedAt     time.Time `json:"created_at"`
}

func NewApplicationDocument(job *Job, app *Application) ApplicationDocument {
	return ApplicationDocument{
		ID:            app.ID,
		JobID:         app.JobID,
		JobTitle:      job.Title,
		ApplicantName: app.ApplicantName,
		Email:         app.Email,
		Phone:         app.Phone,
		CreatedAt:     app.CreatedAt,
	}
}

// DocumentID is the index document id, the application id in decimal.
func (d ApplicationDocument) DocumentID() string {
	return strconv.FormatInt(d.ID, 10)
}
