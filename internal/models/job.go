package models

import "time"

// Job is a posted opening that applications are submitted against.
type Job struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	JobType     string    `json:"jobType"`
	PostedAt    time.Time `json:"postedAt"`
	CreatedAt   time.Time `json:"createdAt"`
}

// JobDeletion reports what a cascading job delete removed.
type JobDeletion struct {
	JobID               int64    `json:"jobId"`
	ApplicationsRemoved int64    `json:"applicationsRemoved"`
	ResumeLocators      []string `json:"-"`
}
