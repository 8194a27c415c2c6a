package exportapplications

import (
	listapplications "hr-backoffice/internal/services/review/list-applications"
)

const (
	FileExtension   = ".xlsx"
	ContentType     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	createdAtLayout = "2006-01-02 15:04:05"
)

// Header is the stable column order of every export.
var Header = []string{"Job Title", "Applicant Name", "Email", "Phone"}

const CreatedAtHeader = "Created At"

type Input struct {
	Filters listapplications.Input
	// IncludeCreatedAt overrides the configured default when set.
	IncludeCreatedAt *bool
}

type Output struct {
	ArtifactName string `json:"artifactName"`
	DownloadName string `json:"downloadName"`
	RowCount     int    `json:"rowCount"`
	Scope        string `json:"scope"`
}
