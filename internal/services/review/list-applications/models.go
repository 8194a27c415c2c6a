package listapplications

import "hr-backoffice/internal/models"

// Input holds the raw query parameters. Empty strings mean "no filter".
type Input struct {
	JobID     string `form:"job_id" json:"jobId"`
	StartDate string `form:"start_date" json:"startDate"`
	EndDate   string `form:"end_date" json:"endDate"`
}

type Output struct {
	Applications []models.ApplicationWithJobTitle `json:"applications"`
	Filter       models.ApplicationFilter          `json:"filter"`
}
