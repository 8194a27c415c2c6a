package indexapplication

import "hr-backoffice/internal/models"

type Input struct {
	Job         *models.Job
	Application *models.Application
}

type Output struct {
	DocumentID string `json:"documentId"`
	Result     string `json:"result"` // "created" or "updated"
}

// indexMapping is applied when the index does not exist yet.
const indexMapping = `{
  "mappings": {
    "properties": {
      "id":             {"type": "long"},
      "job_id":         {"type": "long"},
      "job_title":      {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
      "applicant_name": {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
      "email":          {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
      "phone":          {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
      "created_at":     {"type": "date"}
    }
  }
}`
