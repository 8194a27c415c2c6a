package searchapplications

import "hr-backoffice/internal/models"

type Input struct {
	Query string `form:"q" json:"q"`
	Size  int    `form:"size" json:"size"`
}

type Output struct {
	Query     string                       `json:"query"`
	TotalHits int64                        `json:"totalHits"`
	Took      int                          `json:"took"`
	Hits      []models.ApplicationDocument `json:"hits"`
}

// SearchFields are matched by the free text query; job titles weigh more.
var SearchFields = []string{"applicant_name^2", "email", "phone", "job_title^3"}

type searchResponse struct {
	Took int `json:"took"`
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source models.ApplicationDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}
