package sendnotification

import "hr-backoffice/internal/models"

type Input struct {
	Job         *models.Job
	Application *models.Application
}

type Output struct {
	NotificationID string   `json:"notificationId"`
	Status         string   `json:"status"` // "sent", "failed", "disabled"
	SentAt         string   `json:"sentAt"` // RFC3339
	Channels       []string `json:"channels,omitempty"`
	Failed         []string `json:"failed,omitempty"`
}

// Notification types
const (
	TypeNewApplication      = "new_application"
	TypeApplicationReceived = "application_received"
	TypeNewApplicationSMS   = "new_application_sms"
)

const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
)

// Channel labels used in Output.Channels and the notifications metric.
const (
	ChannelHREmail        = "hr_email"
	ChannelApplicantEmail = "applicant_email"
	ChannelSMS            = "sms"
)

type template struct {
	Subject string
	Body    string
}

var templates = map[string]template{
	TypeNewApplication: {
		Subject: "New application: {{jobTitle}}",
		Body: "{{applicantName}} applied for {{jobTitle}} (job {{jobId}}).\n" +
			"Email: {{applicantEmail}}\nPhone: {{applicantPhone}}\n" +
			"Application {{applicationId}} received {{submittedAt}}.",
	},
	TypeApplicationReceived: {
		Subject: "We received your application for {{jobTitle}}",
		Body: "Hello {{applicantName}},\n\nThank you for applying for {{jobTitle}}. " +
			"Your application reference is {{applicationId}}.",
	},
	TypeNewApplicationSMS: {
		Subject: "New application",
		Body:    "New application {{applicationId}} from {{applicantName}} for {{jobTitle}}.",
	},
}
