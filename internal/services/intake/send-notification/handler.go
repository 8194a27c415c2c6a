package sendnotification

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	apperrors "hr-backoffice/internal/common/errors"
	"hr-backoffice/internal/common/logger"
	"hr-backoffice/internal/common/metrics"
	"hr-backoffice/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/google/uuid"
)

const OperationName = "send-notification"

// SESService and SNSService are the subsets of the AWS clients the handler needs.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type Handler struct {
	config    *Config
	sesClient SESService
	snsClient SNSService
	logger    logger.Logger
	now       func() time.Time
}

func NewHandler(config *Config, sesClient SESService, snsClient SNSService, log logger.Logger) *Handler {
	if config == nil {
		config = DefaultConfig()
	}
	return &Handler{
		config:    config,
		sesClient: sesClient,
		snsClient: snsClient,
		logger:    log.WithFields(map[string]interface{}{"operation": OperationName}),
		now:       time.Now,
	}
}

// ApplicationSubmitted sends the submission notifications. A failed channel
// is reported as a NOTIFICATION_SEND_FAILED error after every channel was tried.
func (h *Handler) ApplicationSubmitted(ctx context.Context, job *models.Job, app *models.Application) error {
	out, err := h.Execute(ctx, &Input{Job: job, Application: app})
	if err != nil {
		return err
	}
	if out.Status == StatusFailed {
		return apperrors.NewNotificationSendFailedError(
			strings.Join(out.Failed, ","),
			fmt.Errorf("notification %s: %d channel(s) failed", out.NotificationID, len(out.Failed)),
		)
	}
	return nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil || input.Job == nil || input.Application == nil {
		return nil, apperrors.NewInternalError(errors.New("notification input requires job and application"))
	}

	out := &Output{
		NotificationID: uuid.New().String(),
		Status:         StatusDisabled,
		SentAt:         h.now().UTC().Format(time.RFC3339),
	}
	if !h.config.EmailEnabled && !h.config.SMSEnabled {
		return out, nil
	}

	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	data := templateData(input.Job, input.Application)
	attempt := func(channel string, send func() error) {
		err := send()
		if err != nil {
			out.Failed = append(out.Failed, channel)
			metrics.NotificationsSent.WithLabelValues(channel, metrics.OutcomeFailed).Inc()
			h.logger.Error("notification send failed", map[string]interface{}{
				"channel":        channel,
				"application_id": input.Application.ID,
				"error":          err.Error(),
			})
			return
		}
		metrics.NotificationsSent.WithLabelValues(channel, metrics.OutcomeSuccess).Inc()
		out.Channels = append(out.Channels, channel)
	}

	if h.config.EmailEnabled && len(h.config.HRRecipients) > 0 {
		attempt(ChannelHREmail, func() error {
			return h.sendEmail(ctx, h.config.HRRecipients, templates[TypeNewApplication], data)
		})
	}
	if h.config.EmailEnabled && h.config.NotifyApplicant && input.Application.Email != "" {
		attempt(ChannelApplicantEmail, func() error {
			return h.sendEmail(ctx, []string{input.Application.Email}, templates[TypeApplicationReceived], data)
		})
	}
	if h.config.SMSEnabled {
		attempt(ChannelSMS, func() error {
			return h.publish(ctx, templates[TypeNewApplicationSMS], data)
		})
	}

	switch {
	case len(out.Failed) > 0:
		out.Status = StatusFailed
	case len(out.Channels) > 0:
		out.Status = StatusSent
	}

	h.logger.Info("notifications processed", map[string]interface{}{
		"notification_id": out.NotificationID,
		"application_id":  input.Application.ID,
		"status":          out.Status,
		"channels":        out.Channels,
	})
	return out, nil
}

func (h *Handler) sendEmail(ctx context.Context, to []string, tmpl template, data map[string]string) error {
	if h.sesClient == nil {
		return errors.New("ses client not configured")
	}
	body := renderTemplate(tmpl.Body, data)
	_, err := h.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{ToAddresses: to},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(renderTemplate(tmpl.Subject, data))},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(h.config.FromEmail),
	})
	return err
}

func (h *Handler) publish(ctx context.Context, tmpl template, data map[string]string) error {
	if h.snsClient == nil {
		return errors.New("sns client not configured")
	}
	_, err := h.snsClient.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(h.config.TopicARN),
		Subject:  aws.String(renderTemplate(tmpl.Subject, data)),
		Message:  aws.String(renderTemplate(tmpl.Body, data)),
	})
	return err
}

func templateData(job *models.Job, app *models.Application) map[string]string {
	return map[string]string{
		"applicationId":  strconv.FormatInt(app.ID, 10),
		"jobId":          strconv.FormatInt(job.ID, 10),
		"jobTitle":       job.Title,
		"applicantName":  app.ApplicantName,
		"applicantEmail": app.Email,
		"applicantPhone": app.Phone,
		"submittedAt":    app.CreatedAt.UTC().Format(time.RFC3339),
	}
}

var placeholder = regexp.MustCompile(`\{\{\s*(\w+)\s*\}\}`)

// renderTemplate substitutes {{key}} placeholders. Unknown keys render empty.
func renderTemplate(tmpl string, data map[string]string) string {
	return placeholder.ReplaceAllStringFunc(tmpl, func(m string) string {
		return data[placeholder.FindStringSubmatch(m)[1]]
	})
}
