package submitapplication

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	apperrors "hr-backoffice/internal/common/errors"
	"hr-backoffice/internal/common/logger"
	"hr-backoffice/internal/common/metrics"
	"hr-backoffice/internal/models"
	"hr-backoffice/internal/store"
)

const OperationName = "submit-application"

type JobLookup interface {
	Get(ctx context.Context, id int64) (*models.Job, error)
}

type ApplicationWriter interface {
	Insert(ctx context.Context, app *models.Application) (*models.Application, error)
}

type ResumeStore interface {
	Save(ctx context.Context, originalName string, content io.Reader) (string, error)
	Remove(locator string) error
}

// SubmissionListener runs after an application is committed. Errors are
// logged and never undo the submission.
type SubmissionListener interface {
	ApplicationSubmitted(ctx context.Context, job *models.Job, app *models.Application) error
}

type StatsInvalidator interface {
	Invalidate(ctx context.Context) error
}

type Handler struct {
	config    *Config
	jobs      JobLookup
	apps      ApplicationWriter
	resumes   ResumeStore
	stats     StatsInvalidator
	listeners []SubmissionListener
	logger    logger.Logger
	now       func() time.Time
}

func NewHandler(config *Config, jobs JobLookup, apps ApplicationWriter, resumes ResumeStore, stats StatsInvalidator, log logger.Logger) *Handler {
	if config == nil {
		config = DefaultConfig()
	}
	return &Handler{
		config:  config,
		jobs:    jobs,
		apps:    apps,
		resumes: resumes,
		stats:   stats,
		logger:  log.WithFields(map[string]interface{}{"operation": OperationName}),
		now:     time.Now,
	}
}

func (h *Handler) AddListener(l SubmissionListener) {
	h.listeners = append(h.listeners, l)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	out, err := h.execute(ctx, input)
	switch {
	case err == nil:
		metrics.ApplicationSubmissions.WithLabelValues(metrics.OutcomeSuccess).Inc()
	case apperrors.IsCode(err, apperrors.ErrCodeValidationFailed), apperrors.IsCode(err, apperrors.ErrCodeNotFound):
		metrics.ApplicationSubmissions.WithLabelValues(metrics.OutcomeRejected).Inc()
	default:
		metrics.ApplicationSubmissions.WithLabelValues(metrics.OutcomeFailed).Inc()
	}
	return out, err
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	input.normalize()
	if err := h.validate(input); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	job, err := h.jobs.Get(ctx, input.JobID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.NewNotFoundError("job", input.JobID)
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError("get job", err)
	}

	var locator *string
	if input.Resume != nil {
		saved, err := h.resumes.Save(ctx, input.Resume.Filename, &cappedReader{
			r:     input.Resume.Content,
			limit: h.config.MaxResumeBytes,
		})
		if errors.Is(err, errResumeTooLarge) {
			return nil, tooLargeError(h.config.MaxResumeBytes)
		}
		if err != nil {
			return nil, apperrors.NewStorageError(err)
		}
		locator = &saved
	}

	app, err := h.apps.Insert(ctx, &models.Application{
		JobID:         input.JobID,
		ApplicantName: input.ApplicantName,
		Email:         input.Email,
		Phone:         input.Phone,
		ResumeLocator: locator,
		CreatedAt:     h.now().UTC(),
	})
	if err != nil {
		if locator != nil {
			h.discardResume(*locator, input.JobID)
		}
		if errors.Is(err, store.ErrJobReferenceMissing) {
			return nil, apperrors.NewNotFoundError("job", input.JobID)
		}
		return nil, apperrors.NewDatabaseError("insert application", err)
	}

	h.logger.Info("application submitted", map[string]interface{}{
		"applicationId": app.ID,
		"jobId":         app.JobID,
		"hasResume":     app.HasResume(),
	})

	for _, l := range h.listeners {
		if err := l.ApplicationSubmitted(ctx, job, app); err != nil {
			h.logger.Warn("submission listener failed", map[string]interface{}{
				"applicationId": app.ID,
				"error":         err,
			})
		}
	}
	if h.stats != nil {
		if err := h.stats.Invalidate(ctx); err != nil {
			h.logger.Warn("failed to invalidate dashboard stats", map[string]interface{}{"error": err})
		}
	}

	return &Output{Application: app, Message: SuccessMessage}, nil
}

func (in *Input) normalize() {
	in.ApplicantName = strings.TrimSpace(in.ApplicantName)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	// a file part without a name is treated as no upload
	if in.Resume != nil && strings.TrimSpace(in.Resume.Filename) == "" {
		in.Resume = nil
	}
}

// validate collects every field problem before anything is written.
func (h *Handler) validate(in *Input) error {
	var fields []apperrors.FieldError
	required := func(field, value string) bool {
		if value == "" {
			fields = append(fields, apperrors.FieldError{
				Field:   field,
				Code:    apperrors.FieldCodeRequired,
				Message: field + " is required",
			})
			return false
		}
		return true
	}

	if in.JobID <= 0 {
		fields = append(fields, apperrors.FieldError{
			Field:   "job_id",
			Code:    apperrors.FieldCodeInvalidValue,
			Message: "job_id must be a positive integer",
		})
	}
	required("name", in.ApplicantName)
	if required("email", in.Email) && !emailRegex.MatchString(in.Email) {
		fields = append(fields, apperrors.FieldError{
			Field:   "email",
			Code:    apperrors.FieldCodeInvalidFormat,
			Message: "Invalid email format",
		})
	}
	required("phone", in.Phone)

	if in.Resume != nil {
		ext := filepath.Ext(in.Resume.Filename)
		if !h.config.extensionAllowed(ext) {
			fields = append(fields, apperrors.FieldError{
				Field:   "resume",
				Code:    apperrors.FieldCodeInvalidFormat,
				Message: fmt.Sprintf("file type %q is not allowed", ext),
			})
		}
		if in.Resume.Size > h.config.MaxResumeBytes {
			fields = append(fields, tooLargeField(h.config.MaxResumeBytes))
		}
	}

	if len(fields) > 0 {
		return apperrors.NewValidationError(fields...)
	}
	return nil
}

func (h *Handler) discardResume(locator string, jobID int64) {
	if err := h.resumes.Remove(locator); err != nil {
		metrics.OrphanedResumes.Inc()
		h.logger.Error("orphaned resume", map[string]interface{}{
			"locator": locator,
			"jobId":   jobID,
			"error":   err,
		})
	}
}

func tooLargeField(limit int64) apperrors.FieldError {
	return apperrors.FieldError{
		Field:   "resume",
		Code:    apperrors.FieldCodeTooLarge,
		Message: fmt.Sprintf("resume exceeds %d bytes", limit),
	}
}

func tooLargeError(limit int64) error {
	return apperrors.NewValidationError(tooLargeField(limit))
}
