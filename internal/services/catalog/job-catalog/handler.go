package jobcatalog

import (
	"context"
	"errors"
	"time"

	apperrors "hr-backoffice/internal/common/errors"
	"hr-backoffice/internal/common/logger"
	"hr-backoffice/internal/models"
	"hr-backoffice/internal/store"
)

const OperationName = "job-catalog"

type JobRepository interface {
	Create(ctx context.Context, job *models.Job) (*models.Job, error)
	List(ctx context.Context) ([]models.Job, error)
	Get(ctx context.Context, id int64) (*models.Job, error)
	Update(ctx context.Context, job *models.Job) (*models.Job, error)
	Delete(ctx context.Context, id int64) (*models.JobDeletion, error)
}

type ResumeRemover interface {
	Remove(locator string) error
}

type StatsInvalidator interface {
	Invalidate(ctx context.Context) error
}

// DeletionListener is told about every deleted job after the transaction commits.
type DeletionListener interface {
	JobDeleted(ctx context.Context, jobID int64) error
}

type Handler struct {
	config    *Config
	jobs      JobRepository
	resumes   ResumeRemover
	stats     StatsInvalidator
	listeners []DeletionListener
	logger    logger.Logger
	now       func() time.Time
}

func NewHandler(config *Config, jobs JobRepository, resumes ResumeRemover, stats StatsInvalidator, log logger.Logger) *Handler {
	if config == nil {
		config = DefaultConfig()
	}
	return &Handler{
		config:  config,
		jobs:    jobs,
		resumes: resumes,
		stats:   stats,
		logger:  log.WithFields(map[string]interface{}{"operation": OperationName}),
		now:     time.Now,
	}
}

// AddDeletionListener registers l for job deletions.
func (h *Handler) AddDeletionListener(l DeletionListener) {
	h.listeners = append(h.listeners, l)
}

func (h *Handler) CreateJob(ctx context.Context, input *Input) (*models.Job, error) {
	input.normalize()
	if err := input.validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	now := h.now()
	local := now.In(h.config.Location)
	job := &models.Job{
		Title:       input.Title,
		Description: input.Description,
		Location:    input.Location,
		JobType:     input.JobType,
		PostedAt:    time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, h.config.Location),
		CreatedAt:   now.UTC(),
	}

	created, err := h.jobs.Create(ctx, job)
	if err != nil {
		return nil, apperrors.NewDatabaseError("create job", err)
	}

	h.logger.Info("job created", map[string]interface{}{
		"jobId": created.ID,
		"title": created.Title,
	})
	h.invalidateStats(ctx)
	return created, nil
}

func (h *Handler) ListJobs(ctx context.Context) ([]models.Job, error) {
	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	jobs, err := h.jobs.List(ctx)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list jobs", err)
	}
	if jobs == nil {
		jobs = []models.Job{}
	}
	return jobs, nil
}

func (h *Handler) GetJob(ctx context.Context, id int64) (*models.Job, error) {
	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	job, err := h.jobs.Get(ctx, id)
	if err != nil {
		return nil, translate("get job", id, err)
	}
	return job, nil
}

// UpdateJob replaces the mutable fields of job id.
func (h *Handler) UpdateJob(ctx context.Context, id int64, input *Input) (*models.Job, error) {
	input.normalize()
	if err := input.validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	updated, err := h.jobs.Update(ctx, &models.Job{
		ID:          id,
		Title:       input.Title,
		Description: input.Description,
		Location:    input.Location,
		JobType:     input.JobType,
	})
	if err != nil {
		return nil, translate("update job", id, err)
	}

	h.logger.Info("job updated", map[string]interface{}{"jobId": id})
	h.invalidateStats(ctx)
	return updated, nil
}

// DeleteJob removes the job together with its applications, then cleans up
// their resume files and any external copies. Cleanup failures are logged.
func (h *Handler) DeleteJob(ctx context.Context, id int64) (*DeleteOutput, error) {
	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	deletion, err := h.jobs.Delete(ctx, id)
	if err != nil {
		return nil, translate("delete job", id, err)
	}

	out := &DeleteOutput{JobID: id, ApplicationsRemoved: deletion.ApplicationsRemoved}
	for _, locator := range deletion.ResumeLocators {
		if err := h.resumes.Remove(locator); err != nil {
			h.logger.Warn("failed to remove resume of deleted job", map[string]interface{}{
				"jobId":   id,
				"locator": locator,
				"error":   err,
			})
			continue
		}
		out.ResumesRemoved++
	}

	for _, l := range h.listeners {
		if err := l.JobDeleted(ctx, id); err != nil {
			h.logger.Warn("job deletion listener failed", map[string]interface{}{
				"jobId": id,
				"error": err,
			})
		}
	}

	h.logger.Info("job deleted", map[string]interface{}{
		"jobId":               id,
		"applicationsRemoved": out.ApplicationsRemoved,
		"resumesRemoved":      out.ResumesRemoved,
	})
	h.invalidateStats(ctx)
	return out, nil
}

func (h *Handler) invalidateStats(ctx context.Context) {
	if h.stats == nil {
		return
	}
	if err := h.stats.Invalidate(ctx); err != nil {
		h.logger.Warn("failed to invalidate dashboard stats", map[string]interface{}{"error": err})
	}
}

func translate(op string, id int64, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperrors.NewNotFoundError("job", id)
	}
	return apperrors.NewDatabaseError(op, err)
}
