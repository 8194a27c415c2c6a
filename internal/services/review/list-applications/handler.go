package listapplications

import (
	"context"
	"strconv"
	"strings"
	"time"

	apperrors "hr-backoffice/internal/common/errors"
	"hr-backoffice/internal/common/logger"
	"hr-backoffice/internal/models"
)

const OperationName = "list-applications"

type ApplicationReader interface {
	List(ctx context.Context, filter models.ApplicationFilter) ([]models.ApplicationWithJobTitle, error)
}

type Handler struct {
	config *Config
	apps   ApplicationReader
	logger logger.Logger
}

func NewHandler(config *Config, apps ApplicationReader, log logger.Logger) *Handler {
	if config == nil {
		config = DefaultConfig()
	}
	return &Handler{
		config: config,
		apps:   apps,
		logger: log.WithFields(map[string]interface{}{"operation": OperationName}),
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	filter, err := h.BuildFilter(input)
	if err != nil {
		return nil, err
	}
	return h.List(ctx, filter)
}

// List runs an already validated filter.
func (h *Handler) List(ctx context.Context, filter models.ApplicationFilter) (*Output, error) {
	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	apps, err := h.apps.List(ctx, filter)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list applications", err)
	}
	if apps == nil {
		apps = []models.ApplicationWithJobTitle{}
	}

	h.logger.Debug("applications listed", map[string]interface{}{
		"count":    len(apps),
		"filtered": !filter.IsEmpty(),
	})
	return &Output{Applications: apps, Filter: filter}, nil
}

// BuildFilter turns raw parameters into a structured filter. Dates are whole
// days in the configured zone: start is included from 00:00, end is included
// up to but not including 00:00 of the following day.
func (h *Handler) BuildFilter(input *Input) (models.ApplicationFilter, error) {
	var (
		filter models.ApplicationFilter
		fields []apperrors.FieldError
	)

	if raw := strings.TrimSpace(input.JobID); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			fields = append(fields, apperrors.FieldError{
				Field:   "job_id",
				Code:    apperrors.FieldCodeInvalidValue,
				Message: "job_id must be a positive integer",
			})
		} else {
			filter.JobID = &id
		}
	}

	start, ok := h.parseDate("start_date", input.StartDate, &fields)
	if ok && start != nil {
		filter.CreatedFrom = start
	}
	end, ok := h.parseDate("end_date", input.EndDate, &fields)
	if ok && end != nil {
		next := end.AddDate(0, 0, 1)
		filter.CreatedBefore = &next
	}

	if start != nil && end != nil && start.After(*end) {
		fields = append(fields, apperrors.FieldError{
			Field:   "start_date",
			Code:    apperrors.FieldCodeInvalidValue,
			Message: "start_date must not be after end_date",
		})
	}

	if len(fields) > 0 {
		return models.ApplicationFilter{}, apperrors.NewValidationError(fields...)
	}
	return filter, nil
}

func (h *Handler) parseDate(field, raw string, fields *[]apperrors.FieldError) (*time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}
	t, err := time.ParseInLocation(DateLayout, raw, h.config.Location)
	if err != nil {
		*fields = append(*fields, apperrors.FieldError{
			Field:   field,
			Code:    apperrors.FieldCodeInvalidFormat,
			Message: field + " must be YYYY-MM-DD",
		})
		return nil, false
	}
	return &t, true
}
