package exportapplications

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	apperrors "hr-backoffice/internal/common/errors"
	"hr-backoffice/internal/common/logger"
	"hr-backoffice/internal/common/metrics"
	"hr-backoffice/internal/common/observability"
	"hr-backoffice/internal/common/storage"
	"hr-backoffice/internal/models"
	listapplications "hr-backoffice/internal/services/review/list-applications"

	"github.com/spf13/afero"
	"github.com/xuri/excelize/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const OperationName = "export-applications"

// Lister is the query engine the export reads from.
type Lister interface {
	Execute(ctx context.Context, input *listapplications.Input) (*listapplications.Output, error)
}

type ArtifactStore interface {
	Write(prefix, ext string, write func(w io.Writer) error) (string, error)
	Open(name string) (afero.File, os.FileInfo, error)
	Remove(name string) error
}

type Handler struct {
	config    *Config
	lister    Lister
	artifacts ArtifactStore
	obs       *observability.Observability
	logger    logger.Logger
}

func NewHandler(config *Config, lister Lister, artifacts ArtifactStore, obs *observability.Observability, log logger.Logger) *Handler {
	if config == nil {
		config = DefaultConfig()
	}
	return &Handler{
		config:    config,
		lister:    lister,
		artifacts: artifacts,
		obs:       obs,
		logger:    log.WithFields(map[string]interface{}{"operation": OperationName}),
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	start := time.Now()
	ctx, span := h.obs.StartSpan(ctx, OperationName)
	defer span.End()

	out, err := h.execute(ctx, input)

	status := metrics.OutcomeSuccess
	scope := "unknown"
	if err != nil {
		status = metrics.OutcomeFailed
		if apperrors.IsCode(err, apperrors.ErrCodeValidationFailed) {
			status = metrics.OutcomeRejected
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		scope = out.Scope
		span.SetAttributes(attribute.String("export.scope", scope), attribute.Int("export.rows", out.RowCount))
		metrics.ExportRows.Observe(float64(out.RowCount))
	}
	metrics.ExportsGenerated.WithLabelValues(scope, status).Inc()
	h.obs.RecordOperation(ctx, OperationName, status, time.Since(start))
	return out, err
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	listing, err := h.lister.Execute(ctx, &input.Filters)
	if err != nil {
		if apperrors.IsCode(err, apperrors.ErrCodeValidationFailed) {
			return nil, err
		}
		return nil, apperrors.NewExportError(err)
	}

	includeCreatedAt := h.config.IncludeCreatedAt
	if input.IncludeCreatedAt != nil {
		includeCreatedAt = *input.IncludeCreatedAt
	}

	scope, downloadName := "all", "job_applications"+FileExtension
	if listing.Filter.JobID != nil {
		scope = fmt.Sprintf("job_%d", *listing.Filter.JobID)
		downloadName = "applications_" + scope + FileExtension
	}

	name, err := h.artifacts.Write("applications_"+scope, FileExtension, func(w io.Writer) error {
		return h.writeWorkbook(w, listing.Applications, includeCreatedAt)
	})
	if err != nil {
		return nil, apperrors.NewExportError(err)
	}

	h.logger.Info("export generated", map[string]interface{}{
		"artifact":         name,
		"scope":            scope,
		"rows":             len(listing.Applications),
		"includeCreatedAt": includeCreatedAt,
	})

	return &Output{
		ArtifactName: name,
		DownloadName: downloadName,
		RowCount:     len(listing.Applications),
		Scope:        scope,
	}, nil
}

// writeWorkbook streams a single-sheet workbook: the header row followed by
// one row per application in listing order.
func (h *Handler) writeWorkbook(w io.Writer, apps []models.ApplicationWithJobTitle, includeCreatedAt bool) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", h.config.SheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(h.config.SheetName)
	if err != nil {
		return fmt.Errorf("open stream writer: %w", err)
	}

	header := make([]interface{}, 0, len(Header)+1)
	for _, col := range Header {
		header = append(header, col)
	}
	if includeCreatedAt {
		header = append(header, CreatedAtHeader)
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, a := range apps {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{a.JobTitle, a.ApplicantName, a.Email, a.Phone}
		if includeCreatedAt {
			values = append(values, a.CreatedAt.In(h.config.Location).Format(createdAtLayout))
		}
		if err := sw.SetRow(cell, values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("serialize workbook: %w", err)
	}
	return nil
}

// Artifact is a finished export opened for streaming. Closing it deletes
// the artifact.
type Artifact struct {
	afero.File
	Size    int64
	name    string
	remove  func(string) error
	onError func(name string, err error)
}

func (a *Artifact) Close() error {
	err := a.File.Close()
	if rmErr := a.remove(a.name); rmErr != nil {
		a.onError(a.name, rmErr)
	}
	return err
}

// OpenArtifact opens a generated export for streaming to the caller.
func (h *Handler) OpenArtifact(name string) (*Artifact, error) {
	f, info, err := h.artifacts.Open(name)
	if err != nil {
		if !errors.Is(err, storage.ErrArtifactNotFound) {
			// The artifact may exist but never be streamed; drop it now.
			if rmErr := h.artifacts.Remove(name); rmErr != nil {
				h.logger.Warn("failed to remove unreadable export artifact", map[string]interface{}{
					"artifact": name,
					"error":    rmErr,
				})
			}
		}
		return nil, apperrors.NewExportError(err)
	}
	return &Artifact{
		File:   f,
		Size:   info.Size(),
		name:   name,
		remove: h.artifacts.Remove,
		onError: func(name string, err error) {
			h.logger.Warn("failed to remove export artifact", map[string]interface{}{
				"artifact": name,
				"error":    err,
			})
		},
	}, nil
}
