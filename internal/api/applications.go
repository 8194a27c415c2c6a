package api

import (
	"errors"
	"mime"
	"net/http"
	"strconv"

	apperrors "hr-backoffice/internal/common/errors"
	submitapplication "hr-backoffice/internal/services/intake/submit-application"
	exportapplications "hr-backoffice/internal/services/review/export-applications"
	listapplications "hr-backoffice/internal/services/review/list-applications"
	searchapplications "hr-backoffice/internal/services/review/search-applications"

	"github.com/gin-gonic/gin"
)

type applicationForm struct {
	Name  string `form:"name"`
	Email string `form:"email"`
	Phone string `form:"phone"`
}

func (h *handlers) submitApplication(c *gin.Context) {
	jobID, err := pathID(c, "jobId")
	if err != nil {
		h.errs.Respond(c, err)
		return
	}

	var form applicationForm
	if err := c.ShouldBind(&form); err != nil {
		h.errs.Respond(c, bodyError(err))
		return
	}
	input := &submitapplication.Input{
		JobID:         jobID,
		ApplicantName: form.Name,
		Email:         form.Email,
		Phone:         form.Phone,
	}

	// A file part with an empty file name is treated as no resume.
	header, err := c.FormFile("resume")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	case err != nil:
		h.errs.Respond(c, bodyError(err))
		return
	case header.Filename != "":
		file, err := header.Open()
		if err != nil {
			h.errs.Respond(c, apperrors.NewStorageError(err))
			return
		}
		defer file.Close()
		input.Resume = &submitapplication.ResumeUpload{
			Filename: header.Filename,
			Size:     header.Size,
			Content:  file,
		}
	}

	out, err := h.svc.Submissions.Execute(c.Request.Context(), input)
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	c.Header(headerApplicationID, strconv.FormatInt(out.Application.ID, 10))
	c.String(http.StatusOK, out.Message)
}

func (h *handlers) listApplications(c *gin.Context) {
	var input listapplications.Input
	if err := c.ShouldBindQuery(&input); err != nil {
		h.errs.Respond(c, bodyError(err))
		return
	}
	out, err := h.svc.Listing.Execute(c.Request.Context(), &input)
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, out.Applications)
}

func (h *handlers) searchApplications(c *gin.Context) {
	var input searchapplications.Input
	if err := c.ShouldBindQuery(&input); err != nil {
		h.errs.Respond(c, apperrors.NewValidationError(apperrors.FieldError{
			Field:   "size",
			Code:    apperrors.FieldCodeInvalidFormat,
			Message: "size must be an integer",
		}))
		return
	}
	out, err := h.svc.Search.Execute(c.Request.Context(), &input)
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *handlers) exportApplications(c *gin.Context) {
	var input exportapplications.Input
	if err := c.ShouldBindQuery(&input.Filters); err != nil {
		h.errs.Respond(c, bodyError(err))
		return
	}
	if jobID := c.Param("jobId"); jobID != "" {
		input.Filters.JobID = jobID
	}
	include, err := optionalBool(c, "include_created_at")
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	input.IncludeCreatedAt = include

	out, err := h.svc.Export.Execute(c.Request.Context(), &input)
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	artifact, err := h.svc.Export.OpenArtifact(out.ArtifactName)
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	defer artifact.Close()

	c.DataFromReader(http.StatusOK, artifact.Size, exportapplications.ContentType, artifact, map[string]string{
		"Content-Disposition": contentDisposition(dispositionAttachment, out.DownloadName),
	})
}

const (
	dispositionInline     = "inline"
	dispositionAttachment = "attachment"
)

func contentDisposition(kind, filename string) string {
	return mime.FormatMediaType(kind, map[string]string{"filename": filename})
}
