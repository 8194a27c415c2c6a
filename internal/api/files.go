package api

import (
	"errors"
	"mime"
	"net/http"
	"path/filepath"

	apperrors "hr-backoffice/internal/common/errors"
	"hr-backoffice/internal/common/storage"

	"github.com/gin-gonic/gin"
)

func (h *handlers) serveResume(disposition string) gin.HandlerFunc {
	return func(c *gin.Context) {
		locator := c.Param("locator")
		file, info, err := h.svc.Resumes.Open(locator)
		switch {
		case errors.Is(err, storage.ErrResumeNotFound), errors.Is(err, storage.ErrInvalidLocator):
			h.errs.Respond(c, apperrors.NewNotFoundError("resume", locator))
			return
		case err != nil:
			h.errs.Respond(c, apperrors.NewStorageError(err))
			return
		}
		defer file.Close()

		name := storage.OriginalName(locator)
		contentType := mime.TypeByExtension(filepath.Ext(name))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		c.DataFromReader(http.StatusOK, info.Size(), contentType, file, map[string]string{
			"Content-Disposition":    contentDisposition(disposition, name),
			"X-Content-Type-Options": "nosniff",
		})
	}
}
