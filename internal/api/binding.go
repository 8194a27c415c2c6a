package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	apperrors "hr-backoffice/internal/common/errors"

	"github.com/gin-gonic/gin"
)

const headerApplicationID = "X-Application-Id"

func isJSON(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), gin.MIMEJSON)
}

// bindBody decodes a JSON body after checking it against the registered
// schema, or binds form fields for any other content type.
func (h *handlers) bindBody(c *gin.Context, schemaID string, dst interface{}) error {
	if !isJSON(c) {
		if err := c.ShouldBind(dst); err != nil {
			return bodyError(err)
		}
		return nil
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return bodyError(err)
	}
	if h.svc.Validator != nil {
		if err := h.svc.Validator.ValidateJSON(schemaID, body); err != nil {
			return err
		}
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return bodyError(err)
	}
	return nil
}

func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperrors.NewValidationError(apperrors.FieldError{
			Field:   "body",
			Code:    apperrors.FieldCodeTooLarge,
			Message: "request body exceeds " + strconv.FormatInt(tooLarge.Limit, 10) + " bytes",
		})
	}
	return apperrors.NewValidationError(apperrors.FieldError{
		Field:   "body",
		Code:    apperrors.FieldCodeInvalidFormat,
		Message: err.Error(),
	})
}

func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError(apperrors.FieldError{
			Field:   name,
			Code:    apperrors.FieldCodeInvalidFormat,
			Message: name + " must be a positive integer",
		})
	}
	return id, nil
}

func optionalBool(c *gin.Context, name string) (*bool, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperrors.NewValidationError(apperrors.FieldError{
			Field:   name,
			Code:    apperrors.FieldCodeInvalidFormat,
			Message: name + " must be true or false",
		})
	}
	return &v, nil
}
