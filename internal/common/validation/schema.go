package validation

import (
	"encoding/json"
	"fmt"
	"sort"

	apperrors "hr-backoffice/internal/common/errors"
	"hr-backoffice/pkg/registry"

	"github.com/xeipuuv/gojsonschema"
)

// Validator checks JSON request bodies against the compiled registry schemas.
type Validator struct {
	schemas map[string]*gojsonschema.Schema
}

func NewValidator(reg *registry.RequestRegistry) (*Validator, error) {
	v := &Validator{schemas: make(map[string]*gojsonschema.Schema, len(reg.Requests))}
	for _, r := range reg.Requests {
		if len(r.InputSchema) == 0 {
			continue
		}
		schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(r.InputSchema))
		if err != nil {
			return nil, fmt.Errorf("compile schema %q: %w", r.ID, err)
		}
		v.schemas[r.ID] = schema
	}
	return v, nil
}

// Has reports whether a schema is registered under id.
func (v *Validator) Has(id string) bool {
	_, ok := v.schemas[id]
	return ok
}

// ValidateJSON checks body against schema id. Schema violations come back as
// a validation error carrying one FieldError per problem.
func (v *Validator) ValidateJSON(id string, body []byte) error {
	schema, ok := v.schemas[id]
	if !ok {
		return fmt.Errorf("no schema registered for %q", id)
	}
	if !json.Valid(body) {
		return apperrors.NewValidationError(apperrors.FieldError{
			Field:   "body",
			Code:    apperrors.FieldCodeInvalidFormat,
			Message: "request body is not valid JSON",
		})
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("validate %q: %w", id, err)
	}
	if result.Valid() {
		return nil
	}
	return apperrors.NewValidationError(toFieldErrors(result.Errors())...)
}

func toFieldErrors(errs []gojsonschema.ResultError) []apperrors.FieldError {
	out := make([]apperrors.FieldError, 0, len(errs))
	for _, e := range errs {
		field := e.Field()
		if prop, ok := e.Details()["property"].(string); ok && prop != "" {
			if field == gojsonschema.STRING_CONTEXT_ROOT || field == "" {
				field = prop
			} else {
				field = field + "." + prop
			}
		}
		out = append(out, apperrors.FieldError{
			Field:   field,
			Code:    fieldCode(e.Type()),
			Message: e.Description(),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

func fieldCode(errType string) string {
	switch errType {
	case "required":
		return apperrors.FieldCodeRequired
	case "string_lte", "array_max_items":
		return apperrors.FieldCodeTooLarge
	case "invalid_type", "format", "pattern":
		return apperrors.FieldCodeInvalidFormat
	default:
		return apperrors.FieldCodeInvalidValue
	}
}
