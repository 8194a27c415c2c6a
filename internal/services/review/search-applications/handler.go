package searchapplications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "hr-backoffice/internal/common/errors"
	"hr-backoffice/internal/common/logger"
	"hr-backoffice/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
)

const (
	OperationName = "search-applications"
	queryType     = "application_search"
	maxQueryLen   = 256
)

type Handler struct {
	config *Config
	client *elasticsearch.Client
	logger logger.Logger
}

func NewHandler(config *Config, client *elasticsearch.Client, log logger.Logger) *Handler {
	if config == nil {
		config = DefaultConfig()
	}
	return &Handler{
		config: config,
		client: client,
		logger: log.WithFields(map[string]interface{}{"operation": OperationName}),
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	q := strings.TrimSpace(input.Query)
	if q == "" {
		return nil, apperrors.NewRequiredFieldError("q")
	}
	if len(q) > maxQueryLen {
		return nil, apperrors.NewValidationError(apperrors.FieldError{
			Field:   "q",
			Code:    apperrors.FieldCodeTooLarge,
			Message: fmt.Sprintf("query must be at most %d characters", maxQueryLen),
		})
	}
	size := input.Size
	switch {
	case size < 0:
		return nil, apperrors.NewValidationError(apperrors.FieldError{
			Field:   "size",
			Code:    apperrors.FieldCodeInvalidValue,
			Message: "size must not be negative",
		})
	case size == 0:
		size = h.config.DefaultSize
	case size > h.config.MaxSize:
		size = h.config.MaxSize
	}

	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	body, err := json.Marshal(buildQuery(q, size))
	if err != nil {
		return nil, apperrors.NewSearchQueryFailedError(queryType, err)
	}

	res, err := h.client.Search(
		h.client.Search.WithContext(ctx),
		h.client.Search.WithIndex(h.config.Index),
		h.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, apperrors.NewSearchQueryFailedError(queryType, err)
	}
	defer res.Body.Close()

	// Nothing has been indexed yet.
	if res.StatusCode == http.StatusNotFound {
		return &Output{Query: q, Hits: []models.ApplicationDocument{}}, nil
	}
	if res.IsError() {
		detail, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, apperrors.NewSearchQueryFailedError(queryType, fmt.Errorf("%s: %s", res.Status(), detail))
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, apperrors.NewSearchQueryFailedError(queryType, fmt.Errorf("decode response: %w", err))
	}

	out := &Output{
		Query:     q,
		TotalHits: parsed.Hits.Total.Value,
		Took:      parsed.Took,
		Hits:      make([]models.ApplicationDocument, 0, len(parsed.Hits.Hits)),
	}
	for _, hit := range parsed.Hits.Hits {
		out.Hits = append(out.Hits, hit.Source)
	}

	h.logger.Debug("search completed", map[string]interface{}{
		"total_hits": out.TotalHits,
		"returned":   len(out.Hits),
		"took_ms":    out.Took,
	})
	return out, nil
}

func buildQuery(q string, size int) map[string]interface{} {
	return map[string]interface{}{
		"size": size,
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":    q,
				"fields":   SearchFields,
				"type":     "best_fields",
				"operator": "and",
				"lenient":  true,
			},
		},
		"sort": []interface{}{
			map[string]interface{}{"id": map[string]interface{}{"order": "desc"}},
		},
	}
}
